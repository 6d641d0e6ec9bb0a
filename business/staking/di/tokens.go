// Package di contains dependency injection tokens for the staking context.
package di

import (
	"github.com/fd1az/aurora-staking/business/staking/app"
	"github.com/fd1az/aurora-staking/business/staking/infra"
	"github.com/fd1az/aurora-staking/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Synchronizer = di.NewToken[*app.Synchronizer]("staking.Synchronizer")
	ActionRunner = di.NewToken[*app.ActionRunner]("staking.ActionRunner")
	Reporter     = di.NewToken[*infra.ConsoleReporter]("staking.Reporter")
)

// Private dependency tokens - internal to staking module
var (
	TransactionSender = di.NewToken[app.TransactionSender]("staking:transactionSender")
)

// Helper functions for type-safe access
func GetSynchronizer(c di.ServiceRegistry) *app.Synchronizer {
	return di.GetToken(c, Synchronizer)
}

func GetActionRunner(c di.ServiceRegistry) *app.ActionRunner {
	return di.GetToken(c, ActionRunner)
}

func GetReporter(c di.ServiceRegistry) *infra.ConsoleReporter {
	return di.GetToken(c, Reporter)
}

func GetTransactionSender(c di.ServiceRegistry) app.TransactionSender {
	return di.GetToken(c, TransactionSender)
}
