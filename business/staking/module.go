// Package staking implements the account context: snapshot synchronization
// and user-initiated staking actions.
package staking

import (
	"context"

	blockchainDI "github.com/fd1az/aurora-staking/business/blockchain/di"
	pricingDI "github.com/fd1az/aurora-staking/business/pricing/di"
	"github.com/fd1az/aurora-staking/business/staking/app"
	stakingDI "github.com/fd1az/aurora-staking/business/staking/di"
	"github.com/fd1az/aurora-staking/business/staking/infra"
	"github.com/fd1az/aurora-staking/internal/asset"
	"github.com/fd1az/aurora-staking/internal/config"
	"github.com/fd1az/aurora-staking/internal/di"
	"github.com/fd1az/aurora-staking/internal/logger"
	"github.com/fd1az/aurora-staking/internal/monolith"
	"github.com/fd1az/aurora-staking/internal/network"
)

// Module implements the staking bounded context.
type Module struct{}

// RegisterServices registers all staking services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register TransactionSender (private - internal dependency)
	di.RegisterToken(c, stakingDI.TransactionSender, func(sr di.ServiceRegistry) app.TransactionSender {
		net := sr.Get("network").(*network.Config)

		// A typed nil writer must not reach the interface.
		var writer infra.StakingWriter
		if w := blockchainDI.GetStakingWriter(sr); w != nil {
			writer = w
		}
		return infra.NewActionSender(writer, net.TokenAddress())
	})

	// Register Synchronizer (public)
	di.RegisterToken(c, stakingDI.Synchronizer, func(sr di.ServiceRegistry) *app.Synchronizer {
		cfg := sr.Get("config").(*config.Config)
		net := sr.Get("network").(*network.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		s, err := app.NewSynchronizer(
			net,
			blockchainDI.GetStakingReader(sr),
			blockchainDI.GetTokenReader(sr),
			pricingDI.GetPricingService(sr),
			app.SyncConfig{ReadTimeout: cfg.Sync.ReadTimeout},
			log,
		)
		if err != nil {
			panic("failed to create synchronizer: " + err.Error())
		}
		return s
	})

	// Register ActionRunner (public)
	di.RegisterToken(c, stakingDI.ActionRunner, func(sr di.ServiceRegistry) *app.ActionRunner {
		cfg := sr.Get("config").(*config.Config)
		net := sr.Get("network").(*network.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		chain := blockchainDI.GetBlockchainService(sr)

		r, err := app.NewActionRunner(
			stakingDI.GetTransactionSender(sr),
			chain,
			chain,
			stakingDI.GetSynchronizer(sr),
			app.ActionConfig{
				ChainID:      net.ChainID(),
				SettleDelay:  cfg.Sync.SettleDelay,
				WaitForBlock: cfg.Sync.WaitForBlock,
			},
			log,
		)
		if err != nil {
			panic("failed to create action runner: " + err.Error())
		}
		return r
	})

	// Register Reporter (public)
	di.RegisterToken(c, stakingDI.Reporter, func(sr di.ServiceRegistry) *infra.ConsoleReporter {
		net := sr.Get("network").(*network.Config)
		assets := sr.Get("assetRegistry").(*asset.Registry)
		return infra.NewConsoleReporter(nil, assets, net.ChainID())
	})

	return nil
}

// Startup initializes the staking module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()

	signer := "none"
	if w := blockchainDI.GetStakingWriter(mono.Services()); w != nil {
		signer = w.Signer().Hex()
	}

	mono.Logger().Info(ctx, "staking module started",
		"account", cfg.Account.Address,
		"signer", signer,
		"assets", mono.AssetRegistry().Count(),
		"settle_delay", cfg.Sync.SettleDelay,
		"read_timeout", cfg.Sync.ReadTimeout)
	return nil
}
