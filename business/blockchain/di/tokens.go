// Package di contains dependency injection tokens for the blockchain context.
package di

import (
	"github.com/fd1az/aurora-staking/business/blockchain/app"
	"github.com/fd1az/aurora-staking/business/blockchain/infra/ethereum"
	"github.com/fd1az/aurora-staking/internal/di"
)

// Public service tokens - exposed to other modules
var (
	BlockchainService = di.NewToken[*app.BlockchainService]("blockchain.BlockchainService")
	StakingReader     = di.NewToken[*ethereum.StakingReader]("blockchain.StakingReader")
	TokenReader       = di.NewToken[*ethereum.TokenReader]("blockchain.TokenReader")

	// StakingWriter resolves to nil when no private key is configured.
	StakingWriter = di.NewToken[*ethereum.StakingWriter]("blockchain.StakingWriter")
)

// Private dependency tokens - internal to blockchain module
var (
	HeadWatcher = di.NewToken[app.HeadWatcher]("blockchain:headWatcher")
	GasOracle   = di.NewToken[app.GasOracle]("blockchain:gasOracle")
)

// Helper functions for type-safe access
func GetBlockchainService(c di.ServiceRegistry) *app.BlockchainService {
	return di.GetToken(c, BlockchainService)
}

func GetStakingReader(c di.ServiceRegistry) *ethereum.StakingReader {
	return di.GetToken(c, StakingReader)
}

func GetTokenReader(c di.ServiceRegistry) *ethereum.TokenReader {
	return di.GetToken(c, TokenReader)
}

func GetStakingWriter(c di.ServiceRegistry) *ethereum.StakingWriter {
	return di.GetToken(c, StakingWriter)
}

func GetHeadWatcher(c di.ServiceRegistry) app.HeadWatcher {
	return di.GetToken(c, HeadWatcher)
}

func GetGasOracle(c di.ServiceRegistry) app.GasOracle {
	return di.GetToken(c, GasOracle)
}
