// Package blockchain implements the blockchain bounded context for Aurora RPC integration.
package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/aurora-staking/business/blockchain/app"
	blockchainDI "github.com/fd1az/aurora-staking/business/blockchain/di"
	"github.com/fd1az/aurora-staking/business/blockchain/infra/ethereum"
	"github.com/fd1az/aurora-staking/internal/config"
	"github.com/fd1az/aurora-staking/internal/di"
	"github.com/fd1az/aurora-staking/internal/logger"
	"github.com/fd1az/aurora-staking/internal/monolith"
	"github.com/fd1az/aurora-staking/internal/network"
)

// Module implements the blockchain bounded context.
type Module struct{}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register HeadWatcher (private - internal dependency)
	di.RegisterToken(c, blockchainDI.HeadWatcher, func(sr di.ServiceRegistry) app.HeadWatcher {
		cfg := sr.Get("config").(*config.Config)
		net := sr.Get("network").(*network.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		client := sr.Get("ethClient").(*ethclient.Client)

		watchCfg := ethereum.DefaultHeadWatcherConfig(net.WSURL())
		if cfg.Sync.HeadPollEvery > 0 {
			watchCfg.PollInterval = cfg.Sync.HeadPollEvery
		}
		w, err := ethereum.NewHeadWatcher(client, watchCfg, log)
		if err != nil {
			panic("failed to create head watcher: " + err.Error())
		}
		return w
	})

	// Register GasOracle (private - internal dependency)
	di.RegisterToken(c, blockchainDI.GasOracle, func(sr di.ServiceRegistry) app.GasOracle {
		log := sr.Get("logger").(logger.LoggerInterface)
		client := sr.Get("ethClient").(*ethclient.Client)

		oracle, err := ethereum.NewGasOracle(client, ethereum.DefaultGasOracleConfig(), log)
		if err != nil {
			panic("failed to create gas oracle: " + err.Error())
		}
		return oracle
	})

	// Register StakingReader (public)
	di.RegisterToken(c, blockchainDI.StakingReader, func(sr di.ServiceRegistry) *ethereum.StakingReader {
		net := sr.Get("network").(*network.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		client := sr.Get("ethClient").(*ethclient.Client)

		r, err := ethereum.NewStakingReader(client, net.StakingAddress(), log)
		if err != nil {
			panic("failed to create staking reader: " + err.Error())
		}
		return r
	})

	// Register TokenReader (public)
	di.RegisterToken(c, blockchainDI.TokenReader, func(sr di.ServiceRegistry) *ethereum.TokenReader {
		log := sr.Get("logger").(logger.LoggerInterface)
		client := sr.Get("ethClient").(*ethclient.Client)
		return ethereum.NewTokenReader(client, log)
	})

	// Register StakingWriter (public - nil without a signing key)
	di.RegisterToken(c, blockchainDI.StakingWriter, func(sr di.ServiceRegistry) *ethereum.StakingWriter {
		cfg := sr.Get("config").(*config.Config)
		if cfg.Account.PrivateKey == "" {
			return nil
		}
		net := sr.Get("network").(*network.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		client := sr.Get("ethClient").(*ethclient.Client)

		gas := blockchainDI.GetGasOracle(sr)
		tx, err := ethereum.NewTransactor(client, gas, cfg.Account.PrivateKey, ethereum.TransactorConfig{
			ChainID: new(big.Int).SetUint64(net.ChainID()),
		}, log)
		if err != nil {
			panic("failed to create transactor: " + err.Error())
		}

		w, err := ethereum.NewStakingWriter(tx, net.StakingAddress())
		if err != nil {
			panic("failed to create staking writer: " + err.Error())
		}
		return w
	})

	// Register BlockchainService (public - exposed to other modules)
	di.RegisterToken(c, blockchainDI.BlockchainService, func(sr di.ServiceRegistry) *app.BlockchainService {
		return app.NewBlockchainService(
			blockchainDI.GetHeadWatcher(sr),
			blockchainDI.GetGasOracle(sr),
		)
	})

	return nil
}

// Startup verifies the node serves the configured chain.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	svc := blockchainDI.GetBlockchainService(mono.Services())

	chainID, err := svc.ChainID(ctx)
	if err != nil {
		log.Error(ctx, "failed to read chain id", "error", err)
		// Don't fail - actions re-check the chain before sending
	} else if chainID != mono.Network().ChainID() {
		log.Warn(ctx, "rpc node serves a different chain",
			"expected", mono.Network().ChainID(), "actual", chainID)
	}

	log.Info(ctx, "blockchain module started",
		"network", mono.Network().Name(),
		"staking", mono.Network().StakingAddress().Hex())
	return nil
}
