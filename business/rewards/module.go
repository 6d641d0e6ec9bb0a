// Package rewards implements the reward economics context: emission
// schedules, daily rates, APRs and vote supply.
package rewards

import (
	"context"

	blockchainDI "github.com/fd1az/aurora-staking/business/blockchain/di"
	pricingDI "github.com/fd1az/aurora-staking/business/pricing/di"
	"github.com/fd1az/aurora-staking/business/rewards/app"
	rewardsDI "github.com/fd1az/aurora-staking/business/rewards/di"
	"github.com/fd1az/aurora-staking/internal/config"
	"github.com/fd1az/aurora-staking/internal/di"
	"github.com/fd1az/aurora-staking/internal/logger"
	"github.com/fd1az/aurora-staking/internal/monolith"
	"github.com/fd1az/aurora-staking/internal/network"
)

// Module implements the rewards bounded context.
type Module struct{}

// RegisterServices registers all rewards services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register MetricsService (public - exposed to other modules)
	di.RegisterToken(c, rewardsDI.MetricsService, func(sr di.ServiceRegistry) *app.MetricsService {
		cfg := sr.Get("config").(*config.Config)
		net := sr.Get("network").(*network.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		svc, err := app.NewMetricsService(
			net,
			blockchainDI.GetStakingReader(sr),
			pricingDI.GetPricingService(sr),
			app.MetricsConfig{CacheTTL: cfg.Sync.MetricsCacheTTL},
			log,
		)
		if err != nil {
			panic("failed to create metrics service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup initializes the rewards module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	net := mono.Network()
	mono.Logger().Info(ctx, "rewards module started",
		"streams", len(net.AllStreams()),
		"vote", net.VoteStream().Symbol())
	return nil
}
