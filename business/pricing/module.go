// Package pricing implements the pricing bounded context: USD prices and
// market caps for the staked token and its reward streams.
package pricing

import (
	"context"

	"github.com/fd1az/aurora-staking/business/pricing/app"
	pricingDI "github.com/fd1az/aurora-staking/business/pricing/di"
	"github.com/fd1az/aurora-staking/business/pricing/infra/coingecko"
	"github.com/fd1az/aurora-staking/internal/config"
	"github.com/fd1az/aurora-staking/internal/di"
	"github.com/fd1az/aurora-staking/internal/logger"
	"github.com/fd1az/aurora-staking/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct{}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register PriceOracle (CoinGecko) - private dependency
	di.RegisterToken(c, pricingDI.PriceOracle, func(sr di.ServiceRegistry) app.PriceOracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := coingecko.NewClient(coingecko.Config{
			BaseURL:           cfg.Oracle.BaseURL,
			APIKey:            cfg.Oracle.APIKey,
			RequestsPerMinute: cfg.Oracle.RequestsPerMinute,
			Timeout:           cfg.Oracle.Timeout,
			RetryMax:          cfg.Oracle.RetryMax,
		}, log)
		if err != nil {
			panic("failed to create coingecko client: " + err.Error())
		}
		return client
	})

	// Register PricingService (public - exposed to other modules)
	di.RegisterToken(c, pricingDI.PricingService, func(sr di.ServiceRegistry) *app.PricingService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewPricingService(pricingDI.GetPriceOracle(sr), cfg.Oracle.CacheTTL, log)
	})

	return nil
}

// Startup initializes the pricing module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	oracle := pricingDI.GetPriceOracle(mono.Services())
	mono.Logger().Info(ctx, "pricing module started",
		"oracle", oracle.Name(),
		"base_url", mono.Config().Oracle.BaseURL)
	return nil
}
