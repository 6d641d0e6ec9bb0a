// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/fd1az/aurora-staking/business/pricing/app"
	"github.com/fd1az/aurora-staking/internal/di"
)

// Public service tokens - exposed to other modules
var (
	PricingService = di.NewToken[*app.PricingService]("pricing.PricingService")
)

// Private dependency tokens - internal to pricing module
var (
	PriceOracle = di.NewToken[app.PriceOracle]("pricing:priceOracle")
)

// Helper functions for type-safe access
func GetPricingService(c di.ServiceRegistry) *app.PricingService {
	return di.GetToken(c, PricingService)
}

func GetPriceOracle(c di.ServiceRegistry) app.PriceOracle {
	return di.GetToken(c, PriceOracle)
}
