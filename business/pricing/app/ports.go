// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/fd1az/aurora-staking/business/pricing/domain"
)

// PriceOracle fetches USD prices and market caps.
type PriceOracle interface {
	// MarketData returns entries index-aligned to keys. Unknown keys yield
	// absent prices rather than an error.
	MarketData(ctx context.Context, keys []string) (*domain.MarketData, error)

	// Name identifies the oracle in logs and metrics.
	Name() string
}
