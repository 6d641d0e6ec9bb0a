// Package app contains application services and port definitions for the rewards context.
package app

import (
	"context"
	"math/big"

	pricingDomain "github.com/fd1az/aurora-staking/business/pricing/domain"
)

// ScheduleReader reads emission schedules and the staked total.
type ScheduleReader interface {
	// StreamSchedule returns the raw (times, remaining) pair for a stream id.
	StreamSchedule(ctx context.Context, streamID uint64) (times, remaining []*big.Int, err error)

	// TotalStaked returns the total amount of base token staked.
	TotalStaked(ctx context.Context) (*big.Int, error)
}

// MarketDataProvider returns prices aligned to the requested keys.
type MarketDataProvider interface {
	MarketData(ctx context.Context, keys []string) (*pricingDomain.MarketData, error)
}
