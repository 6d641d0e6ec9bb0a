// Package di contains dependency injection tokens for the rewards context.
package di

import (
	"github.com/fd1az/aurora-staking/business/rewards/app"
	"github.com/fd1az/aurora-staking/internal/di"
)

// Public service tokens - exposed to other modules
var (
	MetricsService = di.NewToken[*app.MetricsService]("rewards.MetricsService")
)

// Helper functions for type-safe access
func GetMetricsService(c di.ServiceRegistry) *app.MetricsService {
	return di.GetToken(c, MetricsService)
}
