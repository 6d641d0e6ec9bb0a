package app

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/aurora-staking/business/pricing/domain"
	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/cache"
	"github.com/fd1az/aurora-staking/internal/logger"
)

const tracerName = "pricing"

// PricingService serves market data from a PriceOracle, caching responses
// per key list.
type PricingService struct {
	oracle   PriceOracle
	cache    *cache.Cache[string, *domain.MarketData]
	cacheTTL time.Duration
	logger   logger.LoggerInterface
	tracer   trace.Tracer
}

// NewPricingService creates a PricingService. A zero cacheTTL disables
// caching.
func NewPricingService(oracle PriceOracle, cacheTTL time.Duration, log logger.LoggerInterface) *PricingService {
	return &PricingService{
		oracle:   oracle,
		cache:    cache.New[string, *domain.MarketData](time.Minute),
		cacheTTL: cacheTTL,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}
}

// MarketData returns prices index-aligned to keys. A response that is not
// aligned to the request fails with INVALID_INPUT.
func (s *PricingService) MarketData(ctx context.Context, keys []string) (*domain.MarketData, error) {
	if len(keys) == 0 {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("no price keys requested"))
	}

	cacheKey := strings.ToLower(strings.Join(keys, ","))
	if s.cacheTTL > 0 {
		if md, ok := s.cache.Get(ctx, cacheKey); ok {
			return md, nil
		}
	}

	ctx, span := s.tracer.Start(ctx, "pricing.market_data",
		trace.WithAttributes(
			attribute.String("oracle", s.oracle.Name()),
			attribute.Int("keys", len(keys)),
		),
	)
	defer span.End()

	md, err := s.oracle.MarketData(ctx, keys)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "oracle failed")
		return nil, err
	}

	if err := md.AlignedTo(keys); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "misaligned response")
		return nil, err
	}

	missing := 0
	for i := range keys {
		if !md.Price(i).IsPresent() {
			missing++
		}
	}
	if missing > 0 {
		s.logger.Debug(ctx, "oracle omitted prices", "oracle", s.oracle.Name(), "missing", missing)
	}
	span.SetAttributes(attribute.Int("missing", missing))
	span.SetStatus(codes.Ok, "fetched")

	if s.cacheTTL > 0 {
		s.cache.Set(ctx, cacheKey, md, s.cacheTTL)
	}

	return md, nil
}

// Close releases the cache.
func (s *PricingService) Close() {
	s.cache.Close()
}
