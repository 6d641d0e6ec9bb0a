package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/aurora-staking/business/blockchain/domain"
	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/cache"
	"github.com/fd1az/aurora-staking/internal/circuitbreaker"
	"github.com/fd1az/aurora-staking/internal/logger"
)

// GasClient is the subset of an RPC client the gas oracle needs.
type GasClient interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// GasOracleConfig holds configuration for the gas oracle.
type GasOracleConfig struct {
	CacheTTL    time.Duration // How long to cache gas prices
	MaxGasPrice *big.Int      // Upper bound applied to suggested prices
	DefaultGas  uint64        // Gas limit used when estimation fails
}

// DefaultGasOracleConfig returns defaults suited to Aurora's flat gas price.
func DefaultGasOracleConfig() GasOracleConfig {
	maxGas := new(big.Int)
	maxGas.SetString("100000000000", 10) // 100 gwei

	return GasOracleConfig{
		CacheTTL:    10 * time.Second,
		MaxGasPrice: maxGas,
		DefaultGas:  300000,
	}
}

// gasOracleMetrics holds OTEL metric instruments.
type gasOracleMetrics struct {
	gasPriceFetches metric.Int64Counter
	gasPriceGwei    metric.Float64Gauge
	estimateGas     metric.Int64Counter
	cacheHits       metric.Int64Counter
}

// GasOracle prices and sizes staking transactions.
type GasOracle struct {
	config GasOracleConfig
	client GasClient
	logger logger.LoggerInterface

	priceCache *cache.Cache[string, *domain.GasPrice]
	cb         *circuitbreaker.CircuitBreaker[*big.Int]

	tracer  trace.Tracer
	metrics *gasOracleMetrics
}

// NewGasOracle creates a gas oracle over client.
func NewGasOracle(client GasClient, cfg GasOracleConfig, log logger.LoggerInterface) (*GasOracle, error) {
	g := &GasOracle{
		config:     cfg,
		client:     client,
		logger:     log,
		priceCache: cache.New[string, *domain.GasPrice](time.Minute),
		cb:         circuitbreaker.New[*big.Int](circuitbreaker.DefaultConfig("gas-oracle")),
		tracer:     otel.Tracer(tracerName),
	}

	if err := g.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return g, nil
}

func (g *GasOracle) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	g.metrics = &gasOracleMetrics{}

	g.metrics.gasPriceFetches, err = meter.Int64Counter(
		"gas_price_fetches_total",
		metric.WithDescription("Total gas price fetch attempts"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	g.metrics.gasPriceGwei, err = meter.Float64Gauge(
		"gas_price_gwei",
		metric.WithDescription("Current gas price in gwei"),
		metric.WithUnit("gwei"),
	)
	if err != nil {
		return err
	}

	g.metrics.estimateGas, err = meter.Int64Counter(
		"gas_estimate_total",
		metric.WithDescription("Total gas estimation calls"),
		metric.WithUnit("{estimate}"),
	)
	if err != nil {
		return err
	}

	g.metrics.cacheHits, err = meter.Int64Counter(
		"gas_cache_hits_total",
		metric.WithDescription("Gas price cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GasPrice returns the suggested gas price, capped at MaxGasPrice.
func (g *GasOracle) GasPrice(ctx context.Context) (*domain.GasPrice, error) {
	ctx, span := g.tracer.Start(ctx, "gas.get_price")
	defer span.End()

	if price, found := g.priceCache.Get(ctx, "current"); found {
		g.metrics.cacheHits.Add(ctx, 1)
		span.AddEvent("cache_hit")
		return price, nil
	}

	g.metrics.gasPriceFetches.Add(ctx, 1)

	wei, err := g.cb.Execute(func() (*big.Int, error) {
		return g.client.SuggestGasPrice(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to get gas price"))
	}

	if g.config.MaxGasPrice != nil && wei.Cmp(g.config.MaxGasPrice) > 0 {
		g.logger.Warn(ctx, "gas price exceeds max", "wei", wei.String())
		wei = new(big.Int).Set(g.config.MaxGasPrice)
	}

	price := domain.NewGasPrice(wei)
	g.priceCache.Set(ctx, "current", price, g.config.CacheTTL)
	g.metrics.gasPriceGwei.Record(ctx, price.Gwei())

	span.SetAttributes(attribute.Float64("gwei", price.Gwei()))
	span.SetStatus(codes.Ok, "fetched")

	return price, nil
}

// EstimateGas estimates the gas needed for a call from `from` to `to`,
// with a 10% margin.
func (g *GasOracle) EstimateGas(ctx context.Context, from, to common.Address, data []byte) (uint64, error) {
	ctx, span := g.tracer.Start(ctx, "gas.estimate",
		trace.WithAttributes(
			attribute.String("to", to.Hex()),
			attribute.Int("data_len", len(data)),
		),
	)
	defer span.End()

	g.metrics.estimateGas.Add(ctx, 1)

	gas, err := g.client.EstimateGas(ctx, ethereum.CallMsg{
		From: from,
		To:   &to,
		Data: data,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "estimate failed")
		return 0, apperror.New(apperror.CodeGasEstimationFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("failed to estimate gas for %s", to.Hex())))
	}

	gas += gas / 10

	span.SetAttributes(attribute.Int64("gas", int64(gas)))
	span.SetStatus(codes.Ok, "estimated")

	return gas, nil
}

// Estimate returns a full estimate including price. A revert during
// estimation is returned as is; other estimation failures fall back to
// DefaultGas.
func (g *GasOracle) Estimate(ctx context.Context, from, to common.Address, data []byte) (*domain.GasEstimate, error) {
	ctx, span := g.tracer.Start(ctx, "gas.full_estimate")
	defer span.End()

	price, err := g.GasPrice(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	limit, err := g.EstimateGas(ctx, from, to, data)
	if err != nil {
		if isRevert(err) {
			span.RecordError(err)
			return nil, err
		}
		limit = g.config.DefaultGas
		span.AddEvent("using_default_gas", trace.WithAttributes(
			attribute.Int64("default", int64(limit))))
	}

	estimate := domain.NewGasEstimate(limit, price)

	span.SetAttributes(
		attribute.Int64("gas_limit", int64(estimate.GasLimit)),
		attribute.String("total_wei", estimate.TotalWei.String()),
	)
	span.SetStatus(codes.Ok, "estimated")

	return estimate, nil
}

// Close releases the price cache.
func (g *GasOracle) Close() error {
	g.priceCache.Close()
	return nil
}
