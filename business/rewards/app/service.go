package app

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	pricingDomain "github.com/fd1az/aurora-staking/business/pricing/domain"
	"github.com/fd1az/aurora-staking/business/rewards/domain"
	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/cache"
	"github.com/fd1az/aurora-staking/internal/logger"
	"github.com/fd1az/aurora-staking/internal/network"
)

const (
	tracerName = "rewards"
	meterName  = "rewards"
)

// MetricsConfig configures the MetricsService.
type MetricsConfig struct {
	// CacheTTL bounds how long a computed result is reused. Zero disables caching.
	CacheTTL time.Duration
}

type serviceMetrics struct {
	computations metric.Int64Counter
	failures     metric.Int64Counter
	cacheHits    metric.Int64Counter
	latency      metric.Float64Histogram
}

// MetricsService computes ProtocolMetrics from schedules, the staked total
// and oracle prices.
type MetricsService struct {
	net       *network.Config
	schedules ScheduleReader
	prices    MarketDataProvider
	cfg       MetricsConfig
	cache     *cache.Cache[string, *domain.ProtocolMetrics]
	logger    logger.LoggerInterface

	tracer  trace.Tracer
	metrics *serviceMetrics
}

// NewMetricsService creates a MetricsService.
func NewMetricsService(
	net *network.Config,
	schedules ScheduleReader,
	prices MarketDataProvider,
	cfg MetricsConfig,
	log logger.LoggerInterface,
) (*MetricsService, error) {
	s := &MetricsService{
		net:       net,
		schedules: schedules,
		prices:    prices,
		cfg:       cfg,
		cache:     cache.New[string, *domain.ProtocolMetrics](0),
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}

	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return s, nil
}

func (s *MetricsService) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &serviceMetrics{}

	s.metrics.computations, err = meter.Int64Counter(
		"rewards_metrics_computations_total",
		metric.WithDescription("Total protocol metrics computations"),
	)
	if err != nil {
		return err
	}

	s.metrics.failures, err = meter.Int64Counter(
		"rewards_metrics_failures_total",
		metric.WithDescription("Failed protocol metrics computations"),
	)
	if err != nil {
		return err
	}

	s.metrics.cacheHits, err = meter.Int64Counter(
		"rewards_metrics_cache_hits_total",
		metric.WithDescription("Protocol metrics served from cache"),
	)
	if err != nil {
		return err
	}

	s.metrics.latency, err = meter.Float64Histogram(
		"rewards_metrics_latency_ms",
		metric.WithDescription("Protocol metrics computation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Compute returns the protocol metrics at now, reusing a cached result
// while it is fresh.
func (s *MetricsService) Compute(ctx context.Context, now time.Time) (*domain.ProtocolMetrics, error) {
	if s.cfg.CacheTTL > 0 {
		if cached, ok := s.cache.Get(ctx, s.net.Name()); ok {
			s.metrics.cacheHits.Add(ctx, 1)
			return cached, nil
		}
	}

	ctx, span := s.tracer.Start(ctx, "rewards.compute_metrics",
		trace.WithAttributes(attribute.String("network", s.net.Name())),
	)
	defer span.End()

	start := time.Now()
	s.metrics.computations.Add(ctx, 1)

	result, err := s.compute(ctx, now)

	s.metrics.latency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		s.metrics.failures.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "metrics computation failed")
		s.logger.Error(ctx, "protocol metrics computation failed", "network", s.net.Name(), "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Float64("total_apr", result.TotalAPR),
		attribute.Float64("base_apr", result.BaseAPR),
	)
	span.SetStatus(codes.Ok, "metrics computed")

	if s.cfg.CacheTTL > 0 {
		s.cache.Set(ctx, s.net.Name(), result, s.cfg.CacheTTL)
	}

	s.logger.Debug(ctx, "protocol metrics computed",
		"network", s.net.Name(),
		"total_apr", result.TotalAPR,
		"base_apr", result.BaseAPR,
		"vote_supply", result.VoteCirculatingSupply.String(),
	)

	return result, nil
}

// Invalidate drops any cached result.
func (s *MetricsService) Invalidate(ctx context.Context) {
	s.cache.Delete(ctx, s.net.Name())
}

// Close releases cache resources.
func (s *MetricsService) Close() {
	s.cache.Close()
}

type rawInputs struct {
	schedules   []*domain.Schedule
	totalStaked *big.Int
	market      *pricingDomain.MarketData
}

func (s *MetricsService) compute(ctx context.Context, now time.Time) (*domain.ProtocolMetrics, error) {
	streams := s.net.AllStreams()

	in, err := s.read(ctx, streams)
	if err != nil {
		return nil, err
	}

	refMs := now.UnixMilli()

	decimals := make([]uint8, len(streams))
	prices := make([]pricingDomain.UnitPrice, len(streams))
	for i, st := range streams {
		decimals[i] = st.Decimals()
		prices[i] = in.market.Price(i)
	}

	aprs, err := domain.ComputeAPRs(domain.APRInput{
		Schedules:   in.schedules,
		Decimals:    decimals,
		Prices:      prices,
		TotalStaked: in.totalStaked,
		RefMs:       refMs,
	})
	if err != nil {
		return nil, err
	}

	views := make([]domain.StreamMetrics, len(streams))
	for i := range streams {
		apr := aprs.Base
		if i > 0 {
			apr = aprs.PerStream[i-1]
		}
		views[i] = streamInput{
			stream:    streams[i],
			schedule:  in.schedules[i],
			dailyRate: aprs.DailyRate[i],
			price:     prices[i],
			apr:       apr,
		}.view(refMs)
	}

	vote := in.schedules[s.net.VoteIndex()+1]
	voteSupply := domain.CirculatingSupply(vote, domain.ClampMs(vote, refMs))

	result := &domain.ProtocolMetrics{
		BaseAPR:               aprs.Base,
		TotalAPR:              aprs.Total,
		PerStreamAPR:          aprs.PerStream,
		VoteCirculatingSupply: voteSupply,
		Base:                  views[0],
		Streams:               views[1:],
		TotalStaked:           in.totalStaked,
		ComputedAt:            now,
	}

	basePrice := in.market.Price(0).OrZero()
	baseCap := in.market.MarketCap(0).OrZero()
	if basePrice != 0 && baseCap != 0 {
		pct, err := domain.StakedPctOfSupply(in.totalStaked, basePrice, baseCap)
		if err != nil {
			return nil, err
		}
		result.StakedPctOfSupply = pct
		result.StakedPctAvailable = true
	}

	return result, nil
}

// read fetches every schedule, the staked total and market data concurrently.
func (s *MetricsService) read(ctx context.Context, streams []network.Stream) (*rawInputs, error) {
	in := &rawInputs{schedules: make([]*domain.Schedule, len(streams))}

	g, gctx := errgroup.WithContext(ctx)

	for i, st := range streams {
		g.Go(func() error {
			times, remaining, err := s.schedules.StreamSchedule(gctx, st.ID())
			if err != nil {
				return readFailure(fmt.Sprintf("schedule for stream %d (%s)", st.ID(), st.Symbol()), err)
			}
			sched, err := domain.NewSchedule(times, remaining)
			if err != nil {
				return err
			}
			in.schedules[i] = sched
			return nil
		})
	}

	g.Go(func() error {
		total, err := s.schedules.TotalStaked(gctx)
		if err != nil {
			return readFailure("total staked", err)
		}
		in.totalStaked = total
		return nil
	})

	g.Go(func() error {
		md, err := s.prices.MarketData(gctx, s.net.OracleKeys())
		if err != nil {
			return err
		}
		in.market = md
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return in, nil
}

type streamInput struct {
	stream    network.Stream
	schedule  *domain.Schedule
	dailyRate *big.Int
	price     pricingDomain.UnitPrice
	apr       float64
}

func (p streamInput) view(refMs int64) domain.StreamMetrics {
	return domain.StreamMetrics{
		ID:               p.stream.ID(),
		Symbol:           p.stream.Symbol(),
		Name:             p.stream.Name(),
		Decimals:         p.stream.Decimals(),
		StartTimestampMs: p.schedule.StartTime(),
		EndTimestampMs:   p.schedule.EndTime(),
		IsStarted:        refMs >= p.schedule.StartTime(),
		ProgressPct:      domain.ProgressPct(p.schedule, refMs),
		DailyRate:        p.dailyRate,
		UnitPrice:        p.price,
		APR:              p.apr,
	}
}

func readFailure(what string, cause error) error {
	return apperror.New(apperror.CodeReadFailure,
		apperror.WithCause(cause),
		apperror.WithContext(what))
}
