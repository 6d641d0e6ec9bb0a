package app

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	pricingDomain "github.com/fd1az/aurora-staking/business/pricing/domain"
	"github.com/fd1az/aurora-staking/business/staking/domain"
	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/logger"
	"github.com/fd1az/aurora-staking/internal/network"
)

const (
	tracerName = "staking"
	meterName  = "staking"
)

// SyncConfig configures the Synchronizer.
type SyncConfig struct {
	// ReadTimeout bounds each individual read. Zero means no per-read bound.
	ReadTimeout time.Duration
}

type syncMetrics struct {
	cycles         metric.Int64Counter
	failures       metric.Int64Counter
	discarded      metric.Int64Counter
	batchFallbacks metric.Int64Counter
	latency        metric.Float64Histogram
}

// Synchronizer reads everything about one account in a single concurrent
// cycle and publishes the result as an immutable AccountSnapshot.
//
// Overlapping cycles resolve newest-wins: starting a cycle cancels the
// previous one, and only the latest generation may publish.
type Synchronizer struct {
	net     *network.Config
	staking StakingReader
	tokens  TokenReader
	prices  MarketDataProvider
	cfg     SyncConfig
	logger  logger.LoggerInterface
	now     func() time.Time

	mu         sync.Mutex // guards generation and cancel
	generation uint64
	cancel     context.CancelFunc

	snapshot atomic.Pointer[domain.AccountSnapshot]
	synced   atomic.Bool

	tracer  trace.Tracer
	metrics *syncMetrics
}

// NewSynchronizer creates a Synchronizer for the given network.
func NewSynchronizer(
	net *network.Config,
	staking StakingReader,
	tokens TokenReader,
	prices MarketDataProvider,
	cfg SyncConfig,
	log logger.LoggerInterface,
) (*Synchronizer, error) {
	s := &Synchronizer{
		net:     net,
		staking: staking,
		tokens:  tokens,
		prices:  prices,
		cfg:     cfg,
		logger:  log,
		now:     time.Now,
		tracer:  otel.Tracer(tracerName),
	}

	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return s, nil
}

func (s *Synchronizer) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &syncMetrics{}

	s.metrics.cycles, err = meter.Int64Counter(
		"staking_sync_cycles_total",
		metric.WithDescription("Total account sync cycles started"),
	)
	if err != nil {
		return err
	}

	s.metrics.failures, err = meter.Int64Counter(
		"staking_sync_failures_total",
		metric.WithDescription("Account sync cycles aborted by a failed read"),
	)
	if err != nil {
		return err
	}

	s.metrics.discarded, err = meter.Int64Counter(
		"staking_sync_discarded_total",
		metric.WithDescription("Account sync cycles superseded by a newer cycle"),
	)
	if err != nil {
		return err
	}

	s.metrics.batchFallbacks, err = meter.Int64Counter(
		"staking_sync_batch_fallbacks_total",
		metric.WithDescription("Streamed balance batches replaced by zeros"),
	)
	if err != nil {
		return err
	}

	s.metrics.latency, err = meter.Float64Histogram(
		"staking_sync_latency_ms",
		metric.WithDescription("Account sync cycle latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Sync runs one cycle for account. On failure the previous snapshot stays
// published and the synchronizer reports unsynced. A cycle superseded by a
// newer one returns nil without publishing.
func (s *Synchronizer) Sync(ctx context.Context, account common.Address) error {
	gen, ctx, done := s.begin(ctx)
	defer done()

	ctx, span := s.tracer.Start(ctx, "staking.sync",
		trace.WithAttributes(
			attribute.String("account", account.Hex()),
			attribute.Int64("generation", int64(gen)),
		),
	)
	defer span.End()

	start := time.Now()
	s.metrics.cycles.Add(ctx, 1)

	snap, err := s.read(ctx, account)

	s.metrics.latency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		if !s.isLatest(gen) {
			s.discard(ctx, span, account, gen)
			return nil
		}
		s.metrics.failures.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "sync failed")
		s.logger.Warn(ctx, "account sync failed", "account", account.Hex(), "error", err)
		return err
	}

	if !s.publish(gen, snap) {
		s.discard(ctx, span, account, gen)
		return nil
	}

	span.SetStatus(codes.Ok, "published")
	s.logger.Debug(ctx, "account snapshot published",
		"account", account.Hex(),
		"generation", gen,
		"deposit", snap.Deposit.String(),
		"pending", len(snap.Pending),
	)

	return nil
}

// SyncAllowance refreshes only the allowance and republishes the current
// snapshot with it. It starts a new generation like Sync, so a full cycle
// already in flight is cancelled and can no longer publish over the fresh
// allowance. Without a snapshot for account it runs a full Sync.
func (s *Synchronizer) SyncAllowance(ctx context.Context, account common.Address) error {
	cur := s.snapshot.Load()
	if cur == nil || cur.Account != account {
		return s.Sync(ctx, account)
	}

	gen, ctx, done := s.begin(ctx)
	defer done()

	ctx, span := s.tracer.Start(ctx, "staking.sync_allowance",
		trace.WithAttributes(
			attribute.String("account", account.Hex()),
			attribute.Int64("generation", int64(gen)),
		),
	)
	defer span.End()

	rctx, cancel := withReadTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	allowance, err := s.tokens.Allowance(rctx, s.net.TokenAddress(), account, s.net.StakingAddress())
	if err != nil {
		if !s.isLatest(gen) {
			s.discard(ctx, span, account, gen)
			return nil
		}
		err = readFailure("allowance", err)
		s.metrics.failures.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "allowance sync failed")
		s.logger.Warn(ctx, "allowance sync failed", "account", account.Hex(), "error", err)
		return err
	}

	if !s.publishAllowance(gen, account, allowance) {
		s.discard(ctx, span, account, gen)
		return nil
	}

	span.SetStatus(codes.Ok, "published")
	return nil
}

// Reset drops the snapshot and cancels any running cycle.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.snapshot.Store(nil)
	s.synced.Store(false)
}

// Current returns the published snapshot, if any, and whether it is the
// result of the latest cycle.
func (s *Synchronizer) Current() (*domain.AccountSnapshot, bool) {
	snap := s.snapshot.Load()
	return snap, snap != nil && s.synced.Load()
}

// Synced reports whether the latest cycle published.
func (s *Synchronizer) Synced() bool {
	return s.synced.Load()
}

// HasShares reports whether the current snapshot holds base stream shares.
func (s *Synchronizer) HasShares() bool {
	snap := s.snapshot.Load()
	return snap != nil && snap.HasShares()
}

// begin starts a new generation, cancelling the previous cycle.
func (s *Synchronizer) begin(ctx context.Context) (uint64, context.Context, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.synced.Store(false)

	return gen, ctx, func() {
		cancel()
		s.mu.Lock()
		if s.generation == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
	}
}

func (s *Synchronizer) isLatest(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

func (s *Synchronizer) publish(gen uint64, snap *domain.AccountSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		return false
	}
	s.snapshot.Store(snap)
	s.synced.Store(true)
	return true
}

// publishAllowance republishes the latest snapshot with allowance, if gen
// is still the newest cycle.
func (s *Synchronizer) publishAllowance(gen uint64, account common.Address, allowance *big.Int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		return false
	}
	latest := s.snapshot.Load()
	if latest == nil || latest.Account != account {
		return false
	}
	s.snapshot.Store(latest.WithAllowance(allowance, s.now()))
	s.synced.Store(true)
	return true
}

func (s *Synchronizer) discard(ctx context.Context, span trace.Span, account common.Address, gen uint64) {
	s.metrics.discarded.Add(ctx, 1)
	span.SetAttributes(attribute.Bool("superseded", true))
	s.logger.Debug(ctx, "stale sync cycle discarded", "account", account.Hex(), "generation", gen)
}

// read fans out every account read and assembles the snapshot once all
// of them have completed.
func (s *Synchronizer) read(ctx context.Context, account common.Address) (*domain.AccountSnapshot, error) {
	streams := s.net.AllStreams()
	token := s.net.TokenAddress()
	timeout := s.cfg.ReadTimeout

	var (
		baseBalance, voteBalance, allowance, deposit *big.Int
		userShares, totalShares, totalStaked         *big.Int
		paused                                       bool
		market                                       *pricingDomain.MarketData
		streamed                                     []*big.Int

		pending = make([]*big.Int, len(streams))
		release = make([]*big.Int, len(streams))
	)

	g, gctx := errgroup.WithContext(ctx)

	fetch(g, gctx, timeout, "base balance", &baseBalance, func(ctx context.Context) (*big.Int, error) {
		return s.tokens.BalanceOf(ctx, token, account)
	})
	fetch(g, gctx, timeout, "vote balance", &voteBalance, func(ctx context.Context) (*big.Int, error) {
		return s.tokens.BalanceOf(ctx, s.net.VoteStream().Address(), account)
	})
	fetch(g, gctx, timeout, "allowance", &allowance, func(ctx context.Context) (*big.Int, error) {
		return s.tokens.Allowance(ctx, token, account, s.net.StakingAddress())
	})
	fetch(g, gctx, timeout, "deposit", &deposit, func(ctx context.Context) (*big.Int, error) {
		return s.staking.UserTotalDeposit(ctx, account)
	})
	fetch(g, gctx, timeout, "user shares", &userShares, func(ctx context.Context) (*big.Int, error) {
		return s.staking.UserShares(ctx, network.BaseStreamID, account)
	})
	fetch(g, gctx, timeout, "total shares", &totalShares, s.staking.TotalShares)
	fetch(g, gctx, timeout, "total staked", &totalStaked, s.staking.TotalStaked)
	fetch(g, gctx, timeout, "paused", &paused, s.staking.Paused)

	for i, st := range streams {
		fetch(g, gctx, timeout, fmt.Sprintf("pending for stream %d", st.ID()), &pending[i], func(ctx context.Context) (*big.Int, error) {
			return s.staking.Pending(ctx, st.ID(), account)
		})
		fetch(g, gctx, timeout, fmt.Sprintf("release time for stream %d", st.ID()), &release[i], func(ctx context.Context) (*big.Int, error) {
			return s.staking.ReleaseTime(ctx, st.ID(), account)
		})
	}

	g.Go(func() error {
		streamed = s.readStreamed(gctx, account, streams[1:])
		return nil
	})

	g.Go(func() error {
		rctx, cancel := withReadTimeout(gctx, timeout)
		defer cancel()

		md, err := s.prices.MarketData(rctx, s.net.OracleKeys())
		if err != nil {
			return err
		}
		market = md
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &domain.AccountSnapshot{
		Account:     account,
		BaseBalance: baseBalance,
		VoteBalance: voteBalance,
		Allowance:   allowance,
		Deposit:     deposit,
		UserShares:  userShares,
		TotalShares: totalShares,
		TotalStaked: totalStaked,
		BasePrice:   market.Price(0),
		Paused:      paused,
		Streams:     make([]domain.StreamBalance, 0, len(streams)-1),
		SyncedAt:    s.now(),
	}

	for i, st := range streams {
		if i > 0 {
			snap.Streams = append(snap.Streams, domain.StreamBalance{
				StreamID:       st.ID(),
				Symbol:         st.Symbol(),
				Decimals:       st.Decimals(),
				StreamedAmount: streamed[i-1],
				UnitPrice:      market.Price(i),
			})
		}
		if pending[i].Sign() > 0 {
			snap.Pending = append(snap.Pending, domain.PendingWithdrawal{
				StreamID:      st.ID(),
				Symbol:        st.Symbol(),
				Amount:        pending[i],
				Decimals:      st.Decimals(),
				ReleaseTimeMs: release[i].Int64() * 1000,
			})
		}
	}

	vote := s.net.VoteIndex()
	snap.VoteWithdrawable = new(big.Int).Set(pending[vote+1])
	snap.VoteTotalBalance = domain.VoteTotalBalance(voteBalance, streamed[vote], snap.VoteWithdrawable)
	snap.UserSharesValue = domain.UserSharesValue(totalStaked, userShares, totalShares)

	return snap, nil
}

// readStreamed reads the claimable amount of every stream as one batch.
// If any read in the batch fails, every amount is zero.
func (s *Synchronizer) readStreamed(ctx context.Context, account common.Address, streams []network.Stream) []*big.Int {
	out := make([]*big.Int, len(streams))

	g, gctx := errgroup.WithContext(ctx)
	for i, st := range streams {
		fetch(g, gctx, s.cfg.ReadTimeout, fmt.Sprintf("streamed amount for stream %d", st.ID()), &out[i], func(ctx context.Context) (*big.Int, error) {
			return s.staking.StreamClaimable(ctx, st.ID(), account)
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() == nil {
			s.metrics.batchFallbacks.Add(ctx, 1)
			s.logger.Warn(ctx, "streamed balances unavailable, reporting zero",
				"account", account.Hex(), "error", err)
		}
		for i := range out {
			out[i] = new(big.Int)
		}
	}

	return out
}

// fetch runs read on g under the per-read timeout and stores the result in dst.
func fetch[T any](g *errgroup.Group, ctx context.Context, timeout time.Duration, what string, dst *T, read func(context.Context) (T, error)) {
	g.Go(func() error {
		rctx, cancel := withReadTimeout(ctx, timeout)
		defer cancel()

		v, err := read(rctx)
		if err != nil {
			return readFailure(what, err)
		}
		*dst = v
		return nil
	})
}

func withReadTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func readFailure(what string, cause error) error {
	return apperror.New(apperror.CodeReadFailure,
		apperror.WithCause(cause),
		apperror.WithContext(what))
}
