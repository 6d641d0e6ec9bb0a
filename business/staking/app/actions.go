package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	blockchainDomain "github.com/fd1az/aurora-staking/business/blockchain/domain"
	"github.com/fd1az/aurora-staking/business/staking/domain"
	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/logger"
)

// DefaultSettleDelay is the pause between confirmation and resync.
const DefaultSettleDelay = 2 * time.Second

// ActionConfig configures the ActionRunner.
type ActionConfig struct {
	ChainID     uint64
	SettleDelay time.Duration
	// WaitForBlock makes the runner wait for a new head before resyncing.
	WaitForBlock bool
}

type actionMetrics struct {
	actions  metric.Int64Counter
	failures metric.Int64Counter
	rejected metric.Int64Counter
	latency  metric.Float64Histogram
}

// ActionRunner submits staking actions and resyncs the account once they
// settle. At most one action per account runs at a time.
type ActionRunner struct {
	sender TransactionSender
	wallet WalletSession
	heads  HeadSource
	syncer AccountSyncer
	cfg    ActionConfig
	logger logger.LoggerInterface

	mu       sync.Mutex
	inFlight map[common.Address]struct{}

	tracer  trace.Tracer
	metrics *actionMetrics
}

// NewActionRunner creates an ActionRunner. heads may be nil when
// cfg.WaitForBlock is false.
func NewActionRunner(
	sender TransactionSender,
	wallet WalletSession,
	heads HeadSource,
	syncer AccountSyncer,
	cfg ActionConfig,
	log logger.LoggerInterface,
) (*ActionRunner, error) {
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}

	r := &ActionRunner{
		sender:   sender,
		wallet:   wallet,
		heads:    heads,
		syncer:   syncer,
		cfg:      cfg,
		logger:   log,
		inFlight: make(map[common.Address]struct{}),
		tracer:   otel.Tracer(tracerName),
	}

	if err := r.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return r, nil
}

func (r *ActionRunner) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	r.metrics = &actionMetrics{}

	r.metrics.actions, err = meter.Int64Counter(
		"staking_actions_total",
		metric.WithDescription("Total staking actions submitted"),
	)
	if err != nil {
		return err
	}

	r.metrics.failures, err = meter.Int64Counter(
		"staking_action_failures_total",
		metric.WithDescription("Staking actions that failed to confirm"),
	)
	if err != nil {
		return err
	}

	r.metrics.rejected, err = meter.Int64Counter(
		"staking_actions_rejected_total",
		metric.WithDescription("Staking actions rejected before submission"),
	)
	if err != nil {
		return err
	}

	r.metrics.latency, err = meter.Float64Histogram(
		"staking_action_latency_ms",
		metric.WithDescription("Time from submission to resync in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Run submits action for account, waits for the settle delay and resyncs.
//
// A second action for the same account while one is running fails with
// ACTION_IN_PROGRESS; a wallet on another chain fails with WRONG_NETWORK.
// When the transaction confirmed but the resync failed, the receipt is
// returned together with the sync error.
func (r *ActionRunner) Run(ctx context.Context, account common.Address, action domain.Action) (*blockchainDomain.Receipt, error) {
	ctx, span := r.tracer.Start(ctx, "staking.action",
		trace.WithAttributes(
			attribute.String("account", account.Hex()),
			attribute.String("action", action.Kind.String()),
		),
	)
	defer span.End()

	if err := action.Validate(); err != nil {
		return nil, r.reject(ctx, span, err)
	}

	if !r.acquire(account) {
		return nil, r.reject(ctx, span, apperror.New(apperror.CodeActionInProgress,
			apperror.WithContext(fmt.Sprintf("%s for %s", action, account.Hex()))))
	}
	defer r.release(account)

	if err := r.checkChain(ctx); err != nil {
		return nil, r.reject(ctx, span, err)
	}

	start := time.Now()
	r.metrics.actions.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action.Kind.String())))
	r.logger.Info(ctx, "submitting staking action", "account", account.Hex(), "action", action.String())

	receipt, err := r.sender.Send(ctx, account, action)
	if err != nil {
		r.metrics.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action.Kind.String())))
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		r.logger.Error(ctx, "staking action failed", "account", account.Hex(), "action", action.String(), "error", err)
		return receipt, err
	}

	span.SetAttributes(attribute.String("tx_hash", receipt.TxHash.Hex()))

	if err := r.settle(ctx); err != nil {
		return receipt, err
	}

	if action.ResyncsAllowanceOnly() {
		err = r.syncer.SyncAllowance(ctx, account)
	} else {
		err = r.syncer.Sync(ctx, account)
	}

	r.metrics.latency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resync failed")
		return receipt, err
	}

	span.SetStatus(codes.Ok, "settled")
	r.logger.Info(ctx, "staking action settled",
		"account", account.Hex(),
		"action", action.String(),
		"tx", receipt.TxHash.Hex(),
		"block", receipt.BlockNumber)

	return receipt, nil
}

// InProgress reports whether an action is running for account.
func (r *ActionRunner) InProgress(account common.Address) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inFlight[account]
	return ok
}

func (r *ActionRunner) acquire(account common.Address) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inFlight[account]; busy {
		return false
	}
	r.inFlight[account] = struct{}{}
	return true
}

func (r *ActionRunner) release(account common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, account)
}

func (r *ActionRunner) checkChain(ctx context.Context) error {
	id, err := r.wallet.ChainID(ctx)
	if err != nil {
		return apperror.New(apperror.CodeActionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to read wallet chain id"))
	}
	if id != r.cfg.ChainID {
		return apperror.New(apperror.CodeWrongNetwork,
			apperror.WithContext(fmt.Sprintf("wallet on chain %d, expected %d", id, r.cfg.ChainID)))
	}
	return nil
}

// settle waits out the settle delay and, if configured, a new head.
func (r *ActionRunner) settle(ctx context.Context) error {
	if r.cfg.SettleDelay > 0 {
		timer := time.NewTimer(r.cfg.SettleDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if !r.cfg.WaitForBlock || r.heads == nil {
		return nil
	}

	block, err := r.heads.WaitForNextBlock(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Warn(ctx, "waiting for next block failed, resyncing anyway", "error", err)
		return nil
	}
	r.logger.Debug(ctx, "new head before resync", "block", block.Number)
	return nil
}

func (r *ActionRunner) reject(ctx context.Context, span trace.Span, err error) error {
	r.metrics.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("code", string(apperror.GetCode(err)))))
	span.RecordError(err)
	span.SetStatus(codes.Error, "rejected")
	r.logger.Warn(ctx, "staking action rejected", "error", err)
	return err
}
