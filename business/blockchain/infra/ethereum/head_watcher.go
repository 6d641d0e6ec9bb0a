// Package ethereum provides the Aurora RPC adapters: contract readers, the
// chain head watcher, gas pricing and transaction signing.
package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/aurora-staking/business/blockchain/domain"
	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/circuitbreaker"
	"github.com/fd1az/aurora-staking/internal/logger"
)

// HeadClient is the subset of an RPC client used to follow the chain head.
type HeadClient interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// HeadWatcherConfig holds configuration for the head watcher.
type HeadWatcherConfig struct {
	WSURL          string        // Optional websocket endpoint; polling is used when empty
	PollInterval   time.Duration // Polling interval when no subscription is available
	ReconnectDelay time.Duration // Delay before retrying the websocket
	BufferSize     int           // Block channel buffer size
}

// DefaultHeadWatcherConfig returns defaults for Aurora's ~1s blocks.
func DefaultHeadWatcherConfig(wsURL string) HeadWatcherConfig {
	return HeadWatcherConfig{
		WSURL:          wsURL,
		PollInterval:   2 * time.Second,
		ReconnectDelay: 5 * time.Second,
		BufferSize:     16,
	}
}

type headWatcherMetrics struct {
	blocksReceived   metric.Int64Counter
	subscribeErrors  metric.Int64Counter
	connectionState  metric.Int64Gauge
	httpFallbackUsed metric.Int64Counter
}

// HeadWatcher follows the chain head. It subscribes over websocket when a
// ws url is configured and polls the HTTP client otherwise, or after the
// subscription fails.
type HeadWatcher struct {
	config HeadWatcherConfig
	client HeadClient
	logger logger.LoggerInterface

	wsClient *ethclient.Client
	wsMu     sync.Mutex

	state      atomic.Value // domain.ConnectionState
	usingHTTP  atomic.Bool
	running    atomic.Bool
	closed     atomic.Bool
	reconnects atomic.Int32

	latestMu sync.RWMutex
	latest   *domain.Block
	lastSeen time.Time
	changed  chan struct{} // closed and replaced on every new head

	blocks  chan *domain.Block
	done    chan struct{}
	closeMu sync.Mutex

	cb *circuitbreaker.CircuitBreaker[*types.Header]

	tracer  trace.Tracer
	metrics *headWatcherMetrics
}

// NewHeadWatcher creates a head watcher over client.
func NewHeadWatcher(client HeadClient, cfg HeadWatcherConfig, log logger.LoggerInterface) (*HeadWatcher, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 16
	}

	w := &HeadWatcher{
		config:  cfg,
		client:  client,
		logger:  log,
		changed: make(chan struct{}),
		blocks:  make(chan *domain.Block, cfg.BufferSize),
		done:    make(chan struct{}),
		tracer:  otel.Tracer(tracerName),
	}
	w.state.Store(domain.StateDisconnected)

	if err := w.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig("eth-head")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Info(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	w.cb = circuitbreaker.New[*types.Header](cbCfg)

	return w, nil
}

func (w *HeadWatcher) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	w.metrics = &headWatcherMetrics{}

	w.metrics.blocksReceived, err = meter.Int64Counter(
		"eth_blocks_received_total",
		metric.WithDescription("Total chain heads received"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return err
	}

	w.metrics.subscribeErrors, err = meter.Int64Counter(
		"eth_subscribe_errors_total",
		metric.WithDescription("Total head subscription and poll errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	w.metrics.connectionState, err = meter.Int64Gauge(
		"eth_connection_state",
		metric.WithDescription("Head watcher state (0=disconnected, 1=connecting, 2=connected, 3=reconnecting)"),
		metric.WithUnit("{state}"),
	)
	if err != nil {
		return err
	}

	w.metrics.httpFallbackUsed, err = meter.Int64Counter(
		"eth_http_fallback_total",
		metric.WithDescription("Times polling replaced the websocket subscription"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Start begins following the head and returns the block channel. Blocks
// are dropped when the channel buffer is full; WaitForNext never misses them.
func (w *HeadWatcher) Start(ctx context.Context) (<-chan *domain.Block, error) {
	ctx, span := w.tracer.Start(ctx, "eth.head.start",
		trace.WithAttributes(attribute.Bool("ws", w.config.WSURL != "")),
	)
	defer span.End()

	if w.closed.Load() {
		err := errors.New("head watcher is closed")
		span.RecordError(err)
		return nil, err
	}
	if !w.running.CompareAndSwap(false, true) {
		return w.blocks, nil
	}

	w.setState(domain.StateConnecting)

	if w.config.WSURL != "" {
		err := w.connectWS(ctx)
		if err == nil {
			w.setState(domain.StateConnected)
			go w.runWSSubscription(ctx)
			span.SetStatus(codes.Ok, "subscribed")
			return w.blocks, nil
		}
		w.logger.Warn(ctx, "ws connection failed, polling instead", "error", err)
		span.AddEvent("ws_failed_polling")
	}

	w.usingHTTP.Store(true)
	w.setState(domain.StateConnected)
	go w.runPoller(ctx)

	span.SetStatus(codes.Ok, "polling")
	return w.blocks, nil
}

func (w *HeadWatcher) connectWS(ctx context.Context) error {
	ctx, span := w.tracer.Start(ctx, "eth.connect.ws")
	defer span.End()

	client, err := ethclient.DialContext(ctx, w.config.WSURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dial failed")
		return fmt.Errorf("dial ws: %w", err)
	}

	w.wsMu.Lock()
	w.wsClient = client
	w.wsMu.Unlock()

	span.SetStatus(codes.Ok, "connected")
	return nil
}

func (w *HeadWatcher) runWSSubscription(ctx context.Context) {
	w.wsMu.Lock()
	client := w.wsClient
	w.wsMu.Unlock()

	if client == nil {
		w.handleWSDisconnect(ctx)
		return
	}

	headers := make(chan *types.Header, w.config.BufferSize)
	sub, err := client.SubscribeNewHead(ctx, headers)
	if err != nil {
		w.logger.Error(ctx, "subscribe new head failed", "error", err)
		w.metrics.subscribeErrors.Add(ctx, 1)
		w.handleWSDisconnect(ctx)
		return
	}

	w.logger.Info(ctx, "subscribed to new heads via ws")
	w.processWSHeaders(ctx, headers, sub)
	sub.Unsubscribe()
	w.handleWSDisconnect(ctx)
}

func (w *HeadWatcher) processWSHeaders(ctx context.Context, headers <-chan *types.Header, sub ethereum.Subscription) {
	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			return
		case err := <-sub.Err():
			if err != nil {
				w.logger.Error(ctx, "subscription error", "error", err)
				w.metrics.subscribeErrors.Add(ctx, 1)
			}
			return
		case header := <-headers:
			if header != nil {
				w.processHeader(ctx, header, false)
			}
		}
	}
}

// handleWSDisconnect retries the websocket once and falls back to polling.
func (w *HeadWatcher) handleWSDisconnect(ctx context.Context) {
	if w.closed.Load() || ctx.Err() != nil {
		return
	}

	w.setState(domain.StateReconnecting)
	w.reconnects.Add(1)

	select {
	case <-time.After(w.config.ReconnectDelay):
	case <-w.done:
		return
	case <-ctx.Done():
		return
	}

	if err := w.connectWS(ctx); err != nil {
		w.logger.Warn(ctx, "ws reconnect failed, switching to polling", "error", err)
		w.usingHTTP.Store(true)
		w.metrics.httpFallbackUsed.Add(ctx, 1)
		w.setState(domain.StateConnected)
		go w.runPoller(ctx)
		return
	}

	w.usingHTTP.Store(false)
	w.setState(domain.StateConnected)
	go w.runWSSubscription(ctx)
}

func (w *HeadWatcher) runPoller(ctx context.Context) {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.logger.Info(ctx, "polling chain head", "interval", w.config.PollInterval)
	w.poll(ctx)

	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *HeadWatcher) poll(ctx context.Context) {
	if _, err := w.LatestBlock(ctx); err != nil {
		w.metrics.subscribeErrors.Add(ctx, 1)
		w.logger.Warn(ctx, "head poll failed", "error", err)
	}
}

// processHeader records a header and emits it when it is newer than the
// last seen head.
func (w *HeadWatcher) processHeader(ctx context.Context, header *types.Header, polled bool) *domain.Block {
	block := headerToBlock(header)

	w.latestMu.Lock()
	if w.latest != nil && block.Number <= w.latest.Number {
		current := w.latest
		w.lastSeen = time.Now()
		w.latestMu.Unlock()
		return current
	}
	w.latest = block
	w.lastSeen = time.Now()
	close(w.changed)
	w.changed = make(chan struct{})
	w.latestMu.Unlock()

	w.metrics.blocksReceived.Add(ctx, 1, metric.WithAttributes(attribute.Bool("polled", polled)))

	if w.running.Load() && !w.closed.Load() {
		select {
		case w.blocks <- block:
		default:
			w.logger.Warn(ctx, "block dropped, buffer full", "number", block.Number)
		}
	}

	w.logger.Debug(ctx, "chain head", "number", block.Number, "hash", block.Hash.Hex()[:10])
	return block
}

func headerToBlock(header *types.Header) *domain.Block {
	return &domain.Block{
		Number:     header.Number.Uint64(),
		Hash:       header.Hash(),
		ParentHash: header.ParentHash,
		Timestamp:  time.Unix(int64(header.Time), 0),
	}
}

// LatestBlock fetches the current head over HTTP.
func (w *HeadWatcher) LatestBlock(ctx context.Context) (*domain.Block, error) {
	ctx, span := w.tracer.Start(ctx, "eth.latest_block")
	defer span.End()

	header, err := w.cb.Execute(func() (*types.Header, error) {
		return w.client.HeaderByNumber(ctx, nil)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch latest block"))
	}

	span.SetStatus(codes.Ok, "fetched")
	return w.processHeader(ctx, header, true), nil
}

// WaitForNext blocks until a head newer than after is seen. When the
// watcher is not running it polls on its own.
func (w *HeadWatcher) WaitForNext(ctx context.Context, after uint64) (*domain.Block, error) {
	ctx, span := w.tracer.Start(ctx, "eth.wait_next_block",
		trace.WithAttributes(attribute.Int64("after", int64(after))),
	)
	defer span.End()

	var ticker *time.Ticker
	if !w.running.Load() {
		ticker = time.NewTicker(w.config.PollInterval)
		defer ticker.Stop()
	}

	for {
		w.latestMu.RLock()
		latest, changed := w.latest, w.changed
		w.latestMu.RUnlock()

		if latest != nil && latest.Number > after {
			span.SetAttributes(attribute.Int64("block", int64(latest.Number)))
			return latest, nil
		}

		var tick <-chan time.Time
		if ticker != nil {
			tick = ticker.C
		}

		select {
		case <-ctx.Done():
			span.RecordError(ctx.Err())
			return nil, ctx.Err()
		case <-w.done:
			return nil, errors.New("head watcher is closed")
		case <-changed:
		case <-tick:
			if _, err := w.LatestBlock(ctx); err != nil {
				w.logger.Debug(ctx, "head poll failed while waiting", "error", err)
			}
		}
	}
}

// Head returns the last seen head, if any.
func (w *HeadWatcher) Head() (*domain.Block, bool) {
	w.latestMu.RLock()
	defer w.latestMu.RUnlock()
	return w.latest, w.latest != nil
}

// LastSeen returns when a head was last observed.
func (w *HeadWatcher) LastSeen() time.Time {
	w.latestMu.RLock()
	defer w.latestMu.RUnlock()
	return w.lastSeen
}

// ChainID returns the chain id reported by the node.
func (w *HeadWatcher) ChainID(ctx context.Context) (*big.Int, error) {
	ctx, span := w.tracer.Start(ctx, "eth.chain_id")
	defer span.End()

	chainID, err := w.client.ChainID(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to get chain id"))
	}

	span.SetStatus(codes.Ok, "fetched")
	return chainID, nil
}

// State returns the current connection state.
func (w *HeadWatcher) State() domain.ConnectionState {
	return w.state.Load().(domain.ConnectionState)
}

// Status returns detailed connection status.
func (w *HeadWatcher) Status() domain.ConnectionStatus {
	status := domain.ConnectionStatus{
		State:      w.State(),
		LastSeen:   w.LastSeen(),
		Reconnects: int(w.reconnects.Load()),
		UsingHTTP:  w.usingHTTP.Load(),
	}
	if head, ok := w.Head(); ok {
		status.LastBlock = head.Number
	}
	return status
}

// Close stops the watcher and closes the websocket client. The HTTP
// client is owned by the caller.
func (w *HeadWatcher) Close() error {
	w.closeMu.Lock()
	defer w.closeMu.Unlock()

	if w.closed.Load() {
		return nil
	}

	w.closed.Store(true)
	close(w.done)

	w.wsMu.Lock()
	if w.wsClient != nil {
		w.wsClient.Close()
		w.wsClient = nil
	}
	w.wsMu.Unlock()

	w.setState(domain.StateDisconnected)
	return nil
}

func (w *HeadWatcher) setState(state domain.ConnectionState) {
	w.state.Store(state)

	var v int64
	switch state {
	case domain.StateConnecting:
		v = 1
	case domain.StateConnected:
		v = 2
	case domain.StateReconnecting:
		v = 3
	}
	w.metrics.connectionState.Record(context.Background(), v)
}
