// Package coingecko implements the price oracle on the CoinGecko
// /coins/markets endpoint.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/aurora-staking/business/pricing/domain"
	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/circuitbreaker"
	"github.com/fd1az/aurora-staking/internal/httpclient"
	"github.com/fd1az/aurora-staking/internal/logger"
	"github.com/fd1az/aurora-staking/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/aurora-staking/business/pricing/infra/coingecko"
	meterName  = "github.com/fd1az/aurora-staking/business/pricing/infra/coingecko"

	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	sourceName      = "coingecko"
	marketsEndpoint = "/coins/markets"

	demoKeyHeader = "x-cg-demo-api-key"
	proKeyHeader  = "x-cg-pro-api-key"
)

// Config holds configuration for the CoinGecko client.
type Config struct {
	BaseURL           string
	APIKey            string
	RequestsPerMinute int
	Timeout           time.Duration
	RetryMax          int
}

// DefaultConfig returns settings within the public API's free tier.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		RequestsPerMinute: 30,
		Timeout:           10 * time.Second,
		RetryMax:          3,
	}
}

// MarketEntry is one element of the /coins/markets response. Prices are
// null for coins without recent trades.
type MarketEntry struct {
	ID           string   `json:"id"`
	Symbol       string   `json:"symbol"`
	CurrentPrice *float64 `json:"current_price"`
	MarketCap    *float64 `json:"market_cap"`
}

type clientMetrics struct {
	requests metric.Int64Counter
	missing  metric.Int64Counter
	latency  metric.Float64Histogram
}

// Client is a PriceOracle backed by CoinGecko.
type Client struct {
	http    httpclient.Client
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[[]MarketEntry]
	logger  logger.LoggerInterface

	tracer  trace.Tracer
	metrics *clientMetrics
}

// NewClient creates a CoinGecko client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	tracer := otel.Tracer(tracerName)

	headers := map[string]string{"Accept": "application/json"}
	if cfg.APIKey != "" {
		headers[apiKeyHeader(cfg.BaseURL)] = cfg.APIKey
	}

	retry := httpclient.DefaultRetryConfig()
	retry.RetryMax = cfg.RetryMax

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(sourceName),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithRetry(retry),
		httpclient.WithTraceOptions(tracer, httpclient.TraceResponse),
		httpclient.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig("coingecko")
	cbCfg.Timeout = 30 * time.Second
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	c := &Client{
		http:    client,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		cb:      circuitbreaker.New[[]MarketEntry](cbCfg),
		logger:  log,
		tracer:  tracer,
	}

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.requests, err = meter.Int64Counter(
		"coingecko_requests_total",
		metric.WithDescription("Total CoinGecko market requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	c.metrics.missing, err = meter.Int64Counter(
		"coingecko_missing_prices_total",
		metric.WithDescription("Requested ids without a price in the response"),
		metric.WithUnit("{price}"),
	)
	if err != nil {
		return err
	}

	c.metrics.latency, err = meter.Float64Histogram(
		"coingecko_request_latency_ms",
		metric.WithDescription("CoinGecko request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Name returns the oracle name.
func (c *Client) Name() string {
	return sourceName
}

// MarketData fetches prices and market caps for keys in one request. The
// result is aligned to keys; ids missing from the response or reported as
// null become absent prices.
func (c *Client) MarketData(ctx context.Context, keys []string) (*domain.MarketData, error) {
	ctx, span := c.tracer.Start(ctx, "coingecko.market_data",
		trace.WithAttributes(attribute.StringSlice("ids", keys)),
	)
	defer span.End()

	ids := uniqueIDs(keys)

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodePriceOracleFailed,
			apperror.WithCause(err),
			apperror.WithContext("rate limiter wait"))
	}

	start := time.Now()
	c.metrics.requests.Add(ctx, 1)

	entries, err := c.cb.Execute(func() ([]MarketEntry, error) {
		return c.fetchMarkets(ctx, ids)
	})

	c.metrics.latency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, apperror.New(apperror.CodePriceOracleFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("coins/markets for %d ids", len(ids))))
	}

	byID := make(map[string]MarketEntry, len(entries))
	for _, e := range entries {
		byID[strings.ToLower(e.ID)] = e
	}

	prices := make([]domain.UnitPrice, len(keys))
	caps := make([]domain.UnitPrice, len(keys))
	missing := 0
	for i, k := range keys {
		e, ok := byID[strings.ToLower(k)]
		prices[i] = optional(e.CurrentPrice, ok)
		caps[i] = optional(e.MarketCap, ok)
		if !prices[i].IsPresent() {
			missing++
		}
	}

	if missing > 0 {
		c.metrics.missing.Add(ctx, int64(missing))
	}

	md, err := domain.NewMarketData(keys, prices, caps, sourceName)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("missing", missing))
	span.SetStatus(codes.Ok, "fetched")

	c.logger.Debug(ctx, "fetched market data", "ids", len(ids), "missing", missing)

	return md, nil
}

func (c *Client) fetchMarkets(ctx context.Context, ids []string) ([]MarketEntry, error) {
	var result []MarketEntry

	_, err := c.http.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "coins_markets")),
		httpclient.WithResponseErrorHandler(errorHandler),
		httpclient.WithHeadersLogConfig(true, demoKeyHeader, proKeyHeader),
	).
		SetQueryParam("vs_currency", "usd").
		SetQueryParam("ids", strings.Join(ids, ",")).
		SetQueryParam("per_page", fmt.Sprintf("%d", max(len(ids), 1))).
		SetResult(&result).
		Get(ctx, marketsEndpoint)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// APIError is an error response from CoinGecko.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coingecko API error %d: %s", e.StatusCode, e.Message)
}

// errorHandler maps non-2xx responses to APIError. CoinGecko reports
// errors either as {"error": "..."} or {"status": {"error_message": "..."}}.
func errorHandler(statusCode int, body []byte) error {
	if statusCode < http.StatusBadRequest {
		return nil
	}

	var payload struct {
		Error  string `json:"error"`
		Status struct {
			ErrorMessage string `json:"error_message"`
		} `json:"status"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Status.ErrorMessage != "":
			msg = payload.Status.ErrorMessage
		}
	}

	return &APIError{StatusCode: statusCode, Message: msg}
}

func apiKeyHeader(baseURL string) string {
	if strings.Contains(baseURL, "pro-api.coingecko.com") {
		return proKeyHeader
	}
	return demoKeyHeader
}

func uniqueIDs(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		id := strings.ToLower(k)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func optional(v *float64, ok bool) domain.UnitPrice {
	if !ok || v == nil {
		return domain.NoPrice()
	}
	return domain.SomePrice(*v)
}
