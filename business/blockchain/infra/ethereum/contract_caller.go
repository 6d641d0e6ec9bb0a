package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/circuitbreaker"
	"github.com/fd1az/aurora-staking/internal/logger"
)

const (
	tracerName = "github.com/fd1az/aurora-staking/business/blockchain/infra/ethereum"
	meterName  = "github.com/fd1az/aurora-staking/business/blockchain/infra/ethereum"
)

// ContractCaller is the read side of an RPC client. *ethclient.Client
// satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// callerMetrics holds OTEL metric instruments shared by contract readers.
type callerMetrics struct {
	calls   metric.Int64Counter
	errors  metric.Int64Counter
	latency metric.Float64Histogram
}

func newCallerMetrics() (*callerMetrics, error) {
	meter := otel.Meter(meterName)
	var err error

	m := &callerMetrics{}

	m.calls, err = meter.Int64Counter(
		"eth_contract_calls_total",
		metric.WithDescription("Total contract view calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	m.errors, err = meter.Int64Counter(
		"eth_contract_call_errors_total",
		metric.WithDescription("Failed contract view calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	m.latency, err = meter.Float64Histogram(
		"eth_contract_call_latency_ms",
		metric.WithDescription("Contract view call latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// boundContract issues view calls against one contract address.
type boundContract struct {
	name    string
	address common.Address
	abi     abi.ABI
	client  ContractCaller
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	logger  logger.LoggerInterface

	tracer  trace.Tracer
	metrics *callerMetrics
}

func newBoundContract(name string, address common.Address, abiJSON string, client ContractCaller, log logger.LoggerInterface) (*boundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s ABI: %w", name, err)
	}

	metrics, err := newCallerMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig("eth-" + name)
	// A revert is an answer from a healthy node, not a transport failure.
	cbCfg.IsSuccessful = func(err error) bool {
		return err == nil || isRevert(err)
	}
	cbCfg.OnStateChange = func(breaker string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state change",
			"breaker", breaker, "from", from.String(), "to", to.String())
	}

	return &boundContract{
		name:    name,
		address: address,
		abi:     parsed,
		client:  client,
		cb:      circuitbreaker.New[[]byte](cbCfg),
		logger:  log,
		tracer:  otel.Tracer(tracerName),
		metrics: metrics,
	}, nil
}

// call packs, executes and unpacks a view call.
func (c *boundContract) call(ctx context.Context, method string, args ...any) ([]any, error) {
	ctx, span := c.tracer.Start(ctx, "eth.call."+method,
		trace.WithAttributes(
			attribute.String("contract", c.name),
			attribute.String("address", c.address.Hex()),
		),
	)
	defer span.End()

	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("method", method))
	c.metrics.calls.Add(ctx, 1, attrs)

	data, err := c.abi.Pack(method, args...)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("encode %s.%s", c.name, method)))
	}

	raw, err := c.cb.Execute(func() ([]byte, error) {
		return c.client.CallContract(ctx, ethereum.CallMsg{
			To:   &c.address,
			Data: data,
		}, nil)
	})

	c.metrics.latency.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)

	if err != nil {
		c.metrics.errors.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, "call failed")
		c.logger.Debug(ctx, "contract call failed",
			"contract", c.name, "method", method, "error", err)
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s.%s", c.name, method)))
	}

	out, err := c.abi.Unpack(method, raw)
	if err != nil {
		c.metrics.errors.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("decode %s.%s", c.name, method)))
	}

	span.SetStatus(codes.Ok, "called")
	return out, nil
}

// callUint executes a view call that returns a single uint256.
func (c *boundContract) callUint(ctx context.Context, method string, args ...any) (*big.Int, error) {
	out, err := c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}

	if len(out) != 1 {
		return nil, unexpectedOutput(c.name, method, len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext(fmt.Sprintf("%s.%s returned %T", c.name, method, out[0])))
	}
	return v, nil
}

func unexpectedOutput(contract, method string, n int) error {
	return apperror.New(apperror.CodeContractCallFailed,
		apperror.WithContext(fmt.Sprintf("%s.%s: unexpected output length %d", contract, method, n)))
}

// isRevert reports whether err carries EVM revert data or message.
func isRevert(err error) bool {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return true
	}
	return strings.Contains(err.Error(), "execution reverted")
}
