package ethereum

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/logger"
)

// mockLogger implements logger.LoggerInterface for testing.
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = (*mockLogger)(nil)

type handler func(args []any) ([]any, error)

// fakeCaller answers eth_call by decoding the selector against an ABI and
// packing whatever the handler for that method returns.
type fakeCaller struct {
	t        *testing.T
	abi      abi.ABI
	handlers map[string]handler

	mu    sync.Mutex
	calls map[string]int
	to    []common.Address
}

func newFakeCaller(t *testing.T, abiJSON string, handlers map[string]handler) *fakeCaller {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	return &fakeCaller{t: t, abi: parsed, handlers: handlers, calls: make(map[string]int)}
}

func (f *fakeCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	method, err := f.abi.MethodById(msg.Data[:4])
	if err != nil {
		f.t.Fatalf("unknown selector: %v", err)
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		f.t.Fatalf("unpack %s inputs: %v", method.Name, err)
	}

	f.mu.Lock()
	f.calls[method.Name]++
	f.to = append(f.to, *msg.To)
	f.mu.Unlock()

	h, ok := f.handlers[method.Name]
	if !ok {
		f.t.Fatalf("no handler for %s", method.Name)
	}
	out, err := h(args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

func (f *fakeCaller) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

var (
	stakingAddr = common.HexToAddress("0xccc2b1aD21666A5847A804a73a41F904C4a4A0Ec")
	userAddr    = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

func TestStakingReader_Reads(t *testing.T) {
	caller := newFakeCaller(t, StakingABI, map[string]handler{
		methodUserTotalDeposit: func(args []any) ([]any, error) {
			if args[0].(common.Address) != userAddr {
				t.Errorf("deposit account = %v", args[0])
			}
			return []any{big.NewInt(1000)}, nil
		},
		methodAmountOfShares: func(args []any) ([]any, error) {
			if args[0].(*big.Int).Uint64() != 0 {
				t.Errorf("shares stream = %v, want 0", args[0])
			}
			return []any{big.NewInt(40)}, nil
		},
		methodTotalShares: func([]any) ([]any, error) { return []any{big.NewInt(400)}, nil },
		methodTotalStaked: func([]any) ([]any, error) { return []any{big.NewInt(5000)}, nil },
		methodPending: func(args []any) ([]any, error) {
			return []any{new(big.Int).Mul(args[0].(*big.Int), big.NewInt(10))}, nil
		},
		methodReleaseTime:     func([]any) ([]any, error) { return []any{big.NewInt(1_700_000_000)}, nil },
		methodStreamClaimable: func([]any) ([]any, error) { return []any{big.NewInt(7)}, nil },
		methodStreamSchedule: func(args []any) ([]any, error) {
			return []any{
				[]*big.Int{big.NewInt(100), big.NewInt(200)},
				[]*big.Int{big.NewInt(50), big.NewInt(0)},
			}, nil
		},
		methodPaused: func([]any) ([]any, error) { return []any{big.NewInt(1)}, nil },
	})

	r, err := NewStakingReader(caller, stakingAddr, &mockLogger{})
	if err != nil {
		t.Fatalf("NewStakingReader: %v", err)
	}
	ctx := context.Background()

	uintCases := []struct {
		name string
		call func() (*big.Int, error)
		want int64
	}{
		{"deposit", func() (*big.Int, error) { return r.UserTotalDeposit(ctx, userAddr) }, 1000},
		{"shares", func() (*big.Int, error) { return r.UserShares(ctx, 0, userAddr) }, 40},
		{"total shares", func() (*big.Int, error) { return r.TotalShares(ctx) }, 400},
		{"total staked", func() (*big.Int, error) { return r.TotalStaked(ctx) }, 5000},
		{"pending", func() (*big.Int, error) { return r.Pending(ctx, 3, userAddr) }, 30},
		{"release time", func() (*big.Int, error) { return r.ReleaseTime(ctx, 3, userAddr) }, 1_700_000_000},
		{"claimable", func() (*big.Int, error) { return r.StreamClaimable(ctx, 2, userAddr) }, 7},
	}

	for _, tc := range uintCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.call()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Int64() != tc.want {
				t.Errorf("got %s, want %d", got, tc.want)
			}
		})
	}

	times, remaining, err := r.StreamSchedule(ctx, 5)
	if err != nil {
		t.Fatalf("StreamSchedule: %v", err)
	}
	if len(times) != 2 || times[1].Int64() != 200 || remaining[0].Int64() != 50 {
		t.Errorf("schedule = %v / %v", times, remaining)
	}

	paused, err := r.Paused(ctx)
	if err != nil {
		t.Fatalf("Paused: %v", err)
	}
	if !paused {
		t.Error("expected paused when flag is 1")
	}

	for _, to := range caller.to {
		if to != stakingAddr {
			t.Errorf("call sent to %s, want staking contract", to.Hex())
		}
	}
}

func TestStakingReader_PausedOnlyWhenOne(t *testing.T) {
	for _, flag := range []int64{0, 2} {
		caller := newFakeCaller(t, StakingABI, map[string]handler{
			methodPaused: func([]any) ([]any, error) { return []any{big.NewInt(flag)}, nil },
		})
		r, err := NewStakingReader(caller, stakingAddr, &mockLogger{})
		if err != nil {
			t.Fatal(err)
		}
		paused, err := r.Paused(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if paused {
			t.Errorf("flag %d: expected not paused", flag)
		}
	}
}

func TestStakingReader_RevertsDoNotOpenBreaker(t *testing.T) {
	reverted := errors.New("execution reverted")
	caller := newFakeCaller(t, StakingABI, map[string]handler{
		methodStreamClaimable: func([]any) ([]any, error) { return nil, reverted },
		methodTotalStaked:     func([]any) ([]any, error) { return []any{big.NewInt(1)}, nil },
	})
	r, err := NewStakingReader(caller, stakingAddr, &mockLogger{})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := r.StreamClaimable(ctx, 1, userAddr)
		if !apperror.HasCode(err, apperror.CodeContractCallFailed) {
			t.Fatalf("call %d: expected CONTRACT_CALL_FAILED, got %v", i, err)
		}
	}
	if got := caller.count(methodStreamClaimable); got != 10 {
		t.Errorf("expected every call to reach the node, got %d", got)
	}

	if _, err := r.TotalStaked(ctx); err != nil {
		t.Errorf("breaker should stay closed after reverts: %v", err)
	}
}

func TestStakingReader_TransportFailuresOpenBreaker(t *testing.T) {
	caller := newFakeCaller(t, StakingABI, map[string]handler{
		methodTotalShares: func([]any) ([]any, error) { return nil, errors.New("connection refused") },
	})
	r, err := NewStakingReader(caller, stakingAddr, &mockLogger{})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		r.TotalShares(ctx)
	}
	if got := caller.count(methodTotalShares); got >= 10 {
		t.Errorf("expected the breaker to short-circuit some calls, node saw %d", got)
	}

	_, err = r.TotalShares(ctx)
	if !apperror.HasCode(err, apperror.CodeContractCallFailed) {
		t.Errorf("expected CONTRACT_CALL_FAILED, got %v", err)
	}
}

func TestTokenReader_BalanceAndAllowance(t *testing.T) {
	base := common.HexToAddress("0x8BEc47865aDe3B172A928df8f990Bc7f2A3b9f79")
	vote := common.HexToAddress("0x6edE987A51d7b4d3945E7a76Af2D7b4E9Ee7Af0B")

	var caller *fakeCaller
	caller = newFakeCaller(t, ERC20ABI, map[string]handler{
		methodBalanceOf: func(args []any) ([]any, error) {
			last := caller.to[len(caller.to)-1]
			if last == vote {
				return []any{big.NewInt(9)}, nil
			}
			return []any{big.NewInt(100)}, nil
		},
		methodAllowance: func(args []any) ([]any, error) {
			if args[0].(common.Address) != userAddr || args[1].(common.Address) != stakingAddr {
				t.Errorf("allowance args = %v", args)
			}
			return []any{big.NewInt(55)}, nil
		},
	})

	r := NewTokenReader(caller, &mockLogger{})
	ctx := context.Background()

	got, err := r.BalanceOf(ctx, base, userAddr)
	if err != nil || got.Int64() != 100 {
		t.Errorf("base balance = %v, %v", got, err)
	}
	got, err = r.BalanceOf(ctx, vote, userAddr)
	if err != nil || got.Int64() != 9 {
		t.Errorf("vote balance = %v, %v", got, err)
	}
	got, err = r.Allowance(ctx, base, userAddr, stakingAddr)
	if err != nil || got.Int64() != 55 {
		t.Errorf("allowance = %v, %v", got, err)
	}

	if len(r.tokens) != 2 {
		t.Errorf("expected one binding per token, got %d", len(r.tokens))
	}
}

func TestIsRevert(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("execution reverted: no shares"), true},
		{errors.New("execution reverted"), true},
		{errors.New("dial tcp: connection refused"), false},
		{context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		if got := isRevert(tt.err); got != tt.want {
			t.Errorf("isRevert(%q) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
