package app

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pricingDomain "github.com/fd1az/aurora-staking/business/pricing/domain"
	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/network"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (nopLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (nopLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (nopLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (nopLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var (
	account   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	baseToken = common.HexToAddress("0x8BEc47865aDe3B172A928df8f990Bc7f2A3b9f79")
	voteToken = common.HexToAddress("0x6edE987A51d7b4d3945E7a76Af59Ff2b968910A8")
	staking   = common.HexToAddress("0xccc2b1aD21666A5847A804a73a41F904C4a4A0Ec")
)

func testNetwork(t *testing.T) *network.Config {
	t.Helper()
	net, err := network.New(network.Params{
		Name:           "unit",
		ChainID:        1313161554,
		RPCURL:         "http://localhost:8545",
		TokenAddress:   baseToken.Hex(),
		StakingAddress: staking.Hex(),
		BaseOracleKey:  "aurora-near",
		Streams: []network.StreamParams{
			{ID: 2, Symbol: "TRI", Name: "Trisolaris", Decimals: 18, Address: "0xFa94348467f64D5A457F75F8bc40495D33c65aBB", CoingeckoKey: "trisolaris"},
			{ID: 5, Symbol: "VOTE", Name: "Aurora Vote Token", Decimals: 18, Address: voteToken.Hex(), CoingeckoKey: "vote"},
		},
	})
	require.NoError(t, err)
	return net
}

// fakeStaking serves fixed values; the optional hooks override single reads.
type fakeStaking struct {
	deposit     func(ctx context.Context) (*big.Int, error)
	totalShares func(ctx context.Context) (*big.Int, error)
	claimable   func(ctx context.Context, id uint64) (*big.Int, error)

	depositCalls atomic.Int32
}

func (f *fakeStaking) UserTotalDeposit(ctx context.Context, _ common.Address) (*big.Int, error) {
	f.depositCalls.Add(1)
	if f.deposit != nil {
		return f.deposit(ctx)
	}
	return big.NewInt(1000), nil
}

func (f *fakeStaking) UserShares(ctx context.Context, id uint64, _ common.Address) (*big.Int, error) {
	return big.NewInt(25), nil
}

func (f *fakeStaking) TotalShares(ctx context.Context) (*big.Int, error) {
	if f.totalShares != nil {
		return f.totalShares(ctx)
	}
	return big.NewInt(100), nil
}

func (f *fakeStaking) TotalStaked(ctx context.Context) (*big.Int, error) {
	return big.NewInt(8000), nil
}

// Pending is 10*id, so the base stream (id 0) has nothing pending.
func (f *fakeStaking) Pending(ctx context.Context, id uint64, _ common.Address) (*big.Int, error) {
	return big.NewInt(int64(id) * 10), nil
}

func (f *fakeStaking) ReleaseTime(ctx context.Context, id uint64, _ common.Address) (*big.Int, error) {
	return big.NewInt(1_700_000_000 + int64(id)), nil
}

func (f *fakeStaking) StreamClaimable(ctx context.Context, id uint64, _ common.Address) (*big.Int, error) {
	if f.claimable != nil {
		return f.claimable(ctx, id)
	}
	return big.NewInt(int64(id)), nil
}

func (f *fakeStaking) Paused(ctx context.Context) (bool, error) {
	return false, nil
}

type fakeTokens struct {
	mu        sync.Mutex
	allowance int64

	allowanceCalls atomic.Int32
}

func (f *fakeTokens) BalanceOf(ctx context.Context, token, _ common.Address) (*big.Int, error) {
	if token == voteToken {
		return big.NewInt(3), nil
	}
	return big.NewInt(500), nil
}

func (f *fakeTokens) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allowanceCalls.Add(1)
	if token != baseToken || spender != staking {
		return nil, errors.New("unexpected allowance query")
	}
	return big.NewInt(f.allowance), nil
}

func (f *fakeTokens) setAllowance(v int64) {
	f.mu.Lock()
	f.allowance = v
	f.mu.Unlock()
}

type fakeMarket struct {
	err     error
	missing map[string]bool
}

func (f *fakeMarket) MarketData(ctx context.Context, keys []string) (*pricingDomain.MarketData, error) {
	if f.err != nil {
		return nil, f.err
	}
	prices := make([]pricingDomain.UnitPrice, len(keys))
	caps := make([]pricingDomain.UnitPrice, len(keys))
	for i, k := range keys {
		if f.missing[k] {
			prices[i], caps[i] = pricingDomain.NoPrice(), pricingDomain.NoPrice()
			continue
		}
		prices[i], caps[i] = pricingDomain.SomePrice(float64(i+1)), pricingDomain.SomePrice(1000)
	}
	return pricingDomain.NewMarketData(keys, prices, caps, "fake")
}

func newSynchronizer(t *testing.T, st *fakeStaking, tokens *fakeTokens, market *fakeMarket, cfg SyncConfig) *Synchronizer {
	t.Helper()
	s, err := NewSynchronizer(testNetwork(t), st, tokens, market, cfg, nopLogger{})
	require.NoError(t, err)
	return s
}

func TestSynchronizer_Sync(t *testing.T) {
	s := newSynchronizer(t, &fakeStaking{}, &fakeTokens{allowance: 42}, &fakeMarket{}, SyncConfig{})

	require.NoError(t, s.Sync(context.Background(), account))

	snap, synced := s.Current()
	require.NotNil(t, snap)
	assert.True(t, synced)
	assert.True(t, s.HasShares())

	assert.Equal(t, account, snap.Account)
	assert.Equal(t, int64(500), snap.BaseBalance.Int64())
	assert.Equal(t, int64(3), snap.VoteBalance.Int64())
	assert.Equal(t, int64(42), snap.Allowance.Int64())
	assert.Equal(t, int64(1000), snap.Deposit.Int64())
	assert.False(t, snap.Paused)

	// 8000 * 25 / 100
	assert.Equal(t, int64(2000), snap.UserSharesValue.Int64())

	// balance 3 + streamed 5 + pending 50
	assert.Equal(t, int64(50), snap.VoteWithdrawable.Int64())
	assert.Equal(t, int64(58), snap.VoteTotalBalance.Int64())

	require.Len(t, snap.Streams, 2)
	assert.Equal(t, "TRI", snap.Streams[0].Symbol)
	assert.Equal(t, int64(2), snap.Streams[0].StreamedAmount.Int64())
	assert.Equal(t, 2.0, snap.Streams[0].UnitPrice.OrZero())
	assert.Equal(t, 1.0, snap.BasePrice.OrZero())

	require.Len(t, snap.Pending, 2, "base stream has nothing pending")
	assert.Equal(t, uint64(2), snap.Pending[0].StreamID)
	assert.Equal(t, int64(1_700_000_002_000), snap.Pending[0].ReleaseTimeMs)
}

func TestSynchronizer_StreamedBatchFallsBackToZero(t *testing.T) {
	st := &fakeStaking{
		claimable: func(ctx context.Context, id uint64) (*big.Int, error) {
			if id == 5 {
				return nil, errors.New("execution reverted")
			}
			return big.NewInt(9), nil
		},
	}
	s := newSynchronizer(t, st, &fakeTokens{}, &fakeMarket{}, SyncConfig{})

	require.NoError(t, s.Sync(context.Background(), account))

	snap, synced := s.Current()
	require.True(t, synced)
	for _, b := range snap.Streams {
		assert.Zero(t, b.StreamedAmount.Sign(), "stream %d", b.StreamID)
	}
	assert.Equal(t, int64(53), snap.VoteTotalBalance.Int64())
}

func TestSynchronizer_AbortKeepsPriorSnapshot(t *testing.T) {
	var fail atomic.Bool
	st := &fakeStaking{
		totalShares: func(ctx context.Context) (*big.Int, error) {
			if fail.Load() {
				return nil, errors.New("connection refused")
			}
			return big.NewInt(100), nil
		},
	}
	s := newSynchronizer(t, st, &fakeTokens{}, &fakeMarket{}, SyncConfig{})
	ctx := context.Background()

	require.NoError(t, s.Sync(ctx, account))
	prior, _ := s.Current()

	fail.Store(true)
	err := s.Sync(ctx, account)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeReadFailure))

	snap, synced := s.Current()
	assert.Same(t, prior, snap)
	assert.False(t, synced)
	assert.False(t, s.Synced())
}

func TestSynchronizer_OracleFailureAborts(t *testing.T) {
	market := &fakeMarket{err: apperror.New(apperror.CodePriceOracleFailed)}
	s := newSynchronizer(t, &fakeStaking{}, &fakeTokens{}, market, SyncConfig{})

	err := s.Sync(context.Background(), account)
	assert.True(t, apperror.HasCode(err, apperror.CodePriceOracleFailed))

	snap, synced := s.Current()
	assert.Nil(t, snap)
	assert.False(t, synced)
}

func TestSynchronizer_MissingPriceTolerated(t *testing.T) {
	market := &fakeMarket{missing: map[string]bool{"trisolaris": true}}
	s := newSynchronizer(t, &fakeStaking{}, &fakeTokens{}, market, SyncConfig{})

	require.NoError(t, s.Sync(context.Background(), account))

	snap, synced := s.Current()
	require.True(t, synced)
	assert.False(t, snap.Streams[0].UnitPrice.IsPresent())
	assert.True(t, snap.Streams[1].UnitPrice.IsPresent())
}

func TestSynchronizer_ReadTimeout(t *testing.T) {
	st := &fakeStaking{
		deposit: func(ctx context.Context) (*big.Int, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	s := newSynchronizer(t, st, &fakeTokens{}, &fakeMarket{}, SyncConfig{ReadTimeout: 20 * time.Millisecond})

	err := s.Sync(context.Background(), account)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeReadFailure))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSynchronizer_NewestWinsCancelsPrevious(t *testing.T) {
	started := make(chan struct{})
	var calls atomic.Int32
	st := &fakeStaking{
		deposit: func(ctx context.Context) (*big.Int, error) {
			if calls.Add(1) == 1 {
				close(started)
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return big.NewInt(2222), nil
		},
	}
	s := newSynchronizer(t, st, &fakeTokens{}, &fakeMarket{}, SyncConfig{})
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() { firstErr <- s.Sync(ctx, account) }()
	<-started

	require.NoError(t, s.Sync(ctx, account))

	select {
	case err := <-firstErr:
		assert.NoError(t, err, "a superseded cycle is not a failure")
	case <-time.After(2 * time.Second):
		t.Fatal("first cycle was not cancelled")
	}

	snap, synced := s.Current()
	assert.True(t, synced)
	assert.Equal(t, int64(2222), snap.Deposit.Int64())
}

func TestSynchronizer_StaleCycleDoesNotPublish(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	st := &fakeStaking{
		// Ignores cancellation so the stale cycle completes every read.
		deposit: func(ctx context.Context) (*big.Int, error) {
			if calls.Add(1) == 1 {
				close(started)
				<-gate
				return big.NewInt(1), nil
			}
			return big.NewInt(2), nil
		},
	}
	s := newSynchronizer(t, st, &fakeTokens{}, &fakeMarket{}, SyncConfig{})
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() { firstErr <- s.Sync(ctx, account) }()
	<-started

	require.NoError(t, s.Sync(ctx, account))
	close(gate)
	require.NoError(t, <-firstErr)

	snap, synced := s.Current()
	assert.True(t, synced)
	assert.Equal(t, int64(2), snap.Deposit.Int64())
}

func TestSynchronizer_SyncAllowance(t *testing.T) {
	st := &fakeStaking{}
	tokens := &fakeTokens{allowance: 1}
	s := newSynchronizer(t, st, tokens, &fakeMarket{}, SyncConfig{})
	ctx := context.Background()

	require.NoError(t, s.Sync(ctx, account))
	before, _ := s.Current()

	tokens.setAllowance(77)
	require.NoError(t, s.SyncAllowance(ctx, account))

	after, synced := s.Current()
	assert.True(t, synced)
	assert.NotSame(t, before, after)
	assert.Equal(t, int64(77), after.Allowance.Int64())
	assert.Equal(t, int64(1), before.Allowance.Int64(), "published snapshots are immutable")
	assert.Equal(t, before.Deposit, after.Deposit)
	assert.Equal(t, int32(1), st.depositCalls.Load(), "allowance refresh reads nothing else")
}

func TestSynchronizer_SyncAllowanceSupersedesInFlightCycle(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{})
	var blockNext atomic.Bool
	tokens := &fakeTokens{allowance: 0}
	st := &fakeStaking{
		// Ignores cancellation so the older cycle finishes all of its reads.
		deposit: func(ctx context.Context) (*big.Int, error) {
			if blockNext.CompareAndSwap(true, false) {
				for tokens.allowanceCalls.Load() < 2 {
					time.Sleep(time.Millisecond)
				}
				close(started)
				<-gate
			}
			return big.NewInt(1000), nil
		},
	}
	s := newSynchronizer(t, st, tokens, &fakeMarket{}, SyncConfig{})
	ctx := context.Background()

	require.NoError(t, s.Sync(ctx, account))

	blockNext.Store(true)
	olderErr := make(chan error, 1)
	go func() { olderErr <- s.Sync(ctx, account) }()
	<-started

	// The older cycle already read allowance 0; the approval lands now.
	tokens.setAllowance(999)
	require.NoError(t, s.SyncAllowance(ctx, account))

	snap, _ := s.Current()
	require.Equal(t, int64(999), snap.Allowance.Int64())

	close(gate)
	require.NoError(t, <-olderErr, "a superseded cycle is not a failure")

	snap, synced := s.Current()
	assert.True(t, synced)
	assert.Equal(t, int64(999), snap.Allowance.Int64(), "older cycle must not overwrite the fresh allowance")
}

func TestSynchronizer_SyncAllowanceWithoutSnapshotRunsFullSync(t *testing.T) {
	st := &fakeStaking{}
	s := newSynchronizer(t, st, &fakeTokens{allowance: 5}, &fakeMarket{}, SyncConfig{})

	require.NoError(t, s.SyncAllowance(context.Background(), account))

	snap, synced := s.Current()
	require.NotNil(t, snap)
	assert.True(t, synced)
	assert.Equal(t, int32(1), st.depositCalls.Load())
}

func TestSynchronizer_Reset(t *testing.T) {
	s := newSynchronizer(t, &fakeStaking{}, &fakeTokens{}, &fakeMarket{}, SyncConfig{})

	require.NoError(t, s.Sync(context.Background(), account))
	s.Reset()

	snap, synced := s.Current()
	assert.Nil(t, snap)
	assert.False(t, synced)
	assert.False(t, s.HasShares())
}
