package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/aurora-staking/business/pricing/domain"
	"github.com/fd1az/aurora-staking/internal/apperror"
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

type stubOracle struct {
	calls int
	keys  []string // keys to answer with, when different from the request
	err   error
}

func (s *stubOracle) Name() string { return "stub" }

func (s *stubOracle) MarketData(ctx context.Context, keys []string) (*domain.MarketData, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	answer := keys
	if s.keys != nil {
		answer = s.keys
	}
	prices := make([]domain.UnitPrice, len(answer))
	caps := make([]domain.UnitPrice, len(answer))
	for i := range answer {
		prices[i] = domain.SomePrice(float64(i + 1))
		caps[i] = domain.NoPrice()
	}
	return domain.NewMarketData(answer, prices, caps, "stub")
}

func TestPricingService_CachesPerKeyList(t *testing.T) {
	oracle := &stubOracle{}
	svc := NewPricingService(oracle, time.Minute, nopLogger{})
	defer svc.Close()
	ctx := context.Background()

	md, err := svc.MarketData(ctx, []string{"aurora-near", "vote"})
	require.NoError(t, err)
	assert.Equal(t, 2, md.Len())

	_, err = svc.MarketData(ctx, []string{"aurora-near", "vote"})
	require.NoError(t, err)
	assert.Equal(t, 1, oracle.calls)

	_, err = svc.MarketData(ctx, []string{"aurora-near"})
	require.NoError(t, err)
	assert.Equal(t, 2, oracle.calls)
}

func TestPricingService_NoCache(t *testing.T) {
	oracle := &stubOracle{}
	svc := NewPricingService(oracle, 0, nopLogger{})
	defer svc.Close()

	for i := 0; i < 3; i++ {
		_, err := svc.MarketData(context.Background(), []string{"aurora-near"})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, oracle.calls)
}

func TestPricingService_RejectsMisalignedResponse(t *testing.T) {
	oracle := &stubOracle{keys: []string{"vote", "aurora-near"}}
	svc := NewPricingService(oracle, time.Minute, nopLogger{})
	defer svc.Close()

	_, err := svc.MarketData(context.Background(), []string{"aurora-near", "vote"})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}

func TestPricingService_PropagatesOracleFailure(t *testing.T) {
	boom := apperror.New(apperror.CodePriceOracleFailed, apperror.WithCause(errors.New("timeout")))
	svc := NewPricingService(&stubOracle{err: boom}, time.Minute, nopLogger{})
	defer svc.Close()

	_, err := svc.MarketData(context.Background(), []string{"aurora-near"})
	assert.True(t, apperror.HasCode(err, apperror.CodePriceOracleFailed))
}

func TestPricingService_EmptyKeys(t *testing.T) {
	svc := NewPricingService(&stubOracle{}, 0, nopLogger{})
	defer svc.Close()

	_, err := svc.MarketData(context.Background(), nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}
