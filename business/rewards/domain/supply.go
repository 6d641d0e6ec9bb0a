package domain

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/asset"
)

// baseTokenDecimals is fixed for the staked-percentage computation.
const baseTokenDecimals = 18

// CirculatingSupply returns the share of the vote allocation emitted by refMs:
// remaining[0] * (refMs - start) / (end - start).
//
// refMs is expected within [StartTime, EndTime]; callers clamp.
func CirculatingSupply(vote *Schedule, refMs int64) *big.Int {
	start, end := vote.StartTime(), vote.EndTime()

	out := new(big.Int).Mul(vote.remaining[0], big.NewInt(refMs-start))
	return out.Quo(out, big.NewInt(end-start))
}

// ClampMs bounds refMs to the schedule's [StartTime, EndTime].
func ClampMs(s *Schedule, refMs int64) int64 {
	return min(max(refMs, s.StartTime()), s.EndTime())
}

// StakedPctOfSupply returns the staked base token as a percentage of its
// circulating supply, derived as marketCap / price.
func StakedPctOfSupply(totalStaked *big.Int, priceUSD, marketCapUSD float64) (float64, error) {
	if priceUSD == 0 {
		return 0, apperror.New(apperror.CodeDivisionByZero,
			apperror.WithContext("base token price is zero"))
	}

	circulating := decimal.NewFromFloat(marketCapUSD).DivRound(decimal.NewFromFloat(priceUSD), divisionPrecision)
	if circulating.IsZero() {
		return 0, apperror.New(apperror.CodeDivisionByZero,
			apperror.WithContext("circulating supply is zero"))
	}

	return percentOf(asset.Units(totalStaked, baseTokenDecimals), circulating), nil
}

// VotingPowerPct returns voteTotal as a percentage of voteSupply.
// It is 0 when the supply is 0.
func VotingPowerPct(voteTotal, voteSupply *big.Int, decimals uint8) float64 {
	if voteSupply == nil || voteSupply.Sign() == 0 || voteTotal == nil {
		return 0
	}
	return percentOf(asset.Units(voteTotal, decimals), asset.Units(voteSupply, decimals))
}
