package domain

import (
	"fmt"
	"math/big"

	"github.com/fd1az/aurora-staking/internal/apperror"
)

const (
	secondsPerDay = 86_400
	msPerDay      = secondsPerDay * 1000
)

var bigSecondsPerDay = big.NewInt(secondsPerDay)

// DailyRate returns the reward emitted over one day at refMs, by linear
// interpolation over the active interval.
//
// The rate is zero at or before the start and during the final day of the
// schedule.
func DailyRate(s *Schedule, refMs int64) (*big.Int, error) {
	if refMs <= s.StartTime() || refMs >= s.EndTime()-msPerDay {
		return new(big.Int), nil
	}

	i, pos := s.IntervalAt(floorDiv(refMs, 1000))
	if pos != Active {
		return new(big.Int), nil
	}

	width := new(big.Int).Sub(s.times[i+1], s.times[i])
	if width.Sign() == 0 {
		return nil, apperror.New(apperror.CodeDivisionByZero,
			apperror.WithContext(fmt.Sprintf("zero-width interval at index %d", i)))
	}

	emitted := new(big.Int).Sub(s.remaining[i], s.remaining[i+1])
	emitted.Mul(emitted, bigSecondsPerDay)
	return emitted.Quo(emitted, width), nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
