// Package domain models reward-emission schedules and the economics derived
// from them: daily rates, APRs, circulating supply and progress.
package domain

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/fd1az/aurora-staking/internal/apperror"
)

// Position describes where a reference time falls relative to a schedule.
type Position int

const (
	// Active means times[i] <= ref < times[i+1] for some i.
	Active Position = iota
	// NotStarted means ref < times[0].
	NotStarted
	// Ended means ref >= times[last].
	Ended
)

func (p Position) String() string {
	switch p {
	case Active:
		return "active"
	case NotStarted:
		return "not_started"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Schedule is a piecewise-linear emission curve: remaining[i] is the reward
// still to be emitted at times[i] (unix seconds).
//
// A Schedule is immutable; accessors return copies.
type Schedule struct {
	times     []*big.Int
	remaining []*big.Int
}

// NewSchedule validates and copies the two sequences.
func NewSchedule(times, remaining []*big.Int) (*Schedule, error) {
	if len(times) < 2 || len(remaining) < 2 {
		return nil, invalidSchedule("need at least 2 points, got %d times and %d rewards", len(times), len(remaining))
	}
	if len(times) != len(remaining) {
		return nil, invalidSchedule("length mismatch: %d times, %d rewards", len(times), len(remaining))
	}

	s := &Schedule{
		times:     make([]*big.Int, len(times)),
		remaining: make([]*big.Int, len(remaining)),
	}

	for i := range times {
		if times[i] == nil || remaining[i] == nil {
			return nil, invalidSchedule("nil value at index %d", i)
		}
		if times[i].Sign() < 0 || remaining[i].Sign() < 0 {
			return nil, invalidSchedule("negative value at index %d", i)
		}
		if i > 0 {
			if times[i].Cmp(times[i-1]) <= 0 {
				return nil, invalidSchedule("times not strictly increasing at index %d", i)
			}
			if remaining[i].Cmp(remaining[i-1]) > 0 {
				return nil, invalidSchedule("rewards increase at index %d", i)
			}
		}
		s.times[i] = new(big.Int).Set(times[i])
		s.remaining[i] = new(big.Int).Set(remaining[i])
	}

	if s.remaining[len(s.remaining)-1].Sign() != 0 {
		return nil, invalidSchedule("last remaining reward must be zero")
	}
	if !s.times[len(s.times)-1].IsInt64() || s.times[len(s.times)-1].Int64() > maxScheduleSeconds {
		return nil, invalidSchedule("end time out of range")
	}

	return s, nil
}

// maxScheduleSeconds keeps seconds*1000 within int64.
const maxScheduleSeconds = (1<<63 - 1) / 1000

func invalidSchedule(format string, args ...any) error {
	return apperror.New(apperror.CodeInvalidSchedule,
		apperror.WithContext(fmt.Sprintf(format, args...)))
}

// Len returns the number of schedule points.
func (s *Schedule) Len() int { return len(s.times) }

// Times returns a copy of the schedule times in seconds.
func (s *Schedule) Times() []*big.Int { return copyInts(s.times) }

// Remaining returns a copy of the remaining-reward sequence.
func (s *Schedule) Remaining() []*big.Int { return copyInts(s.remaining) }

// TotalRewards returns remaining[0], the full allocation of the schedule.
func (s *Schedule) TotalRewards() *big.Int { return new(big.Int).Set(s.remaining[0]) }

// StartTime returns times[0] in milliseconds.
func (s *Schedule) StartTime() int64 { return s.times[0].Int64() * 1000 }

// EndTime returns times[last] in milliseconds.
func (s *Schedule) EndTime() int64 { return s.times[len(s.times)-1].Int64() * 1000 }

// IntervalAt locates refSeconds in the schedule. When the position is Active,
// the returned index i satisfies times[i] <= refSeconds < times[i+1].
func (s *Schedule) IntervalAt(refSeconds int64) (int, Position) {
	ref := big.NewInt(refSeconds)

	if ref.Cmp(s.times[0]) < 0 {
		return -1, NotStarted
	}
	if ref.Cmp(s.times[len(s.times)-1]) >= 0 {
		return -1, Ended
	}

	// first index with times[j] > ref; the active interval starts one before it
	j := sort.Search(len(s.times), func(j int) bool {
		return s.times[j].Cmp(ref) > 0
	})
	return j - 1, Active
}

func copyInts(in []*big.Int) []*big.Int {
	out := make([]*big.Int, len(in))
	for i, v := range in {
		out[i] = new(big.Int).Set(v)
	}
	return out
}
