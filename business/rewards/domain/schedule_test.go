package domain

import (
	"math/big"
	"testing"

	"github.com/fd1az/aurora-staking/internal/apperror"
)

func TestNewSchedule_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		times     []*big.Int
		remaining []*big.Int
	}{
		{"single_point", ints(100), ints(0)},
		{"length_mismatch", ints(100, 200, 300), ints(10, 0)},
		{"times_not_increasing", ints(100, 100, 300), ints(10, 5, 0)},
		{"times_decreasing", ints(300, 200), ints(10, 0)},
		{"rewards_increasing", ints(100, 200, 300), ints(10, 20, 0)},
		{"last_reward_nonzero", ints(100, 200), ints(10, 1)},
		{"negative_reward", ints(100, 200, 300), ints(10, -1, -2)},
		{"nil_value", []*big.Int{big.NewInt(100), nil}, ints(10, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchedule(tt.times, tt.remaining)
			if !apperror.HasCode(err, apperror.CodeInvalidSchedule) {
				t.Errorf("expected INVALID_SCHEDULE, got %v", err)
			}
		})
	}
}

func TestSchedule_StartEnd(t *testing.T) {
	s, err := NewSchedule(ints(1652799600, 1660689600), ints(1000, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.StartTime() != 1652799600000 {
		t.Errorf("StartTime() = %d", s.StartTime())
	}
	if s.EndTime() != 1660689600000 {
		t.Errorf("EndTime() = %d", s.EndTime())
	}
}

func TestSchedule_IsImmutable(t *testing.T) {
	times := ints(100, 200)
	rewards := ints(50, 0)

	s, err := NewSchedule(times, rewards)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	times[0].SetInt64(150)
	rewards[0].SetInt64(1)
	s.Remaining()[0].SetInt64(7)

	if s.StartTime() != 100_000 {
		t.Errorf("schedule observed caller mutation of times: %d", s.StartTime())
	}
	if s.TotalRewards().Int64() != 50 {
		t.Errorf("schedule observed mutation of rewards: %s", s.TotalRewards())
	}
}

func TestSchedule_IntervalAt(t *testing.T) {
	s, err := NewSchedule(ints(100, 200, 300, 400), ints(30, 20, 10, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		ref       int64
		wantIndex int
		wantPos   Position
	}{
		{99, -1, NotStarted},
		{100, 0, Active},
		{199, 0, Active},
		{200, 1, Active},
		{350, 2, Active},
		{399, 2, Active},
		{400, -1, Ended},
		{1000, -1, Ended},
	}

	for _, tt := range tests {
		i, pos := s.IntervalAt(tt.ref)
		if i != tt.wantIndex || pos != tt.wantPos {
			t.Errorf("IntervalAt(%d) = (%d, %s), want (%d, %s)", tt.ref, i, pos, tt.wantIndex, tt.wantPos)
		}
	}
}
