package domain

import "testing"

func TestProgressPct(t *testing.T) {
	s, err := NewSchedule(ints(1000, 2000), ints(100, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		refMs int64
		want  float64
	}{
		{"before_start_floored", 500_000, 10},
		{"at_start_floored", 1_000_000, 10},
		{"below_floor", 1_050_000, 10},
		{"halfway", 1_500_000, 50},
		{"at_end", 2_000_000, 100},
		{"past_end_uncapped", 2_500_000, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressPct(s, tt.refMs); got != tt.want {
				t.Errorf("ProgressPct = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressPct_Monotonic(t *testing.T) {
	for idx, s := range fixture(t) {
		prev := 0.0
		span := s.EndTime() - s.StartTime()
		for step := int64(-2); step <= 12; step++ {
			ref := s.StartTime() + span*step/10
			got := ProgressPct(s, ref)
			if got < MinProgressPct {
				t.Errorf("schedule %d: progress %v below floor", idx, got)
			}
			if got < prev {
				t.Errorf("schedule %d: progress decreased from %v to %v", idx, prev, got)
			}
			prev = got
		}
	}
}
