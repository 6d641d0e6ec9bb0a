package domain

// MinProgressPct is the lowest progress ever reported.
const MinProgressPct = 10.0

// ProgressPct returns elapsed time as a percentage of the schedule duration,
// floored at MinProgressPct. Values past the end are not capped.
func ProgressPct(s *Schedule, refMs int64) float64 {
	start, end := s.StartTime(), s.EndTime()

	pct := float64(refMs-start) / float64(end-start) * 100
	if pct > MinProgressPct {
		return pct
	}
	return MinProgressPct
}
