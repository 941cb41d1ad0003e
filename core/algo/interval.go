package algo

// IntervalOverlap returns the overlap of two numeric intervals divided by
// their average duration, clamped to [0,1].
//
// Disjoint intervals score 0. When the average duration is zero or negative
// (point intervals, or inverted ones) the result is 0 rather than a division
// by zero.
func IntervalOverlap(start1, end1, start2, end2 float64) float64 {
	overlap := max(0, min(end1, end2)-max(start1, start2))
	avg := ((end1 - start1) + (end2 - start2)) / 2
	if avg <= 0 {
		return 0
	}
	return clamp01(overlap / avg)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
