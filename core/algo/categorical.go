package algo

// ExactMatch scores two categorical values: 1 when equal, 0 otherwise.
// The comparison is case sensitive. A missing value never matches,
// not even another missing value.
func ExactMatch(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return 0
}
