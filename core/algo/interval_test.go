package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntervalOverlap(t *testing.T) {
	tests := []struct {
		name                       string
		start1, end1, start2, end2 float64
		expected                   float64
	}{
		{"Identical", 2000, 2010, 2000, 2010, 1.0},
		{"Shifted by one", 2000, 2010, 2001, 2011, 0.9},
		{"Disjoint", 2000, 2005, 2006, 2010, 0},
		{"Touching", 2000, 2005, 2005, 2010, 0},
		{"Contained", 2000, 2010, 2000, 2002, 2.0 / 6.0},
		{"Points", 2000, 2000, 2000, 2000, 0},
		{"Inverted pair", 2010, 2000, 2010, 2000, 0},
		{"Fractional", 0.5, 1.5, 1.0, 2.0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IntervalOverlap(tt.start1, tt.end1, tt.start2, tt.end2)
			assert.InDelta(t, tt.expected, got, 1e-9)
			assert.InDelta(t, got, IntervalOverlap(tt.start2, tt.end2, tt.start1, tt.end1), 1e-12)
		})
	}
}

func TestExactMatch(t *testing.T) {
	assert.Equal(t, 1.0, ExactMatch("US", "US"))
	assert.Equal(t, 0.0, ExactMatch("US", "us"))
	assert.Equal(t, 0.0, ExactMatch("US", "UK"))
	assert.Equal(t, 0.0, ExactMatch("", "US"))
	assert.Equal(t, 0.0, ExactMatch("", ""))
}
