package schema

import (
	"fmt"
	"math"
)

// WeightSumTolerance is how far a weight vector may drift from 1.0.
const WeightSumTolerance = 1e-6

// DefaultThreshold is the redundancy score at which a pair is flagged.
const DefaultThreshold = 0.8

// WeightVector holds the per-dimension weights of the redundancy score.
type WeightVector struct {
	Indicator float64 `json:"indicator" mapstructure:"indicator"`
	Geo       float64 `json:"geo" mapstructure:"geo"`
	Time      float64 `json:"time" mapstructure:"time"`
	Unit      float64 `json:"unit" mapstructure:"unit"`
	Source    float64 `json:"source" mapstructure:"source"`
}

// DefaultWeights returns the stock weight vector.
func DefaultWeights() WeightVector {
	return WeightVector{
		Indicator: 0.35,
		Geo:       0.20,
		Time:      0.25,
		Unit:      0.10,
		Source:    0.10,
	}
}

// Get returns the weight of a single dimension.
func (w WeightVector) Get(d Dimension) float64 {
	switch d {
	case DimIndicator:
		return w.Indicator
	case DimGeo:
		return w.Geo
	case DimTime:
		return w.Time
	case DimUnit:
		return w.Unit
	case DimSource:
		return w.Source
	default:
		return 0
	}
}

// AsMap returns the weights keyed by dimension.
func (w WeightVector) AsMap() map[Dimension]float64 {
	m := make(map[Dimension]float64, len(AllDimensions))
	for _, d := range AllDimensions {
		m[d] = w.Get(d)
	}
	return m
}

// Sum returns the total of all weights.
func (w WeightVector) Sum() float64 {
	var sum float64
	for _, d := range AllDimensions {
		sum += w.Get(d)
	}
	return sum
}

// Validate checks that every weight is a finite non-negative number and
// that the weights sum to 1.0 within WeightSumTolerance.
func (w WeightVector) Validate() error {
	for _, d := range AllDimensions {
		v := w.Get(d)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigurationError{Field: "weights." + string(d), Reason: "must be a finite number"}
		}
		if v < 0 {
			return &ConfigurationError{Field: "weights." + string(d), Reason: fmt.Sprintf("must be non-negative (received %g)", v)}
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > WeightSumTolerance {
		return &ConfigurationError{Field: "weights", Reason: fmt.Sprintf("must sum to 1.0 (received %.6f)", sum)}
	}
	return nil
}

// ValidateThreshold checks that a threshold lies in [0,1].
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return &ConfigurationError{Field: "threshold", Reason: fmt.Sprintf("must be between 0.0 and 1.0 (received %g)", threshold)}
	}
	return nil
}
