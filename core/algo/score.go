package algo

import (
	"fmt"

	"github.com/huangsam/redundant/schema"
)

// PreparedRecord pairs a record with its precomputed indicator tokens.
type PreparedRecord struct {
	*schema.DatasetRecord
	Tokens []string
}

// Prepare tokenizes the indicator of a single record.
func Prepare(r *schema.DatasetRecord) PreparedRecord {
	return PreparedRecord{DatasetRecord: r, Tokens: Tokenize(r.Indicator)}
}

// PrepareAll tokenizes every record once, keeping input order.
func PrepareAll(records []schema.DatasetRecord) []PreparedRecord {
	out := make([]PreparedRecord, len(records))
	for i := range records {
		out[i] = Prepare(&records[i])
	}
	return out
}

// Option customizes a Scorer.
type Option func(*Scorer)

// WithMissingPolicy sets how absent categorical values are scored.
func WithMissingPolicy(p schema.MissingPolicy) Option {
	return func(s *Scorer) {
		s.policy = p
	}
}

// Scorer combines the per-dimension similarities of a record pair into one
// weighted redundancy score. A Scorer is immutable and safe for concurrent use.
type Scorer struct {
	weights schema.WeightVector
	w       [numDims]float64
	policy  schema.MissingPolicy
}

const numDims = 5

// dimension indices into the fixed-size similarity arrays
const (
	idxIndicator = iota
	idxGeo
	idxTime
	idxUnit
	idxSource
)

// NewScorer validates the weights and policy up front and returns a Scorer.
// Any problem is reported as a *schema.ConfigurationError before a single
// pair is scored.
func NewScorer(weights schema.WeightVector, opts ...Option) (*Scorer, error) {
	s := &Scorer{weights: weights, policy: schema.MissingZero}
	for _, opt := range opts {
		opt(s)
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if _, ok := schema.ValidMissingPolicies[s.policy]; !ok {
		return nil, &schema.ConfigurationError{Field: "missing-policy", Reason: fmt.Sprintf("must be one of zero, renormalize (received %q)", s.policy)}
	}
	s.w = [numDims]float64{weights.Indicator, weights.Geo, weights.Time, weights.Unit, weights.Source}
	return s, nil
}

// Weights returns the weight vector the scorer was built with.
func (s *Scorer) Weights() schema.WeightVector {
	return s.weights
}

// Policy returns the missing value policy.
func (s *Scorer) Policy() schema.MissingPolicy {
	return s.policy
}

// Compare scores two raw records. Scans should prefer Score with
// prepared records so indicators are tokenized only once.
func (s *Scorer) Compare(a, b *schema.DatasetRecord) float64 {
	pa, pb := Prepare(a), Prepare(b)
	return s.Score(&pa, &pb)
}

// Score returns the redundancy score of two prepared records in [0,1].
// The result is symmetric in its arguments.
func (s *Scorer) Score(a, b *PreparedRecord) float64 {
	sims, present := similarities(a, b)
	return s.combine(&sims, &present)
}

// Explain returns the score together with the similarity of each dimension.
// Dimensions skipped under the renormalize policy are omitted from the breakdown.
func (s *Scorer) Explain(a, b *PreparedRecord) (float64, schema.Breakdown) {
	sims, present := similarities(a, b)
	breakdown := make(schema.Breakdown, numDims)
	for i, d := range schema.AllDimensions {
		if s.policy == schema.MissingRenormalize && !present[i] {
			continue
		}
		breakdown[d] = sims[i]
	}
	return s.combine(&sims, &present), breakdown
}

func (s *Scorer) combine(sims *[numDims]float64, present *[numDims]bool) float64 {
	var score, total float64
	for i := range numDims {
		if s.policy == schema.MissingRenormalize && !present[i] {
			continue
		}
		score += s.w[i] * sims[i]
		total += s.w[i]
	}
	if s.policy == schema.MissingRenormalize {
		if total <= 0 {
			return 0
		}
		score /= total
	}
	// Weights may sum to 1 within tolerance, so keep the result in range.
	return clamp01(score)
}

// similarities computes every dimension similarity and marks which
// categorical dimensions have a value on both sides.
func similarities(a, b *PreparedRecord) (sims [numDims]float64, present [numDims]bool) {
	sims[idxIndicator] = TokenSetRatioTokens(a.Tokens, b.Tokens)
	sims[idxGeo] = ExactMatch(a.GeographicCoverage, b.GeographicCoverage)
	sims[idxTime] = IntervalOverlap(a.TimeStart, a.TimeEnd, b.TimeStart, b.TimeEnd)
	sims[idxUnit] = ExactMatch(a.Units, b.Units)
	sims[idxSource] = ExactMatch(a.Source, b.Source)

	present[idxIndicator] = true
	present[idxTime] = true
	present[idxGeo] = a.GeographicCoverage != "" && b.GeographicCoverage != ""
	present[idxUnit] = a.Units != "" && b.Units != ""
	present[idxSource] = a.Source != "" && b.Source != ""
	return sims, present
}
