package schema

// Breakdown holds the per-dimension similarities of a record pair.
type Breakdown map[Dimension]float64

// RedundancyPair is an unordered pair of records whose score met the threshold.
// A is always the record that came first in input order.
type RedundancyPair struct {
	A         string    `json:"a"`
	B         string    `json:"b"`
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown,omitempty"`
}

// Component is one connected component of the redundancy graph.
// Members are sorted so that partitions compare equal regardless of edge order.
type Component []string

// Cluster is a connected component with more than one member, plus the
// statistics of the flagged pairs inside it.
type Cluster struct {
	ID        int      `json:"id"`
	Members   []string `json:"members"`
	Edges     int      `json:"edges"`
	MinScore  float64  `json:"min_score"`
	MaxScore  float64  `json:"max_score"`
	MeanScore float64  `json:"mean_score"`
	Density   float64  `json:"density"` // edges / possible pairs; 1.0 means a clique
}

// Size returns the number of members of the cluster.
func (c Cluster) Size() int {
	return len(c.Members)
}

// IsClique reports whether every member pair was flagged.
func (c Cluster) IsClique() bool {
	n := len(c.Members)
	return c.Edges == n*(n-1)/2
}

// ScanResult is the full output of one pipeline run.
type ScanResult struct {
	TotalRecords int              `json:"total_records"`
	TotalPairs   int              `json:"total_pairs"` // pairs considered, n(n-1)/2
	Threshold    float64          `json:"threshold"`
	Weights      WeightVector     `json:"weights"`
	Pairs        []RedundancyPair `json:"pairs"`
	Clusters     []Cluster        `json:"clusters"`
	Unclustered  []string         `json:"unclustered"`
}

// EnrichedPair adds presentation data to a RedundancyPair.
type EnrichedPair struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	RedundancyPair
}

// GetPlainLabel returns a plain text label for a redundancy score in [0,1].
func GetPlainLabel(score float64) string {
	switch {
	case score >= 0.95:
		return "Duplicate"
	case score >= 0.9:
		return "Strong"
	case score >= 0.8:
		return "Likely"
	default:
		return "Weak"
	}
}

// EnrichPairs adds rank and label to a list of pairs.
func EnrichPairs(pairs []RedundancyPair) []EnrichedPair {
	output := make([]EnrichedPair, len(pairs))
	for i, p := range pairs {
		output[i] = EnrichedPair{
			Rank:           i + 1,
			Label:          GetPlainLabel(p.Score),
			RedundancyPair: p,
		}
	}
	return output
}
