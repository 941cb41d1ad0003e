package schema

// DatasetRecord is one entry in the dataset catalog.
// Records are treated as immutable once loaded.
type DatasetRecord struct {
	ID                 string  `json:"id" yaml:"id"`
	Indicator          string  `json:"indicator" yaml:"indicator"`
	GeographicCoverage string  `json:"geographic_coverage" yaml:"geographic_coverage"`
	TimeStart          float64 `json:"time_start" yaml:"time_start"`
	TimeEnd            float64 `json:"time_end" yaml:"time_end"`
	Units              string  `json:"units" yaml:"units"`
	Source             string  `json:"source" yaml:"source"`
}

// Categorical returns the value of an exact-match dimension.
// It returns "" for dimensions that are not categorical.
func (r *DatasetRecord) Categorical(d Dimension) string {
	switch d {
	case DimGeo:
		return r.GeographicCoverage
	case DimUnit:
		return r.Units
	case DimSource:
		return r.Source
	default:
		return ""
	}
}

// IDs returns the identifiers of records in input order.
func IDs(records []DatasetRecord) []string {
	ids := make([]string, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}
	return ids
}
