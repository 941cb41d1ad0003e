// Package schema holds the data types shared by the core engine, loaders and writers.
package schema

// Custom string types for type safety.
type (
	// Dimension names one compared attribute of a record pair.
	Dimension string

	// OutputMode represents the format of the output.
	OutputMode string

	// InputFormat represents the format records are loaded from.
	InputFormat string

	// MissingPolicy decides how an absent categorical value is scored.
	MissingPolicy string

	// DatabaseBackend represents a SQL backend for sources and run tracking.
	DatabaseBackend string
)

// All comparison dimensions, in weight vector order.
const (
	DimIndicator Dimension = "indicator"
	DimGeo       Dimension = "geo"
	DimTime      Dimension = "time"
	DimUnit      Dimension = "unit"
	DimSource    Dimension = "source"
)

// AllDimensions lists every dimension in canonical order.
var AllDimensions = []Dimension{DimIndicator, DimGeo, DimTime, DimUnit, DimSource}

// CategoricalDimensions lists the exact-match dimensions that blocking may use.
var CategoricalDimensions = []Dimension{DimGeo, DimUnit, DimSource}

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All input formats supported.
const (
	CSVIn     InputFormat = "csv" // default
	JSONIn    InputFormat = "json"
	YAMLIn    InputFormat = "yaml"
	ParquetIn InputFormat = "parquet"
	SQLIn     InputFormat = "sql"
)

// All missing value policies supported.
const (
	MissingZero        MissingPolicy = "zero" // default
	MissingRenormalize MissingPolicy = "renormalize"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidInputFormats lists all valid input formats.
var ValidInputFormats = map[InputFormat]struct{}{
	CSVIn:     {},
	JSONIn:    {},
	YAMLIn:    {},
	ParquetIn: {},
	SQLIn:     {},
}

// ValidMissingPolicies lists all valid missing value policies.
var ValidMissingPolicies = map[MissingPolicy]struct{}{
	MissingZero:        {},
	MissingRenormalize: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// IsCategorical reports whether the dimension is compared by exact match.
func (d Dimension) IsCategorical() bool {
	switch d {
	case DimGeo, DimUnit, DimSource:
		return true
	default:
		return false
	}
}
