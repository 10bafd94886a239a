package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// ChartFormat represents a rendered chart file type.
	ChartFormat string

	// FitLabel represents the qualitative fit of an alignment.
	FitLabel string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // cache only
	NoneBackend       DatabaseBackend = "none"
)

// All chart formats supported.
const (
	PNGChart  ChartFormat = "png"
	SVGChart  ChartFormat = "svg"
	HTMLChart ChartFormat = "html"
)

// Fit labels from strongest to weakest.
const (
	StrongFit FitLabel = "Strong"
	GoodFit   FitLabel = "Good"
	FairFit   FitLabel = "Fair"
	WeakFit   FitLabel = "Weak"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidAnalysisBackends lists all valid run history backends.
var ValidAnalysisBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidChartFormats lists all valid chart formats.
var ValidChartFormats = map[ChartFormat]struct{}{
	PNGChart:  {},
	SVGChart:  {},
	HTMLChart: {},
}
