package contract

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/sedwarp/core/warp"
	"github.com/huangsam/sedwarp/internal/logger"
	"github.com/huangsam/sedwarp/schema"
)

// Default values for configuration.
const (
	DefaultStart          = 0.0
	DefaultEnd            = 600.0
	DefaultStep           = 10.0
	DefaultPrecision      = 4
	DefaultReference      = "data/LR04stack.txt"
	DefaultReferenceAxis  = "Time_ka"
	DefaultReferenceValue = "d18O"
	DefaultDataDir        = "data"
	DefaultOutDir         = "out"
	DefaultCores          = "1100,1150"
	DefaultVariables      = "d18O,aragonite"
	DefaultCharts         = "png,svg"
	DefaultKafkaTopic     = "sedwarp.alignments"
)

// DefaultWorkers is the default number of concurrent sweep workers.
var DefaultWorkers = warp.DefaultWorkers()

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for an alignment run.
// This struct is the "final, validated" config.
type Config struct {
	Reference      string // path to the reference record
	ReferenceName  string // reference file name without extension, used in output names
	ReferenceAxis  string
	ReferenceValue string

	DataDir   string
	Cores     []string
	Variables []string
	DataAxis  string // empty means first column
	DataValue string // empty means second column

	DataFile     string // single data file for distance and project
	PathFile     string // path dump for project
	SplitFile    string // multi-column core file for split
	SplitColumns []string

	OutDir string
	Charts []schema.ChartFormat

	Options warp.Options
	Search  warp.SearchParams

	Limit      int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	KafkaBrokers []string
	KafkaTopic   string
	MetricsFile  string

	LogLevel  string
	LogFormat string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	DataFileStr  string
	PathFileStr  string
	SplitFileStr string

	// --- Reference and data layout ---
	Reference      string `mapstructure:"reference" validate:"required"`
	ReferenceAxis  string `mapstructure:"reference-axis" validate:"required"`
	ReferenceValue string `mapstructure:"reference-value" validate:"required"`
	DataDir        string `mapstructure:"data-dir"`
	Cores          string `mapstructure:"cores"`
	Variables      string `mapstructure:"variables"`
	DataAxis       string `mapstructure:"data-axis"`
	DataValue      string `mapstructure:"data-value"`
	SplitColumns   string `mapstructure:"split-columns"`
	OutDir         string `mapstructure:"out-dir" validate:"required"`
	Charts         string `mapstructure:"charts"`

	// --- Search ---
	Start   float64 `mapstructure:"start"`
	End     float64 `mapstructure:"end"`
	Step    float64 `mapstructure:"step" validate:"gt=0"`
	Workers int     `mapstructure:"workers" validate:"gte=0"`

	// --- Preprocessing ---
	Normalize    string `mapstructure:"normalize"`
	SmoothData   string `mapstructure:"smooth-data"`
	SmoothTarget string `mapstructure:"smooth-target"`
	WindowSize   int    `mapstructure:"window-size" validate:"gt=0"`
	Polynomial   int    `mapstructure:"polynomial" validate:"gte=0"`

	// --- Output ---
	Limit      int    `mapstructure:"limit" validate:"gte=0"`
	Precision  int    `mapstructure:"precision" validate:"gte=0,lte=12"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Color      string `mapstructure:"color"`

	// --- Persistence ---
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`

	// --- Integrations ---
	KafkaBrokers string `mapstructure:"kafka-brokers"`
	KafkaTopic   string `mapstructure:"kafka-topic" validate:"required_with=KafkaBrokers"`
	MetricsFile  string `mapstructure:"metrics-file"`

	// --- Logging ---
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format" validate:"omitempty,oneof=console json"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// getValidator returns the shared validator, reporting fields by their flag names.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if tag := fld.Tag.Get("mapstructure"); tag != "" {
				return tag
			}
			return fld.Name
		})
		validate = v
	})
	return validate
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Cores = slices.Clone(c.Cores)
	clone.Variables = slices.Clone(c.Variables)
	clone.SplitColumns = slices.Clone(c.SplitColumns)
	clone.Charts = slices.Clone(c.Charts)
	clone.KafkaBrokers = slices.Clone(c.KafkaBrokers)
	return &clone
}

// Params returns the run parameters recorded alongside each analysis run.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"reference":     c.Reference,
		"cores":         c.Cores,
		"variables":     c.Variables,
		"start":         c.Search.Start,
		"end":           c.Search.End,
		"step":          c.Search.Step,
		"workers":       c.Search.Workers,
		"normalize":     c.Options.Normalize,
		"smooth_data":   c.Options.SmoothData,
		"smooth_target": c.Options.SmoothTarget,
		"window_size":   c.Options.WindowSize,
		"polynomial":    c.Options.Polynomial,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateStruct(input); err != nil {
		return err
	}
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSearch(cfg, input); err != nil {
		return err
	}
	if err := processPreprocessing(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateStruct runs the tag-based checks and flattens their messages.
func validateStruct(input *ConfigRawInput) error {
	err := getValidator().Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (received %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// validateSimpleInputs processes and validates all non-numeric fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Reference = input.Reference
	cfg.ReferenceName = BaseName(input.Reference)
	cfg.ReferenceAxis = input.ReferenceAxis
	cfg.ReferenceValue = input.ReferenceValue
	cfg.DataDir = input.DataDir
	cfg.Cores = SplitList(input.Cores)
	cfg.Variables = SplitList(input.Variables)
	cfg.DataAxis = strings.TrimSpace(input.DataAxis)
	cfg.DataValue = strings.TrimSpace(input.DataValue)
	cfg.SplitColumns = SplitList(input.SplitColumns)
	cfg.DataFile = strings.TrimSpace(input.DataFileStr)
	cfg.PathFile = strings.TrimSpace(input.PathFileStr)
	cfg.SplitFile = strings.TrimSpace(input.SplitFileStr)
	cfg.OutDir = input.OutDir
	cfg.OutputFile = input.OutputFile
	cfg.Limit = input.Limit
	cfg.Precision = input.Precision
	cfg.KafkaBrokers = SplitList(input.KafkaBrokers)
	cfg.KafkaTopic = input.KafkaTopic
	cfg.MetricsFile = input.MetricsFile

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}

	cfg.Charts = nil
	for _, c := range SplitList(strings.ToLower(input.Charts)) {
		format := schema.ChartFormat(c)
		if _, ok := schema.ValidChartFormats[format]; !ok {
			return fmt.Errorf("invalid chart format '%s'. must be png, svg, html", c)
		}
		if !slices.Contains(cfg.Charts, format) {
			cfg.Charts = append(cfg.Charts, format)
		}
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel != "" && !logger.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("invalid log level '%s'", input.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(input.LogFormat)

	return nil
}

// processSearch validates the candidate range and worker count.
func processSearch(cfg *Config, input *ConfigRawInput) error {
	if _, err := warp.Candidates(input.Start, input.End, input.Step); err != nil {
		return fmt.Errorf("invalid search range: %w", err)
	}
	workers := input.Workers
	if workers == 0 {
		workers = DefaultWorkers
	}
	cfg.Search = warp.SearchParams{Start: input.Start, End: input.End, Step: input.Step, Workers: workers}
	return nil
}

// processPreprocessing parses the smoothing and normalization switches.
func processPreprocessing(cfg *Config, input *ConfigRawInput) error {
	opts := warp.Options{WindowSize: input.WindowSize, Polynomial: input.Polynomial}

	var err error
	if opts.Normalize, err = ParseBoolString(input.Normalize); err != nil {
		return fmt.Errorf("invalid --normalize value: %w", err)
	}
	if opts.SmoothData, err = ParseBoolString(input.SmoothData); err != nil {
		return fmt.Errorf("invalid --smooth-data value: %w", err)
	}
	if opts.SmoothTarget, err = ParseBoolString(input.SmoothTarget); err != nil {
		return fmt.Errorf("invalid --smooth-target value: %w", err)
	}

	if opts.SmoothData || opts.SmoothTarget {
		if opts.WindowSize%2 == 0 {
			return fmt.Errorf("window-size must be odd (received %d)", opts.WindowSize)
		}
		if opts.WindowSize <= opts.Polynomial {
			return fmt.Errorf("window-size must exceed polynomial (received %d and %d)", opts.WindowSize, opts.Polynomial)
		}
	}

	cfg.Options = opts
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL, PostgreSQL and Redis backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must be a redis:// or rediss:// URL")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidAnalysisBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	// Cache and run history must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
