// Package cmd defines the command-line interface for sedwarp.
package cmd

import (
	"github.com/huangsam/sedwarp/core/warp"
	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(alignCmd)
	rootCmd.AddCommand(distanceCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("reference", contract.DefaultReference, "Path to the reference stack")
	rootCmd.PersistentFlags().String("reference-axis", contract.DefaultReferenceAxis, "Reference time column")
	rootCmd.PersistentFlags().String("reference-value", contract.DefaultReferenceValue, "Reference value column")
	rootCmd.PersistentFlags().String("data-axis", "", "Data depth column (default: first column)")
	rootCmd.PersistentFlags().String("data-value", "", "Data value column (default: second column)")
	rootCmd.PersistentFlags().Float64("start", contract.DefaultStart, "First candidate truncation time")
	rootCmd.PersistentFlags().Float64("end", contract.DefaultEnd, "Candidate times stay strictly below this value")
	rootCmd.PersistentFlags().Float64("step", contract.DefaultStep, "Spacing between candidate times")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent sweep workers")
	rootCmd.PersistentFlags().String("normalize", "yes", "Z-score both sequences before aligning (yes/no)")
	rootCmd.PersistentFlags().String("smooth-data", "yes", "Savitzky-Golay smooth the data record (yes/no)")
	rootCmd.PersistentFlags().String("smooth-target", "no", "Savitzky-Golay smooth the reference (yes/no)")
	rootCmd.PersistentFlags().Int("window-size", warp.DefaultWindowSize, "Smoothing window length (odd)")
	rootCmd.PersistentFlags().Int("polynomial", warp.DefaultPolynomial, "Smoothing polynomial order")
	rootCmd.PersistentFlags().String("out-dir", contract.DefaultOutDir, "Directory for paths, series and figures")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string for mysql/postgresql/redis (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: trace or debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of alignCmd to Viper
	alignCmd.Flags().String("data-dir", contract.DefaultDataDir, "Directory holding core_<id>_<variable>.csv records")
	alignCmd.Flags().String("cores", contract.DefaultCores, "Comma-separated core identifiers")
	alignCmd.Flags().String("variables", contract.DefaultVariables, "Comma-separated variable names")
	alignCmd.Flags().String("charts", contract.DefaultCharts, "Comma-separated chart formats: png, svg, html")
	alignCmd.Flags().IntP("limit", "l", 0, "Number of results to display (0 = all)")
	alignCmd.Flags().String("kafka-brokers", "", "Comma-separated Kafka brokers for result events")
	alignCmd.Flags().String("kafka-topic", contract.DefaultKafkaTopic, "Kafka topic for result events")
	alignCmd.Flags().String("metrics-file", "", "Write Prometheus textfile metrics to this path")
	if err := viper.BindPFlags(alignCmd.Flags()); err != nil {
		contract.LogFatal("Error binding align flags", err)
	}

	// Bind all flags of splitCmd to Viper
	splitCmd.Flags().String("split-columns", "", "Comma-separated columns to split out (default: all but the axis)")
	if err := viper.BindPFlags(splitCmd.Flags()); err != nil {
		contract.LogFatal("Error binding split flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
