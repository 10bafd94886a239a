package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/internal/iocache"
	"github.com/huangsam/sedwarp/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadAnalysisBackend reads and validates the run history backend settings.
func loadAnalysisBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.NoneBackend
	if s := viper.GetString("analysis-backend"); s != "" {
		backend = schema.DatabaseBackend(s)
	}
	if _, ok := schema.ValidAnalysisBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid analysis backend '%s'", backend)
	}
	connStr := viper.GetString("analysis-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// analysisSetup loads minimal configuration needed for analysis operations.
// This is used by commands that need analysis access without full shared setup.
func analysisSetup() error {
	backend, connStr, err := loadAnalysisBackend()
	if err != nil {
		return err
	}

	// No result cache for analysis commands
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize analysis: %w", err)
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// analysisSetupWrapper wraps analysisSetup to provide PreRunE for analysis commands.
func analysisSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisSetup()
}

// analysisMigrateSetup loads configuration for migrations without opening the store,
// so migrations can run against a fresh database.
func analysisMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := loadAnalysisBackend()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetAnalysisDBFilePath()
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr

	return nil
}

// analysisCmd focused on run history management.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage alignment run history and exports",
	Long: `Manage the history of alignment runs.

When enabled, every 'sedwarp align' run stores:
- Run metadata (identifier, timestamps, parameters)
- One row per aligned record (best distance, target time, fit label)
- One row per swept candidate time and its distance

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run history statistics
  export  - Export history to Parquet
  clear   - Remove all history
  migrate - Run database schema migrations`,
}

// analysisClearCmd clears the run history.
var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored alignment run history",
	Long: `Delete all stored runs, alignments and candidate distances.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  sedwarp analysis export --output-file backup.parquet
  sedwarp analysis clear`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, contract.GetAnalysisDBFilePath(), cfg.AnalysisDBConnect); err != nil {
			contract.LogFatal("Failed to clear analysis data", err)
		}
		fmt.Println("Analysis data cleared successfully.")
	},
}

// analysisStatusCmd shows run history status.
var analysisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show the backend, run count, newest and oldest runs and table sizes of
the run history store.

Examples:
  sedwarp analysis status --analysis-backend sqlite`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetAnalysisStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get analysis status", err)
		}
		iocache.PrintAnalysisStatus(os.Stdout, status)
	},
}

// analysisExportCmd exports run history to Parquet files.
var analysisExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet",
	Long: `Export runs, alignments and candidate distances to Parquet files.

Requires: --output-file parameter

Examples:
  sedwarp analysis export --output-file sedwarp-data.parquet
  duckdb -c "SELECT * FROM read_parquet('sedwarp-data.parquet/alignments.parquet') LIMIT 10"`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteAnalysisExport(os.Stdout, iocache.Manager.GetAnalysisStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export analysis data", err)
		}
	},
}

// analysisMigrateCmd runs database migrations for the run history store.
var analysisMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Move the run history schema to the latest or a specific version.

Examples:
  sedwarp analysis migrate --analysis-backend sqlite
  sedwarp analysis migrate --analysis-backend sqlite --target-version 0`,
	PreRunE: analysisMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateAnalysis(cfg.AnalysisBackend, cfg.AnalysisDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
