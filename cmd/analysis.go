package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/internal/runstore"
	"github.com/huangsam/redundant/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadAnalysisBackend reads and validates the run history backend settings.
func loadAnalysisBackend() (schema.DatabaseBackend, string, error) {
	setConfigSearch()
	if err := readConfigFile(); err != nil {
		return "", "", err
	}
	if err := setupLogger(); err != nil {
		return "", "", fmt.Errorf("failed to initialize logger: %w", err)
	}

	backend := schema.DatabaseBackend(viper.GetString("analysis-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("analysis-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr, "analysis-db-connect"); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// analysisSetup loads minimal configuration needed for analysis operations.
// This is used by commands that need run history without a catalog.
func analysisSetup() error {
	backend, connStr, err := loadAnalysisBackend()
	if err != nil {
		return err
	}
	if err := runstore.InitRunStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize analysis: %w", err)
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	analysisStore = runstore.Manager.GetAnalysisStore()
	return nil
}

// analysisSetupWrapper wraps analysisSetup to provide PreRunE for analysis commands.
func analysisSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisSetup()
}

// analysisMigrateSetup loads minimal configuration needed for migrate operations.
// It does NOT open the store or create tables, so migrations can run on a
// fresh database.
func analysisMigrateSetup() error {
	backend, connStr, err := loadAnalysisBackend()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetAnalysisDBFilePath()
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	return nil
}

// analysisMigrateSetupWrapper wraps analysisMigrateSetup to provide PreRunE for migrate command.
func analysisMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisMigrateSetup()
}

// analysisCmd focused on run history management.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage the history of scan runs",
	Long: `Manage the run history written when --analysis-backend is set.

Every tracked run stores:
- Run metadata (timestamp, configuration, duration, totals)
- Every flagged pair with its score and cluster id

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  redundant analysis status --analysis-backend sqlite

  # Export for analysis in pandas/DuckDB
  redundant analysis export --analysis-backend sqlite --output-file history.parquet`,
}

// analysisClearCmd clears the run history.
var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored runs and flagged pairs",
	Long: `Delete every stored run and flagged pair.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  redundant analysis export --analysis-backend sqlite --output-file backup.parquet
  redundant analysis clear --analysis-backend sqlite`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the handle first so sqlite can drop its tables.
		runstore.CloseRunStore()
		dbFilePath := contract.GetAnalysisDBFilePath()
		if cfg.AnalysisBackend == schema.SQLiteBackend && cfg.AnalysisDBConnect != "" {
			dbFilePath = cfg.AnalysisDBConnect
		}
		if err := runstore.ClearAnalysis(cfg.AnalysisBackend, dbFilePath, cfg.AnalysisDBConnect); err != nil {
			contract.LogFatal("Failed to clear analysis data", err)
		}
		fmt.Println("Analysis data cleared successfully.")
	},
}

// analysisStatusCmd shows run history status.
var analysisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show the backend, number of stored runs, their time span, totals and table sizes.

Examples:
  redundant analysis status --analysis-backend sqlite`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if analysisStore == nil {
			contract.LogFatal("Failed to get analysis status", fmt.Errorf("analysis tracking is disabled, set --analysis-backend"))
		}
		status, err := analysisStore.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get analysis status", err)
		}
		runstore.PrintAnalysisStatus(os.Stdout, status)
	},
}

// analysisExportCmd exports run history to Parquet files.
var analysisExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs and flagged pairs to Parquet.

Two files are written next to --output-file:
- <name>.analysis_runs.parquet
- <name>.pairs.parquet

Examples:
  redundant analysis export --analysis-backend sqlite --output-file history.parquet
  duckdb -c "SELECT * FROM read_parquet('history.pairs.parquet') LIMIT 10"`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.ExecuteAnalysisExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export analysis data", err)
		}
	},
}

// analysisMigrateCmd runs database migrations for the run store.
var analysisMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  redundant analysis migrate --analysis-backend sqlite

  # Rollback to the initial state
  redundant analysis migrate --analysis-backend sqlite --target-version 0`,
	PreRunE: analysisMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := runstore.MigrateAnalysis(cfg.AnalysisBackend, cfg.AnalysisDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
