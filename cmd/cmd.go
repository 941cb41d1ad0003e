// Package cmd defines the command-line interface for redundant.
package cmd

import (
	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(pairsCmd)
	rootCmd.AddCommand(clustersCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("format", "", "Input format: csv or json or yaml or parquet or sql (default: from file extension)")
	rootCmd.PersistentFlags().String("source-backend", "", "Database holding the catalog for sql input: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("source-db-connect", "", "Connection string for the catalog database (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("source-table", contract.DefaultSourceTable, "Table holding the catalog for sql input")
	rootCmd.PersistentFlags().Float64P("threshold", "t", schema.DefaultThreshold, "Minimum redundancy score in [0,1] for a pair to be flagged")
	rootCmd.PersistentFlags().String("weights-override", "", "Weights for this run (format: 'indicator=0.35,geo=0.2,time=0.25,unit=0.1,source=0.1')")
	rootCmd.PersistentFlags().String("missing-policy", string(schema.MissingZero), "Empty categorical values: zero or renormalize")
	rootCmd.PersistentFlags().String("block-on", "", "Only compare records with the same geo or unit or source when lossless")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display (0 = all)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-dimension similarities for each pair")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for run history")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "Optional JSON log file, rotated by size")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of pairsCmd to Viper
	pairsCmd.Flags().Bool("explain", false, "Print the top contributing dimensions of each pair")
	if err := viper.BindPFlags(pairsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding pairs flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().Int("max-clusters", contract.DefaultMaxClusters, "Largest number of duplicate clusters allowed before failing")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
