package cmd

import (
	"github.com/huangsam/redundant/core"
	"github.com/huangsam/redundant/internal/contract"
	"github.com/spf13/cobra"
)

// scanCmd runs the full pipeline and reports pairs and clusters together.
var scanCmd = &cobra.Command{
	Use:   "scan [catalog]",
	Short: "Flag redundant record pairs and group them into clusters.",
	Long: `Compare every pair of records in a catalog and report the redundant ones.

Each pair is scored on five dimensions:
- indicator name (token-set similarity)
- geographic coverage (exact match)
- time coverage (interval overlap)
- units and source (exact match)

Pairs scoring at or above the threshold are flagged, in scan order, and
records linked by flagged pairs are grouped into duplicate clusters.

Examples:
  # Scan a CSV catalog with the default weights
  redundant scan catalog.csv

  # Be stricter and show the similarity of every dimension
  redundant scan catalog.csv --threshold 0.9 --detail

  # Only compare records that share a geography
  redundant scan catalog.json --block-on geo

  # Read the catalog from a database table
  redundant scan --source-backend postgresql --source-db-connect "host=db dbname=meta" --source-table datasets

  # Export findings to CSV for review
  redundant scan catalog.csv --output csv --output-file findings.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScan(rootCtx, cfg, analysisStore); err != nil {
			contract.LogFatal("Cannot run scan", err)
		}
	},
}

// pairsCmd lists flagged pairs ranked by score.
var pairsCmd = &cobra.Command{
	Use:   "pairs [catalog]",
	Short: "Show the flagged record pairs ranked by redundancy score.",
	Long: `Score every pair of records and list the flagged ones, highest score first.

Use --explain to see which dimensions drove each score and --detail to
print every per-dimension similarity.

Examples:
  # Top 25 pairs
  redundant pairs catalog.csv

  # All pairs with their breakdown
  redundant pairs catalog.csv --limit 0 --explain

  # Custom weights for a single run
  redundant pairs catalog.csv --weights-override "indicator=0.6,time=0.4"`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePairs(rootCtx, cfg, analysisStore); err != nil {
			contract.LogFatal("Cannot list pairs", err)
		}
	},
}

// clustersCmd lists duplicate clusters.
var clustersCmd = &cobra.Command{
	Use:   "clusters [catalog]",
	Short: "Show groups of records that are redundant with each other.",
	Long: `Group records linked by flagged pairs into duplicate clusters.

Clusters are connected components, so two members may be linked only
through a third one. The density column tells how many member pairs were
flagged directly; 1.0 means every member pair was flagged.

Examples:
  # Largest clusters first
  redundant clusters catalog.csv

  # Machine-readable output
  redundant clusters catalog.yaml --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteClusters(rootCtx, cfg, analysisStore); err != nil {
			contract.LogFatal("Cannot list clusters", err)
		}
	},
}
