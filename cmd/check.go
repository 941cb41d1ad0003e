package cmd

import (
	"github.com/huangsam/redundant/core"
	"github.com/huangsam/redundant/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [catalog]",
	Short: "Fail when a catalog holds more duplicate clusters than allowed",
	Long: `Scan a catalog and exit with a non-zero code when the number of duplicate
clusters exceeds --max-clusters (default 0).

Use cases:
- Gate catalog changes in pull requests
- Keep a harvested catalog free of new duplicates

Examples:
  # Fail on any duplicate
  redundant check catalog.csv

  # Tolerate the three known clusters
  redundant check catalog.csv --max-clusters 3 --threshold 0.9`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, analysisStore); err != nil {
			contract.LogFatal("Redundancy check failed", err)
		}
	},
}
