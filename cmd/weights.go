package cmd

import (
	"github.com/huangsam/redundant/core"
	"github.com/huangsam/redundant/internal/contract"
	"github.com/spf13/cobra"
)

// weightsCmd displays the active weight vector.
var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Display the scoring formula and the active dimension weights",
	Long: `Show how a pair score is computed and which weights are in effect.

Weights come from, in order of precedence:
- --weights-override
- the weights section of .redundant.yaml
- the built-in defaults

No catalog is read. Examples:
  redundant weights
  redundant weights --config .redundant.yaml`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		// The weights display needs no catalog, so skip input validation
		// by pointing at a placeholder path.
		return sharedSetup(rootCtx, cmd, []string{"-"})
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWeights(rootCtx, cfg, analysisStore); err != nil {
			contract.LogFatal("Cannot display weights", err)
		}
	},
}
