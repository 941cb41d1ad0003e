// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteScan prints a full scan result using the configured output format.
func (ow *OutWriter) WriteScan(result *schema.ScanResult, cfg *contract.Config, duration time.Duration) error {
	return PrintScanResult(result, cfg, duration)
}

// WritePairs prints flagged pairs using the configured output format.
func (ow *OutWriter) WritePairs(pairs []schema.RedundancyPair, cfg *contract.Config, duration time.Duration) error {
	return PrintPairResults(pairs, cfg, duration)
}

// WriteClusters prints duplicate clusters using the configured output format.
func (ow *OutWriter) WriteClusters(clusters []schema.Cluster, unclustered []string, cfg *contract.Config, duration time.Duration) error {
	return PrintClusterResults(clusters, unclustered, cfg, duration)
}

// WriteWeights prints the active weight vector using the configured output format.
func (ow *OutWriter) WriteWeights(weights schema.WeightVector, cfg *contract.Config) error {
	return PrintWeights(weights, cfg)
}

// GetMaxTableIDWidth calculates the maximum width for record ids in table output
// based on terminal width and table configuration.
func GetMaxTableIDWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Score + Label with borders/padding
	baseWidth := 25
	if cfg.Detail {
		baseWidth += 40 // One similarity column per dimension
	}
	if cfg.Explain {
		baseWidth += 30
	}
	baseWidth += 20

	// Two id columns share what is left
	available := (termWidth - baseWidth) / 2
	if available < 10 {
		return 10
	}
	if available > 40 {
		return 40
	}
	return available
}
