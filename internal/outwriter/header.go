package outwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/schema"
)

// LogScanHeader prints a concise, 2-line header before a scan.
// It goes to stderr so that JSON and CSV on stdout stay machine readable.
func LogScanHeader(cfg *contract.Config, numRecords int) {
	writeScanHeader(os.Stderr, cfg, numRecords)
}

func writeScanHeader(w io.Writer, cfg *contract.Config, numRecords int) {
	source := describeSource(cfg)
	pairs := numRecords * (numRecords - 1) / 2
	strategy := "exhaustive"
	if cfg.BlockOn != "" {
		strategy = "blocked on " + string(cfg.BlockOn)
	}

	if cfg.UseEmojis {
		_, _ = fmt.Fprintf(w, "🔎 Catalog: %s (%d records, %d pairs)\n", source, numRecords, pairs)
		_, _ = fmt.Fprintf(w, "⚖️  Threshold: %.2f (%s, missing values: %s)\n", cfg.Threshold, strategy, cfg.MissingPolicy)
		return
	}
	_, _ = fmt.Fprintf(w, "Catalog: %s (%d records, %d pairs)\n", source, numRecords, pairs)
	_, _ = fmt.Fprintf(w, "Threshold: %.2f (%s, missing values: %s)\n", cfg.Threshold, strategy, cfg.MissingPolicy)
}

func describeSource(cfg *contract.Config) string {
	if cfg.InputFormat == schema.SQLIn {
		return fmt.Sprintf("%s table %s", cfg.SourceBackend, cfg.SourceTable)
	}
	name := filepath.Base(cfg.InputPath)
	if name == "" || name == "." {
		return "stdin"
	}
	return name
}
