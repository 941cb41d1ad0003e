package outwriter

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// labelFor picks a colored or plain label for table output.
func labelFor(cfg *contract.Config, score float64) string {
	if cfg.UseColors {
		return contract.GetColorLabel(score)
	}
	return schema.GetPlainLabel(score)
}

const topNDimensions = 3

// formatTopDimensions lists the dimensions that contributed most to a score,
// ranked by weight times similarity.
func formatTopDimensions(b schema.Breakdown, weights schema.WeightVector) string {
	type contribution struct {
		dim   schema.Dimension
		value float64
	}
	var parts []contribution
	for _, d := range schema.AllDimensions {
		sim, ok := b[d]
		if !ok {
			continue
		}
		if v := sim * weights.Get(d); v > 0 {
			parts = append(parts, contribution{d, v})
		}
	}
	if len(parts) == 0 {
		return "Not applicable"
	}
	slices.SortStableFunc(parts, func(a, b contribution) int {
		return cmp.Compare(b.value, a.value)
	})

	names := make([]string, 0, topNDimensions)
	for _, p := range parts[:min(len(parts), topNDimensions)] {
		names = append(names, string(p.dim))
	}
	return strings.Join(names, " > ")
}

// similarityCells renders one cell per dimension, "-" where the breakdown has no value.
func similarityCells(b schema.Breakdown, fmtFloat func(float64) string) []string {
	cells := make([]string, len(schema.AllDimensions))
	for i, d := range schema.AllDimensions {
		if v, ok := b[d]; ok {
			cells[i] = fmtFloat(v)
		} else {
			cells[i] = "-"
		}
	}
	return cells
}

// clusterOf maps every clustered record to its cluster id.
func clusterOf(clusters []schema.Cluster) map[string]int {
	index := make(map[string]int)
	for _, c := range clusters {
		for _, m := range c.Members {
			index[m] = c.ID
		}
	}
	return index
}
