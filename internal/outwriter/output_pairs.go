package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/internal/parquet"
	"github.com/huangsam/redundant/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintPairResults outputs flagged pairs, dispatching based on the output format configured.
func PrintPairResults(pairs []schema.RedundancyPair, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForPairs(w, pairs)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForPairs(w, pairs, nil, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WritePairsParquet(pairRows(pairs), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writePairsTable(w, pairs, cfg, fmtFloat); err != nil {
				return err
			}
			return writeFooter(w, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writePairsTable generates and writes the human-readable table.
func writePairsTable(w io.Writer, pairs []schema.RedundancyPair, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)

	// 1. Define Headers
	headers := []string{"Rank", "Record A", "Record B", "Score", "Label"}
	if cfg.Detail {
		headers = append(headers, "Ind", "Geo", "Time", "Unit", "Src")
	}
	if cfg.Explain {
		headers = append(headers, "Explain")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 2. Populate Rows
	idWidth := GetMaxTableIDWidth(cfg)
	var data [][]string
	for i, p := range pairs {
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(p.A, idWidth),
			contract.TruncateText(p.B, idWidth),
			fmtFloat(p.Score),
			labelFor(cfg, p.Score),
		}
		if cfg.Detail {
			row = append(row, similarityCells(p.Breakdown, fmtFloat)...)
		}
		if cfg.Explain {
			row = append(row, formatTopDimensions(p.Breakdown, cfg.Weights))
		}
		data = append(data, row)
	}

	// 3. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d flagged pairs (threshold: %.2f)\n", len(pairs), cfg.Threshold)
	return err
}

// writeFooter prints the run summary line shared by all tables.
func writeFooter(w io.Writer, cfg *contract.Config, duration time.Duration) error {
	_, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers.\n", duration, cfg.Workers)
	return err
}

// writeJSONResultsForPairs writes pairs with rank and label added.
func writeJSONResultsForPairs(w io.Writer, pairs []schema.RedundancyPair) error {
	return writeJSON(w, schema.EnrichPairs(pairs))
}

// writeCSVResultsForPairs writes pairs in CSV format. When clusters is not
// nil a cluster_id column is added.
func writeCSVResultsForPairs(w io.Writer, pairs []schema.RedundancyPair, clusters map[string]int, fmtFloat func(float64) string) error {
	header := []string{"rank", "record_a", "record_b", "score", "label"}
	for _, d := range schema.AllDimensions {
		header = append(header, "sim_"+string(d))
	}
	if clusters != nil {
		header = append(header, "cluster_id")
	}

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, p := range pairs {
			rec := []string{
				strconv.Itoa(i + 1),
				p.A,
				p.B,
				fmtFloat(p.Score),
				schema.GetPlainLabel(p.Score),
			}
			for _, d := range schema.AllDimensions {
				if v, ok := p.Breakdown[d]; ok {
					rec = append(rec, fmtFloat(v))
				} else {
					rec = append(rec, "")
				}
			}
			if clusters != nil {
				rec = append(rec, strconv.Itoa(clusters[p.A]))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// pairRows converts pairs to Parquet rows. Absent similarities stay null.
func pairRows(pairs []schema.RedundancyPair) []parquet.PairRow {
	rows := make([]parquet.PairRow, len(pairs))
	for i, p := range pairs {
		rows[i] = parquet.PairRow{
			Rank:         int32(i + 1),
			RecordA:      p.A,
			RecordB:      p.B,
			Score:        p.Score,
			Label:        schema.GetPlainLabel(p.Score),
			SimIndicator: simPtr(p.Breakdown, schema.DimIndicator),
			SimGeo:       simPtr(p.Breakdown, schema.DimGeo),
			SimTime:      simPtr(p.Breakdown, schema.DimTime),
			SimUnit:      simPtr(p.Breakdown, schema.DimUnit),
			SimSource:    simPtr(p.Breakdown, schema.DimSource),
		}
	}
	return rows
}

func simPtr(b schema.Breakdown, d schema.Dimension) *float64 {
	v, ok := b[d]
	if !ok {
		return nil
	}
	return &v
}
