package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/internal/parquet"
	"github.com/huangsam/redundant/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// clusterOutput is the JSON shape of the clusters command.
type clusterOutput struct {
	Clusters    []schema.Cluster `json:"clusters"`
	Unclustered []string         `json:"unclustered"`
}

// PrintClusterResults outputs duplicate clusters, dispatching based on the output format configured.
func PrintClusterResults(clusters []schema.Cluster, unclustered []string, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		out := clusterOutput{Clusters: nonNil(clusters), Unclustered: nonNil(unclustered)}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, out)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForClusters(w, clusters, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteClustersParquet(clusterRows(clusters), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeClustersTable(w, clusters, unclustered, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			return writeFooter(w, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeClustersTable prints one row per cluster.
func writeClustersTable(w io.Writer, clusters []schema.Cluster, unclustered []string, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Cluster", "Size", "Mean", "Label", "Members"}
	if cfg.Detail {
		headers = append(headers, "Edges", "Min", "Max", "Density")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	memberWidth := 2 * GetMaxTableIDWidth(cfg)
	var data [][]string
	for _, c := range clusters {
		row := []string{
			strconv.Itoa(c.ID),
			fmt.Sprintf(intFmt, c.Size()),
			fmtFloat(c.MeanScore),
			labelFor(cfg, c.MeanScore),
			contract.TruncateText(strings.Join(c.Members, ", "), memberWidth),
		}
		if cfg.Detail {
			row = append(row,
				fmt.Sprintf(intFmt, c.Edges),
				fmtFloat(c.MinScore),
				fmtFloat(c.MaxScore),
				fmtFloat(c.Density),
			)
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	clustered := 0
	for _, c := range clusters {
		clustered += c.Size()
	}
	_, err := fmt.Fprintf(w, "Showing %d clusters (%d records clustered, %d unclustered)\n", len(clusters), clustered, len(unclustered))
	return err
}

// writeCSVResultsForClusters writes one row per cluster member.
func writeCSVResultsForClusters(w io.Writer, clusters []schema.Cluster, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"cluster_id", "record_id", "size", "edges", "min_score", "max_score", "mean_score", "density"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range clusters {
			for _, m := range c.Members {
				rec := []string{
					strconv.Itoa(c.ID),
					m,
					fmt.Sprintf(intFmt, c.Size()),
					fmt.Sprintf(intFmt, c.Edges),
					fmtFloat(c.MinScore),
					fmtFloat(c.MaxScore),
					fmtFloat(c.MeanScore),
					fmtFloat(c.Density),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// clusterRows flattens clusters into one Parquet row per member.
func clusterRows(clusters []schema.Cluster) []parquet.ClusterMemberRow {
	var rows []parquet.ClusterMemberRow
	for _, c := range clusters {
		for _, m := range c.Members {
			rows = append(rows, parquet.ClusterMemberRow{
				ClusterID: int32(c.ID),
				RecordID:  m,
				Size:      int32(c.Size()),
				Edges:     int32(c.Edges),
				MinScore:  c.MinScore,
				MaxScore:  c.MaxScore,
				MeanScore: c.MeanScore,
				Density:   c.Density,
			})
		}
	}
	return rows
}

// nonNil keeps empty lists as [] rather than null in JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
