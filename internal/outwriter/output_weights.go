package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/redundant/internal/contract"
	"github.com/huangsam/redundant/schema"
)

// dimensionInfo describes how one dimension is compared.
type dimensionInfo struct {
	Dimension  string  `json:"dimension"`
	Comparator string  `json:"comparator"`
	Weight     float64 `json:"weight"`
}

// weightsRenderModel is the display model of the weights command.
type weightsRenderModel struct {
	Title      string          `json:"title"`
	Formula    string          `json:"formula"`
	Custom     bool            `json:"custom"`
	Dimensions []dimensionInfo `json:"dimensions"`
}

var comparators = map[schema.Dimension]string{
	schema.DimIndicator: "token set ratio",
	schema.DimGeo:       "exact match",
	schema.DimTime:      "interval overlap",
	schema.DimUnit:      "exact match",
	schema.DimSource:    "exact match",
}

// PrintWeights displays the active weight vector and the scoring formula.
// This is a static display that does not load any records.
func PrintWeights(weights schema.WeightVector, cfg *contract.Config) error {
	model := buildWeightsRenderModel(weights, cfg.CustomWeights)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"dimension", "comparator", "weight"}, func(cw *csv.Writer) error {
				for _, d := range model.Dimensions {
					if err := cw.Write([]string{d.Dimension, d.Comparator, fmt.Sprintf("%.4f", d.Weight)}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for weights")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return printWeightsText(w, model, cfg)
		}, "Wrote text")
	}
}

func buildWeightsRenderModel(weights schema.WeightVector, custom bool) *weightsRenderModel {
	model := &weightsRenderModel{
		Title:   "Redundancy Scoring",
		Formula: formatFormula(weights),
		Custom:  custom,
	}
	for _, d := range schema.AllDimensions {
		model.Dimensions = append(model.Dimensions, dimensionInfo{
			Dimension:  string(d),
			Comparator: comparators[d],
			Weight:     weights.Get(d),
		})
	}
	return model
}

// formatFormula renders the weighted sum, leaving out zero weights.
func formatFormula(weights schema.WeightVector) string {
	var parts []string
	for _, d := range schema.AllDimensions {
		if w := weights.Get(d); w > 0 {
			parts = append(parts, fmt.Sprintf("%.2f*%s", w, d))
		}
	}
	return strings.Join(parts, " + ")
}

func printWeightsText(w io.Writer, model *weightsRenderModel, cfg *contract.Config) error {
	title := model.Title
	if cfg.UseEmojis {
		title = "⚖️  " + title
	}
	source := "default"
	if model.Custom {
		source = "custom"
	}
	lines := []string{
		title,
		strings.Repeat("=", len(model.Title)),
		"",
		fmt.Sprintf("Score = %s", model.Formula),
		fmt.Sprintf("Weights: %s", source),
		"",
	}
	for _, d := range model.Dimensions {
		lines = append(lines, fmt.Sprintf("  %-10s %.2f  %s", d.Dimension, d.Weight, d.Comparator))
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
