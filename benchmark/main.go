// Package main provides a performance benchmarking tool for the redundant CLI.
// It generates synthetic catalogs of increasing size, scans each one with
// several scanner setups, runs every scan multiple times (the first run is
// reported as cold and the rest are averaged as warm), and writes the timings
// to CSV for performance analysis and documentation.
//
// Prerequisites:
// - redundant binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the generated catalogs (default: a temp dir)
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the timings of one scenario on one catalog size.
type BenchmarkResult struct {
	Records  int
	Scenario string
	ColdTime string
	WarmTime string
}

// Scenario is a named set of scan flags.
type Scenario struct {
	Name string
	Args []string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir   string
	Timeout   time.Duration
	Runs      int
	Sizes     []int
	Scenarios []Scenario
}

func main() {
	if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := ""
	if len(os.Args) == 2 {
		workDir = os.Args[1]
	} else {
		dir, err := os.MkdirTemp("", "redundant-bench-*")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		workDir = dir
	}

	workers := strconv.Itoa(runtime.NumCPU())
	config := BenchmarkConfig{
		WorkDir: workDir,
		Timeout: 10 * time.Minute,
		Runs:    4,
		Sizes:   []int{1000, 5000, 10000},
		Scenarios: []Scenario{
			{Name: "exhaustive-1", Args: []string{"--workers", "1"}},
			{Name: "exhaustive-" + workers, Args: []string{"--workers", workers}},
			// geo weighted so that blocking on it stays lossless at 0.8
			{Name: "block-geo-" + workers, Args: []string{
				"--workers", workers,
				"--block-on", "geo",
				"--weights-override", "indicator=0.35,geo=0.3,time=0.2,unit=0.1,source=0.05",
			}},
		},
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the redundant binary exists
func checkPrerequisites() error {
	if _, err := exec.LookPath("redundant"); err != nil {
		return fmt.Errorf("redundant binary not found in PATH")
	}
	return nil
}

// runBenchmarks generates each catalog and runs every scenario against it
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %d scenarios, %v timeout, %d runs\n",
		len(config.Sizes), len(config.Scenarios), config.Timeout, config.Runs)

	for _, size := range config.Sizes {
		path := filepath.Join(config.WorkDir, fmt.Sprintf("catalog_%d.csv", size))
		if err := writeCatalog(path, size, uint64(size)); err != nil {
			return nil, fmt.Errorf("failed to generate catalog of %d records: %w", size, err)
		}
		fmt.Printf("Benchmarking %d records (%d pairs)\n", size, size*(size-1)/2)

		for _, scenario := range config.Scenarios {
			results = append(results, runScenario(config, size, path, scenario))
		}
	}
	return results, nil
}

// runScenario times one scenario and formats its cold and warm timings
func runScenario(config BenchmarkConfig, size int, path string, scenario Scenario) BenchmarkResult {
	fmt.Printf("  %s (%d runs)\n", scenario.Name, config.Runs)
	cold, warm := runBenchmark(config, path, scenario.Args)

	coldStr := "TIMEOUT"
	if cold > 0 {
		coldStr = fmt.Sprintf("%.3fs", cold)
	}
	warmStr := "TIMEOUT"
	if len(warm) > 0 {
		var sum float64
		for _, t := range warm {
			sum += t
		}
		warmStr = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
	}
	fmt.Printf("    Cold: %s, Warm average: %s\n", coldStr, warmStr)

	return BenchmarkResult{Records: size, Scenario: scenario.Name, ColdTime: coldStr, WarmTime: warmStr}
}

// runBenchmark executes a scan several times and returns the cold time and warm times
func runBenchmark(config BenchmarkConfig, path string, extraArgs []string) (coldTime float64, warmTimes []float64) {
	args := append([]string{"scan", path, "--limit", "1"}, extraArgs...)

	var times []float64
	for range config.Runs {
		start := time.Now()

		cmd := exec.Command("redundant", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool, 1)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Analysis completed in") &&
		strings.Contains(outputStr, "workers")
}

// writeCatalog writes a synthetic catalog where indicators come in families
// of near-duplicate wordings.
func writeCatalog(path string, n int, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	families := [][]string{
		{"GDP growth rate", "GDP growth rate (annual %)", "Annual GDP growth"},
		{"Population total", "Total population", "Population, total"},
		{"Inflation consumer prices", "Inflation, consumer prices (annual %)"},
		{"Unemployment rate", "Unemployment, total (% of labor force)"},
		{"CO2 emissions per capita", "CO2 emissions (metric tons per capita)"},
		{"Life expectancy at birth", "Life expectancy at birth, total (years)"},
	}
	geos := []string{"USA", "GBR", "FRA", "DEU", "JPN", "BRA", "IND", ""}
	units := []string{"percent", "persons", "tonnes", "years"}
	sources := []string{"World Bank", "IMF", "OECD", "UN", ""}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"id", "indicator", "geographic_coverage", "time_start", "time_end", "units", "source"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range n {
		family := families[rng.IntN(len(families))]
		start := 1960 + rng.IntN(50)
		end := start + 1 + rng.IntN(30)
		row := []string{
			fmt.Sprintf("DS%06d", i),
			family[rng.IntN(len(family))],
			geos[rng.IntN(len(geos))],
			strconv.Itoa(start),
			strconv.Itoa(end),
			units[rng.IntN(len(units))],
			sources[rng.IntN(len(sources))],
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/redundant_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"records", "scenario", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{strconv.Itoa(result.Records), result.Scenario, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, scenario := range config.Scenarios {
		fmt.Printf("%s:\n", scenario.Name)
		for _, result := range results {
			if result.Scenario == scenario.Name {
				fmt.Printf("  %6d records: Cold: %s, Warm: %s\n", result.Records, result.ColdTime, result.WarmTime)
			}
		}
	}
}
