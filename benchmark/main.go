// Package main provides a performance benchmarking tool for the maintinsight CLI.
// It generates synthetic maintenance batches of increasing size, runs each command
// several times without a cache and with a SQLite result cache, treating the first
// cached run as cold and averaging the rest as warm, and writes the timings to CSV.
//
// Prerequisites:
// - maintinsight binary installed and available in PATH
// - a model artifact trained on weekly_score and monthly_score (examples/model.yaml)
//
// Usage: go run benchmark/main.go [model-path]
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Batch       string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	ModelPath   string
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	BatchSizes  map[string]int
	BatchOrder  []string
	Commands    []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [model-path]\n", os.Args[0])
		os.Exit(1)
	}

	workDir, err := os.MkdirTemp("", "maintinsight-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	config := BenchmarkConfig{
		ModelPath:   os.Args[1],
		WorkDir:     workDir,
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		BatchSizes: map[string]int{
			"small":  1_000,
			"medium": 50_000,
			"large":  500_000,
		},
		BatchOrder: []string{"small", "medium", "large"},
		Commands:   []string{"summary", "trends", "records"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the binary and the model exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("maintinsight"); err != nil {
		return fmt.Errorf("maintinsight binary not found in PATH")
	}
	if _, err := os.Stat(config.ModelPath); os.IsNotExist(err) {
		return fmt.Errorf("model artifact not found at %s", config.ModelPath)
	}
	return nil
}

// generateBatch writes a synthetic maintenance CSV with the given number of rows.
// Roughly one in a hundred rows carries an unparseable date.
func generateBatch(path string, rows int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	rng := rand.New(rand.NewPCG(42, uint64(rows)))
	start := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)
	units := max(rows/50, 1)

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"unit_id", "record_date", "weekly_score", "monthly_score", "site"}); err != nil {
		return err
	}
	sites := []string{"north", "south", "east", "west"}
	for i := range rows {
		date := start.AddDate(0, 0, 7*(i/units)%728).Format("2006-01-02")
		if rng.IntN(100) == 0 {
			date = "not recorded"
		}
		weekly := rng.Float64() * 100
		if err := writer.Write([]string{
			fmt.Sprintf("U-%05d", i%units),
			date,
			strconv.FormatFloat(weekly, 'f', 1, 64),
			strconv.FormatFloat(weekly*4+rng.Float64()*20, 'f', 1, 64),
			sites[i%len(sites)],
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// runBenchmarks executes all benchmark tests across configured batch sizes
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d batches, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.BatchOrder), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, name := range config.BatchOrder {
		rows := config.BatchSizes[name]
		csvPath := filepath.Join(config.WorkDir, name+".csv")
		fmt.Printf("Generating %s batch (%d rows)\n", name, rows)
		if err := generateBatch(csvPath, rows); err != nil {
			fmt.Printf("Warning: failed to generate %s batch: %v\n", name, err)
			continue
		}

		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, name, csvPath, command))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, batch, csvPath, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s batch\n", command, batch)

	// Each suite gets a fresh cache file so the first cached run is cold
	cacheFile := filepath.Join(config.WorkDir, fmt.Sprintf("%s_%s_cache.db", batch, command))

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, csvPath, command, cacheBackend, cacheFile, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Batch:       batch,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a command multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, csvPath, command, cacheBackend, cacheFile string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{command, csvPath, "--model-path", config.ModelPath, "--cache-backend", cacheBackend, "--limit", "10"}
	if cacheBackend == "sqlite" {
		args = append(args, "--cache-db-connect", cacheFile)
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("maintinsight", args...)

		done := make(chan bool)
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
	return strings.Contains(string(output), "Analysis completed in")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("maintinsight_benchmark_%s.csv", timestamp))

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

	if err := writer.Write([]string{"batch", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Batch, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Batch, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
	fmt.Printf("Benchmark script completed successfully\n")
}
