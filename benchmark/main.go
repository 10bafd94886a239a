// Package main provides a performance benchmarking tool for the sedwarp CLI.
// It measures 'sedwarp align' across sweep resolutions, running each setting
// several times without a cache and with a SQLite cache. The first cached run
// is reported as cold and the rest are averaged as warm. Results go to a CSV file.
//
// Prerequisites:
// - sedwarp binary installed and available in PATH
// - A project directory laid out with a reference stack and core records
//
// Usage: go run benchmark/main.go [project-dir]
//
//	project-dir: Directory containing data/LR04stack.txt and data/core_<id>_<variable>.csv
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Step        string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	ProjectDir  string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Steps       []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [project-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		ProjectDir:  os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Steps:       []string{"10", "5", "2.5", "1"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("sedwarp", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the sedwarp binary and the reference exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("sedwarp"); err != nil {
		return fmt.Errorf("sedwarp binary not found in PATH")
	}
	ref := filepath.Join(config.ProjectDir, "data", "LR04stack.txt")
	if _, err := os.Stat(ref); os.IsNotExist(err) {
		return fmt.Errorf("reference not found at %s", ref)
	}
	return nil
}

// runBenchmarks executes the align suite once per sweep step
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	fmt.Printf("Starting benchmark: %d steps, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Steps), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	var results []BenchmarkResult
	for _, step := range config.Steps {
		results = append(results, runBenchmarkSuite(config, step))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one step
func runBenchmarkSuite(config BenchmarkConfig, step string) BenchmarkResult {
	fmt.Printf("Running align with step %s\n", step)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, step, cacheBackend, numRuns)
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

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Step:        step,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes sedwarp align several times and returns the cold time and warm times
func runBenchmark(config BenchmarkConfig, step, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"align",
		"--cache-backend", cacheBackend,
		"--step", step,
		"--workers", fmt.Sprint(config.Workers),
		"--charts", "",
		"--out-dir", filepath.Join(os.TempDir(), "sedwarp-benchmark"),
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("sedwarp", args...)
		cmd.Dir = config.ProjectDir

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
			<-done
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
	return strings.Contains(outputStr, "Search completed in") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("sedwarp_benchmark_%s.csv", timestamp))

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

	if err := writer.Write([]string{"step", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Step, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	fmt.Printf("Align:\n")
	for _, result := range results {
		fmt.Printf("  step %-6s: No-cache: %s, Cold: %s, Warm: %s\n", result.Step, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
