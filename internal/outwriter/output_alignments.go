package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/sedwarp/core/algo"
	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/internal/parquet"
	"github.com/huangsam/sedwarp/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteAlignmentResults ranks the results by best distance, keeps the first
// cfg.Limit (all when zero) and writes them in the configured format.
func WriteAlignmentResults(results []schema.AlignmentResult, cfg *contract.Config, duration time.Duration) error {
	limit := cfg.Limit
	if limit <= 0 {
		limit = len(results)
	}
	enriched := schema.EnrichAlignments(algo.RankAlignments(results, limit))
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, enriched)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, enriched)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAlignmentCSV(w, enriched, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("parquet output requires --output-file")
		}
		if err := parquet.WriteAlignmentSummaryParquet(enriched, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAlignmentTable(w, enriched, cfg, fmtFloat, duration, terminalWidth())
		}, "Wrote table")
	}
}

// nextBestTime returns the runner-up candidate time, if any.
func nextBestTime(r schema.AlignmentResult) (float64, bool) {
	ranked := algo.RankCandidates(r.Candidates, len(r.BestTimes)+1)
	if len(ranked) <= len(r.BestTimes) {
		return 0, false
	}
	return ranked[len(r.BestTimes)].Time, true
}

// writeAlignmentTable renders the human-readable summary table.
func writeAlignmentTable(w io.Writer, results []schema.EnrichedAlignmentResult, cfg *contract.Config,
	fmtFloat func(float64) string, duration time.Duration, width int,
) error {
	wide := width >= wideTableWidth

	table := tablewriter.NewWriter(w)
	headers := []string{"Rank", "Core", "Variable", "Best Time", "Best Dist", "Simple Dist", "Next Best", "Path", "Label"}
	if wide {
		headers = append(headers, "Data File")
	}
	table.Header(headers)
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	cached := 0
	for _, r := range results {
		label := string(r.Label)
		if cfg.UseColors {
			label = contract.GetColorLabel(r.Label)
		}
		bestTime := formatTimes(r.BestTimes, fmtFloat)
		if bestTime == "" {
			bestTime = fmtFloat(r.TargetTime)
		}
		next := "-"
		if t, ok := nextBestTime(r.AlignmentResult); ok {
			next = fmtFloat(t)
		}
		row := []string{
			strconv.Itoa(r.Rank),
			r.Core,
			r.Variable,
			bestTime,
			fmtFloat(r.BestDistance),
			fmtFloat(r.SimpleDistance),
			next,
			strconv.Itoa(len(r.Path)),
			label,
		}
		if wide {
			row = append(row, contract.BaseName(r.DataFile))
		}
		data = append(data, row)
		if r.Cached {
			cached++
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Aligned %d items against %s (%d from cache)\n", len(results), cfg.ReferenceName, cached); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Search completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Search.Workers, cfg.CacheBackend)
	return err
}

// writeAlignmentCSV writes one CSV row per result.
func writeAlignmentCSV(w io.Writer, results []schema.EnrichedAlignmentResult, fmtFloat func(float64) string) error {
	header := []string{
		"rank", "core", "variable", "data_file", "reference",
		"best_times", "target_time", "best_distance", "simple_distance",
		"data_points", "target_points", "path_length", "label",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			rec := []string{
				strconv.Itoa(r.Rank),
				r.Core,
				r.Variable,
				r.DataFile,
				r.Reference,
				formatTimes(r.BestTimes, fmtFloat),
				fmtFloat(r.TargetTime),
				fmtFloat(r.BestDistance),
				fmtFloat(r.SimpleDistance),
				strconv.Itoa(r.DataPoints),
				strconv.Itoa(r.TargetPoints),
				strconv.Itoa(len(r.Path)),
				string(r.Label),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
