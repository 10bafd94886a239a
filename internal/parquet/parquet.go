// Package parquet exports sedwarp run history and alignment summaries to
// Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/sedwarp/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun maps to the sedwarp_analysis_runs table.
type AnalysisRun struct {
	AnalysisID        int64      `parquet:"analysis_id,snappy"`
	RunUUID           string     `parquet:"run_uuid,snappy"`
	StartTime         time.Time  `parquet:"start_time,snappy"`
	EndTime           *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs     *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalItemsAligned int32      `parquet:"total_items_aligned,snappy"`
	ConfigParams      *string    `parquet:"config_params,optional,snappy"` // JSON
}

// Alignment maps to the sedwarp_alignments table.
type Alignment struct {
	AnalysisID     int64     `parquet:"analysis_id,snappy"`
	DataFile       string    `parquet:"data_file,snappy"`
	Core           string    `parquet:"core,snappy,dict"`
	Variable       string    `parquet:"variable,snappy,dict"`
	Reference      string    `parquet:"reference,snappy,dict"`
	AnalysisTime   time.Time `parquet:"analysis_time,snappy"`
	SimpleDistance float64   `parquet:"simple_distance,snappy"`
	BestDistance   float64   `parquet:"best_distance,snappy"`
	TargetTime     float64   `parquet:"target_time,snappy"`
	TieCount       int32     `parquet:"tie_count,snappy"`
	DataPoints     int32     `parquet:"data_points,snappy"`
	TargetPoints   int32     `parquet:"target_points,snappy"`
	PathLength     int32     `parquet:"path_length,snappy"`
	FitLabel       string    `parquet:"fit_label,snappy,dict"`
}

// CandidateDistance maps to the sedwarp_candidate_distances table.
type CandidateDistance struct {
	AnalysisID    int64   `parquet:"analysis_id,snappy"`
	DataFile      string  `parquet:"data_file,snappy,dict"`
	CandidateTime float64 `parquet:"candidate_time,snappy"`
	Distance      float64 `parquet:"distance,snappy"`
}

// AlignmentSummary is one row of the parquet output mode.
type AlignmentSummary struct {
	Rank           int32   `parquet:"rank,snappy"`
	Core           string  `parquet:"core,snappy,dict"`
	Variable       string  `parquet:"variable,snappy,dict"`
	DataFile       string  `parquet:"data_file,snappy"`
	SimpleDistance float64 `parquet:"simple_distance,snappy"`
	BestDistance   float64 `parquet:"best_distance,snappy"`
	TargetTime     float64 `parquet:"target_time,snappy"`
	TieCount       int32   `parquet:"tie_count,snappy"`
	PathLength     int32   `parquet:"path_length,snappy"`
	Label          string  `parquet:"label,snappy,dict"`
}

// writeFile writes rows to outputPath with a schema inferred from T.
func writeFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteAnalysisRunsParquet writes run rows to outputPath.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteAlignmentsParquet writes alignment rows to outputPath.
func WriteAlignmentsParquet(data []Alignment, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteCandidateDistancesParquet writes candidate distance rows to outputPath.
func WriteCandidateDistancesParquet(data []CandidateDistance, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteAlignmentSummaryParquet writes ranked alignment results to outputPath.
func WriteAlignmentSummaryParquet(results []schema.EnrichedAlignmentResult, outputPath string) error {
	return writeFile(ConvertAlignmentResults(results), outputPath)
}

// ReadFile loads every row of a Parquet file written by this package.
func ReadFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}
	return rows, nil
}

// ConvertAnalysisRunRecords converts store records into parquet rows.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, r := range records {
		var total int32
		if r.TotalItemsAligned != nil {
			total = *r.TotalItemsAligned
		}
		result[i] = AnalysisRun{
			AnalysisID:        r.AnalysisID,
			RunUUID:           r.RunUUID,
			StartTime:         r.StartTime,
			EndTime:           r.EndTime,
			RunDurationMs:     r.RunDurationMs,
			TotalItemsAligned: total,
			ConfigParams:      r.ConfigParams,
		}
	}
	return result
}

// ConvertAlignmentRecords converts store records into parquet rows.
func ConvertAlignmentRecords(records []schema.AlignmentRecord) []Alignment {
	result := make([]Alignment, len(records))
	for i, r := range records {
		result[i] = Alignment(r)
	}
	return result
}

// ConvertCandidateDistanceRecords converts store records into parquet rows.
func ConvertCandidateDistanceRecords(records []schema.CandidateDistanceRecord) []CandidateDistance {
	result := make([]CandidateDistance, len(records))
	for i, r := range records {
		result[i] = CandidateDistance(r)
	}
	return result
}

// ConvertAlignmentResults flattens ranked results into summary rows.
func ConvertAlignmentResults(results []schema.EnrichedAlignmentResult) []AlignmentSummary {
	rows := make([]AlignmentSummary, len(results))
	for i, r := range results {
		rows[i] = AlignmentSummary{
			Rank:           int32(r.Rank),
			Core:           r.Core,
			Variable:       r.Variable,
			DataFile:       r.DataFile,
			SimpleDistance: r.SimpleDistance,
			BestDistance:   r.BestDistance,
			TargetTime:     r.TargetTime,
			TieCount:       int32(len(r.BestTimes)),
			PathLength:     int32(len(r.Path)),
			Label:          string(r.Label),
		}
	}
	return rows
}
