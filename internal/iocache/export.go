package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/internal/parquet"
)

// ExecuteAnalysisExport writes the run history in store to three Parquet files
// named after outputFile.
func ExecuteAnalysisExport(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is disabled")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total alignment records: %d\n", status.TableSizes[alignmentsTable])

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	alignments, err := store.GetAllAlignments()
	if err != nil {
		return fmt.Errorf("failed to retrieve alignments: %w", err)
	}
	candidates, err := store.GetAllCandidateDistances()
	if err != nil {
		return fmt.Errorf("failed to retrieve candidate distances: %w", err)
	}

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquet.ConvertAnalysisRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(runs), runsFile)

	alignmentsFile := outputFile + ".alignments.parquet"
	if err := parquet.WriteAlignmentsParquet(parquet.ConvertAlignmentRecords(alignments), alignmentsFile); err != nil {
		return fmt.Errorf("failed to write alignments: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d alignment records to: %s\n", len(alignments), alignmentsFile)

	candidatesFile := outputFile + ".candidate_distances.parquet"
	if err := parquet.WriteCandidateDistancesParquet(parquet.ConvertCandidateDistanceRecords(candidates), candidatesFile); err != nil {
		return fmt.Errorf("failed to write candidate distances: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d candidate distances to: %s\n", len(candidates), candidatesFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with DuckDB, pandas or Spark.")
	return nil
}
