// Package core has the batch alignment pipeline and the single-file commands.
package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/sedwarp/core/algo"
	"github.com/huangsam/sedwarp/core/warp"
	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/internal/metrics"
	"github.com/huangsam/sedwarp/internal/outwriter"
	"github.com/huangsam/sedwarp/internal/publish"
	"github.com/huangsam/sedwarp/internal/tabular"
	"github.com/huangsam/sedwarp/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteAlign aligns every core/variable record against the reference,
// writes per-item artifacts and prints the ranked summary.
// It serves as the main entry point for the 'align' command.
func ExecuteAlign(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()

	publisher, err := publish.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return fmt.Errorf("failed to create publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			contract.LogWarn("Failed to close publisher", err)
		}
	}()

	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
	}

	batch, runErr := newPipeline(cfg, mgr, publisher, m).run(ctx)

	// Failed runs still report their item counts.
	duration := time.Since(start)
	m.ObserveRun(duration, time.Now())
	if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
		contract.LogWarn("Failed to write metrics file", err)
	}
	if runErr != nil {
		return runErr
	}

	return outwriter.NewOutWriter().WriteAlignments(batch.Items, cfg, duration)
}

// ExecuteDistance computes the full-sequence distance of cfg.DataFile against
// the reference. It serves as the main entry point for the 'distance' command.
func ExecuteDistance(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	report, err := SimpleDistance(cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDistance(report, cfg)
}

// SimpleDistance returns the DTW distance between the conditioned cfg.DataFile
// and the conditioned reference, both taken whole.
func SimpleDistance(cfg *contract.Config) (schema.DistanceReport, error) {
	if cfg.DataFile == "" {
		return schema.DistanceReport{}, fmt.Errorf("a data file is required")
	}
	ref, err := loadReference(cfg)
	if err != nil {
		return schema.DistanceReport{}, err
	}
	data, err := loadSequenceFile(cfg.DataFile, cfg.DataAxis, cfg.DataValue)
	if err != nil {
		return schema.DistanceReport{}, err
	}

	aligner, err := warp.New(ref.seq, data.seq, cfg.Options)
	if err != nil {
		return schema.DistanceReport{}, err
	}
	distance, err := aligner.SimpleDistance()
	if err != nil {
		return schema.DistanceReport{}, err
	}
	return schema.DistanceReport{DataFile: cfg.DataFile, Reference: cfg.ReferenceName, Distance: distance}, nil
}

// AlignFile runs the full search for the single record cfg.DataFile without
// touching the cache, the run history or the output directory.
func AlignFile(ctx context.Context, cfg *contract.Config) (schema.AlignmentResult, error) {
	if cfg.DataFile == "" {
		return schema.AlignmentResult{}, fmt.Errorf("a data file is required")
	}
	ref, err := loadReference(cfg)
	if err != nil {
		return schema.AlignmentResult{}, err
	}
	data, err := loadSequenceFile(cfg.DataFile, cfg.DataAxis, cfg.DataValue)
	if err != nil {
		return schema.AlignmentResult{}, err
	}
	task := alignTask{DataFile: cfg.DataFile}
	return computeAlignment(ctx, cfg, ref.seq, task, data.seq)
}

// ExecuteProject maps a saved path dump onto reference time using the raw
// data values. It serves as the main entry point for the 'project' command.
func ExecuteProject(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	series, err := ProjectPath(cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteProjection(series, cfg)
}

// ProjectPath reads cfg.PathFile and returns its projected time/value series.
func ProjectPath(cfg *contract.Config) ([]schema.SeriesPoint, error) {
	if cfg.DataFile == "" || cfg.PathFile == "" {
		return nil, fmt.Errorf("a data file and a path file are required")
	}

	path, err := readPathFile(cfg.PathFile)
	if err != nil {
		return nil, err
	}
	ref, err := tabular.LoadSequence(cfg.Reference, cfg.ReferenceAxis, cfg.ReferenceValue)
	if err != nil {
		return nil, err
	}
	data, err := tabular.LoadSequence(cfg.DataFile, cfg.DataAxis, cfg.DataValue)
	if err != nil {
		return nil, err
	}

	series, err := warp.Project(ref.Axis, data.Values, path)
	if err != nil {
		return nil, fmt.Errorf("projecting %s: %w", cfg.PathFile, err)
	}
	return series, nil
}

// readPathFile parses a path dump file.
func readPathFile(name string) (algo.Path, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	path, err := warp.ReadPath(f)
	if err != nil {
		return nil, fmt.Errorf("reading path file %s: %w", name, err)
	}
	return path, nil
}

// ExecuteSplit splits a multi-column core table into one two-column file per
// variable. It serves as the main entry point for the 'split' command.
func ExecuteSplit(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	if cfg.SplitFile == "" {
		return fmt.Errorf("a file to split is required")
	}
	written, err := tabular.SplitFile(cfg.SplitFile, cfg.DataAxis, cfg.SplitColumns)
	if err != nil {
		return err
	}
	return outwriter.WriteSplitSummary(os.Stdout, written)
}
