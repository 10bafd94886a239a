package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/sedwarp/core/warp"
	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/internal/logger"
	"github.com/huangsam/sedwarp/internal/metrics"
	"github.com/huangsam/sedwarp/internal/outwriter"
	"github.com/huangsam/sedwarp/internal/tabular"
	"github.com/huangsam/sedwarp/schema"
	"golang.org/x/sync/errgroup"
)

// alignTask is one data file matched to a core and variable.
type alignTask struct {
	Core     string
	Variable string
	DataFile string
}

// loadedSequence is a parsed table column pair plus the hash of the raw file.
type loadedSequence struct {
	seq  warp.Sequence
	hash string
}

// loadedTask is a task with its data sequence in memory.
type loadedTask struct {
	alignTask
	loadedSequence
}

// pipeline carries the collaborators of one batch run.
type pipeline struct {
	cfg       *contract.Config
	cache     contract.CacheStore    // nil when caching is disabled
	analysis  contract.AnalysisStore // nil when tracking is disabled
	publisher contract.Publisher
	metrics   *metrics.Metrics // nil when no metrics file is configured
	writer    *outwriter.OutWriter
	log       *logger.Logger
}

// newPipeline wires a pipeline from the configured stores and integrations.
func newPipeline(cfg *contract.Config, mgr contract.CacheManager, publisher contract.Publisher, m *metrics.Metrics) *pipeline {
	p := &pipeline{
		cfg:       cfg,
		publisher: publisher,
		metrics:   m,
		writer:    outwriter.NewOutWriter(),
		log:       logger.Named("pipeline"),
	}
	if mgr != nil {
		p.cache = mgr.GetResultStore()
		p.analysis = mgr.GetAnalysisStore()
	}
	return p
}

// discoverTasks lists the data files for every core and variable. A file that
// matches more than one combination is aligned once, under the first match.
func discoverTasks(cfg *contract.Config) ([]alignTask, error) {
	log := logger.Named("pipeline")
	seen := make(map[string]struct{})
	var tasks []alignTask
	for _, core := range cfg.Cores {
		for _, variable := range cfg.Variables {
			files, err := contract.FindDataFiles(cfg.DataDir, core, variable)
			if err != nil {
				return nil, err
			}
			if len(files) == 0 {
				log.Warn().Str("core", core).Str("variable", variable).Msg("No data files found")
			}
			for _, f := range files {
				if _, dup := seen[f]; dup {
					log.Debug().Str("file", f).Msg("Skipping file matched by an earlier core/variable")
					continue
				}
				seen[f] = struct{}{}
				tasks = append(tasks, alignTask{Core: core, Variable: variable, DataFile: f})
			}
		}
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("no data files found in %s for cores %v and variables %v", cfg.DataDir, cfg.Cores, cfg.Variables)
	}
	return tasks, nil
}

// loadSequenceFile reads path once, hashing the raw bytes and parsing the two columns.
func loadSequenceFile(path, axisCol, valueCol string) (loadedSequence, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return loadedSequence{}, err
	}
	frame, err := tabular.Read(bytes.NewReader(raw))
	if err != nil {
		return loadedSequence{}, fmt.Errorf("reading %s: %w", path, err)
	}
	seq, err := tabular.FrameSequence(frame, axisCol, valueCol)
	if err != nil {
		return loadedSequence{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return loadedSequence{seq: seq, hash: hashContent(raw)}, nil
}

// loadReference reads the reference record and keeps the rows at or below the search end.
func loadReference(cfg *contract.Config) (loadedSequence, error) {
	ref, err := loadSequenceFile(cfg.Reference, cfg.ReferenceAxis, cfg.ReferenceValue)
	if err != nil {
		return loadedSequence{}, err
	}
	ref.seq = warp.Truncate(ref.seq, cfg.Search.End)
	if ref.seq.Len() == 0 {
		return loadedSequence{}, fmt.Errorf("reference %s has no rows at or below %g", cfg.Reference, cfg.Search.End)
	}
	return ref, nil
}

// loadInputs reads the reference and every data file concurrently.
func loadInputs(ctx context.Context, cfg *contract.Config, tasks []alignTask) (loadedSequence, []loadedTask, error) {
	var ref loadedSequence
	loaded := make([]loadedTask, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Search.Workers, 1))

	g.Go(func() error {
		var err error
		ref, err = loadReference(cfg)
		return err
	})
	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := loadSequenceFile(task.DataFile, cfg.DataAxis, cfg.DataValue)
			if err != nil {
				return err
			}
			loaded[i] = loadedTask{alignTask: task, loadedSequence: data}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return loadedSequence{}, nil, err
	}
	return ref, loaded, nil
}

// computeAlignment conditions one record against the reference, sweeps the
// cutoff times, extracts the winning path and projects it onto reference time.
func computeAlignment(ctx context.Context, cfg *contract.Config, ref warp.Sequence, task alignTask, data warp.Sequence) (schema.AlignmentResult, error) {
	aligner, err := warp.New(ref, data, cfg.Options)
	if err != nil {
		return schema.AlignmentResult{}, err
	}
	simple, err := aligner.SimpleDistance()
	if err != nil {
		return schema.AlignmentResult{}, err
	}
	best, err := aligner.FindBestAlignment(ctx, cfg.Search)
	if err != nil {
		return schema.AlignmentResult{}, err
	}
	series, err := warp.Project(ref.Axis, data.Values, best.Path)
	if err != nil {
		return schema.AlignmentResult{}, err
	}

	return schema.AlignmentResult{
		Core:           task.Core,
		Variable:       task.Variable,
		DataFile:       task.DataFile,
		Reference:      cfg.ReferenceName,
		SimpleDistance: simple,
		BestDistance:   best.BestDistance,
		BestTimes:      best.BestTimes,
		TargetTime:     best.TargetTime(),
		DataPoints:     data.Len(),
		TargetPoints:   best.TargetPoints,
		Candidates:     best.Table.Entries(),
		Path:           warp.PathPairs(best.Path),
		Series:         series,
		ComputedAt:     time.Now().UTC(),
	}, nil
}

// alignOne returns the cached result for the task or computes and caches it.
func (p *pipeline) alignOne(ctx context.Context, ref loadedSequence, task loadedTask) (schema.AlignmentResult, error) {
	key := generateCacheKey(p.cfg, task.hash, ref.hash)
	if p.cache != nil {
		cached, hit := checkCacheHit(p.cache, key, time.Now())
		p.metrics.ObserveCache(hit)
		if hit {
			cached.Core, cached.Variable, cached.DataFile = task.Core, task.Variable, task.DataFile
			cached.Reference = p.cfg.ReferenceName
			cached.Cached = true
			p.log.Debug().Str("file", task.DataFile).Msg("Using cached alignment")
			return cached, nil
		}
	}

	started := time.Now()
	result, err := computeAlignment(ctx, p.cfg, ref.seq, task.alignTask, task.seq)
	if err != nil {
		return schema.AlignmentResult{}, fmt.Errorf("aligning %s: %w", task.DataFile, err)
	}
	elapsed := time.Since(started)
	p.log.Debug().
		Str("file", task.DataFile).
		Float64("best_distance", result.BestDistance).
		Float64("target_time", result.TargetTime).
		Int("candidates", len(result.Candidates)).
		Dur("elapsed", elapsed).
		Msg("Aligned record")
	p.metrics.ObserveItem(result.Core, result.Variable, result.BestDistance, result.TargetTime, len(result.Candidates), false, elapsed)

	if p.cache != nil {
		if err := storeResult(p.cache, key, result, time.Now()); err != nil {
			contract.LogWarn("Failed to cache alignment for "+task.DataFile, err)
		}
	}
	return result, nil
}

// finishTask writes the artifacts of a result and reports it downstream.
// Failures here are logged without failing the item.
func (p *pipeline) finishTask(ctx context.Context, result schema.AlignmentResult) {
	if result.Cached {
		p.metrics.ObserveItem(result.Core, result.Variable, result.BestDistance, result.TargetTime, len(result.Candidates), true, 0)
	}

	if _, err := p.writer.WriteArtifacts(result, p.cfg); err != nil {
		contract.LogWarn("Failed to write artifacts for "+result.DataFile, err)
	}

	if analysisID, ok := getAnalysisID(ctx); ok && p.analysis != nil {
		recordAlignment(p.analysis, analysisID, result)
	}

	if err := p.publisher.Publish(ctx, runIDFromContext(ctx), result); err != nil {
		contract.LogWarn("Failed to publish alignment for "+result.DataFile, err)
	}
}

// recordAlignment records the item summary and its distance table.
func recordAlignment(store contract.AnalysisStore, analysisID int64, result schema.AlignmentResult) {
	record := schema.AlignmentRecord{
		AnalysisID:     analysisID,
		DataFile:       result.DataFile,
		Core:           result.Core,
		Variable:       result.Variable,
		Reference:      result.Reference,
		AnalysisTime:   time.Now(),
		SimpleDistance: result.SimpleDistance,
		BestDistance:   result.BestDistance,
		TargetTime:     result.TargetTime,
		TieCount:       int32(len(result.BestTimes)),
		DataPoints:     int32(result.DataPoints),
		TargetPoints:   int32(result.TargetPoints),
		PathLength:     int32(len(result.Path)),
		FitLabel:       string(schema.GetFitLabel(schema.RMSPerStep(result.BestDistance, len(result.Path)))),
	}
	if err := store.RecordAlignment(analysisID, record); err != nil {
		logTrackingError("RecordAlignment", result.DataFile, err)
		return
	}
	if err := store.RecordCandidates(analysisID, result.DataFile, result.Candidates); err != nil {
		logTrackingError("RecordCandidates", result.DataFile, err)
	}
}

// logTrackingError logs run history failures without disrupting the batch.
func logTrackingError(operation, dataFile string, err error) {
	contract.LogWarn(fmt.Sprintf("Analysis tracking failed for %s on %s", operation, dataFile), err)
}

// beginTracking opens a run row when an analysis store is configured.
func (p *pipeline) beginTracking(ctx context.Context, runID string, started time.Time) context.Context {
	if p.analysis == nil {
		return ctx
	}
	analysisID, err := p.analysis.BeginAnalysis(runID, started, p.cfg.Params())
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return ctx
	}
	return withAnalysisID(ctx, analysisID)
}

// endTracking closes the run row opened by beginTracking.
func (p *pipeline) endTracking(ctx context.Context, aligned int) {
	analysisID, ok := getAnalysisID(ctx)
	if !ok || p.analysis == nil {
		return
	}
	if err := p.analysis.EndAnalysis(analysisID, time.Now(), aligned); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}

// run aligns every task in order. An item that fails is logged and skipped;
// the run fails only when nothing could be aligned.
func (p *pipeline) run(ctx context.Context) (schema.BatchResult, error) {
	started := time.Now()
	runID := newRunID()
	ctx = withRunID(ctx, runID)
	batch := schema.BatchResult{RunID: runID, Reference: p.cfg.ReferenceName, StartedAt: started}

	tasks, err := discoverTasks(p.cfg)
	if err != nil {
		return batch, err
	}
	ref, loaded, err := loadInputs(ctx, p.cfg, tasks)
	if err != nil {
		return batch, err
	}
	p.log.Info().
		Str("run_id", runID).
		Int("items", len(loaded)).
		Int("reference_rows", ref.seq.Len()).
		Msg("Starting alignment run")

	ctx = p.beginTracking(ctx, runID, started)

	var errs []error
	for _, task := range loaded {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := p.alignOne(ctx, ref, task)
		if err != nil {
			p.metrics.ObserveFailure()
			p.log.Error().Err(err).Str("kind", warp.KindName(err)).Str("file", task.DataFile).Msg("Alignment failed")
			errs = append(errs, err)
			continue
		}
		p.finishTask(ctx, result)
		batch.Items = append(batch.Items, result)
	}

	p.endTracking(ctx, len(batch.Items))
	batch.Duration = time.Since(started)

	if len(batch.Items) == 0 {
		return batch, errors.Join(errs...)
	}
	if len(errs) > 0 {
		p.log.Warn().Int("failed", len(errs)).Int("aligned", len(batch.Items)).Msg("Some items could not be aligned")
	}
	return batch, nil
}
