package warp

import (
	"context"
	"math"
	"runtime"
	"slices"
	"sync"

	"github.com/huangsam/sedwarp/core/algo"
	"github.com/huangsam/sedwarp/schema"
)

// maxCandidates bounds the number of cutoff times a single search may generate.
const maxCandidates = 1_000_000

// SearchParams describes one sweep over reference cutoff times.
type SearchParams struct {
	Start   float64
	End     float64
	Step    float64
	Workers int
}

// DefaultWorkers returns the pool size used when none is configured:
// every available CPU except one, which is left for coordination.
func DefaultWorkers() int {
	return runtime.NumCPU() - 1
}

// DistanceTable maps each evaluated cutoff time to its distance.
type DistanceTable map[float64]float64

// Times returns the table's cutoff times in ascending order.
func (t DistanceTable) Times() []float64 {
	times := make([]float64, 0, len(t))
	for k := range t {
		times = append(times, k)
	}
	slices.Sort(times)
	return times
}

// Entries returns the table as a slice ordered by time.
func (t DistanceTable) Entries() []schema.DistanceEntry {
	entries := make([]schema.DistanceEntry, 0, len(t))
	for _, k := range t.Times() {
		entries = append(entries, schema.DistanceEntry{Time: k, Distance: t[k]})
	}
	return entries
}

// Min returns the smallest distance and every time that reaches it, ascending.
func (t DistanceTable) Min() (float64, []float64) {
	best := math.Inf(1)
	var times []float64
	for _, k := range t.Times() {
		switch d := t[k]; {
		case d < best:
			best = d
			times = []float64{k}
		case d == best:
			times = append(times, k)
		}
	}
	return best, times
}

// Clone returns a copy of the table.
func (t DistanceTable) Clone() DistanceTable {
	if t == nil {
		return nil
	}
	out := make(DistanceTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// SearchResult is the outcome of a sweep.
type SearchResult struct {
	BestDistance float64
	BestTimes    []float64 // every tying cutoff, ascending
	Table        DistanceTable
}

// TargetTime returns the canonical winning cutoff: the lowest tying time.
func (r SearchResult) TargetTime() float64 {
	return r.BestTimes[0]
}

// Candidates returns start, start+step, ... strictly below end.
func Candidates(start, end, step float64) ([]float64, error) {
	for _, v := range []float64{start, end, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, newError(ErrConfiguration, "time range and step must be finite")
		}
	}
	if start >= end {
		return nil, newError(ErrConfiguration, "start time %g must be less than end time %g", start, end)
	}
	if step <= 0 {
		return nil, newError(ErrConfiguration, "step must be greater than 0 (received %g)", step)
	}

	count := math.Ceil((end - start) / step)
	if count < 1 {
		return nil, newError(ErrConfiguration, "range [%g, %g) with step %g yields no candidates", start, end, step)
	}
	if count > maxCandidates {
		return nil, newError(ErrConfiguration, "range [%g, %g) with step %g yields more than %d candidates", start, end, step, maxCandidates)
	}

	times := make([]float64, int(count))
	for k := range times {
		times[k] = start + float64(k)*step
	}
	return times, nil
}

// candidateResult is what a worker reports for one cutoff time.
type candidateResult struct {
	time     float64
	distance float64
	skipped  bool
	err      error
}

// FindMinDistance sweeps the cutoff times described by p, computing the distance
// between the record and each truncated reference on a pool of p.Workers
// goroutines. Candidates whose truncated reference has fewer than two rows are
// skipped. The resulting table is cached on the Aligner.
func (a *Aligner) FindMinDistance(ctx context.Context, p SearchParams) (SearchResult, error) {
	if p.Workers <= 0 {
		return SearchResult{}, newError(ErrConfiguration, "workers must be greater than 0 (received %d)", p.Workers)
	}
	times, err := Candidates(p.Start, p.End, p.Step)
	if err != nil {
		return SearchResult{}, err
	}

	table, err := sweep(ctx, a.target, a.data, times, p.Workers)
	if err != nil {
		return SearchResult{}, err
	}
	if len(table) == 0 {
		return SearchResult{}, wrapError(ErrConfiguration, ErrDegenerateWindow,
			"all %d candidates in [%g, %g) truncate the reference to fewer than 2 rows", len(times), p.Start, p.End)
	}

	best, bestTimes := table.Min()

	a.mu.Lock()
	a.table = table
	a.mu.Unlock()

	return SearchResult{BestDistance: best, BestTimes: bestTimes, Table: table.Clone()}, nil
}

// sweep evaluates every candidate on a fixed worker pool. Workers only report
// results; the calling goroutine is the single writer of the table.
func sweep(ctx context.Context, target, data Sequence, times []float64, workers int) (DistanceTable, error) {
	timeCh := make(chan float64, len(times))
	resultCh := make(chan candidateResult, len(times))
	var wg sync.WaitGroup

	for range workers {
		wg.Go(func() {
			for t := range timeCh {
				if ctx.Err() != nil {
					continue
				}
				resultCh <- evaluateCandidate(target, data, t)
			}
		})
	}

	for _, t := range times {
		timeCh <- t
	}
	close(timeCh)

	wg.Wait()
	close(resultCh)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table := make(DistanceTable, len(times))
	for r := range resultCh {
		if r.err != nil {
			return nil, r.err
		}
		if r.skipped {
			continue
		}
		table[r.time] = r.distance
	}
	return table, nil
}

// evaluateCandidate computes the distance for one cutoff time.
func evaluateCandidate(target, data Sequence, t float64) candidateResult {
	truncated := Truncate(target, t)
	if truncated.Len() < 2 {
		return candidateResult{time: t, skipped: true}
	}
	d, err := algo.Distance(data.Values, truncated.Values)
	if err != nil {
		return candidateResult{time: t, err: wrapError(ErrInputValidation, err, "distance at cutoff %g", t)}
	}
	return candidateResult{time: t, distance: d}
}
