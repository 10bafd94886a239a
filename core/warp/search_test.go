package warp

import (
	"context"
	"math"
	"testing"

	"github.com/huangsam/sedwarp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCandidates tests candidate generation over a half-open range.
func TestCandidates(t *testing.T) {
	tests := []struct {
		name             string
		start, end, step float64
		expected         []float64
	}{
		{"integer steps", 0, 30, 10, []float64{0, 10, 20}},
		{"end not on grid", 0, 25, 10, []float64{0, 10, 20}},
		{"single", 5, 6, 10, []float64{5}},
		{"fractional", 0, 1, 0.3, []float64{0, 0.3, 0.6, 0.8999999999999999}},
		{"negative start", -10, 10, 5, []float64{-10, -5, 0, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Candidates(tt.start, tt.end, tt.step)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// TestCandidatesErrors tests the configuration boundaries.
func TestCandidatesErrors(t *testing.T) {
	tests := []struct {
		name             string
		start, end, step float64
	}{
		{"start equals end", 10, 10, 1},
		{"inverted", 20, 10, 1},
		{"zero step", 0, 10, 0},
		{"negative step", 0, 10, -1},
		{"nan step", 0, 10, math.NaN()},
		{"infinite end", 0, math.Inf(1), 1},
		{"too many", 0, 1e9, 1e-3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Candidates(tt.start, tt.end, tt.step)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

// rampAligner builds an aligner whose best cutoff is exactly 3 with distance 0.
func rampAligner(t *testing.T) *Aligner {
	t.Helper()
	data := mustSequence(t, []float64{0, 1, 2, 3})
	target := mustSequence(t, []float64{0, 1, 2, 3, 10, 10, 10, 10, 10, 10})
	a, err := New(target, data, rawOptions)
	require.NoError(t, err)
	return a
}

// TestFindMinDistance tests selection, table keys, and degenerate skipping.
func TestFindMinDistance(t *testing.T) {
	a := rampAligner(t)

	result, err := a.FindMinDistance(context.Background(), SearchParams{Start: 0, End: 10, Step: 1, Workers: 3})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.BestDistance)
	assert.Equal(t, []float64{3}, result.BestTimes)
	assert.Equal(t, 3.0, result.TargetTime())

	// cutoff 0 leaves a single reference row and is skipped
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, result.Table.Times())
	_, ok := result.Table[0]
	assert.False(t, ok)

	assert.Equal(t, 1.0, result.Table[2])
	for _, e := range result.Table.Entries() {
		assert.GreaterOrEqual(t, e.Distance, result.BestDistance)
	}
	assert.Equal(t, result.Table, a.LastTable())
}

// TestFindMinDistanceTies tests that all tying cutoffs are returned ascending and the lowest is canonical.
func TestFindMinDistanceTies(t *testing.T) {
	data := mustSequence(t, []float64{0, 1, 2, 0})
	target := mustSequence(t, []float64{0, 1, 2, 0, 0, 0, 0, 0})
	a, err := New(target, data, rawOptions)
	require.NoError(t, err)

	result, err := a.FindMinDistance(context.Background(), SearchParams{Start: 0, End: 8, Step: 1, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.BestDistance)
	assert.Equal(t, []float64{3, 4, 5, 6, 7}, result.BestTimes)
	assert.Equal(t, 3.0, result.TargetTime())

	alignment, err := a.FindBestAlignment(context.Background(), SearchParams{Start: 0, End: 8, Step: 1, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, alignment.TargetPoints)
}

// TestFindMinDistanceWorkerCounts tests that the pool size does not change the result.
func TestFindMinDistanceWorkerCounts(t *testing.T) {
	data := mustSequence(t, []float64{0.4, 1.8, -0.3, 2.6, 1.1, 0.2, -1.5, 0.9, 1.3, 0.7, -0.2, 2.0})
	values := make([]float64, 60)
	for i := range values {
		values[i] = math.Sin(float64(i)*0.31) + 0.05*float64(i%7)
	}
	target := mustSequence(t, values)

	a, err := New(target, data, DefaultOptions())
	require.NoError(t, err)

	var reference SearchResult
	for _, workers := range []int{1, 2, 5, 16} {
		result, err := a.FindMinDistance(context.Background(), SearchParams{Start: 0, End: 60, Step: 2, Workers: workers})
		require.NoError(t, err)
		if workers == 1 {
			reference = result
			continue
		}
		assert.Equal(t, reference, result, "workers=%d", workers)
	}
}

// TestFindMinDistanceErrors tests configuration failures.
func TestFindMinDistanceErrors(t *testing.T) {
	a := rampAligner(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		params SearchParams
	}{
		{"zero workers", SearchParams{Start: 0, End: 10, Step: 1, Workers: 0}},
		{"negative workers", SearchParams{Start: 0, End: 10, Step: 1, Workers: -1}},
		{"start equals end", SearchParams{Start: 5, End: 5, Step: 1, Workers: 1}},
		{"zero step", SearchParams{Start: 0, End: 10, Step: 0, Workers: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.FindMinDistance(ctx, tt.params)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Equal(t, "configuration", KindName(err))
		})
	}

	t.Run("all candidates degenerate", func(t *testing.T) {
		_, err := a.FindMinDistance(ctx, SearchParams{Start: -5, End: 1, Step: 1, Workers: 2})
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.ErrorIs(t, err, ErrDegenerateWindow)
	})
}

// TestFindMinDistanceCancelled tests that a cancelled context aborts the sweep.
func TestFindMinDistanceCancelled(t *testing.T) {
	a := rampAligner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.FindMinDistance(ctx, SearchParams{Start: 0, End: 10, Step: 1, Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

// TestDistanceTableHelpers tests ordering and minimum helpers.
func TestDistanceTableHelpers(t *testing.T) {
	table := DistanceTable{30: 2, 10: 1, 20: 1, 40: 5}

	assert.Equal(t, []float64{10, 20, 30, 40}, table.Times())
	assert.Equal(t, []schema.DistanceEntry{{Time: 10, Distance: 1}, {Time: 20, Distance: 1}, {Time: 30, Distance: 2}, {Time: 40, Distance: 5}}, table.Entries())

	best, times := table.Min()
	assert.Equal(t, 1.0, best)
	assert.Equal(t, []float64{10, 20}, times)

	clone := table.Clone()
	clone[10] = 100
	assert.Equal(t, 1.0, table[10])

	assert.Nil(t, DistanceTable(nil).Clone())
}
