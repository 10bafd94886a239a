package warp

import (
	"math"
	"testing"

	"github.com/huangsam/sedwarp/core/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawOptions disables all preprocessing.
var rawOptions = Options{}

// TestSimpleDistanceRegression tests the full-sequence distance on the pinned example pair.
func TestSimpleDistanceRegression(t *testing.T) {
	data := mustSequence(t, []float64{0, 0, 1, 2, 1, 0, 1, 0, 0})
	target := mustSequence(t, []float64{0, 1, 2, 0, 0, 0, 0, 0, 0})

	a, err := New(target, data, rawOptions)
	require.NoError(t, err)

	d, err := a.SimpleDistance()
	require.NoError(t, err)
	assert.Equal(t, math.Sqrt2, d)
}

// TestSimpleDistanceDeterministic tests repeated calls on identical aligners.
func TestSimpleDistanceDeterministic(t *testing.T) {
	data := mustSequence(t, []float64{0.4, 1.8, -0.3, 2.6, 1.1, 0.2, -1.5, 0.9, 1.3, 0.7, -0.2, 2.0})
	target := mustSequence(t, []float64{1.2, 0.1, 2.2, -0.7, 0.5, 1.9, 0.3, -1.1, 0.8, 1.6, 0.0, -0.4, 2.4})

	a1, err := New(target, data, DefaultOptions())
	require.NoError(t, err)
	a2, err := New(target, data, DefaultOptions())
	require.NoError(t, err)

	d1, err := a1.SimpleDistance()
	require.NoError(t, err)
	d1again, err := a1.SimpleDistance()
	require.NoError(t, err)
	d2, err := a2.SimpleDistance()
	require.NoError(t, err)

	assert.Equal(t, d1, d1again)
	assert.Equal(t, d1, d2)
}

// TestNewCopiesInputs tests that the Aligner is insulated from its caller.
func TestNewCopiesInputs(t *testing.T) {
	data := mustSequence(t, []float64{1, 2, 3})
	target := mustSequence(t, []float64{1, 2, 3, 4})

	a, err := New(target, data, rawOptions)
	require.NoError(t, err)

	data.Values[0] = 100
	target.Values[0] = 100
	assert.Equal(t, 1.0, a.Data().Values[0])
	assert.Equal(t, 1.0, a.Target().Values[0])

	exposed := a.Data()
	exposed.Values[1] = -5
	assert.Equal(t, 2.0, a.Data().Values[1])
}

// TestSmoothingAsymmetry tests that normalization applies to both sequences while
// smoothing follows the per-sequence flags.
func TestSmoothingAsymmetry(t *testing.T) {
	dataRaw := []float64{0.3, 4.1, -2.2, 7.7, 1.05, 3.3, -0.6, 2.2, 5.1, -1.4, 0.9, 3.8}
	targetRaw := []float64{1.2, 0.1, 2.2, -0.7, 0.5, 1.9, 0.3, -1.1, 0.8, 1.6, 0.0, -0.4}
	data := mustSequence(t, dataRaw)
	target := mustSequence(t, targetRaw)

	dataZ, err := algo.ZScore(dataRaw)
	require.NoError(t, err)
	targetZ, err := algo.ZScore(targetRaw)
	require.NoError(t, err)
	dataZS, err := algo.SavitzkyGolay(dataZ, 11, 3)
	require.NoError(t, err)
	targetZS, err := algo.SavitzkyGolay(targetZ, 11, 3)
	require.NoError(t, err)

	t.Run("default smooths data only", func(t *testing.T) {
		a, err := New(target, data, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, dataZS, a.Data().Values)
		assert.Equal(t, targetZ, a.Target().Values)
	})

	t.Run("smooth both", func(t *testing.T) {
		opts := DefaultOptions()
		opts.SmoothTarget = true
		a, err := New(target, data, opts)
		require.NoError(t, err)
		assert.Equal(t, dataZS, a.Data().Values)
		assert.Equal(t, targetZS, a.Target().Values)
	})

	t.Run("smooth target only", func(t *testing.T) {
		opts := DefaultOptions()
		opts.SmoothData = false
		opts.SmoothTarget = true
		a, err := New(target, data, opts)
		require.NoError(t, err)
		assert.Equal(t, dataZ, a.Data().Values)
		assert.Equal(t, targetZS, a.Target().Values)
	})
}

// TestNewInvalidSmoothing tests that filter errors are surfaced by the constructor.
func TestNewInvalidSmoothing(t *testing.T) {
	data := mustSequence(t, []float64{1, 5, 2, 8, 3, 9, 4, 7, 6, 0, 2, 3})
	target := mustSequence(t, []float64{1, 2, 3, 4})

	opts := DefaultOptions()
	opts.WindowSize = 3
	opts.Polynomial = 3
	_, err := New(target, data, opts)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.Equal(t, "invalid_parameter", KindName(err))
}
