package warp

import (
	"errors"
	"testing"

	"github.com/huangsam/sedwarp/core/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSequence(t *testing.T, values []float64) Sequence {
	t.Helper()
	seq, err := IndexSequence(values)
	require.NoError(t, err)
	return seq
}

// TestPreprocess tests each transformation in isolation and combined.
func TestPreprocess(t *testing.T) {
	raw := []float64{0.3, 4.1, -2.2, 7.7, 1.05, 3.3, -0.6, 2.2, 5.1, -1.4, 0.9, 3.8}
	seq := mustSequence(t, raw)

	zs, err := algo.ZScore(raw)
	require.NoError(t, err)
	smoothed, err := algo.SavitzkyGolay(raw, 5, 2)
	require.NoError(t, err)
	both, err := algo.SavitzkyGolay(zs, 5, 2)
	require.NoError(t, err)

	tests := []struct {
		name     string
		opts     PreprocessOptions
		expected []float64
	}{
		{"none", PreprocessOptions{}, raw},
		{"normalize", PreprocessOptions{Normalize: true}, zs},
		{"smooth", PreprocessOptions{Smooth: true, WindowSize: 5, Polynomial: 2}, smoothed},
		{"normalize then smooth", PreprocessOptions{Normalize: true, Smooth: true, WindowSize: 5, Polynomial: 2}, both},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Preprocess(seq, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.Values)
			assert.Equal(t, seq.Axis, out.Axis)
		})
	}

	assert.Equal(t, raw, seq.Values, "input must not be modified")
}

// TestPreprocessErrors tests that filter and normalization failures surface with their kind.
func TestPreprocessErrors(t *testing.T) {
	seq := mustSequence(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})

	_, err := Preprocess(seq, PreprocessOptions{Smooth: true, WindowSize: 4, Polynomial: 2})
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.ErrorIs(t, err, algo.ErrInvalidFilter)

	_, err = Preprocess(seq, PreprocessOptions{Smooth: true, WindowSize: 3, Polynomial: 3})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	constant := mustSequence(t, []float64{2, 2, 2, 2})
	_, err = Preprocess(constant, PreprocessOptions{Normalize: true})
	assert.ErrorIs(t, err, ErrInputValidation)
	assert.ErrorIs(t, err, algo.ErrZeroVariance)

	var werr *Error
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, ErrInputValidation, werr.Kind)
}

// TestNormalizationIdempotent tests that standardizing a standardized sequence is a no-op.
func TestNormalizationIdempotent(t *testing.T) {
	seq := mustSequence(t, []float64{3, 9, 1, 4, 4, 7, 2, 8})
	once, err := Preprocess(seq, PreprocessOptions{Normalize: true})
	require.NoError(t, err)
	twice, err := Preprocess(once, PreprocessOptions{Normalize: true})
	require.NoError(t, err)
	assert.InDeltaSlice(t, once.Values, twice.Values, 1e-12)
}
