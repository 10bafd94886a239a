package warp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewSequence tests construction-time validation.
func TestNewSequence(t *testing.T) {
	tests := []struct {
		name    string
		axis    []float64
		values  []float64
		wantErr bool
	}{
		{name: "valid", axis: []float64{0, 1, 2}, values: []float64{3, 4, 5}},
		{name: "repeated axis", axis: []float64{0, 1, 1, 2}, values: []float64{3, 4, 5, 6}},
		{name: "length mismatch", axis: []float64{0, 1}, values: []float64{3, 4, 5}, wantErr: true},
		{name: "empty", axis: []float64{}, values: []float64{}, wantErr: true},
		{name: "missing value", axis: []float64{0, 1, 2}, values: []float64{3, math.NaN(), 5}, wantErr: true},
		{name: "infinite value", axis: []float64{0, 1}, values: []float64{math.Inf(1), 1}, wantErr: true},
		{name: "decreasing axis", axis: []float64{0, 2, 1}, values: []float64{3, 4, 5}, wantErr: true},
		{name: "missing axis", axis: []float64{0, math.NaN()}, values: []float64{3, 4}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := NewSequence(tt.axis, tt.values)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.values), seq.Len())
		})
	}
}

// TestNewSequenceCopies tests that the caller's slices are never shared.
func TestNewSequenceCopies(t *testing.T) {
	axis := []float64{0, 1, 2}
	values := []float64{5, 6, 7}
	seq, err := NewSequence(axis, values)
	require.NoError(t, err)

	axis[0] = 99
	values[0] = 99
	assert.Equal(t, 0.0, seq.Axis[0])
	assert.Equal(t, 5.0, seq.Values[0])

	clone := seq.Clone()
	clone.Values[1] = -1
	assert.Equal(t, 6.0, seq.Values[1])
}

// TestTruncate tests the inclusive cutoff on the axis.
func TestTruncate(t *testing.T) {
	seq, err := NewSequence([]float64{0, 10, 20, 20, 30}, []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	tests := []struct {
		cutoff   float64
		expected int
	}{
		{-1, 0},
		{0, 1},
		{5, 1},
		{10, 2},
		{20, 4},
		{29.9, 4},
		{30, 5},
		{1000, 5},
	}
	for _, tt := range tests {
		got := Truncate(seq, tt.cutoff)
		assert.Equal(t, tt.expected, got.Len(), "cutoff %g", tt.cutoff)
		assert.Equal(t, seq.Values[:tt.expected], got.Values)
	}
}

// TestIndexSequence tests the row-index axis helper.
func TestIndexSequence(t *testing.T) {
	seq, err := IndexSequence([]float64{7, 8, 9})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, seq.Axis)
	assert.Equal(t, []float64{7, 8, 9}, seq.Values)
}
