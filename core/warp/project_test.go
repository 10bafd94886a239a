package warp

import (
	"testing"

	"github.com/huangsam/sedwarp/core/algo"
	"github.com/huangsam/sedwarp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProject tests the projection shape and many-to-many correspondence.
func TestProject(t *testing.T) {
	axisTarget := []float64{0, 5, 10, 15}
	valuesData := []float64{1.5, 2.5, 3.5}
	path := algo.Path{{I: 0, J: 0}, {I: 0, J: 1}, {I: 1, J: 2}, {I: 2, J: 2}, {I: 2, J: 3}}

	series, err := Project(axisTarget, valuesData, path)
	require.NoError(t, err)

	expected := []schema.SeriesPoint{
		{Time: 0, Value: 1.5},
		{Time: 5, Value: 1.5},
		{Time: 10, Value: 2.5},
		{Time: 10, Value: 3.5},
		{Time: 15, Value: 3.5},
	}
	assert.Equal(t, expected, series)
	assert.Len(t, series, len(path))
	for k := 1; k < len(series); k++ {
		assert.LessOrEqual(t, series[k-1].Time, series[k].Time)
	}
}

// TestProjectEmptyPath tests that an empty path projects to an empty series.
func TestProjectEmptyPath(t *testing.T) {
	series, err := Project([]float64{1}, []float64{2}, algo.Path{})
	require.NoError(t, err)
	assert.Empty(t, series)
}

// TestProjectOutOfRange tests index bounds checking.
func TestProjectOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		path algo.Path
	}{
		{"data index too large", algo.Path{{I: 0, J: 0}, {I: 3, J: 1}}},
		{"target index too large", algo.Path{{I: 0, J: 0}, {I: 1, J: 4}}},
		{"negative data index", algo.Path{{I: -1, J: 0}}},
		{"negative target index", algo.Path{{I: 0, J: -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Project([]float64{0, 1, 2, 3}, []float64{7, 8, 9}, tt.path)
			assert.ErrorIs(t, err, ErrInvalidPath)
		})
	}
}

// TestPathPairs tests conversion to and from the serializable form.
func TestPathPairs(t *testing.T) {
	path := algo.Path{{I: 0, J: 0}, {I: 1, J: 0}, {I: 1, J: 1}}
	pairs := PathPairs(path)
	assert.Equal(t, []schema.PathPair{{DataIndex: 0, TargetIndex: 0}, {DataIndex: 1, TargetIndex: 0}, {DataIndex: 1, TargetIndex: 1}}, pairs)
	assert.Equal(t, path, PathFromPairs(pairs))
}
