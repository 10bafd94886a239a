package warp

import (
	"github.com/huangsam/sedwarp/core/algo"
	"github.com/huangsam/sedwarp/schema"
)

// Project maps each (i, j) of path to (axisTarget[j], valuesData[i]), in path order.
// Repeated times or values are kept: the correspondence is many-to-many.
func Project(axisTarget, valuesData []float64, path algo.Path) ([]schema.SeriesPoint, error) {
	out := make([]schema.SeriesPoint, len(path))
	for k, p := range path {
		if p.I < 0 || p.I >= len(valuesData) {
			return nil, newError(ErrInvalidPath, "step %d: data index %d out of range [0, %d)", k, p.I, len(valuesData))
		}
		if p.J < 0 || p.J >= len(axisTarget) {
			return nil, newError(ErrInvalidPath, "step %d: target index %d out of range [0, %d)", k, p.J, len(axisTarget))
		}
		out[k] = schema.SeriesPoint{Time: axisTarget[p.J], Value: valuesData[p.I]}
	}
	return out, nil
}

// PathPairs converts a path into its serializable form.
func PathPairs(path algo.Path) []schema.PathPair {
	out := make([]schema.PathPair, len(path))
	for k, p := range path {
		out[k] = schema.PathPair{DataIndex: p.I, TargetIndex: p.J}
	}
	return out
}

// PathFromPairs converts serialized pairs back into a path.
func PathFromPairs(pairs []schema.PathPair) algo.Path {
	out := make(algo.Path, len(pairs))
	for k, p := range pairs {
		out[k] = algo.Pair{I: p.DataIndex, J: p.TargetIndex}
	}
	return out
}
