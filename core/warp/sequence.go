// Package warp is the stratigraphic alignment search engine. It conditions a
// depth-indexed record and a time-indexed reference, sweeps reference cutoff
// times for the best DTW match, and projects the winning path onto time.
package warp

import (
	"math"
	"sort"
)

// Sequence is a pair of parallel arrays: a non-decreasing axis and its values.
type Sequence struct {
	Axis   []float64
	Values []float64
}

// NewSequence validates and copies axis and values into a Sequence.
func NewSequence(axis, values []float64) (Sequence, error) {
	if len(axis) != len(values) {
		return Sequence{}, newError(ErrInputValidation, "axis has %d rows but values has %d", len(axis), len(values))
	}
	if len(values) == 0 {
		return Sequence{}, newError(ErrInputValidation, "sequence is empty")
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Sequence{}, newError(ErrInputValidation, "value at row %d is missing or not finite", i)
		}
	}
	for i, x := range axis {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Sequence{}, newError(ErrInputValidation, "axis at row %d is missing or not finite", i)
		}
		if i > 0 && x < axis[i-1] {
			return Sequence{}, newError(ErrInputValidation, "axis decreases at row %d (%g after %g)", i, x, axis[i-1])
		}
	}

	return Sequence{
		Axis:   append([]float64(nil), axis...),
		Values: append([]float64(nil), values...),
	}, nil
}

// IndexSequence builds a Sequence whose axis is the row index of values.
func IndexSequence(values []float64) (Sequence, error) {
	axis := make([]float64, len(values))
	for i := range axis {
		axis[i] = float64(i)
	}
	return NewSequence(axis, values)
}

// Len returns the number of rows.
func (s Sequence) Len() int {
	return len(s.Values)
}

// Clone returns a deep copy of s.
func (s Sequence) Clone() Sequence {
	return Sequence{
		Axis:   append([]float64(nil), s.Axis...),
		Values: append([]float64(nil), s.Values...),
	}
}

// Truncate returns the leading rows of s whose axis value is <= cutoff.
// The result shares memory with s and must be treated as read-only.
func Truncate(s Sequence, cutoff float64) Sequence {
	n := sort.Search(len(s.Axis), func(i int) bool { return s.Axis[i] > cutoff })
	return Sequence{Axis: s.Axis[:n], Values: s.Values[:n]}
}
