package algo

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

// ErrZeroVariance is returned when a constant series is standardized.
var ErrZeroVariance = errors.New("algo: series has zero variance")

// ZScore standardizes y to zero mean and unit population standard deviation.
func ZScore(y []float64) ([]float64, error) {
	if len(y) == 0 {
		return nil, ErrEmptySequence
	}

	mean, std := stat.PopMeanStdDev(y, nil)
	if std == 0 {
		return nil, ErrZeroVariance
	}

	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = (v - mean) / std
	}
	return out, nil
}
