package warp

import (
	"errors"

	"github.com/huangsam/sedwarp/core/algo"
)

// PreprocessOptions selects the transformations applied to one sequence.
type PreprocessOptions struct {
	Normalize  bool
	Smooth     bool
	WindowSize int
	Polynomial int
}

// Preprocess returns a new Sequence with the values z-score standardized and/or
// Savitzky-Golay smoothed. Normalization runs before smoothing. The input is not modified.
func Preprocess(seq Sequence, opts PreprocessOptions) (Sequence, error) {
	out := seq.Clone()

	if opts.Normalize {
		values, err := algo.ZScore(out.Values)
		switch {
		case errors.Is(err, algo.ErrZeroVariance):
			return Sequence{}, wrapError(ErrInputValidation, err, "cannot standardize a constant sequence")
		case err != nil:
			return Sequence{}, wrapError(ErrInputValidation, err, "cannot standardize sequence")
		}
		out.Values = values
	}

	if opts.Smooth {
		values, err := algo.SavitzkyGolay(out.Values, opts.WindowSize, opts.Polynomial)
		if err != nil {
			return Sequence{}, wrapError(ErrInvalidParameter, err, "smoothing with window %d and polynomial %d", opts.WindowSize, opts.Polynomial)
		}
		out.Values = values
	}

	return out, nil
}
