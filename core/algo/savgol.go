package algo

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidFilter is returned for a window/polynomial combination the filter cannot apply.
var ErrInvalidFilter = errors.New("algo: invalid smoothing parameters")

// SavitzkyGolay smooths y with a least-squares polynomial fit over a sliding window.
// window must be a positive odd integer greater than polynomial, and y must hold
// more than window/2 samples. The ends are padded with an odd reflection of the
// signal about its first and last values so the output has the same length as y.
func SavitzkyGolay(y []float64, window, polynomial int) ([]float64, error) {
	if err := validateFilter(len(y), window, polynomial); err != nil {
		return nil, err
	}

	coeffs, err := savgolCoefficients(window, polynomial)
	if err != nil {
		return nil, err
	}

	half := window / 2
	padded := padReflect(y, half)

	out := make([]float64, len(y))
	for k := range out {
		var acc float64
		for i, c := range coeffs {
			acc += c * padded[k+i]
		}
		out[k] = acc
	}
	return out, nil
}

// validateFilter checks the window and polynomial against the signal length.
func validateFilter(n, window, polynomial int) error {
	switch {
	case window < 1 || window%2 != 1:
		return fmt.Errorf("%w: window size must be a positive odd number (received %d)", ErrInvalidFilter, window)
	case polynomial < 0:
		return fmt.Errorf("%w: polynomial order must be non-negative (received %d)", ErrInvalidFilter, polynomial)
	case window <= polynomial:
		return fmt.Errorf("%w: window size %d must be greater than polynomial order %d", ErrInvalidFilter, window, polynomial)
	case n <= window/2:
		return fmt.Errorf("%w: signal of length %d is too short for window size %d", ErrInvalidFilter, n, window)
	}
	return nil
}

// savgolCoefficients returns the zeroth-derivative row of the pseudo-inverse
// of the window's Vandermonde matrix.
func savgolCoefficients(window, polynomial int) ([]float64, error) {
	half := window / 2
	order := polynomial + 1

	vander := mat.NewDense(window, order, nil)
	for k := -half; k <= half; k++ {
		for p := range order {
			vander.Set(k+half, p, math.Pow(float64(k), float64(p)))
		}
	}

	ones := make([]float64, window)
	for i := range ones {
		ones[i] = 1
	}
	identity := mat.NewDiagDense(window, ones)

	var qr mat.QR
	qr.Factorize(vander)

	var pinv mat.Dense
	if err := qr.SolveTo(&pinv, false, identity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return mat.Row(nil, 0, &pinv), nil
}

// padReflect extends y by half samples on each side, reflected about the end values.
func padReflect(y []float64, half int) []float64 {
	n := len(y)
	first, last := y[0], y[n-1]

	padded := make([]float64, 0, n+2*half)
	for k := range half {
		padded = append(padded, first-math.Abs(y[half-k]-first))
	}
	padded = append(padded, y...)
	for k := range half {
		padded = append(padded, last+math.Abs(y[n-2-k]-last))
	}
	return padded
}
