package warp

import (
	"sync"

	"github.com/huangsam/sedwarp/core/algo"
)

// Default preprocessing parameters.
const (
	DefaultWindowSize = 11
	DefaultPolynomial = 3
)

// Options controls how an Aligner conditions its two sequences at construction.
// Normalization applies to both sequences; smoothing is chosen per sequence.
type Options struct {
	Normalize    bool
	SmoothData   bool
	SmoothTarget bool
	WindowSize   int
	Polynomial   int
}

// DefaultOptions returns the options used by the batch pipeline unless overridden.
func DefaultOptions() Options {
	return Options{
		Normalize:    true,
		SmoothData:   true,
		SmoothTarget: false,
		WindowSize:   DefaultWindowSize,
		Polynomial:   DefaultPolynomial,
	}
}

// Aligner owns a conditioned reference (target) and record (data). Its sequences
// are fixed after New; searches only update the cached best alignment.
type Aligner struct {
	target Sequence
	data   Sequence
	opts   Options

	mu       sync.Mutex
	table    DistanceTable
	bestTime float64
	bestPath algo.Path
	hasPath  bool
}

// New copies target and data, applies the configured preprocessing once, and
// returns an Aligner over the results.
func New(target, data Sequence, opts Options) (*Aligner, error) {
	if target.Len() == 0 || data.Len() == 0 {
		return nil, newError(ErrInputValidation, "target and data must be non-empty")
	}

	t, err := Preprocess(target, PreprocessOptions{
		Normalize:  opts.Normalize,
		Smooth:     opts.SmoothTarget,
		WindowSize: opts.WindowSize,
		Polynomial: opts.Polynomial,
	})
	if err != nil {
		return nil, err
	}

	d, err := Preprocess(data, PreprocessOptions{
		Normalize:  opts.Normalize,
		Smooth:     opts.SmoothData,
		WindowSize: opts.WindowSize,
		Polynomial: opts.Polynomial,
	})
	if err != nil {
		return nil, err
	}

	return &Aligner{target: t, data: d, opts: opts}, nil
}

// Options returns the options the Aligner was built with.
func (a *Aligner) Options() Options {
	return a.opts
}

// Target returns a copy of the conditioned reference.
func (a *Aligner) Target() Sequence {
	return a.target.Clone()
}

// Data returns a copy of the conditioned record.
func (a *Aligner) Data() Sequence {
	return a.data.Clone()
}

// SimpleDistance returns the DTW distance between the full record and the full reference.
func (a *Aligner) SimpleDistance() (float64, error) {
	d, err := algo.Distance(a.data.Values, a.target.Values)
	if err != nil {
		return 0, wrapError(ErrInputValidation, err, "computing full-sequence distance")
	}
	return d, nil
}

// BestPath returns a copy of the path cached by the last successful extraction.
// The boolean is false if no extraction has happened yet.
func (a *Aligner) BestPath() (algo.Path, float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hasPath {
		return nil, 0, false
	}
	return append(algo.Path(nil), a.bestPath...), a.bestTime, true
}

// LastTable returns a copy of the distance table from the last search, or nil.
func (a *Aligner) LastTable() DistanceTable {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.table.Clone()
}
