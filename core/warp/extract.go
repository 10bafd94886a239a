package warp

import (
	"context"

	"github.com/huangsam/sedwarp/core/algo"
)

// Alignment is a completed search together with the path at the winning cutoff.
type Alignment struct {
	SearchResult
	Path         algo.Path
	TargetPoints int // rows of the reference at or below the winning cutoff
}

// ExtractBestPath truncates the reference at targetTime, recomputes the full
// alignment, and caches its path. The recomputed distance must equal expected
// exactly; any difference is reported as ErrConsistency.
func (a *Aligner) ExtractBestPath(targetTime, expected float64) (algo.Path, int, error) {
	truncated := Truncate(a.target, targetTime)
	if truncated.Len() < 2 {
		return nil, 0, newError(ErrDegenerateWindow, "cutoff %g leaves %d reference rows", targetTime, truncated.Len())
	}

	d, path, err := algo.FullAlignment(a.data.Values, truncated.Values)
	if err != nil {
		return nil, 0, wrapError(ErrInputValidation, err, "full alignment at cutoff %g", targetTime)
	}
	if d != expected {
		return nil, 0, newError(ErrConsistency,
			"distance from full alignment %v differs from swept minimum %v at cutoff %g", d, expected, targetTime)
	}
	if err := ValidatePath(path, a.data.Len(), truncated.Len()); err != nil {
		return nil, 0, wrapError(ErrConsistency, err, "path at cutoff %g", targetTime)
	}

	a.mu.Lock()
	a.bestPath = path
	a.bestTime = targetTime
	a.hasPath = true
	a.mu.Unlock()

	return append(algo.Path(nil), path...), truncated.Len(), nil
}

// FindBestAlignment runs FindMinDistance and then ExtractBestPath at the
// lowest tying cutoff time.
func (a *Aligner) FindBestAlignment(ctx context.Context, p SearchParams) (Alignment, error) {
	result, err := a.FindMinDistance(ctx, p)
	if err != nil {
		return Alignment{}, err
	}

	path, targetPoints, err := a.ExtractBestPath(result.TargetTime(), result.BestDistance)
	if err != nil {
		return Alignment{}, err
	}

	return Alignment{SearchResult: result, Path: path, TargetPoints: targetPoints}, nil
}

// ValidatePath checks the boundary and step conditions of a warping path over
// sequences of length n and m: it starts at (0,0), ends at (n-1,m-1), and every
// step advances each index by 0 or 1 and at least one of them by 1.
func ValidatePath(path algo.Path, n, m int) error {
	if len(path) == 0 {
		return newError(ErrInvalidPath, "path is empty")
	}
	if first := path[0]; first.I != 0 || first.J != 0 {
		return newError(ErrInvalidPath, "path starts at (%d, %d)", first.I, first.J)
	}
	if last := path[len(path)-1]; last.I != n-1 || last.J != m-1 {
		return newError(ErrInvalidPath, "path ends at (%d, %d), expected (%d, %d)", last.I, last.J, n-1, m-1)
	}
	for k := 1; k < len(path); k++ {
		di, dj := path[k].I-path[k-1].I, path[k].J-path[k-1].J
		if di < 0 || di > 1 || dj < 0 || dj > 1 || di+dj == 0 {
			return newError(ErrInvalidPath, "invalid step %d from (%d, %d) to (%d, %d)",
				k, path[k-1].I, path[k-1].J, path[k].I, path[k].J)
		}
	}
	return nil
}
