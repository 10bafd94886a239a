// Package algo holds the numeric primitives used by the alignment engine.
package algo

import (
	"errors"
	"math"
)

// ErrEmptySequence is returned when either input to the alignment primitive is empty.
var ErrEmptySequence = errors.New("algo: sequences must be non-empty")

// Pair is one index correspondence of an alignment path.
// I indexes the first sequence and J the second.
type Pair struct {
	I int
	J int
}

// Path is an ordered warping path from (0,0) to (n-1,m-1).
type Path []Pair

// Distance returns the Euclidean DTW distance between a and b.
// Only two rows of the cumulative cost matrix are kept in memory.
func Distance(a, b []float64) (float64, error) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return 0, ErrEmptySequence
	}

	inf := math.Inf(1)
	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	for j := range prev {
		prev[j] = inf
	}
	prev[0] = 0

	for i := 1; i <= n; i++ {
		curr[0] = inf
		for j := 1; j <= m; j++ {
			curr[j] = accumulate(a[i-1], b[j-1], prev[j-1], prev[j], curr[j-1])
		}
		prev, curr = curr, prev
	}

	return math.Sqrt(prev[m]), nil
}

// FullAlignment returns the Euclidean DTW distance between a and b along with
// the optimal warping path. The distance is bit-identical to Distance(a, b).
func FullAlignment(a, b []float64) (float64, Path, error) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return 0, nil, ErrEmptySequence
	}

	cost := costMatrix(a, b)
	return math.Sqrt(cost[n][m]), backtrack(cost, n, m), nil
}

// costMatrix fills the (n+1)x(m+1) cumulative cost matrix with an infinite border.
func costMatrix(a, b []float64) [][]float64 {
	n, m := len(a), len(b)
	inf := math.Inf(1)

	cost := make([][]float64, n+1)
	for i := range cost {
		cost[i] = make([]float64, m+1)
		for j := range cost[i] {
			cost[i][j] = inf
		}
	}
	cost[0][0] = 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost[i][j] = accumulate(a[i-1], b[j-1], cost[i-1][j-1], cost[i-1][j], cost[i][j-1])
		}
	}
	return cost
}

// accumulate is the shared recurrence of both modes.
func accumulate(x, y, diag, up, left float64) float64 {
	d := x - y
	best := diag
	if up < best {
		best = up
	}
	if left < best {
		best = left
	}
	return d*d + best
}

// backtrack walks from (n, m) to (1, 1) preferring diagonal, then up, then left on ties.
func backtrack(cost [][]float64, n, m int) Path {
	path := make(Path, 0, n+m)
	i, j := n, m
	path = append(path, Pair{I: i - 1, J: j - 1})
	for i > 1 || j > 1 {
		switch {
		case i == 1:
			j--
		case j == 1:
			i--
		default:
			diag, up, left := cost[i-1][j-1], cost[i-1][j], cost[i][j-1]
			switch {
			case diag <= up && diag <= left:
				i, j = i-1, j-1
			case up <= left:
				i--
			default:
				j--
			}
		}
		path = append(path, Pair{I: i - 1, J: j - 1})
	}

	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}
