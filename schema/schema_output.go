package schema

import "math"

// EnrichedAlignmentResult adds presentation data to an AlignmentResult.
type EnrichedAlignmentResult struct {
	Rank  int      `json:"rank" yaml:"rank"`
	Label FitLabel `json:"label" yaml:"label"`
	AlignmentResult `yaml:",inline"`
}

// RMSPerStep returns the distance spread evenly over the steps of the path.
// It is zero for an empty path.
func RMSPerStep(distance float64, pathLength int) float64 {
	if pathLength <= 0 {
		return 0
	}
	return distance / math.Sqrt(float64(pathLength))
}

// GetFitLabel returns a qualitative label for the per-step error of a
// standardized alignment.
func GetFitLabel(rms float64) FitLabel {
	switch {
	case rms < 0.25:
		return StrongFit
	case rms < 0.5:
		return GoodFit
	case rms < 1.0:
		return FairFit
	default:
		return WeakFit
	}
}

// EnrichAlignments adds rank and label to a list of alignment results.
func EnrichAlignments(results []AlignmentResult) []EnrichedAlignmentResult {
	output := make([]EnrichedAlignmentResult, len(results))
	for i, r := range results {
		output[i] = EnrichedAlignmentResult{
			Rank:            i + 1,
			Label:           GetFitLabel(RMSPerStep(r.BestDistance, len(r.Path))),
			AlignmentResult: r,
		}
	}
	return output
}
