// Package schema has models and constants for all parts of sedwarp.
package schema

import "time"

// DistanceEntry is one swept candidate time and the alignment distance at that cutoff.
type DistanceEntry struct {
	Time     float64 `json:"time" yaml:"time"`
	Distance float64 `json:"distance" yaml:"distance"`
}

// PathPair is one index correspondence between the data record and the truncated reference.
type PathPair struct {
	DataIndex   int `json:"data_index" yaml:"data_index"`
	TargetIndex int `json:"target_index" yaml:"target_index"`
}

// SeriesPoint is one projected row: a reference time and the data value assigned to it.
type SeriesPoint struct {
	Time  float64 `json:"time" yaml:"time"`
	Value float64 `json:"value" yaml:"value"`
}

// AlignmentResult holds everything computed for a single core/variable item.
type AlignmentResult struct {
	Core           string          `json:"core" yaml:"core"`
	Variable       string          `json:"variable" yaml:"variable"`
	DataFile       string          `json:"data_file" yaml:"data_file"`
	Reference      string          `json:"reference" yaml:"reference"`
	SimpleDistance float64         `json:"simple_distance" yaml:"simple_distance"`
	BestDistance   float64         `json:"best_distance" yaml:"best_distance"`
	BestTimes      []float64       `json:"best_times" yaml:"best_times"`
	TargetTime     float64         `json:"target_time" yaml:"target_time"`
	DataPoints     int             `json:"data_points" yaml:"data_points"`
	TargetPoints   int             `json:"target_points" yaml:"target_points"` // truncated reference length at TargetTime
	Candidates     []DistanceEntry `json:"candidates" yaml:"candidates"`       // ascending by time
	Path           []PathPair      `json:"path" yaml:"path"`
	Series         []SeriesPoint   `json:"series" yaml:"series"`
	ComputedAt     time.Time       `json:"computed_at" yaml:"computed_at"`
	Cached         bool            `json:"-" yaml:"-"`
}

// BatchResult is the outcome of one batch alignment run.
type BatchResult struct {
	RunID     string            `json:"run_id" yaml:"run_id"`
	Reference string            `json:"reference" yaml:"reference"`
	StartedAt time.Time         `json:"started_at" yaml:"started_at"`
	Duration  time.Duration     `json:"duration" yaml:"duration"`
	Items     []AlignmentResult `json:"items" yaml:"items"`
}

// DistanceReport is the outcome of a single full-sequence distance computation.
type DistanceReport struct {
	DataFile  string  `json:"data_file" yaml:"data_file"`
	Reference string  `json:"reference" yaml:"reference"`
	Distance  float64 `json:"distance" yaml:"distance"`
}
