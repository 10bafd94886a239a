package schema

import "time"

// AnalysisRunRecord represents a row from the sedwarp_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID        int64
	RunUUID           string
	StartTime         time.Time
	EndTime           *time.Time
	RunDurationMs     *int32
	TotalItemsAligned *int32
	ConfigParams      *string
}

// AlignmentRecord represents a row from the sedwarp_alignments table.
type AlignmentRecord struct {
	AnalysisID     int64
	DataFile       string
	Core           string
	Variable       string
	Reference      string
	AnalysisTime   time.Time
	SimpleDistance float64
	BestDistance   float64
	TargetTime     float64
	TieCount       int32
	DataPoints     int32
	TargetPoints   int32
	PathLength     int32
	FitLabel       string
}

// CandidateDistanceRecord represents a row from the sedwarp_candidate_distances table.
type CandidateDistanceRecord struct {
	AnalysisID    int64
	DataFile      string
	CandidateTime float64
	Distance      float64
}
