// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/sedwarp/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cached alignment results.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking alignment runs and their results.
type AnalysisStore interface {
	// BeginAnalysis creates a new run and returns its unique ID
	BeginAnalysis(runUUID string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, totalItems int) error

	// RecordAlignment stores the outcome of one core/variable alignment
	RecordAlignment(analysisID int64, record schema.AlignmentRecord) error

	// RecordCandidates stores the swept distance table for one data file
	RecordCandidates(analysisID int64, dataFile string, entries []schema.DistanceEntry) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)
	GetAllAlignments() ([]schema.AlignmentRecord, error)
	GetAllCandidateDistances() ([]schema.CandidateDistanceRecord, error)

	// Close closes the underlying connection
	Close() error
}

// Publisher sends one event per aligned item to a downstream consumer.
type Publisher interface {
	Publish(ctx context.Context, runID string, result schema.AlignmentResult) error
	Close() error
}
