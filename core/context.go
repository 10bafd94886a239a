package core

import (
	"context"

	"github.com/google/uuid"
)

// Context keys for run state
type contextKey string

const (
	runIDKey      contextKey = "runID"
	analysisIDKey contextKey = "analysisID"
)

// newRunID returns a fresh identifier for one batch run.
func newRunID() string {
	return uuid.NewString()
}

// withRunID stores the run identifier in the context
func withRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// runIDFromContext returns the run identifier, or "" if none was set
func runIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// withAnalysisID stores the analysis store row id in the context
func withAnalysisID(ctx context.Context, analysisID int64) context.Context {
	return context.WithValue(ctx, analysisIDKey, analysisID)
}

// getAnalysisID returns the analysis row id and whether tracking is active
func getAnalysisID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(analysisIDKey).(int64)
	return id, ok && id > 0
}
