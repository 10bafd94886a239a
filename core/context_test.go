package core

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRunContext tests the run values carried on the context.
func TestRunContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, runIDFromContext(ctx))
	_, ok := getAnalysisID(ctx)
	assert.False(t, ok)

	id := newRunID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, newRunID())

	ctx = withRunID(ctx, id)
	ctx = withAnalysisID(ctx, 7)

	assert.Equal(t, id, runIDFromContext(ctx))
	analysisID, ok := getAnalysisID(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(7), analysisID)

	_, ok = getAnalysisID(withAnalysisID(ctx, 0))
	assert.False(t, ok)
}
