package iocache

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/sedwarp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleAlignment(file string, at time.Time) schema.AlignmentRecord {
	return schema.AlignmentRecord{
		DataFile:       file,
		Core:           "1100",
		Variable:       "d18O",
		Reference:      "LR04stack",
		AnalysisTime:   at,
		SimpleDistance: 4.5,
		BestDistance:   1.25,
		TargetTime:     340,
		TieCount:       1,
		DataPoints:     58,
		TargetPoints:   86,
		PathLength:     97,
		FitLabel:       string(schema.StrongFit),
	}
}

// TestAnalysisStore_NoneBackend tests that the none backend records nothing.
func TestAnalysisStore_NoneBackend(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)

	id, err := store.BeginAnalysis("uuid", time.Now(), map[string]any{"step": 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), id)

	assert.NoError(t, store.RecordAlignment(1, sampleAlignment("a.csv", time.Now())))
	assert.NoError(t, store.RecordCandidates(1, "a.csv", []schema.DistanceEntry{{Time: 0, Distance: 1}}))
	assert.NoError(t, store.EndAnalysis(1, time.Now(), 1))

	runs, err := store.GetAllAnalysisRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

// TestAnalysisStore_SQLite tests a full run against an in-memory database.
func TestAnalysisStore_SQLite(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	id, err := store.BeginAnalysis("0d6c7f7e-8d6a-4c57-9a57-3a6d0c3d0b11", start, map[string]any{"step": 10.0, "cores": "1100"})
	require.NoError(t, err)
	assert.Positive(t, id)

	require.NoError(t, store.RecordAlignment(id, sampleAlignment("b.csv", start)))
	require.NoError(t, store.RecordAlignment(id, sampleAlignment("a.csv", start)))
	require.NoError(t, store.RecordCandidates(id, "a.csv", []schema.DistanceEntry{
		{Time: 10, Distance: 2.5},
		{Time: 0, Distance: 3.0},
	}))
	require.NoError(t, store.RecordCandidates(id, "a.csv", nil))
	require.NoError(t, store.EndAnalysis(id, start.Add(1500*time.Millisecond), 2))

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, id, run.AnalysisID)
	assert.Equal(t, "0d6c7f7e-8d6a-4c57-9a57-3a6d0c3d0b11", run.RunUUID)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	require.NotNil(t, run.TotalItemsAligned)
	assert.Equal(t, int32(2), *run.TotalItemsAligned)
	require.NotNil(t, run.ConfigParams)
	var params map[string]any
	require.NoError(t, json.Unmarshal([]byte(*run.ConfigParams), &params))
	assert.Equal(t, "1100", params["cores"])

	alignments, err := store.GetAllAlignments()
	require.NoError(t, err)
	require.Len(t, alignments, 2)
	assert.Equal(t, "a.csv", alignments[0].DataFile)
	assert.Equal(t, "b.csv", alignments[1].DataFile)
	assert.Equal(t, 340.0, alignments[0].TargetTime)
	assert.Equal(t, int32(97), alignments[0].PathLength)
	assert.True(t, start.Equal(alignments[0].AnalysisTime))

	candidates, err := store.GetAllCandidateDistances()
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, 0.0, candidates[0].CandidateTime)
	assert.Equal(t, 10.0, candidates[1].CandidateTime)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, id, status.LastRunID)
	assert.Equal(t, 2, status.TotalItemsAligned)
	assert.Equal(t, int64(2), status.TableSizes[alignmentsTable])
	assert.Equal(t, int64(2), status.TableSizes[candidateDistancesTable])
}

// TestAnalysisStore_DuplicateAlignment tests the primary key on run and file.
func TestAnalysisStore_DuplicateAlignment(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	id, err := store.BeginAnalysis("u", time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordAlignment(id, sampleAlignment("a.csv", time.Now())))
	assert.Error(t, store.RecordAlignment(id, sampleAlignment("a.csv", time.Now())))
}

// TestAnalysisStore_EndUnknownRun tests ending a run that was never started.
func TestAnalysisStore_EndUnknownRun(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Error(t, store.EndAnalysis(999, time.Now(), 0))
}

// TestMigrateAnalysis_SQLite tests moving between schema versions.
func TestMigrateAnalysis_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "analysis.db")

	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, -1))
	version, dirty, err := AnalysisVersion(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(3), version)

	// Already current
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, -1))

	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, 1))
	version, _, err = AnalysisVersion(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, 0))
	version, _, err = AnalysisVersion(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	// A store opened afterwards brings the schema back up
	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	version, _, err = AnalysisVersion(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)
}

// TestMigrateAnalysis_Unsupported tests backends without migrations.
func TestMigrateAnalysis_Unsupported(t *testing.T) {
	err := MigrateAnalysis(schema.NoneBackend, "", -1)
	assert.ErrorContains(t, err, "not supported")

	err = MigrateAnalysis(schema.RedisBackend, "redis://localhost:6379", -1)
	assert.Error(t, err)
}

// TestClearAnalysis tests removing a SQLite run history file.
func TestClearAnalysis(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "analysis.db")
	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.NoError(t, ClearAnalysis(schema.SQLiteBackend, dbPath, ""))
	assert.NoError(t, ClearAnalysis(schema.NoneBackend, "", ""))
	assert.Error(t, ClearAnalysis(schema.RedisBackend, "", ""))
}

// TestExecuteAnalysisExport tests exporting a recorded run.
func TestExecuteAnalysisExport(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	now := time.Now()
	id, err := store.BeginAnalysis("u", now, nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordAlignment(id, sampleAlignment("a.csv", now)))
	require.NoError(t, store.RecordCandidates(id, "a.csv", []schema.DistanceEntry{{Time: 0, Distance: 1}}))
	require.NoError(t, store.EndAnalysis(id, now, 1))

	out := filepath.Join(t.TempDir(), "history")
	var buf bytes.Buffer
	require.NoError(t, ExecuteAnalysisExport(&buf, store, out))

	for _, suffix := range []string{".analysis_runs.parquet", ".alignments.parquet", ".candidate_distances.parquet"} {
		assert.FileExists(t, out+suffix)
	}
	assert.Contains(t, buf.String(), "Exported 1 alignment records")
}

// TestExecuteAnalysisExportErrors tests the export guard clauses.
func TestExecuteAnalysisExportErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, ExecuteAnalysisExport(&buf, &MockAnalysisStore{}, ""))
	assert.Error(t, ExecuteAnalysisExport(&buf, nil, "out"))

	empty := &MockAnalysisStore{}
	empty.On("GetStatus").Return(schema.AnalysisStatus{Backend: "sqlite", Connected: true}, nil)
	err := ExecuteAnalysisExport(&buf, empty, "out")
	assert.ErrorContains(t, err, "no analysis data")
	empty.AssertExpectations(t)
	empty.AssertNotCalled(t, "GetAllAnalysisRuns", mock.Anything)
}

// TestPrintStatus tests the status report text.
func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "redis", Connected: true, TotalEntries: 3, TableSizeBytes: 512})
	assert.Contains(t, buf.String(), "Cache Backend: redis")
	assert.Contains(t, buf.String(), "Total Entries: 3")
	assert.Contains(t, buf.String(), "Table Size: 512 bytes")

	buf.Reset()
	PrintAnalysisStatus(&buf, schema.AnalysisStatus{
		Backend:    "sqlite",
		Connected:  true,
		TotalRuns:  2,
		TableSizes: map[string]int64{alignmentsTable: 5, analysisRunsTable: 2},
	})
	text := buf.String()
	assert.Contains(t, text, "Total Runs: 2")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(alignmentsTable)), bytes.Index(buf.Bytes(), []byte(analysisRunsTable)))

	buf.Reset()
	PrintAnalysisStatus(&buf, schema.AnalysisStatus{Backend: "none"})
	assert.NotContains(t, buf.String(), "Total Runs")
}
