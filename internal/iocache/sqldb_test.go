package iocache

import (
	"testing"
	"time"

	"github.com/huangsam/sedwarp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateTableName tests identifier validation.
func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		expectErr bool
	}{
		{"simple", "sedwarp_results", false},
		{"leading underscore", "_results", false},
		{"with digits", "results2", false},
		{"empty", "", true},
		{"leading digit", "1results", true},
		{"hyphen", "sedwarp-results", true},
		{"injection", "results; DROP TABLE x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.table)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestQuoteTableName tests quoting per backend.
func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`runs`", quoteTableName("runs", schema.MySQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.SQLiteBackend))
}

// TestRebind tests placeholder rewriting.
func TestRebind(t *testing.T) {
	query := "SELECT a FROM t WHERE b = ? AND c = ?"
	assert.Equal(t, query, rebind(query, schema.SQLiteBackend))
	assert.Equal(t, query, rebind(query, schema.MySQLBackend))
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", rebind(query, schema.PostgreSQLBackend))
	assert.Equal(t, "SELECT 1", rebind("SELECT 1", schema.PostgreSQLBackend))
}

// TestDriverFor tests driver name lookup.
func TestDriverFor(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		expected string
	}{
		{schema.SQLiteBackend, "sqlite"},
		{schema.MySQLBackend, "mysql"},
		{schema.PostgreSQLBackend, "pgx"},
	}
	for _, tt := range tests {
		name, err := driverFor(tt.backend)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, name)
	}

	_, err := driverFor(schema.RedisBackend)
	assert.Error(t, err)
}

// TestFormatTime tests that SQLite receives text and others receive UTC times.
func TestFormatTime(t *testing.T) {
	ts := time.Date(2026, 5, 4, 3, 2, 1, 500, time.FixedZone("X", 3600))
	assert.Equal(t, "2026-05-04T02:02:01.0000005Z", formatTime(ts, schema.SQLiteBackend))
	assert.Equal(t, ts.UTC(), formatTime(ts, schema.PostgreSQLBackend))
}

// TestNullTimeScan tests scanning timestamps in every driver representation.
func TestNullTimeScan(t *testing.T) {
	want := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)

	tests := []struct {
		name  string
		src   any
		valid bool
	}{
		{"nil", nil, false},
		{"time", want, true},
		{"rfc3339 string", "2026-05-04T03:02:01Z", true},
		{"mysql bytes", []byte("2026-05-04 03:02:01.000000"), true},
		{"mysql seconds", "2026-05-04 03:02:01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nt nullTime
			require.NoError(t, nt.Scan(tt.src))
			assert.Equal(t, tt.valid, nt.Valid)
			if tt.valid {
				assert.True(t, want.Equal(nt.Time))
				require.NotNil(t, nt.Ptr())
			} else {
				assert.Nil(t, nt.Ptr())
			}
		})
	}

	var nt nullTime
	assert.Error(t, nt.Scan("yesterday"))
	assert.Error(t, nt.Scan(42))
}
