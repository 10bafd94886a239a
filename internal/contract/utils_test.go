package contract

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/sedwarp/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input       string
		expected    bool
		expectError bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{" False ", false, false},
		{"0", false, false},
		{"maybe", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"1100", "1150"}, SplitList(" 1100, ,1150 ,"))
	assert.Nil(t, SplitList(""))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "LR04stack", BaseName("data/LR04stack.txt"))
	assert.Equal(t, "core_1100_d18O", BaseName("/tmp/core_1100_d18O.csv"))
	assert.Equal(t, "plain", BaseName("plain"))
}

func TestFindDataFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"core_1100_d18O.csv", "core_1100_aragonite.csv", "core_1150_d18O.csv", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "core_1100_d18O_dir"), 0o755))

	files, err := FindDataFiles(dir, "1100", "d18O")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "core_1100_d18O.csv")}, files)

	files, err = FindDataFiles(dir, "1200", "d18O")
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = FindDataFiles(filepath.Join(dir, "missing"), "1100", "d18O")
	assert.Error(t, err)
}

func TestGetColorLabel(t *testing.T) {
	for _, label := range []schema.FitLabel{schema.StrongFit, schema.GoodFit, schema.FairFit, schema.WeakFit} {
		assert.Contains(t, GetColorLabel(label), string(label))
	}
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "nested", "summary.csv")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.FileExists(t, path)
}

func TestDBFilePathsDiffer(t *testing.T) {
	assert.NotEqual(t, GetCacheDBFilePath(), GetAnalysisDBFilePath())
}

// TestLogFatal tests that a fatal error is reported once and exits with 1.
func TestLogFatal(t *testing.T) {
	code := -1
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = os.Exit })

	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.WarnLevel)
	logFatal(&log, "Command failed", errors.New("boom"))

	assert.Equal(t, 1, code)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"level":"fatal"`)
	assert.Contains(t, lines[0], `"error":"boom"`)
	assert.Contains(t, lines[0], `"message":"Command failed"`)
}
