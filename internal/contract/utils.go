package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/sedwarp/internal/logger"
	"github.com/huangsam/sedwarp/schema"
	"github.com/rs/zerolog"
)

// Color variables for console output.
var (
	StrongColor = color.New(color.FgGreen, color.Bold)
	GoodColor   = color.New(color.FgCyan)
	FairColor   = color.New(color.FgYellow)
	WeakColor   = color.New(color.FgRed, color.Bold)
)

// GetColorLabel returns a colored fit label for console output (table).
func GetColorLabel(label schema.FitLabel) string {
	text := string(label)
	switch label {
	case schema.StrongFit:
		return StrongColor.Sprint(text)
	case schema.GoodFit:
		return GoodColor.Sprint(text)
	case schema.FairFit:
		return FairColor.Sprint(text)
	default:
		return WeakColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output.
// An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(filePath)
}

// exit is replaced in tests.
var exit = os.Exit

// LogFatal logs an error at fatal level and exits the program.
func LogFatal(msg string, err error) {
	logFatal(logger.Get(), msg, err)
}

func logFatal(log *logger.Logger, msg string, err error) {
	log.WithLevel(zerolog.FatalLevel).Err(err).Msg(msg)
	exit(1)
}

// LogWarn logs a warning through the root logger.
func LogWarn(msg string, err error) {
	logger.Get().Warn().Err(err).Msg(msg)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sedwarp_cache.db"
	}
	return filepath.Join(homeDir, ".sedwarp_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for run history.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sedwarp_analysis.db"
	}
	return filepath.Join(homeDir, ".sedwarp_analysis.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// SplitList splits a comma-separated flag value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FindDataFiles lists regular files in dir whose names contain both core and variable.
// Results are sorted by name.
func FindDataFiles(dir, core, variable string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading data dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.Contains(name, core) && strings.Contains(name, variable) {
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files, nil
}
