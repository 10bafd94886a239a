// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteAlignments prints batch alignment results using the configured output format.
func (ow *OutWriter) WriteAlignments(results []schema.AlignmentResult, cfg *contract.Config, duration time.Duration) error {
	return WriteAlignmentResults(results, cfg, duration)
}

// WriteDistance prints a single distance report using the configured output format.
func (ow *OutWriter) WriteDistance(report schema.DistanceReport, cfg *contract.Config) error {
	return WriteDistanceReport(report, cfg)
}

// WriteProjection prints a projected series using the configured output format.
func (ow *OutWriter) WriteProjection(series []schema.SeriesPoint, cfg *contract.Config) error {
	return WriteProjection(series, cfg)
}

// WriteArtifacts writes the path dump, projected series and charts for one result.
func (ow *OutWriter) WriteArtifacts(result schema.AlignmentResult, cfg *contract.Config) (Artifacts, error) {
	return WriteResultArtifacts(result, cfg.OutDir, cfg.ReferenceName, cfg.Charts)
}

// terminalWidth returns the stdout width, or 80 when it cannot be detected.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// wideTableWidth is the terminal width from which the table includes the data file column.
const wideTableWidth = 140
