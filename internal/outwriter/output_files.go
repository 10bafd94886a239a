package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/huangsam/sedwarp/core/algo"
	"github.com/huangsam/sedwarp/core/warp"
	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/internal/tabular"
	"github.com/huangsam/sedwarp/schema"
)

// Output subdirectories below the configured out dir.
const (
	pathsDir   = "warping-paths"
	seriesDir  = "series"
	figuresDir = "figures"
)

// Artifacts lists the files written for one alignment result.
type Artifacts struct {
	PathFile   string
	SeriesFile string
	Charts     []string
}

// ArtifactPaths returns the path dump file, the series file and the chart
// path without extension for a data file aligned against refName.
func ArtifactPaths(outDir, dataFile, refName string) (pathFile, seriesFile, chartBase string) {
	stem := contract.BaseName(dataFile) + "_" + refName
	pathFile = filepath.Join(outDir, pathsDir, "dist-vs-time_"+stem+".txt")
	seriesFile = filepath.Join(outDir, seriesDir, "series_"+stem+".csv")
	chartBase = filepath.Join(outDir, figuresDir, "dist-vs-time_"+stem)
	return pathFile, seriesFile, chartBase
}

// WriteResultArtifacts writes the path dump, the projected series and one
// chart per requested format.
func WriteResultArtifacts(result schema.AlignmentResult, outDir, refName string, charts []schema.ChartFormat) (Artifacts, error) {
	pathFile, seriesFile, chartBase := ArtifactPaths(outDir, result.DataFile, refName)
	out := Artifacts{PathFile: pathFile, SeriesFile: seriesFile}

	if err := WritePathFile(pathFile, warp.PathFromPairs(result.Path)); err != nil {
		return out, err
	}
	if err := WriteSeriesFile(seriesFile, result.Series); err != nil {
		return out, err
	}

	title := fmt.Sprintf("%s vs %s", contract.BaseName(result.DataFile), refName)
	for _, format := range charts {
		chartFile := chartBase + "." + string(format)
		var err error
		if format == schema.HTMLChart {
			err = WriteDistanceHTML(chartFile, title, result.Candidates, result.BestTimes)
		} else {
			err = WriteDistanceChart(chartFile, title, result.Candidates, result.BestTimes)
		}
		if err != nil {
			return out, fmt.Errorf("writing %s chart: %w", format, err)
		}
		out.Charts = append(out.Charts, chartFile)
	}
	return out, nil
}

// createFile creates path and any missing parent directories.
func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

// writeFile creates path and runs fn on it, reporting close errors.
func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(f)
}

// WritePathFile writes the single-line path dump.
func WritePathFile(path string, p algo.Path) error {
	return writeFile(path, func(w io.Writer) error {
		return warp.WritePath(w, p)
	})
}

// WriteSeriesFile writes the projected series as a time,value CSV, one row per path entry.
func WriteSeriesFile(path string, series []schema.SeriesPoint) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteSeries(w, series)
	})
}

// WriteSeries writes series as a time,value CSV.
func WriteSeries(w io.Writer, series []schema.SeriesPoint) error {
	return writeCSVWithHeader(w, []string{"time", "value"}, func(cw *csv.Writer) error {
		for _, p := range series {
			if err := cw.Write([]string{tabular.FormatValue(p.Time), tabular.FormatValue(p.Value)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteProjection prints a projected series in the configured format.
// Text and CSV both produce the time,value table.
func WriteProjection(series []schema.SeriesPoint, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, series)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, series)
		}, "Wrote YAML")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for projected series")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteSeries(w, series)
		}, "Wrote series")
	}
}

// WriteSplitSummary lists the per-variable files written by a split, sorted by variable.
func WriteSplitSummary(w io.Writer, written map[string]string) error {
	variables := make([]string, 0, len(written))
	for v := range written {
		variables = append(variables, v)
	}
	slices.Sort(variables)
	for _, v := range variables {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", v, written[v]); err != nil {
			return err
		}
	}
	return nil
}
