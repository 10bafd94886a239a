package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/schema"
)

// WriteDistanceReport prints the full-sequence distance of one data file.
func WriteDistanceReport(report schema.DistanceReport, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, report)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"data_file", "reference", "distance"}, func(cw *csv.Writer) error {
				return cw.Write([]string{report.DataFile, report.Reference, fmtFloat(report.Distance)})
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Distance between %s and %s: %s\n",
				contract.BaseName(report.DataFile), report.Reference, fmtFloat(report.Distance))
			return err
		}, "Wrote distance")
	}
}
