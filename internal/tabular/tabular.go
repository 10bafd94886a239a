// Package tabular loads and writes the numeric tables sedwarp works with:
// comma-separated core records and whitespace-separated reference stacks.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrColumnNotFound is returned when a named column is absent from a header.
var ErrColumnNotFound = errors.New("column not found")

// Frame is a header plus column-major numeric data. Missing cells are NaN.
// A column holding text is kept as NaN and its parse error is returned only
// when that column is selected.
type Frame struct {
	Header []string
	Cols   [][]float64

	errs []error
}

// columnErr returns the parse error recorded for column i, if any.
func (f *Frame) columnErr(i int) error {
	if i < len(f.errs) {
		return f.errs[i]
	}
	return nil
}

// Numeric reports whether every cell of the named column parsed as a number.
func (f *Frame) Numeric(name string) bool {
	_, err := f.Index(name)
	return err == nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.Cols) == 0 {
		return 0
	}
	return len(f.Cols[0])
}

// Index returns the position of the named column, or the error met while
// parsing it.
func (f *Frame) Index(name string) (int, error) {
	for i, h := range f.Header {
		if h == name {
			if err := f.columnErr(i); err != nil {
				return -1, err
			}
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q (have %s)", ErrColumnNotFound, name, strings.Join(f.Header, ", "))
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]float64, error) {
	i, err := f.Index(name)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), f.Cols[i]...), nil
}

// Select returns a frame with only the named columns, in the order given.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := &Frame{Header: make([]string, 0, len(names)), Cols: make([][]float64, 0, len(names))}
	for _, name := range names {
		i, err := f.Index(name)
		if err != nil {
			return nil, err
		}
		out.Header = append(out.Header, name)
		out.Cols = append(out.Cols, append([]float64(nil), f.Cols[i]...))
	}
	return out, nil
}

// DropNaN returns a frame without the rows that have a missing cell in any column.
func (f *Frame) DropNaN() *Frame {
	out := &Frame{Header: append([]string(nil), f.Header...), Cols: make([][]float64, len(f.Cols))}
	for r := 0; r < f.Len(); r++ {
		if f.rowHasNaN(r) {
			continue
		}
		for c := range f.Cols {
			out.Cols[c] = append(out.Cols[c], f.Cols[c][r])
		}
	}
	for c := range out.Cols {
		if out.Cols[c] == nil {
			out.Cols[c] = []float64{}
		}
	}
	return out
}

func (f *Frame) rowHasNaN(r int) bool {
	for c := range f.Cols {
		if math.IsNaN(f.Cols[c][r]) {
			return true
		}
	}
	return false
}

// ReadFile reads a table from path.
func ReadFile(path string) (*Frame, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	frame, err := Read(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return frame, nil
}

// Read parses a table with a header row. The first non-blank line decides the
// layout: if it contains a comma the input is CSV, otherwise columns are split
// on runs of whitespace. Blank lines are skipped.
func Read(r io.Reader) (*Frame, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	first := firstLine(b)
	if first == "" {
		return nil, errors.New("empty table")
	}

	var records [][]string
	if strings.Contains(first, ",") {
		records, err = readCSV(bytes.NewReader(b))
	} else {
		records, err = readFields(bytes.NewReader(b))
	}
	if err != nil {
		return nil, err
	}
	return parseRecords(records)
}

func firstLine(b []byte) string {
	for line := range strings.SplitSeq(string(b), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return records, nil
}

func readFields(r io.Reader) ([][]string, error) {
	var records [][]string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		records = append(records, fields)
	}
	return records, sc.Err()
}

func parseRecords(records [][]string) (*Frame, error) {
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	frame := &Frame{Header: header, Cols: make([][]float64, len(header)), errs: make([]error, len(header))}
	for c := range frame.Cols {
		frame.Cols[c] = make([]float64, 0, len(records)-1)
	}

	for n, rec := range records[1:] {
		line := n + 2
		if len(rec) != len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, found %d", line, len(header), len(rec))
		}
		for c, cell := range rec {
			v, err := parseCell(cell)
			if err != nil {
				if frame.errs[c] == nil {
					frame.errs[c] = fmt.Errorf("line %d column %q: %w", line, header[c], err)
				}
				v = math.NaN()
			}
			frame.Cols[c] = append(frame.Cols[c], v)
		}
	}
	return frame, nil
}

// parseCell reads one numeric cell; empty and NA-style cells are NaN.
func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// FormatValue renders a number the way WriteCSV does.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes f with a header row. NaN cells are written empty.
func WriteCSV(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Header); err != nil {
		return err
	}
	row := make([]string, len(f.Cols))
	for r := 0; r < f.Len(); r++ {
		for c := range f.Cols {
			row[c] = FormatValue(f.Cols[c][r])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
