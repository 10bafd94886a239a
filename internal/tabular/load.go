package tabular

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/sedwarp/core/warp"
)

// LoadSequence reads path and builds a sequence from the axis and value columns.
// An empty column name selects the first (axis) or second (value) column.
func LoadSequence(path, axisCol, valueCol string) (warp.Sequence, error) {
	frame, err := ReadFile(path)
	if err != nil {
		return warp.Sequence{}, err
	}
	return FrameSequence(frame, axisCol, valueCol)
}

// FrameSequence builds a sequence from two columns of frame.
func FrameSequence(frame *Frame, axisCol, valueCol string) (warp.Sequence, error) {
	axisIdx, valueIdx := 0, 1
	var err error
	if axisCol != "" {
		if axisIdx, err = frame.Index(axisCol); err != nil {
			return warp.Sequence{}, err
		}
	}
	if valueCol != "" {
		if valueIdx, err = frame.Index(valueCol); err != nil {
			return warp.Sequence{}, err
		}
	}
	if axisIdx >= len(frame.Cols) || valueIdx >= len(frame.Cols) {
		return warp.Sequence{}, fmt.Errorf("table has %d columns, need at least 2", len(frame.Cols))
	}
	for _, i := range []int{axisIdx, valueIdx} {
		if err := frame.columnErr(i); err != nil {
			return warp.Sequence{}, err
		}
	}
	return warp.NewSequence(frame.Cols[axisIdx], frame.Cols[valueIdx])
}

// SplitColumns splits frame into one two-column frame per value column, each
// pairing axisCol with that column and dropping rows with a missing cell.
// With no columns given, every numeric column other than the axis is split out.
func SplitColumns(frame *Frame, axisCol string, columns []string) (map[string]*Frame, error) {
	if axisCol == "" {
		if len(frame.Header) == 0 {
			return nil, fmt.Errorf("table has no columns")
		}
		axisCol = frame.Header[0]
	}
	if _, err := frame.Index(axisCol); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		for _, h := range frame.Header {
			if h != axisCol && frame.Numeric(h) {
				columns = append(columns, h)
			}
		}
	}

	out := make(map[string]*Frame, len(columns))
	for _, col := range columns {
		sub, err := frame.Select(axisCol, col)
		if err != nil {
			return nil, err
		}
		out[col] = sub.DropNaN()
	}
	return out, nil
}

// SplitFile splits the table at path into "<name>_<column>.csv" files written
// next to it, and returns the written paths keyed by column.
func SplitFile(path, axisCol string, columns []string) (map[string]string, error) {
	frame, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	parts, err := SplitColumns(frame, axisCol, columns)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))
	written := make(map[string]string, len(parts))
	for col, part := range parts {
		target := fmt.Sprintf("%s_%s.csv", base, col)
		if err := writeFrameFile(target, part); err != nil {
			return nil, err
		}
		written[col] = target
	}
	return written, nil
}

func writeFrameFile(path string, f *Frame) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteCSV(file, f)
}
