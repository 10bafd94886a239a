package warp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/huangsam/sedwarp/core/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFormatPath tests the list literal written to path dumps.
func TestFormatPath(t *testing.T) {
	assert.Equal(t, "[]", FormatPath(nil))
	assert.Equal(t, "[(0, 0), (1, 1), (2, 1)]", FormatPath(algo.Path{{I: 0, J: 0}, {I: 1, J: 1}, {I: 2, J: 1}}))

	var buf bytes.Buffer
	require.NoError(t, WritePath(&buf, algo.Path{{I: 0, J: 0}, {I: 1, J: 0}}))
	assert.Equal(t, "[(0, 0), (1, 0)]\n", buf.String())
}

// TestParsePath tests accepted literal forms.
func TestParsePath(t *testing.T) {
	expected := algo.Path{{I: 0, J: 0}, {I: 1, J: 1}, {I: 2, J: 1}}
	tests := []struct {
		name  string
		input string
	}{
		{"tuples", "[(0, 0), (1, 1), (2, 1)]"},
		{"lists", "[[0,0],[1,1],[2,1]]"},
		{"mixed spacing", "  [ ( 0 ,0 ) ,(1,  1),\t(2,1) ]\n"},
		{"trailing commas", "[(0, 0,), (1, 1), (2, 1),]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, expected, got)
		})
	}

	empty, err := ParsePath("[]")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// TestParsePathErrors tests malformed input.
func TestParsePathErrors(t *testing.T) {
	inputs := []string{
		"",
		"(0, 0)",
		"[(0, 0)",
		"[(0 0)]",
		"[(0, x)]",
		"[(0, 0]]",
		"[(0, 0)] extra",
		"[(0, 0) (1, 1)]",
	}
	for _, in := range inputs {
		_, err := ParsePath(in)
		assert.ErrorIs(t, err, ErrInvalidPath, "input %q", in)
	}
}

// TestReadPath tests reading the first line of a dump.
func TestReadPath(t *testing.T) {
	path, err := ReadPath(strings.NewReader("[(0, 0), (1, 2)]\nignored"))
	require.NoError(t, err)
	assert.Equal(t, algo.Path{{I: 0, J: 0}, {I: 1, J: 2}}, path)

	path, err = ReadPath(strings.NewReader("[(3, 4)]"))
	require.NoError(t, err)
	assert.Equal(t, algo.Path{{I: 3, J: 4}}, path)
}
