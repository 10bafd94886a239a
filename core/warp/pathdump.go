package warp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/sedwarp/core/algo"
)

// FormatPath renders path as a single-line list literal: [(0, 0), (1, 1), ...].
func FormatPath(path algo.Path) string {
	var b strings.Builder
	b.WriteByte('[')
	for k, p := range path {
		if k > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		b.WriteString(strconv.Itoa(p.I))
		b.WriteString(", ")
		b.WriteString(strconv.Itoa(p.J))
		b.WriteByte(')')
	}
	b.WriteByte(']')
	return b.String()
}

// WritePath writes the list literal of path followed by a newline.
func WritePath(w io.Writer, path algo.Path) error {
	_, err := io.WriteString(w, FormatPath(path)+"\n")
	return err
}

// ReadPath parses the first line of r as a path literal.
func ReadPath(r io.Reader) (algo.Path, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	return ParsePath(line)
}

// ParsePath parses a list of integer pairs. Pairs may be written as tuples
// "(i, j)" or lists "[i, j]"; whitespace and a trailing comma are allowed.
func ParsePath(s string) (algo.Path, error) {
	p := &pathParser{src: s}
	path, err := p.parse()
	if err != nil {
		return nil, wrapError(ErrInvalidPath, err, "parsing path literal")
	}
	return path, nil
}

// pathParser is a minimal recursive-descent reader for the dump format.
type pathParser struct {
	src string
	pos int
}

func (p *pathParser) parse() (algo.Path, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	path := algo.Path{}
	for {
		p.skipSpace()
		if p.peek() == ']' {
			p.pos++
			break
		}
		pair, err := p.pair()
		if err != nil {
			return nil, err
		}
		path = append(path, pair)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
		default:
			return nil, p.errorf("expected ',' or ']'")
		}
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}
	return path, nil
}

func (p *pathParser) pair() (algo.Pair, error) {
	p.skipSpace()
	var closing byte
	switch p.peek() {
	case '(':
		closing = ')'
	case '[':
		closing = ']'
	default:
		return algo.Pair{}, p.errorf("expected '(' or '['")
	}
	p.pos++

	i, err := p.integer()
	if err != nil {
		return algo.Pair{}, err
	}
	if err := p.expect(','); err != nil {
		return algo.Pair{}, err
	}
	j, err := p.integer()
	if err != nil {
		return algo.Pair{}, err
	}
	p.skipSpace()
	if p.peek() == ',' {
		p.pos++
	}
	if err := p.expect(closing); err != nil {
		return algo.Pair{}, err
	}
	return algo.Pair{I: i, J: j}, nil
}

func (p *pathParser) integer() (int, error) {
	p.skipSpace()
	start := p.pos
	if p.peek() == '-' || p.peek() == '+' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		p.pos = start
		return 0, p.errorf("expected integer")
	}
	return n, nil
}

func (p *pathParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *pathParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *pathParser) skipSpace() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *pathParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: "+format, append([]any{p.pos}, args...)...)
}
