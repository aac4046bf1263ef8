package assembler

import (
	"bufio"
	"io"
	"math"
	"strings"
)

const commentMarker = "//"

// NormalizeLine removes the trailing comment and surrounding whitespace from a raw source line.
// It reports false when nothing is left.
func NormalizeLine(raw string) (string, bool) {
	code, _, _ := strings.Cut(raw, commentMarker)
	code = strings.TrimSpace(code)
	return code, code != ""
}

// Normalizer reads source lines lazily and yields only the ones that carry code.
// It cannot be restarted.
type Normalizer struct {
	scanner *bufio.Scanner
	line    SourceLine
	next    int
}

func NewNormalizer(r io.Reader) *Normalizer {
	return &Normalizer{scanner: newLineScanner(r)}
}

// newLineScanner splits r into lines of any length.
func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), math.MaxInt)
	return scanner
}

func (n *Normalizer) Scan() bool {
	for n.scanner.Scan() {
		number := n.next
		n.next++
		if text, ok := NormalizeLine(n.scanner.Text()); ok {
			n.line = SourceLine{Number: number, Text: text}
			return true
		}
	}
	return false
}

// Line returns the line produced by the last successful call to Scan.
func (n *Normalizer) Line() SourceLine {
	return n.line
}

func (n *Normalizer) Err() error {
	return n.scanner.Err()
}

// NormalizeAll drains r through a Normalizer.
func NormalizeAll(r io.Reader) ([]SourceLine, error) {
	n := NewNormalizer(r)
	lines := []SourceLine{}
	for n.Scan() {
		lines = append(lines, n.Line())
	}
	return lines, n.Err()
}
