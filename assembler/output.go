package assembler

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// WriteText writes one 16-character binary line per word.
func WriteText(w io.Writer, words []uint16) error {
	bw := bufio.NewWriter(w)
	for _, word := range words {
		if _, err := bw.WriteString(FormatWord(word)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteBinary writes the words as raw big-endian 16-bit values.
func WriteBinary(w io.Writer, words []uint16) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.BigEndian, words); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadText reads the text format produced by WriteText. Blank lines are ignored.
func ReadText(r io.Reader) ([]uint16, error) {
	words := []uint16{}
	scanner := newLineScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		word, err := ParseWord(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		words = append(words, word)
	}
	return words, scanner.Err()
}

// ReadBinary reads the format produced by WriteBinary.
func ReadBinary(r io.Reader) ([]uint16, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("binary image has odd length %d", len(b))
	}
	words := make([]uint16, len(b)/2)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(b[i*2:])
	}
	return words, nil
}
