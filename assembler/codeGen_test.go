package assembler_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Joiy908/Nand2Tetris/assembler"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, dest := range assembler.DestMnemonics() {
		for _, comp := range assembler.CompMnemonics() {
			for _, jump := range assembler.JumpMnemonics() {
				instruction := comp
				if dest != "" {
					instruction = dest + "=" + instruction
				}
				if jump != "" {
					instruction += ";" + jump
				}

				word, err := assembler.Encode(instruction)
				if err != nil {
					t.Fatalf("Encode(%q) failed: %v", instruction, err)
				}
				if word&0xE000 != 0xE000 {
					t.Errorf("Encode(%q) = %016b; missing compute prefix", instruction, word)
				}
				decoded, err := assembler.Decode(word)
				if err != nil {
					t.Fatalf("Decode(%016b) failed: %v", word, err)
				}
				if decoded != instruction {
					t.Errorf("Decode(Encode(%q)) = %q", instruction, decoded)
				}
			}
		}
	}
}

func TestTableSizes(t *testing.T) {
	if n := len(assembler.CompMnemonics()); n != 28 {
		t.Errorf("Expected 28 computation mnemonics, got %d", n)
	}
	if n := len(assembler.DestMnemonics()); n != 8 {
		t.Errorf("Expected 8 destination mnemonics, got %d", n)
	}
	if n := len(assembler.JumpMnemonics()); n != 8 {
		t.Errorf("Expected 8 jump mnemonics, got %d", n)
	}
}

func TestEncodeAddress(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"@0", "0000000000000000"},
		{"@1", "0000000000000001"},
		{"@21", "0000000000010101"},
		{"@16384", "0100000000000000"},
		{"@32767", "0111111111111111"},
	}
	for _, tc := range tests {
		word, err := assembler.Encode(tc.input)
		if err != nil {
			t.Fatalf("Encode(%q) failed: %v", tc.input, err)
		}
		if got := assembler.FormatWord(word); got != tc.want {
			t.Errorf("Encode(%q) = %s; want %s", tc.input, got, tc.want)
		}
		decoded, err := assembler.Decode(word)
		if err != nil || decoded != tc.input {
			t.Errorf("Decode(%s) = %q, %v; want %q", tc.want, decoded, err, tc.input)
		}
	}
}

func TestDecodeRejectsInvalidWords(t *testing.T) {
	invalid := []uint16{
		0x8000, // compute bit set without the two fixed ones
		0xC000,
		0xE000 | 0x0040, // comp bits that no mnemonic uses
	}
	for _, word := range invalid {
		if text, err := assembler.Decode(word); err == nil {
			t.Errorf("Expected Decode(%016b) to fail, got %q", word, text)
		}
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := assembler.WriteText(&buf, []uint16{2, 0xEC10}); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	want := "0000000000000010\n1110110000010000\n"
	if buf.String() != want {
		t.Errorf("WriteText wrote %q; want %q", buf.String(), want)
	}

	words, err := assembler.ReadText(&buf)
	if err != nil || len(words) != 2 || words[1] != 0xEC10 {
		t.Errorf("ReadText = %v, %v", words, err)
	}
}

func TestWriteBinaryIsBigEndian(t *testing.T) {
	var buf bytes.Buffer
	if err := assembler.WriteBinary(&buf, []uint16{0x0002, 0xEC10}); err != nil {
		t.Fatalf("WriteBinary failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x00, 0x02, 0xEC, 0x10}) {
		t.Errorf("WriteBinary wrote % X", buf.Bytes())
	}

	words, err := assembler.ReadBinary(bytes.NewReader([]byte{0x00, 0x02, 0xEC}))
	if err == nil {
		t.Errorf("Expected ReadBinary to reject an odd-length image, got %v", words)
	}
}

func TestReadTextRejectsGarbage(t *testing.T) {
	if _, err := assembler.ReadText(bytes.NewBufferString("0000000000000010\n01\n")); err == nil {
		t.Errorf("Expected ReadText to reject a short line")
	}
	if _, err := assembler.ReadText(bytes.NewBufferString("000000000000002x\n")); err == nil {
		t.Errorf("Expected ReadText to reject non-binary digits")
	}
}

func TestReadTextLongLines(t *testing.T) {
	text := "0000000000000010\n" + strings.Repeat(" ", 70000) + "\n1110110000010000\n"
	words, err := assembler.ReadText(strings.NewReader(text))
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 2 || words[0] != 2 || words[1] != 0xEC10 {
		t.Errorf("unexpected words %v", words)
	}
}
