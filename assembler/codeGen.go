package assembler

import (
	"fmt"
	"strconv"
)

// bit patterns already shifted into place within the 16-bit word
var destTable = map[string]uint16{
	"":    0x0,
	"M":   0x8,
	"D":   0x10,
	"MD":  0x18,
	"A":   0x20,
	"AM":  0x28,
	"AD":  0x30,
	"AMD": 0x38,
}

var jumpTable = map[string]uint16{
	"":    0x0,
	"JGT": 0x1,
	"JEQ": 0x2,
	"JGE": 0x3,
	"JLT": 0x4,
	"JNE": 0x5,
	"JLE": 0x6,
	"JMP": 0x7,
}

// the a bit (0x1000) selects M instead of A
var compTable = map[string]uint16{
	"0":   0xa80,
	"1":   0xfc0,
	"-1":  0xe80,
	"D":   0x300,
	"A":   0xc00,
	"M":   0x1c00,
	"!D":  0x340,
	"!A":  0xc40,
	"!M":  0x1c40,
	"-D":  0x3c0,
	"-A":  0xcc0,
	"-M":  0x1cc0,
	"D+1": 0x7c0,
	"A+1": 0xdc0,
	"M+1": 0x1dc0,
	"D-1": 0x380,
	"A-1": 0xc80,
	"M-1": 0x1c80,
	"D+A": 0x80,
	"D+M": 0x1080,
	"D-A": 0x4c0,
	"D-M": 0x14c0,
	"A-D": 0x1c0,
	"M-D": 0x11c0,
	"D&A": 0x0,
	"D&M": 0x1000,
	"D|A": 0x540,
	"D|M": 0x1540,
}

var (
	destByBits = invertTable(destTable)
	jumpByBits = invertTable(jumpTable)
	compByBits = invertTable(compTable)
)

func invertTable(table map[string]uint16) map[uint16]string {
	out := make(map[uint16]string, len(table))
	for mnemonic, bits := range table {
		out[bits] = mnemonic
	}
	return out
}

const (
	computePrefix = 0xE000
	addressMask   = 0x7FFF
	compMask      = 0x1FC0
	destMask      = 0x0038
	jumpMask      = 0x0007
)

func makeAddressInstruction(value uint16) uint16 {
	return value & addressMask
}

func makeComputeInstruction(dest, comp, jump uint16) uint16 {
	return computePrefix | comp | dest | jump
}

func DecodeComputeInstruction(instruction uint16) (dest, comp, jump uint16) {
	dest = instruction & destMask
	comp = instruction & compMask
	jump = instruction & jumpMask
	return
}

func IsAddressInstruction(instruction uint16) bool {
	return instruction&0x8000 == 0
}

// Decode turns a machine word back into assembly text. Address instructions decode to "@N".
func Decode(instruction uint16) (string, error) {
	if IsAddressInstruction(instruction) {
		return "@" + strconv.Itoa(int(instruction)), nil
	}
	if instruction&computePrefix != computePrefix {
		return "", fmt.Errorf("word %016b is not a valid instruction", instruction)
	}
	destBits, compBits, jumpBits := DecodeComputeInstruction(instruction)
	comp, ok := compByBits[compBits]
	if !ok {
		return "", fmt.Errorf("word %016b has no computation mnemonic", instruction)
	}
	text := comp
	if dest := destByBits[destBits]; dest != "" {
		text = dest + "=" + text
	}
	if jump := jumpByBits[jumpBits]; jump != "" {
		text += ";" + jump
	}
	return text, nil
}

// FormatWord renders a word as the 16-character binary text of the output format.
func FormatWord(instruction uint16) string {
	return fmt.Sprintf("%016b", instruction)
}

// ParseWord is the inverse of FormatWord.
func ParseWord(text string) (uint16, error) {
	if len(text) != 16 {
		return 0, fmt.Errorf("expected 16 binary digits, got %q", text)
	}
	v, err := strconv.ParseUint(text, 2, 16)
	if err != nil {
		return 0, fmt.Errorf("expected 16 binary digits, got %q", text)
	}
	return uint16(v), nil
}

// DestMnemonics, CompMnemonics and JumpMnemonics list the accepted mnemonics of each field.
func DestMnemonics() []string { return sortedKeys(destTable) }
func CompMnemonics() []string { return sortedKeys(compTable) }
func JumpMnemonics() []string { return sortedKeys(jumpTable) }
