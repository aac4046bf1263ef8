package assembler

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Encode translates one resolved instruction into its machine word. Address instructions must
// already be numeric.
func Encode(instruction string) (uint16, error) {
	compact := stripWhitespace(instruction)
	if value, ok := strings.CutPrefix(compact, "@"); ok {
		return EncodeAddress(value)
	}
	return EncodeCompute(compact)
}

// EncodeLine is Encode with the source line attached to any error.
func EncodeLine(line SourceLine) (uint16, error) {
	word, err := Encode(line.Text)
	if err != nil {
		return 0, atLine(err, line.Number)
	}
	return word, nil
}

// EncodeAddress encodes the value of an address instruction, given without the leading '@'.
func EncodeAddress(value string) (uint16, error) {
	if !isDecimal(value) {
		return 0, &SyntaxError{Line: -1, Instruction: "@" + value, Reason: "address must be a non-negative integer"}
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil || n > MaxAddress {
		return 0, &RangeError{Line: -1, Value: value}
	}
	return makeAddressInstruction(uint16(n)), nil
}

// EncodeCompute encodes dest=comp;jump. Whitespace must already be removed.
func EncodeCompute(instruction string) (uint16, error) {
	dest, comp, jump, reason := splitCompute(instruction)
	if reason != "" {
		return 0, &SyntaxError{Line: -1, Instruction: instruction, Reason: reason}
	}
	destBits, ok := destTable[dest]
	if !ok {
		return 0, &SyntaxError{Line: -1, Instruction: instruction, Reason: "unknown destination \"" + dest + "\""}
	}
	compBits, ok := compTable[comp]
	if !ok {
		return 0, &SyntaxError{Line: -1, Instruction: instruction, Reason: "unknown computation \"" + comp + "\""}
	}
	jumpBits, ok := jumpTable[jump]
	if !ok {
		return 0, &SyntaxError{Line: -1, Instruction: instruction, Reason: "unknown jump \"" + jump + "\""}
	}
	return makeComputeInstruction(destBits, compBits, jumpBits), nil
}

// splitCompute separates the fields of a compute instruction. The '=' separator is only allowed
// after a destination and the ';' separator only before a jump.
func splitCompute(instruction string) (dest, comp, jump, reason string) {
	rest := instruction
	if before, after, found := strings.Cut(rest, "="); found {
		if before == "" {
			return "", "", "", "'=' without a destination"
		}
		dest, rest = before, after
	}
	if before, after, found := strings.Cut(rest, ";"); found {
		if after == "" {
			return "", "", "", "';' without a jump"
		}
		rest, jump = before, after
	}
	if rest == "" {
		return "", "", "", "missing computation"
	}
	if strings.ContainsAny(rest, "=;") || strings.ContainsAny(jump, "=;") {
		return "", "", "", "misplaced separator"
	}
	return dest, rest, jump, ""
}

func stripWhitespace(str string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, str)
}

func sortedKeys(table map[string]uint16) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
