package assembler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports a compute instruction that does not match the instruction grammar.
type SyntaxError struct {
	Line        int // zero-based source line, -1 when unknown
	Instruction string
	Reason      string
}

func (e *SyntaxError) Error() string {
	msg := "invalid syntax: \"" + e.Instruction + "\""
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return withLinePrefix(e.Line, msg)
}

// RangeError reports an address instruction whose value does not fit in 15 bits.
type RangeError struct {
	Line  int
	Value string
}

func (e *RangeError) Error() string {
	return withLinePrefix(e.Line, fmt.Sprintf("address %s out of range [0, %d]", e.Value, MaxAddress))
}

// DuplicateLabelError reports a label definition for a name that is already bound.
type DuplicateLabelError struct {
	Name     string
	Line     int
	Previous Symbol
}

func (e *DuplicateLabelError) Error() string {
	var msg string
	switch e.Previous.Kind {
	case SymbolPredefined:
		msg = fmt.Sprintf("label %q redefines predefined symbol (address %d)", e.Name, e.Previous.Address)
	default:
		msg = fmt.Sprintf("duplicate label %q, first defined on line %d", e.Name, e.Previous.Line+1)
	}
	return withLinePrefix(e.Line, msg)
}

func withLinePrefix(line int, msg string) string {
	if line < 0 {
		return msg
	}
	return "line " + strconv.Itoa(line+1) + ": " + msg
}

// atLine attaches a source line to the translation errors that carry one.
func atLine(err error, line int) error {
	var syntaxErr *SyntaxError
	var rangeErr *RangeError
	switch {
	case errors.As(err, &syntaxErr):
		syntaxErr.Line = line
	case errors.As(err, &rangeErr):
		rangeErr.Line = line
	}
	return err
}

// ErrorLine returns the zero-based source line carried by a translation error.
func ErrorLine(err error) (int, bool) {
	var syntaxErr *SyntaxError
	var rangeErr *RangeError
	var dupErr *DuplicateLabelError
	switch {
	case errors.As(err, &syntaxErr):
		return syntaxErr.Line, syntaxErr.Line >= 0
	case errors.As(err, &rangeErr):
		return rangeErr.Line, rangeErr.Line >= 0
	case errors.As(err, &dupErr):
		return dupErr.Line, dupErr.Line >= 0
	}
	return 0, false
}

// AdjustRange shrinks r so it covers only the code on the line, leaving out indentation and comments.
func AdjustRange(r TextRange, lineText string) (TextRange, string) {
	code, _ := NormalizeLine(lineText)
	if code == "" {
		return r, code
	}
	start := strings.Index(lineText, code)
	r.Start.Char = start
	r.End.Char = start + len(code)
	return r, code
}

func lineRange(line int, lineText string) TextRange {
	r, _ := AdjustRange(TextRange{
		Start: TextPosition{Line: line, Char: 0},
		End:   TextPosition{Line: line, Char: len(lineText)},
	}, lineText)
	return r
}

// Errors
type assemblyError struct{}

var Errors assemblyError

func (assemblyError) InvalidInstruction(instruction, reason string, r TextRange) Diagnostic {
	msg := "Invalid instruction: \"" + instruction + "\""
	if reason != "" {
		msg += ", " + reason
	}
	return Diagnostic{
		Range:    r,
		Message:  msg,
		Source:   "Assembler",
		Severity: Error,
	}
}

func (assemblyError) AddressOutOfRange(value string, r TextRange) Diagnostic {
	return Diagnostic{
		Range:    r,
		Message:  "Address \"" + value + "\" is out of range. Must be between 0 and " + strconv.Itoa(MaxAddress),
		Source:   "Assembler",
		Severity: Error,
	}
}

func (assemblyError) DuplicateLabel(label string, previous Symbol, r TextRange) Diagnostic {
	msg := "Duplicate label: \"" + label + "\", first defined on line " + strconv.Itoa(previous.Line+1)
	if previous.Kind == SymbolPredefined {
		msg = "Label \"" + label + "\" redefines a predefined symbol"
	}
	return Diagnostic{
		Range:    r,
		Message:  msg,
		Source:   "Assembler",
		Severity: Error,
	}
}

func (assemblyError) AnonymousError(message string, r TextRange) Diagnostic {
	return Diagnostic{
		Range:    r,
		Message:  message,
		Source:   "Assembler",
		Severity: Error,
	}
}

// FromError converts a translation error into a diagnostic covering r.
func (e assemblyError) FromError(err error, r TextRange) Diagnostic {
	var syntaxErr *SyntaxError
	var rangeErr *RangeError
	var dupErr *DuplicateLabelError
	switch {
	case errors.As(err, &syntaxErr):
		return e.InvalidInstruction(syntaxErr.Instruction, syntaxErr.Reason, r)
	case errors.As(err, &rangeErr):
		return e.AddressOutOfRange(rangeErr.Value, r)
	case errors.As(err, &dupErr):
		return e.DuplicateLabel(dupErr.Name, dupErr.Previous, r)
	}
	return e.AnonymousError(err.Error(), r)
}

// Warnings
type assemblyWarning struct{}

var Warnings assemblyWarning

func (assemblyWarning) UnusedLabel(label string, r TextRange) Diagnostic {
	return Diagnostic{
		Range:    r,
		Message:  "Unused label: \"" + label + "\"",
		Source:   "Assembler",
		Severity: Warning,
	}
}

func (assemblyWarning) SingleUseVariable(name string, r TextRange) Diagnostic {
	return Diagnostic{
		Range:    r,
		Message:  "Variable \"" + name + "\" is only referenced once",
		Source:   "Assembler",
		Severity: Information,
	}
}
