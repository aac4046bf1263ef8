package assembler

import (
	"io"
	"strings"
)

// Assemble runs the whole pipeline over r: normalize, collect labels, resolve addresses, encode.
// It stops at the first error.
func Assemble(r io.Reader, config AssemblerConfig) (*Program, error) {
	lines, err := NormalizeAll(r)
	if err != nil {
		return nil, err
	}

	symbols := NewSymbolTable()
	resolved, err := NewResolver(symbols, config).Resolve(lines)
	if err != nil {
		return nil, err
	}

	program := &Program{
		Words:       make([]uint16, 0, len(resolved)),
		SourceLines: make([]int, 0, len(resolved)),
		Symbols:     symbols,
	}
	for _, line := range resolved {
		word, err := EncodeLine(line)
		if err != nil {
			return nil, err
		}
		program.Words = append(program.Words, word)
		program.SourceLines = append(program.SourceLines, line.Number)
	}
	return program, nil
}

func AssembleString(source string, config AssemblerConfig) (*Program, error) {
	return Assemble(strings.NewReader(source), config)
}

// Analyze assembles source for an editor. It does not stop at errors: every problem it finds is
// reported as a diagnostic and the offending instruction is encoded as zero.
func Analyze(source string, config AssemblerConfig) (res *AssembledResult) {
	res = new(AssembledResult)
	res.Labels = make(map[string]int)
	res.Variables = make(map[string]int)
	res.LabelToLineNumber = make(map[string]int)
	res.AddressToLine = make(map[int]int)
	res.LineToAddress = make(map[int]int)
	res.Diagnostics = make([]Diagnostic, 0)
	res.fileContents = strings.Split(source, "\n")
	res.Symbols = NewSymbolTable()

	lines := make([]SourceLine, 0, len(res.fileContents))
	for i, raw := range res.fileContents {
		if text, ok := NormalizeLine(raw); ok {
			lines = append(lines, SourceLine{Number: i, Text: text})
		}
	}

	resolver := NewResolver(res.Symbols, config)
	instructions := resolver.collectLabels(lines, func(err error) bool {
		res.reportError(err)
		return true
	})
	resolved := resolver.ResolveAddresses(instructions)

	referenced := make(map[string]int)
	for _, line := range instructions {
		if ident, ok := strings.CutPrefix(line.Text, "@"); ok {
			referenced[strings.TrimSpace(ident)]++
		}
	}

	res.ProgramText = make([]uint16, len(resolved))
	for addr, line := range resolved {
		res.AddressToLine[addr] = line.Number
		res.LineToAddress[line.Number] = addr
		word, err := EncodeLine(line)
		if err != nil {
			res.reportError(err)
			continue
		}
		res.ProgramText[addr] = word
	}

	for _, s := range res.Symbols.Entries(SymbolLabel, SymbolVariable) {
		switch s.Kind {
		case SymbolLabel:
			res.Labels[s.Name] = s.Address
			res.LabelToLineNumber[s.Name] = s.Line
			if referenced[s.Name] == 0 {
				res.Diagnostics = append(res.Diagnostics, Warnings.UnusedLabel(s.Name, res.rangeOf(s.Line)))
			}
		case SymbolVariable:
			res.Variables[s.Name] = s.Address
			if referenced[s.Name] == 1 {
				res.Diagnostics = append(res.Diagnostics, Warnings.SingleUseVariable(s.Name, res.rangeOf(s.Line)))
			}
		}
	}
	return
}

func (a *AssembledResult) reportError(err error) {
	line, ok := ErrorLine(err)
	if !ok {
		a.Diagnostics = append(a.Diagnostics, Errors.AnonymousError(err.Error(), TextRange{}))
		return
	}
	a.Diagnostics = append(a.Diagnostics, Errors.FromError(err, a.rangeOf(line)))
}

func (a *AssembledResult) rangeOf(line int) TextRange {
	if line < 0 || line >= len(a.fileContents) {
		return TextRange{}
	}
	return lineRange(line, a.fileContents[line])
}

// HasErrors reports whether any diagnostic is an error.
func (a *AssembledResult) HasErrors() bool {
	for _, d := range a.Diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Line returns the raw text of a source line.
func (a *AssembledResult) Line(line int) (string, bool) {
	if line < 0 || line >= len(a.fileContents) {
		return "", false
	}
	return a.fileContents[line], true
}
