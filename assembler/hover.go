package assembler

import (
	"fmt"
	"strconv"
	"strings"
)

func (a *AssembledResult) EvaluateHover(position TextPosition) (string, bool) {
	// returns markdown
	// returns false if there is nothing to show at the position
	raw, ok := a.Line(position.Line)
	if !ok {
		return "", false
	}

	r, code := AdjustRange(TextRange{}, raw)
	if code == "" || position.Char < r.Start.Char || position.Char >= r.End.Char {
		return "", false
	}

	if name, ok := parseLabelDefinition(code); ok {
		addr, ok := a.Labels[name]
		if !ok {
			return "", false
		}
		return fmt.Sprintf(hoverInfoFormats.labelDefinition, name, addr), true
	}

	if ident, ok := strings.CutPrefix(code, "@"); ok {
		return a.hoverAddress(strings.TrimSpace(ident))
	}

	return a.hoverCompute(position.Line, code)
}

func (a *AssembledResult) hoverAddress(ident string) (string, bool) {
	if isDecimal(ident) {
		value, err := strconv.Atoi(ident)
		if err != nil || value > MaxAddress {
			return "", false
		}
		return fmt.Sprintf(hoverInfoFormats.integerLiteral, value, value), true
	}

	s, ok := a.Symbols.Get(ident)
	if !ok {
		return "", false
	}
	switch s.Kind {
	case SymbolPredefined:
		return fmt.Sprintf(hoverInfoFormats.predefined, s.Name, s.Address), true
	case SymbolLabel:
		return fmt.Sprintf(hoverInfoFormats.labelReference, s.Name, s.Address), true
	case SymbolVariable:
		return fmt.Sprintf(hoverInfoFormats.variable, s.Name, s.Address), true
	}
	return "", false
}

func (a *AssembledResult) hoverCompute(line int, code string) (string, bool) {
	compact := stripWhitespace(code)
	dest, comp, jump, reason := splitCompute(compact)
	if reason != "" {
		return "", false
	}
	compInfo, ok := hoverInfoFormats.computation[comp]
	if !ok {
		return "", false
	}

	parts := []string{fmt.Sprintf(hoverInfoFormats.computeHeader, compact), compInfo}
	if dest != "" {
		info, ok := hoverInfoFormats.destination[dest]
		if !ok {
			return "", false
		}
		parts = append(parts, info)
	}
	if jump != "" {
		info, ok := hoverInfoFormats.jump[jump]
		if !ok {
			return "", false
		}
		parts = append(parts, info)
	}

	if addr, ok := a.LineToAddress[line]; ok && addr < len(a.ProgramText) {
		parts = append(parts, fmt.Sprintf(hoverInfoFormats.encoding, FormatWord(a.ProgramText[addr])))
	}
	return strings.Join(parts, "\n\n"), true
}
