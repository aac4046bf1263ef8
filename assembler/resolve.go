package assembler

import (
	"strconv"
	"strings"
)

// Resolver turns normalized lines into a label-free stream where every address instruction
// carries a plain non-negative integer. The symbol table it is given is mutated in place.
type Resolver struct {
	symbols *SymbolTable
	config  AssemblerConfig
}

func NewResolver(symbols *SymbolTable, config AssemblerConfig) *Resolver {
	return &Resolver{symbols: symbols, config: config}
}

func (r *Resolver) Symbols() *SymbolTable {
	return r.symbols
}

// Resolve runs label collection over the whole stream, then address resolution.
func (r *Resolver) Resolve(lines []SourceLine) ([]SourceLine, error) {
	instructions, err := r.CollectLabels(lines)
	if err != nil {
		return nil, err
	}
	return r.ResolveAddresses(instructions), nil
}

// CollectLabels binds every (NAME) to the index of the instruction that follows it and returns
// the remaining instructions in order.
func (r *Resolver) CollectLabels(lines []SourceLine) ([]SourceLine, error) {
	var firstErr error
	instructions := r.collectLabels(lines, func(err error) bool {
		firstErr = err
		return false
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return instructions, nil
}

// collectLabels reports binding failures to report, which decides whether to keep going.
func (r *Resolver) collectLabels(lines []SourceLine, report func(error) bool) []SourceLine {
	instructions := make([]SourceLine, 0, len(lines))
	for _, line := range lines {
		if name, ok := parseLabelDefinition(line.Text); ok {
			err := r.symbols.Define(name, len(instructions), line.Number, r.config.AllowLabelRedefinition)
			if err != nil && !report(err) {
				return instructions
			}
			continue
		}
		instructions = append(instructions, line)
	}
	return instructions
}

// ResolveAddresses rewrites symbolic address instructions to numeric ones, allocating variables
// on first reference. Every other line passes through unchanged.
func (r *Resolver) ResolveAddresses(lines []SourceLine) []SourceLine {
	out := make([]SourceLine, len(lines))
	for i, line := range lines {
		out[i] = line
		ident, ok := strings.CutPrefix(line.Text, "@")
		if !ok {
			continue
		}
		ident = strings.TrimSpace(ident)
		if ident == "" || isDecimal(ident) {
			continue
		}
		addr, ok := r.symbols.Lookup(ident)
		if !ok {
			addr = r.symbols.Allocate(ident, line.Number)
		}
		out[i].Text = "@" + strconv.Itoa(addr)
	}
	return out
}

// parseLabelDefinition matches (NAME) where NAME is made of letters, digits, '_', '.' and '$'.
func parseLabelDefinition(line string) (string, bool) {
	if len(line) < 2 || line[0] != '(' || line[len(line)-1] != ')' {
		return "", false
	}
	name := strings.TrimSpace(line[1 : len(line)-1])
	if !isSymbolName(name) {
		return "", false
	}
	return name, true
}

func isSymbolName(str string) bool {
	if len(str) == 0 {
		return false
	}
	for _, char := range str {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') ||
			char == '_' || char == '.' || char == '$') {
			return false
		}
	}
	return true
}

func isDecimal(str string) bool {
	if len(str) == 0 {
		return false
	}
	for _, char := range str {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}
