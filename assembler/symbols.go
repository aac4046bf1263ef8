package assembler

import "sort"

const (
	MaxAddress   = 1<<15 - 1 // largest value an address instruction can load
	VariableBase = 16        // first RAM address handed out to variables
)

type SymbolKind int

const (
	SymbolPredefined SymbolKind = iota
	SymbolLabel
	SymbolVariable
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolPredefined:
		return "predefined"
	case SymbolLabel:
		return "label"
	case SymbolVariable:
		return "variable"
	}
	return "unknown"
}

type Symbol struct {
	Name    string
	Address int
	Kind    SymbolKind
	Line    int // line of the definition or first reference, -1 for predefined symbols
}

var predefinedSymbols = map[string]int{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"R0":     0,
	"R1":     1,
	"R2":     2,
	"R3":     3,
	"R4":     4,
	"R5":     5,
	"R6":     6,
	"R7":     7,
	"R8":     8,
	"R9":     9,
	"R10":    10,
	"R11":    11,
	"R12":    12,
	"R13":    13,
	"R14":    14,
	"R15":    15,
	"SCREEN": 16384,
	"KBD":    24576,
}

// PredefinedAddress reports the fixed address of a predefined symbol.
func PredefinedAddress(name string) (int, bool) {
	addr, ok := predefinedSymbols[name]
	return addr, ok
}

// SymbolTable maps symbol names to addresses. Predefined, label and variable symbols share one namespace.
type SymbolTable struct {
	symbols      map[string]Symbol
	nextVariable int
}

func NewSymbolTable() *SymbolTable {
	t := &SymbolTable{
		symbols:      make(map[string]Symbol, len(predefinedSymbols)),
		nextVariable: VariableBase,
	}
	for name, addr := range predefinedSymbols {
		t.symbols[name] = Symbol{Name: name, Address: addr, Kind: SymbolPredefined, Line: -1}
	}
	return t
}

func (t *SymbolTable) Lookup(name string) (int, bool) {
	s, ok := t.symbols[name]
	return s.Address, ok
}

func (t *SymbolTable) Get(name string) (Symbol, bool) {
	s, ok := t.symbols[name]
	return s, ok
}

// Define binds a label. A name that is already bound is rejected with a *DuplicateLabelError unless
// overwrite is set.
func (t *SymbolTable) Define(name string, address, line int, overwrite bool) error {
	if prev, ok := t.symbols[name]; ok && !overwrite {
		return &DuplicateLabelError{Name: name, Line: line, Previous: prev}
	}
	t.symbols[name] = Symbol{Name: name, Address: address, Kind: SymbolLabel, Line: line}
	return nil
}

// Allocate binds name to the next free variable address, or returns the existing binding.
func (t *SymbolTable) Allocate(name string, line int) int {
	if s, ok := t.symbols[name]; ok {
		return s.Address
	}
	addr := t.nextVariable
	t.nextVariable++
	t.symbols[name] = Symbol{Name: name, Address: addr, Kind: SymbolVariable, Line: line}
	return addr
}

func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

// Entries returns the symbols of the given kinds ordered by address, then name.
// With no kinds given, every symbol is returned.
func (t *SymbolTable) Entries(kinds ...SymbolKind) []Symbol {
	out := make([]Symbol, 0, len(t.symbols))
	for _, s := range t.symbols {
		if len(kinds) == 0 || containsKind(kinds, s.Kind) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Address != out[j].Address {
			return out[i].Address < out[j].Address
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func containsKind(kinds []SymbolKind, k SymbolKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}
