package assembler

// SourceLine is a normalized line of assembly: no comment, no surrounding whitespace, never empty.
type SourceLine struct {
	// Number is the zero-based line number in the original source.
	Number int
	Text   string
}

type AssemblerConfig struct {
	// AllowLabelRedefinition makes a repeated (NAME) overwrite the earlier binding instead of failing.
	AllowLabelRedefinition bool `json:"allowLabelRedefinition"`
}

// Program is the result of a successful, fail-fast assembly run.
type Program struct {
	Words       []uint16
	SourceLines []int // word index to zero-based source line
	Symbols     *SymbolTable
}

// AssembledResult is the editor-oriented view of a source file. Unlike Program it is produced even
// when the source has errors, which are collected in Diagnostics.
type AssembledResult struct {
	Labels            map[string]int // label name to instruction address
	Variables         map[string]int // variable name to RAM address
	LabelToLineNumber map[string]int // label name to line number
	AddressToLine     map[int]int    // instruction address to line number
	LineToAddress     map[int]int    // line number to instruction address
	ProgramText       []uint16
	Diagnostics       []Diagnostic
	Symbols           *SymbolTable
	fileContents      []string // each line of the file
}

type TextPosition struct {
	Line int `json:"line"`
	Char int `json:"character"`
}

type TextRange struct {
	Start TextPosition `json:"start"`
	End   TextPosition `json:"end"`
}

type CodeDescription struct {
	URL string `json:"href"`
}

type DiagnosticSeverity int

const (
	Error       DiagnosticSeverity = 1
	Warning     DiagnosticSeverity = 2
	Information DiagnosticSeverity = 3
	Hint        DiagnosticSeverity = 4
)

type Diagnostic struct {
	Range           TextRange          `json:"range"`
	Message         string             `json:"message"`
	Source          string             `json:"source,omitempty"`
	CodeDescription *CodeDescription   `json:"codeDescription,omitempty"`
	Severity        DiagnosticSeverity `json:"severity,omitempty"`
}
