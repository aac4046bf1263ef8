package languageServer

import "github.com/Joiy908/Nand2Tetris/assembler"

type TextDocumentItem struct {
	URI                 DocumentUri `json:"uri"`
	LanguageID          string      `json:"languageId"`
	Version             int         `json:"version"`
	Text                string      `json:"text"`
	lastAssembledResult *assembler.AssembledResult
}

const languageID = "hack"

type DocumentUri string

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type TextDocumentIdentifier struct {
	URI DocumentUri `json:"uri"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type VersionedTextDocumentIdentifier struct {
	URI     DocumentUri `json:"uri"`
	Version int         `json:"version"`
}

type TextDocumentContentChangeEvent struct {
	Text string `json:"text"` // whole document, see TextDocumentSyncFull
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeParams keeps only what gets logged; client capabilities are not consulted.
type InitializeParams struct {
	ProcessID  int         `json:"processId"`
	RootURI    DocumentUri `json:"rootUri"`
	ClientInfo *ClientInfo `json:"clientInfo,omitempty"`
}

type DocumentDiagnosticsParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type DocumentDiagnosticsReport struct {
	Kind  string                 `json:"kind"` // always "full", there are no incremental reports
	Items []assembler.Diagnostic `json:"items"`
}

type PublishDiagnosticsParams struct {
	URI         DocumentUri            `json:"uri"`
	Version     int                    `json:"version"`
	Diagnostics []assembler.Diagnostic `json:"diagnostics"`
}

type TextEdit struct {
	Range   assembler.TextRange `json:"range"`
	NewText string              `json:"newText"`
}

type DocumentWillSaveWaitUntilParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Reason       int                    `json:"reason"`
}

type DocumentFormattingParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     assembler.TextPosition `json:"position"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type Hover struct {
	Contents MarkupContent `json:"contents"`
}

// Capabilities

type DiagnosticOptions struct {
	WorkDoneProgress      bool `json:"workDoneProgress"`
	InterFileDependencies bool `json:"interFileDependencies"`
	WorkspaceDiagnostics  bool `json:"workspaceDiagnostics"`
}

type TextDocumentSyncKind int

const (
	TextDocumentSyncNone TextDocumentSyncKind = iota
	TextDocumentSyncFull
	TextDocumentSyncIncremental
)

type ServerCapabilities struct {
	TextDocumentSync           TextDocumentSyncKind `json:"textDocumentSync"`
	DiagnosticOptions          DiagnosticOptions    `json:"diagnosticOptions"`
	HoverProvider              bool                 `json:"hoverProvider"`
	DocumentFormattingProvider bool                 `json:"documentFormattingProvider"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   ServerInfo         `json:"serverInfo"`
}

type DocumentFilter struct {
	Language string `json:"language"`
	Scheme   string `json:"scheme"`
}

type DocumentSelector []DocumentFilter

type TextDocumentRegistrationOptions struct {
	DocumentSelector DocumentSelector `json:"documentSelector"`
}

type Registration struct {
	ID              string      `json:"id"`
	Method          string      `json:"method"`
	RegisterOptions interface{} `json:"registerOptions"`
}

type RegistrationParams struct {
	Registrations []Registration `json:"registrations"`
}
