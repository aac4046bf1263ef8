package languageServer

import (
	"context"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/Joiy908/Nand2Tetris/assembler"
	"github.com/Joiy908/Nand2Tetris/util"
)

const instructionIndent = "    "

type documentStore struct {
	mu   sync.Mutex
	docs map[DocumentUri]TextDocumentItem
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[DocumentUri]TextDocumentItem)}
}

func (s *documentStore) get(uri DocumentUri) (TextDocumentItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

func (s *documentStore) put(doc TextDocumentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.URI] = doc
}

func (s *documentStore) remove(uri DocumentUri) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

func (h handler) assembleAndReportDiagnostics(uri DocumentUri) TextDocumentItem {
	doc, _ := h.documents.get(uri)
	doc.URI = uri
	doc.lastAssembledResult = assembler.Analyze(doc.Text, h.config)
	h.documents.put(doc)
	return doc
}

func (h handler) publishDiagnostics(conn *jsonrpc2.Conn, doc TextDocumentItem) {
	conn.Notify(context.Background(), "textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     doc.Version,
		Diagnostics: doc.lastAssembledResult.Diagnostics,
	})
}

func (h handler) documentOpenNotification(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidOpenTextDocumentParams{}
	if err := decodeParams(req, &decodedParams); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	h.documents.put(decodedParams.TextDocument)
	h.publishDiagnostics(conn, h.assembleAndReportDiagnostics(decodedParams.TextDocument.URI))
}

func (h handler) documentCloseNotification(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidCloseTextDocumentParams{}
	if err := decodeParams(req, &decodedParams); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	h.documents.remove(decodedParams.TextDocument.URI)
}

func (h handler) documentChangeNotification(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidChangeTextDocumentParams{}
	if err := decodeParams(req, &decodedParams); err != nil || len(decodedParams.ContentChanges) == 0 {
		replyInvalidParams(conn, req)
		return
	}

	// only full document sync is advertised, so the last change holds the whole text
	doc, _ := h.documents.get(decodedParams.TextDocument.URI)
	doc.URI = decodedParams.TextDocument.URI
	doc.Text = decodedParams.ContentChanges[len(decodedParams.ContentChanges)-1].Text
	doc.Version = decodedParams.TextDocument.Version
	h.documents.put(doc)

	h.publishDiagnostics(conn, h.assembleAndReportDiagnostics(doc.URI))
}

func (h handler) documentDiagnostics(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentDiagnosticsParams{}
	if err := decodeParams(req, &decodedParams); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	doc := h.assembleAndReportDiagnostics(decodedParams.TextDocument.URI)
	conn.Reply(context.Background(), req.ID, DocumentDiagnosticsReport{
		Kind:  "full",
		Items: doc.lastAssembledResult.Diagnostics,
	})
}

// reformatDocument puts labels in column 0 and indents instructions by four spaces. Whitespace inside
// an instruction is removed and comments are kept, separated from code by one space.
func reformatDocument(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		code, comment := line, ""
		if idx := strings.Index(line, "//"); idx >= 0 {
			code, comment = line[:idx], line[idx:]
		}
		trimmed := strings.TrimSpace(code)

		switch {
		case trimmed == "" && comment == "":
			lines[i] = ""
		case trimmed == "":
			// a comment on its own line stays in column 0 if it started there
			if strings.HasPrefix(line, "//") {
				lines[i] = comment
			} else {
				lines[i] = instructionIndent + comment
			}
		case strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")"):
			lines[i] = joinComment("("+strings.TrimSpace(trimmed[1:len(trimmed)-1])+")", comment)
		default:
			lines[i] = joinComment(instructionIndent+strings.Join(strings.Fields(trimmed), ""), comment)
		}
	}
	return strings.Join(lines, "\n")
}

func joinComment(code, comment string) string {
	if comment == "" {
		return code
	}
	return code + " " + comment
}

func (h handler) formattingEdits(uri DocumentUri) []TextEdit {
	doc, _ := h.documents.get(uri)
	lines := strings.Split(doc.Text, "\n")
	formatted := reformatDocument(doc.Text)

	edits := make([]TextEdit, 0)
	if formatted == doc.Text {
		return edits
	}
	edits = append(edits, TextEdit{
		Range: assembler.TextRange{
			Start: assembler.TextPosition{Line: 0, Char: 0},
			End:   assembler.TextPosition{Line: len(lines) - 1, Char: len(lines[len(lines)-1])},
		},
		NewText: formatted,
	})
	return edits
}

func (h handler) documentWillSaveWaitUntil(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentWillSaveWaitUntilParams{}
	if err := decodeParams(req, &decodedParams); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	conn.Reply(context.Background(), req.ID, h.formattingEdits(decodedParams.TextDocument.URI))
	util.LogF("Hack Language Server: reformatted document")
}

func (h handler) documentFormatting(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentFormattingParams{}
	if err := decodeParams(req, &decodedParams); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	conn.Reply(context.Background(), req.ID, h.formattingEdits(decodedParams.TextDocument.URI))
}
