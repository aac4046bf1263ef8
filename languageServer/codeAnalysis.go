package languageServer

import (
	"context"

	"github.com/sourcegraph/jsonrpc2"
)

func (h handler) hoverRequest(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := TextDocumentPositionParams{}
	if err := decodeParams(req, &decodedParams); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	doc, ok := h.documents.get(decodedParams.TextDocument.URI)
	if !ok || doc.lastAssembledResult == nil {
		conn.Reply(context.Background(), req.ID, nil)
		return
	}
	text, ok := doc.lastAssembledResult.EvaluateHover(decodedParams.Position)
	if !ok {
		conn.Reply(context.Background(), req.ID, nil)
		return
	}

	conn.Reply(context.Background(), req.ID, Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: text,
		},
	})
}
