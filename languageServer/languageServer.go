package languageServer

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
	jsonrpc2websocket "github.com/sourcegraph/jsonrpc2/websocket"

	"github.com/Joiy908/Nand2Tetris/assembler"
	"github.com/Joiy908/Nand2Tetris/util"
)

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

// ListenAndServe serves one client over stdin and stdout until it disconnects.
func ListenAndServe(config assembler.AssemblerConfig) {
	h := newHandler(config)
	<-jsonrpc2.NewConn(context.Background(), jsonrpc2.NewBufferedStream(stdrwc{}, jsonrpc2.VSCodeObjectCodec{}), h).DisconnectNotify()
}

// ListenAndServeTCP accepts clients on addr so the server can be debugged remotely. Every connection
// gets its own set of open documents.
func ListenAndServeTCP(addr string, config assembler.AssemblerConfig) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer lis.Close()

	glog.Infoln("Hack Language Server: listening for TCP connections on", addr)

	connectionCount := 0
	for {
		conn, err := lis.Accept()
		if err != nil {
			return err
		}
		connectionCount = connectionCount + 1
		connectionID := connectionCount
		glog.Infof("Hack Language Server: received incoming connection #%d", connectionID)

		jsonrpc2Connection := jsonrpc2.NewConn(context.Background(), jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{}), newHandler(config))
		go func() {
			<-jsonrpc2Connection.DisconnectNotify()
			glog.Infof("Hack Language Server: connection #%d closed", connectionID)
		}()
	}
}

// NewWebsocketHandler serves the language server to browser editors, one JSON-RPC message per
// websocket message.
func NewWebsocketHandler(config assembler.AssemblerConfig) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			glog.Warningln(err)
			return
		}

		glog.Infof("Hack Language Server: websocket connection from %s", r.RemoteAddr)
		jsonrpc2Connection := jsonrpc2.NewConn(context.Background(), jsonrpc2websocket.NewObjectStream(conn), newHandler(config))
		<-jsonrpc2Connection.DisconnectNotify()
		glog.Infof("Hack Language Server: websocket connection from %s closed", r.RemoteAddr)
	})
}

type handler struct {
	documents *documentStore
	config    assembler.AssemblerConfig
}

func newHandler(config assembler.AssemblerConfig) handler {
	return handler{documents: newDocumentStore(), config: config}
}

func (h handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	util.LogF("Hack Language Server: received request: %s", req.Method)
	switch req.Method {
	case "textDocument/didOpen":
		h.documentOpenNotification(conn, req)
	case "textDocument/didClose":
		h.documentCloseNotification(conn, req)
	case "textDocument/didChange":
		h.documentChangeNotification(conn, req)
	case "initialize":
		handleInitialize(conn, req)
	case "initialized":
	case "textDocument/diagnostic":
		h.documentDiagnostics(conn, req)
	case "textDocument/willSaveWaitUntil":
		h.documentWillSaveWaitUntil(conn, req)
	case "textDocument/formatting":
		h.documentFormatting(conn, req)
	case "textDocument/hover":
		h.hoverRequest(conn, req)

	// quitting
	case "shutdown":
		conn.Reply(context.Background(), req.ID, nil)
	case "exit":
		conn.Close()

	default:
		if !req.Notif {
			rpcErr := jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not supported: " + req.Method}
			conn.ReplyWithError(context.Background(), req.ID, &rpcErr)
		}
	}
}

func replyInvalidParams(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Notif {
		return
	}
	rpcErr := jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "invalid parameters"}
	conn.ReplyWithError(context.Background(), req.ID, &rpcErr)
}

func decodeParams(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return errors.New("missing params")
	}
	return json.Unmarshal(*req.Params, v)
}

func handleInitialize(conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := InitializeParams{}
	if err := decodeParams(req, &decodedParams); err != nil {
		replyInvalidParams(conn, req)
		return
	}

	if decodedParams.ClientInfo != nil {
		glog.Infof("Hack Language Server: initializing for %s %s", decodedParams.ClientInfo.Name, decodedParams.ClientInfo.Version)
	}

	result := InitializeResult{}
	result.ServerInfo.Name = "hackasm"
	result.Capabilities.TextDocumentSync = TextDocumentSyncFull
	result.Capabilities.HoverProvider = true
	result.Capabilities.DocumentFormattingProvider = true
	conn.Reply(context.Background(), req.ID, result)

	registerRemainingCapabilities(conn)
}

func registerRemainingCapabilities(conn *jsonrpc2.Conn) {
	// textDocumentSync.willSaveWaitUntil has to be registered dynamically
	util.LogF("Hack Language Server: registering remaining capabilities")
	params := RegistrationParams{
		Registrations: []Registration{
			{
				ID:     "textDocumentSync.willSaveWaitUntil",
				Method: "textDocument/willSaveWaitUntil",
				RegisterOptions: TextDocumentRegistrationOptions{
					DocumentSelector: []DocumentFilter{
						{
							Scheme:   "file",
							Language: languageID,
						},
					},
				},
			},
		},
	}

	go conn.Call(context.Background(), "client/registerCapability", params, nil)
}
