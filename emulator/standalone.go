package emulator

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"

	"github.com/Joiy908/Nand2Tetris/assembler"
	"github.com/Joiy908/Nand2Tetris/config"
)

// The standalone runner serves a page with an editor, the 512x256 screen and a console. The page talks
// to the server over a websocket at /ws with these messages:
// - assemble: assemble the given source and reply with the words and diagnostics
// - run: assemble and run the given source, or the file the server was started with
// - stop: stop the running program
// - keyboard: set the key code seen at KBD

type clientMessage struct {
	Type   string `json:"type"`
	Source string `json:"source"`
	Key    uint16 `json:"key"`
}

type consoleMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type assembledMessage struct {
	Type        string                 `json:"type"`
	Words       []uint16               `json:"words"`
	Diagnostics []assembler.Diagnostic `json:"diagnostics"`
}

type displayMessage struct {
	Type   string `json:"type"`
	Data   string `json:"data"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type stateMessage struct {
	Type  string   `json:"type"`
	State State    `json:"state"`
	RAM   []uint16 `json:"ram"`
	Error string   `json:"error,omitempty"`
}

type standaloneSession struct {
	conn         *websocket.Conn
	wsMutex      sync.Mutex
	conf         config.Config
	assemblyPath string

	emMutex sync.Mutex
	emInst  *EmulatorInstance
}

func (s *standaloneSession) send(v interface{}) {
	messageBytes, e := json.Marshal(v)
	if e != nil {
		glog.Errorf("Could not marshal message: %v", e)
		return
	}

	s.wsMutex.Lock()
	defer s.wsMutex.Unlock()
	if e := s.conn.WriteMessage(websocket.TextMessage, messageBytes); e != nil {
		glog.Warningf("Could not write to websocket: %v", e)
	}
}

func (s *standaloneSession) console(format string, args ...interface{}) {
	s.send(consoleMessage{Type: "console", Text: fmt.Sprintf(format, args...)})
}

func (s *standaloneSession) source(msg clientMessage) (string, string, error) {
	if msg.Source != "" || s.assemblyPath == "" {
		return msg.Source, "editor", nil
	}
	b, e := os.ReadFile(s.assemblyPath)
	if e != nil {
		return "", "", fmt.Errorf("could not read assembly file: %w", e)
	}
	return string(b), filepath.Base(s.assemblyPath), nil
}

func (s *standaloneSession) assemble(msg clientMessage) (*assembler.AssembledResult, string, bool) {
	source, name, e := s.source(msg)
	if e != nil {
		s.console("%v\n", e)
		return nil, name, false
	}
	res := assembler.Analyze(source, s.conf.Assembler())
	s.send(assembledMessage{Type: "assembled", Words: res.ProgramText, Diagnostics: res.Diagnostics})
	return res, name, !res.HasErrors()
}

func (s *standaloneSession) run(msg clientMessage) {
	res, name, ok := s.assemble(msg)
	if res == nil {
		return
	}
	if !ok {
		builder := strings.Builder{}
		builder.WriteByte('\n')
		for _, diag := range res.Diagnostics {
			if diag.Severity != assembler.Error {
				continue
			}
			builder.WriteString(fmt.Sprintf("\t%s:%d:%d: %s\n", name, diag.Range.Start.Line+1, diag.Range.Start.Char, diag.Message))
		}
		s.console("Could not assemble %s: %s", name, builder.String())
		return
	}

	emulator := NewEmulator(EmulatorConfig{
		Program:      res.ProgramText,
		RuntimeLimit: s.conf.CycleLimit,
		RuntimeErrorCallback: func(e RuntimeException) {
			s.console("Runtime exception: %s\n", e.Error())
		},
	})

	s.emMutex.Lock()
	if s.emInst != nil {
		s.emInst.Terminate()
	}
	s.emInst = emulator
	s.emMutex.Unlock()

	s.console("Running %s (%d instructions)\n", name, len(res.ProgramText))

	done := make(chan struct{})
	go s.watchDisplay(emulator, done)
	emulator.Emulate()
	close(done)

	s.sendDisplay(emulator)
	s.sendState(emulator)
	s.console("Emulator completed after %d instructions\n", emulator.GetTotalInstructionsExecuted())
}

func (s *standaloneSession) watchDisplay(emulator *EmulatorInstance, done <-chan struct{}) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	prevWrites := int64(0)
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if writes := emulator.display.Writes(); writes != prevWrites {
				prevWrites = writes
				s.sendDisplay(emulator)
			}
		}
	}
}

func (s *standaloneSession) sendDisplay(emulator *EmulatorInstance) {
	display := emulator.GetDisplay()
	display.dataMutex.Lock()
	dBytes := make([]byte, 0, len(display.data)*2)
	// each word goes out low byte first
	for _, word := range display.data {
		dBytes = append(dBytes, byte(word), byte(word>>8))
	}
	display.dataMutex.Unlock()

	s.send(displayMessage{
		Type:   "display",
		Data:   base64.StdEncoding.EncodeToString(dBytes),
		Width:  ScreenWidth,
		Height: ScreenHeight,
	})
}

func (s *standaloneSession) sendState(emulator *EmulatorInstance) {
	msg := stateMessage{Type: "state", State: emulator.GetState(), RAM: make([]uint16, 16)}
	for i := range msg.RAM {
		msg.RAM[i] = emulator.ReadRAM(uint16(i))
	}
	if errs := emulator.GetErrors(); len(errs) > 0 {
		msg.Error = errs[len(errs)-1].Error()
	}
	s.send(msg)
}

func (s *standaloneSession) stop() {
	s.emMutex.Lock()
	defer s.emMutex.Unlock()
	if s.emInst != nil {
		s.emInst.Terminate()
	}
}

func (s *standaloneSession) keyboard(code uint16) {
	s.emMutex.Lock()
	defer s.emMutex.Unlock()
	if s.emInst != nil {
		s.emInst.SetKeyboard(code)
	}
}

// NewStandaloneHandler serves the runner page and its websocket. assemblyPath is the program run
// when the page sends no source of its own; it may be empty.
func NewStandaloneHandler(assemblyPath string, conf config.Config) *http.ServeMux {
	var upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	handler := func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			glog.Warningln(err)
			return
		}
		defer conn.Close()

		session := &standaloneSession{conn: conn, conf: conf, assemblyPath: assemblyPath}

		// listen on conn for messages
		for {
			_, messageBytes, err := conn.ReadMessage()
			if err != nil {
				glog.V(1).Infoln("read:", err)
				session.stop()
				break
			}

			var message clientMessage
			if err := json.Unmarshal(messageBytes, &message); err != nil {
				glog.Warningln("json:", err)
				break
			}

			switch message.Type {
			case "assemble":
				session.assemble(message)
			case "run":
				go session.run(message)
			case "stop":
				session.stop()
			case "keyboard":
				session.keyboard(message.Key)
			default:
				glog.Warningf("Unknown message type: %s", message.Type)
			}
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler)
	mux.HandleFunc("/", handleGetPage)
	return mux
}

// RunStandaloneWebserver blocks serving the runner on addr. extra mounts more handlers next to the
// runner, keyed by pattern.
func RunStandaloneWebserver(addr string, assemblyPath string, conf config.Config, extra map[string]http.Handler) error {
	mux := NewStandaloneHandler(assemblyPath, conf)
	for pattern, h := range extra {
		mux.Handle(pattern, h)
	}
	glog.Infof("Connect to the emulator at http://localhost%s", addr)
	return http.ListenAndServe(addr, mux)
}

func handleGetPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(htmlPage))
}

var htmlPage = `<html>
<head>
	<title>Hack Emulator</title>
</head>
<body style="background-color: #1E1E1E;">
	<h1 style="color: white; display: inline-block;">Hack Emulator</h1>
	<button id="runButton" style="margin-left: 50px; height: 40px; width: 80px;">RUN</button>
	<button id="stopButton" style="margin-left: 10px; height: 40px; width: 80px;">STOP</button>
	<br/>
	<textarea id="source" spellcheck="false" style="width: 400px; height: 512px; vertical-align: top; font-family: monospace; background-color: black; color: white;"></textarea>
	<canvas width="512" height="256" style="border: 2px solid white; width: 1024px; height: 512px; image-rendering: pixelated;" id="display" tabindex="0"></canvas>
	<h2 style="color: white;">Console</h2>
	<div style="width: 1420px; padding: 10px; color: white; font-size: 1.2em; font-family: monospace; background-color: black; height: 300px; overflow-y: auto; border: 2px solid white;" id="console"></div>

	<script>
		var socket = new WebSocket("ws://" + window.location.host + "/ws");
		var consoleText = "";

		function draw(data) {
			let canvas = document.getElementById("display");
			var raw = window.atob(data.data);
			var ctx = canvas.getContext("2d");
			var imageData = ctx.createImageData(data.width, data.height);
			for (var w = 0; w < raw.length / 2; w++) {
				var word = raw.charCodeAt(w * 2) | (raw.charCodeAt(w * 2 + 1) << 8);
				for (var bit = 0; bit < 16; bit++) {
					var p = (w * 16 + bit) * 4;
					var v = (word >> bit) & 1 ? 0 : 255;
					imageData.data[p + 0] = v;
					imageData.data[p + 1] = v;
					imageData.data[p + 2] = v;
					imageData.data[p + 3] = 255;
				}
			}
			ctx.putImageData(imageData, 0, 0);
		}

		socket.onopen = function() {
			socket.onmessage = function(event) {
				var data = JSON.parse(event.data);
				if (data.type == "console") {
					consoleText += data.text.replaceAll("\n", "<br/>").replaceAll("\t", "&nbsp;&nbsp;&nbsp;&nbsp;");
					document.getElementById("console").innerHTML = consoleText;
				} else if (data.type == "display") {
					draw(data);
				} else if (data.type == "state") {
					consoleText += "A=" + data.state.a + " D=" + data.state.d + " PC=" + data.state.pc + "<br/>";
					consoleText += "RAM[0..15]=" + data.ram.join(" ") + "<br/>";
					document.getElementById("console").innerHTML = consoleText;
				}
			};
		};

		document.getElementById("runButton").onclick = function() {
			consoleText = "";
			socket.send(JSON.stringify({
				type: "run",
				source: document.getElementById("source").value
			}));
		};

		document.getElementById("stopButton").onclick = function() {
			socket.send(JSON.stringify({type: "stop"}));
		};

		var display = document.getElementById("display");
		display.onkeydown = function(e) {
			var code = e.key.length == 1 ? e.key.charCodeAt(0) : 0;
			socket.send(JSON.stringify({type: "keyboard", key: code}));
			e.preventDefault();
		};
		display.onkeyup = function() {
			socket.send(JSON.stringify({type: "keyboard", key: 0}));
		};
	</script>
</body>
</html>`
