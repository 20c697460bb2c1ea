package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTerminal(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/terminal"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readServerMessage(t *testing.T, conn *websocket.Conn) wsServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg wsServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestTerminalWS_Greeting(t *testing.T) {
	conn := dialTerminal(t, newTestServer(t, nil))
	greeting := readServerMessage(t, conn)
	if greeting.Type != wsTypeConnection {
		t.Errorf("first message type = %s, want connection", greeting.Type)
	}
	if greeting.Message == "" {
		t.Error("greeting should carry a message")
	}
}

func TestTerminalWS_Translate(t *testing.T) {
	conn := dialTerminal(t, newTestServer(t, nil))
	readServerMessage(t, conn) // greeting

	if err := conn.WriteJSON(wsClientMessage{Type: wsTypeTranslate, Text: "사랑"}); err != nil {
		t.Fatal(err)
	}
	msg := readServerMessage(t, conn)
	if msg.Type != wsTypeTranslation {
		t.Fatalf("type = %s, want translation (err: %s)", msg.Type, msg.Error)
	}
	if !strings.Contains(msg.Message, "사랑") {
		t.Errorf("translation frame missing original word: %s", msg.Message)
	}
	if !strings.Contains(msg.Message, "{{TYPING_START}}") {
		t.Error("translation frame should carry typing markers")
	}
}

func TestTerminalWS_TranslateUnknownLanguage(t *testing.T) {
	conn := dialTerminal(t, newTestServer(t, nil))
	readServerMessage(t, conn)

	if err := conn.WriteJSON(wsClientMessage{Type: wsTypeTranslate, Text: "hello world"}); err != nil {
		t.Fatal(err)
	}
	msg := readServerMessage(t, conn)
	if msg.Type != wsTypeError {
		t.Errorf("type = %s, want error for undetectable language", msg.Type)
	}

	// The connection survives the error.
	if err := conn.WriteJSON(wsClientMessage{Type: wsTypeTranslate, Text: "사랑"}); err != nil {
		t.Fatal(err)
	}
	if msg := readServerMessage(t, conn); msg.Type != wsTypeTranslation {
		t.Errorf("follow-up type = %s, want translation", msg.Type)
	}
}

func TestTerminalWS_ModePersistsAcrossMessages(t *testing.T) {
	conn := dialTerminal(t, newTestServer(t, nil))
	readServerMessage(t, conn)

	// Force korean mode via a command.
	if err := conn.WriteJSON(wsClientMessage{Type: wsTypeCommand, Text: "/mode korean"}); err != nil {
		t.Fatal(err)
	}
	if msg := readServerMessage(t, conn); msg.Type != wsTypeCommandResult {
		t.Fatalf("mode command: type = %s", msg.Type)
	}

	// English text would be unknown in auto mode; forced korean translates it.
	if err := conn.WriteJSON(wsClientMessage{Type: wsTypeTranslate, Text: "hello", Mode: "session"}); err != nil {
		t.Fatal(err)
	}
	if msg := readServerMessage(t, conn); msg.Type != wsTypeTranslation {
		t.Errorf("forced mode translate: type = %s (err: %s)", msg.Type, msg.Error)
	}
}

func TestTerminalWS_Commands(t *testing.T) {
	conn := dialTerminal(t, newTestServer(t, nil))
	readServerMessage(t, conn)

	if err := conn.WriteJSON(wsClientMessage{Type: wsTypeCommand, Text: "/help"}); err != nil {
		t.Fatal(err)
	}
	msg := readServerMessage(t, conn)
	if msg.Type != wsTypeCommandResult {
		t.Fatalf("type = %s, want command_result", msg.Type)
	}
	if !strings.Contains(msg.Message, "/mode") {
		t.Errorf("help frame missing command list: %s", msg.Message)
	}

	if err := conn.WriteJSON(wsClientMessage{Type: wsTypeCommand, Text: "/clear"}); err != nil {
		t.Fatal(err)
	}
	msg = readServerMessage(t, conn)
	if !strings.Contains(msg.Message, "{{CLEAR_SCREEN}}") {
		t.Errorf("clear frame missing marker: %s", msg.Message)
	}

	// Invalid command still comes back as a command_result error frame.
	if err := conn.WriteJSON(wsClientMessage{Type: wsTypeCommand, Text: "/frobnicate"}); err != nil {
		t.Fatal(err)
	}
	msg = readServerMessage(t, conn)
	if msg.Type != wsTypeCommandResult || !strings.Contains(msg.Message, "ERROR") {
		t.Errorf("invalid command frame: %+v", msg)
	}

	// Non-command text through the command channel is an error.
	if err := conn.WriteJSON(wsClientMessage{Type: wsTypeCommand, Text: "hello"}); err != nil {
		t.Fatal(err)
	}
	if msg := readServerMessage(t, conn); msg.Type != wsTypeError {
		t.Errorf("non-command text: type = %s, want error", msg.Type)
	}
}

func TestTerminalWS_Stats(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.chats.CreateSession("사랑")
	conn := dialTerminal(t, srv)
	readServerMessage(t, conn)

	if err := conn.WriteJSON(wsClientMessage{Type: wsTypeGetStats}); err != nil {
		t.Fatal(err)
	}
	msg := readServerMessage(t, conn)
	if msg.Type != wsTypeStats {
		t.Fatalf("type = %s, want stats", msg.Type)
	}
	data, ok := msg.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("stats data: %+v", msg.Data)
	}
	for _, key := range []string{"vocabulary", "chat", "bookmarks"} {
		if _, ok := data[key]; !ok {
			t.Errorf("stats missing %q section", key)
		}
	}
}

func TestTerminalWS_MalformedJSON(t *testing.T) {
	conn := dialTerminal(t, newTestServer(t, nil))
	readServerMessage(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	msg := readServerMessage(t, conn)
	if msg.Type != wsTypeError {
		t.Errorf("malformed json: type = %s, want error", msg.Type)
	}

	// Missing type field is its own error; the connection stays open.
	if err := conn.WriteJSON(wsClientMessage{Text: "사랑"}); err != nil {
		t.Fatal(err)
	}
	if msg := readServerMessage(t, conn); msg.Type != wsTypeError {
		t.Errorf("missing type: got %s, want error", msg.Type)
	}
}
