package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/goleak"
)

type wsMsg struct {
	Type    string   `json:"type"`
	Text    string   `json:"text,omitempty"`
	Options []string `json:"options,omitempty"`
	Picked  *string  `json:"picked,omitempty"`
	History []string `json:"history,omitempty"`
}

func dialWS(t *testing.T, srv *httptest.Server, path string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	return websocket.DefaultDialer.Dial(wsURL, nil)
}

func readMsg(t *testing.T, conn *websocket.Conn) wsMsg {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMsg
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return msg
}

func TestWSNotFound(t *testing.T) {
	srv := newTestServer(t)

	_, resp, err := dialWS(t, srv, "/api/boards/nonexistent/ws")
	if err == nil {
		t.Fatal("expected error connecting to nonexistent board")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", resp)
	}
}

func TestWSInitialState(t *testing.T) {
	env := newTestEnv(t)

	b, err := env.boards.Create("state-test")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b.SetOptions("Hockey\nRugby")
	b.Pick()

	conn, _, err := dialWS(t, env.srv, "/api/boards/"+b.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()

	msg := readMsg(t, conn)
	if msg.Type != "state" {
		t.Fatalf("expected 'state', got %q", msg.Type)
	}
	if strings.Join(msg.Options, ",") != "Hockey,Rugby" {
		t.Fatalf("unexpected options %v", msg.Options)
	}
	if msg.Picked == nil || *msg.Picked != "Hockey" {
		t.Fatalf("expected picked 'Hockey', got %v", msg.Picked)
	}
	if len(msg.History) != 1 {
		t.Fatalf("expected 1 history entry, got %v", msg.History)
	}
}

func TestWSOptionsAndPickRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	b, _ := env.boards.Create("round-trip")

	conn, _, err := dialWS(t, env.srv, "/api/boards/"+b.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()
	readMsg(t, conn) // state

	if err := conn.WriteJSON(wsMsg{Type: "options", Text: "\nHockey\nRugby\n\n\nTennis\n"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	msg := readMsg(t, conn)
	if msg.Type != "options" || strings.Join(msg.Options, ",") != "Hockey,Rugby,Tennis" {
		t.Fatalf("unexpected options message %+v", msg)
	}

	if err := conn.WriteJSON(wsMsg{Type: "pick"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	msg = readMsg(t, conn)
	if msg.Type != "picked" || msg.Picked == nil || *msg.Picked != "Hockey" {
		t.Fatalf("unexpected picked message %+v", msg)
	}
}

func TestWSPickEmptyBoard(t *testing.T) {
	env := newTestEnv(t)
	b, _ := env.boards.Create("empty")

	conn, _, err := dialWS(t, env.srv, "/api/boards/"+b.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()
	readMsg(t, conn) // state

	conn.WriteJSON(wsMsg{Type: "pick"})
	msg := readMsg(t, conn)
	if msg.Type != "picked" || msg.Picked != nil {
		t.Fatalf("expected blank pick, got %+v", msg)
	}
}

func TestWSBroadcastsRESTChanges(t *testing.T) {
	env := newTestEnv(t)
	b, _ := env.boards.Create("broadcast")

	watchers := make([]*websocket.Conn, 2)
	for i := range watchers {
		conn, _, err := dialWS(t, env.srv, "/api/boards/"+b.ID+"/ws")
		if err != nil {
			t.Fatalf("WS dial %d: %v", i, err)
		}
		defer conn.Close()
		readMsg(t, conn) // state
		watchers[i] = conn
	}

	resp := do(t, http.MethodPut, env.srv.URL+"/api/boards/"+b.ID+"/options", `{"text":"Tennis"}`)
	resp.Body.Close()

	for i, conn := range watchers {
		msg := readMsg(t, conn)
		if msg.Type != "options" || strings.Join(msg.Options, ",") != "Tennis" {
			t.Fatalf("watcher %d: unexpected message %+v", i, msg)
		}
	}
}

func TestWSClosedOnDelete(t *testing.T) {
	env := newTestEnv(t)
	b, _ := env.boards.Create("close-test")

	conn, _, err := dialWS(t, env.srv, "/api/boards/"+b.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()
	readMsg(t, conn) // state

	env.boards.Delete(b.ID)

	if msg := readMsg(t, conn); msg.Type != "closed" {
		t.Fatalf("expected 'closed' message, got %q", msg.Type)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the connection to be closed after 'closed'")
	}
}

func TestWSOversizedMessageClosesConnection(t *testing.T) {
	env := newTestEnv(t)
	b, _ := env.boards.Create("oversized")

	conn, _, err := dialWS(t, env.srv, "/api/boards/"+b.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()
	readMsg(t, conn) // state

	// The server may close the connection before the whole frame is sent, so
	// a write error is as good as a read error here.
	huge := strings.Repeat("a", 2<<20)
	_ = conn.WriteJSON(wsMsg{Type: "options", Text: huge})
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMsg
	if err := conn.ReadJSON(&msg); err == nil {
		t.Fatalf("expected connection to be closed, got %+v", msg)
	}
	if opts := b.Snapshot().Options; len(opts) != 0 {
		t.Fatalf("oversized message must not reach the board, got %d options", len(opts))
	}
}

func TestWSUnknownMessageIgnored(t *testing.T) {
	env := newTestEnv(t)
	b, _ := env.boards.Create("unknown")

	conn, _, err := dialWS(t, env.srv, "/api/boards/"+b.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()
	readMsg(t, conn) // state

	if err := conn.WriteJSON(wsMsg{Type: "resize"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if err := conn.WriteJSON(wsMsg{Type: "options", Text: "a"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if msg := readMsg(t, conn); msg.Type != "options" {
		t.Fatalf("expected connection to stay usable, got %+v", msg)
	}
}

func TestWSUnwatchOnDisconnect(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	env := newTestEnv(t)
	b, _ := env.boards.Create("disconnect")

	conn, _, err := dialWS(t, env.srv, "/api/boards/"+b.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	readMsg(t, conn) // state
	if n := b.Snapshot().Watchers; n != 1 {
		t.Fatalf("expected 1 watcher, got %d", n)
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.Snapshot().Watchers == 0 {
			env.srv.CloseClientConnections()
			env.srv.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("watcher was not removed after disconnect")
}
