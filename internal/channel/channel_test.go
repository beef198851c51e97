package channel

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestEncodeDecodeMessage(t *testing.T) {
	data, err := EncodeMessage("createBrowserWindow", map[string]int{"width": 800}, "http://localhost:8000")
	if err != nil {
		t.Fatalf("EncodeMessage() error = %v", err)
	}
	want := `{"event":"createBrowserWindow","args":[{"width":800},"http://localhost:8000"]}`
	if string(data) != want {
		t.Fatalf("EncodeMessage() = %s, want %s", data, want)
	}

	msg, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	if msg.Event != "createBrowserWindow" || len(msg.Args) != 2 {
		t.Fatalf("DecodeMessage() = %+v", msg)
	}
}

func TestEncodeMessageNoArgsOmitsArgs(t *testing.T) {
	data, err := EncodeMessage("browserWindowFocus")
	if err != nil {
		t.Fatalf("EncodeMessage() error = %v", err)
	}
	if string(data) != `{"event":"browserWindowFocus"}` {
		t.Fatalf("EncodeMessage() = %s", data)
	}
}

func TestDecodeMessageRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "hello"},
		{name: "missing event", data: `{"args":[1]}`},
		{name: "empty event", data: `{"event":"","args":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeMessage([]byte(tt.data)); err == nil {
				t.Fatalf("DecodeMessage(%q) expected error", tt.data)
			}
		})
	}
}

func TestEncodeMessageRejectsEmptyName(t *testing.T) {
	if _, err := EncodeMessage(""); err == nil {
		t.Fatalf("EncodeMessage(\"\") expected error")
	}
}

// collector gathers int payloads delivered to a handler.
type collector struct {
	mu   sync.Mutex
	got  []int
	gotC chan struct{}
}

func newCollector() *collector {
	return &collector{gotC: make(chan struct{}, 1024)}
}

func (c *collector) handler(args []json.RawMessage) {
	var v int
	if len(args) > 0 {
		_ = json.Unmarshal(args[0], &v)
	}
	c.mu.Lock()
	c.got = append(c.got, v)
	c.mu.Unlock()
	c.gotC <- struct{}{}
}

func (c *collector) wait(t *testing.T, n int) []int {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-c.gotC:
		case <-timeout:
			t.Fatalf("received %d messages, want %d", i, n)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.got...)
}

func TestPipeDeliversInSendOrder(t *testing.T) {
	a, b := Pipe(nil)
	defer a.Close()

	c := newCollector()
	b.On("tick", c.handler)

	const n = 200
	for i := 0; i < n; i++ {
		if err := a.Emit("tick", i); err != nil {
			t.Fatalf("Emit() error = %v", err)
		}
	}

	got := c.wait(t, n)
	for i, v := range got {
		if v != i {
			t.Fatalf("message %d = %d, want %d", i, v, i)
		}
	}
}

func TestPipeHandlersRunInRegistrationOrder(t *testing.T) {
	a, b := Pipe(nil)
	defer a.Close()

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})
	b.On("ev", func([]json.RawMessage) {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	})
	b.On("ev", func([]json.RawMessage) {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
		close(done)
	})

	if err := a.Emit("ev"); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers did not run")
	}

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(order, ",") != "first,second" {
		t.Fatalf("order = %v, want [first second]", order)
	}
}

func TestPipeOffRemovesAllHandlersAndIsIdempotent(t *testing.T) {
	a, b := Pipe(nil)
	defer a.Close()

	removed := newCollector()
	b.On("gone", removed.handler)
	b.On("gone", removed.handler)
	b.Off("gone")
	b.Off("gone")

	// A marker on another name proves the earlier message was dispatched.
	marker := newCollector()
	b.On("marker", marker.handler)

	_ = a.Emit("gone", 1)
	_ = a.Emit("marker", 2)
	marker.wait(t, 1)

	removed.mu.Lock()
	defer removed.mu.Unlock()
	if len(removed.got) != 0 {
		t.Fatalf("removed handler ran %d times", len(removed.got))
	}
}

func TestPipeHandlerPanicDoesNotStopDispatch(t *testing.T) {
	a, b := Pipe(nil)
	defer a.Close()

	b.On("boom", func([]json.RawMessage) { panic("handler failure") })
	c := newCollector()
	b.On("after", c.handler)

	_ = a.Emit("boom")
	_ = a.Emit("after", 7)
	if got := c.wait(t, 1); got[0] != 7 {
		t.Fatalf("got %v, want [7]", got)
	}
}

func TestPipeCloseClosesBothEnds(t *testing.T) {
	a, b := Pipe(nil)
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	select {
	case <-a.Done():
	default:
		t.Fatal("peer end not done after Close")
	}
	if err := a.Emit("late"); err != ErrClosed {
		t.Fatalf("Emit() after close error = %v, want ErrClosed", err)
	}
	// Second close is a no-op.
	if err := a.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func newSocketPair(t *testing.T) (client *Socket, server *Socket) {
	t.Helper()
	serverC := make(chan *Socket, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverC <- NewSocket(conn, Options{})
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, err := Dial(t.Context(), url, Options{})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-serverC:
	case <-time.After(2 * time.Second):
		t.Fatal("server side never connected")
	}
	t.Cleanup(func() { server.Close() })
	return client, server
}

func TestSocketRoundTrip(t *testing.T) {
	client, server := newSocketPair(t)

	if client.ID() == "" || client.ID() == server.ID() {
		t.Fatalf("socket ids = %q, %q; want distinct non-empty", client.ID(), server.ID())
	}

	toServer := newCollector()
	server.On("ping", toServer.handler)
	toClient := newCollector()
	client.On("pong", toClient.handler)

	for i := 0; i < 50; i++ {
		if err := client.Emit("ping", i); err != nil {
			t.Fatalf("Emit() error = %v", err)
		}
	}
	got := toServer.wait(t, 50)
	for i, v := range got {
		if v != i {
			t.Fatalf("ping %d = %d, want %d", i, v, i)
		}
	}

	if err := server.Emit("pong", 42); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if got := toClient.wait(t, 1); got[0] != 42 {
		t.Fatalf("pong = %v, want [42]", got)
	}
}

func TestSocketPeerCloseEndsChannel(t *testing.T) {
	client, server := newSocketPair(t)

	if err := server.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	select {
	case <-client.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client not done after peer close")
	}
	if err := client.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil for a normal close", err)
	}
	if err := client.Emit("late"); err != ErrClosed {
		t.Fatalf("Emit() after close error = %v, want ErrClosed", err)
	}
}

func TestDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	if _, err := Dial(t.Context(), url, Options{}); err == nil {
		t.Fatal("Dial() to a non-websocket endpoint expected error")
	}
}
