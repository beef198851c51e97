// Package hosttest provides an in-process fake of the host process for
// protocol tests.
package hosttest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/1broseidon/winbridge/internal/channel"
	"github.com/1broseidon/winbridge/internal/platform"
)

// Received is one message the host got from the controller.
type Received struct {
	Event string
	Args  []json.RawMessage
}

// Window is the host-side state of a created window.
type Window struct {
	ID      int
	Bounds  platform.Rect
	URL     string
	Focused bool
	Options map[string]any
}

// Host answers the manager-level protocol. Created windows get sequential
// ids starting at 1, and closing a window emits a fresh live-id report.
type Host struct {
	ch channel.Channel

	mu       sync.Mutex
	nextID   int
	manual   bool
	created  func(id int) any
	received []Received
	windows  map[int]*Window
	order    []int
	views    []int
	answers  map[string]func(id int, args []json.RawMessage) any
}

// New installs the fake host on ch.
func New(ch channel.Channel) *Host {
	h := &Host{
		ch:      ch,
		nextID:  1,
		windows: make(map[int]*Window),
		answers: make(map[string]func(int, []json.RawMessage) any),
	}
	ch.On("createBrowserWindow", h.record("createBrowserWindow", h.createWindow))
	ch.On("createBrowserView", h.record("createBrowserView", h.createView))
	ch.On("quit-app-window-all-closed-event", h.record("quit-app-window-all-closed-event", nil))
	for _, ev := range []string{"browserWindowClose", "browserWindowDestroy"} {
		ch.On(ev, h.record(ev, h.closeWindow))
	}
	ch.On("browserWindowFocus", h.record("browserWindowFocus", h.focusWindow))
	ch.On("browserWindowSetBounds", h.record("browserWindowSetBounds", h.setBounds))
	ch.On("browserWindowGetBounds", h.record("browserWindowGetBounds", h.getBounds))
	return h
}

// NewPipe returns a controller channel connected to a new fake host.
func NewPipe() (*channel.PipeEnd, *Host) {
	controller, host := channel.Pipe(nil)
	return controller, New(host)
}

// Serve starts a WebSocket endpoint that attaches a fake host to each
// connection. The returned URL can be passed to channel.Dial. Hosts are
// delivered on the channel as connections arrive.
func Serve(t testing.TB) (string, <-chan *Host) {
	t.Helper()
	hosts := make(chan *Host, 4)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		sock := channel.NewSocket(conn, channel.Options{})
		t.Cleanup(func() { sock.Close() })
		hosts <- New(sock)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), hosts
}

// Manual stops automatic creation responses; use RespondCreated instead.
func (h *Host) Manual() {
	h.mu.Lock()
	h.manual = true
	h.mu.Unlock()
}

// RespondWith replaces the window creation response payload with fn's
// result for the allocated id.
func (h *Host) RespondWith(fn func(id int) any) {
	h.mu.Lock()
	h.created = fn
	h.mu.Unlock()
}

// Answer makes the host respond to query event with fn's result on the
// id-scoped completion event.
func (h *Host) Answer(event string, fn func(id int, args []json.RawMessage) any) {
	h.mu.Lock()
	h.answers[event] = fn
	h.mu.Unlock()
	h.ch.Off(event)
	h.ch.On(event, h.record(event, func(args []json.RawMessage) {
		id := firstID(args)
		h.mu.Lock()
		answer := h.answers[event]
		h.mu.Unlock()
		_ = h.ch.Emit(event+"-completed"+strconv.Itoa(id), answer(id, args))
	}))
}

// Close drops the host's end of the connection.
func (h *Host) Close() error {
	if c, ok := h.ch.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Listen records every message tagged event.
func (h *Host) Listen(event string) {
	h.ch.On(event, h.record(event, nil))
}

// Emit sends an event to the controller.
func (h *Host) Emit(event string, args ...any) error {
	return h.ch.Emit(event, args...)
}

// RespondCreated sends a window creation response with id.
func (h *Host) RespondCreated(id int) error {
	return h.ch.Emit("BrowserWindowCreated", id)
}

// ReportAlive sends the live window id set.
func (h *Host) ReportAlive(ids ...int) error {
	if ids == nil {
		ids = []int{}
	}
	return h.ch.Emit("BrowserWindowClosed", ids)
}

// Received returns every recorded message tagged event.
func (h *Host) Received(event string) []Received {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Received
	for _, r := range h.received {
		if r.Event == event {
			out = append(out, r)
		}
	}
	return out
}

// WaitReceived polls until n messages tagged event were recorded.
func (h *Host) WaitReceived(t testing.TB, event string, n int) []Received {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		got := h.Received(event)
		if len(got) >= n {
			return got
		}
		if time.Now().After(deadline) {
			t.Fatalf("host received %d %q messages, want %d", len(got), event, n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Window returns the host state of window id.
func (h *Host) Window(id int) (Window, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	w, ok := h.windows[id]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// Alive returns the live window ids in creation order.
func (h *Host) Alive() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int{}, h.order...)
}

func (h *Host) record(event string, next func(args []json.RawMessage)) channel.Handler {
	return func(args []json.RawMessage) {
		h.mu.Lock()
		h.received = append(h.received, Received{Event: event, Args: args})
		h.mu.Unlock()
		if next != nil {
			next(args)
		}
	}
}

func (h *Host) createWindow(args []json.RawMessage) {
	w := &Window{Options: map[string]any{}}
	if len(args) > 0 {
		_ = json.Unmarshal(args[0], &w.Options)
		var r platform.Rect
		_ = json.Unmarshal(args[0], &r)
		w.Bounds = r
	}
	if len(args) > 1 {
		_ = json.Unmarshal(args[1], &w.URL)
	}

	h.mu.Lock()
	w.ID = h.nextID
	h.nextID++
	h.windows[w.ID] = w
	h.order = append(h.order, w.ID)
	manual, created := h.manual, h.created
	h.mu.Unlock()

	switch {
	case manual:
	case created != nil:
		_ = h.ch.Emit("BrowserWindowCreated", created(w.ID))
	default:
		_ = h.ch.Emit("BrowserWindowCreated", w.ID)
	}
}

func (h *Host) createView(args []json.RawMessage) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.views = append(h.views, id)
	manual := h.manual
	h.mu.Unlock()

	if !manual {
		_ = h.ch.Emit("BrowserViewCreated", id)
	}
}

func (h *Host) closeWindow(args []json.RawMessage) {
	id := firstID(args)
	h.mu.Lock()
	if _, ok := h.windows[id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.windows, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	alive := append([]int{}, h.order...)
	h.mu.Unlock()

	_ = h.ch.Emit("BrowserWindowClosed", alive)
}

func (h *Host) focusWindow(args []json.RawMessage) {
	id := firstID(args)
	h.mu.Lock()
	defer h.mu.Unlock()
	for wid, w := range h.windows {
		w.Focused = wid == id
	}
}

func (h *Host) setBounds(args []json.RawMessage) {
	id := firstID(args)
	if len(args) < 2 {
		return
	}
	var r platform.Rect
	if err := json.Unmarshal(args[1], &r); err != nil {
		return
	}
	h.mu.Lock()
	if w, ok := h.windows[id]; ok {
		w.Bounds = r
	}
	h.mu.Unlock()
}

func (h *Host) getBounds(args []json.RawMessage) {
	id := firstID(args)
	h.mu.Lock()
	var r platform.Rect
	if w, ok := h.windows[id]; ok {
		r = w.Bounds
	}
	h.mu.Unlock()
	_ = h.ch.Emit("browserWindowGetBounds-completed"+strconv.Itoa(id), r)
}

func firstID(args []json.RawMessage) int {
	if len(args) == 0 {
		return 0
	}
	var id int
	_ = json.Unmarshal(args[0], &id)
	return id
}
