package ipc

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/winbridge/internal/bridge"
	"github.com/1broseidon/winbridge/internal/config"
	"github.com/1broseidon/winbridge/internal/entities"
	"github.com/1broseidon/winbridge/internal/hosttest"
	"github.com/1broseidon/winbridge/internal/platform"
)

type fixture struct {
	host   *hosttest.Host
	mgr    *bridge.Manager
	server *Server
	client *Client
}

// shortSocketPath keeps unix socket paths under the sun_path limit.
func shortSocketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "wbipc")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func newFixture(t *testing.T, opts ServerOptions) *fixture {
	t.Helper()
	ch, host := hosttest.NewPipe()
	t.Cleanup(func() { ch.Close() })

	mgr := bridge.New(ch, bridge.Options{WebPort: 8000})
	t.Cleanup(mgr.Close)

	cfg := config.DefaultConfig()
	cfg.RequestTimeout = 2 * time.Second

	if opts.SocketPath == "" {
		opts.SocketPath = shortSocketPath(t)
	}
	if opts.Platform.Description == "" {
		opts.Platform = platform.Platform{OS: "linux", Description: "Linux test"}
	}
	srv, err := NewServer(cfg, mgr, opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)

	return &fixture{host: host, mgr: mgr, server: srv, client: NewClientWithPath(srv.SocketPath())}
}

func TestServer_StatusAndPing(t *testing.T) {
	f := newFixture(t, ServerOptions{})

	if err := f.client.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	status, err := f.client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.DaemonRunning || !status.Connected {
		t.Fatalf("status = %+v, want running and connected", status)
	}
	if status.Platform != "Linux test" {
		t.Fatalf("platform = %q", status.Platform)
	}
	if status.RequestTimeoutMillis != 2000 {
		t.Fatalf("request_timeout_ms = %d, want 2000", status.RequestTimeoutMillis)
	}
	if !status.QuitOnAllWindowsClosed {
		t.Fatalf("expected quit_on_all_windows_closed to default to true")
	}
}

func TestServer_StatusReportsHostLoss(t *testing.T) {
	done := make(chan struct{})
	f := newFixture(t, ServerOptions{HostDone: done})
	close(done)

	status, err := f.client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Connected {
		t.Fatalf("expected disconnected status after host loss")
	}
}

func TestServer_WindowLifecycle(t *testing.T) {
	f := newFixture(t, ServerOptions{})

	info, err := f.client.CreateWindow(entities.WindowOptions{Width: 640, Height: 480}, "")
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	if info.ID != 1 {
		t.Fatalf("window id = %d, want 1", info.ID)
	}
	hw, ok := f.host.Window(1)
	if !ok || hw.URL != "http://localhost:8000" {
		t.Fatalf("host window = %+v, %v", hw, ok)
	}

	if _, err := f.client.CreateWindow(entities.WindowOptions{}, "http://example.test/"); err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	windows, err := f.client.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if len(windows) != 2 || windows[0].ID != 1 || windows[1].ID != 2 {
		t.Fatalf("ListWindows() = %+v, want [1 2]", windows)
	}

	if err := f.client.FocusWindow(2); err != nil {
		t.Fatalf("FocusWindow: %v", err)
	}
	f.host.WaitReceived(t, "browserWindowFocus", 1)

	if err := f.client.CloseWindow(1, false); err != nil {
		t.Fatalf("CloseWindow: %v", err)
	}
	f.host.WaitReceived(t, "browserWindowClose", 1)

	deadline := time.Now().Add(2 * time.Second)
	for {
		windows, err = f.client.ListWindows()
		if err != nil {
			t.Fatalf("ListWindows: %v", err)
		}
		if len(windows) == 1 && windows[0].ID == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("ListWindows() = %+v after close, want [2]", windows)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := f.client.CloseWindow(2, true); err != nil {
		t.Fatalf("CloseWindow force: %v", err)
	}
	f.host.WaitReceived(t, "browserWindowDestroy", 1)
}

func TestServer_Bounds(t *testing.T) {
	f := newFixture(t, ServerOptions{})
	if _, err := f.client.CreateWindow(entities.WindowOptions{}, ""); err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	want := platform.Rect{X: 10, Y: 20, Width: 300, Height: 200}
	if err := f.client.SetBounds(1, want, false); err != nil {
		t.Fatalf("SetBounds: %v", err)
	}
	f.host.WaitReceived(t, "browserWindowSetBounds", 1)

	got, err := f.client.GetBounds(1)
	if err != nil {
		t.Fatalf("GetBounds: %v", err)
	}
	if got != want {
		t.Fatalf("GetBounds() = %+v, want %+v", got, want)
	}

	err = f.client.SetBounds(1, platform.Rect{Width: 0, Height: 10}, false)
	if err == nil || !strings.Contains(err.Error(), "must be > 0") {
		t.Fatalf("SetBounds zero width error = %v", err)
	}
}

func TestServer_UnknownWindow(t *testing.T) {
	f := newFixture(t, ServerOptions{})

	for name, call := range map[string]func() error{
		"focus": func() error { return f.client.FocusWindow(42) },
		"close": func() error { return f.client.CloseWindow(42, false) },
		"bounds": func() error {
			_, err := f.client.GetBounds(42)
			return err
		},
	} {
		err := call()
		if err == nil || !strings.Contains(err.Error(), "Unknown window: 42") {
			t.Fatalf("%s: error = %v, want unknown window", name, err)
		}
	}
}

func TestServer_CreateViewAttached(t *testing.T) {
	f := newFixture(t, ServerOptions{})
	f.host.Listen("browserWindow-setBrowserView")
	f.host.Listen("browserView-setBounds")

	if _, err := f.client.CreateWindow(entities.WindowOptions{}, ""); err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	bounds := platform.Rect{Width: 100, Height: 50}
	view, err := f.client.CreateView(CreateViewPayload{AttachTo: 1, Bounds: &bounds})
	if err != nil {
		t.Fatalf("CreateView: %v", err)
	}
	if view.ID != 2 {
		t.Fatalf("view id = %d, want 2", view.ID)
	}
	f.host.WaitReceived(t, "browserWindow-setBrowserView", 1)
	f.host.WaitReceived(t, "browserView-setBounds", 1)

	views, err := f.client.ListViews()
	if err != nil {
		t.Fatalf("ListViews: %v", err)
	}
	if len(views) != 1 || views[0].ID != 2 {
		t.Fatalf("ListViews() = %+v", views)
	}

	if _, err := f.client.CreateView(CreateViewPayload{AttachTo: 9}); err == nil {
		t.Fatalf("expected attaching to an unknown window to fail")
	}
}

func TestServer_SetQuitOnAllClosed(t *testing.T) {
	f := newFixture(t, ServerOptions{})

	if err := f.client.SetQuitOnAllClosed(false); err != nil {
		t.Fatalf("SetQuitOnAllClosed: %v", err)
	}
	f.host.WaitReceived(t, "quit-app-window-all-closed-event", 1)

	status, err := f.client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.QuitOnAllWindowsClosed {
		t.Fatalf("expected quit flag to be false")
	}
}

func TestServer_Reload(t *testing.T) {
	reloaded := make(chan struct{}, 1)
	next := config.DefaultConfig()
	next.RequestTimeout = 5 * time.Second
	f := newFixture(t, ServerOptions{
		Reload:     reloaded,
		LoadConfig: func() (*config.Config, error) { return next, nil },
	})

	if err := f.client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	select {
	case <-reloaded:
	default:
		t.Fatalf("expected reload notification")
	}
	if f.server.GetConfig().RequestTimeout != 5*time.Second {
		t.Fatalf("request_timeout not reloaded: %v", f.server.GetConfig().RequestTimeout)
	}
}

func TestServer_ReloadFailureKeepsConfig(t *testing.T) {
	f := newFixture(t, ServerOptions{
		LoadConfig: func() (*config.Config, error) { return nil, errors.New("bad yaml") },
	})
	before := f.server.GetConfig()

	err := f.client.Reload()
	if err == nil || !strings.Contains(err.Error(), "bad yaml") {
		t.Fatalf("Reload error = %v", err)
	}
	if f.server.GetConfig() != before {
		t.Fatalf("config replaced after failed reload")
	}
}

func TestServer_RejectsBadRequests(t *testing.T) {
	f := newFixture(t, ServerOptions{})

	for _, line := range []string{"not json\n", "{}\n", `{"command":"EXPLODE"}` + "\n"} {
		conn, err := net.Dial("unix", f.server.SocketPath())
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		if _, err := conn.Write([]byte(line)); err != nil {
			t.Fatalf("write: %v", err)
		}
		buf := make([]byte, 512)
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, err := conn.Read(buf)
		conn.Close()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !strings.Contains(string(buf[:n]), `"status":"ERROR"`) {
			t.Fatalf("request %q got %s", line, buf[:n])
		}
	}
}

func TestClient_NoDaemon(t *testing.T) {
	c := NewClientWithPath(filepath.Join(t.TempDir(), "missing.sock"))
	err := c.Ping()
	if err == nil || !strings.Contains(err.Error(), "is the daemon running?") {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestClientTimeoutOutlivesRequestTimeout(t *testing.T) {
	if ClientTimeout <= config.MaxRequestTimeout {
		t.Fatalf("ClientTimeout %v must exceed MaxRequestTimeout %v", ClientTimeout, config.MaxRequestTimeout)
	}
	if c := NewClientWithPath("x.sock"); c.timeout != ClientTimeout {
		t.Fatalf("client timeout = %v, want %v", c.timeout, ClientTimeout)
	}
}

func TestServer_StopRemovesSocket(t *testing.T) {
	f := newFixture(t, ServerOptions{})
	f.server.Stop()
	if _, err := os.Stat(f.server.SocketPath()); !os.IsNotExist(err) {
		t.Fatalf("socket still present after Stop: %v", err)
	}
}
