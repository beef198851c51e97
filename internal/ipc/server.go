package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/winbridge/internal/bridge"
	"github.com/1broseidon/winbridge/internal/config"
	"github.com/1broseidon/winbridge/internal/platform"
	"github.com/1broseidon/winbridge/internal/runtimepath"
)

// ServerOptions configures a Server.
type ServerOptions struct {
	// SocketPath overrides the runtime socket path.
	SocketPath string
	Platform   platform.Platform
	// HostDone is closed when the host connection is lost.
	HostDone <-chan struct{}
	// Reload receives a notification after a successful RELOAD.
	Reload chan<- struct{}
	// LoadConfig replaces config.Load for RELOAD.
	LoadConfig func() (*config.Config, error)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	mgr          *bridge.Manager
	opts         ServerOptions
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(cfg *config.Config, mgr *bridge.Manager, opts ServerOptions) (*Server, error) {
	socketPath := opts.SocketPath
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		mgr:        mgr,
		opts:       opts,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandCreateWindow:
		return s.handleCreateWindow(req.Payload)
	case CommandListWindows:
		return s.handleListWindows()
	case CommandCloseWindow:
		return s.handleCloseWindow(req.Payload)
	case CommandFocusWindow:
		return s.handleFocusWindow(req.Payload)
	case CommandGetBounds:
		return s.handleGetBounds(req.Payload)
	case CommandSetBounds:
		return s.handleSetBounds(req.Payload)
	case CommandCreateView:
		return s.handleCreateView(req.Payload)
	case CommandListViews:
		return s.handleListViews()
	case CommandSetQuitOnAllClosed:
		return s.handleSetQuitOnAllClosed(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// requestContext bounds one host round trip by request_timeout.
func (s *Server) requestContext() (context.Context, context.CancelFunc) {
	s.cfgMu.RLock()
	timeout := s.cfg.RequestTimeout
	s.cfgMu.RUnlock()
	return context.WithTimeout(context.Background(), timeout)
}

func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	newCfg, err := s.opts.LoadConfig()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	s.UpdateConfig(newCfg)

	if s.opts.Reload != nil {
		select {
		case s.opts.Reload <- struct{}{}:
		default:
		}
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus() *Response {
	s.cfgMu.RLock()
	hostURL := s.cfg.HostURL
	timeout := s.cfg.RequestTimeout
	s.cfgMu.RUnlock()

	status := StatusData{
		HostURL:                hostURL,
		Connected:              s.connected(),
		Platform:               s.opts.Platform.Description,
		WindowCount:            len(s.mgr.Windows()),
		ViewCount:              len(s.mgr.Views()),
		Pending:                s.mgr.Pending(),
		ReconcileReports:       s.mgr.Reconciler().Reports(),
		QuitOnAllWindowsClosed: s.mgr.QuitOnAllWindowsClosed(),
		RequestTimeoutMillis:   timeout.Milliseconds(),
		UptimeSeconds:          int64(time.Since(s.startTime).Seconds()),
		DaemonRunning:          true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) connected() bool {
	if s.opts.HostDone == nil {
		return true
	}
	select {
	case <-s.opts.HostDone:
		return false
	default:
		return true
	}
}

func (s *Server) handleCreateWindow(payload json.RawMessage) *Response {
	var req CreateWindowPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid create payload: %v", err))
		}
	}

	ctx, cancel := s.requestContext()
	defer cancel()

	w, err := s.mgr.CreateWindow(ctx, req.Options, req.URL)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to create window: %v", err))
	}
	log.Printf("IPC: Created window %d", w.ID())

	resp, _ := NewOKResponse(WindowInfo{ID: w.ID()})
	return resp
}

func (s *Server) handleListWindows() *Response {
	windows := s.mgr.Windows()
	data := WindowsData{Windows: make([]WindowInfo, 0, len(windows))}
	for _, w := range windows {
		data.Windows = append(data.Windows, WindowInfo{ID: w.ID()})
	}
	resp, _ := NewOKResponse(data)
	return resp
}

// lookupWindow resolves the window_id of payload to a registered window.
func (s *Server) lookupWindow(payload json.RawMessage) (*bridge.Window, *Response) {
	var ref WindowPayload
	if err := json.Unmarshal(payload, &ref); err != nil {
		return nil, NewErrorResponse(fmt.Sprintf("Invalid window payload: %v", err))
	}
	w, ok := s.mgr.Window(ref.WindowID)
	if !ok {
		return nil, NewErrorResponse(fmt.Sprintf("Unknown window: %d", ref.WindowID))
	}
	return w, nil
}

func (s *Server) handleCloseWindow(payload json.RawMessage) *Response {
	w, errResp := s.lookupWindow(payload)
	if errResp != nil {
		return errResp
	}
	var req CloseWindowPayload
	_ = json.Unmarshal(payload, &req)

	var err error
	if req.Force {
		err = w.Destroy()
	} else {
		err = w.Close()
	}
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to close window: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleFocusWindow(payload json.RawMessage) *Response {
	w, errResp := s.lookupWindow(payload)
	if errResp != nil {
		return errResp
	}
	if err := w.Focus(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to focus window: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetBounds(payload json.RawMessage) *Response {
	w, errResp := s.lookupWindow(payload)
	if errResp != nil {
		return errResp
	}

	ctx, cancel := s.requestContext()
	defer cancel()

	bounds, err := w.GetBounds(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get bounds: %v", err))
	}
	resp, _ := NewOKResponse(BoundsData{WindowID: w.ID(), Bounds: bounds})
	return resp
}

func (s *Server) handleSetBounds(payload json.RawMessage) *Response {
	w, errResp := s.lookupWindow(payload)
	if errResp != nil {
		return errResp
	}
	var req SetBoundsPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid bounds payload: %v", err))
	}
	if req.Bounds.Width <= 0 || req.Bounds.Height <= 0 {
		return NewErrorResponse("bounds width and height must be > 0")
	}
	if err := w.SetBounds(req.Bounds, req.Animate); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to set bounds: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleCreateView(payload json.RawMessage) *Response {
	var req CreateViewPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid view payload: %v", err))
		}
	}

	var target *bridge.Window
	if req.AttachTo != 0 {
		w, ok := s.mgr.Window(req.AttachTo)
		if !ok {
			return NewErrorResponse(fmt.Sprintf("Unknown window: %d", req.AttachTo))
		}
		target = w
	}

	ctx, cancel := s.requestContext()
	defer cancel()

	v, err := s.mgr.CreateView(ctx, req.Options)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to create view: %v", err))
	}
	if target != nil {
		if err := target.SetBrowserView(v); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to attach view: %v", err))
		}
	}
	if req.Bounds != nil {
		if err := v.SetBounds(*req.Bounds); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to set view bounds: %v", err))
		}
	}

	resp, _ := NewOKResponse(ViewInfo{ID: v.ID()})
	return resp
}

func (s *Server) handleListViews() *Response {
	views := s.mgr.Views()
	data := ViewsData{Views: make([]ViewInfo, 0, len(views))}
	for _, v := range views {
		data.Views = append(data.Views, ViewInfo{ID: v.ID()})
	}
	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleSetQuitOnAllClosed(payload json.RawMessage) *Response {
	var req SetQuitOnAllClosedPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid quit payload: %v", err))
	}
	if err := s.mgr.SetQuitOnAllWindowsClosed(req.Quit); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to set quit flag: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig replaces the config used by later requests.
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
}
