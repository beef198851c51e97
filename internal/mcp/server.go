// Package mcp exposes the bridge daemon as Model Context Protocol tools.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winbridge/internal/entities"
	"github.com/1broseidon/winbridge/internal/ipc"
	"github.com/1broseidon/winbridge/internal/platform"
)

const (
	ServerName    = "winbridge"
	ServerVersion = "0.1.0"
)

// Backend is the daemon surface the tools drive. *ipc.Client implements it.
type Backend interface {
	GetStatus() (*ipc.StatusData, error)
	CreateWindow(opts entities.WindowOptions, url string) (*ipc.WindowInfo, error)
	ListWindows() ([]ipc.WindowInfo, error)
	CloseWindow(id int, force bool) error
	FocusWindow(id int) error
	GetBounds(id int) (platform.Rect, error)
	SetBounds(id int, bounds platform.Rect, animate bool) error
	CreateView(payload ipc.CreateViewPayload) (*ipc.ViewInfo, error)
	ListViews() ([]ipc.ViewInfo, error)
}

var _ Backend = (*ipc.Client)(nil)

// Server is the MCP server in front of the bridge daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	backend   Backend
}

// NewServer creates an MCP server that forwards tool calls to backend.
func NewServer(backend Backend) *Server {
	s := &Server{backend: backend}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves one session over transport.
func (s *Server) Connect(ctx context.Context, transport mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.mcpServer.Connect(ctx, transport, nil)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report whether the daemon is connected to the host, the detected platform, and how many windows and views are registered.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_window",
		Description: "Create a host window and wait for its id. Without a url the window loads the localhost page on the configured web port. Size defaults to 800x600 at (0,0); platform quirks are compensated automatically.",
	}, s.handleCreateWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the ids of live windows in creation order. Windows closed on the host side drop out once the host reports them.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window. Set force to destroy it without running close handlers.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Focus a window.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window_bounds",
		Description: "Query the host for a window's current position and size.",
	}, s.handleGetWindowBounds)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_bounds",
		Description: "Move and resize a window. Width and height must be positive.",
	}, s.handleSetWindowBounds)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_view",
		Description: "Create an embedded view, optionally attached to a window with the given bounds.",
	}, s.handleCreateView)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_views",
		Description: "List the ids of created views in creation order.",
	}, s.handleListViews)
}
