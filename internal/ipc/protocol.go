package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/winbridge/internal/entities"
	"github.com/1broseidon/winbridge/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload             CommandType = "RELOAD"
	CommandGetStatus          CommandType = "GET_STATUS"
	CommandCreateWindow       CommandType = "CREATE_WINDOW"
	CommandListWindows        CommandType = "LIST_WINDOWS"
	CommandCloseWindow        CommandType = "CLOSE_WINDOW"
	CommandFocusWindow        CommandType = "FOCUS_WINDOW"
	CommandGetBounds          CommandType = "GET_BOUNDS"
	CommandSetBounds          CommandType = "SET_BOUNDS"
	CommandCreateView         CommandType = "CREATE_VIEW"
	CommandListViews          CommandType = "LIST_VIEWS"
	CommandSetQuitOnAllClosed CommandType = "SET_QUIT_ON_ALL_CLOSED"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	HostURL                string   `json:"host_url"`
	Connected              bool     `json:"connected"`
	Platform               string   `json:"platform"`
	WindowCount            int      `json:"window_count"`
	ViewCount              int      `json:"view_count"`
	Pending                []string `json:"pending,omitempty"`
	ReconcileReports       int      `json:"reconcile_reports"`
	QuitOnAllWindowsClosed bool     `json:"quit_on_all_windows_closed"`
	RequestTimeoutMillis   int64    `json:"request_timeout_ms"`
	UptimeSeconds          int64    `json:"uptime_seconds"`
	DaemonRunning          bool     `json:"daemon_running"`
}

// WindowInfo describes one registered window.
type WindowInfo struct {
	ID int `json:"id"`
}

type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// ViewInfo describes one registered view.
type ViewInfo struct {
	ID int `json:"id"`
}

type ViewsData struct {
	Views []ViewInfo `json:"views"`
}

type CreateWindowPayload struct {
	Options entities.WindowOptions `json:"options"`
	URL     string                 `json:"url,omitempty"`
}

type WindowPayload struct {
	WindowID int `json:"window_id"`
}

type CloseWindowPayload struct {
	WindowID int  `json:"window_id"`
	Force    bool `json:"force,omitempty"` // destroy without close events
}

type SetBoundsPayload struct {
	WindowID int           `json:"window_id"`
	Bounds   platform.Rect `json:"bounds"`
	Animate  bool          `json:"animate,omitempty"`
}

type BoundsData struct {
	WindowID int           `json:"window_id"`
	Bounds   platform.Rect `json:"bounds"`
}

type CreateViewPayload struct {
	Options entities.ViewOptions `json:"options"`
	// AttachTo attaches the view to this window when non-zero.
	AttachTo int            `json:"attach_to,omitempty"`
	Bounds   *platform.Rect `json:"bounds,omitempty"`
}

type SetQuitOnAllClosedPayload struct {
	Quit bool `json:"quit"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("request missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
