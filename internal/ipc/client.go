package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/winbridge/internal/config"
	"github.com/1broseidon/winbridge/internal/entities"
	"github.com/1broseidon/winbridge/internal/platform"
	"github.com/1broseidon/winbridge/internal/runtimepath"
)

// ClientTimeout bounds one request. It exceeds config.MaxRequestTimeout so
// the daemon's host wait always ends first.
const ClientTimeout = config.MaxRequestTimeout + 5*time.Second

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithPath(socketPath)
}

// NewClientWithPath creates a client for the socket at path.
func NewClientWithPath(path string) *Client {
	return &Client{
		socketPath: path,
		timeout:    ClientTimeout,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with payload and decodes the response data into out
// when out is non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(resp.Data) == 0 {
		return fmt.Errorf("daemon returned no data for %s", command)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves the daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ping checks if the daemon is running
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}

// CreateWindow asks the daemon to create a host window loading url.
func (c *Client) CreateWindow(opts entities.WindowOptions, url string) (*WindowInfo, error) {
	var info WindowInfo
	err := c.call(CommandCreateWindow, CreateWindowPayload{Options: opts, URL: url}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ListWindows returns the live windows in creation order.
func (c *Client) ListWindows() ([]WindowInfo, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

// CloseWindow closes a window. force destroys it without close events.
func (c *Client) CloseWindow(id int, force bool) error {
	return c.call(CommandCloseWindow, CloseWindowPayload{WindowID: id, Force: force}, nil)
}

// FocusWindow focuses a window.
func (c *Client) FocusWindow(id int) error {
	return c.call(CommandFocusWindow, WindowPayload{WindowID: id}, nil)
}

// GetBounds queries the host for a window's bounds.
func (c *Client) GetBounds(id int) (platform.Rect, error) {
	var data BoundsData
	if err := c.call(CommandGetBounds, WindowPayload{WindowID: id}, &data); err != nil {
		return platform.Rect{}, err
	}
	return data.Bounds, nil
}

// SetBounds moves and resizes a window.
func (c *Client) SetBounds(id int, bounds platform.Rect, animate bool) error {
	return c.call(CommandSetBounds, SetBoundsPayload{WindowID: id, Bounds: bounds, Animate: animate}, nil)
}

// CreateView creates a view and optionally attaches it to a window.
func (c *Client) CreateView(payload CreateViewPayload) (*ViewInfo, error) {
	var info ViewInfo
	if err := c.call(CommandCreateView, payload, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListViews returns the registered views in creation order.
func (c *Client) ListViews() ([]ViewInfo, error) {
	var data ViewsData
	if err := c.call(CommandListViews, nil, &data); err != nil {
		return nil, err
	}
	return data.Views, nil
}

// SetQuitOnAllClosed tells the host whether to quit once every window is gone.
func (c *Client) SetQuitOnAllClosed(quit bool) error {
	return c.call(CommandSetQuitOnAllClosed, SetQuitOnAllClosedPayload{Quit: quit}, nil)
}
