package x11

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Connection holds an X11 connection and its root window.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection connects to the X server named by $DISPLAY.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// WindowManagerName returns the _NET_WM_NAME of the EWMH supporting window,
// i.e. the name the running window manager advertises.
func (c *Connection) WindowManagerName() (string, error) {
	check, err := ewmh.SupportingWmCheckGet(c.XUtil, c.Root)
	if err != nil {
		return "", fmt.Errorf("no EWMH window manager: %w", err)
	}
	return windowName(c.XUtil, check)
}

func windowName(xu *xgbutil.XUtil, win xproto.Window) (string, error) {
	name, err := ewmh.WmNameGet(xu, win)
	if err != nil {
		return "", fmt.Errorf("failed to read _NET_WM_NAME: %w", err)
	}
	return strings.TrimSpace(name), nil
}

// ProbeWindowManager opens a short-lived connection and reports the window
// manager name. It returns an empty name without error when no display is
// configured.
func ProbeWindowManager() (string, error) {
	if strings.TrimSpace(os.Getenv("DISPLAY")) == "" {
		return "", nil
	}
	conn, err := NewConnection()
	if err != nil {
		return "", fmt.Errorf("failed to connect to X11: %w", err)
	}
	defer conn.Close()
	return conn.WindowManagerName()
}
