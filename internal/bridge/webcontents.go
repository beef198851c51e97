package bridge

import (
	"context"
	"log/slog"

	"github.com/1broseidon/winbridge/internal/channel"
	"github.com/1broseidon/winbridge/internal/entities"
)

// WebContents renders and controls the page of a window or view. It shares
// the id of its owner.
type WebContents struct {
	*proxy
}

func newWebContents(id int, ch channel.Channel, calls *Correlator, logger *slog.Logger) *WebContents {
	return &WebContents{proxy: newProxy("webContents", id, ch, calls, logger)}
}

// ID returns the web contents id.
func (c *WebContents) ID() int { return c.id }

// OpenDevTools opens the developer tools.
func (c *WebContents) OpenDevTools() error {
	return c.command("webContentsOpenDevTools")
}

// CloseDevTools closes the developer tools.
func (c *WebContents) CloseDevTools() error {
	return c.command("webContentsCloseDevTools")
}

// LoadURL navigates the page.
func (c *WebContents) LoadURL(url string, opts *entities.LoadURLOptions) error {
	if opts == nil {
		return c.command("webContents-loadURL", url)
	}
	return c.command("webContents-loadURL", url, opts)
}

// GetURL returns the current page URL.
func (c *WebContents) GetURL(ctx context.Context) (string, error) {
	return query[string](ctx, c.proxy, "webContents-getUrl")
}

// OnDidFinishLoad runs fn when navigation is done.
func (c *WebContents) OnDidFinishLoad(fn func()) error {
	return c.subscribe("did-finish-load", noArgs(fn))
}

// OnCrashed runs fn when the renderer process crashes.
func (c *WebContents) OnCrashed(fn func()) error {
	return c.subscribe("crashed", noArgs(fn))
}
