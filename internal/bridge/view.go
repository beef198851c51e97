package bridge

import (
	"context"
	"log/slog"

	"github.com/1broseidon/winbridge/internal/channel"
	"github.com/1broseidon/winbridge/internal/entities"
	"github.com/1broseidon/winbridge/internal/platform"
)

const kindView = "browserView"

// View is the local handle of one host browser view. A view is attached to
// a window with Window.SetBrowserView.
type View struct {
	*proxy
	webContents *WebContents
}

func newView(id int, ch channel.Channel, calls *Correlator, logger *slog.Logger) *View {
	return &View{
		proxy:       newProxy(kindView, id, ch, calls, logger),
		webContents: newWebContents(id, ch, calls, logger),
	}
}

// ID returns the host-assigned view id.
func (v *View) ID() int { return v.id }

// WebContents returns the page controller of the view.
func (v *View) WebContents() *WebContents { return v.webContents }

func (v *View) release() {
	v.proxy.release()
	v.webContents.release()
}

// SetBounds positions the view relative to its window.
func (v *View) SetBounds(bounds platform.Rect) error {
	return v.command("browserView-setBounds", bounds)
}

func (v *View) GetBounds(ctx context.Context) (platform.Rect, error) {
	return query[platform.Rect](ctx, v.proxy, "browserView-getBounds")
}

// SetAutoResize makes the view follow its window's size.
func (v *View) SetAutoResize(opts entities.AutoResizeOptions) error {
	return v.command("browserView-setAutoResize", opts)
}

// SetBackgroundColor takes a hex color such as "#66CD00".
func (v *View) SetBackgroundColor(color string) error {
	return v.command("browserView-setBackgroundColor", color)
}
