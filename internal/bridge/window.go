package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/winbridge/internal/channel"
	"github.com/1broseidon/winbridge/internal/entities"
	"github.com/1broseidon/winbridge/internal/platform"
)

const kindWindow = "browserWindow"

// Window is the local handle of one host window. Methods never check that
// the window is still alive on the host; use the registry for that.
type Window struct {
	*proxy
	webContents *WebContents
	lookup      func(id int) (*Window, bool)

	itemsMu        sync.Mutex
	menuItems      []entities.MenuItem
	thumbarButtons []entities.ThumbarButton
}

func newWindow(id int, ch channel.Channel, calls *Correlator, logger *slog.Logger, lookup func(int) (*Window, bool)) *Window {
	return &Window{
		proxy:       newProxy(kindWindow, id, ch, calls, logger),
		webContents: newWebContents(id, ch, calls, logger),
		lookup:      lookup,
	}
}

// ID returns the host-assigned window id.
func (w *Window) ID() int { return w.id }

// WebContents returns the page controller of the window.
func (w *Window) WebContents() *WebContents { return w.webContents }

// release drops the subscriptions of the window and its web contents.
func (w *Window) release() {
	w.proxy.release()
	w.webContents.release()
}

// MenuItems returns the items last passed to SetMenu, with ids assigned.
func (w *Window) MenuItems() []entities.MenuItem {
	w.itemsMu.Lock()
	defer w.itemsMu.Unlock()
	return append([]entities.MenuItem(nil), w.menuItems...)
}

// ThumbarButtons returns the buttons last passed to SetThumbarButtons.
func (w *Window) ThumbarButtons() []entities.ThumbarButton {
	w.itemsMu.Lock()
	defer w.itemsMu.Unlock()
	return append([]entities.ThumbarButton(nil), w.thumbarButtons...)
}

// SetBounds resizes and moves the window.
func (w *Window) SetBounds(bounds platform.Rect, animate bool) error {
	return w.command("browserWindowSetBounds", bounds, animate)
}

func (w *Window) SetContentBounds(bounds platform.Rect, animate bool) error {
	return w.command("browserWindowSetContentBounds", bounds, animate)
}

func (w *Window) SetSize(width, height int, animate bool) error {
	return w.command("browserWindowSetSize", width, height, animate)
}

func (w *Window) SetContentSize(width, height int, animate bool) error {
	return w.command("browserWindowSetContentSize", width, height, animate)
}

func (w *Window) SetMinimumSize(width, height int) error {
	return w.command("browserWindowSetMinimumSize", width, height)
}

func (w *Window) SetMaximumSize(width, height int) error {
	return w.command("browserWindowSetMaximumSize", width, height)
}

func (w *Window) SetPosition(x, y int, animate bool) error {
	return w.command("browserWindowSetPosition", x, y, animate)
}

// SetAspectRatio keeps the content at ratio; extra is the size not counted,
// such as a side bar.
func (w *Window) SetAspectRatio(ratio float64, extra platform.Size) error {
	return w.command("browserWindowSetAspectRatio", ratio, extra)
}

func (w *Window) PreviewFile(path, displayName string) error {
	return w.command("browserWindowPreviewFile", path, displayName)
}

// SetAlwaysOnTop keeps the window above others at level. relativeLevel is
// only honored on macOS.
func (w *Window) SetAlwaysOnTop(flag bool, level entities.OnTopLevel, relativeLevel int) error {
	if level == "" {
		return w.command("browserWindowSetAlwaysOnTop", flag)
	}
	return w.command("browserWindowSetAlwaysOnTop", flag, level, relativeLevel)
}

func (w *Window) SetSheetOffset(offsetY, offsetX float64) error {
	return w.command("browserWindowSetSheetOffset", offsetY, offsetX)
}

// LoadURL navigates the window.
func (w *Window) LoadURL(url string, opts *entities.LoadURLOptions) error {
	if opts == nil {
		return w.command("browserWindowLoadURL", url)
	}
	return w.command("browserWindowLoadURL", url, opts)
}

// SetProgressBar sets the taskbar progress. A negative value removes it.
func (w *Window) SetProgressBar(progress float64, opts *entities.ProgressBarOptions) error {
	if opts == nil {
		return w.command("browserWindowSetProgressBar", progress)
	}
	return w.command("browserWindowSetProgressBar", progress, opts)
}

// SetParentWindow makes parent the parent of w. A nil parent turns w into a
// top-level window.
func (w *Window) SetParentWindow(parent *Window) error {
	if parent == nil {
		return w.command("browserWindowSetParentWindow", nil)
	}
	return w.command("browserWindowSetParentWindow", parent.ID())
}

// SetBrowserView attaches view to the window.
func (w *Window) SetBrowserView(view *View) error {
	return w.command("browserWindow-setBrowserView", view.ID())
}

// GetParentWindow returns the parent window, or nil for a top-level window
// or a parent the registry does not know.
func (w *Window) GetParentWindow(ctx context.Context) (*Window, error) {
	id, err := query[int](ctx, w.proxy, "browserWindowGetParentWindow")
	if err != nil {
		return nil, err
	}
	if id == 0 || w.lookup == nil {
		return nil, nil
	}
	parent, _ := w.lookup(id)
	return parent, nil
}

// GetChildWindows returns the known child windows. Ids the registry does not
// know are skipped.
func (w *Window) GetChildWindows(ctx context.Context) ([]*Window, error) {
	ids, err := query[[]int](ctx, w.proxy, "browserWindowGetChildWindows")
	if err != nil {
		return nil, err
	}
	children := make([]*Window, 0, len(ids))
	for _, id := range ids {
		if w.lookup == nil {
			break
		}
		if child, ok := w.lookup(id); ok {
			children = append(children, child)
		}
	}
	return children, nil
}

// SetMenu replaces the window menu. Items without an id get one; clicks
// reported by the host run the matching item's Click.
func (w *Window) SetMenu(items []entities.MenuItem) error {
	assigned := entities.AssignMenuIDs(items)

	w.itemsMu.Lock()
	w.menuItems = assigned
	w.itemsMu.Unlock()

	if err := w.command("browserWindowSetMenu", assigned); err != nil {
		return err
	}
	w.listen("windowMenuItemClicked", w.menuClicked)
	return nil
}

func (w *Window) menuClicked(args []json.RawMessage) {
	id, err := decodeArg[string]("windowMenuItemClicked", args)
	if err != nil {
		w.logger.Warn("dropping menu click", "error", err)
		return
	}
	w.itemsMu.Lock()
	item, ok := entities.FindMenuItem(w.menuItems, id)
	w.itemsMu.Unlock()
	if !ok {
		w.logger.Debug("menu click for unknown item", "item_id", id)
		return
	}
	if item.Click != nil {
		item.Click()
	}
}

// RemoveMenu removes the window menu and forgets its items.
func (w *Window) RemoveMenu() error {
	w.itemsMu.Lock()
	w.menuItems = nil
	w.itemsMu.Unlock()
	return w.command("browserWindowRemoveMenu")
}

// SetThumbarButtons replaces the taskbar thumbnail toolbar. The host answers
// whether the buttons were added.
func (w *Window) SetThumbarButtons(ctx context.Context, buttons []entities.ThumbarButton) (bool, error) {
	assigned := entities.AssignThumbarIDs(buttons)

	w.itemsMu.Lock()
	w.thumbarButtons = assigned
	w.itemsMu.Unlock()

	w.listen("thumbarButtonClicked", w.thumbarClicked)
	ok, err := query[bool](ctx, w.proxy, "browserWindowSetThumbarButtons", assigned)
	if err != nil {
		return false, fmt.Errorf("set thumbar buttons: %w", err)
	}
	return ok, nil
}

func (w *Window) thumbarClicked(args []json.RawMessage) {
	id, err := decodeArg[string]("thumbarButtonClicked", args)
	if err != nil {
		w.logger.Warn("dropping thumbar click", "error", err)
		return
	}
	w.itemsMu.Lock()
	var click func()
	for _, b := range w.thumbarButtons {
		if b.ID == id {
			click = b.Click
			break
		}
	}
	w.itemsMu.Unlock()
	if click != nil {
		click()
	}
}
