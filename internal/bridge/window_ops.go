package bridge

import (
	"context"

	"github.com/1broseidon/winbridge/internal/entities"
	"github.com/1broseidon/winbridge/internal/platform"
)

// Destroy force-closes the window without close events.
func (w *Window) Destroy() error {
	return w.command("browserWindowDestroy")
}

// Close asks the window to close, as if the user clicked the close button.
func (w *Window) Close() error {
	return w.command("browserWindowClose")
}

// Focus gives the window focus.
func (w *Window) Focus() error {
	return w.command("browserWindowFocus")
}

// Blur removes focus from the window.
func (w *Window) Blur() error {
	return w.command("browserWindowBlur")
}

// Show shows and focuses the window.
func (w *Window) Show() error {
	return w.command("browserWindowShow")
}

// ShowInactive shows the window without focusing it.
func (w *Window) ShowInactive() error {
	return w.command("browserWindowShowInactive")
}

// Hide hides the window.
func (w *Window) Hide() error {
	return w.command("browserWindowHide")
}

// Maximize maximizes the window.
func (w *Window) Maximize() error {
	return w.command("browserWindowMaximize")
}

// Unmaximize leaves the maximized state.
func (w *Window) Unmaximize() error {
	return w.command("browserWindowUnmaximize")
}

// Minimize minimizes the window.
func (w *Window) Minimize() error {
	return w.command("browserWindowMinimize")
}

// Restore restores the window from the minimized state.
func (w *Window) Restore() error {
	return w.command("browserWindowRestore")
}

func (w *Window) SetFullScreen(flag bool) error {
	return w.command("browserWindowSetFullScreen", flag)
}

func (w *Window) CloseFilePreview() error {
	return w.command("browserWindowCloseFilePreview")
}

func (w *Window) SetResizable(resizable bool) error {
	return w.command("browserWindowSetResizable", resizable)
}

func (w *Window) SetMovable(movable bool) error {
	return w.command("browserWindowSetMovable", movable)
}

func (w *Window) SetMinimizable(minimizable bool) error {
	return w.command("browserWindowSetMinimizable", minimizable)
}

func (w *Window) SetMaximizable(maximizable bool) error {
	return w.command("browserWindowSetMaximizable", maximizable)
}

func (w *Window) SetFullScreenable(fullscreenable bool) error {
	return w.command("browserWindowSetFullScreenable", fullscreenable)
}

func (w *Window) SetClosable(closable bool) error {
	return w.command("browserWindowSetClosable", closable)
}

// Center moves the window to the center of the screen.
func (w *Window) Center() error {
	return w.command("browserWindowCenter")
}

func (w *Window) SetTitle(title string) error {
	return w.command("browserWindowSetTitle", title)
}

// FlashFrame starts or stops flashing the window to attract attention.
func (w *Window) FlashFrame(flag bool) error {
	return w.command("browserWindowFlashFrame", flag)
}

func (w *Window) SetSkipTaskbar(skip bool) error {
	return w.command("browserWindowSetSkipTaskbar", skip)
}

func (w *Window) SetKiosk(flag bool) error {
	return w.command("browserWindowSetKiosk", flag)
}

func (w *Window) SetRepresentedFilename(filename string) error {
	return w.command("browserWindowSetRepresentedFilename", filename)
}

func (w *Window) SetDocumentEdited(edited bool) error {
	return w.command("browserWindowSetDocumentEdited", edited)
}

func (w *Window) FocusOnWebView() error {
	return w.command("browserWindowFocusOnWebView")
}

func (w *Window) BlurWebView() error {
	return w.command("browserWindowBlurWebView")
}

// Reload reloads the current page.
func (w *Window) Reload() error {
	return w.command("browserWindowReload")
}

func (w *Window) SetHasShadow(hasShadow bool) error {
	return w.command("browserWindowSetHasShadow", hasShadow)
}

// SetThumbnailClip sets the region shown as the taskbar thumbnail.
func (w *Window) SetThumbnailClip(rect platform.Rect) error {
	return w.command("browserWindowSetThumbnailClip", rect)
}

func (w *Window) SetThumbnailToolTip(tooltip string) error {
	return w.command("browserWindowSetThumbnailToolTip", tooltip)
}

func (w *Window) ShowDefinitionForSelection() error {
	return w.command("browserWindowShowDefinitionForSelection")
}

func (w *Window) SetAutoHideMenuBar(hide bool) error {
	return w.command("browserWindowSetAutoHideMenuBar", hide)
}

func (w *Window) SetMenuBarVisibility(visible bool) error {
	return w.command("browserWindowSetMenuBarVisibility", visible)
}

func (w *Window) SetVisibleOnAllWorkspaces(visible bool) error {
	return w.command("browserWindowSetVisibleOnAllWorkspaces", visible)
}

// SetIgnoreMouseEvents makes the window ignore all mouse events.
func (w *Window) SetIgnoreMouseEvents(ignore bool) error {
	return w.command("browserWindowSetIgnoreMouseEvents", ignore)
}

// SetContentProtection prevents the window contents from being captured.
func (w *Window) SetContentProtection(enable bool) error {
	return w.command("browserWindowSetContentProtection", enable)
}

func (w *Window) SetFocusable(focusable bool) error {
	return w.command("browserWindowSetFocusable", focusable)
}

func (w *Window) SetAutoHideCursor(autoHide bool) error {
	return w.command("browserWindowSetAutoHideCursor", autoHide)
}

// SetVibrancy adds a macOS vibrancy effect.
func (w *Window) SetVibrancy(vibrancy entities.Vibrancy) error {
	return w.command("browserWindowSetVibrancy", vibrancy)
}

func (w *Window) IsFocused(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsFocused")
}

func (w *Window) IsDestroyed(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsDestroyed")
}

func (w *Window) IsVisible(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsVisible")
}

func (w *Window) IsModal(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsModal")
}

func (w *Window) IsMaximized(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsMaximized")
}

func (w *Window) IsMinimized(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsMinimized")
}

func (w *Window) IsFullScreen(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsFullScreen")
}

func (w *Window) GetBounds(ctx context.Context) (platform.Rect, error) {
	return query[platform.Rect](ctx, w.proxy, "browserWindowGetBounds")
}

func (w *Window) GetContentBounds(ctx context.Context) (platform.Rect, error) {
	return query[platform.Rect](ctx, w.proxy, "browserWindowGetContentBounds")
}

func (w *Window) GetSize(ctx context.Context) ([]int, error) {
	return query[[]int](ctx, w.proxy, "browserWindowGetSize")
}

func (w *Window) GetContentSize(ctx context.Context) ([]int, error) {
	return query[[]int](ctx, w.proxy, "browserWindowGetContentSize")
}

func (w *Window) GetMinimumSize(ctx context.Context) ([]int, error) {
	return query[[]int](ctx, w.proxy, "browserWindowGetMinimumSize")
}

func (w *Window) GetMaximumSize(ctx context.Context) ([]int, error) {
	return query[[]int](ctx, w.proxy, "browserWindowGetMaximumSize")
}

func (w *Window) IsResizable(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsResizable")
}

func (w *Window) IsMovable(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsMovable")
}

func (w *Window) IsMinimizable(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsMinimizable")
}

func (w *Window) IsMaximizable(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsMaximizable")
}

func (w *Window) IsFullScreenable(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsFullScreenable")
}

func (w *Window) IsClosable(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsClosable")
}

func (w *Window) IsAlwaysOnTop(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsAlwaysOnTop")
}

func (w *Window) GetPosition(ctx context.Context) ([]int, error) {
	return query[[]int](ctx, w.proxy, "browserWindowGetPosition")
}

func (w *Window) GetTitle(ctx context.Context) (string, error) {
	return query[string](ctx, w.proxy, "browserWindowGetTitle")
}

func (w *Window) IsKiosk(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsKiosk")
}

func (w *Window) GetNativeWindowHandle(ctx context.Context) (string, error) {
	return query[string](ctx, w.proxy, "browserWindowGetNativeWindowHandle")
}

func (w *Window) GetRepresentedFilename(ctx context.Context) (string, error) {
	return query[string](ctx, w.proxy, "browserWindowGetRepresentedFilename")
}

func (w *Window) IsDocumentEdited(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsDocumentEdited")
}

func (w *Window) HasShadow(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowHasShadow")
}

func (w *Window) IsMenuBarAutoHide(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsMenuBarAutoHide")
}

func (w *Window) IsMenuBarVisible(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsMenuBarVisible")
}

func (w *Window) IsVisibleOnAllWorkspaces(ctx context.Context) (bool, error) {
	return query[bool](ctx, w.proxy, "browserWindowIsVisibleOnAllWorkspaces")
}

func (w *Window) OnReadyToShow(fn func()) error {
	return w.subscribe("ready-to-show", noArgs(fn))
}

func (w *Window) OnPageTitleUpdated(fn func(string)) error {
	return w.subscribe("page-title-updated", stringArg(fn, w.logger, "page-title-updated"))
}

func (w *Window) OnClose(fn func()) error {
	return w.subscribe("close", noArgs(fn))
}

func (w *Window) OnClosed(fn func()) error {
	return w.subscribe("closed", noArgs(fn))
}

func (w *Window) OnSessionEnd(fn func()) error {
	return w.subscribe("session-end", noArgs(fn))
}

func (w *Window) OnUnresponsive(fn func()) error {
	return w.subscribe("unresponsive", noArgs(fn))
}

func (w *Window) OnResponsive(fn func()) error {
	return w.subscribe("responsive", noArgs(fn))
}

func (w *Window) OnBlur(fn func()) error {
	return w.subscribe("blur", noArgs(fn))
}

func (w *Window) OnFocus(fn func()) error {
	return w.subscribe("focus", noArgs(fn))
}

func (w *Window) OnShow(fn func()) error {
	return w.subscribe("show", noArgs(fn))
}

func (w *Window) OnHide(fn func()) error {
	return w.subscribe("hide", noArgs(fn))
}

func (w *Window) OnMaximize(fn func()) error {
	return w.subscribe("maximize", noArgs(fn))
}

func (w *Window) OnUnmaximize(fn func()) error {
	return w.subscribe("unmaximize", noArgs(fn))
}

func (w *Window) OnMinimize(fn func()) error {
	return w.subscribe("minimize", noArgs(fn))
}

func (w *Window) OnRestore(fn func()) error {
	return w.subscribe("restore", noArgs(fn))
}

func (w *Window) OnResize(fn func()) error {
	return w.subscribe("resize", noArgs(fn))
}

func (w *Window) OnMove(fn func()) error {
	return w.subscribe("move", noArgs(fn))
}

func (w *Window) OnMoved(fn func()) error {
	return w.subscribe("moved", noArgs(fn))
}

func (w *Window) OnEnterFullScreen(fn func()) error {
	return w.subscribe("enter-full-screen", noArgs(fn))
}

func (w *Window) OnLeaveFullScreen(fn func()) error {
	return w.subscribe("leave-full-screen", noArgs(fn))
}

func (w *Window) OnEnterHTMLFullScreen(fn func()) error {
	return w.subscribe("enter-html-full-screen", noArgs(fn))
}

func (w *Window) OnLeaveHTMLFullScreen(fn func()) error {
	return w.subscribe("leave-html-full-screen", noArgs(fn))
}

func (w *Window) OnAppCommand(fn func(string)) error {
	return w.subscribe("app-command", stringArg(fn, w.logger, "app-command"))
}

func (w *Window) OnSwipe(fn func(string)) error {
	return w.subscribe("swipe", stringArg(fn, w.logger, "swipe"))
}

func (w *Window) OnSheetBegin(fn func()) error {
	return w.subscribe("sheet-begin", noArgs(fn))
}

func (w *Window) OnSheetEnd(fn func()) error {
	return w.subscribe("sheet-end", noArgs(fn))
}

func (w *Window) OnNewWindowForTab(fn func()) error {
	return w.subscribe("new-window-for-tab", noArgs(fn))
}
