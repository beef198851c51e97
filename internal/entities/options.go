// Package entities holds the option and payload shapes sent to the host.
//
// Every field serializes under its lower-camel host name and is omitted when
// unset; pointer fields are used where the Go zero value is a meaningful
// setting (coordinates, flags whose host default is true).
package entities

// Host defaults applied by DefaultWindowOptions.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// WindowOptions configures a new browser window.
type WindowOptions struct {
	Width           int             `json:"width,omitempty"`
	Height          int             `json:"height,omitempty"`
	X               *int            `json:"x,omitempty"`
	Y               *int            `json:"y,omitempty"`
	UseContentSize  bool            `json:"useContentSize,omitempty"`
	Center          bool            `json:"center,omitempty"`
	MinWidth        int             `json:"minWidth,omitempty"`
	MinHeight       int             `json:"minHeight,omitempty"`
	MaxWidth        int             `json:"maxWidth,omitempty"`
	MaxHeight       int             `json:"maxHeight,omitempty"`
	Resizable       *bool           `json:"resizable,omitempty"`
	Movable         *bool           `json:"movable,omitempty"`
	Minimizable     *bool           `json:"minimizable,omitempty"`
	Maximizable     *bool           `json:"maximizable,omitempty"`
	Closable        *bool           `json:"closable,omitempty"`
	Focusable       *bool           `json:"focusable,omitempty"`
	AlwaysOnTop     bool            `json:"alwaysOnTop,omitempty"`
	Fullscreen      bool            `json:"fullscreen,omitempty"`
	Fullscreenable  *bool           `json:"fullscreenable,omitempty"`
	SkipTaskbar     bool            `json:"skipTaskbar,omitempty"`
	Kiosk           bool            `json:"kiosk,omitempty"`
	Title           string          `json:"title,omitempty"`
	Icon            string          `json:"icon,omitempty"`
	Show            *bool           `json:"show,omitempty"`
	Frame           *bool           `json:"frame,omitempty"`
	Modal           bool            `json:"modal,omitempty"`
	AutoHideMenuBar bool            `json:"autoHideMenuBar,omitempty"`
	BackgroundColor string          `json:"backgroundColor,omitempty"`
	HasShadow       *bool           `json:"hasShadow,omitempty"`
	Opacity         *float64        `json:"opacity,omitempty"`
	Transparent     bool            `json:"transparent,omitempty"`
	Type            string          `json:"type,omitempty"`
	TitleBarStyle   TitleBarStyle   `json:"titleBarStyle,omitempty"`
	Vibrancy        Vibrancy        `json:"vibrancy,omitempty"`
	WebPreferences  *WebPreferences `json:"webPreferences,omitempty"`
}

// DefaultWindowOptions returns options with the host's default size and
// unspecified position.
func DefaultWindowOptions() WindowOptions {
	return WindowOptions{
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

// HasDefaultPosition reports whether the caller left the position to the host.
func (o WindowOptions) HasDefaultPosition() bool {
	return o.X == nil && o.Y == nil
}

// WebPreferences configures the web page of a window or view.
type WebPreferences struct {
	DevTools         *bool   `json:"devTools,omitempty"`
	NodeIntegration  *bool   `json:"nodeIntegration,omitempty"`
	ContextIsolation *bool   `json:"contextIsolation,omitempty"`
	Sandbox          bool    `json:"sandbox,omitempty"`
	Preload          string  `json:"preload,omitempty"`
	Partition        string  `json:"partition,omitempty"`
	ZoomFactor       float64 `json:"zoomFactor,omitempty"`
	Javascript       *bool   `json:"javascript,omitempty"`
	WebSecurity      *bool   `json:"webSecurity,omitempty"`
	DefaultEncoding  string  `json:"defaultEncoding,omitempty"`
}

// ViewOptions configures a new browser view.
type ViewOptions struct {
	WebPreferences *WebPreferences `json:"webPreferences,omitempty"`
}

// TitleBarStyle selects the macOS title bar style.
type TitleBarStyle string

const (
	TitleBarDefault           TitleBarStyle = "default"
	TitleBarHidden            TitleBarStyle = "hidden"
	TitleBarHiddenInset       TitleBarStyle = "hiddenInset"
	TitleBarCustomButtonHover TitleBarStyle = "customButtonsOnHover"
)

// Vibrancy is a macOS window vibrancy effect.
type Vibrancy string

const (
	VibrancyAppearanceBased Vibrancy = "appearance-based"
	VibrancyLight           Vibrancy = "light"
	VibrancyDark            Vibrancy = "dark"
	VibrancyTitlebar        Vibrancy = "titlebar"
	VibrancySelection       Vibrancy = "selection"
	VibrancyMenu            Vibrancy = "menu"
	VibrancyPopover         Vibrancy = "popover"
	VibrancySidebar         Vibrancy = "sidebar"
	VibrancyUltraDark       Vibrancy = "ultra-dark"
)

// OnTopLevel is the level used by SetAlwaysOnTop.
type OnTopLevel string

const (
	OnTopNormal      OnTopLevel = "normal"
	OnTopFloating    OnTopLevel = "floating"
	OnTopTornOffMenu OnTopLevel = "torn-off-menu"
	OnTopModalPanel  OnTopLevel = "modal-panel"
	OnTopMainMenu    OnTopLevel = "main-menu"
	OnTopStatus      OnTopLevel = "status"
	OnTopPopUpMenu   OnTopLevel = "pop-up-menu"
	OnTopScreenSaver OnTopLevel = "screen-saver"
	OnTopDock        OnTopLevel = "dock"
)

// ProgressBarOptions configures SetProgressBar.
type ProgressBarOptions struct {
	Mode string `json:"mode,omitempty"`
}

// LoadURLOptions configures LoadURL.
type LoadURLOptions struct {
	HTTPReferrer string `json:"httpReferrer,omitempty"`
	UserAgent    string `json:"userAgent,omitempty"`
	ExtraHeaders string `json:"extraHeaders,omitempty"`
	BaseURL      string `json:"baseURLForDataURL,omitempty"`
}

// AutoResizeOptions configures a view's resize behavior.
type AutoResizeOptions struct {
	Width      bool `json:"width,omitempty"`
	Height     bool `json:"height,omitempty"`
	Horizontal bool `json:"horizontal,omitempty"`
	Vertical   bool `json:"vertical,omitempty"`
}

// Int returns a pointer to v, for optional int fields.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for optional bool fields.
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v, for optional float fields.
func Float(v float64) *float64 { return &v }
