package mcp

import "github.com/1broseidon/winbridge/internal/platform"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Connected              bool     `json:"connected"`
	Platform               string   `json:"platform"`
	WindowCount            int      `json:"window_count"`
	ViewCount              int      `json:"view_count"`
	Pending                []string `json:"pending,omitempty"`
	QuitOnAllWindowsClosed bool     `json:"quit_on_all_windows_closed"`
}

// CreateWindowInput is the input for the create_window tool.
type CreateWindowInput struct {
	URL    string `json:"url,omitempty" jsonschema:"Page to load. Defaults to the localhost page on the configured web port."`
	Width  int    `json:"width,omitempty" jsonschema:"Window width in pixels (default: 800)"`
	Height int    `json:"height,omitempty" jsonschema:"Window height in pixels (default: 600)"`
	X      *int   `json:"x,omitempty" jsonschema:"Left edge in screen coordinates (default: 0)"`
	Y      *int   `json:"y,omitempty" jsonschema:"Top edge in screen coordinates (default: 0)"`
	Title  string `json:"title,omitempty" jsonschema:"Initial window title"`
	Show   *bool  `json:"show,omitempty" jsonschema:"Whether to show the window on creation (default: true)"`
}

// CreateWindowOutput is the output for the create_window tool.
type CreateWindowOutput struct {
	WindowID int `json:"window_id"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	WindowIDs []int `json:"window_ids"`
}

// WindowInput selects one window.
type WindowInput struct {
	WindowID int `json:"window_id" jsonschema:"required,Window id returned by create_window or list_windows"`
}

// CloseWindowInput is the input for the close_window tool.
type CloseWindowInput struct {
	WindowID int  `json:"window_id" jsonschema:"required,Window id to close"`
	Force    bool `json:"force,omitempty" jsonschema:"Destroy the window without running close handlers"`
}

// ActionOutput acknowledges a command tool.
type ActionOutput struct {
	OK bool `json:"ok"`
}

// BoundsOutput is the output for the get_window_bounds tool.
type BoundsOutput struct {
	WindowID int           `json:"window_id"`
	Bounds   platform.Rect `json:"bounds"`
}

// SetBoundsInput is the input for the set_window_bounds tool.
type SetBoundsInput struct {
	WindowID int  `json:"window_id" jsonschema:"required,Window id to move"`
	X        int  `json:"x" jsonschema:"Left edge in screen coordinates"`
	Y        int  `json:"y" jsonschema:"Top edge in screen coordinates"`
	Width    int  `json:"width" jsonschema:"required,Width in pixels"`
	Height   int  `json:"height" jsonschema:"required,Height in pixels"`
	Animate  bool `json:"animate,omitempty" jsonschema:"Animate the change where the platform supports it"`
}

// CreateViewInput is the input for the create_view tool.
type CreateViewInput struct {
	AttachTo int `json:"attach_to,omitempty" jsonschema:"Window id to attach the view to"`
	X        int `json:"x,omitempty" jsonschema:"View left edge inside the window"`
	Y        int `json:"y,omitempty" jsonschema:"View top edge inside the window"`
	Width    int `json:"width,omitempty" jsonschema:"View width; bounds are only set when width and height are given"`
	Height   int `json:"height,omitempty" jsonschema:"View height"`
}

// CreateViewOutput is the output for the create_view tool.
type CreateViewOutput struct {
	ViewID int `json:"view_id"`
}

// ListViewsInput is the input for the list_views tool.
type ListViewsInput struct{}

// ListViewsOutput is the output for the list_views tool.
type ListViewsOutput struct {
	ViewIDs []int `json:"view_ids"`
}
