package platform

import (
	"runtime"
	"strings"
)

// Rect describes a rectangular region in screen coordinates. The JSON form
// is the host's rectangle shape.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Size is a width/height pair as reported by the host.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Platform identifies the machine the host process renders on.
type Platform struct {
	OS          string
	Description string
}

// Contains reports whether the description contains substr.
func (p Platform) Contains(substr string) bool {
	if substr == "" {
		return false
	}
	return strings.Contains(p.Description, substr)
}

// Detect describes the current platform. A non-empty override replaces the
// probed description, which lets quirk rules be exercised on any machine.
func Detect(override string) Platform {
	if s := strings.TrimSpace(override); s != "" {
		return Platform{OS: runtime.GOOS, Description: s}
	}
	return Platform{OS: runtime.GOOS, Description: describe()}
}
