//go:build linux

package platform

import (
	"os"
	"strings"

	"github.com/1broseidon/winbridge/internal/x11"
)

func describe() string {
	desc := "Linux"
	if data, err := os.ReadFile("/proc/sys/kernel/osrelease"); err == nil {
		if release := strings.TrimSpace(string(data)); release != "" {
			desc += " " + release
		}
	}
	// Best effort: no display (or no EWMH WM) just leaves the WM out.
	if wm, err := x11.ProbeWindowManager(); err == nil && wm != "" {
		desc += " (wm: " + wm + ")"
	}
	return desc
}
