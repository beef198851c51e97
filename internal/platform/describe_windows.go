//go:build windows

package platform

import (
	"os/exec"
	"regexp"
)

var verPattern = regexp.MustCompile(`Version\s+([0-9.]+)`)

// describe mirrors the runtime OS description format, e.g.
// "Microsoft Windows 10.0.19045".
func describe() string {
	out, err := exec.Command("cmd", "/c", "ver").Output()
	if err != nil {
		return "Microsoft Windows"
	}
	m := verPattern.FindSubmatch(out)
	if m == nil {
		return "Microsoft Windows"
	}
	return "Microsoft Windows " + string(m[1])
}
