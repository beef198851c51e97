// Package quirks adjusts outgoing creation parameters for known host
// rendering defects.
package quirks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/winbridge/internal/entities"
	"github.com/1broseidon/winbridge/internal/platform"
)

// DefaultLoadURL is the URL a window opens when the caller gives none.
const DefaultLoadURL = "http://localhost"

// Rule describes one defective host configuration and the pixel deltas that
// make the realized window match the requested geometry.
type Rule struct {
	Name        string `yaml:"name"`
	Match       string `yaml:"match"`
	WidthDelta  int    `yaml:"width_delta"`
	HeightDelta int    `yaml:"height_delta"`
	XDelta      int    `yaml:"x_delta"`
}

// Builtin holds the rules shipped with winbridge.
//
// Windows 10 hosts draw an invisible resize border outside the requested
// frame (electron/electron#4045).
var Builtin = []Rule{
	{Name: "electron-4045", Match: "Windows 10", WidthDelta: 14, HeightDelta: 7, XDelta: -7},
}

// Match returns the first rule whose Match string occurs in the platform
// description.
func Match(p platform.Platform, rules []Rule) (Rule, bool) {
	for _, r := range rules {
		if p.Contains(r.Match) {
			return r, true
		}
	}
	return Rule{}, false
}

// Compensate returns a copy of opts ready for transmission. Default
// positioning is replaced by an explicit (0, 0); when a rule matches p, its
// deltas are applied to width, height and x. opts itself is never modified.
func Compensate(opts entities.WindowOptions, p platform.Platform, rules []Rule) entities.WindowOptions {
	out := opts

	var x, y int
	if opts.X != nil {
		x = *opts.X
	}
	if opts.Y != nil {
		y = *opts.Y
	}

	if rule, ok := Match(p, rules); ok {
		if out.Width == 0 {
			out.Width = entities.DefaultWidth
		}
		if out.Height == 0 {
			out.Height = entities.DefaultHeight
		}
		out.Width += rule.WidthDelta
		out.Height += rule.HeightDelta
		x += rule.XDelta
	}

	out.X = &x
	out.Y = &y
	return out
}

// NormalizeURL points the default localhost URL at the controller's web
// port. Any other URL is returned unchanged.
func NormalizeURL(url string, webPort int) string {
	if strings.TrimSpace(url) == "" {
		url = DefaultLoadURL
	}
	if strings.EqualFold(url, DefaultLoadURL) && webPort > 0 {
		return fmt.Sprintf("%s:%d", url, webPort)
	}
	return url
}

// RuleError reports the first invalid rule of a set.
type RuleError struct {
	Index int
	Name  string
	Err   error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("quirks[%d] (%s): %v", e.Index, e.Name, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// Validate checks a rule set loaded from configuration.
func Validate(rules []Rule) error {
	for i, r := range rules {
		if strings.TrimSpace(r.Match) == "" {
			return &RuleError{Index: i, Name: r.Name, Err: errors.New("match is required")}
		}
	}
	return nil
}
