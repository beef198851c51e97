package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/winbridge/internal/quirks"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig is one YAML file as written. Nil fields were not set and fall
// through to earlier files or defaults.
type RawConfig struct {
	Include               IncludeList    `yaml:"include"`
	HostURL               *string        `yaml:"host_url"`
	WebPort               *int           `yaml:"web_port"`
	RequestTimeout        *time.Duration `yaml:"request_timeout"`
	QuitOnWindowAllClosed *bool          `yaml:"quit_on_window_all_closed"`
	PlatformOverride      *string        `yaml:"platform_override"`
	DisableBuiltinQuirks  *bool          `yaml:"disable_builtin_quirks"`
	Quirks                []quirks.Rule  `yaml:"quirks"`
	LogLevel              *string        `yaml:"log_level"`
}

// merge overlays non-nil fields of overlay onto c. Quirk lists from later
// files are appended so that included rule sets compose.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.HostURL != nil {
		out.HostURL = overlay.HostURL
	}
	if overlay.WebPort != nil {
		out.WebPort = overlay.WebPort
	}
	if overlay.RequestTimeout != nil {
		out.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.QuitOnWindowAllClosed != nil {
		out.QuitOnWindowAllClosed = overlay.QuitOnWindowAllClosed
	}
	if overlay.PlatformOverride != nil {
		out.PlatformOverride = overlay.PlatformOverride
	}
	if overlay.DisableBuiltinQuirks != nil {
		out.DisableBuiltinQuirks = overlay.DisableBuiltinQuirks
	}
	if len(overlay.Quirks) > 0 {
		out.Quirks = append(append([]quirks.Rule(nil), c.Quirks...), overlay.Quirks...)
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	return out
}
