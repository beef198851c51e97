package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	host_url
//	web_port
//	request_timeout
//	quit_on_window_all_closed
//	platform_override
//	disable_builtin_quirks
//	quirks
//	quirks.<index>.match
//	log_level
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if parts[0] != "quirks" && len(parts) != 1 {
		return nil, fmt.Errorf("unknown config path %q", path)
	}
	switch parts[0] {
	case "host_url":
		return cfg.HostURL, nil
	case "web_port":
		return cfg.WebPort, nil
	case "request_timeout":
		return cfg.RequestTimeout.String(), nil
	case "quit_on_window_all_closed":
		return cfg.QuitOnWindowAllClosed, nil
	case "platform_override":
		return cfg.PlatformOverride, nil
	case "disable_builtin_quirks":
		return cfg.DisableBuiltinQuirks, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "quirks":
		return lookupQuirk(cfg, path, parts[1:])
	default:
		return nil, fmt.Errorf("unknown config path %q", path)
	}
}

func lookupQuirk(cfg *Config, path string, rest []string) (any, error) {
	if len(rest) == 0 {
		return cfg.Quirks, nil
	}
	i, err := strconv.Atoi(rest[0])
	if err != nil || i < 0 || i >= len(cfg.Quirks) {
		return nil, fmt.Errorf("no quirk at %q", path)
	}
	rule := cfg.Quirks[i]
	if len(rest) == 1 {
		return rule, nil
	}
	if len(rest) > 2 {
		return nil, fmt.Errorf("unknown config path %q", path)
	}
	switch rest[1] {
	case "name":
		return rule.Name, nil
	case "match":
		return rule.Match, nil
	case "width_delta":
		return rule.WidthDelta, nil
	case "height_delta":
		return rule.HeightDelta, nil
	case "x_delta":
		return rule.XDelta, nil
	default:
		return nil, fmt.Errorf("unknown config path %q", path)
	}
}
