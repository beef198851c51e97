package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.HostURL != nil {
		cfg.HostURL = strings.TrimSpace(*raw.HostURL)
	}
	if raw.WebPort != nil {
		cfg.WebPort = *raw.WebPort
	}
	if raw.RequestTimeout != nil {
		cfg.RequestTimeout = *raw.RequestTimeout
	}
	if raw.QuitOnWindowAllClosed != nil {
		cfg.QuitOnWindowAllClosed = *raw.QuitOnWindowAllClosed
	}
	if raw.PlatformOverride != nil {
		cfg.PlatformOverride = strings.TrimSpace(*raw.PlatformOverride)
	}
	if raw.DisableBuiltinQuirks != nil {
		cfg.DisableBuiltinQuirks = *raw.DisableBuiltinQuirks
	}
	if len(raw.Quirks) > 0 {
		cfg.Quirks = raw.Quirks
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = normalizeLevel(*raw.LogLevel)
	}
	return cfg, nil
}
