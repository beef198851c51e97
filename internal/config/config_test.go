package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/winbridge/internal/quirks"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if !cfg.QuitOnWindowAllClosed {
		t.Fatalf("expected quit_on_window_all_closed to default to true")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.HostURL != DefaultHostURL {
		t.Fatalf("expected host_url %q, got %q", DefaultHostURL, res.Config.HostURL)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.RequestTimeout != DefaultRequestTimeout {
		t.Fatalf("expected request_timeout %v, got %v", DefaultRequestTimeout, res.Config.RequestTimeout)
	}
}

func TestLoadFromPath_AllFields(t *testing.T) {
	data := strings.Join([]string{
		`host_url: "wss://host.local:9000/bridge"`,
		`web_port: 5050`,
		`request_timeout: 2500ms`,
		`quit_on_window_all_closed: false`,
		`platform_override: "Microsoft Windows 10.0.19045"`,
		`log_level: WARN`,
		`quirks:`,
		`  - name: hidpi`,
		`    match: "HiDPI"`,
		`    width_delta: 2`,
		``,
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.HostURL != "wss://host.local:9000/bridge" {
		t.Fatalf("host_url = %q", cfg.HostURL)
	}
	if cfg.WebPort != 5050 {
		t.Fatalf("web_port = %d", cfg.WebPort)
	}
	if cfg.RequestTimeout != 2500*time.Millisecond {
		t.Fatalf("request_timeout = %v", cfg.RequestTimeout)
	}
	if cfg.QuitOnWindowAllClosed {
		t.Fatalf("expected quit_on_window_all_closed false")
	}
	if cfg.LogLevel != "warning" {
		t.Fatalf("log_level = %q, want warning", cfg.LogLevel)
	}
	rules := cfg.QuirkRules()
	if len(rules) != len(quirks.Builtin)+1 || rules[len(rules)-1].Name != "hidpi" {
		t.Fatalf("QuirkRules() = %+v", rules)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "hotkey: Mod4-t\n")
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "web_port: 8000\nrequest_timeout: 0s\n")
	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "request_timeout" {
		t.Fatalf("path = %q, want request_timeout", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("source line = %d, want 2", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("error %q does not carry the line", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{name: "empty host", mutate: func(c *Config) { c.HostURL = "" }, path: "host_url"},
		{name: "http scheme", mutate: func(c *Config) { c.HostURL = "http://localhost:8001" }, path: "host_url"},
		{name: "no host", mutate: func(c *Config) { c.HostURL = "ws:///bridge" }, path: "host_url"},
		{name: "port range", mutate: func(c *Config) { c.WebPort = 70000 }, path: "web_port"},
		{name: "timeout", mutate: func(c *Config) { c.RequestTimeout = -time.Second }, path: "request_timeout"},
		{name: "timeout above max", mutate: func(c *Config) { c.RequestTimeout = MaxRequestTimeout + time.Millisecond }, path: "request_timeout"},
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "loud" }, path: "log_level"},
		{name: "quirk match", mutate: func(c *Config) { c.Quirks = []quirks.Rule{{Name: "x"}} }, path: "quirks.0.match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want ValidationError", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestLoadFromPath_IncludesMergeInOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "conf.d"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, filepath.Join(dir, "conf.d"), "10-port.yaml", "web_port: 7000\nquirks:\n  - name: a\n    match: A\n")
	writeConfig(t, filepath.Join(dir, "conf.d"), "20-port.yaml", "web_port: 7001\nquirks:\n  - name: b\n    match: B\n")
	writeConfig(t, filepath.Join(dir, "conf.d"), "ignored.txt", "web_port: 1\n")
	path := writeConfig(t, dir, "config.yaml", "include: conf.d\nlog_level: debug\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.WebPort != 7001 {
		t.Fatalf("web_port = %d, want 7001", res.Config.WebPort)
	}
	if len(res.Config.Quirks) != 2 || res.Config.Quirks[0].Name != "a" || res.Config.Quirks[1].Name != "b" {
		t.Fatalf("quirks = %+v, want [a b]", res.Config.Quirks)
	}
	if len(res.Files) != 3 {
		t.Fatalf("files = %v, want 3 entries", res.Files)
	}

	_, src, err := Explain(res, "web_port")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if !strings.HasSuffix(src.File, "20-port.yaml") {
		t.Fatalf("web_port source = %+v, want 20-port.yaml", src)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")
	_, err := LoadFromPath(filepath.Join(dir, "a.yaml"))
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestLoadFromPath_EnvLogLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "DEBUG")
	path := writeConfig(t, t.TempDir(), "config.yaml", "log_level: error\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "debug" {
		t.Fatalf("log_level = %q, want debug", res.Config.LogLevel)
	}
	if res.Config.SlogLevel() != slog.LevelDebug {
		t.Fatalf("SlogLevel() = %v", res.Config.SlogLevel())
	}
	_, src, _ := Explain(res, "log_level")
	if src.Kind != SourceEnv {
		t.Fatalf("log_level source = %+v, want env", src)
	}
}

func TestQuirkRules(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.QuirkRules(); len(got) != len(quirks.Builtin) {
		t.Fatalf("QuirkRules() = %+v, want builtin", got)
	}

	cfg.DisableBuiltinQuirks = true
	got := cfg.QuirkRules()
	if got == nil || len(got) != 0 {
		t.Fatalf("QuirkRules() with builtin disabled = %#v, want empty non-nil", got)
	}
}

func TestExplain(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "quirks:\n  - name: a\n    match: Foo\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "quirks.0.match")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "Foo" || src.Kind != SourceFile || src.Line != 3 {
		t.Fatalf("Explain(quirks.0.match) = %v, %+v", val, src)
	}

	val, src, err = Explain(res, "web_port")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != DefaultWebPort || src.Kind != SourceDefault {
		t.Fatalf("Explain(web_port) = %v, %+v", val, src)
	}

	for _, bad := range []string{"", "nope", "web_port.x", "quirks.5", "quirks.0.color"} {
		if _, _, err := Explain(res, bad); err == nil {
			t.Fatalf("Explain(%q) expected error", bad)
		}
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WebPort = 6000
	cfg.RequestTimeout = 3 * time.Second
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.WebPort != 6000 || res.Config.RequestTimeout != 3*time.Second {
		t.Fatalf("reloaded = %+v", res.Config)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
