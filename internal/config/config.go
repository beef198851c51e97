package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/winbridge/internal/quirks"
)

const (
	DefaultHostURL        = "ws://127.0.0.1:8001/bridge"
	DefaultWebPort        = 8000
	DefaultRequestTimeout = 10 * time.Second
	// MaxRequestTimeout stays below the IPC client deadline so a client
	// always outlives the daemon's wait on the host.
	MaxRequestTimeout = 25 * time.Second
)

// EnvLogLevel overrides log_level when set.
const EnvLogLevel = "WINBRIDGE_LOG_LEVEL"

// Config is the effective winbridge configuration.
type Config struct {
	// HostURL is the WebSocket endpoint of the host process.
	HostURL string `yaml:"host_url"`
	// WebPort is appended to the default localhost load URL.
	WebPort int `yaml:"web_port"`
	// RequestTimeout bounds every creation and query issued by the daemon.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// QuitOnWindowAllClosed is sent to the host once connected.
	QuitOnWindowAllClosed bool `yaml:"quit_on_window_all_closed"`
	// PlatformOverride replaces the probed platform description.
	PlatformOverride string `yaml:"platform_override,omitempty"`
	// DisableBuiltinQuirks drops the shipped compensation rules.
	DisableBuiltinQuirks bool `yaml:"disable_builtin_quirks,omitempty"`
	// Quirks are additional compensation rules, tried after the builtin ones.
	Quirks   []quirks.Rule `yaml:"quirks,omitempty"`
	LogLevel string        `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		HostURL:               DefaultHostURL,
		WebPort:               DefaultWebPort,
		RequestTimeout:        DefaultRequestTimeout,
		QuitOnWindowAllClosed: true,
		LogLevel:              "info",
	}
}

// QuirkRules returns the compensation rules in match order.
func (c *Config) QuirkRules() []quirks.Rule {
	var rules []quirks.Rule
	if !c.DisableBuiltinQuirks {
		rules = append(rules, quirks.Builtin...)
	}
	rules = append(rules, c.Quirks...)
	if rules == nil {
		// An empty, non-nil set means "no rules" rather than "use builtin".
		return []quirks.Rule{}
	}
	return rules
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	return ParseLogLevel(c.LogLevel)
}

// ParseLogLevel maps debug, info, warning or error to a slog level. Unknown
// values map to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); strings.TrimSpace(v) != "" {
		c.LogLevel = normalizeLevel(v)
	}
}

func normalizeLevel(s string) string {
	level := strings.ToLower(strings.TrimSpace(s))
	if level == "warn" {
		return "warning"
	}
	return level
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HostURL) == "" {
		return &ValidationError{Path: "host_url", Err: fmt.Errorf("host_url is required")}
	}
	u, err := url.Parse(c.HostURL)
	if err != nil {
		return &ValidationError{Path: "host_url", Err: fmt.Errorf("invalid url: %w", err)}
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return &ValidationError{Path: "host_url", Err: fmt.Errorf("host_url scheme must be ws or wss, got %q", u.Scheme)}
	}
	if u.Host == "" {
		return &ValidationError{Path: "host_url", Err: fmt.Errorf("host_url must include a host")}
	}
	if c.WebPort < 0 || c.WebPort > 65535 {
		return &ValidationError{Path: "web_port", Err: fmt.Errorf("web_port must be between 0 and 65535")}
	}
	if c.RequestTimeout <= 0 {
		return &ValidationError{Path: "request_timeout", Err: fmt.Errorf("request_timeout must be > 0")}
	}
	if c.RequestTimeout > MaxRequestTimeout {
		return &ValidationError{Path: "request_timeout", Err: fmt.Errorf("request_timeout must be <= %s", MaxRequestTimeout)}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if err := quirks.Validate(c.Quirks); err != nil {
		var rerr *quirks.RuleError
		if errors.As(err, &rerr) {
			return &ValidationError{Path: fmt.Sprintf("quirks.%d.match", rerr.Index), Err: rerr.Err}
		}
		return &ValidationError{Path: "quirks", Err: err}
	}
	return nil
}
