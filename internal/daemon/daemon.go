// Package daemon runs the long-lived bridge process: one host connection,
// one window manager and the local IPC server in front of it.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/1broseidon/winbridge/internal/bridge"
	"github.com/1broseidon/winbridge/internal/channel"
	"github.com/1broseidon/winbridge/internal/config"
	"github.com/1broseidon/winbridge/internal/ipc"
	"github.com/1broseidon/winbridge/internal/platform"
	"github.com/1broseidon/winbridge/internal/runtimepath"
)

// ErrHostLost is returned by Wait when the host connection drops.
var ErrHostLost = errors.New("host connection lost")

// Options configures a Daemon.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// Level is updated from log_level on reload when set.
	Level *slog.LevelVar
	// SocketPath and PIDPath default to the runtime directory.
	SocketPath string
	PIDPath    string
	// LoadConfig replaces config.Load for reloads.
	LoadConfig func() (*config.Config, error)
}

// Daemon owns the host connection and everything built on it.
type Daemon struct {
	opts     Options
	logger   *slog.Logger
	platform platform.Platform
	sock     *channel.Socket
	mgr      *bridge.Manager
	server   *ipc.Server
	reloadCh chan struct{}
	pidPath  string

	mu  sync.Mutex
	cfg *config.Config

	stopOnce sync.Once
}

// Start connects to the host, applies the configured quit flag and begins
// serving IPC requests.
func Start(ctx context.Context, opts Options) (*Daemon, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("daemon: no config")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}

	plat := platform.Detect(cfg.PlatformOverride)
	logger.Info("platform detected", "platform", plat.Description, "os", plat.OS)

	dialCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	sock, err := channel.Dial(dialCtx, cfg.HostURL, channel.Options{Logger: logger})
	cancel()
	if err != nil {
		return nil, err
	}

	mgr := bridge.New(sock, bridge.Options{
		WebPort:  cfg.WebPort,
		Platform: plat,
		Quirks:   cfg.QuirkRules(),
		Logger:   logger,
	})
	if err := mgr.SetQuitOnAllWindowsClosed(cfg.QuitOnWindowAllClosed); err != nil {
		mgr.Close()
		sock.Close()
		return nil, err
	}

	d := &Daemon{
		opts:     opts,
		logger:   logger,
		platform: plat,
		sock:     sock,
		mgr:      mgr,
		reloadCh: make(chan struct{}, 1),
		cfg:      cfg,
	}

	server, err := ipc.NewServer(cfg, mgr, ipc.ServerOptions{
		SocketPath: opts.SocketPath,
		Platform:   plat,
		HostDone:   sock.Done(),
		Reload:     d.reloadCh,
		LoadConfig: opts.LoadConfig,
	})
	if err == nil {
		err = server.Start()
	}
	if err != nil {
		mgr.Close()
		sock.Close()
		return nil, err
	}
	d.server = server

	if err := d.writePID(); err != nil {
		logger.Warn("failed to write pid file", "error", err)
	}

	logger.Info("daemon started",
		"host_url", cfg.HostURL,
		"socket", server.SocketPath(),
		"quirks", len(cfg.QuirkRules()))
	return d, nil
}

// Wait blocks until ctx ends or the host connection drops. IPC reloads are
// applied while waiting.
func (d *Daemon) Wait(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.sock.Done():
			if err := d.sock.Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrHostLost, err)
			}
			return ErrHostLost
		case <-d.reloadCh:
			d.apply(d.server.GetConfig())
		}
	}
}

// Reload re-reads the config and applies the settings that can change at
// runtime. The platform and quirk rules stay as they were at start.
func (d *Daemon) Reload() error {
	cfg, err := d.opts.LoadConfig()
	if err != nil {
		return err
	}
	d.server.UpdateConfig(cfg)
	d.apply(cfg)
	return nil
}

func (d *Daemon) apply(cfg *config.Config) {
	d.mu.Lock()
	prev := d.cfg
	d.cfg = cfg
	d.mu.Unlock()

	if d.opts.Level != nil {
		d.opts.Level.Set(cfg.SlogLevel())
	}
	if cfg.QuitOnWindowAllClosed != d.mgr.QuitOnAllWindowsClosed() {
		if err := d.mgr.SetQuitOnAllWindowsClosed(cfg.QuitOnWindowAllClosed); err != nil {
			d.logger.Warn("failed to update quit flag", "error", err)
		}
	}
	if keys := restartOnlyChanges(prev, cfg); len(keys) > 0 {
		d.logger.Warn("config changes need a daemon restart", "keys", keys)
	}
	d.logger.Info("config reloaded", "request_timeout", cfg.RequestTimeout, "log_level", cfg.LogLevel)
}

// restartOnlyChanges lists changed keys that only take effect at Start.
func restartOnlyChanges(prev, next *config.Config) []string {
	var keys []string
	if prev.HostURL != next.HostURL {
		keys = append(keys, "host_url")
	}
	if prev.PlatformOverride != next.PlatformOverride {
		keys = append(keys, "platform_override")
	}
	if prev.DisableBuiltinQuirks != next.DisableBuiltinQuirks {
		keys = append(keys, "disable_builtin_quirks")
	}
	if !slices.Equal(prev.Quirks, next.Quirks) {
		keys = append(keys, "quirks")
	}
	return keys
}

// Config returns the config currently in effect.
func (d *Daemon) Config() *config.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// Manager returns the window manager.
func (d *Daemon) Manager() *bridge.Manager { return d.mgr }

// SocketPath returns the IPC socket path.
func (d *Daemon) SocketPath() string { return d.server.SocketPath() }

// Stop shuts down IPC, rejects pending requests and closes the host
// connection. Safe to call more than once.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() {
		d.server.Stop()
		d.mgr.Close()
		d.sock.Close()
		if d.pidPath != "" {
			os.Remove(d.pidPath)
		}
		d.logger.Info("daemon stopped")
	})
}

func (d *Daemon) writePID() error {
	path := d.opts.PIDPath
	if path == "" {
		var err error
		path, err = runtimepath.PIDPath()
		if err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0600); err != nil {
		return err
	}
	d.pidPath = path
	return nil
}

// ReadPID returns the pid recorded by a running daemon.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid pid file %s: %w", path, err)
	}
	return pid, nil
}
