package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/winbridge/internal/config"
	"github.com/1broseidon/winbridge/internal/daemon"
	"github.com/1broseidon/winbridge/internal/entities"
	"github.com/1broseidon/winbridge/internal/ipc"
	"github.com/1broseidon/winbridge/internal/platform"
	"github.com/1broseidon/winbridge/internal/runtimepath"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "window":
		os.Exit(runWindow(os.Args[2:]))
	case "view":
		os.Exit(runView(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winbridge <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Connect to the host and serve IPC (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Ask the daemon to reload its config")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  window create       Create a host window")
	fmt.Fprintln(w, "  window list         List live windows")
	fmt.Fprintln(w, "  window close        Close a window")
	fmt.Fprintln(w, "  window focus        Focus a window")
	fmt.Fprintln(w, "  window bounds       Get or set window bounds")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  view create         Create a view")
	fmt.Fprintln(w, "  view list           List views")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'winbridge <command> --help' for command-specific options.")
}

// newFlagSet builds a subcommand flag set whose usage prints usage lines.
func newFlagSet(name string, usage ...string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		for _, line := range usage {
			fmt.Fprintln(os.Stderr, line)
		}
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags returns an exit code when parsing should stop the command.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

// wantJSON reports whether output should be JSON: forced by flag, or stdout
// is not a terminal.
func wantJSON(forced bool) bool {
	return forced || !term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newLogger(cfg *config.Config) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), level
}

func runDaemon(args []string) int {
	fs := newFlagSet("daemon",
		"Usage: winbridge daemon [--path PATH]",
		"",
		"Connect to the host at host_url and serve IPC requests until interrupted.")
	path := fs.String("path", "", "Config file path (default: ~/.config/winbridge/config.yaml)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	loadConfig := config.Load
	if *path != "" {
		loadConfig = func() (*config.Config, error) {
			res, err := config.LoadFromPath(*path)
			if err != nil {
				return nil, err
			}
			return res.Config, nil
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	logger, level := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := daemon.Start(ctx, daemon.Options{
		Config:     cfg,
		Logger:     logger,
		Level:      level,
		LoadConfig: loadConfig,
	})
	if err != nil {
		logger.Error("failed to start daemon", "error", err)
		return 1
	}
	defer d.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				logger.Info("received SIGHUP, reloading config")
				if err := d.Reload(); err != nil {
					logger.Warn("config reload failed", "error", err)
				}
				continue
			}
			logger.Info("shutting down", "signal", sig.String())
			cancel()
			return
		}
	}()

	if err := d.Wait(ctx); err != nil {
		logger.Error("daemon stopped", "error", err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := newFlagSet("status",
		"Usage: winbridge status [--json]",
		"",
		"Show daemon status via IPC.")
	asJSON := fs.Bool("json", false, "Print JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if pidPath, perr := runtimepath.PIDPath(); perr == nil {
			if pid, rerr := daemon.ReadPID(pidPath); rerr == nil {
				fmt.Fprintf(os.Stderr, "pid file %s names process %d\n", pidPath, pid)
			}
		}
		return 1
	}
	if wantJSON(*asJSON) {
		return printJSON(status)
	}
	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("host_url:        %s\n", status.HostURL)
	fmt.Printf("connected:       %v\n", status.Connected)
	fmt.Printf("platform:        %s\n", status.Platform)
	fmt.Printf("windows:         %d\n", status.WindowCount)
	fmt.Printf("views:           %d\n", status.ViewCount)
	fmt.Printf("pending:         %v\n", status.Pending)
	fmt.Printf("reports:         %d\n", status.ReconcileReports)
	fmt.Printf("quit_on_close:   %v\n", status.QuitOnAllWindowsClosed)
	fmt.Printf("request_timeout: %dms\n", status.RequestTimeoutMillis)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	return 0
}

func runReload(args []string) int {
	fs := newFlagSet("reload",
		"Usage: winbridge reload",
		"",
		"Ask the daemon to reload its config file.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("reloaded")
	return 0
}

func printWindowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  winbridge window create [--width W] [--height H] [--x X] [--y Y] [--title T] [--hidden] [URL]")
	fmt.Fprintln(w, "  winbridge window list [--json]")
	fmt.Fprintln(w, "  winbridge window close [--force] <id>")
	fmt.Fprintln(w, "  winbridge window focus <id>")
	fmt.Fprintln(w, "  winbridge window bounds <id> [--set X,Y,W,H] [--animate]")
}

func runWindow(args []string) int {
	if len(args) == 0 {
		printWindowUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "create":
		return runWindowCreate(args[1:])
	case "list":
		return runWindowList(args[1:])
	case "close":
		return runWindowClose(args[1:])
	case "focus":
		return runWindowFocus(args[1:])
	case "bounds":
		return runWindowBounds(args[1:])
	case "help", "-h", "--help":
		printWindowUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n\n", args[0])
		printWindowUsage(os.Stderr)
		return 2
	}
}

// optionalInt is a flag that records whether it was set.
type optionalInt struct {
	value *int
}

func (o *optionalInt) String() string {
	if o.value == nil {
		return ""
	}
	return strconv.Itoa(*o.value)
}

func (o *optionalInt) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	o.value = &v
	return nil
}

func runWindowCreate(args []string) int {
	fs := newFlagSet("window create",
		"Usage: winbridge window create [options] [URL]",
		"",
		"Create a host window. Without URL the localhost page on web_port is loaded.")
	width := fs.Int("width", 0, "Width in pixels (default 800)")
	height := fs.Int("height", 0, "Height in pixels (default 600)")
	var x, y optionalInt
	fs.Var(&x, "x", "Left edge (default 0)")
	fs.Var(&y, "y", "Top edge (default 0)")
	title := fs.String("title", "", "Window title")
	hidden := fs.Bool("hidden", false, "Create the window without showing it")
	asJSON := fs.Bool("json", false, "Print JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "window create takes at most one URL")
		return 2
	}

	opts := entities.WindowOptions{
		Width:  *width,
		Height: *height,
		X:      x.value,
		Y:      y.value,
		Title:  *title,
	}
	if *hidden {
		show := false
		opts.Show = &show
	}

	info, err := ipc.NewClient().CreateWindow(opts, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if wantJSON(*asJSON) {
		return printJSON(info)
	}
	fmt.Println(info.ID)
	return 0
}

func runWindowList(args []string) int {
	fs := newFlagSet("window list", "Usage: winbridge window list [--json]")
	asJSON := fs.Bool("json", false, "Print JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	windows, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if wantJSON(*asJSON) {
		return printJSON(ipc.WindowsData{Windows: windows})
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID")
	for _, w := range windows {
		fmt.Fprintf(tw, "%d\n", w.ID)
	}
	tw.Flush()
	return 0
}

// parseID reads the single positional id argument of fs.
func parseID(fs *flag.FlagSet) (int, bool) {
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires exactly one <id>\n", fs.Name())
		return 0, false
	}
	id, err := strconv.Atoi(fs.Arg(0))
	if err != nil || id <= 0 {
		fmt.Fprintf(os.Stderr, "invalid id %q\n", fs.Arg(0))
		return 0, false
	}
	return id, true
}

func runWindowClose(args []string) int {
	fs := newFlagSet("window close", "Usage: winbridge window close [--force] <id>")
	force := fs.Bool("force", false, "Destroy without running close handlers")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, ok := parseID(fs)
	if !ok {
		return 2
	}
	if err := ipc.NewClient().CloseWindow(id, *force); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runWindowFocus(args []string) int {
	fs := newFlagSet("window focus", "Usage: winbridge window focus <id>")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, ok := parseID(fs)
	if !ok {
		return 2
	}
	if err := ipc.NewClient().FocusWindow(id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runWindowBounds(args []string) int {
	fs := newFlagSet("window bounds",
		"Usage: winbridge window bounds [--set X,Y,W,H] [--animate] [--json] <id>")
	set := fs.String("set", "", "New bounds as X,Y,W,H")
	animate := fs.Bool("animate", false, "Animate the change")
	asJSON := fs.Bool("json", false, "Print JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, ok := parseID(fs)
	if !ok {
		return 2
	}

	client := ipc.NewClient()
	if *set != "" {
		rect, err := parseRect(*set)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		if err := client.SetBounds(id, rect, *animate); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	bounds, err := client.GetBounds(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if wantJSON(*asJSON) {
		return printJSON(ipc.BoundsData{WindowID: id, Bounds: bounds})
	}
	fmt.Printf("%d,%d,%d,%d\n", bounds.X, bounds.Y, bounds.Width, bounds.Height)
	return 0
}

func printViewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  winbridge view create [--attach ID] [--bounds X,Y,W,H]")
	fmt.Fprintln(w, "  winbridge view list [--json]")
}

func runView(args []string) int {
	if len(args) == 0 {
		printViewUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "create":
		fs := newFlagSet("view create", "Usage: winbridge view create [--attach ID] [--bounds X,Y,W,H]")
		attach := fs.Int("attach", 0, "Window id to attach the view to")
		boundsFlag := fs.String("bounds", "", "View bounds as X,Y,W,H")
		asJSON := fs.Bool("json", false, "Print JSON")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		payload := ipc.CreateViewPayload{AttachTo: *attach}
		if *boundsFlag != "" {
			rect, err := parseRect(*boundsFlag)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 2
			}
			payload.Bounds = &rect
		}
		info, err := ipc.NewClient().CreateView(payload)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if wantJSON(*asJSON) {
			return printJSON(info)
		}
		fmt.Println(info.ID)
		return 0

	case "list":
		fs := newFlagSet("view list", "Usage: winbridge view list [--json]")
		asJSON := fs.Bool("json", false, "Print JSON")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		views, err := ipc.NewClient().ListViews()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if wantJSON(*asJSON) {
			return printJSON(ipc.ViewsData{Views: views})
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID")
		for _, v := range views {
			fmt.Fprintf(tw, "%d\n", v.ID)
		}
		tw.Flush()
		return 0

	case "help", "-h", "--help":
		printViewUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown view command: %s\n\n", args[0])
		printViewUsage(os.Stderr)
		return 2
	}
}

// parseRect parses "X,Y,W,H".
func parseRect(s string) (platform.Rect, error) {
	var r platform.Rect
	n, err := fmt.Sscanf(s, "%d,%d,%d,%d", &r.X, &r.Y, &r.Width, &r.Height)
	if err != nil || n != 4 {
		return platform.Rect{}, fmt.Errorf("invalid bounds %q: want X,Y,W,H", s)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return platform.Rect{}, fmt.Errorf("invalid bounds %q: width and height must be > 0", s)
	}
	return r, nil
}

func loadWithSources(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  winbridge config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  winbridge config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  winbridge config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winbridge/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadWithSources(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("config: ok (%d files, %d quirk rules)\n", len(res.Files), len(res.Config.QuirkRules()))
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winbridge/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		_ = printEffective // default
		if !*printDefaults {
			res, err := loadWithSources(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
			fmt.Printf("# platform: %s\n", platform.Detect(cfg.PlatformOverride).Description)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winbridge/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadWithSources(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceEnv:
		if src.Name != "" {
			return "env:" + src.Name
		}
		return "env"
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
