package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/winbridge/internal/channel"
	"github.com/1broseidon/winbridge/internal/entities"
	"github.com/1broseidon/winbridge/internal/platform"
	"github.com/1broseidon/winbridge/internal/quirks"
)

// Options configures a Manager.
type Options struct {
	// WebPort is appended to the default localhost load URL.
	WebPort int
	// Platform selects quirk compensation. The zero value matches no rule.
	Platform platform.Platform
	// Quirks replaces quirks.Builtin when non-nil.
	Quirks []quirks.Rule
	Logger *slog.Logger
}

// Manager creates host windows and views and keeps the local registries.
type Manager struct {
	ch      channel.Channel
	calls   *Correlator
	schemas *schemaSet
	logger  *slog.Logger

	webPort  int
	platform platform.Platform
	rules    []quirks.Rule

	windows    *Registry[*Window]
	views      *Registry[*View]
	reconciler *Reconciler

	mu             sync.Mutex
	quitOnAllClose bool
	closed         bool
}

// New creates a manager over ch and starts window reconciliation.
func New(ch channel.Channel, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rules := opts.Quirks
	if rules == nil {
		rules = quirks.Builtin
	}

	m := &Manager{
		ch:             ch,
		calls:          NewCorrelator(ch, logger),
		schemas:        mustCompileSchemas(),
		logger:         logger,
		webPort:        opts.WebPort,
		platform:       opts.Platform,
		rules:          rules,
		windows:        NewRegistry[*Window](),
		views:          NewRegistry[*View](),
		quitOnAllClose: true,
	}
	m.reconciler = NewReconciler(ch, m.windows, logger)
	m.reconciler.Start()
	return m
}

// CreateWindow asks the host for a new window and waits for its id. An
// empty url loads the default localhost page on the web port.
//
// The window is registered when the host answers, even if ctx ended first.
func (m *Manager) CreateWindow(ctx context.Context, opts entities.WindowOptions, url string) (*Window, error) {
	if m.isClosed() {
		return nil, ErrClosed
	}
	url = quirks.NormalizeURL(url, m.webPort)
	wire := quirks.Compensate(opts, m.platform, m.rules)

	v, err := m.calls.Call(ctx, Request{
		Event:    EventCreateWindow,
		Args:     []any{wire, url},
		Response: EventWindowCreated,
		Decode:   m.decodeWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	w, ok := v.(*Window)
	if !ok {
		return nil, fmt.Errorf("create window: unexpected result %T", v)
	}
	return w, nil
}

// CreateWindowDefault creates a window with the default options.
func (m *Manager) CreateWindowDefault(ctx context.Context, url string) (*Window, error) {
	return m.CreateWindow(ctx, entities.DefaultWindowOptions(), url)
}

func (m *Manager) decodeWindow(args []json.RawMessage) (any, error) {
	id, err := m.schemas.decodeID(EventWindowCreated, args)
	if err != nil {
		return nil, err
	}
	w, added := m.windows.Add(newWindow(id, m.ch, m.calls, m.logger, m.windows.Get))
	if !added {
		m.logger.Warn("host reused a live window id", "window_id", id)
	} else {
		m.logger.Info("window created", "window_id", id)
	}
	return w, nil
}

// CreateView asks the host for a new browser view and waits for its id.
func (m *Manager) CreateView(ctx context.Context, opts entities.ViewOptions) (*View, error) {
	if m.isClosed() {
		return nil, ErrClosed
	}
	v, err := m.calls.Call(ctx, Request{
		Event:    EventCreateView,
		Args:     []any{opts},
		Response: EventViewCreated,
		Decode:   m.decodeView,
	})
	if err != nil {
		return nil, fmt.Errorf("create view: %w", err)
	}
	view, ok := v.(*View)
	if !ok {
		return nil, fmt.Errorf("create view: unexpected result %T", v)
	}
	return view, nil
}

func (m *Manager) decodeView(args []json.RawMessage) (any, error) {
	id, err := m.schemas.decodeID(EventViewCreated, args)
	if err != nil {
		return nil, err
	}
	v, added := m.views.Add(newView(id, m.ch, m.calls, m.logger))
	if !added {
		m.logger.Warn("host reused a live view id", "view_id", id)
	} else {
		m.logger.Info("view created", "view_id", id)
	}
	return v, nil
}

// Windows returns the live windows in creation order.
func (m *Manager) Windows() []*Window { return m.windows.List() }

// Views returns the known views in creation order.
func (m *Manager) Views() []*View { return m.views.List() }

// Window looks up a live window by id.
func (m *Manager) Window(id int) (*Window, bool) { return m.windows.Get(id) }

// View looks up a view by id.
func (m *Manager) View(id int) (*View, bool) { return m.views.Get(id) }

// SetQuitOnAllWindowsClosed tells the host whether to quit once its last
// window closes.
func (m *Manager) SetQuitOnAllWindowsClosed(quit bool) error {
	if err := m.ch.Emit(EventQuitOnWindowsClosed, quit); err != nil {
		return fmt.Errorf("set quit on all windows closed: %w", err)
	}
	m.mu.Lock()
	m.quitOnAllClose = quit
	m.mu.Unlock()
	return nil
}

// QuitOnAllWindowsClosed returns the last value sent to the host. It
// defaults to true.
func (m *Manager) QuitOnAllWindowsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quitOnAllClose
}

// Pending lists the response events with a request in flight.
func (m *Manager) Pending() []string { return m.calls.Pending() }

// Reconciler returns the window reconciler.
func (m *Manager) Reconciler() *Reconciler { return m.reconciler }

// Close stops reconciliation, rejects pending requests and drops every
// local subscription. The channel itself is left to its owner.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.reconciler.Stop()
	m.calls.Close()
	for _, w := range m.windows.Clear() {
		w.release()
	}
	for _, v := range m.views.Clear() {
		v.release()
	}
	m.logger.Info("manager closed")
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
