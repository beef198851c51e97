package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/winbridge/internal/channel"
)

// proxy is the id-scoped plumbing shared by windows, views and web contents.
type proxy struct {
	id     int
	kind   string
	ch     channel.Channel
	calls  *Correlator
	logger *slog.Logger

	mu       sync.Mutex
	handlers map[string][]func(args []json.RawMessage)
	names    map[string]struct{} // channel names this proxy listens on
}

func newProxy(kind string, id int, ch channel.Channel, calls *Correlator, logger *slog.Logger) *proxy {
	return &proxy{
		id:       id,
		kind:     kind,
		ch:       ch,
		calls:    calls,
		logger:   logger.With(kind+"_id", id),
		handlers: make(map[string][]func(args []json.RawMessage)),
		names:    make(map[string]struct{}),
	}
}

// command emits a fire-and-forget request carrying the entity id first.
// Liveness is not checked: a command to a vanished entity is still sent.
func (p *proxy) command(event string, args ...any) error {
	return p.ch.Emit(event, append([]any{p.id}, args...)...)
}

// query emits event with the entity id and waits for the id-scoped response.
func query[T any](ctx context.Context, p *proxy, event string, args ...any) (T, error) {
	response := completed(event, p.id)
	v, err := p.calls.Call(ctx, Request{
		Event:    event,
		Args:     append([]any{p.id}, args...),
		Response: response,
		Decode: func(raw []json.RawMessage) (any, error) {
			return decodeArg[T](response, raw)
		},
	})
	out, ok := v.(T)
	if err == nil && !ok {
		err = fmt.Errorf("%s: unexpected result %T", response, v)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// subscribe adds a local handler for a host-pushed notification. The host
// is asked to forward the notification when the first handler is added.
func (p *proxy) subscribe(event string, fn func(args []json.RawMessage)) error {
	name := scoped(p.kind+"-"+event, p.id)

	p.mu.Lock()
	first := len(p.handlers[event]) == 0
	p.handlers[event] = append(p.handlers[event], fn)
	p.names[name] = struct{}{}
	p.mu.Unlock()

	if !first {
		return nil
	}
	p.ch.On(name, func(args []json.RawMessage) {
		p.notify(event, args)
	})
	return p.ch.Emit("register-"+p.kind+"-"+event, p.id)
}

func (p *proxy) notify(event string, args []json.RawMessage) {
	p.mu.Lock()
	hs := make([]func([]json.RawMessage), len(p.handlers[event]))
	copy(hs, p.handlers[event])
	p.mu.Unlock()

	for _, h := range hs {
		h(args)
	}
}

// listen installs a persistent id-scoped handler that replaces any earlier
// one for the same name.
func (p *proxy) listen(base string, h channel.Handler) {
	name := scoped(base, p.id)
	p.ch.Off(name)
	p.ch.On(name, h)

	p.mu.Lock()
	p.names[name] = struct{}{}
	p.mu.Unlock()
}

// release drops every local subscription of the entity.
func (p *proxy) release() {
	p.mu.Lock()
	names := p.names
	p.names = make(map[string]struct{})
	p.handlers = make(map[string][]func(args []json.RawMessage))
	p.mu.Unlock()

	for name := range names {
		p.ch.Off(name)
	}
}

func noArgs(fn func()) func([]json.RawMessage) {
	return func([]json.RawMessage) { fn() }
}

func stringArg(fn func(string), logger *slog.Logger, event string) func([]json.RawMessage) {
	return func(args []json.RawMessage) {
		v, err := decodeArg[string](event, args)
		if err != nil {
			logger.Warn("dropping notification", "event", event, "error", err)
			return
		}
		fn(v)
	}
}
