package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/1broseidon/winbridge/internal/channel"
)

var (
	// ErrSuperseded rejects a pending request whose response slot was
	// cleared by a newer request on the same response event.
	ErrSuperseded = errors.New("bridge: request superseded")
	// ErrClosed rejects pending requests when the bridge or channel closes.
	ErrClosed = errors.New("bridge: closed")
)

// Request is one emit whose result arrives as a one-shot response event.
type Request struct {
	// Event is the outbound event name.
	Event string
	// Args is the ordered outbound payload.
	Args []any
	// Response is the inbound event that carries the result.
	Response string
	// Decode turns the response payload into the call's result. It runs on
	// the dispatch goroutine exactly once, even if the caller has given up.
	// A nil Decode returns the raw arguments.
	Decode func(args []json.RawMessage) (any, error)
}

type result struct {
	value any
	err   error
}

// slot is the single pending result for one response event.
type slot struct {
	event string
	done  chan result
}

// gate serializes callers of one response name. It is dropped from the
// table once no caller holds or waits on it.
type gate struct {
	sem   chan struct{}
	users int
}

// Correlator turns an emit plus a matching one-shot event into a call.
//
// Each response event name owns at most one pending slot. Calls that share a
// response name are serialized by a per-name gate held from arming until the
// result arrives, so a later caller never clears an earlier caller's slot.
type Correlator struct {
	ch     channel.Channel
	logger *slog.Logger
	closed <-chan struct{}

	mu        sync.Mutex
	slots     map[string]*slot
	gates     map[string]*gate
	shutdown  chan struct{}
	closeOnce sync.Once
}

// NewCorrelator creates a correlator over ch. When ch reports peer loss,
// pending calls fail with ErrClosed.
func NewCorrelator(ch channel.Channel, logger *slog.Logger) *Correlator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Correlator{
		ch:       ch,
		logger:   logger,
		slots:    make(map[string]*slot),
		gates:    make(map[string]*gate),
		shutdown: make(chan struct{}),
	}
	if d, ok := ch.(channel.Doner); ok {
		c.closed = d.Done()
	}
	return c
}

// Call arms the response slot, emits the request and waits for the result.
//
// If ctx ends first the caller gets ctx.Err() but the slot stays armed: a
// late response is still consumed (and decoded) by this request, and only a
// newer request on the same response name clears it.
func (c *Correlator) Call(ctx context.Context, req Request) (any, error) {
	select {
	case <-c.shutdown:
		return nil, ErrClosed
	case <-c.closed:
		return nil, ErrClosed
	default:
	}

	g := c.acquireGate(req.Response)
	defer c.releaseGate(req.Response, g)
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.shutdown:
		return nil, ErrClosed
	case <-c.closed:
		return nil, ErrClosed
	}
	defer func() { <-g.sem }()

	s := c.arm(req)

	// Emit strictly after the handler is in place. A response that raced the
	// failed write may already have resolved the slot; the write error still
	// wins and any entity it registered stays registered.
	if err := c.ch.Emit(req.Event, req.Args...); err != nil {
		err = fmt.Errorf("emit %s: %w", req.Event, err)
		c.disarm(s, err)
		return nil, err
	}

	select {
	case r := <-s.done:
		return r.value, r.err
	case <-ctx.Done():
		c.logger.Warn("caller abandoned pending request",
			"event", req.Event,
			"response", req.Response,
			"error", ctx.Err())
		return nil, ctx.Err()
	case <-c.shutdown:
		return nil, ErrClosed
	case <-c.closed:
		c.disarm(s, ErrClosed)
		return nil, ErrClosed
	}
}

// Pending lists response events that currently have an armed slot.
func (c *Correlator) Pending() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.slots))
	for name := range c.slots {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Close rejects every pending slot with ErrClosed and fails future calls.
func (c *Correlator) Close() {
	c.closeOnce.Do(func() {
		close(c.shutdown)
		c.mu.Lock()
		pending := make([]*slot, 0, len(c.slots))
		for name, s := range c.slots {
			delete(c.slots, name)
			pending = append(pending, s)
		}
		c.mu.Unlock()

		for _, s := range pending {
			c.ch.Off(s.event)
			s.done <- result{err: ErrClosed}
		}
	})
}

func (c *Correlator) acquireGate(name string) *gate {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.gates[name]
	if !ok {
		g = &gate{sem: make(chan struct{}, 1)}
		c.gates[name] = g
	}
	g.users++
	return g
}

func (c *Correlator) releaseGate(name string, g *gate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g.users--
	if g.users == 0 && c.gates[name] == g {
		delete(c.gates, name)
	}
}

func (c *Correlator) gateCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.gates)
}

// arm clears any stale handler for req.Response, then installs a
// self-deregistering handler bound to a fresh slot.
func (c *Correlator) arm(req Request) *slot {
	name := req.Response
	c.ch.Off(name)

	s := &slot{event: name, done: make(chan result, 1)}

	c.mu.Lock()
	stale, hadStale := c.slots[name]
	c.slots[name] = s
	c.mu.Unlock()

	if hadStale {
		c.logger.Warn("superseding abandoned request", "response", name)
		stale.done <- result{err: ErrSuperseded}
	}

	decode := req.Decode
	c.ch.On(name, func(args []json.RawMessage) {
		c.fire(s, decode, args)
	})
	return s
}

// fire resolves s with the first response; later duplicates are dropped.
func (c *Correlator) fire(s *slot, decode func([]json.RawMessage) (any, error), args []json.RawMessage) {
	if !c.take(s) {
		c.logger.Debug("dropping duplicate response", "response", s.event)
		return
	}
	c.ch.Off(s.event)

	var r result
	if decode != nil {
		r.value, r.err = decode(args)
	} else {
		r.value = args
	}
	if r.err != nil {
		c.logger.Warn("rejecting response", "response", s.event, "error", r.err)
	}
	s.done <- r
}

// disarm rejects s with err if it is still pending.
func (c *Correlator) disarm(s *slot, err error) {
	if !c.take(s) {
		return
	}
	c.ch.Off(s.event)
	s.done <- result{err: err}
}

// take removes s from the routing table. Only the caller that gets true may
// send on s.done, which keeps it a single-send channel.
func (c *Correlator) take(s *slot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slots[s.event] != s {
		return false
	}
	delete(c.slots, s.event)
	return true
}
