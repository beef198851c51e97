// Package channel provides the named-event duplex transport between the
// controller and the host process.
package channel

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrClosed is returned by Emit once the channel has been closed.
var ErrClosed = errors.New("channel: closed")

// Handler receives the ordered argument payload of one inbound message.
type Handler func(args []json.RawMessage)

// Channel is a persistent, ordered, named-event pipe.
type Channel interface {
	// Emit sends a message tagged with name. It does not wait for the peer.
	Emit(name string, args ...any) error
	// On registers h for every message tagged name until Off(name).
	On(name string, h Handler)
	// Off removes all handlers for name. Idempotent.
	Off(name string)
}

// Doner is implemented by channels that can report loss of the peer.
type Doner interface {
	Done() <-chan struct{}
}

// Message is the wire envelope of one event.
type Message struct {
	Event string            `json:"event"`
	Args  []json.RawMessage `json:"args,omitempty"`
}

// EncodeMessage marshals name and args into a wire envelope.
func EncodeMessage(name string, args ...any) ([]byte, error) {
	msg, err := newMessage(name, args...)
	if err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

// DecodeMessage parses a wire envelope.
func DecodeMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Event == "" {
		return Message{}, fmt.Errorf("message missing event name")
	}
	return msg, nil
}

func newMessage(name string, args ...any) (Message, error) {
	if name == "" {
		return Message{}, fmt.Errorf("empty event name")
	}
	msg := Message{Event: name}
	if len(args) > 0 {
		msg.Args = make([]json.RawMessage, len(args))
	}
	for i, arg := range args {
		raw, err := json.Marshal(arg)
		if err != nil {
			return Message{}, fmt.Errorf("failed to marshal %s arg %d: %w", name, i, err)
		}
		msg.Args[i] = raw
	}
	return msg, nil
}

// handlerTable maps event names to their handlers.
type handlerTable struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func newHandlerTable() *handlerTable {
	return &handlerTable{handlers: make(map[string][]Handler)}
}

func (t *handlerTable) on(name string, h Handler) {
	if h == nil {
		return
	}
	t.mu.Lock()
	t.handlers[name] = append(t.handlers[name], h)
	t.mu.Unlock()
}

func (t *handlerTable) off(name string) {
	t.mu.Lock()
	delete(t.handlers, name)
	t.mu.Unlock()
}

// dispatch invokes the handlers registered for msg.Event, in registration
// order. It reports false when no handler was registered.
func (t *handlerTable) dispatch(msg Message) bool {
	t.mu.RLock()
	hs := t.handlers[msg.Event]
	snapshot := make([]Handler, len(hs))
	copy(snapshot, hs)
	t.mu.RUnlock()

	for _, h := range snapshot {
		h(msg.Args)
	}
	return len(snapshot) > 0
}

func dispatchLogged(t *handlerTable, msg Message, logger *slog.Logger) {
	defer func() {
		if err := recover(); err != nil {
			logger.Error("event handler panic recovered", "event", msg.Event, "error", err)
		}
	}()
	if !t.dispatch(msg) {
		logger.Debug("no handler for inbound event", "event", msg.Event)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
