package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultWriteTimeout = 10 * time.Second
	defaultSendBuffer   = 256
)

// Options configures a Socket.
type Options struct {
	Logger       *slog.Logger
	WriteTimeout time.Duration
	SendBuffer   int
	Header       http.Header
}

// Socket is a Channel carried over a single WebSocket connection. Every
// message is one text frame holding a JSON Message envelope.
type Socket struct {
	id     string
	conn   *websocket.Conn
	logger *slog.Logger
	table  *handlerTable

	writeTimeout time.Duration
	sendCh       chan []byte

	done      chan struct{}
	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
}

var _ Channel = (*Socket)(nil)

// Dial connects to the host's event endpoint.
func Dial(ctx context.Context, url string, opts Options) (*Socket, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, opts.Header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host at %s: %w", url, err)
	}
	return NewSocket(conn, opts), nil
}

// NewSocket wraps an established connection and starts its read and write
// pumps. The socket owns conn from here on.
func NewSocket(conn *websocket.Conn, opts Options) *Socket {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	id := uuid.NewString()
	s := &Socket{
		id:           id,
		conn:         conn,
		logger:       logger.With("conn_id", id),
		table:        newHandlerTable(),
		writeTimeout: opts.WriteTimeout,
		sendCh:       make(chan []byte, opts.SendBuffer),
		done:         make(chan struct{}),
	}

	go s.writePump()
	go s.readLoop()

	s.logger.Info("channel connected", "remote", conn.RemoteAddr().String())
	return s
}

// ID returns the connection id used in log records.
func (s *Socket) ID() string {
	return s.id
}

// Emit queues a message for the write pump.
func (s *Socket) Emit(name string, args ...any) error {
	data, err := EncodeMessage(name, args...)
	if err != nil {
		return err
	}

	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	select {
	case s.sendCh <- data:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// On registers h for every inbound message tagged name.
func (s *Socket) On(name string, h Handler) {
	s.table.on(name, h)
}

// Off removes all handlers for name.
func (s *Socket) Off(name string) {
	s.table.off(name)
}

// Done is closed when the connection terminates.
func (s *Socket) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that terminated the connection, if any.
func (s *Socket) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Close sends a close frame and tears the connection down.
func (s *Socket) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "controller closing"), deadline)
	s.shutdown(nil)
	return nil
}

func (s *Socket) shutdown(err error) {
	s.closeOnce.Do(func() {
		s.errMu.Lock()
		s.err = err
		s.errMu.Unlock()
		close(s.done)
		s.conn.Close()
		if err != nil {
			s.logger.Warn("channel closed", "error", err)
		} else {
			s.logger.Info("channel closed")
		}
	})
}

// writePump is the only writer on conn.
func (s *Socket) writePump() {
	for {
		select {
		case data := <-s.sendCh:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.shutdown(fmt.Errorf("write failed: %w", err))
				return
			}
		case <-s.done:
			return
		}
	}
}

// readLoop is the dispatch goroutine: handlers run here, one message at a
// time, in arrival order.
func (s *Socket) readLoop() {
	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
				errors.Is(err, websocket.ErrCloseSent) {
				s.shutdown(nil)
			} else {
				s.shutdown(fmt.Errorf("read failed: %w", err))
			}
			return
		}
		if kind != websocket.TextMessage {
			s.logger.Debug("ignoring non-text frame", "type", kind)
			continue
		}

		msg, err := DecodeMessage(data)
		if err != nil {
			s.logger.Warn("dropping malformed frame", "error", err)
			continue
		}
		dispatchLogged(s.table, msg, s.logger)
	}
}
