package channel

import (
	"log/slog"
	"sync"
)

// PipeEnd is one side of an in-memory duplex channel. Messages are encoded
// exactly as they are on a Socket, so payload handling is identical.
type PipeEnd struct {
	name   string
	logger *slog.Logger
	table  *handlerTable
	peer   *PipeEnd

	mu    sync.Mutex
	queue []Message
	wake  chan struct{}

	done      chan struct{}
	closeOnce *sync.Once
}

var _ Channel = (*PipeEnd)(nil)

// Pipe returns two connected ends. Messages emitted on one end are
// dispatched, in send order, on the other end's own dispatch goroutine.
func Pipe(logger *slog.Logger) (*PipeEnd, *PipeEnd) {
	if logger == nil {
		logger = discardLogger()
	}
	done := make(chan struct{})
	once := &sync.Once{}
	a := newPipeEnd("controller", logger, done, once)
	b := newPipeEnd("host", logger, done, once)
	a.peer, b.peer = b, a
	go a.dispatchLoop()
	go b.dispatchLoop()
	return a, b
}

func newPipeEnd(name string, logger *slog.Logger, done chan struct{}, once *sync.Once) *PipeEnd {
	return &PipeEnd{
		name:      name,
		logger:    logger.With("pipe_end", name),
		table:     newHandlerTable(),
		wake:      make(chan struct{}, 1),
		done:      done,
		closeOnce: once,
	}
}

// Emit delivers a message to the peer end.
func (p *PipeEnd) Emit(name string, args ...any) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}

	data, err := EncodeMessage(name, args...)
	if err != nil {
		return err
	}
	msg, err := DecodeMessage(data)
	if err != nil {
		return err
	}
	p.peer.enqueue(msg)
	return nil
}

// On registers h for every message tagged name.
func (p *PipeEnd) On(name string, h Handler) {
	p.table.on(name, h)
}

// Off removes all handlers for name.
func (p *PipeEnd) Off(name string) {
	p.table.off(name)
}

// Done is closed when either end is closed.
func (p *PipeEnd) Done() <-chan struct{} {
	return p.done
}

// Close shuts both ends down. Queued messages are discarded.
func (p *PipeEnd) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	return nil
}

func (p *PipeEnd) enqueue(msg Message) {
	p.mu.Lock()
	p.queue = append(p.queue, msg)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *PipeEnd) dispatchLoop() {
	for {
		select {
		case <-p.done:
			return
		case <-p.wake:
		}

		for {
			p.mu.Lock()
			if len(p.queue) == 0 {
				p.mu.Unlock()
				break
			}
			msg := p.queue[0]
			p.queue = p.queue[1:]
			p.mu.Unlock()

			dispatchLogged(p.table, msg, p.logger)
		}
	}
}
