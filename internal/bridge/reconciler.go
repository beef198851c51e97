package bridge

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/1broseidon/winbridge/internal/channel"
)

// Reconciler keeps the window registry consistent with the host's report of
// live window ids. It works by set difference, so missed or coalesced close
// notifications are absorbed by the next report.
type Reconciler struct {
	ch      channel.Channel
	schemas *schemaSet
	windows *Registry[*Window]
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	reports int
}

// NewReconciler creates a reconciler for windows fed by ch.
func NewReconciler(ch channel.Channel, windows *Registry[*Window], logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{
		ch:      ch,
		schemas: mustCompileSchemas(),
		windows: windows,
		logger:  logger,
	}
}

// Start subscribes to closed-set reports. It replaces any earlier
// subscription on the report event.
func (r *Reconciler) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ch.Off(EventWindowClosed)
	r.ch.On(EventWindowClosed, r.handleReport)
	r.running = true
	r.logger.Info("reconciler started", "event", EventWindowClosed)
}

// Stop removes the subscription.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.ch.Off(EventWindowClosed)
	r.running = false
	r.logger.Info("reconciler stopped")
}

// Reports returns the number of reports applied so far.
func (r *Reconciler) Reports() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reports
}

func (r *Reconciler) handleReport(args []json.RawMessage) {
	// A bad report must not take the dispatch goroutine down.
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	alive, err := r.schemas.decodeIDList(EventWindowClosed, args)
	if err != nil {
		r.logger.Warn("reconciler: rejecting report", "error", err)
		return
	}
	r.ReconcileNow(alive)
}

// ReconcileNow applies one report of live ids and returns the ids removed.
func (r *Reconciler) ReconcileNow(alive []int) []int {
	removed := r.windows.Reconcile(alive)

	r.mu.Lock()
	r.reports++
	r.mu.Unlock()

	ids := make([]int, 0, len(removed))
	for _, w := range removed {
		r.logger.Info("reconciler: window gone from host", "window_id", w.ID())
		w.release()
		ids = append(ids, w.ID())
	}
	if len(ids) == 0 {
		r.logger.Debug("reconciler: no drift", "alive", len(alive))
	}
	return ids
}
