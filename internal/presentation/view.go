// Package presentation projects lifecycle events into the rendered key
// list. It performs no store access and no filtering of its own; it
// mirrors the manager's last known state exactly.
package presentation

import (
	"log/slog"
	"sync"

	"github.com/keydock/keydock/internal/lifecycle"
	"github.com/keydock/keydock/internal/metrics"
	"github.com/keydock/keydock/internal/model"
)

// View is the rendered, ordered list of {key, record ID} pairs.
type View struct {
	logger  *slog.Logger
	metrics metrics.Recorder

	mu      sync.RWMutex
	entries []model.KeySummary
	loadErr error
}

// NewView creates a View and subscribes it to the manager's events.
func NewView(manager *lifecycle.Manager, logger *slog.Logger, recorder metrics.Recorder) *View {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	v := &View{
		logger:  logger.With("component", "presentation.view"),
		metrics: recorder,
	}
	manager.Subscribe(v.apply)
	return v
}

// apply folds one lifecycle event into the rendered list.
func (v *View) apply(event lifecycle.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch e := event.(type) {
	case lifecycle.ListReplaced:
		entries := make([]model.KeySummary, 0, len(e.Records))
		for i := range e.Records {
			entries = append(entries, e.Records[i].Summary())
		}
		v.entries = entries
		v.loadErr = nil

	case lifecycle.ListCleared:
		v.entries = nil
		v.loadErr = nil

	case lifecycle.KeyAdded:
		// Newest first, matching the load order.
		v.entries = append([]model.KeySummary{e.Record.Summary()}, v.entries...)

	case lifecycle.KeyRemoved:
		entries := v.entries[:0]
		for _, entry := range v.entries {
			if entry.RecordID != e.RecordID {
				entries = append(entries, entry)
			}
		}
		v.entries = entries

	case lifecycle.LoadFailed:
		// Keep the previously rendered list; remember the failure.
		v.loadErr = e.Err
		v.logger.Warn("key list load failed", "error", e.Err)
	}

	v.metrics.SetRenderedKeys(len(v.entries))
}

// Snapshot returns a copy of the rendered list, newest first.
func (v *View) Snapshot() []model.KeySummary {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]model.KeySummary, len(v.entries))
	copy(out, v.entries)
	return out
}

// LoadError returns the error from the most recent failed load, or nil
// after a successful load or a cleared list.
func (v *View) LoadError() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loadErr
}
