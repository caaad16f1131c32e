package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/keydock/keydock/internal/auth"
	"github.com/keydock/keydock/internal/metrics"
	"github.com/keydock/keydock/internal/model"
	"github.com/keydock/keydock/internal/store"
)

// ErrDeleteNotConfirmed indicates the caller declined the deletion
// prompt. No store access happens in that case.
var ErrDeleteNotConfirmed = errors.New("key deletion not confirmed")

// deletePrompt is the question put to the Confirmer before a delete.
const deletePrompt = "Delete this API key?"

// Manager orchestrates the key lifecycle for the current session. Every
// operation requires an active identity; the session epoch captured at
// operation start guards against attributing late store responses to a
// session that has since changed.
type Manager struct {
	session *auth.Session
	adapter *store.Adapter
	confirm Confirmer
	logger  *slog.Logger
	metrics metrics.Recorder

	// mu serializes event emission so one operation's events are not
	// interleaved with another's.
	mu          sync.Mutex
	subscribers []func(Event)
}

// NewManager creates a Manager and wires it to session transitions:
// signing in triggers an automatic key list reload, signing out clears
// the displayed list without touching the store.
func NewManager(session *auth.Session, adapter *store.Adapter, confirm Confirmer, logger *slog.Logger, recorder metrics.Recorder) *Manager {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	m := &Manager{
		session: session,
		adapter: adapter,
		confirm: confirm,
		logger:  logger.With("component", "lifecycle.manager"),
		metrics: recorder,
	}

	session.OnChange(func(identity *model.Identity) {
		if identity == nil {
			m.emit(ListCleared{})
			return
		}
		go func() {
			if _, err := m.LoadKeys(context.Background()); err != nil {
				m.logger.Warn("automatic key reload failed", "error", err)
			}
		}()
	})

	return m
}

// Subscribe registers a handler for lifecycle events. Handlers are
// invoked synchronously in subscription order.
func (m *Manager) Subscribe(handler func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, handler)
}

// emit delivers an event to all subscribers under the emission lock.
func (m *Manager) emit(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, handler := range m.subscribers {
		handler(event)
	}
}

// GenerateKey creates key material, persists a record for the current
// identity, and emits KeyAdded on store-confirmed success. The full
// record, including the plaintext key, is returned to the caller once.
func (m *Manager) GenerateKey(ctx context.Context) (*model.KeyRecord, error) {
	identity, epoch := m.session.Snapshot()
	if identity == nil {
		return nil, auth.ErrNotAuthenticated
	}

	keyValue, err := auth.GenerateKeyValue()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	input := model.NewKeyRecordInput(keyValue, identity.ID, identity.Email)
	record, err := m.adapter.Insert(ctx, input)
	if err != nil {
		// No event, no optimistic update: the list reflects only
		// store-confirmed state.
		return nil, err
	}

	m.logger.Info("api key generated",
		slog.String("record_id", record.RecordID),
		slog.String("key_preview", model.RedactKey(record.KeyValue)),
		slog.String("user_id", identity.ID),
	)
	m.metrics.IncKeyGenerated()

	if m.session.Epoch() != epoch {
		// The session changed while the insert was in flight. The
		// record exists, but it belongs to the previous session's
		// display; do not surface it to the current one.
		m.logger.Debug("suppressing key-added event for stale session",
			slog.String("record_id", record.RecordID))
		return record, nil
	}

	m.emit(KeyAdded{Record: *record})
	return record, nil
}

// LoadKeys queries the store for the current owner's records, newest
// first, emits ListReplaced, and returns the records. A load that
// completes after the session has changed is still returned to the
// caller but emits nothing; a failed load emits LoadFailed and leaves
// the previously rendered list as-is.
func (m *Manager) LoadKeys(ctx context.Context) ([]model.KeyRecord, error) {
	identity, epoch := m.session.Snapshot()
	if identity == nil {
		return nil, auth.ErrNotAuthenticated
	}

	records, err := m.adapter.QueryCurrent(ctx)

	if m.session.Epoch() != epoch {
		m.logger.Debug("discarding stale key list response",
			slog.String("user_id", identity.ID))
		return records, err
	}

	if err != nil {
		m.metrics.IncLoadFailed()
		m.emit(LoadFailed{Err: err})
		return nil, err
	}

	m.metrics.IncKeysLoaded()
	m.logger.Debug("key list loaded",
		slog.String("user_id", identity.ID),
		slog.Int("count", len(records)),
	)

	m.emit(ListReplaced{Records: records})
	return records, nil
}

// DeleteKey removes one record after the Confirmer approves. Without
// confirmation no store access happens. KeyRemoved is emitted only on
// store-confirmed success.
func (m *Manager) DeleteKey(ctx context.Context, recordID string) error {
	identity, epoch := m.session.Snapshot()
	if identity == nil {
		return auth.ErrNotAuthenticated
	}

	confirmed, err := m.confirm.Confirm(ctx, deletePrompt)
	if err != nil {
		return fmt.Errorf("confirm deletion: %w", err)
	}
	if !confirmed {
		return ErrDeleteNotConfirmed
	}

	if err := m.adapter.DeleteByID(ctx, recordID); err != nil {
		// The list stays unchanged; no speculative removal.
		return err
	}

	m.logger.Info("api key deleted",
		slog.String("record_id", recordID),
		slog.String("user_id", identity.ID),
	)
	m.metrics.IncKeyDeleted()

	if m.session.Epoch() != epoch {
		m.logger.Debug("suppressing key-removed event for stale session",
			slog.String("record_id", recordID))
		return nil
	}

	m.emit(KeyRemoved{RecordID: recordID})
	return nil
}

// EnsureKey returns the newest enabled key for the current identity,
// generating one if none exists. The second return value reports
// whether a new key was created.
func (m *Manager) EnsureKey(ctx context.Context) (*model.KeyRecord, bool, error) {
	if m.session.Current() == nil {
		return nil, false, auth.ErrNotAuthenticated
	}

	record, err := m.adapter.FindActiveCurrent(ctx)
	if err == nil {
		return record, false, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, false, err
	}

	record, err = m.GenerateKey(ctx)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}
