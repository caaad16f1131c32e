package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/keydock/keydock/internal/model"
)

// Memory implements DocumentStore in process memory. Used in
// development mode and tests; it mirrors the Postgres semantics,
// including store-assigned IDs and a single server timestamp per
// insert.
type Memory struct {
	mu      sync.Mutex
	records []model.KeyRecord

	// now is the store's server clock. Overridable in tests.
	now func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{now: func() time.Time { return time.Now().UTC() }}
}

// SetClock replaces the store's server clock. Test use only.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Ping always succeeds.
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// Insert persists a new key record with a store-assigned ID and
// timestamp.
func (m *Memory) Insert(ctx context.Context, input model.KeyRecordInput) (*model.KeyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	createdAt := m.now()
	record := model.KeyRecord{
		RecordID:   ulid.Make().String(),
		KeyValue:   input.KeyValue,
		OwnerID:    input.OwnerID,
		OwnerEmail: input.OwnerEmail,
		CreatedAt:  createdAt,
		UsageCount: input.UsageCount,
		UsageLimit: input.UsageLimit,
		LastReset:  createdAt,
		Enabled:    input.Enabled,
	}

	m.records = append(m.records, record)

	copied := record
	return &copied, nil
}

// QueryByOwner returns the owner's records, newest first.
func (m *Memory) QueryByOwner(ctx context.Context, ownerID string) ([]model.KeyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]model.KeyRecord, 0)
	for _, record := range m.records {
		if record.OwnerID == ownerID {
			results = append(results, record)
		}
	}

	// Newest first. Order within equal timestamps is unspecified, as
	// with the Postgres store.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	return results, nil
}

// FindActiveByOwner returns the newest enabled record for the owner.
func (m *Memory) FindActiveByOwner(ctx context.Context, ownerID string) (*model.KeyRecord, error) {
	records, err := m.QueryByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if record.Enabled {
			copied := record
			return &copied, nil
		}
	}

	return nil, ErrRecordNotFound
}

// DeleteByID removes a record; unknown IDs are a no-op.
func (m *Memory) DeleteByID(ctx context.Context, recordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, record := range m.records {
		if record.RecordID == recordID {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}

	return nil
}

// Len reports the number of stored records. Test use only.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
