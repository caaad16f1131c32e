package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keydock/keydock/internal/model"
)

func TestMemory_Insert_AssignsIDAndTimestamps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	record, err := m.Insert(ctx, model.NewKeyRecordInput("sk_a", "alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if record.RecordID == "" {
		t.Error("RecordID should be assigned by the store")
	}
	if record.CreatedAt.IsZero() {
		t.Error("CreatedAt should be assigned by the store")
	}
	if !record.LastReset.Equal(record.CreatedAt) {
		t.Errorf("LastReset = %v, want CreatedAt %v", record.LastReset, record.CreatedAt)
	}
}

func TestMemory_QueryByOwner_ScopedAndOrdered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	// Deterministic clock: each insert one minute apart.
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	m.SetClock(func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	})

	if _, err := m.Insert(ctx, model.NewKeyRecordInput("sk_alice_old", "alice", "alice@example.com")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := m.Insert(ctx, model.NewKeyRecordInput("sk_bob", "bob", "bob@example.com")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := m.Insert(ctx, model.NewKeyRecordInput("sk_alice_new", "alice", "alice@example.com")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	records, err := m.QueryByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("QueryByOwner failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for _, record := range records {
		if record.OwnerID != "alice" {
			t.Errorf("record %s owned by %q, want alice", record.RecordID, record.OwnerID)
		}
	}
	if records[0].KeyValue != "sk_alice_new" || records[1].KeyValue != "sk_alice_old" {
		t.Errorf("wrong order: [%s, %s], want newest first", records[0].KeyValue, records[1].KeyValue)
	}
}

func TestMemory_QueryByOwner_EmptyIsNotError(t *testing.T) {
	t.Parallel()

	m := NewMemory()

	records, err := m.QueryByOwner(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("QueryByOwner failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestMemory_FindActiveByOwner_SkipsDisabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	m.SetClock(func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	})

	enabled := model.NewKeyRecordInput("sk_enabled", "alice", "alice@example.com")
	if _, err := m.Insert(ctx, enabled); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	disabled := model.NewKeyRecordInput("sk_disabled", "alice", "alice@example.com")
	disabled.Enabled = false
	if _, err := m.Insert(ctx, disabled); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// The disabled record is newer but must be skipped.
	record, err := m.FindActiveByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("FindActiveByOwner failed: %v", err)
	}
	if record.KeyValue != "sk_enabled" {
		t.Errorf("KeyValue = %s, want sk_enabled", record.KeyValue)
	}
}

func TestMemory_FindActiveByOwner_NotFound(t *testing.T) {
	t.Parallel()

	m := NewMemory()

	_, err := m.FindActiveByOwner(context.Background(), "nobody")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got: %v", err)
	}
}

func TestMemory_DeleteByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	record, err := m.Insert(ctx, model.NewKeyRecordInput("sk_a", "alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := m.DeleteByID(ctx, record.RecordID); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("store should be empty after delete, has %d", m.Len())
	}

	// Deleting a nonexistent ID is not an error.
	if err := m.DeleteByID(ctx, record.RecordID); err != nil {
		t.Errorf("repeated delete should succeed, got: %v", err)
	}
	if err := m.DeleteByID(ctx, "never-existed"); err != nil {
		t.Errorf("deleting unknown ID should succeed, got: %v", err)
	}
}
