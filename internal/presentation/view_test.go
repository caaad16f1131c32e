package presentation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/keydock/keydock/internal/auth"
	"github.com/keydock/keydock/internal/lifecycle"
	"github.com/keydock/keydock/internal/model"
	"github.com/keydock/keydock/internal/store"
)

type viewEnv struct {
	session *auth.Session
	memory  *store.Memory
	manager *lifecycle.Manager
	view    *View
}

func newViewEnv(t *testing.T) *viewEnv {
	t.Helper()

	authenticator := auth.NewStaticAuthenticator(map[string]model.Identity{
		"alice-token": {ID: "alice", Email: "alice@example.com"},
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := auth.NewSession(authenticator, logger)
	memory := store.NewMemory()
	adapter := store.NewAdapter(session, memory)
	manager := lifecycle.NewManager(session, adapter, lifecycle.ContextConfirmer{}, logger, nil)
	view := NewView(manager, logger, nil)

	return &viewEnv{session: session, memory: memory, manager: manager, view: view}
}

func waitForLen(t *testing.T, view *View, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(view.Snapshot()) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("view never reached %d entries; has %+v", want, view.Snapshot())
}

func TestView_ReflectsGeneratedKeys(t *testing.T) {
	t.Parallel()

	env := newViewEnv(t)
	ctx := context.Background()

	if _, err := env.session.SignIn(ctx, "alice-token"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	waitForLen(t, env.view, 0)

	first, err := env.manager.GenerateKey(ctx)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	second, err := env.manager.GenerateKey(ctx)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	entries := env.view.Snapshot()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].RecordID != second.RecordID || entries[1].RecordID != first.RecordID {
		t.Errorf("wrong order: %+v", entries)
	}
	if entries[0].KeyValue != second.KeyValue {
		t.Errorf("entry key = %q, want %q", entries[0].KeyValue, second.KeyValue)
	}
}

func TestView_RemovesDeletedKey(t *testing.T) {
	t.Parallel()

	env := newViewEnv(t)
	ctx := context.Background()

	if _, err := env.session.SignIn(ctx, "alice-token"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	waitForLen(t, env.view, 0)

	keep, err := env.manager.GenerateKey(ctx)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	doomed, err := env.manager.GenerateKey(ctx)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	if err := env.manager.DeleteKey(lifecycle.WithConfirmation(ctx, true), doomed.RecordID); err != nil {
		t.Fatalf("DeleteKey failed: %v", err)
	}

	entries := env.view.Snapshot()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].RecordID != keep.RecordID {
		t.Errorf("remaining entry = %+v, want %s", entries[0], keep.RecordID)
	}
}

func TestView_ClearsOnSignOut(t *testing.T) {
	t.Parallel()

	env := newViewEnv(t)
	ctx := context.Background()

	if _, err := env.session.SignIn(ctx, "alice-token"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	waitForLen(t, env.view, 0)

	if _, err := env.manager.GenerateKey(ctx); err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	waitForLen(t, env.view, 1)

	if err := env.session.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	if entries := env.view.Snapshot(); len(entries) != 0 {
		t.Errorf("view not cleared after sign-out: %+v", entries)
	}
}

func TestView_KeepsListOnLoadFailure(t *testing.T) {
	t.Parallel()

	env := newViewEnv(t)
	ctx := context.Background()

	if _, err := env.session.SignIn(ctx, "alice-token"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	waitForLen(t, env.view, 0)

	if _, err := env.manager.GenerateKey(ctx); err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	waitForLen(t, env.view, 1)
	before := env.view.Snapshot()

	// A failed load reports the failure but leaves the rendered list
	// as-is. Feed the projection directly.
	env.view.apply(lifecycle.LoadFailed{Err: errors.New("store unreachable")})

	after := env.view.Snapshot()
	if len(after) != len(before) || after[0] != before[0] {
		t.Errorf("rendered list changed on load failure: %+v vs %+v", after, before)
	}
	if env.view.LoadError() == nil {
		t.Error("LoadError should report the failed load")
	}
}
