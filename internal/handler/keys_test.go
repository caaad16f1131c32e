package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/keydock/keydock/internal/auth"
	"github.com/keydock/keydock/internal/lifecycle"
	"github.com/keydock/keydock/internal/model"
	"github.com/keydock/keydock/internal/presentation"
	"github.com/keydock/keydock/internal/store"
)

// testEnv wires a full in-memory application behind a chi router.
type testEnv struct {
	session *auth.Session
	memory  *store.Memory
	manager *lifecycle.Manager
	view    *presentation.View
	router  *chi.Mux
	loaded  chan struct{}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authenticator := auth.NewStaticAuthenticator(map[string]model.Identity{
		"alice-token": {ID: "alice", DisplayName: "Alice", Email: "alice@example.com"},
		"bob-token":   {ID: "bob", DisplayName: "Bob", Email: "bob@example.com"},
	})

	session := auth.NewSession(authenticator, logger)
	memory := store.NewMemory()
	adapter := store.NewAdapter(session, memory)
	manager := lifecycle.NewManager(session, adapter, lifecycle.ContextConfirmer{}, logger, nil)
	view := presentation.NewView(manager, logger, nil)

	// Signals each completed list load so tests can wait out the
	// automatic reload that sign-in triggers.
	loaded := make(chan struct{}, 16)
	manager.Subscribe(func(e lifecycle.Event) {
		if _, ok := e.(lifecycle.ListReplaced); ok {
			select {
			case loaded <- struct{}{}:
			default:
			}
		}
	})

	sessionHandler := NewSessionHandler(logger, session, nil)
	keysHandler := NewKeysHandler(logger, manager, view)

	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Post("/", sessionHandler.SignIn)
			r.Get("/", sessionHandler.Current)
			r.Delete("/", sessionHandler.SignOut)
		})
		r.Route("/keys", func(r chi.Router) {
			r.Post("/", keysHandler.Generate)
			r.Post("/ensure", keysHandler.Ensure)
			r.Get("/", keysHandler.List)
			r.Get("/view", keysHandler.View)
			r.Delete("/{record_id}", keysHandler.Delete)
		})
	})

	return &testEnv{
		session: session,
		memory:  memory,
		manager: manager,
		view:    view,
		router:  router,
		loaded:  loaded,
	}
}

func (env *testEnv) do(t *testing.T, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) signIn(t *testing.T, token string) {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/v1/session", map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("sign-in returned %d: %s", rec.Code, rec.Body.String())
	}
	select {
	case <-env.loaded:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the post-sign-in key reload")
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeBody(t, rec, &body)
	return body.Error.Code
}

func TestSession_SignInAndCurrent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/session", map[string]string{
		"Authorization": "Bearer alice-token",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp SessionResponse
	decodeBody(t, rec, &resp)
	if resp.Identity == nil || resp.Identity.ID != "alice" {
		t.Fatalf("identity = %+v, want alice", resp.Identity)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/session", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("current session status = %d, want 200", rec.Code)
	}
}

func TestSession_SignInRejectsBadCredential(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/session", map[string]string{
		"Authorization": "Bearer wrong-token",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "UNAUTHORIZED" {
		t.Errorf("error code = %q, want UNAUTHORIZED", code)
	}
}

func TestSession_SignInRequiresBearer(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/session", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSession_CurrentWithoutSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/session", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestSession_SignOutIsIdempotent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodDelete, "/api/v1/session", nil)
		if rec.Code != http.StatusNoContent {
			t.Errorf("sign-out %d status = %d, want 204", i, rec.Code)
		}
	}
}

func TestKeys_GenerateReturnsFullKeyOnce(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.signIn(t, "alice-token")

	rec := env.do(t, http.MethodPost, "/api/v1/keys", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created KeyCreateResponse
	decodeBody(t, rec, &created)
	if !auth.ValidateKeyFormat(created.Key) {
		t.Errorf("generated key %q has the wrong format", created.Key)
	}
	if created.UsageLimit != model.DefaultUsageLimit {
		t.Errorf("usage limit = %d, want %d", created.UsageLimit, model.DefaultUsageLimit)
	}
	if !created.Enabled {
		t.Error("new key should be enabled")
	}

	// The list endpoint must never echo the full secret back.
	rec = env.do(t, http.MethodGet, "/api/v1/keys", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), created.Key) {
		t.Error("list response leaked the full key value")
	}
	if !strings.Contains(rec.Body.String(), created.Key[:8]+"...") {
		t.Error("list response should carry the redacted preview")
	}
}

func TestKeys_GenerateRequiresSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/keys", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if n := env.memory.Len(); n != 0 {
		t.Errorf("store holds %d records, want 0", n)
	}
}

func TestKeys_ListNewestFirst(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	env.memory.SetClock(func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	})

	ctx := context.Background()
	for _, kv := range []string{"sk_first", "sk_second"} {
		if _, err := env.memory.Insert(ctx, model.NewKeyRecordInput(kv, "alice", "alice@example.com")); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	env.signIn(t, "alice-token")

	rec := env.do(t, http.MethodGet, "/api/v1/keys", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Keys []model.KeyRecordResponse `json:"keys"`
	}
	decodeBody(t, rec, &body)
	if len(body.Keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(body.Keys))
	}
	if body.Keys[0].KeyPreview != "sk_secon..." {
		t.Errorf("keys[0] preview = %q, want the newer record first", body.Keys[0].KeyPreview)
	}
}

func TestKeys_DeleteRequiresConfirmHeader(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.signIn(t, "alice-token")

	rec := env.do(t, http.MethodPost, "/api/v1/keys", nil)
	var created KeyCreateResponse
	decodeBody(t, rec, &created)

	rec = env.do(t, http.MethodDelete, "/api/v1/keys/"+created.RecordID, nil)
	if rec.Code != http.StatusPreconditionRequired {
		t.Fatalf("status = %d, want 428", rec.Code)
	}
	if code := errorCode(t, rec); code != "CONFIRMATION_REQUIRED" {
		t.Errorf("error code = %q, want CONFIRMATION_REQUIRED", code)
	}
	if n := env.memory.Len(); n != 1 {
		t.Errorf("store holds %d records after refused delete, want 1", n)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/keys/"+created.RecordID, map[string]string{
		"X-Confirm": "true",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("confirmed delete status = %d, want 204", rec.Code)
	}
	if n := env.memory.Len(); n != 0 {
		t.Errorf("store holds %d records after delete, want 0", n)
	}
}

func TestKeys_DeleteUnknownIDSucceeds(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.signIn(t, "alice-token")

	rec := env.do(t, http.MethodDelete, "/api/v1/keys/no-such-record", map[string]string{
		"X-Confirm": "true",
	})
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestKeys_EnsureCreatesThenReuses(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.signIn(t, "alice-token")

	rec := env.do(t, http.MethodPost, "/api/v1/keys/ensure", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first ensure status = %d, want 201", rec.Code)
	}
	var first KeyCreateResponse
	decodeBody(t, rec, &first)

	rec = env.do(t, http.MethodPost, "/api/v1/keys/ensure", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second ensure status = %d, want 200", rec.Code)
	}
	var second KeyCreateResponse
	decodeBody(t, rec, &second)

	if first.RecordID != second.RecordID {
		t.Errorf("ensure created a second key: %q vs %q", first.RecordID, second.RecordID)
	}
}

func TestKeys_ViewReflectsLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.signIn(t, "alice-token")

	rec := env.do(t, http.MethodPost, "/api/v1/keys", nil)
	var created KeyCreateResponse
	decodeBody(t, rec, &created)

	rec = env.do(t, http.MethodGet, "/api/v1/keys/view", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("view status = %d, want 200", rec.Code)
	}

	var body struct {
		Keys []model.KeySummary `json:"keys"`
	}
	decodeBody(t, rec, &body)
	if len(body.Keys) != 1 || body.Keys[0].RecordID != created.RecordID {
		t.Errorf("view = %+v, want the generated key", body.Keys)
	}
}
