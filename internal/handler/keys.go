package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keydock/keydock/internal/lifecycle"
	"github.com/keydock/keydock/internal/model"
	"github.com/keydock/keydock/internal/presentation"
)

// KeysHandler exposes the key lifecycle over HTTP.
type KeysHandler struct {
	logger  *slog.Logger
	manager *lifecycle.Manager
	view    *presentation.View
}

// NewKeysHandler creates a new KeysHandler.
func NewKeysHandler(logger *slog.Logger, manager *lifecycle.Manager, view *presentation.View) *KeysHandler {
	return &KeysHandler{
		logger:  logger,
		manager: manager,
		view:    view,
	}
}

// KeyCreateResponse carries a freshly created record. The plaintext key
// is included here and nowhere else.
type KeyCreateResponse struct {
	RecordID   string `json:"record_id"`
	Key        string `json:"key"`
	OwnerEmail string `json:"owner_email"`
	CreatedAt  string `json:"created_at"`
	UsageCount int    `json:"usage_count"`
	UsageLimit int    `json:"usage_limit"`
	Enabled    bool   `json:"enabled"`
}

func newKeyCreateResponse(record *model.KeyRecord) KeyCreateResponse {
	return KeyCreateResponse{
		RecordID:   record.RecordID,
		Key:        record.KeyValue,
		OwnerEmail: record.OwnerEmail,
		CreatedAt:  record.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		UsageCount: record.UsageCount,
		UsageLimit: record.UsageLimit,
		Enabled:    record.Enabled,
	}
}

// Generate handles POST /api/v1/keys.
// It returns 201 with the full key value, shown once only.
func (h *KeysHandler) Generate(w http.ResponseWriter, r *http.Request) {
	record, err := h.manager.GenerateKey(r.Context())
	if err != nil {
		h.logger.Error("key generation failed", slog.String("error", err.Error()))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newKeyCreateResponse(record))
}

// Ensure handles POST /api/v1/keys/ensure.
// It returns the newest enabled key, creating one if none exists: 200
// when an existing key was reused, 201 when a new one was created.
func (h *KeysHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	record, created, err := h.manager.EnsureKey(r.Context())
	if err != nil {
		h.logger.Error("key ensure failed", slog.String("error", err.Error()))
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, newKeyCreateResponse(record))
}

// List handles GET /api/v1/keys.
// Records come back newest first with the key value redacted.
func (h *KeysHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.manager.LoadKeys(r.Context())
	if err != nil {
		h.logger.Error("key list load failed", slog.String("error", err.Error()))
		writeDomainError(w, err)
		return
	}

	responses := make([]model.KeyRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, record.ToResponse())
	}

	writeJSON(w, http.StatusOK, map[string]any{"keys": responses})
}

// View handles GET /api/v1/keys/view.
// It serves the rendered projection without touching the store.
func (h *KeysHandler) View(w http.ResponseWriter, r *http.Request) {
	entries := h.view.Snapshot()

	response := map[string]any{"keys": entries}
	if err := h.view.LoadError(); err != nil {
		response["stale"] = true
	}
	writeJSON(w, http.StatusOK, response)
}

// Delete handles DELETE /api/v1/keys/{record_id}.
// The X-Confirm header is the confirmation gate: without "true" the
// request stops before any store access, with 428.
func (h *KeysHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "record_id")
	if recordID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Record ID is required")
		return
	}

	ctx := lifecycle.WithConfirmation(r.Context(), r.Header.Get("X-Confirm") == "true")

	if err := h.manager.DeleteKey(ctx, recordID); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
