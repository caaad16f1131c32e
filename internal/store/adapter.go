package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/keydock/keydock/internal/auth"
	"github.com/keydock/keydock/internal/model"
)

// Adapter scopes every store operation to the current session identity.
// All reads are filtered to the active owner at the query level; no
// component other than the Adapter writes to the store.
type Adapter struct {
	session *auth.Session
	store   DocumentStore
}

// NewAdapter creates an Adapter over the given session and store.
func NewAdapter(session *auth.Session, store DocumentStore) *Adapter {
	return &Adapter{session: session, store: store}
}

// Insert persists a new record for the current identity. The input's
// owner fields must match the active session.
func (a *Adapter) Insert(ctx context.Context, input model.KeyRecordInput) (*model.KeyRecord, error) {
	identity := a.session.Current()
	if identity == nil {
		return nil, auth.ErrNotAuthenticated
	}
	if input.OwnerID != identity.ID {
		return nil, fmt.Errorf("owner %q does not match active session %q", input.OwnerID, identity.ID)
	}

	record, err := a.store.Insert(ctx, input)
	if err != nil {
		return nil, NewStoreError("insert", err)
	}
	return record, nil
}

// QueryCurrent returns all records owned by the current identity,
// newest first. An owner with no records yields an empty slice.
func (a *Adapter) QueryCurrent(ctx context.Context) ([]model.KeyRecord, error) {
	identity := a.session.Current()
	if identity == nil {
		return nil, auth.ErrNotAuthenticated
	}

	records, err := a.store.QueryByOwner(ctx, identity.ID)
	if err != nil {
		return nil, NewStoreError("query", err)
	}
	return records, nil
}

// FindActiveCurrent returns the newest enabled record owned by the
// current identity, or ErrRecordNotFound.
func (a *Adapter) FindActiveCurrent(ctx context.Context) (*model.KeyRecord, error) {
	identity := a.session.Current()
	if identity == nil {
		return nil, auth.ErrNotAuthenticated
	}

	record, err := a.store.FindActiveByOwner(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, err
		}
		return nil, NewStoreError("find active", err)
	}
	return record, nil
}

// DeleteByID removes one record by its store-assigned ID. Deleting a
// nonexistent ID succeeds.
func (a *Adapter) DeleteByID(ctx context.Context, recordID string) error {
	if a.session.Current() == nil {
		return auth.ErrNotAuthenticated
	}

	if err := a.store.DeleteByID(ctx, recordID); err != nil {
		return NewStoreError("delete", err)
	}
	return nil
}
