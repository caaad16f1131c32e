// Package store provides persistence for key records: the external
// document store implementations and the session-scoped adapter in
// front of them.
package store

import (
	"context"
	"errors"

	"github.com/keydock/keydock/internal/model"
)

// ErrRecordNotFound indicates no record matched the query.
var ErrRecordNotFound = errors.New("key record not found")

// DocumentStore is the external Key Store capability: a document
// collection queryable by owner, ordered by creation time descending.
// The store assigns record IDs and server-authoritative timestamps;
// created_at and last_reset come from a single timestamp per insert.
type DocumentStore interface {
	// Insert persists a new record and returns it with the
	// store-assigned RecordID, CreatedAt and LastReset filled in.
	Insert(ctx context.Context, input model.KeyRecordInput) (*model.KeyRecord, error)

	// QueryByOwner returns all records for the owner, newest first.
	// An owner with no records yields an empty slice, not an error.
	QueryByOwner(ctx context.Context, ownerID string) ([]model.KeyRecord, error)

	// FindActiveByOwner returns the newest enabled record for the
	// owner, or ErrRecordNotFound when none exists.
	FindActiveByOwner(ctx context.Context, ownerID string) (*model.KeyRecord, error)

	// DeleteByID removes the record with the given ID. Deleting a
	// nonexistent ID is not an error.
	DeleteByID(ctx context.Context, recordID string) error

	// Ping checks store connectivity.
	Ping(ctx context.Context) error
}
