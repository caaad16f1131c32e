// Package lifecycle orchestrates the API key lifecycle: generation,
// loading, and revocation for the current session, with events that
// keep the presentation layer in sync.
package lifecycle

import "github.com/keydock/keydock/internal/model"

// Event is a lifecycle notification delivered to subscribers. Events
// reflect only store-confirmed state: a failed operation emits nothing
// (except LoadFailed, which reports the failure itself).
type Event interface {
	isEvent()
}

// ListReplaced carries the full key list for the current owner, newest
// first. Emitted after a successful load.
type ListReplaced struct {
	Records []model.KeyRecord
}

// ListCleared signals that the session ended and the displayed list
// must be emptied. No store access is involved.
type ListCleared struct{}

// KeyAdded carries a newly persisted record.
type KeyAdded struct {
	Record model.KeyRecord
}

// KeyRemoved carries the ID of a deleted record.
type KeyRemoved struct {
	RecordID string
}

// LoadFailed reports a failed key list load. The previously rendered
// list stays as-is.
type LoadFailed struct {
	Err error
}

func (ListReplaced) isEvent() {}
func (ListCleared) isEvent()  {}
func (KeyAdded) isEvent()     {}
func (KeyRemoved) isEvent()   {}
func (LoadFailed) isEvent()   {}
