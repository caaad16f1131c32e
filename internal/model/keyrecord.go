package model

import "time"

// DefaultUsageLimit is the monthly quota assigned to new keys.
// Usage bookkeeping fields are stored with every record but enforcement
// happens in a separate server-side component, not here.
const DefaultUsageLimit = 100

// KeyRecord represents a persisted API key and its metadata.
type KeyRecord struct {
	RecordID   string    `json:"record_id"`
	KeyValue   string    `json:"key"` // Plaintext secret - display with care
	OwnerID    string    `json:"owner_id"`
	OwnerEmail string    `json:"owner_email"`
	CreatedAt  time.Time `json:"created_at"`
	UsageCount int       `json:"usage_count"`
	UsageLimit int       `json:"usage_limit"`
	LastReset  time.Time `json:"last_reset"`
	Enabled    bool      `json:"enabled"`
}

// KeyRecordInput carries the caller-supplied fields for a new key record.
// RecordID, CreatedAt and LastReset are assigned by the store at insert
// time from a single server-authoritative timestamp.
type KeyRecordInput struct {
	KeyValue   string
	OwnerID    string
	OwnerEmail string
	UsageCount int
	UsageLimit int
	Enabled    bool
}

// NewKeyRecordInput assembles an input with the default quota fields.
func NewKeyRecordInput(keyValue, ownerID, ownerEmail string) KeyRecordInput {
	return KeyRecordInput{
		KeyValue:   keyValue,
		OwnerID:    ownerID,
		OwnerEmail: ownerEmail,
		UsageCount: 0,
		UsageLimit: DefaultUsageLimit,
		Enabled:    true,
	}
}

// KeySummary is the {keyValue, recordID} pair the presentation layer
// renders for each key.
type KeySummary struct {
	RecordID string `json:"record_id"`
	KeyValue string `json:"key"`
}

// Summary returns the presentation pair for this record.
func (r *KeyRecord) Summary() KeySummary {
	return KeySummary{RecordID: r.RecordID, KeyValue: r.KeyValue}
}

// KeyRecordResponse is the list-endpoint form of a record. The secret is
// truncated; the full value is returned only once, at creation.
type KeyRecordResponse struct {
	RecordID   string    `json:"record_id"`
	KeyPreview string    `json:"key_preview"`
	OwnerEmail string    `json:"owner_email"`
	CreatedAt  time.Time `json:"created_at"`
	UsageCount int       `json:"usage_count"`
	UsageLimit int       `json:"usage_limit"`
	LastReset  time.Time `json:"last_reset"`
	Enabled    bool      `json:"enabled"`
}

// ToResponse converts a KeyRecord to its redacted response form.
func (r *KeyRecord) ToResponse() KeyRecordResponse {
	return KeyRecordResponse{
		RecordID:   r.RecordID,
		KeyPreview: RedactKey(r.KeyValue),
		OwnerEmail: r.OwnerEmail,
		CreatedAt:  r.CreatedAt,
		UsageCount: r.UsageCount,
		UsageLimit: r.UsageLimit,
		LastReset:  r.LastReset,
		Enabled:    r.Enabled,
	}
}

// RedactKey truncates a key value for logs and list responses, keeping
// enough of the prefix to correlate without exposing the secret.
func RedactKey(key string) string {
	const visible = 8
	if len(key) <= visible {
		return key
	}
	return key[:visible] + "..."
}
