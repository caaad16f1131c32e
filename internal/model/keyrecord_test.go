package model

import (
	"testing"
	"time"
)

func TestNewKeyRecordInput_Defaults(t *testing.T) {
	t.Parallel()

	input := NewKeyRecordInput("sk_test", "user-1", "user@example.com")

	if input.UsageCount != 0 {
		t.Errorf("UsageCount = %d, want 0", input.UsageCount)
	}
	if input.UsageLimit != DefaultUsageLimit {
		t.Errorf("UsageLimit = %d, want %d", input.UsageLimit, DefaultUsageLimit)
	}
	if !input.Enabled {
		t.Error("Enabled should default to true")
	}
	if input.OwnerID != "user-1" || input.OwnerEmail != "user@example.com" {
		t.Errorf("owner fields not carried: %+v", input)
	}
}

func TestKeyRecord_ToResponse_RedactsSecret(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	record := KeyRecord{
		RecordID:   "rec-1",
		KeyValue:   "sk_AAAAAABBBBBBCCCCCCDDDDDDEEEEEEFF",
		OwnerID:    "user-1",
		OwnerEmail: "user@example.com",
		CreatedAt:  now,
		UsageLimit: DefaultUsageLimit,
		LastReset:  now,
		Enabled:    true,
	}

	resp := record.ToResponse()
	if resp.KeyPreview != "sk_AAAAA..." {
		t.Errorf("KeyPreview = %q, want truncated prefix", resp.KeyPreview)
	}
	if resp.RecordID != "rec-1" || resp.OwnerEmail != "user@example.com" {
		t.Errorf("response fields not carried: %+v", resp)
	}
}

func TestRedactKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"long key", "sk_0123456789abcdef", "sk_01234..."},
		{"short key", "sk_01", "sk_01"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RedactKey(tt.key); got != tt.want {
				t.Errorf("RedactKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
