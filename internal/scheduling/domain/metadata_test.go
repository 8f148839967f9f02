package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseQuoteMetadata_RoundTripPreservesUnknownKeys(t *testing.T) {
	raw := []byte(`{
		"transportPricing": {"largada": {"price": 10}, "leva": {"price": 20}},
		"recurrenceType": "AMBOS",
		"transportWeeklyFrequency": 3
	}`)

	meta, err := ParseQuoteMetadata(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if meta.Transport == nil || meta.Transport.Leva == nil || meta.Transport.Leva.Price != 20 {
		t.Fatalf("expected transport snapshot to decode, got %+v", meta.Transport)
	}

	meta.Schedule = &IdempotencyRecord{
		Hash:        "abc",
		RequestedBy: "user-1",
		RequestedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		Mode:        "wizard",
	}

	encoded, err := meta.Encode()
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	var bag map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &bag); err != nil {
		t.Fatalf("encoded metadata is not valid JSON: %v", err)
	}
	for _, key := range []string{"transportPricing", "scheduleIdempotency", "recurrenceType", "transportWeeklyFrequency"} {
		if _, ok := bag[key]; !ok {
			t.Fatalf("expected key %q to survive the round trip", key)
		}
	}
}

func TestParseQuoteMetadata_EmptyInput(t *testing.T) {
	meta, err := ParseQuoteMetadata(nil)
	if err != nil {
		t.Fatalf("unexpected error for nil input: %v", err)
	}
	if meta.Transport != nil || meta.Schedule != nil {
		t.Fatalf("expected empty metadata")
	}

	encoded, err := meta.Encode()
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	if string(encoded) != "{}" {
		t.Fatalf("expected empty object, got %s", encoded)
	}
}
