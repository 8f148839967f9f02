package domain

import (
	"testing"
	"time"
)

func TestBuildScheduleHash_OrderInvariant(t *testing.T) {
	occA := Occurrence{
		SpaAt:   "2026-02-01T10:00:00.000Z",
		ItemIDs: []string{"b", "a"},
	}
	occB := Occurrence{
		SpaAt: "2026-02-02T10:00:00.000Z",
	}

	hash1 := BuildScheduleHash(HashParams{
		QuoteID:     "quote-1",
		QuoteType:   QuoteTypeSpa,
		PerformerID: "perf-1",
		Occurrences: []Occurrence{occA, occB},
	})
	hash2 := BuildScheduleHash(HashParams{
		QuoteID:     "quote-1",
		QuoteType:   QuoteTypeSpa,
		PerformerID: "perf-1",
		Occurrences: []Occurrence{occB, occA},
	})

	if hash1 != hash2 {
		t.Fatalf("expected identical hashes, got %s vs %s", hash1, hash2)
	}
	if len(hash1) != 64 {
		t.Fatalf("expected a sha256 hex digest, got %d chars", len(hash1))
	}
}

func TestBuildScheduleHash_ItemIDOrderInvariant(t *testing.T) {
	base := HashParams{
		QuoteID:   "quote-1",
		QuoteType: QuoteTypeSpa,
	}

	base.Occurrences = []Occurrence{{SpaAt: "2026-02-01T10:00:00.000Z", ItemIDs: []string{"a", "b"}}}
	hash1 := BuildScheduleHash(base)

	base.Occurrences = []Occurrence{{SpaAt: "2026-02-01T10:00:00.000Z", ItemIDs: []string{"b", "a"}}}
	hash2 := BuildScheduleHash(base)

	if hash1 != hash2 {
		t.Fatalf("expected itemIds order not to affect the hash")
	}
}

func TestBuildScheduleHash_ChangesWithContent(t *testing.T) {
	params := HashParams{
		QuoteID:     "quote-1",
		QuoteType:   QuoteTypeSpa,
		Occurrences: []Occurrence{{SpaAt: "2026-02-01T10:00:00.000Z"}},
	}
	hash1 := BuildScheduleHash(params)

	params.PerformerID = "perf-2"
	hash2 := BuildScheduleHash(params)

	if hash1 == hash2 {
		t.Fatalf("expected performer change to change the hash")
	}

	params.PerformerID = ""
	params.Occurrences = []Occurrence{{SpaAt: "2026-02-01T11:00:00.000Z"}}
	hash3 := BuildScheduleHash(params)

	if hash1 == hash3 {
		t.Fatalf("expected occurrence change to change the hash")
	}
}

func TestBuildScheduleHash_EquivalentTimeZones(t *testing.T) {
	// The same instant written in different zones must hash identically.
	params := HashParams{QuoteID: "q", QuoteType: QuoteTypeSpa}

	params.Occurrences = []Occurrence{{SpaAt: "2026-02-01T10:00:00.000Z"}}
	hash1 := BuildScheduleHash(params)

	params.Occurrences = []Occurrence{{SpaAt: "2026-02-01T07:00:00-03:00"}}
	hash2 := BuildScheduleHash(params)

	if hash1 != hash2 {
		t.Fatalf("expected timezone-equivalent instants to hash identically")
	}
}

func TestBuildAppointmentKey(t *testing.T) {
	startAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	key := BuildAppointmentKey(startAt, "LOGISTICA", TransportPickUp, "driver-1")
	want := "2026-02-01T10:00:00.000Z|LOGISTICA|PICK_UP|driver-1"
	if key != want {
		t.Fatalf("expected %q, got %q", want, key)
	}

	bare := BuildAppointmentKey(startAt, "SPA", "", "")
	if bare != "2026-02-01T10:00:00.000Z|SPA||" {
		t.Fatalf("unexpected bare key %q", bare)
	}
}

func TestAllRequestedKeysPresent(t *testing.T) {
	existing := map[string]struct{}{"a": {}, "b": {}}

	if !AllRequestedKeysPresent(existing, map[string]struct{}{"a": {}}) {
		t.Fatalf("expected subset to be covered")
	}
	if AllRequestedKeysPresent(existing, map[string]struct{}{"a": {}, "missing": {}}) {
		t.Fatalf("expected missing key to fail the check")
	}
	if !AllRequestedKeysPresent(existing, map[string]struct{}{}) {
		t.Fatalf("expected empty request to be trivially covered")
	}
}
