package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// HashParams identifies one logical scheduling request.
type HashParams struct {
	QuoteID       string
	QuoteType     QuoteType
	TransportType TransportType
	PerformerID   string
	Occurrences   []Occurrence
}

// canonicalPayload is the exact structure the schedule hash is computed over.
// Field order is part of the contract; changing it invalidates every stored
// idempotency record.
type canonicalPayload struct {
	QuoteID       string                 `json:"quoteId"`
	QuoteType     QuoteType              `json:"quoteType"`
	TransportType TransportType          `json:"transportType"`
	PerformerID   string                 `json:"performerId"`
	Occurrences   []normalizedOccurrence `json:"occurrences"`
}

// BuildScheduleHash computes the deterministic fingerprint of a scheduling
// request. Occurrences are normalized (canonical times, sorted itemIds) and
// sorted by their earliest time field, so the hash is invariant under
// reordering of the input list. Replays are detected by comparing this hash
// against the record stored on the quote.
func BuildScheduleHash(p HashParams) string {
	normalized := make([]normalizedOccurrence, 0, len(p.Occurrences))
	for _, occ := range p.Occurrences {
		normalized = append(normalized, normalizeOccurrence(occ))
	}
	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].earliestTime() < normalized[j].earliestTime()
	})

	payload := canonicalPayload{
		QuoteID:       p.QuoteID,
		QuoteType:     p.QuoteType,
		TransportType: p.TransportType,
		PerformerID:   p.PerformerID,
		Occurrences:   normalized,
	}

	// Struct fields marshal in declaration order, making the serialization
	// deterministic without a custom encoder.
	raw, err := json.Marshal(payload)
	if err != nil {
		// Only unmarshalable types can fail here; the payload has none.
		raw = []byte(p.QuoteID)
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// BuildAppointmentKey folds the identifying fields of one appointment into a
// pipe-joined composite key, used to check whether an existing appointment
// set already covers a requested one.
func BuildAppointmentKey(startAt time.Time, category string, transportType TransportType, performerID string) string {
	return strings.Join([]string{
		startAt.UTC().Format(isoMillis),
		category,
		string(transportType),
		performerID,
	}, "|")
}

// AllRequestedKeysPresent reports whether every requested appointment key is
// already present in the existing set.
func AllRequestedKeysPresent(existing, requested map[string]struct{}) bool {
	for key := range requested {
		if _, ok := existing[key]; !ok {
			return false
		}
	}
	return true
}
