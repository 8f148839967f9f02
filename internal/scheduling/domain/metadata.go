package domain

import (
	"encoding/json"
	"time"
)

// IdempotencyRecord is the durable fingerprint of the last successful
// scheduling pass, stored inside the quote's metadata.
type IdempotencyRecord struct {
	Key         string    `json:"key,omitempty"`
	Hash        string    `json:"hash"`
	RequestedBy string    `json:"requestedBy"`
	RequestedAt time.Time `json:"requestedAt"`
	Mode        string    `json:"mode"` // "wizard" or "approve"
}

// Metadata keys the scheduling engine owns inside the quote metadata bag.
const (
	metaKeyTransport = "transportPricing"
	metaKeySchedule  = "scheduleIdempotency"
)

// QuoteMetadata is the typed view over the quote's free-form metadata map.
// Keys this engine does not own are preserved verbatim across read-modify-
// write cycles so other subsystems never lose their entries.
type QuoteMetadata struct {
	Transport *TransportSnapshot
	Schedule  *IdempotencyRecord

	extra map[string]json.RawMessage
}

// ParseQuoteMetadata decodes the raw metadata column. A nil or empty input
// yields an empty metadata value, never an error: quotes created before the
// estimation step have no metadata at all.
func ParseQuoteMetadata(raw []byte) (QuoteMetadata, error) {
	meta := QuoteMetadata{extra: make(map[string]json.RawMessage)}
	if len(raw) == 0 {
		return meta, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return meta, err
	}

	for key, value := range fields {
		switch key {
		case metaKeyTransport:
			var snap TransportSnapshot
			if err := json.Unmarshal(value, &snap); err == nil {
				meta.Transport = &snap
			}
		case metaKeySchedule:
			var rec IdempotencyRecord
			if err := json.Unmarshal(value, &rec); err == nil {
				meta.Schedule = &rec
			}
		default:
			meta.extra[key] = value
		}
	}

	return meta, nil
}

// Encode serializes the metadata back to its storage form, merging the typed
// fields over the preserved unknown keys.
func (m QuoteMetadata) Encode() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(m.extra)+2)
	for key, value := range m.extra {
		fields[key] = value
	}

	if m.Transport != nil {
		raw, err := json.Marshal(m.Transport)
		if err != nil {
			return nil, err
		}
		fields[metaKeyTransport] = raw
	}
	if m.Schedule != nil {
		raw, err := json.Marshal(m.Schedule)
		if err != nil {
			return nil, err
		}
		fields[metaKeySchedule] = raw
	}

	return json.Marshal(fields)
}
