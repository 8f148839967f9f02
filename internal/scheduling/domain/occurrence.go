// Package domain holds the pure scheduling rules: occurrence validation,
// canonical hashing for idempotency, and transport price allocation.
// Nothing in this package touches the database or the clock, so the same
// rules can run against a request before and inside the transaction.
package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// QuoteType enumerates the service composition of a quote.
type QuoteType string

const (
	QuoteTypeSpa          QuoteType = "SPA"
	QuoteTypeTransport    QuoteType = "TRANSPORTE"
	QuoteTypeSpaTransport QuoteType = "SPA_TRANSPORTE"
)

// RequiresSpa reports whether quotes of this type carry a grooming visit.
func (t QuoteType) RequiresSpa() bool {
	return t == QuoteTypeSpa || t == QuoteTypeSpaTransport
}

// RequiresTransport reports whether quotes of this type carry transport legs.
func (t QuoteType) RequiresTransport() bool {
	return t == QuoteTypeTransport || t == QuoteTypeSpaTransport
}

// TransportType enumerates the leg topology of a transport quote.
type TransportType string

const (
	TransportRoundTrip TransportType = "ROUND_TRIP"
	TransportPickUp    TransportType = "PICK_UP"
	TransportDropOff   TransportType = "DROP_OFF"
)

// LegType identifies one directional transport trip.
type LegType string

const (
	LegLeva LegType = "LEVA" // pickup: client -> store
	LegTraz LegType = "TRAZ" // dropoff: store -> client
)

// Occurrence is one requested scheduling slot as submitted by the client.
// Time fields stay as raw strings so that an unparseable value surfaces as a
// row-numbered validation error instead of a decode failure.
type Occurrence struct {
	SpaAt        string   `json:"spaAt,omitempty"`
	LevaAt       string   `json:"levaAt,omitempty"`
	TrazAt       string   `json:"trazAt,omitempty"`
	LevaDriverID string   `json:"levaDriverId,omitempty"`
	TrazDriverID string   `json:"trazDriverId,omitempty"`
	ItemIDs      []string `json:"itemIds,omitempty"`
}

// ValidationResult carries every defect found in one validation pass.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// isoMillis mirrors the wire format occurrences are submitted in, millisecond
// precision with a Z suffix. Canonical keys and hashes depend on it.
const isoMillis = "2006-01-02T15:04:05.000Z"

var acceptedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses an occurrence timestamp in any accepted layout.
func ParseTime(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeTime returns the canonical ISO form of a timestamp, or "" when the
// value is absent or unparseable.
func normalizeTime(value string) string {
	t, ok := ParseTime(value)
	if !ok {
		return ""
	}
	return t.UTC().Format(isoMillis)
}

// ValidateOccurrences checks a list of requested occurrences against the
// quote type and transport topology. All rows are validated exhaustively so a
// single call surfaces every defect; it never fails fast and never errors.
func ValidateOccurrences(quoteType QuoteType, transportType TransportType, occurrences []Occurrence) ValidationResult {
	errs := make([]string, 0)
	seen := make(map[string]struct{}, len(occurrences))

	// An unset topology on a combined quote means both legs.
	isRoundTrip := transportType == TransportRoundTrip ||
		(transportType == "" && quoteType == QuoteTypeSpaTransport)
	isPickup := transportType == TransportPickUp
	isDropoff := transportType == TransportDropOff

	for index, occ := range occurrences {
		row := index + 1

		key := occurrenceKey(occ)
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Sprintf("Linha %d: Ocorrencia duplicada.", row))
		} else {
			seen[key] = struct{}{}
		}

		if quoteType.RequiresSpa() {
			switch {
			case occ.SpaAt == "":
				errs = append(errs, fmt.Sprintf("Linha %d: Data do SPA é obrigatória.", row))
			case normalizeTime(occ.SpaAt) == "":
				errs = append(errs, fmt.Sprintf("Linha %d: Data do SPA inválida.", row))
			}
		}

		if quoteType.RequiresTransport() {
			if isRoundTrip || isPickup {
				switch {
				case occ.LevaAt == "":
					errs = append(errs, fmt.Sprintf("Linha %d: Horário de Busca (Leva) é obrigatório.", row))
				case normalizeTime(occ.LevaAt) == "":
					errs = append(errs, fmt.Sprintf("Linha %d: Horário de Busca (Leva) inválido.", row))
				}
				if occ.LevaDriverID == "" {
					errs = append(errs, fmt.Sprintf("Linha %d: Motorista da Busca é obrigatório.", row))
				}
			}

			if isRoundTrip || isDropoff {
				switch {
				case occ.TrazAt == "":
					errs = append(errs, fmt.Sprintf("Linha %d: Horário de Entrega (Traz) é obrigatório.", row))
				case normalizeTime(occ.TrazAt) == "":
					errs = append(errs, fmt.Sprintf("Linha %d: Horário de Entrega (Traz) inválido.", row))
				}
				if occ.TrazDriverID == "" {
					errs = append(errs, fmt.Sprintf("Linha %d: Motorista da Entrega é obrigatório.", row))
				}
			}
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// occurrenceKey reduces an occurrence to its canonical identity: normalized
// times, driver ids, and the sorted item-id list. Two occurrences with the
// same key are the same request regardless of itemIds ordering.
func occurrenceKey(occ Occurrence) string {
	n := normalizeOccurrence(occ)
	return strings.Join([]string{
		n.SpaAt,
		n.LevaAt,
		n.TrazAt,
		n.LevaDriverID,
		n.TrazDriverID,
		strings.Join(n.ItemIDs, ","),
	}, "|")
}

// normalizedOccurrence is the canonical shape used by both duplicate
// detection and the schedule hash. Field order matters: it defines the
// serialized layout the hash is computed over.
type normalizedOccurrence struct {
	SpaAt        string   `json:"spaAt"`
	LevaAt       string   `json:"levaAt"`
	TrazAt       string   `json:"trazAt"`
	LevaDriverID string   `json:"levaDriverId"`
	TrazDriverID string   `json:"trazDriverId"`
	ItemIDs      []string `json:"itemIds"`
}

func normalizeOccurrence(occ Occurrence) normalizedOccurrence {
	itemIDs := make([]string, 0, len(occ.ItemIDs))
	itemIDs = append(itemIDs, occ.ItemIDs...)
	sort.Strings(itemIDs)

	return normalizedOccurrence{
		SpaAt:        normalizeTime(occ.SpaAt),
		LevaAt:       normalizeTime(occ.LevaAt),
		TrazAt:       normalizeTime(occ.TrazAt),
		LevaDriverID: occ.LevaDriverID,
		TrazDriverID: occ.TrazDriverID,
		ItemIDs:      itemIDs,
	}
}

// earliestTime is the sort key for canonical occurrence ordering: the first
// non-empty normalized time field.
func (n normalizedOccurrence) earliestTime() string {
	if n.SpaAt != "" {
		return n.SpaAt
	}
	if n.LevaAt != "" {
		return n.LevaAt
	}
	return n.TrazAt
}
