package domain

import (
	"strings"
	"testing"
)

func TestValidateOccurrences_TransportRequiresDriver(t *testing.T) {
	result := ValidateOccurrences(QuoteTypeTransport, TransportPickUp, []Occurrence{
		{LevaAt: "2026-02-03T10:00:00.000Z"},
	})

	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	joined := strings.Join(result.Errors, " ")
	if !strings.Contains(joined, "Motorista") {
		t.Fatalf("expected a driver error, got %q", joined)
	}
	if !strings.Contains(joined, "Linha 1") {
		t.Fatalf("expected row 1 to be referenced, got %q", joined)
	}
}

func TestValidateOccurrences_RoundTripRequiresBothLegs(t *testing.T) {
	result := ValidateOccurrences(QuoteTypeTransport, TransportRoundTrip, []Occurrence{
		{LevaAt: "2026-02-03T10:00:00.000Z", LevaDriverID: "driver-1"},
	})

	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	joined := strings.Join(result.Errors, " ")
	if !strings.Contains(joined, "Entrega (Traz)") {
		t.Fatalf("expected a dropoff time error, got %q", joined)
	}
	if !strings.Contains(joined, "Motorista da Entrega") {
		t.Fatalf("expected a dropoff driver error, got %q", joined)
	}
}

func TestValidateOccurrences_UnsetTopologyOnCombinedQuoteMeansRoundTrip(t *testing.T) {
	result := ValidateOccurrences(QuoteTypeSpaTransport, "", []Occurrence{
		{SpaAt: "2026-02-03T10:00:00.000Z"},
	})

	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	joined := strings.Join(result.Errors, " ")
	if !strings.Contains(joined, "Busca (Leva)") || !strings.Contains(joined, "Entrega (Traz)") {
		t.Fatalf("expected both legs required, got %q", joined)
	}
}

func TestValidateOccurrences_ExhaustiveNotFailFast(t *testing.T) {
	// Three rows, each missing a different required field: exactly three
	// distinct errors, one per row.
	result := ValidateOccurrences(QuoteTypeSpa, "", []Occurrence{
		{},
		{SpaAt: "not-a-date"},
		{},
	})

	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	for i, fragment := range []string{"Linha 1", "Linha 2", "Linha 3"} {
		if !strings.Contains(result.Errors[i], fragment) {
			t.Fatalf("expected error %d to reference %s, got %q", i, fragment, result.Errors[i])
		}
	}
	if !strings.Contains(result.Errors[1], "inválida") {
		t.Fatalf("expected unparseable date error on row 2, got %q", result.Errors[1])
	}
}

func TestValidateOccurrences_DuplicateDetection(t *testing.T) {
	date := "2026-02-03T10:00:00.000Z"
	result := ValidateOccurrences(QuoteTypeSpa, "", []Occurrence{
		{SpaAt: date, ItemIDs: []string{"a"}},
		{SpaAt: date, ItemIDs: []string{"a"}},
	})

	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	if !strings.Contains(strings.Join(result.Errors, " "), "duplicada") {
		t.Fatalf("expected a duplicate error, got %v", result.Errors)
	}
}

func TestValidateOccurrences_DuplicateDetectionIgnoresItemIDOrder(t *testing.T) {
	date := "2026-02-03T10:00:00.000Z"
	result := ValidateOccurrences(QuoteTypeSpa, "", []Occurrence{
		{SpaAt: date, ItemIDs: []string{"a", "b"}},
		{SpaAt: date, ItemIDs: []string{"b", "a"}},
	})

	if result.Valid {
		t.Fatalf("expected duplicate to be flagged regardless of itemIds order")
	}
}

func TestValidateOccurrences_ValidRoundTrip(t *testing.T) {
	result := ValidateOccurrences(QuoteTypeSpaTransport, TransportRoundTrip, []Occurrence{
		{
			SpaAt:        "2026-02-03T10:00:00.000Z",
			LevaAt:       "2026-02-03T09:00:00.000Z",
			TrazAt:       "2026-02-03T12:00:00.000Z",
			LevaDriverID: "driver-1",
			TrazDriverID: "driver-2",
		},
	})

	if !result.Valid {
		t.Fatalf("expected valid result, got errors: %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors)
	}
}

func TestValidateOccurrences_DropoffOnly(t *testing.T) {
	result := ValidateOccurrences(QuoteTypeTransport, TransportDropOff, []Occurrence{
		{TrazAt: "2026-02-03T12:00:00.000Z", TrazDriverID: "driver-2"},
	})

	if !result.Valid {
		t.Fatalf("expected valid result, got errors: %v", result.Errors)
	}
}

func TestParseTime_AcceptedLayouts(t *testing.T) {
	for _, value := range []string{
		"2026-02-03T10:00:00.000Z",
		"2026-02-03T10:00:00Z",
		"2026-02-03T10:00:00-03:00",
		"2026-02-03T10:00:00",
		"2026-02-03",
	} {
		if _, ok := ParseTime(value); !ok {
			t.Fatalf("expected %q to parse", value)
		}
	}

	if _, ok := ParseTime("tomorrow at noon"); ok {
		t.Fatalf("expected nonsense input to be rejected")
	}
}
