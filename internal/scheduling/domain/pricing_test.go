package domain

import "testing"

func fullSnapshot() TransportSnapshot {
	return TransportSnapshot{
		Largada: &LegQuote{Price: 12.30},
		Leva:    &LegQuote{Price: 18.70},
		Traz:    &LegQuote{Price: 17.40},
		Retorno: &LegQuote{Price: 11.60},
	}
}

func TestTransportPriceFor_RoundTripSumsToTotal(t *testing.T) {
	snap := fullSnapshot()

	leva := TransportPriceFor(snap, TransportRoundTrip, LegLeva)
	traz := TransportPriceFor(snap, TransportRoundTrip, LegTraz)

	if leva != 31.00 {
		t.Fatalf("expected pickup slice 31.00, got %.2f", leva)
	}
	if traz != 29.00 {
		t.Fatalf("expected dropoff slice 29.00, got %.2f", traz)
	}

	total := 12.30 + 18.70 + 17.40 + 11.60
	if RoundCents(leva+traz) != RoundCents(total) {
		t.Fatalf("expected slices to sum to %.2f, got %.2f", total, leva+traz)
	}
}

func TestTransportPriceFor_PickupOnlyAbsorbsRound(t *testing.T) {
	snap := fullSnapshot()

	price := TransportPriceFor(snap, TransportPickUp, LegLeva)
	if price != RoundCents(12.30+18.70+11.60) {
		t.Fatalf("expected largada+leva+retorno, got %.2f", price)
	}
}

func TestTransportPriceFor_DropoffOnlyAbsorbsRound(t *testing.T) {
	snap := fullSnapshot()

	price := TransportPriceFor(snap, TransportDropOff, LegTraz)
	if price != RoundCents(12.30+17.40+11.60) {
		t.Fatalf("expected largada+traz+retorno, got %.2f", price)
	}
}

func TestTransportPriceFor_MissingLegsAreZero(t *testing.T) {
	snap := TransportSnapshot{Leva: &LegQuote{Price: 20}}

	if got := TransportPriceFor(snap, TransportRoundTrip, LegLeva); got != 20 {
		t.Fatalf("expected 20, got %.2f", got)
	}
	if got := TransportPriceFor(snap, TransportRoundTrip, LegTraz); got != 0 {
		t.Fatalf("expected 0 for absent dropoff legs, got %.2f", got)
	}
	if got := TransportPriceFor(TransportSnapshot{}, TransportPickUp, LegLeva); got != 0 {
		t.Fatalf("expected empty breakdown to price at 0, got %.2f", got)
	}
}

func TestDivideAcrossOccurrences(t *testing.T) {
	snap := fullSnapshot()

	share := DivideAcrossOccurrences(snap, TransportRoundTrip, 4)
	if share.Leva != 7.75 {
		t.Fatalf("expected pickup share 7.75, got %.2f", share.Leva)
	}
	if share.Traz != 7.25 {
		t.Fatalf("expected dropoff share 7.25, got %.2f", share.Traz)
	}
	if share.Occurrences != 4 {
		t.Fatalf("expected occurrence count 4, got %d", share.Occurrences)
	}
}

func TestDivideAcrossOccurrences_GuardsAgainstZero(t *testing.T) {
	share := DivideAcrossOccurrences(fullSnapshot(), TransportRoundTrip, 0)
	if share.Occurrences != 1 {
		t.Fatalf("expected zero count to be treated as one, got %d", share.Occurrences)
	}
	if share.Leva != 31.00 {
		t.Fatalf("expected undivided pickup slice, got %.2f", share.Leva)
	}
}

func TestRoundCents(t *testing.T) {
	if got := RoundCents(10.005); got != 10.01 {
		t.Fatalf("expected 10.01, got %v", got)
	}
	if got := RoundCents(33.333333); got != 33.33 {
		t.Fatalf("expected 33.33, got %v", got)
	}
}
