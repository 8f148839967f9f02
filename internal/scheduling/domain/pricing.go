package domain

import "math"

// LegQuote is the priced result the transport estimation provider computed
// for one segment of a trip.
type LegQuote struct {
	Price       float64 `json:"price"`
	DistanceKm  float64 `json:"distanceKm,omitempty"`
	DurationMin float64 `json:"durationMin,omitempty"`
}

// TransportSnapshot is the four-leg transport price breakdown attached to a
// quote's metadata by the estimation provider:
//
//	largada  store -> client       (base-out)
//	leva     client -> store       (pickup)
//	traz     store -> client       (dropoff)
//	retorno  client -> store       (base-return)
//
// Any missing leg is treated as costing zero; upstream estimation is allowed
// to be incomplete.
type TransportSnapshot struct {
	Largada *LegQuote `json:"largada,omitempty"`
	Leva    *LegQuote `json:"leva,omitempty"`
	Traz    *LegQuote `json:"traz,omitempty"`
	Retorno *LegQuote `json:"retorno,omitempty"`
	Total   float64   `json:"total,omitempty"`
}

func legPrice(l *LegQuote) float64 {
	if l == nil {
		return 0
	}
	return l.Price
}

// RoundCents rounds a monetary amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// TransportPriceFor returns the slice of the transport cost owed by an
// appointment covering the given leg, under the quote's topology.
//
// One-way topologies produce a single appointment that absorbs the whole
// round (the driver still leaves from and returns to the store). A round
// trip splits the cost between its two appointments: the pickup carries the
// outbound half (largada+leva), the dropoff the return half (traz+retorno),
// so the two always sum to the full breakdown.
func TransportPriceFor(snap TransportSnapshot, topology TransportType, leg LegType) float64 {
	largada := legPrice(snap.Largada)
	leva := legPrice(snap.Leva)
	traz := legPrice(snap.Traz)
	retorno := legPrice(snap.Retorno)

	switch topology {
	case TransportPickUp:
		return RoundCents(largada + leva + retorno)
	case TransportDropOff:
		return RoundCents(largada + traz + retorno)
	default:
		if leg == LegLeva {
			return RoundCents(largada + leva)
		}
		return RoundCents(traz + retorno)
	}
}

// OccurrenceShare is the per-occurrence transport price slice for a
// recurring quote whose single transport estimate covers N occurrences.
type OccurrenceShare struct {
	Leva        float64 `json:"leva"`
	Traz        float64 `json:"traz"`
	Occurrences int     `json:"occurrences"`
}

// DivideAcrossOccurrences splits the pickup-side and dropoff-side sums of a
// transport breakdown evenly across N occurrences, rounding each share to
// cents. A count below one is treated as a single occurrence.
func DivideAcrossOccurrences(snap TransportSnapshot, topology TransportType, count int) OccurrenceShare {
	if count < 1 {
		count = 1
	}
	return OccurrenceShare{
		Leva:        RoundCents(TransportPriceFor(snap, topology, LegLeva) / float64(count)),
		Traz:        RoundCents(TransportPriceFor(snap, topology, LegTraz) / float64(count)),
		Occurrences: count,
	}
}

// ServicePricingLine is the per-service price slice recorded on a SPA
// appointment so downstream billing never re-reads the quote.
type ServicePricingLine struct {
	ServiceID string  `json:"serviceId,omitempty"`
	ItemID    string  `json:"itemId"`
	Price     float64 `json:"price"`
	Discount  float64 `json:"discount"`
}

// TransportAllocation is the price slice recorded on a LOGISTICA appointment.
type TransportAllocation struct {
	Leg         LegType `json:"leg"`
	Price       float64 `json:"price"`
	Occurrences int     `json:"occurrences,omitempty"`
}

// AppointmentPricing is the metadata snapshot attached to every appointment
// generated by a scheduling pass. It makes each appointment fully
// attributable without consulting the quote again.
type AppointmentPricing struct {
	QuoteID        string               `json:"quoteId"`
	ServicePricing []ServicePricingLine `json:"servicePricing,omitempty"`
	Transport      *TransportAllocation `json:"transport,omitempty"`
}
