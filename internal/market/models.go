// Package market ranks mandis by net profit and produces selling
// recommendations for a farmer's shipment.
package market

import (
	"errors"

	"github.com/mandiroute/mandiroute/internal/directory"
	"github.com/mandiroute/mandiroute/internal/geo"
)

// Market errors.
var (
	// ErrMissingPrice indicates a mandi without a quote reached the
	// calculator. That is an integration bug between the directory and
	// the ranker, not a user error.
	ErrMissingPrice = errors.New("mandi has no price for commodity")

	// ErrNoMarketAvailable is the representable outcome of a
	// recommendation when no mandi is reachable.
	ErrNoMarketAvailable = errors.New("no market available")
)

// Shipment is one farmer query: a commodity, a quantity and an
// optional live origin. Fully consumed per call, never persisted.
type Shipment struct {
	Commodity  string
	QuantityKg float64

	// Origin is the farmer's live location. Nil means location-degraded
	// mode: distances fall back to the directory's recorded values.
	Origin *geo.Point
}

// Evaluation is the profitability of selling one shipment at one mandi.
type Evaluation struct {
	MandiID  string
	Market   string
	District string
	State    string

	DistanceKm    float64
	PricePerKg    float64
	Vehicle       string
	TransportCost float64

	GrossRevenue float64
	NetProfit    float64
	ProfitPerKg  float64
	IsProfitable bool

	DemandLevel  directory.DemandLevel
	TradingHours string
}

// Action is the recommendation verdict.
type Action string

const (
	ActionSellNow Action = "SELL_NOW"
	ActionHold    Action = "HOLD"
)

// Urgency classifies how strongly the verdict applies.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// Summary aggregates the ranked evaluations for presentation.
type Summary struct {
	ProfitableCount int
	AllLoss         bool
	BestNetProfit   float64
}

// Recommendation is the decision produced for one shipment.
type Recommendation struct {
	Action  Action
	Urgency Urgency
	Reason  string

	// BestOption is the head of the ranked sequence.
	BestOption *Evaluation

	// NearestOption is the evaluation with the minimum distance. It may
	// coincide with BestOption.
	NearestOption *Evaluation

	// MinQuantityForProfit is set only when every mandi is loss-making:
	// the smallest quantity (rounded up to the configured unit) at which
	// the least-negative mandi breaks even. Zero when not applicable.
	MinQuantityForProfit float64

	Summary Summary
}
