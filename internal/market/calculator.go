package market

import (
	"fmt"
	"math"

	"github.com/mandiroute/mandiroute/internal/directory"
	"github.com/mandiroute/mandiroute/internal/transport"
)

// Evaluate computes the profitability of one (mandi, shipment) pair
// using the mandi's own modal price. Pure: same inputs always produce
// the same evaluation. Returns ErrMissingPrice if the mandi has no
// quote for the shipment's commodity.
func Evaluate(mandi *directory.Mandi, shipment Shipment, distanceKm float64, quote transport.Quote) (*Evaluation, error) {
	pricePerKg, ok := mandi.PricePerKg(shipment.Commodity)
	if !ok {
		return nil, fmt.Errorf("%w: %s at %s", ErrMissingPrice, shipment.Commodity, mandi.ID)
	}
	return EvaluateAtPrice(mandi, shipment, distanceKm, quote, pricePerKg), nil
}

// EvaluateAtPrice computes the profitability of one (mandi, shipment)
// pair at an explicit per-kg price. Used when a live feed overrides the
// directory's static modal price.
func EvaluateAtPrice(mandi *directory.Mandi, shipment Shipment, distanceKm float64, quote transport.Quote, pricePerKg float64) *Evaluation {
	grossRevenue := roundRupees(pricePerKg * shipment.QuantityKg)
	transportCost := roundRupees(quote.Fare)
	netProfit := roundRupees(grossRevenue - transportCost)

	var profitPerKg float64
	if shipment.QuantityKg > 0 {
		profitPerKg = roundRupees(netProfit / shipment.QuantityKg)
	}

	return &Evaluation{
		MandiID:       mandi.ID,
		Market:        mandi.Market,
		District:      mandi.District,
		State:         mandi.State,
		DistanceKm:    distanceKm,
		PricePerKg:    pricePerKg,
		Vehicle:       quote.Vehicle,
		TransportCost: transportCost,
		GrossRevenue:  grossRevenue,
		NetProfit:     netProfit,
		ProfitPerKg:   profitPerKg,
		IsProfitable:  netProfit > 0,
		DemandLevel:   mandi.DemandLevel,
		TradingHours:  mandi.TradingHours,
	}
}

// roundRupees rounds to the nearest paisa (one currency minor unit).
func roundRupees(v float64) float64 {
	return math.Round(v*100) / 100
}
