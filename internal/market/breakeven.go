package market

import (
	"math"

	"github.com/mandiroute/mandiroute/internal/transport"
)

// minQuantityForProfit finds the smallest quantity at which selling at
// perKgPrice over distanceKm covers the transport fare, holding price
// and distance fixed and only scaling quantity.
//
// The fare is piecewise constant in quantity (one fare per vehicle
// class), so the search evaluates each class boundary instead of a
// single linear solve: within a class the fare is fixed and the
// smallest feasible quantity is ceil(fare / price), clamped to the
// class's quantity interval. The search is bounded by the finite set of
// configured classes.
//
// The result is rounded up to unitKg. Rounding never leaves the class
// interval it was found in, so the rounded quantity stays feasible.
// Returns (0, false) when no finite quantity breaks even.
func minQuantityForProfit(model *transport.Model, perKgPrice, distanceKm, unitKg float64) (float64, bool) {
	if perKgPrice <= 0 || distanceKm < 0 {
		return 0, false
	}
	if unitKg < 1 {
		unitKg = 1
	}

	best := math.Inf(1)
	prevMax := 0.0

	for _, class := range model.Classes() {
		fare := class.BaseFare + class.PerKmRate*distanceKm

		// Smallest whole-kg quantity covering the fare at this price.
		q := math.Ceil(fare / perKgPrice)

		// Quantity must actually select this class.
		if floor := math.Floor(prevMax) + 1; q < floor {
			q = floor
		}

		// Round up to the reporting unit.
		q = math.Ceil(q/unitKg) * unitKg

		if class.MaxQuantityKg != 0 && q > class.MaxQuantityKg {
			// Not feasible within this class's capacity.
			prevMax = class.MaxQuantityKg
			continue
		}

		if q < best {
			best = q
		}
		prevMax = class.MaxQuantityKg
	}

	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}
