// Package directory provides the static mandi reference directory.
package directory

import (
	"errors"
)

// Directory errors.
var (
	ErrUnknownCommodity = errors.New("commodity not found in directory")
	ErrMandiNotFound    = errors.New("mandi not found")
)

// DemandLevel represents the buyer demand at a mandi.
type DemandLevel string

const (
	DemandLow    DemandLevel = "LOW"
	DemandMedium DemandLevel = "MEDIUM"
	DemandHigh   DemandLevel = "HIGH"
)

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Mandi represents a regional agricultural market.
// Prices are modal prices in rupees per quintal (100 kg), keyed by
// commodity name. Directory data is immutable at runtime.
type Mandi struct {
	ID       string
	Market   string
	District string
	State    string

	// Location is the mandi's geocoordinate.
	Location Point

	// TypicalDistanceKm is the static recorded distance used when the
	// farmer's live location is unavailable.
	TypicalDistanceKm float64

	DemandLevel  DemandLevel
	TradingHours string

	// Prices maps commodity name to modal price in ₹/quintal.
	Prices map[string]float64
}

// PricePerKg returns the per-kg price for a commodity and whether the
// mandi quotes it. Modal prices are stored per quintal.
func (m *Mandi) PricePerKg(commodity string) (float64, bool) {
	perQuintal, ok := m.Prices[commodity]
	if !ok {
		return 0, false
	}
	return perQuintal / 100, true
}

// HasCommodity reports whether the mandi quotes a price for the commodity.
func (m *Mandi) HasCommodity(commodity string) bool {
	_, ok := m.Prices[commodity]
	return ok
}
