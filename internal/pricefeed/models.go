// Package pricefeed provides externally refreshed mandi modal prices.
package pricefeed

import (
	"context"
	"time"
)

// Quote is one mandi's modal price for a commodity.
type Quote struct {
	// MandiID matches the directory mandi ID.
	MandiID string

	Market   string
	District string
	State    string

	// ModalPricePerQuintal is the quoted modal price in ₹/quintal.
	ModalPricePerQuintal float64

	// RecordedAt is when the feed recorded the quote.
	RecordedAt time.Time
}

// CommodityPrices holds all quotes for one commodity.
type CommodityPrices struct {
	Commodity string
	Quotes    []Quote
	Provider  string
	FetchedAt time.Time
}

// Provider defines the interface for price feed providers.
type Provider interface {
	// FetchPrices fetches current modal prices for a commodity across
	// all mandis the feed covers.
	FetchPrices(ctx context.Context, commodity string) ([]Quote, error)

	// Name returns the provider name for logging.
	Name() string
}
