package models

// RankRequest asks for a profitability ranking of all mandis quoting a
// commodity.
type RankRequest struct {
	// Commodity is the crop to sell, e.g. "Tomato".
	Commodity string `json:"commodity" validate:"required"`

	// QuantityKg is the lot size in kilograms.
	QuantityKg float64 `json:"quantityKg" validate:"required,gt=0"`

	// Origin is the farmer's live location. Omitted means distances
	// fall back to each mandi's recorded typical distance.
	Origin *Point `json:"origin,omitempty"`
}

// MandiOption is one mandi's evaluated selling option.
type MandiOption struct {
	MandiID      string `json:"mandiId"`
	Market       string `json:"market"`
	District     string `json:"district"`
	State        string `json:"state"`
	DemandLevel  string `json:"demandLevel"`
	TradingHours string `json:"tradingHours,omitempty"`

	Distance      float64 `json:"distance"`
	PricePerKg    float64 `json:"pricePerKg"`
	Vehicle       string  `json:"vehicle"`
	TransportCost float64 `json:"transportCost"`

	GrossRevenue float64 `json:"grossRevenue"`
	NetProfit    float64 `json:"netProfit"`
	ProfitPerKg  float64 `json:"profitPerKg"`
	IsProfitable bool    `json:"isProfitable"`
}

// RankSummary aggregates a ranking.
type RankSummary struct {
	ProfitableMandisCount int     `json:"profitableMandisCount"`
	AllLoss               bool    `json:"allLoss"`
	BestNetProfit         float64 `json:"bestNetProfit"`

	// MinQuantityForProfit is the smallest lot that turns a profit at
	// the best mandi. Present only when every option is a loss.
	MinQuantityForProfit *float64 `json:"minQuantityForProfit,omitempty"`
}

// RankResponse is the ordered list of selling options.
type RankResponse struct {
	Commodity  string        `json:"commodity"`
	QuantityKg float64       `json:"quantityKg"`
	Options    []MandiOption `json:"options"`
}

// Verdict is the action part of a recommendation.
type Verdict struct {
	Action  string `json:"action"`
	Urgency string `json:"urgency"`
	Reason  string `json:"reason"`
}

// RecommendResponse is the full selling recommendation.
type RecommendResponse struct {
	Commodity      string       `json:"commodity"`
	QuantityKg     float64      `json:"quantityKg"`
	Recommendation Verdict      `json:"recommendation"`
	BestOption     *MandiOption `json:"bestOption"`
	NearestOption  *MandiOption `json:"nearestOption"`
	Summary        RankSummary  `json:"summary"`
}

// CommoditiesResponse lists every commodity quoted somewhere in the
// directory.
type CommoditiesResponse struct {
	Commodities []string `json:"commodities"`
}
