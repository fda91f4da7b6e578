// Package handler provides HTTP handlers for the MandiRoute API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mandiroute/mandiroute/internal/api/models"
	"github.com/mandiroute/mandiroute/internal/api/response"
	"github.com/mandiroute/mandiroute/internal/directory"
	"github.com/mandiroute/mandiroute/internal/geo"
	"github.com/mandiroute/mandiroute/internal/market"
	"github.com/mandiroute/mandiroute/internal/transport"
)

// MarketHandler handles market selection endpoints.
type MarketHandler struct {
	market    *market.Service
	directory *directory.Service
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketService *market.Service, directoryService *directory.Service) *MarketHandler {
	return &MarketHandler{
		market:    marketService,
		directory: directoryService,
	}
}

// ListCommodities handles GET /v1/market/commodities - every commodity
// quoted somewhere in the directory.
func (h *MarketHandler) ListCommodities(w http.ResponseWriter, r *http.Request) {
	commodities, err := h.directory.ListCommodities(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list commodities")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, models.CommoditiesResponse{Commodities: commodities})
}

// Rank handles POST /v1/market/rank - rank every mandi quoting the
// commodity by net profit for the given lot.
func (h *MarketHandler) Rank(w http.ResponseWriter, r *http.Request) {
	shipment, ok := h.decodeShipment(w, r)
	if !ok {
		return
	}

	ranked, err := h.market.Rank(r.Context(), shipment)
	if err != nil {
		h.writeMarketError(w, r, err)
		return
	}

	resp := models.RankResponse{
		Commodity:  shipment.Commodity,
		QuantityKg: shipment.QuantityKg,
		Options:    make([]models.MandiOption, 0, len(ranked)),
	}
	for _, eval := range ranked {
		resp.Options = append(resp.Options, toMandiOption(eval))
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, resp)
}

// Recommend handles POST /v1/market/recommend - the full selling
// verdict for the given lot.
func (h *MarketHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	shipment, ok := h.decodeShipment(w, r)
	if !ok {
		return
	}

	rec, err := h.market.Recommend(r.Context(), shipment)
	if err != nil {
		h.writeMarketError(w, r, err)
		return
	}

	resp := models.RecommendResponse{
		Commodity:  shipment.Commodity,
		QuantityKg: shipment.QuantityKg,
		Recommendation: models.Verdict{
			Action:  string(rec.Action),
			Urgency: string(rec.Urgency),
			Reason:  rec.Reason,
		},
		Summary: models.RankSummary{
			ProfitableMandisCount: rec.Summary.ProfitableCount,
			AllLoss:               rec.Summary.AllLoss,
			BestNetProfit:         rec.Summary.BestNetProfit,
		},
	}
	if rec.BestOption != nil {
		best := toMandiOption(rec.BestOption)
		resp.BestOption = &best
	}
	if rec.NearestOption != nil {
		nearest := toMandiOption(rec.NearestOption)
		resp.NearestOption = &nearest
	}
	if rec.MinQuantityForProfit > 0 {
		minQty := rec.MinQuantityForProfit
		resp.Summary.MinQuantityForProfit = &minQty
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, resp)
}

// decodeShipment parses and validates the shared rank/recommend body.
// On failure the error response has already been written.
func (h *MarketHandler) decodeShipment(w http.ResponseWriter, r *http.Request) (market.Shipment, bool) {
	var input models.RankRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return market.Shipment{}, false
	}

	var fieldErrors []models.FieldError
	if input.Commodity == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "commodity", Message: "required", Code: "REQUIRED",
		})
	}
	if input.QuantityKg <= 0 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "quantityKg", Message: "must be greater than 0", Code: "OUT_OF_RANGE",
		})
	}
	if input.Origin != nil {
		if input.Origin.Lat < -90 || input.Origin.Lat > 90 {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: "origin.lat", Message: "must be between -90 and 90", Code: "OUT_OF_RANGE",
			})
		}
		if input.Origin.Lon < -180 || input.Origin.Lon > 180 {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: "origin.lon", Message: "must be between -180 and 180", Code: "OUT_OF_RANGE",
			})
		}
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid shipment", fieldErrors)
		return market.Shipment{}, false
	}

	shipment := market.Shipment{
		Commodity:  input.Commodity,
		QuantityKg: input.QuantityKg,
	}
	if input.Origin != nil {
		shipment.Origin = &geo.Point{Lat: input.Origin.Lat, Lon: input.Origin.Lon}
	}
	return shipment, true
}

// writeMarketError maps domain errors onto problem responses.
func (h *MarketHandler) writeMarketError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, transport.ErrInvalidQuantity):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, directory.ErrUnknownCommodity):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, market.ErrNoMarketAvailable):
		response.NotFound(w, r, err.Error())
	default:
		response.InternalError(w, r, "market evaluation failed")
	}
}

func toMandiOption(eval *market.Evaluation) models.MandiOption {
	return models.MandiOption{
		MandiID:       eval.MandiID,
		Market:        eval.Market,
		District:      eval.District,
		State:         eval.State,
		DemandLevel:   string(eval.DemandLevel),
		TradingHours:  eval.TradingHours,
		Distance:      eval.DistanceKm,
		PricePerKg:    eval.PricePerKg,
		Vehicle:       eval.Vehicle,
		TransportCost: eval.TransportCost,
		GrossRevenue:  eval.GrossRevenue,
		NetProfit:     eval.NetProfit,
		ProfitPerKg:   eval.ProfitPerKg,
		IsProfitable:  eval.IsProfitable,
	}
}
