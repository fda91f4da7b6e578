package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandiroute/mandiroute/internal/api"
	"github.com/mandiroute/mandiroute/internal/api/models"
	"github.com/mandiroute/mandiroute/internal/directory"
	"github.com/mandiroute/mandiroute/internal/geo"
	"github.com/mandiroute/mandiroute/internal/market"
	"github.com/mandiroute/mandiroute/internal/transport"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zerolog.New(io.Discard)

	repo, err := directory.NewInMemoryRepository(directory.DefaultMandis())
	require.NoError(t, err)

	directoryService := directory.NewService(directory.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})

	costModel, err := transport.NewModel(transport.DefaultCostConfig())
	require.NoError(t, err)

	marketService := market.NewService(market.ServiceConfig{
		Directory: directoryService,
		Distance:  geo.NewResolver(),
		Transport: costModel,
		Logger:    logger,
	})

	return api.NewRouter(api.RouterConfig{
		Version:          "test",
		BuildTime:        "2026-01-01T00:00:00Z",
		Logger:           logger,
		DirectoryService: directoryService,
		MarketService:    marketService,
	})
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.NotEmpty(t, health.Time)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_SystemStatus(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	err := json.Unmarshal(w.Body.Bytes(), &status)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.NotEmpty(t, status.Subsystems)
}

func TestRouter_ListCommodities(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/market/commodities", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.CommoditiesResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Commodities)
	assert.Contains(t, resp.Commodities, "Tomato")
}

func TestRouter_Rank(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/v1/market/rank", models.RankRequest{
		Commodity:  "Tomato",
		QuantityKg: 200,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.RankResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "Tomato", resp.Commodity)
	assert.Equal(t, float64(200), resp.QuantityKg)
	require.NotEmpty(t, resp.Options)

	// Ordered by net profit descending.
	for i := 1; i < len(resp.Options); i++ {
		assert.GreaterOrEqual(t, resp.Options[i-1].NetProfit, resp.Options[i].NetProfit)
	}
}

func TestRouter_Rank_WithOrigin(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/v1/market/rank", models.RankRequest{
		Commodity:  "Tomato",
		QuantityKg: 200,
		Origin:     &models.Point{Lat: 22.69, Lon: 72.86},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.RankResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Options)
	assert.Greater(t, resp.Options[0].Distance, 0.0)
}

func TestRouter_Rank_InvalidQuantity(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/v1/market/rank", models.RankRequest{
		Commodity:  "Tomato",
		QuantityKg: 0,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, problem.Status)
	require.NotEmpty(t, problem.Errors)
	assert.Equal(t, "quantityKg", problem.Errors[0].Field)
}

func TestRouter_Rank_UnknownCommodity(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/v1/market/rank", models.RankRequest{
		Commodity:  "Durian",
		QuantityKg: 100,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, problem.Status)
}

func TestRouter_Rank_InvalidJSON(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/market/rank", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Rank_RejectsNonJSONContentType(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/market/rank", bytes.NewReader([]byte("commodity=Tomato")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRouter_Recommend(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/v1/market/recommend", models.RankRequest{
		Commodity:  "Tomato",
		QuantityKg: 200,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.RecommendResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "Tomato", resp.Commodity)
	assert.Contains(t, []string{"SELL_NOW", "HOLD"}, resp.Recommendation.Action)
	assert.NotEmpty(t, resp.Recommendation.Reason)
	require.NotNil(t, resp.BestOption)
	require.NotNil(t, resp.NearestOption)
}

func TestRouter_Recommend_TinyLotHolds(t *testing.T) {
	router := newTestRouter(t)

	// 1 kg cannot out-earn any fare; every mandi is a loss.
	w := postJSON(t, router, "/v1/market/recommend", models.RankRequest{
		Commodity:  "Tomato",
		QuantityKg: 1,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.RecommendResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "HOLD", resp.Recommendation.Action)
	assert.True(t, resp.Summary.AllLoss)
	require.NotNil(t, resp.Summary.MinQuantityForProfit)
	assert.Greater(t, *resp.Summary.MinQuantityForProfit, 1.0)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/unknown", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
