package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandiroute/mandiroute/internal/pricefeed"
	"github.com/mandiroute/mandiroute/internal/worker"
)

type stubProvider struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (p *stubProvider) FetchPrices(_ context.Context, commodity string) ([]pricefeed.Quote, error) {
	p.calls.Add(1)
	if p.fail[commodity] {
		return nil, errors.New("feed unavailable")
	}
	return []pricefeed.Quote{{
		MandiID:              "mnd_nadiad",
		Market:               "Nadiad",
		District:             "Kheda",
		State:                "Gujarat",
		ModalPricePerQuintal: 3000,
		RecordedAt:           time.Now(),
	}}, nil
}

func (p *stubProvider) Name() string { return "stub" }

func newPriceService(provider pricefeed.Provider) *pricefeed.Service {
	return pricefeed.NewService(pricefeed.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})
}

func TestDefaultRefreshConfig(t *testing.T) {
	cfg := worker.DefaultRefreshConfig()

	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.RefreshPrices)
	assert.True(t, cfg.WarmDirectory)
	assert.NotEmpty(t, cfg.Targets)
}

func TestDefaultRefreshTargets(t *testing.T) {
	targets := worker.DefaultRefreshTargets()
	assert.GreaterOrEqual(t, len(targets), 5)

	var tomato *worker.RefreshTarget
	for i := range targets {
		if targets[i].Commodity == "Tomato" {
			tomato = &targets[i]
			break
		}
	}
	require.NotNil(t, tomato, "Tomato should be a refresh target")
	assert.Equal(t, 1, tomato.Priority, "perishables refresh first")
}

func TestRefreshConfig_CommoditiesOrderedByPriority(t *testing.T) {
	cfg := worker.RefreshConfig{
		Targets: []worker.RefreshTarget{
			{Commodity: "Wheat", Priority: 3},
			{Commodity: "Onion", Priority: 1},
			{Commodity: "Potato", Priority: 2},
			{Commodity: "Cabbage", Priority: 1},
		},
	}

	assert.Equal(t, []string{"Cabbage", "Onion", "Potato", "Wheat"}, cfg.Commodities())
	assert.Equal(t, 4, cfg.TotalTargets())
}

func TestRefreshJob_Run(t *testing.T) {
	provider := &stubProvider{}
	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			Targets: []worker.RefreshTarget{
				{Commodity: "Tomato", Priority: 1},
				{Commodity: "Onion", Priority: 1},
			},
			Concurrency:   2,
			Timeout:       time.Second,
			RefreshPrices: true,
		},
		Logger:       zerolog.Nop(),
		PriceService: newPriceService(provider),
	})

	result := job.Run(context.Background())

	require.NotNil(t, result)
	assert.Equal(t, 2, result.TotalTargets)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)
	assert.Equal(t, int32(2), provider.calls.Load())
}

func TestRefreshJob_Run_PartialFailure(t *testing.T) {
	provider := &stubProvider{fail: map[string]bool{"Onion": true}}
	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			Targets: []worker.RefreshTarget{
				{Commodity: "Tomato", Priority: 1},
				{Commodity: "Onion", Priority: 1},
			},
			Concurrency:   1,
			Timeout:       time.Second,
			RefreshPrices: true,
		},
		Logger:       zerolog.Nop(),
		PriceService: newPriceService(provider),
	})

	result := job.Run(context.Background())

	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Onion", result.Errors[0].Commodity)
	assert.Contains(t, result.Errors[0].Error, "feed unavailable")
}

func TestRefreshJob_Run_NoServices(t *testing.T) {
	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			Targets:       []worker.RefreshTarget{{Commodity: "Tomato", Priority: 1}},
			Concurrency:   1,
			Timeout:       time.Second,
			RefreshPrices: true,
		},
		Logger: zerolog.Nop(),
	})

	result := job.Run(context.Background())

	// No price service wired: nothing fails, nothing refreshes.
	require.NotNil(t, result)
	assert.Equal(t, 1, result.TotalTargets)
	assert.Equal(t, 0, result.Failed)
}

func TestRefreshJob_GetMetrics(t *testing.T) {
	provider := &stubProvider{}
	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			Targets:       []worker.RefreshTarget{{Commodity: "Tomato", Priority: 1}},
			Concurrency:   1,
			Timeout:       time.Second,
			RefreshPrices: true,
		},
		Logger:       zerolog.Nop(),
		PriceService: newPriceService(provider),
	})

	before := job.GetMetrics()
	assert.Equal(t, int64(0), before.TotalRuns)

	job.Run(context.Background())

	after := job.GetMetrics()
	assert.Equal(t, int64(1), after.TotalRuns)
	assert.Equal(t, int64(1), after.SuccessfulTargets)
	assert.Equal(t, int64(1), after.PriceRefreshes)
	assert.False(t, after.LastRunAt.IsZero())

	snapshot := job.MetricsSnapshot()
	assert.Equal(t, int64(1), snapshot["total_runs"])
	assert.Equal(t, int64(1), snapshot["price_refreshes"])
}

func TestRefreshJob_DefaultsApplied(t *testing.T) {
	job := worker.NewRefreshJob(worker.RefreshJobConfig{Logger: zerolog.Nop()})

	// Empty config falls back to the default targets.
	result := job.Run(context.Background())
	assert.Equal(t, len(worker.DefaultRefreshTargets()), result.TotalTargets)
}
