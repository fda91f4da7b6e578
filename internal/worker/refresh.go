package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mandiroute/mandiroute/internal/directory"
	"github.com/mandiroute/mandiroute/internal/pricefeed"
)

// RefreshJob keeps the price cache warm by fetching every target
// commodity from the feed.
type RefreshJob struct {
	config RefreshConfig
	logger zerolog.Logger

	// Services (optional, nil if not configured)
	priceService     *pricefeed.Service
	directoryService *directory.Service

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRuns         int64
	SuccessfulTargets int64
	FailedTargets     int64
	PriceRefreshes    int64
	DirectoryWarms    int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config           RefreshConfig
	Logger           zerolog.Logger
	PriceService     *pricefeed.Service
	DirectoryService *directory.Service
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultRefreshConfig()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &RefreshJob{
		config:           config,
		logger:           cfg.Logger,
		priceService:     cfg.PriceService,
		directoryService: cfg.DirectoryService,
		metrics:          &RefreshMetrics{},
	}
}

// RefreshResult contains the result of one refresh run.
type RefreshResult struct {
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	TotalTargets int
	Successful   int
	Failed       int
	Errors       []RefreshError
}

// RefreshError is one commodity's refresh failure.
type RefreshError struct {
	Commodity string
	Error     string
}

// Run refreshes every configured commodity through a bounded worker
// pool.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{
		StartTime:    startTime,
		TotalTargets: j.config.TotalTargets(),
	}

	j.logger.Info().
		Int("total_targets", result.TotalTargets).
		Int("concurrency", j.config.Concurrency).
		Msg("starting price refresh job")

	commodities := j.config.Commodities()

	commodityChan := make(chan string, len(commodities))
	resultsChan := make(chan targetResult, len(commodities))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, commodityChan, resultsChan)
		}()
	}

	for _, c := range commodities {
		commodityChan <- c
	}
	close(commodityChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for tr := range resultsChan {
		if tr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Errors = append(result.Errors, tr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("price refresh job completed")

	return result
}

type targetResult struct {
	commodity string
	success   bool
	errors    []RefreshError
}

func (j *RefreshJob) refreshWorker(ctx context.Context, commodities <-chan string, results chan<- targetResult) {
	for commodity := range commodities {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.refreshCommodity(ctx, commodity)
		}
	}
}

func (j *RefreshJob) refreshCommodity(ctx context.Context, commodity string) targetResult {
	result := targetResult{
		commodity: commodity,
		success:   true,
	}

	targetCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if j.config.RefreshPrices && j.priceService != nil {
		if _, err := j.priceService.GetPrices(targetCtx, commodity); err != nil {
			result.errors = append(result.errors, RefreshError{
				Commodity: commodity,
				Error:     err.Error(),
			})
			result.success = false
		} else {
			atomic.AddInt64(&j.metrics.PriceRefreshes, 1)
		}
	}

	return result
}

// WarmDirectory primes the mandi directory listing. The directory is
// not commodity-scoped, so this runs once per job, not per target.
func (j *RefreshJob) WarmDirectory(ctx context.Context) error {
	if !j.config.WarmDirectory || j.directoryService == nil {
		return nil
	}

	j.logger.Debug().Msg("warming mandi directory")

	if _, err := j.directoryService.ListCommodities(ctx); err != nil {
		j.logger.Error().Err(err).Msg("failed to warm mandi directory")
		return err
	}

	atomic.AddInt64(&j.metrics.DirectoryWarms, 1)
	return nil
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.SuccessfulTargets += int64(result.Successful)
	j.metrics.FailedTargets += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRuns:         j.metrics.TotalRuns,
		SuccessfulTargets: j.metrics.SuccessfulTargets,
		FailedTargets:     j.metrics.FailedTargets,
		PriceRefreshes:    atomic.LoadInt64(&j.metrics.PriceRefreshes),
		DirectoryWarms:    atomic.LoadInt64(&j.metrics.DirectoryWarms),
		LastRunAt:         j.metrics.LastRunAt,
		LastRunDuration:   j.metrics.LastRunDuration,
		TotalDuration:     j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns the current metrics as a map for the status
// endpoint.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":         m.TotalRuns,
		"successful_targets": m.SuccessfulTargets,
		"failed_targets":     m.FailedTargets,
		"price_refreshes":    m.PriceRefreshes,
		"directory_warms":    m.DirectoryWarms,
		"last_run_at":        m.LastRunAt,
		"last_run_duration":  m.LastRunDuration.String(),
		"total_duration":     m.TotalDuration.String(),
	}
}
