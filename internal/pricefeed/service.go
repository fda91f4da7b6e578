package pricefeed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the price feed service.
type ServiceConfig struct {
	// Provider is the price data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache commodity prices (default: 15 minutes).
	// Mandi modal prices move slowly within a trading day.
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale prices on provider errors
	// (default: 2 hours).
	StaleIfErrorTTL time.Duration

	// CleanupInterval is how often expired entries are removed
	// (default: 15 minutes).
	CleanupInterval time.Duration
}

// Service provides commodity prices with caching. It is an optional
// price source: callers fall back to the directory's static modal
// prices when a live quote is missing.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration
	cleanupInterval time.Duration

	mu          sync.RWMutex
	cache       map[string]*cachedPrices // keyed by commodity
	lastCleanup time.Time
}

type cachedPrices struct {
	prices    *CommodityPrices
	byMandi   map[string]Quote
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new price feed service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 2 * time.Hour
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 15 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
		cleanupInterval: cleanupInterval,
		cache:           make(map[string]*cachedPrices),
	}
}

// GetPrices returns all quotes for a commodity.
// Uses cached data if available and not expired.
func (s *Service) GetPrices(ctx context.Context, commodity string) (*CommodityPrices, error) {
	s.mu.RLock()
	if cached, ok := s.cache[commodity]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.prices, nil
	}
	s.mu.RUnlock()

	return s.fetchPrices(ctx, commodity)
}

// PricePerKg returns the live per-kg price for a commodity at a mandi,
// and whether a quote is available. Provider failures are degradations,
// not errors: the caller falls back to directory prices.
func (s *Service) PricePerKg(ctx context.Context, commodity, mandiID string) (float64, bool) {
	s.mu.RLock()
	if cached, ok := s.cache[commodity]; ok && time.Now().Before(cached.expiresAt) {
		quote, found := cached.byMandi[mandiID]
		s.mu.RUnlock()
		if !found || quote.ModalPricePerQuintal <= 0 {
			return 0, false
		}
		return quote.ModalPricePerQuintal / 100, true
	}
	s.mu.RUnlock()

	if _, err := s.fetchPrices(ctx, commodity); err != nil {
		return 0, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	cached, ok := s.cache[commodity]
	if !ok {
		return 0, false
	}
	quote, found := cached.byMandi[mandiID]
	if !found || quote.ModalPricePerQuintal <= 0 {
		return 0, false
	}
	return quote.ModalPricePerQuintal / 100, true
}

// fetchPrices fetches prices from the provider and updates the cache.
func (s *Service) fetchPrices(ctx context.Context, commodity string) (*CommodityPrices, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache (prevents thundering herd).
	if cached, ok := s.cache[commodity]; ok && time.Now().Before(cached.expiresAt) {
		return cached.prices, nil
	}

	s.logger.Debug().
		Str("commodity", commodity).
		Str("provider", s.provider.Name()).
		Msg("fetching prices from provider")

	quotes, err := s.provider.FetchPrices(ctx, commodity)
	if err != nil {
		s.logger.Error().Err(err).
			Str("commodity", commodity).
			Msg("failed to fetch prices")

		// Stale-if-error: serve an expired entry within the stale window.
		if cached, ok := s.cache[commodity]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Str("commodity", commodity).
					Time("fetched_at", cached.fetchedAt).
					Msg("serving stale price data due to provider error")
				return cached.prices, nil
			}
		}

		return nil, err
	}

	now := time.Now()
	prices := &CommodityPrices{
		Commodity: commodity,
		Quotes:    quotes,
		Provider:  s.provider.Name(),
		FetchedAt: now,
	}

	byMandi := make(map[string]Quote, len(quotes))
	for _, q := range quotes {
		byMandi[q.MandiID] = q
	}

	s.cache[commodity] = &cachedPrices{
		prices:    prices,
		byMandi:   byMandi,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.cleanupIfNeeded()

	return prices, nil
}

// cleanupIfNeeded removes entries past the stale-if-error window.
func (s *Service) cleanupIfNeeded() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for commodity, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, commodity)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired price cache entries")
	}
}

// InvalidateCache clears all cached prices.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedPrices)
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// CacheStats contains cache statistics.
type CacheStats struct {
	TotalEntries int
	FreshEntries int
	StaleEntries int
	Provider     string
}

// Stats returns cache statistics.
func (s *Service) Stats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	fresh := 0
	stale := 0

	for _, c := range s.cache {
		if now.Before(c.expiresAt) {
			fresh++
		} else if now.Before(c.fetchedAt.Add(s.staleIfErrorTTL)) {
			stale++
		}
	}

	return CacheStats{
		TotalEntries: len(s.cache),
		FreshEntries: fresh,
		StaleEntries: stale,
		Provider:     s.provider.Name(),
	}
}
