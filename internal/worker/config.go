// Package worker provides background job processing for MandiRoute.
package worker

import (
	"sort"
	"time"
)

// RefreshTarget is one commodity whose mandi prices the worker keeps
// warm.
type RefreshTarget struct {
	// Commodity is the feed's commodity name.
	Commodity string

	// Priority determines refresh order (lower = higher priority).
	Priority int
}

// RefreshConfig holds configuration for the price refresh job.
type RefreshConfig struct {
	// Targets are the commodities to refresh. If empty, uses
	// DefaultRefreshTargets.
	Targets []RefreshTarget

	// Concurrency is the number of concurrent feed fetches.
	// Default: 3
	Concurrency int

	// Timeout is the timeout per commodity fetch.
	// Default: 30 seconds
	Timeout time.Duration

	// RefreshPrices enables the price feed refresh.
	// Default: true
	RefreshPrices bool

	// WarmDirectory enables warming the mandi directory listing.
	// Default: true
	WarmDirectory bool
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Targets:       DefaultRefreshTargets(),
		Concurrency:   3,
		Timeout:       30 * time.Second,
		RefreshPrices: true,
		WarmDirectory: true,
	}
}

// DefaultRefreshTargets returns the default commodities for the
// Gujarat catchment. Perishables refresh first: their prices move the
// most within a trading day.
func DefaultRefreshTargets() []RefreshTarget {
	return []RefreshTarget{
		{Commodity: "Tomato", Priority: 1},
		{Commodity: "Onion", Priority: 1},
		{Commodity: "Cauliflower", Priority: 1},
		{Commodity: "Cabbage", Priority: 1},
		{Commodity: "Chilli Red", Priority: 2},
		{Commodity: "Potato", Priority: 2},
		{Commodity: "Wheat", Priority: 3},
		{Commodity: "Rice", Priority: 3},
		{Commodity: "Cotton", Priority: 3},
	}
}

// Commodities returns the target commodities ordered by priority, then
// name.
func (c RefreshConfig) Commodities() []string {
	targets := make([]RefreshTarget, len(c.Targets))
	copy(targets, c.Targets)
	sort.SliceStable(targets, func(a, b int) bool {
		if targets[a].Priority != targets[b].Priority {
			return targets[a].Priority < targets[b].Priority
		}
		return targets[a].Commodity < targets[b].Commodity
	})

	commodities := make([]string, 0, len(targets))
	for _, t := range targets {
		commodities = append(commodities, t.Commodity)
	}
	return commodities
}

// TotalTargets returns the number of commodities to refresh.
func (c RefreshConfig) TotalTargets() int {
	return len(c.Targets)
}
