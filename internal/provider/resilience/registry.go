package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// FeedHealth is the health snapshot of one upstream feed.
type FeedHealth struct {
	// Name is the feed identifier.
	Name string

	// CircuitState is the current circuit breaker state.
	CircuitState gobreaker.State

	// Counts contains circuit breaker statistics.
	Counts gobreaker.Counts

	// LastSuccessAt is when the feed last answered successfully.
	LastSuccessAt *time.Time

	// LastFailureAt is when the feed last failed.
	LastFailureAt *time.Time

	// LastError is the most recent error message, if any.
	LastError string
}

// IsHealthy reports whether the feed's breaker is closed.
func (h *FeedHealth) IsHealthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// IsDegraded reports whether the feed is being probed (half-open).
func (h *FeedHealth) IsDegraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}

// IsUnhealthy reports whether the breaker is open.
func (h *FeedHealth) IsUnhealthy() bool {
	return h.CircuitState == gobreaker.StateOpen
}

// Registry tracks upstream feed clients and their health for the ops
// endpoints.
type Registry struct {
	mu    sync.RWMutex
	feeds map[string]*registeredFeed
}

type registeredFeed struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates an empty feed registry.
func NewRegistry() *Registry {
	return &Registry{
		feeds: make(map[string]*registeredFeed),
	}
}

// Register adds a feed client to the registry.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeds[name] = &registeredFeed{client: client}
}

// Unregister removes a feed from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.feeds, name)
}

// RecordSuccess records a successful call to the named feed.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.feeds[name]; ok {
		now := time.Now()
		f.lastSuccessAt = &now
	}
}

// RecordFailure records a failed call to the named feed.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.feeds[name]; ok {
		now := time.Now()
		f.lastFailureAt = &now
		if err != nil {
			f.lastError = err.Error()
		}
	}
}

// GetHealth returns the health of one feed, or nil if unregistered.
func (r *Registry) GetHealth(name string) *FeedHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.feeds[name]
	if !ok {
		return nil
	}
	return f.health(name)
}

// GetAllHealth returns the health of every registered feed, ordered by
// name.
func (r *Registry) GetAllHealth() []*FeedHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make([]*FeedHealth, 0, len(r.feeds))
	for name, f := range r.feeds {
		health = append(health, f.health(name))
	}
	sort.Slice(health, func(a, b int) bool { return health[a].Name < health[b].Name })
	return health
}

// FeedNames returns the names of all registered feeds, sorted.
func (r *Registry) FeedNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.feeds))
	for name := range r.feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FeedCount returns the number of registered feeds.
func (r *Registry) FeedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.feeds)
}

func (f *registeredFeed) health(name string) *FeedHealth {
	return &FeedHealth{
		Name:          name,
		CircuitState:  f.client.CircuitBreakerState(),
		Counts:        f.client.CircuitBreakerCounts(),
		LastSuccessAt: f.lastSuccessAt,
		LastFailureAt: f.lastFailureAt,
		LastError:     f.lastError,
	}
}
