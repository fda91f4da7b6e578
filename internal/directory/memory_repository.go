package directory

import (
	"context"
	"fmt"
	"sort"
)

// InMemoryRepository is an in-memory implementation of Repository backed
// by a static mandi list. It is the default for local development and
// the fallback when no database is configured.
type InMemoryRepository struct {
	mandis map[string]*Mandi
	order  []string // stable iteration order by mandi ID
}

// NewInMemoryRepository creates an in-memory repository from the given
// mandis. Malformed entries are rejected at load time, not at use time.
func NewInMemoryRepository(mandis []*Mandi) (*InMemoryRepository, error) {
	repo := &InMemoryRepository{
		mandis: make(map[string]*Mandi, len(mandis)),
	}

	for i, m := range mandis {
		if err := validateMandi(m); err != nil {
			return nil, fmt.Errorf("mandi entry %d: %w", i, err)
		}
		if _, exists := repo.mandis[m.ID]; exists {
			return nil, fmt.Errorf("mandi entry %d: duplicate id %q", i, m.ID)
		}
		repo.mandis[m.ID] = m
		repo.order = append(repo.order, m.ID)
	}

	sort.Strings(repo.order)
	return repo, nil
}

// ListAll retrieves every mandi, ordered by ID.
func (r *InMemoryRepository) ListAll(_ context.Context) ([]*Mandi, error) {
	items := make([]*Mandi, 0, len(r.order))
	for _, id := range r.order {
		items = append(items, r.mandis[id])
	}
	return items, nil
}

// Get retrieves a mandi by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Mandi, error) {
	m, ok := r.mandis[id]
	if !ok {
		return nil, ErrMandiNotFound
	}
	return m, nil
}

// validateMandi checks a directory entry for required fields.
func validateMandi(m *Mandi) error {
	if m == nil {
		return fmt.Errorf("nil mandi")
	}
	if m.ID == "" {
		return fmt.Errorf("missing id")
	}
	if m.Market == "" {
		return fmt.Errorf("mandi %s: missing market name", m.ID)
	}
	if m.Location.Lat < -90 || m.Location.Lat > 90 {
		return fmt.Errorf("mandi %s: latitude %f out of range", m.ID, m.Location.Lat)
	}
	if m.Location.Lon < -180 || m.Location.Lon > 180 {
		return fmt.Errorf("mandi %s: longitude %f out of range", m.ID, m.Location.Lon)
	}
	if m.TypicalDistanceKm < 0 {
		return fmt.Errorf("mandi %s: negative typical distance", m.ID)
	}
	switch m.DemandLevel {
	case DemandLow, DemandMedium, DemandHigh:
	default:
		return fmt.Errorf("mandi %s: invalid demand level %q", m.ID, m.DemandLevel)
	}
	for commodity, price := range m.Prices {
		if commodity == "" {
			return fmt.Errorf("mandi %s: empty commodity name", m.ID)
		}
		if price <= 0 {
			return fmt.Errorf("mandi %s: non-positive price for %s", m.ID, commodity)
		}
	}
	return nil
}
