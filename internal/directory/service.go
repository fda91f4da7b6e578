package directory

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the directory service.
type ServiceConfig struct {
	// Repository is the mandi data source.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service provides read access to the mandi directory.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new directory service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}
}

// ListMandis returns every mandi carrying a quoted price for the
// commodity. Returns ErrUnknownCommodity when no mandi anywhere in the
// directory quotes it.
func (s *Service) ListMandis(ctx context.Context, commodity string) ([]*Mandi, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mandis: %w", err)
	}

	var matched []*Mandi
	for _, m := range all {
		if m.HasCommodity(commodity) {
			matched = append(matched, m)
		}
	}

	if len(matched) == 0 {
		s.logger.Debug().
			Str("commodity", commodity).
			Msg("commodity not quoted by any mandi")
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommodity, commodity)
	}

	return matched, nil
}

// ListCommodities returns the sorted set of commodity names quoted
// anywhere in the directory.
func (s *Service) ListCommodities(ctx context.Context) ([]string, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list commodities: %w", err)
	}

	seen := make(map[string]struct{})
	for _, m := range all {
		for commodity := range m.Prices {
			seen[commodity] = struct{}{}
		}
	}

	commodities := make([]string, 0, len(seen))
	for c := range seen {
		commodities = append(commodities, c)
	}
	sort.Strings(commodities)

	return commodities, nil
}

// GetMandi retrieves a single mandi by ID.
func (s *Service) GetMandi(ctx context.Context, id string) (*Mandi, error) {
	return s.repo.Get(ctx, id)
}
