package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Mandi rows live in `mandis`; per-commodity modal prices in
// `mandi_prices` (one row per mandi/commodity pair, ₹/quintal).
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL mandi repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListAll retrieves every mandi with its price table.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*Mandi, error) {
	query := `
		SELECT
			id, market, district, state,
			lat, lon, typical_distance_km,
			demand_level, trading_hours
		FROM mandis
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mandis []*Mandi
	byID := make(map[string]*Mandi)

	for rows.Next() {
		m, err := scanMandi(rows)
		if err != nil {
			return nil, err
		}
		mandis = append(mandis, m)
		byID[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadPrices(ctx, byID); err != nil {
		return nil, err
	}

	return mandis, nil
}

// Get retrieves a mandi by ID with its price table.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Mandi, error) {
	query := `
		SELECT
			id, market, district, state,
			lat, lon, typical_distance_km,
			demand_level, trading_hours
		FROM mandis
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	m, err := scanMandi(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMandiNotFound
		}
		return nil, err
	}

	if err := r.loadPrices(ctx, map[string]*Mandi{m.ID: m}); err != nil {
		return nil, err
	}

	return m, nil
}

// loadPrices attaches modal prices to the given mandis.
func (r *PostgresRepository) loadPrices(ctx context.Context, byID map[string]*Mandi) error {
	if len(byID) == 0 {
		return nil
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	query := `
		SELECT mandi_id, commodity, modal_price_per_quintal
		FROM mandi_prices
		WHERE mandi_id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			mandiID   string
			commodity string
			price     float64
		)
		if err := rows.Scan(&mandiID, &commodity, &price); err != nil {
			return err
		}
		if m, ok := byID[mandiID]; ok {
			if m.Prices == nil {
				m.Prices = make(map[string]float64)
			}
			m.Prices[commodity] = price
		}
	}

	return rows.Err()
}

// scanMandi scans a mandi row (prices loaded separately).
func scanMandi(row pgx.Row) (*Mandi, error) {
	var m Mandi
	err := row.Scan(
		&m.ID,
		&m.Market,
		&m.District,
		&m.State,
		&m.Location.Lat,
		&m.Location.Lon,
		&m.TypicalDistanceKm,
		&m.DemandLevel,
		&m.TradingHours,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
