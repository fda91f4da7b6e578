package market

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mandiroute/mandiroute/internal/directory"
	"github.com/mandiroute/mandiroute/internal/geo"
	"github.com/mandiroute/mandiroute/internal/transport"
)

// PriceSource supplies live per-kg prices. A miss is a degradation:
// the directory's static modal price is used instead.
type PriceSource interface {
	PricePerKg(ctx context.Context, commodity, mandiID string) (float64, bool)
}

// ServiceConfig holds configuration for the market service.
type ServiceConfig struct {
	// Directory is the mandi reference directory.
	Directory *directory.Service

	// Distance resolves farmer-to-mandi distances.
	Distance *geo.Resolver

	// Transport prices the haul for a (distance, quantity) pair.
	Transport *transport.Model

	// LivePrices is an optional live price source overriding the
	// directory's static modal prices per mandi.
	LivePrices PriceSource

	// Logger for service operations.
	Logger zerolog.Logger

	// Concurrency bounds the per-mandi evaluation fan-out (default: 4).
	Concurrency int

	// FavorableProfitPerKg is the per-kg profit above which a sell-now
	// verdict is high urgency (default: ₹5/kg).
	FavorableProfitPerKg float64

	// RoundUnitKg is the unit the break-even quantity is rounded up to
	// (default: 10 kg).
	RoundUnitKg float64
}

// Service is the market-selection engine: it ranks mandis by net
// profit and turns the ranking into a recommendation. Stateless
// between calls.
type Service struct {
	directory  *directory.Service
	distance   *geo.Resolver
	transport  *transport.Model
	livePrices PriceSource
	logger     zerolog.Logger

	concurrency          int
	favorableProfitPerKg float64
	roundUnitKg          float64
}

// NewService creates a new market service.
func NewService(cfg ServiceConfig) *Service {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	favorable := cfg.FavorableProfitPerKg
	if favorable == 0 {
		favorable = 5
	}

	roundUnit := cfg.RoundUnitKg
	if roundUnit <= 0 {
		roundUnit = 10
	}

	return &Service{
		directory:            cfg.Directory,
		distance:             cfg.Distance,
		transport:            cfg.Transport,
		livePrices:           cfg.LivePrices,
		logger:               cfg.Logger,
		concurrency:          concurrency,
		favorableProfitPerKg: favorable,
		roundUnitKg:          roundUnit,
	}
}

// Rank evaluates the shipment against every mandi quoting the
// commodity and returns the evaluations ordered by net profit
// descending, ties broken by ascending distance, then mandi ID.
//
// Per-mandi failures (unresolvable distance, missing price) exclude
// that mandi only; they never abort the whole ranking. An empty result
// means the commodity is known but no mandi is reachable.
func (s *Service) Rank(ctx context.Context, shipment Shipment) ([]*Evaluation, error) {
	if shipment.QuantityKg <= 0 {
		return nil, fmt.Errorf("%w: %v kg", transport.ErrInvalidQuantity, shipment.QuantityKg)
	}

	mandis, err := s.directory.ListMandis(ctx, shipment.Commodity)
	if err != nil {
		return nil, err
	}

	evaluations := s.evaluateAll(ctx, mandis, shipment)

	sort.SliceStable(evaluations, func(a, b int) bool {
		if evaluations[a].NetProfit != evaluations[b].NetProfit {
			return evaluations[a].NetProfit > evaluations[b].NetProfit
		}
		if evaluations[a].DistanceKm != evaluations[b].DistanceKm {
			return evaluations[a].DistanceKm < evaluations[b].DistanceKm
		}
		return evaluations[a].MandiID < evaluations[b].MandiID
	})

	return evaluations, nil
}

// evaluateAll fans the per-mandi evaluation out over a bounded worker
// pool. Mandis have no ordering dependency between them; only the
// final sort needs all results.
func (s *Service) evaluateAll(ctx context.Context, mandis []*directory.Mandi, shipment Shipment) []*Evaluation {
	jobs := make(chan *directory.Mandi, len(mandis))
	results := make(chan *Evaluation, len(mandis))

	workers := s.concurrency
	if workers > len(mandis) {
		workers = len(mandis)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for mandi := range jobs {
				if eval := s.evaluateOne(ctx, mandi, shipment); eval != nil {
					results <- eval
				}
			}
		}()
	}

	for _, m := range mandis {
		jobs <- m
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	evaluations := make([]*Evaluation, 0, len(mandis))
	for eval := range results {
		evaluations = append(evaluations, eval)
	}
	return evaluations
}

// evaluateOne evaluates a single mandi. Returns nil when the mandi must
// be excluded; the reason is logged, never propagated.
func (s *Service) evaluateOne(ctx context.Context, mandi *directory.Mandi, shipment Shipment) *Evaluation {
	distanceKm, err := s.distance.DistanceTo(shipment.Origin, mandi)
	if err != nil {
		s.logger.Debug().
			Str("mandi_id", mandi.ID).
			Err(err).
			Msg("excluding mandi: distance unresolvable")
		return nil
	}

	quote, err := s.transport.Quote(distanceKm, shipment.QuantityKg)
	if err != nil {
		s.logger.Warn().
			Str("mandi_id", mandi.ID).
			Err(err).
			Msg("excluding mandi: transport quote failed")
		return nil
	}

	if s.livePrices != nil {
		if perKg, ok := s.livePrices.PricePerKg(ctx, shipment.Commodity, mandi.ID); ok {
			return EvaluateAtPrice(mandi, shipment, distanceKm, quote, perKg)
		}
	}

	eval, err := Evaluate(mandi, shipment, distanceKm, quote)
	if err != nil {
		// Directory/ranker integration bug: ListMandis should have
		// filtered this mandi out. Logged loudly, mandi excluded.
		s.logger.Error().
			Str("mandi_id", mandi.ID).
			Str("commodity", shipment.Commodity).
			Err(err).
			Msg("invariant violation: candidate mandi has no price")
		return nil
	}
	return eval
}

// Recommend ranks the shipment and applies the decision layer: best
// option, nearest option, verdict, and the break-even quantity when
// every mandi is loss-making. Returns ErrNoMarketAvailable when the
// ranking is empty.
func (s *Service) Recommend(ctx context.Context, shipment Shipment) (*Recommendation, error) {
	ranked, err := s.Rank(ctx, shipment)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMarketAvailable, shipment.Commodity)
	}

	best := ranked[0]
	nearest := ranked[0]
	profitable := 0
	for _, e := range ranked {
		if e.DistanceKm < nearest.DistanceKm {
			nearest = e
		}
		if e.IsProfitable {
			profitable++
		}
	}

	rec := &Recommendation{
		BestOption:    best,
		NearestOption: nearest,
		Summary: Summary{
			ProfitableCount: profitable,
			AllLoss:         profitable == 0,
			BestNetProfit:   best.NetProfit,
		},
	}

	if best.NetProfit > 0 {
		rec.Action = ActionSellNow
		if best.ProfitPerKg > s.favorableProfitPerKg {
			rec.Urgency = UrgencyHigh
		} else {
			rec.Urgency = UrgencyMedium
		}
		rec.Reason = fmt.Sprintf(
			"Sell at %s for a net profit of ₹%.0f (₹%.2f/kg after transport by %s).",
			best.Market, best.NetProfit, best.ProfitPerKg, best.Vehicle,
		)
		return rec, nil
	}

	// All-loss: transport eats the revenue everywhere. Hold, and tell
	// the farmer the smallest lot that breaks even at the best mandi.
	rec.Action = ActionHold
	rec.Urgency = UrgencyHigh
	rec.Reason = fmt.Sprintf(
		"Transport costs exceed earnings at %.0f kg; selling anywhere loses money (best case ₹%.0f at %s).",
		shipment.QuantityKg, best.NetProfit, best.Market,
	)

	if minQty, ok := minQuantityForProfit(s.transport, best.PricePerKg, best.DistanceKm, s.roundUnitKg); ok {
		rec.MinQuantityForProfit = minQty
		rec.Reason = fmt.Sprintf(
			"%s Increase the lot to at least %.0f kg to break even there.",
			rec.Reason, minQty,
		)
	}

	return rec, nil
}

// IsUserError reports whether the error is caused by the caller's
// input rather than a system fault.
func IsUserError(err error) bool {
	return errors.Is(err, directory.ErrUnknownCommodity) ||
		errors.Is(err, transport.ErrInvalidQuantity) ||
		errors.Is(err, ErrNoMarketAvailable)
}
