package market

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mandiroute/mandiroute/internal/directory"
	"github.com/mandiroute/mandiroute/internal/geo"
	"github.com/mandiroute/mandiroute/internal/transport"
)

func scenarioMandis() []*directory.Mandi {
	return []*directory.Mandi{
		{
			ID:                "mnd_nadiad",
			Market:            "Nadiad APMC",
			District:          "Kheda",
			State:             "Gujarat",
			Location:          directory.Point{Lat: 22.6916, Lon: 72.8634},
			TypicalDistanceKm: 5,
			DemandLevel:       directory.DemandMedium,
			TradingHours:      "6:00 AM - 2:00 PM",
			Prices:            map[string]float64{"Tomato": 3000, "Potato": 1200},
		},
		{
			ID:                "mnd_anand",
			Market:            "Anand APMC",
			District:          "Anand",
			State:             "Gujarat",
			Location:          directory.Point{Lat: 22.5645, Lon: 72.9289},
			TypicalDistanceKm: 12,
			DemandLevel:       directory.DemandHigh,
			TradingHours:      "6:00 AM - 6:00 PM",
			Prices:            map[string]float64{"Tomato": 3500},
		},
		{
			ID:                "mnd_ahmedabad",
			Market:            "Ahmedabad APMC",
			District:          "Ahmedabad",
			State:             "Gujarat",
			Location:          directory.Point{Lat: 22.9866, Lon: 72.6034},
			TypicalDistanceKm: 30,
			DemandLevel:       directory.DemandHigh,
			TradingHours:      "5:00 AM - 8:00 PM",
			Prices:            map[string]float64{"Tomato": 2800, "Onion": 1800},
		},
	}
}

func newTestService(t *testing.T, mandis []*directory.Mandi, livePrices PriceSource) *Service {
	t.Helper()

	repo, err := directory.NewInMemoryRepository(mandis)
	if err != nil {
		t.Fatalf("NewInMemoryRepository: %v", err)
	}

	model, err := transport.NewModel(transport.DefaultCostConfig())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	return NewService(ServiceConfig{
		Directory:  directory.NewService(directory.ServiceConfig{Repository: repo, Logger: zerolog.Nop()}),
		Distance:   geo.NewResolver(),
		Transport:  model,
		LivePrices: livePrices,
		Logger:     zerolog.Nop(),
	})
}

type stubPriceSource struct {
	prices map[string]float64 // keyed by mandi ID
}

func (s *stubPriceSource) PricePerKg(_ context.Context, _ string, mandiID string) (float64, bool) {
	perKg, ok := s.prices[mandiID]
	return perKg, ok
}

func TestRankOrdersByNetProfit(t *testing.T) {
	svc := newTestService(t, scenarioMandis(), nil)

	ranked, err := svc.Rank(context.Background(), Shipment{Commodity: "Tomato", QuantityKg: 200})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("got %d evaluations, want 3", len(ranked))
	}

	// 200 kg rides a mini-truck (fare 300 + 12/km): Anand nets
	// 7000-444, Nadiad 6000-360, Ahmedabad 5600-660.
	wantOrder := []struct {
		mandiID   string
		netProfit float64
	}{
		{"mnd_anand", 6556},
		{"mnd_nadiad", 5640},
		{"mnd_ahmedabad", 4940},
	}
	for i, want := range wantOrder {
		if ranked[i].MandiID != want.mandiID {
			t.Errorf("rank %d = %s, want %s", i, ranked[i].MandiID, want.mandiID)
		}
		if ranked[i].NetProfit != want.netProfit {
			t.Errorf("rank %d NetProfit = %v, want %v", i, ranked[i].NetProfit, want.netProfit)
		}
		if ranked[i].Vehicle != "Mini-Truck" {
			t.Errorf("rank %d Vehicle = %q, want Mini-Truck", i, ranked[i].Vehicle)
		}
	}
}

func TestRankIsDeterministic(t *testing.T) {
	svc := newTestService(t, scenarioMandis(), nil)
	shipment := Shipment{Commodity: "Tomato", QuantityKg: 200}

	first, err := svc.Rank(context.Background(), shipment)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := svc.Rank(context.Background(), shipment)
		if err != nil {
			t.Fatalf("Rank: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d evaluations, want %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j].MandiID != first[j].MandiID || again[j].NetProfit != first[j].NetProfit {
				t.Errorf("run %d rank %d = %s/%v, want %s/%v",
					i, j, again[j].MandiID, again[j].NetProfit, first[j].MandiID, first[j].NetProfit)
			}
		}
	}
}

func TestRankTieBreaks(t *testing.T) {
	// Identical price and distance: the mandi ID decides.
	mandis := []*directory.Mandi{
		{
			ID: "mnd_b", Market: "B APMC", District: "Kheda", State: "Gujarat",
			TypicalDistanceKm: 10, DemandLevel: directory.DemandMedium,
			Prices: map[string]float64{"Tomato": 3000},
		},
		{
			ID: "mnd_a", Market: "A APMC", District: "Kheda", State: "Gujarat",
			TypicalDistanceKm: 10, DemandLevel: directory.DemandMedium,
			Prices: map[string]float64{"Tomato": 3000},
		},
		{
			ID: "mnd_c", Market: "C APMC", District: "Kheda", State: "Gujarat",
			TypicalDistanceKm: 25, DemandLevel: directory.DemandMedium,
			Prices: map[string]float64{"Tomato": 3090}, // net matches the 10 km pair at 200 kg
		},
	}

	svc := newTestService(t, mandis, nil)

	ranked, err := svc.Rank(context.Background(), Shipment{Commodity: "Tomato", QuantityKg: 200})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("got %d evaluations, want 3", len(ranked))
	}

	// mnd_c grosses 6180 minus fare 600 = 5580, same as the 10 km
	// pair's 6000-420; nearer distance wins, then lexicographic ID.
	wantIDs := []string{"mnd_a", "mnd_b", "mnd_c"}
	for i, want := range wantIDs {
		if ranked[i].NetProfit != 5580 {
			t.Errorf("rank %d NetProfit = %v, want 5580", i, ranked[i].NetProfit)
		}
		if ranked[i].MandiID != want {
			t.Errorf("rank %d = %s, want %s", i, ranked[i].MandiID, want)
		}
	}
}

func TestRankRejectsInvalidQuantity(t *testing.T) {
	svc := newTestService(t, scenarioMandis(), nil)

	for _, quantity := range []float64{0, -5} {
		_, err := svc.Rank(context.Background(), Shipment{Commodity: "Tomato", QuantityKg: quantity})
		if !errors.Is(err, transport.ErrInvalidQuantity) {
			t.Errorf("quantity %v: err = %v, want ErrInvalidQuantity", quantity, err)
		}
	}
}

func TestRankUnknownCommodity(t *testing.T) {
	svc := newTestService(t, scenarioMandis(), nil)

	_, err := svc.Rank(context.Background(), Shipment{Commodity: "Durian", QuantityKg: 100})
	if !errors.Is(err, directory.ErrUnknownCommodity) {
		t.Errorf("err = %v, want ErrUnknownCommodity", err)
	}
}

func TestRankFiltersByCommodity(t *testing.T) {
	svc := newTestService(t, scenarioMandis(), nil)

	ranked, err := svc.Rank(context.Background(), Shipment{Commodity: "Potato", QuantityKg: 100})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(ranked) != 1 || ranked[0].MandiID != "mnd_nadiad" {
		t.Fatalf("got %+v, want only mnd_nadiad", ranked)
	}
}

func TestRankUsesLiveOrigin(t *testing.T) {
	mandis := scenarioMandis()
	svc := newTestService(t, mandis, nil)

	// Standing at the Nadiad mandi itself: distance collapses to zero
	// and the fare is the bare base rate.
	origin := &geo.Point{Lat: mandis[0].Location.Lat, Lon: mandis[0].Location.Lon}

	ranked, err := svc.Rank(context.Background(), Shipment{Commodity: "Potato", QuantityKg: 100, Origin: origin})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("got %d evaluations, want 1", len(ranked))
	}
	if ranked[0].DistanceKm != 0 {
		t.Errorf("DistanceKm = %v, want 0", ranked[0].DistanceKm)
	}
	if ranked[0].TransportCost != 300 {
		t.Errorf("TransportCost = %v, want the mini-truck base fare 300", ranked[0].TransportCost)
	}
}

func TestRankExcludesUnresolvableDistance(t *testing.T) {
	mandis := scenarioMandis()
	// No recorded typical distance and no live origin: the mandi drops
	// out of the ranking instead of failing the call.
	mandis[1].TypicalDistanceKm = 0

	svc := newTestService(t, mandis, nil)

	ranked, err := svc.Rank(context.Background(), Shipment{Commodity: "Tomato", QuantityKg: 200})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("got %d evaluations, want 2", len(ranked))
	}
	for _, e := range ranked {
		if e.MandiID == "mnd_anand" {
			t.Error("mnd_anand should have been excluded")
		}
	}
}

func TestRankLivePriceOverride(t *testing.T) {
	live := &stubPriceSource{prices: map[string]float64{"mnd_nadiad": 45}}
	svc := newTestService(t, scenarioMandis(), live)

	ranked, err := svc.Rank(context.Background(), Shipment{Commodity: "Tomato", QuantityKg: 200})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}

	// ₹45/kg live beats every static modal price: Nadiad grosses 9000
	// minus fare 360 and takes the top slot.
	if ranked[0].MandiID != "mnd_nadiad" {
		t.Fatalf("rank 0 = %s, want mnd_nadiad", ranked[0].MandiID)
	}
	if ranked[0].PricePerKg != 45 {
		t.Errorf("PricePerKg = %v, want live 45", ranked[0].PricePerKg)
	}
	if ranked[0].NetProfit != 8640 {
		t.Errorf("NetProfit = %v, want 8640", ranked[0].NetProfit)
	}
	// The other mandis keep their static prices.
	for _, e := range ranked[1:] {
		if e.PricePerKg == 45 {
			t.Errorf("%s picked up the live override", e.MandiID)
		}
	}
}

func TestRecommendSellNow(t *testing.T) {
	svc := newTestService(t, scenarioMandis(), nil)

	rec, err := svc.Recommend(context.Background(), Shipment{Commodity: "Tomato", QuantityKg: 200})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if rec.Action != ActionSellNow {
		t.Errorf("Action = %s, want SELL_NOW", rec.Action)
	}
	// ₹32.78/kg clears the favorable threshold comfortably.
	if rec.Urgency != UrgencyHigh {
		t.Errorf("Urgency = %s, want HIGH", rec.Urgency)
	}
	if rec.BestOption.MandiID != "mnd_anand" {
		t.Errorf("BestOption = %s, want mnd_anand", rec.BestOption.MandiID)
	}
	if rec.NearestOption.MandiID != "mnd_nadiad" {
		t.Errorf("NearestOption = %s, want mnd_nadiad", rec.NearestOption.MandiID)
	}
	if rec.Summary.ProfitableCount != 3 {
		t.Errorf("ProfitableCount = %d, want 3", rec.Summary.ProfitableCount)
	}
	if rec.Summary.AllLoss {
		t.Error("AllLoss = true, want false")
	}
	if rec.Summary.BestNetProfit != 6556 {
		t.Errorf("BestNetProfit = %v, want 6556", rec.Summary.BestNetProfit)
	}
	if rec.MinQuantityForProfit != 0 {
		t.Errorf("MinQuantityForProfit = %v, want 0 on a profitable verdict", rec.MinQuantityForProfit)
	}
	if rec.Reason == "" {
		t.Error("Reason is empty")
	}
}

func TestRecommendMediumUrgency(t *testing.T) {
	mandis := []*directory.Mandi{{
		ID: "mnd_thin", Market: "Thin Margin APMC", District: "Kheda", State: "Gujarat",
		TypicalDistanceKm: 5, DemandLevel: directory.DemandLow,
		// ₹2.05/kg: 200 kg grosses 410 against a 360 fare, a sliver of
		// profit well under the favorable per-kg threshold.
		Prices: map[string]float64{"Tomato": 205},
	}}

	svc := newTestService(t, mandis, nil)

	rec, err := svc.Recommend(context.Background(), Shipment{Commodity: "Tomato", QuantityKg: 200})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Action != ActionSellNow {
		t.Errorf("Action = %s, want SELL_NOW", rec.Action)
	}
	if rec.Urgency != UrgencyMedium {
		t.Errorf("Urgency = %s, want MEDIUM", rec.Urgency)
	}
	if rec.BestOption.NetProfit != 50 {
		t.Errorf("BestNetProfit = %v, want 50", rec.BestOption.NetProfit)
	}
}

func TestRecommendAllLoss(t *testing.T) {
	svc := newTestService(t, scenarioMandis(), nil)

	// One kilogram: the two-wheeler base fare alone dwarfs the revenue
	// at every mandi.
	rec, err := svc.Recommend(context.Background(), Shipment{Commodity: "Tomato", QuantityKg: 1})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if rec.Action != ActionHold {
		t.Errorf("Action = %s, want HOLD", rec.Action)
	}
	if rec.Urgency != UrgencyHigh {
		t.Errorf("Urgency = %s, want HIGH", rec.Urgency)
	}
	if !rec.Summary.AllLoss {
		t.Error("AllLoss = false, want true")
	}
	if rec.Summary.ProfitableCount != 0 {
		t.Errorf("ProfitableCount = %d, want 0", rec.Summary.ProfitableCount)
	}

	// Least-bad mandi is Nadiad: 30 - (50+25) = -45.
	if rec.BestOption.MandiID != "mnd_nadiad" {
		t.Errorf("BestOption = %s, want mnd_nadiad", rec.BestOption.MandiID)
	}
	if rec.BestOption.NetProfit != -45 {
		t.Errorf("BestOption.NetProfit = %v, want -45", rec.BestOption.NetProfit)
	}

	// Two-wheeler fare 75 at 5 km needs 3 kg at ₹30, rounded up to the
	// 10 kg reporting unit.
	if rec.MinQuantityForProfit != 10 {
		t.Errorf("MinQuantityForProfit = %v, want 10", rec.MinQuantityForProfit)
	}
	if rec.MinQuantityForProfit <= 1 {
		t.Error("MinQuantityForProfit must exceed the queried quantity")
	}
}

func TestRecommendNoMarketAvailable(t *testing.T) {
	mandis := []*directory.Mandi{{
		ID: "mnd_remote", Market: "Remote APMC", District: "Kutch", State: "Gujarat",
		TypicalDistanceKm: 0, DemandLevel: directory.DemandLow,
		Prices: map[string]float64{"Tomato": 3000},
	}}

	svc := newTestService(t, mandis, nil)

	// The only candidate has no resolvable distance, so the ranking is
	// empty and the recommendation has nothing to stand on.
	_, err := svc.Recommend(context.Background(), Shipment{Commodity: "Tomato", QuantityKg: 100})
	if !errors.Is(err, ErrNoMarketAvailable) {
		t.Errorf("err = %v, want ErrNoMarketAvailable", err)
	}
}

func TestIsUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unknown commodity", directory.ErrUnknownCommodity, true},
		{"invalid quantity", transport.ErrInvalidQuantity, true},
		{"no market", ErrNoMarketAvailable, true},
		{"missing price", ErrMissingPrice, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserError(tt.err); got != tt.want {
				t.Errorf("IsUserError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
