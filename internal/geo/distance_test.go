package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/mandiroute/mandiroute/internal/directory"
)

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Nadiad to Anand is roughly 16 km as the crow flies.
	got := HaversineKm(22.6916, 72.8634, 22.5645, 72.9289)
	if got < 14 || got > 18 {
		t.Errorf("expected ~16km, got %f", got)
	}

	// Zero distance for identical points.
	if d := HaversineKm(22.69, 72.86, 22.69, 72.86); d != 0 {
		t.Errorf("expected 0 for identical points, got %f", d)
	}
}

func TestHaversineKm_Deterministic(t *testing.T) {
	first := HaversineKm(22.6916, 72.8634, 21.1702, 72.8311)
	for i := 0; i < 10; i++ {
		if got := HaversineKm(22.6916, 72.8634, 21.1702, 72.8311); got != first {
			t.Fatalf("distance not deterministic: %v != %v", got, first)
		}
	}
}

func TestResolver_DistanceTo_LiveOrigin(t *testing.T) {
	resolver := NewResolver()
	mandi := &directory.Mandi{
		ID:                "mnd_a",
		Location:          directory.Point{Lat: 22.5645, Lon: 72.9289},
		TypicalDistanceKm: 99,
	}

	origin := &Point{Lat: 22.6916, Lon: 72.8634}
	got, err := resolver.DistanceTo(origin, mandi)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Live origin must win over the recorded fallback.
	if math.Abs(got-99) < 1 {
		t.Errorf("expected haversine distance, got fallback %f", got)
	}
	if got < 14 || got > 18 {
		t.Errorf("expected ~16km, got %f", got)
	}
}

func TestResolver_DistanceTo_FallsBackWithoutOrigin(t *testing.T) {
	resolver := NewResolver()
	mandi := &directory.Mandi{
		ID:                "mnd_a",
		Location:          directory.Point{Lat: 22.5645, Lon: 72.9289},
		TypicalDistanceKm: 15,
	}

	got, err := resolver.DistanceTo(nil, mandi)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 15 {
		t.Errorf("expected fallback 15km, got %f", got)
	}
}

func TestResolver_DistanceTo_InvalidOriginFallsBack(t *testing.T) {
	resolver := NewResolver()
	mandi := &directory.Mandi{
		ID:                "mnd_a",
		Location:          directory.Point{Lat: 22.5645, Lon: 72.9289},
		TypicalDistanceKm: 15,
	}

	got, err := resolver.DistanceTo(&Point{Lat: 91, Lon: 0}, mandi)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 15 {
		t.Errorf("expected fallback 15km, got %f", got)
	}
}

func TestResolver_DistanceTo_LocationUnavailable(t *testing.T) {
	resolver := NewResolver()
	mandi := &directory.Mandi{
		ID:       "mnd_a",
		Location: directory.Point{Lat: 22.5645, Lon: 72.9289},
		// No recorded typical distance.
	}

	_, err := resolver.DistanceTo(nil, mandi)
	if !errors.Is(err, ErrLocationUnavailable) {
		t.Fatalf("expected ErrLocationUnavailable, got %v", err)
	}
}
