// Package geo resolves farmer-to-mandi distances.
package geo

import (
	"errors"
	"math"

	"github.com/mandiroute/mandiroute/internal/directory"
)

// Resolver errors.
var (
	// ErrLocationUnavailable is returned when neither a live origin nor a
	// recorded fallback distance can produce a result.
	ErrLocationUnavailable = errors.New("location unavailable")
)

// Point represents the farmer's geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate is within range.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Resolver computes the distance from a farmer's origin to a mandi.
// With a live origin it uses the great-circle distance; without one it
// degrades to the directory's recorded typical distance so results stay
// available in location-degraded mode.
type Resolver struct{}

// NewResolver creates a distance resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// DistanceTo returns the distance in kilometers from origin to the
// mandi. A nil or invalid origin falls back to the mandi's recorded
// typical distance; ErrLocationUnavailable is returned only when that
// fallback is missing too.
func (r *Resolver) DistanceTo(origin *Point, mandi *directory.Mandi) (float64, error) {
	if origin != nil && origin.Valid() {
		return HaversineKm(origin.Lat, origin.Lon, mandi.Location.Lat, mandi.Location.Lon), nil
	}

	if mandi.TypicalDistanceKm > 0 {
		return mandi.TypicalDistanceKm, nil
	}

	return 0, ErrLocationUnavailable
}

// HaversineKm calculates the great-circle distance between two points
// in kilometers using the Haversine formula.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
