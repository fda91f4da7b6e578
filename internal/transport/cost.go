// Package transport models the cost of moving a harvest to a mandi.
package transport

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Model errors.
var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrNoVehicleClass  = errors.New("no vehicle class configured")
)

// VehicleClass is a discrete transport-capacity tier.
type VehicleClass struct {
	// Name identifies the tier (e.g. "Two-Wheeler").
	Name string

	// MaxQuantityKg is the largest load the class carries. Zero means
	// unbounded; exactly one class (the largest) may be unbounded.
	MaxQuantityKg float64

	// BaseFare is the flat fare in rupees.
	BaseFare float64

	// PerKmRate is the distance-scaled fare in rupees per kilometer.
	PerKmRate float64
}

// Quote is the priced transport for one (distance, quantity) pair.
type Quote struct {
	Vehicle string
	Fare    float64
}

// CostConfig holds the vehicle-class breakpoints. Classes are
// configuration, not constants; the selection must be total over all
// positive quantities.
type CostConfig struct {
	Classes []VehicleClass
}

// DefaultCostConfig returns the default vehicle tiers used by the
// Gujarat catchment: two-wheeler up to 50 kg, mini-truck up to 500 kg,
// full truck beyond.
func DefaultCostConfig() CostConfig {
	return CostConfig{
		Classes: []VehicleClass{
			{Name: "Two-Wheeler", MaxQuantityKg: 50, BaseFare: 50, PerKmRate: 5},
			{Name: "Mini-Truck", MaxQuantityKg: 500, BaseFare: 300, PerKmRate: 12},
			{Name: "Truck", MaxQuantityKg: 0, BaseFare: 800, PerKmRate: 20},
		},
	}
}

// Model maps (distance, quantity) to a vehicle class and fare.
type Model struct {
	classes []VehicleClass // sorted by capacity, unbounded class last
}

// NewModel creates a cost model from the given configuration.
// Returns an error when the configuration cannot map every positive
// quantity to exactly one class.
func NewModel(cfg CostConfig) (*Model, error) {
	if len(cfg.Classes) == 0 {
		return nil, ErrNoVehicleClass
	}

	classes := make([]VehicleClass, len(cfg.Classes))
	copy(classes, cfg.Classes)

	// Bounded classes ascending by capacity, unbounded last.
	sort.SliceStable(classes, func(a, b int) bool {
		if classes[a].MaxQuantityKg == 0 {
			return false
		}
		if classes[b].MaxQuantityKg == 0 {
			return true
		}
		return classes[a].MaxQuantityKg < classes[b].MaxQuantityKg
	})

	for i, c := range classes {
		if c.Name == "" {
			return nil, fmt.Errorf("vehicle class %d: missing name", i)
		}
		if c.BaseFare < 0 || c.PerKmRate < 0 {
			return nil, fmt.Errorf("vehicle class %s: negative fare components", c.Name)
		}
		if c.MaxQuantityKg < 0 {
			return nil, fmt.Errorf("vehicle class %s: negative capacity", c.Name)
		}
		if c.MaxQuantityKg == 0 && i != len(classes)-1 {
			return nil, fmt.Errorf("vehicle class %s: unbounded class must be the largest", c.Name)
		}
	}

	// The selection must be total: the largest class carries everything.
	if last := classes[len(classes)-1]; last.MaxQuantityKg != 0 {
		return nil, fmt.Errorf("largest vehicle class %s must be unbounded", last.Name)
	}

	return &Model{classes: classes}, nil
}

// Quote selects the smallest sufficient vehicle class for quantityKg
// and prices the trip: fare = base + perKm × distance. The fare is
// never negative and is monotonic non-decreasing in distance.
func (m *Model) Quote(distanceKm, quantityKg float64) (Quote, error) {
	if quantityKg <= 0 {
		return Quote{}, fmt.Errorf("%w: %v kg", ErrInvalidQuantity, quantityKg)
	}
	if distanceKm < 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return Quote{}, fmt.Errorf("invalid distance %v km", distanceKm)
	}

	class := m.classFor(quantityKg)
	return Quote{
		Vehicle: class.Name,
		Fare:    class.BaseFare + class.PerKmRate*distanceKm,
	}, nil
}

// Classes returns the configured classes sorted by capacity.
// The returned slice must not be modified.
func (m *Model) Classes() []VehicleClass {
	return m.classes
}

// classFor returns the smallest sufficient class for the quantity.
func (m *Model) classFor(quantityKg float64) VehicleClass {
	for _, c := range m.classes {
		if c.MaxQuantityKg == 0 || quantityKg <= c.MaxQuantityKg {
			return c
		}
	}
	// Unreachable: the largest class is unbounded.
	return m.classes[len(m.classes)-1]
}
