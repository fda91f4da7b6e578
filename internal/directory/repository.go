package directory

import "context"

// Repository defines the interface for mandi reference data access.
// Implementations must return read-only data: callers never mutate the
// returned mandis.
type Repository interface {
	// ListAll retrieves every mandi in the directory.
	ListAll(ctx context.Context) ([]*Mandi, error)

	// Get retrieves a mandi by ID.
	// Returns ErrMandiNotFound if the mandi doesn't exist.
	Get(ctx context.Context, id string) (*Mandi, error)
}
