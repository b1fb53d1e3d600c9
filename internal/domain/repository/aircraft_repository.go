package repository

import (
	"context"

	"flightspotter-service/internal/domain/entity"
)

// AircraftRepository defines the interface for aircraft master record operations
type AircraftRepository interface {
	// Get returns the record under (partitionKey, rowKey) or ErrNotFound.
	Get(ctx context.Context, partitionKey, rowKey string) (*entity.Aircraft, error)
	// Insert adds a new record; an existing key yields ErrConflict.
	Insert(ctx context.Context, aircraft *entity.Aircraft) error
	// UpdateConditional writes the record only if the stored version still
	// matches the given token; a stale token yields ErrConflict.
	UpdateConditional(ctx context.Context, aircraft *entity.Aircraft, version int64) error
}
