package repository

import (
	"context"

	"flightspotter-service/internal/domain/entity"
)

// LocationRepository defines the interface for location directory lookups
type LocationRepository interface {
	GetByLocationID(ctx context.Context, locationID string) (*entity.Location, error)
}
