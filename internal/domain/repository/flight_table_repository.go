package repository

import (
	"context"

	"flightspotter-service/internal/domain/entity"
)

// FlightTableRepository defines the interface for raw telemetry row queries
type FlightTableRepository interface {
	// QueryAll returns every stored telemetry row.
	QueryAll(ctx context.Context) ([]*entity.TableRecord, error)
	// QueryByPartition returns the rows of one partition.
	QueryByPartition(ctx context.Context, partitionKey string) ([]*entity.TableRecord, error)
	// QueryRaw returns up to max rows for diagnostics.
	QueryRaw(ctx context.Context, max int) ([]*entity.TableRecord, error)
}
