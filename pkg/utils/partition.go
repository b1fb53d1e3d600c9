package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"flightspotter-service/internal/domain/repository"
	"flightspotter-service/pkg/logger"
)

// PartitionKeyBuilder computes the daily partition key for a location.
// Telemetry is bucketed one partition per calendar day in the location's
// local time, which bounds partition size and keeps "today" / "N days ago"
// queries addressed instead of full scans.
type PartitionKeyBuilder struct {
	locationRepo repository.LocationRepository
	clock        clockwork.Clock
	logger       logger.Logger
}

// NewPartitionKeyBuilder creates a new partition key builder
func NewPartitionKeyBuilder(locationRepo repository.LocationRepository, clock clockwork.Clock, logger logger.Logger) *PartitionKeyBuilder {
	return &PartitionKeyBuilder{
		locationRepo: locationRepo,
		clock:        clock,
		logger:       logger,
	}
}

// Build returns "{locationID}_{year}_{dayOfYear}" for the calendar day
// daysAgo days before now in the location's timezone. The day ordinal is
// 1-based. Unknown locations and unloadable zones fall back to UTC; negative
// daysAgo is clamped to 0 (today).
func (b *PartitionKeyBuilder) Build(ctx context.Context, locationID string, daysAgo int) string {
	if daysAgo < 0 {
		daysAgo = 0
	}

	loc := b.resolveLocation(ctx, locationID)
	day := b.clock.Now().In(loc).AddDate(0, 0, -daysAgo)

	return fmt.Sprintf("%s_%d_%d", locationID, day.Year(), day.YearDay())
}

func (b *PartitionKeyBuilder) resolveLocation(ctx context.Context, locationID string) *time.Location {
	entry, err := b.locationRepo.GetByLocationID(ctx, locationID)
	if err != nil {
		b.logger.Warn("Location not in directory, using UTC", "locationID", locationID, "error", err)
		return time.UTC
	}

	loc, err := time.LoadLocation(entry.TzName)
	if err != nil {
		b.logger.Warn("Unrecognized timezone, using UTC", "locationID", locationID, "timezone", entry.TzName, "error", err)
		return time.UTC
	}
	return loc
}
