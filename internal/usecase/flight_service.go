package usecase

import (
	"context"
	"sort"

	"flightspotter-service/internal/domain/entity"
	"flightspotter-service/internal/domain/repository"
	"flightspotter-service/pkg/logger"
	"flightspotter-service/pkg/metrics"
	"flightspotter-service/pkg/utils"
)

// Sort orders accepted by the flight views
const (
	SortAscending  = "asc"
	SortDescending = "desc"
)

// FlightService serves normalized flight views over the raw telemetry store.
// The read path is stateless and best effort: store failures degrade to empty
// results, data-shape problems to blank attributes.
type FlightService struct {
	tableRepo  repository.FlightTableRepository
	normalizer *utils.FlightNormalizer
	partitions *utils.PartitionKeyBuilder
	logger     logger.Logger
	metrics    *metrics.Metrics
}

// NewFlightService creates a new flight service
func NewFlightService(
	tableRepo repository.FlightTableRepository,
	normalizer *utils.FlightNormalizer,
	partitions *utils.PartitionKeyBuilder,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *FlightService {
	return &FlightService{
		tableRepo:  tableRepo,
		normalizer: normalizer,
		partitions: partitions,
		logger:     logger,
		metrics:    metrics,
	}
}

// ListFlights returns every stored row, normalized and sorted by derived time
func (s *FlightService) ListFlights(ctx context.Context, sortOrder string) []entity.Flight {
	s.metrics.FlightQueries.WithLabelValues("all").Inc()

	records, err := s.tableRepo.QueryAll(ctx)
	if err != nil {
		s.logger.Warn("Flight query failed, returning empty result", "error", err)
		return []entity.Flight{}
	}

	return s.normalizeAndSort(records, sortOrder)
}

// ListFlightsForLocation returns the rows of one location-day partition,
// normalized and sorted by derived time. daysAgo selects the calendar day in
// the location's timezone, 0 being today.
func (s *FlightService) ListFlightsForLocation(ctx context.Context, locationID string, daysAgo int, sortOrder string) []entity.Flight {
	s.metrics.FlightQueries.WithLabelValues("location").Inc()

	partitionKey := s.partitions.Build(ctx, locationID, daysAgo)
	records, err := s.tableRepo.QueryByPartition(ctx, partitionKey)
	if err != nil {
		s.logger.Warn("Partition query failed, returning empty result", "partitionKey", partitionKey, "error", err)
		return []entity.Flight{}
	}

	return s.normalizeAndSort(records, sortOrder)
}

// RawEntities returns the first max raw rows for diagnostics
func (s *FlightService) RawEntities(ctx context.Context, max int) []*entity.TableRecord {
	s.metrics.FlightQueries.WithLabelValues("raw").Inc()

	records, err := s.tableRepo.QueryRaw(ctx, max)
	if err != nil {
		s.logger.Warn("Raw entity query failed, returning empty result", "error", err)
		return []*entity.TableRecord{}
	}
	if records == nil {
		records = []*entity.TableRecord{}
	}
	return records
}

// normalizeAndSort projects raw rows onto the canonical shape and orders them
// by derived time. Rows with no derivable time sort after every timed row in
// either order.
func (s *FlightService) normalizeAndSort(records []*entity.TableRecord, sortOrder string) []entity.Flight {
	flights := make([]entity.Flight, 0, len(records))
	for _, record := range records {
		flights = append(flights, s.normalizer.Normalize(record))
	}

	descending := sortOrder == SortDescending
	sort.SliceStable(flights, func(i, j int) bool {
		ti, tj := flights[i].TimeAt, flights[j].TimeAt
		switch {
		case ti == nil && tj == nil:
			return false
		case ti == nil:
			return false
		case tj == nil:
			return true
		case descending:
			return ti.After(*tj)
		default:
			return ti.Before(*tj)
		}
	})

	return flights
}
