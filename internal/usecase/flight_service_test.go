package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightspotter-service/internal/domain/entity"
	"flightspotter-service/internal/domain/repository"
	"flightspotter-service/pkg/logger"
	"flightspotter-service/pkg/utils"
)

// fakeFlightTableRepo is an in-memory FlightTableRepository
type fakeFlightTableRepo struct {
	records       []*entity.TableRecord
	err           error
	lastPartition string
}

func (f *fakeFlightTableRepo) QueryAll(_ context.Context) ([]*entity.TableRecord, error) {
	return f.records, f.err
}

func (f *fakeFlightTableRepo) QueryByPartition(_ context.Context, partitionKey string) ([]*entity.TableRecord, error) {
	f.lastPartition = partitionKey
	if f.err != nil {
		return nil, f.err
	}
	var out []*entity.TableRecord
	for _, r := range f.records {
		if r.PartitionKey == partitionKey {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFlightTableRepo) QueryRaw(_ context.Context, max int) ([]*entity.TableRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if max > len(f.records) {
		max = len(f.records)
	}
	return f.records[:max], nil
}

type staticLocationRepo struct {
	tz string
}

func (s *staticLocationRepo) GetByLocationID(_ context.Context, locationID string) (*entity.Location, error) {
	if s.tz == "" {
		return nil, repository.ErrNotFound
	}
	return &entity.Location{LocationID: locationID, TzName: s.tz}, nil
}

func timedRecord(partition, rowKey, timeValue string) *entity.TableRecord {
	props := map[string]string{}
	if timeValue != "" {
		props["Time"] = timeValue
	}
	return &entity.TableRecord{PartitionKey: partition, RowKey: rowKey, Properties: props}
}

func newTestFlightService(tableRepo repository.FlightTableRepository, now time.Time) *FlightService {
	log := logger.NewNopLogger()
	clock := clockwork.NewFakeClockAt(now)
	normalizer := utils.NewFlightNormalizer(utils.NewPrefixResolver(), clock)
	partitions := utils.NewPartitionKeyBuilder(&staticLocationRepo{tz: "UTC"}, clock, log)
	return NewFlightService(tableRepo, normalizer, partitions, log, testMetrics)
}

func TestListFlightsSorting(t *testing.T) {
	now := time.Date(2025, 11, 28, 0, 30, 0, 0, time.UTC)
	repo := &fakeFlightTableRepo{records: []*entity.TableRecord{
		timedRecord("p1", "A", "10:00:00"),
		timedRecord("p1", "B", ""),
		timedRecord("p1", "C", "09:00:00"),
	}}
	svc := newTestFlightService(repo, now)

	t.Run("ascending puts timeless rows last", func(t *testing.T) {
		flights := svc.ListFlights(context.Background(), SortAscending)
		require.Len(t, flights, 3)
		assert.Equal(t, []string{"C", "A", "B"}, rowKeys(flights))
	})

	t.Run("descending puts timeless rows last", func(t *testing.T) {
		flights := svc.ListFlights(context.Background(), SortDescending)
		require.Len(t, flights, 3)
		assert.Equal(t, []string{"A", "C", "B"}, rowKeys(flights))
	})
}

func TestListFlightsStoreFailureDegrades(t *testing.T) {
	repo := &fakeFlightTableRepo{err: errors.New("store unavailable")}
	svc := newTestFlightService(repo, time.Now())

	flights := svc.ListFlights(context.Background(), SortAscending)
	assert.NotNil(t, flights)
	assert.Empty(t, flights)
}

func TestListFlightsForLocation(t *testing.T) {
	now := time.Date(2025, 11, 28, 0, 30, 0, 0, time.UTC)
	repo := &fakeFlightTableRepo{records: []*entity.TableRecord{
		timedRecord("166244_2025_332", "TODAY", "10:00:00"),
		timedRecord("166244_2025_331", "YESTERDAY", "11:00:00"),
	}}
	svc := newTestFlightService(repo, now)

	flights := svc.ListFlightsForLocation(context.Background(), "166244", 0, SortAscending)
	require.Len(t, flights, 1)
	assert.Equal(t, "TODAY", flights[0].RowKey)
	assert.Equal(t, "166244_2025_332", repo.lastPartition)

	flights = svc.ListFlightsForLocation(context.Background(), "166244", 1, SortAscending)
	require.Len(t, flights, 1)
	assert.Equal(t, "YESTERDAY", flights[0].RowKey)
	assert.Equal(t, "166244_2025_331", repo.lastPartition)
}

func TestRawEntities(t *testing.T) {
	repo := &fakeFlightTableRepo{records: []*entity.TableRecord{
		timedRecord("p1", "A", "10:00:00"),
		timedRecord("p1", "B", ""),
		timedRecord("p1", "C", "09:00:00"),
	}}
	svc := newTestFlightService(repo, time.Now())

	entities := svc.RawEntities(context.Background(), 2)
	require.Len(t, entities, 2)
	assert.Equal(t, "A", entities[0].RowKey)

	t.Run("store failure degrades to empty", func(t *testing.T) {
		failing := &fakeFlightTableRepo{err: errors.New("store unavailable")}
		svc := newTestFlightService(failing, time.Now())
		assert.Empty(t, svc.RawEntities(context.Background(), 5))
	})
}

func rowKeys(flights []entity.Flight) []string {
	keys := make([]string, 0, len(flights))
	for _, f := range flights {
		keys = append(keys, f.RowKey)
	}
	return keys
}
