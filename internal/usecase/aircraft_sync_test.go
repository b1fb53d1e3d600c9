package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightspotter-service/internal/domain/entity"
	"flightspotter-service/internal/domain/repository"
	"flightspotter-service/pkg/logger"
	"flightspotter-service/pkg/metrics"
)

// Shared across the package's tests: promauto registers globally, so the
// metric set must only be built once per test binary.
var testMetrics = metrics.NewMetrics("usecase_test")

const syncHeader = "'icao24','registration','manufacturericao','typecode','operatorIcao'"

// fakeAircraftRepo is an in-memory AircraftRepository with version tokens
type fakeAircraftRepo struct {
	mu      sync.Mutex
	records map[string]*entity.Aircraft
	inserts int
	updates int

	// conflictNextUpdate makes the next UpdateConditional fail once while a
	// simulated concurrent writer fills the registration
	conflictNextUpdate bool

	// getErr simulates an unavailable store
	getErr error
}

func newFakeAircraftRepo() *fakeAircraftRepo {
	return &fakeAircraftRepo{records: make(map[string]*entity.Aircraft)}
}

func (f *fakeAircraftRepo) key(partitionKey, rowKey string) string {
	return partitionKey + "/" + rowKey
}

func (f *fakeAircraftRepo) Get(_ context.Context, partitionKey, rowKey string) (*entity.Aircraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	stored, ok := f.records[f.key(partitionKey, rowKey)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeAircraftRepo) Insert(_ context.Context, aircraft *entity.Aircraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(aircraft.PartitionKey, aircraft.RowKey)
	if _, ok := f.records[k]; ok {
		return repository.ErrConflict
	}
	copied := *aircraft
	f.records[k] = &copied
	f.inserts++
	return nil
}

func (f *fakeAircraftRepo) UpdateConditional(_ context.Context, aircraft *entity.Aircraft, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(aircraft.PartitionKey, aircraft.RowKey)
	stored, ok := f.records[k]
	if !ok || stored.Version != version {
		return repository.ErrConflict
	}
	if f.conflictNextUpdate {
		f.conflictNextUpdate = false
		stored.Registration = "CONCURRENT"
		stored.Version++
		return repository.ErrConflict
	}
	copied := *aircraft
	copied.Version = version + 1
	f.records[k] = &copied
	f.updates++
	return nil
}

func (f *fakeAircraftRepo) get(t *testing.T, rowKey string) *entity.Aircraft {
	t.Helper()
	stored, ok := f.records[f.key(entity.AircraftPartition, rowKey)]
	require.True(t, ok, "expected record %s", rowKey)
	return stored
}

func newTestSyncer(repo repository.AircraftRepository, workers int) *AircraftSyncer {
	return NewAircraftSyncer(repo, logger.NewNopLogger(), testMetrics, workers)
}

func runSync(t *testing.T, syncer *AircraftSyncer, lines ...string) SyncResult {
	t.Helper()
	result, err := syncer.Sync(context.Background(), strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	return result
}

func TestSyncInsertsNewAircraft(t *testing.T) {
	repo := newFakeAircraftRepo()
	syncer := newTestSyncer(repo, 4)

	result := runSync(t, syncer,
		syncHeader,
		"'abc123','N123AB','BOEING','B738','SWA'",
		"'def456','G-ABCD','AIRBUS','A320','BAW'",
	)

	assert.Equal(t, int64(2), result.Inserted)
	assert.Equal(t, int64(0), result.Merged)

	stored := repo.get(t, "ABC123")
	assert.Equal(t, entity.AircraftPartition, stored.PartitionKey)
	assert.Equal(t, "B738", stored.IcaoAircraftType)
	assert.Equal(t, "SWA", stored.IcaoOperator)
	assert.Equal(t, "N123AB", stored.Registration)
}

func TestSyncFillsOnlyBlankAttributes(t *testing.T) {
	repo := newFakeAircraftRepo()
	require.NoError(t, repo.Insert(context.Background(), &entity.Aircraft{
		PartitionKey:     entity.AircraftPartition,
		RowKey:           "ABC123",
		IcaoAircraftType: "B738",
	}))

	syncer := newTestSyncer(repo, 1)
	result := runSync(t, syncer,
		syncHeader,
		"'abc123','N1','AIRBUS','A320','DLH'",
	)

	assert.Equal(t, int64(1), result.Merged)

	stored := repo.get(t, "ABC123")
	assert.Equal(t, "B738", stored.IcaoAircraftType, "populated attribute must never be overwritten")
	assert.Equal(t, "N1", stored.Registration)
	assert.Equal(t, "DLH", stored.IcaoOperator)
}

func TestSyncIsIdempotent(t *testing.T) {
	repo := newFakeAircraftRepo()
	syncer := newTestSyncer(repo, 4)

	lines := []string{
		syncHeader,
		"'abc123','N123AB','BOEING','B738','SWA'",
		"'def456','G-ABCD','AIRBUS','A320','BAW'",
	}
	first := runSync(t, syncer, lines...)
	assert.Equal(t, int64(2), first.Inserted)

	second := runSync(t, syncer, lines...)
	assert.Equal(t, int64(0), second.Inserted)
	assert.Equal(t, int64(0), second.Merged)
	assert.Equal(t, 2, repo.inserts)
	assert.Equal(t, 0, repo.updates)
}

func TestSyncSkipsRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"sentinel registration", "'abc123','-unknown-','BOEING','B738','SWA'"},
		{"sentinel registration uppercase", "'abc123','-UNKNOWN-','BOEING','B738','SWA'"},
		{"blank icao24", "'','N123AB','BOEING','B738','SWA'"},
		{"blank type", "'abc123','N123AB','BOEING','','SWA'"},
		{"blank registration", "'abc123','','BOEING','B738','SWA'"},
		{"short row", "'abc123','N123AB'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeAircraftRepo()
			syncer := newTestSyncer(repo, 1)

			result := runSync(t, syncer, syncHeader, tt.row)

			assert.Equal(t, int64(1), result.Skipped)
			assert.Equal(t, int64(0), result.Inserted)
			assert.Equal(t, int64(0), result.Merged)
			assert.Empty(t, repo.records)
		})
	}
}

func TestSyncMalformedRowDoesNotAbortRun(t *testing.T) {
	repo := newFakeAircraftRepo()
	syncer := newTestSyncer(repo, 1)

	result := runSync(t, syncer,
		syncHeader,
		"'tooshort'",
		"'abc123','N123AB','BOEING','B738','SWA'",
	)

	assert.Equal(t, int64(1), result.Skipped)
	assert.Equal(t, int64(1), result.Inserted)
	repo.get(t, "ABC123")
}

func TestSyncMissingRequiredColumnIsFatal(t *testing.T) {
	repo := newFakeAircraftRepo()
	syncer := newTestSyncer(repo, 1)

	_, err := syncer.Sync(context.Background(), strings.NewReader(
		"'icao24','registration','manufacturericao','operatorIcao'\n"+
			"'abc123','N123AB','BOEING','SWA'",
	))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "typecode")
	assert.Empty(t, repo.records)
}

func TestSyncEmptyDataset(t *testing.T) {
	syncer := newTestSyncer(newFakeAircraftRepo(), 1)
	_, err := syncer.Sync(context.Background(), strings.NewReader(""))
	require.Error(t, err)
}

func TestSyncRetriesOnceOnConflict(t *testing.T) {
	repo := newFakeAircraftRepo()
	require.NoError(t, repo.Insert(context.Background(), &entity.Aircraft{
		PartitionKey: entity.AircraftPartition,
		RowKey:       "ABC123",
	}))
	repo.conflictNextUpdate = true

	syncer := newTestSyncer(repo, 1)
	result := runSync(t, syncer,
		syncHeader,
		"'abc123','N123AB','BOEING','B738','SWA'",
	)

	// First update hit a concurrent writer; the retry merged against fresh
	// state and must not have clobbered the concurrent registration.
	assert.Equal(t, int64(1), result.Conflicts)
	assert.Equal(t, int64(1), result.Merged)

	stored := repo.get(t, "ABC123")
	assert.Equal(t, "CONCURRENT", stored.Registration)
	assert.Equal(t, "B738", stored.IcaoAircraftType)
}

func TestSyncStoreFailureAbortsRun(t *testing.T) {
	repo := newFakeAircraftRepo()
	storeErr := errors.New("store unavailable")
	repo.getErr = storeErr

	syncer := newTestSyncer(repo, 2)
	_, err := syncer.Sync(context.Background(), strings.NewReader(
		syncHeader+"\n"+
			"'abc123','N123AB','BOEING','B738','SWA'\n"+
			"'def456','G-ABCD','AIRBUS','A320','BAW'",
	))

	require.ErrorIs(t, err, storeErr)
}

func TestSyncCancelledContextStartsNoRows(t *testing.T) {
	repo := newFakeAircraftRepo()
	syncer := newTestSyncer(repo, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := syncer.Sync(ctx, strings.NewReader(
		syncHeader+"\n"+
			"'abc123','N123AB','BOEING','B738','SWA'",
	))

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), result.Inserted)
	assert.Empty(t, repo.records)
}
