package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"flightspotter-service/internal/domain/entity"
	"flightspotter-service/internal/domain/repository"
	"flightspotter-service/pkg/logger"
	"flightspotter-service/pkg/metrics"
)

// Sentinel registration value some producers emit for unidentified airframes
const unknownRegistration = "-unknown-"

// Required column names of the bulk aircraft dataset, matched case-sensitively
// against the header line.
const (
	colIcao24       = "icao24"
	colTypeCode     = "typecode"
	colOperatorIcao = "operatorIcao"
	colRegistration = "registration"
)

// SyncResult reports the outcome of one reconciliation run. Counters are
// diagnostic: under concurrent duplicate-key rows they are best effort.
type SyncResult struct {
	Inserted  int64
	Merged    int64
	Skipped   int64
	Conflicts int64
}

// AircraftSyncer reconciles the bulk aircraft metadata dataset into the
// aircraft master store. Merges are fill-if-empty only, so a run never
// overwrites populated attributes and re-running the same dataset is a no-op.
type AircraftSyncer struct {
	aircraftRepo repository.AircraftRepository
	logger       logger.Logger
	metrics      *metrics.Metrics
	workers      int
}

// NewAircraftSyncer creates a new aircraft syncer
func NewAircraftSyncer(aircraftRepo repository.AircraftRepository, logger logger.Logger, metrics *metrics.Metrics, workers int) *AircraftSyncer {
	if workers < 1 {
		workers = 1
	}
	return &AircraftSyncer{
		aircraftRepo: aircraftRepo,
		logger:       logger,
		metrics:      metrics,
		workers:      workers,
	}
}

// columnIndexes holds the header-resolved positions of the required columns
type columnIndexes struct {
	icao24       int
	typeCode     int
	operatorIcao int
	registration int
}

func (c columnIndexes) max() int {
	m := c.icao24
	for _, idx := range []int{c.typeCode, c.operatorIcao, c.registration} {
		if idx > m {
			m = idx
		}
	}
	return m
}

// Sync reads the delimited dataset and reconciles every row against the
// store. A missing required column in the header is fatal for the whole run;
// malformed or incomplete rows are skipped silently. Cancellation stops
// feeding new rows while in-flight rows finish.
func (s *AircraftSyncer) Sync(ctx context.Context, dataset io.Reader) (SyncResult, error) {
	start := time.Now()
	scanner := bufio.NewScanner(dataset)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return SyncResult{}, fmt.Errorf("read dataset header: %w", err)
		}
		return SyncResult{}, errors.New("dataset is empty")
	}

	cols, err := resolveColumns(scanner.Text())
	if err != nil {
		return SyncResult{}, err
	}

	// Store unavailability is non-transient misconfiguration: the first such
	// error aborts the run, while row-level data problems and conflicts stay
	// per-row concerns.
	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var (
		result SyncResult
		errMu  sync.Mutex
		runErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if runErr == nil {
			runErr = err
		}
		errMu.Unlock()
		cancelRun()
	}

	lines := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for line := range lines {
				if err := s.processRow(ctx, line, cols, &result); err != nil {
					fail(err)
				}
			}
		}()
	}

	// Feed rows until the dataset ends or the host cancels
	var feedErr error
feed:
	for scanner.Scan() {
		if ctx.Err() != nil {
			feedErr = ctx.Err()
			break feed
		}
		select {
		case <-ctx.Done():
			feedErr = ctx.Err()
			break feed
		case lines <- scanner.Text():
		}
	}
	close(lines)
	wg.Wait()

	if runErr != nil {
		return result, fmt.Errorf("reconciliation aborted: %w", runErr)
	}
	if feedErr == nil {
		feedErr = scanner.Err()
	}

	s.metrics.SyncDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("Sync complete",
		"inserted", result.Inserted,
		"merged", result.Merged,
		"skipped", result.Skipped,
		"conflicts", result.Conflicts,
		"duration", time.Since(start).String(),
	)

	return result, feedErr
}

// resolveColumns locates the required columns in the header line. The header
// goes through the same single-quote strip as the data lines.
func resolveColumns(header string) (columnIndexes, error) {
	fields := splitRow(header)

	cols := columnIndexes{
		icao24:       indexOf(fields, colIcao24),
		typeCode:     indexOf(fields, colTypeCode),
		operatorIcao: indexOf(fields, colOperatorIcao),
		registration: indexOf(fields, colRegistration),
	}

	for name, idx := range map[string]int{
		colIcao24:       cols.icao24,
		colTypeCode:     cols.typeCode,
		colOperatorIcao: cols.operatorIcao,
		colRegistration: cols.registration,
	} {
		if idx < 0 {
			return columnIndexes{}, fmt.Errorf("dataset header is missing required column %q", name)
		}
	}

	return cols, nil
}

// splitRow strips every literal single-quote character, then splits on the
// comma delimiter. The producer wraps fields in single quotes without
// escaping embedded ones, so a plain strip is the defined pre-pass.
func splitRow(line string) []string {
	return strings.Split(strings.ReplaceAll(line, "'", ""), ",")
}

func indexOf(fields []string, name string) int {
	for i, f := range fields {
		if f == name {
			return i
		}
	}
	return -1
}

// processRow validates and reconciles a single dataset row. Row-level data
// problems are skipped and a concurrency conflict is retried once against
// fresh state; only a store failure is returned, which aborts the run.
func (s *AircraftSyncer) processRow(ctx context.Context, line string, cols columnIndexes, result *SyncResult) error {
	s.metrics.RowsProcessed.Inc()

	fields := splitRow(line)
	if len(fields) <= cols.max() {
		s.skip(result)
		return nil
	}

	icao24 := strings.TrimSpace(fields[cols.icao24])
	typeCode := strings.TrimSpace(fields[cols.typeCode])
	operatorIcao := strings.TrimSpace(fields[cols.operatorIcao])
	reg := strings.TrimSpace(fields[cols.registration])

	if icao24 == "" || typeCode == "" || reg == "" || strings.EqualFold(reg, unknownRegistration) {
		s.skip(result)
		return nil
	}

	rowKey := strings.ToUpper(icao24)
	incoming := &entity.Aircraft{
		PartitionKey:     entity.AircraftPartition,
		RowKey:           rowKey,
		IcaoAircraftType: typeCode,
		IcaoOperator:     operatorIcao,
		Registration:     reg,
	}

	if err := s.reconcileRecord(ctx, incoming, result, true); err != nil {
		if !errors.Is(err, repository.ErrConflict) {
			return err
		}
		s.logger.Warn("Row reconciliation gave up after conflict retry", "rowKey", rowKey, "error", err)
		s.skip(result)
	}
	return nil
}

// reconcileRecord performs one lookup-then-insert-or-merge pass. retry
// permits a single recovery attempt when a concurrent writer got there
// first.
func (s *AircraftSyncer) reconcileRecord(ctx context.Context, incoming *entity.Aircraft, result *SyncResult, retry bool) error {
	existing, err := s.aircraftRepo.Get(ctx, incoming.PartitionKey, incoming.RowKey)

	if errors.Is(err, repository.ErrNotFound) {
		insertErr := s.aircraftRepo.Insert(ctx, incoming)
		if insertErr == nil {
			atomic.AddInt64(&result.Inserted, 1)
			s.metrics.AircraftInserted.Inc()
			return nil
		}
		if errors.Is(insertErr, repository.ErrConflict) {
			return s.retryOrGiveUp(ctx, incoming, result, retry, insertErr)
		}
		return insertErr
	}
	if err != nil {
		return err
	}

	if !fillEmptyAttributes(existing, incoming) {
		return nil
	}

	updateErr := s.aircraftRepo.UpdateConditional(ctx, existing, existing.Version)
	if updateErr == nil {
		atomic.AddInt64(&result.Merged, 1)
		s.metrics.AircraftMerged.Inc()
		return nil
	}
	if errors.Is(updateErr, repository.ErrConflict) {
		return s.retryOrGiveUp(ctx, incoming, result, retry, updateErr)
	}
	return updateErr
}

func (s *AircraftSyncer) retryOrGiveUp(ctx context.Context, incoming *entity.Aircraft, result *SyncResult, retry bool, cause error) error {
	atomic.AddInt64(&result.Conflicts, 1)
	s.metrics.MergeConflicts.Inc()
	if !retry {
		return cause
	}
	return s.reconcileRecord(ctx, incoming, result, false)
}

// fillEmptyAttributes copies incoming values into blank attributes only.
// Populated attributes are never overwritten. Reports whether anything
// changed.
func fillEmptyAttributes(existing, incoming *entity.Aircraft) bool {
	changed := false
	if strings.TrimSpace(existing.IcaoAircraftType) == "" && incoming.IcaoAircraftType != "" {
		existing.IcaoAircraftType = incoming.IcaoAircraftType
		changed = true
	}
	if strings.TrimSpace(existing.IcaoOperator) == "" && incoming.IcaoOperator != "" {
		existing.IcaoOperator = incoming.IcaoOperator
		changed = true
	}
	if strings.TrimSpace(existing.Registration) == "" && incoming.Registration != "" {
		existing.Registration = incoming.Registration
		changed = true
	}
	return changed
}

func (s *AircraftSyncer) skip(result *SyncResult) {
	atomic.AddInt64(&result.Skipped, 1)
	s.metrics.RowsSkipped.Inc()
}
