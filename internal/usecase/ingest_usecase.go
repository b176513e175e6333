package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
)

// ingestLockTTL bounds how long a crashed run can hold an account lock.
const ingestLockTTL = 15 * time.Minute

var errLockHeld = errors.New("ingestion lock held by another run")

// IngestUseCase fetches raw transactions from every connected source,
// normalizes them into canonical ledger entries and appends them to the
// ledger. Sources serve independent accounts and are ingested concurrently;
// everything downstream operates on the merged ledger.
type IngestUseCase struct {
	sources    []TransactionSource
	ledgerRepo LedgerRepository
	txManager  TransactionManager
	lock       IngestLock
	retrier    Retrier
	idGen      IDGenerator
}

// NewIngestUseCase creates a new IngestUseCase.
func NewIngestUseCase(
	sources []TransactionSource,
	ledgerRepo LedgerRepository,
	txManager TransactionManager,
	lock IngestLock,
	retrier Retrier,
	idGen IDGenerator,
) *IngestUseCase {
	return &IngestUseCase{
		sources:    sources,
		ledgerRepo: ledgerRepo,
		txManager:  txManager,
		lock:       lock,
		retrier:    retrier,
		idGen:      idGen,
	}
}

// IngestResult reports what one ingestion pass did.
type IngestResult struct {
	Ingested     int
	Duplicates   int
	Malformed    int
	StaleSources []string
}

// Run ingests all sources for the given run date. Source failures after
// retries do not fail the pass; the failed source is recorded so the
// snapshot can be labeled stale.
func (uc *IngestUseCase) Run(ctx context.Context, runDate time.Time) (*IngestResult, error) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result IngestResult
	)

	for _, src := range uc.sources {
		wg.Add(1)

		go func(src TransactionSource) {
			defer wg.Done()

			ingested, duplicates, malformed, err := uc.ingestSource(ctx, src, runDate)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				result.StaleSources = append(result.StaleSources, src.Name())
				return
			}

			result.Ingested += ingested
			result.Duplicates += duplicates
			result.Malformed += malformed
		}(src)
	}

	wg.Wait()

	sort.Strings(result.StaleSources)

	return &result, nil
}

func (uc *IngestUseCase) ingestSource(ctx context.Context, src TransactionSource, runDate time.Time) (ingested, duplicates, malformed int, err error) {
	acquired, err := uc.lock.Acquire(ctx, src.AccountID(), ingestLockTTL)
	if err != nil {
		return 0, 0, 0, &domain.IngestionError{Source: src.Name(), Err: err}
	}
	if !acquired {
		return 0, 0, 0, &domain.IngestionError{Source: src.Name(), Err: errLockHeld}
	}
	defer uc.lock.Release(ctx, src.AccountID())

	since, err := uc.ledgerRepo.LatestEntryDate(ctx, src.AccountID())
	if err != nil {
		return 0, 0, 0, &domain.IngestionError{Source: src.Name(), Err: err}
	}
	if since.IsZero() {
		since = domain.DateOnly(runDate).AddDate(-1, 0, 0)
	} else {
		// Overlap one day so entries posted after the previous fetch are
		// picked up; the natural-key constraint absorbs the duplicates.
		since = since.AddDate(0, 0, -1)
	}

	var records []domain.RawRecord
	err = uc.retrier.Retry(ctx, func() error {
		var fetchErr error
		records, fetchErr = src.FetchSince(ctx, since)
		return fetchErr
	})
	if err != nil {
		return 0, 0, 0, &domain.IngestionError{Source: src.Name(), Err: err}
	}

	var balance decimal.Decimal
	err = uc.retrier.Retry(ctx, func() error {
		var fetchErr error
		balance, fetchErr = src.FetchBalance(ctx)
		return fetchErr
	})
	if err != nil {
		return 0, 0, 0, &domain.IngestionError{Source: src.Name(), Err: err}
	}

	entries, malformed := uc.Normalize(src.AccountID(), src.Name(), records)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, 0, 0, &domain.IngestionError{Source: src.Name(), Err: err}
	}
	defer tx.Rollback(ctx)

	inserted, err := uc.ledgerRepo.AppendBatch(ctx, tx, entries)
	if err != nil {
		return 0, 0, 0, &domain.IngestionError{Source: src.Name(), Err: err}
	}

	if err := uc.ledgerRepo.SaveBalance(ctx, tx, src.AccountID(), balance, time.Now().UTC()); err != nil {
		return 0, 0, 0, &domain.IngestionError{Source: src.Name(), Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, 0, &domain.IngestionError{Source: src.Name(), Err: err}
	}

	return inserted, len(entries) - inserted, malformed, nil
}

// Normalize converts raw source records into canonical ledger entries.
// Records without a parseable amount or date are skipped and counted.
// Duplicates within the batch (same natural key) are merged, keeping the
// most complete description. Output is deterministically ordered.
func (uc *IngestUseCase) Normalize(accountID, sourceName string, records []domain.RawRecord) ([]*domain.LedgerEntry, int) {
	byKey := make(map[string]*domain.LedgerEntry)
	malformed := 0

	for _, rec := range records {
		entry, err := normalizeRecord(accountID, sourceName, rec)
		if err != nil {
			malformed++
			continue
		}

		entry.ID = uc.idGen.Generate()

		key := entry.NaturalKey()
		if existing, ok := byKey[key]; ok {
			if len(entry.RawDescription) > len(existing.RawDescription) {
				existing.RawDescription = entry.RawDescription
			}
			continue
		}

		byKey[key] = entry
	}

	entries := make([]*domain.LedgerEntry, 0, len(byKey))
	for _, e := range byKey {
		entries = append(entries, e)
	}

	domain.SortEntries(entries)

	return entries, malformed
}

func normalizeRecord(accountID, sourceName string, rec domain.RawRecord) (*domain.LedgerEntry, error) {
	occurredAt, err := parseRecordDate(rec.OccurredAt)
	if err != nil {
		return nil, &domain.MalformedRecordError{SourceUID: rec.SourceUID, Field: "occurred_at", Reason: err.Error()}
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(rec.Amount))
	if err != nil {
		return nil, &domain.MalformedRecordError{SourceUID: rec.SourceUID, Field: "amount", Reason: err.Error()}
	}

	// Single signed convention: outflows negative. Sources that report
	// unsigned amounts carry a direction tag instead.
	switch strings.ToUpper(strings.TrimSpace(rec.Direction)) {
	case "OUT":
		amount = amount.Abs().Neg()
	case "IN":
		amount = amount.Abs()
	}

	description := strings.TrimSpace(rec.Counterparty)
	if rec.Reference != "" {
		description = strings.TrimSpace(description + " " + rec.Reference)
	}

	source := rec.Source
	if source == "" {
		source = sourceName
	}

	return &domain.LedgerEntry{
		AccountID:      accountID,
		OccurredAt:     domain.DateOnly(occurredAt),
		Payee:          domain.NormalizePayee(rec.Counterparty),
		Amount:         amount,
		Source:         source,
		RawDescription: description,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// recordDateFormats covers the timestamp shapes connected sources emit.
var recordDateFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseRecordDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	var lastErr error
	for _, layout := range recordDateFormats {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}
