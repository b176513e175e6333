package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
)

// TransactionSource is one connected bank feed. Each source serves exactly
// one account; sources for different accounts may be ingested concurrently.
type TransactionSource interface {
	Name() string
	AccountID() string
	FetchSince(ctx context.Context, since time.Time) ([]domain.RawRecord, error)
	FetchBalance(ctx context.Context) (decimal.Decimal, error)
}

// LedgerRepository defines data access for the append-only ledger.
type LedgerRepository interface {
	// AppendBatch inserts entries, skipping natural-key duplicates.
	// Returns the number of rows actually inserted.
	AppendBatch(ctx context.Context, tx Transaction, entries []*domain.LedgerEntry) (int, error)
	ListSince(ctx context.Context, since time.Time) ([]*domain.LedgerEntry, error)
	LatestEntryDate(ctx context.Context, accountID string) (time.Time, error)
	EarliestEntryDate(ctx context.Context) (time.Time, error)
	SaveBalance(ctx context.Context, tx Transaction, accountID string, balance decimal.Decimal, observedAt time.Time) error
	TotalBalance(ctx context.Context) (decimal.Decimal, error)
}

// SnapshotRepository defines data access for run snapshots.
type SnapshotRepository interface {
	Create(ctx context.Context, tx Transaction, snapshot *domain.Snapshot) error
	GetByDate(ctx context.Context, asOf time.Time) (*domain.Snapshot, error)
	GetLatest(ctx context.Context) (*domain.Snapshot, error)
	ListDates(ctx context.Context, limit, offset int) ([]time.Time, error)
}

// GoalRepository defines data access for savings goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.SavingsGoal) error
	Update(ctx context.Context, goal *domain.SavingsGoal) error
	GetByID(ctx context.Context, id string) (*domain.SavingsGoal, error)
	List(ctx context.Context) ([]*domain.SavingsGoal, error)
	SaveSuggestions(ctx context.Context, tx Transaction, asOf time.Time, suggestions []domain.GoalSuggestion) error
}

// CommitmentRepository defines data access for declared fixed commitments.
type CommitmentRepository interface {
	Create(ctx context.Context, commitment *domain.Commitment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Commitment, error)
	List(ctx context.Context) ([]*domain.Commitment, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations for snapshots and what-if replays.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore deduplicates retried write requests on the HTTP surface.
type IdempotencyStore interface {
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// IngestLock serializes ingestion per account so two concurrent runs cannot
// double-ingest the same source.
type IngestLock interface {
	Acquire(ctx context.Context, accountID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, accountID string) error
}

// Retrier retries an operation with backoff on transient failure.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
