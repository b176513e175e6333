package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
	"github.com/helios/fss/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// AppendBatch inserts entries inside the given transaction. The unique
// constraint on (account_id, occurred_at, amount, payee) makes re-ingestion
// idempotent: a conflicting row is skipped, except that a duplicate carrying
// a fuller raw description upgrades the stored one.
func (r *LedgerRepository) AppendBatch(ctx context.Context, tx usecase.Transaction, entries []*domain.LedgerEntry) (int, error) {
	pgxTx := tx.(*Tx).PgxTx()

	insertQuery := `
		INSERT INTO ledger_entries (
			id, account_id, occurred_at, payee, amount,
			source, raw_description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (account_id, occurred_at, amount, payee) DO NOTHING
	`

	upgradeQuery := `
		UPDATE ledger_entries
		SET raw_description = $5
		WHERE account_id = $1 AND occurred_at = $2 AND amount = $3 AND payee = $4
		  AND length($5) > length(raw_description)
	`

	inserted := 0
	for _, e := range entries {
		tag, err := pgxTx.Exec(ctx, insertQuery,
			e.ID,
			e.AccountID,
			e.OccurredAt,
			e.Payee,
			e.Amount,
			e.Source,
			e.RawDescription,
			e.CreatedAt,
		)
		if err != nil {
			return inserted, err
		}

		if tag.RowsAffected() == 0 {
			if _, err := pgxTx.Exec(ctx, upgradeQuery,
				e.AccountID, e.OccurredAt, e.Amount, e.Payee, e.RawDescription,
			); err != nil {
				return inserted, err
			}
			continue
		}

		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// ListSince retrieves all entries on or after the given date, oldest first.
func (r *LedgerRepository) ListSince(ctx context.Context, since time.Time) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT id, account_id, occurred_at, payee, amount,
		       source, raw_description, created_at
		FROM ledger_entries
		WHERE occurred_at >= $1
		ORDER BY occurred_at, payee, amount
	`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry

		err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.OccurredAt,
			&e.Payee,
			&e.Amount,
			&e.Source,
			&e.RawDescription,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		e.OccurredAt = domain.DateOnly(e.OccurredAt)
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// LatestEntryDate returns the most recent occurrence date for an account, or
// the zero time when the account has no history yet.
func (r *LedgerRepository) LatestEntryDate(ctx context.Context, accountID string) (time.Time, error) {
	query := `SELECT occurred_at FROM ledger_entries WHERE account_id = $1 ORDER BY occurred_at DESC LIMIT 1`

	var latest time.Time
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&latest)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}

	return domain.DateOnly(latest), nil
}

// EarliestEntryDate returns the oldest occurrence date across all accounts.
func (r *LedgerRepository) EarliestEntryDate(ctx context.Context) (time.Time, error) {
	query := `SELECT occurred_at FROM ledger_entries ORDER BY occurred_at LIMIT 1`

	var earliest time.Time
	err := r.pool.QueryRow(ctx, query).Scan(&earliest)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}

	return domain.DateOnly(earliest), nil
}

// SaveBalance upserts the reported balance for an account.
func (r *LedgerRepository) SaveBalance(ctx context.Context, tx usecase.Transaction, accountID string, balance decimal.Decimal, observedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO account_balances (account_id, balance, observed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE
		SET balance = EXCLUDED.balance, observed_at = EXCLUDED.observed_at
	`

	_, err := pgxTx.Exec(ctx, query, accountID, balance, observedAt)

	return err
}

// TotalBalance sums the last reported balance of every account.
func (r *LedgerRepository) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(balance), 0) FROM account_balances`

	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
