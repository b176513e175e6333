package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helios/fss/internal/domain"
	"github.com/helios/fss/internal/usecase"
)

// SnapshotRepository implements usecase.SnapshotRepository. The snapshot body
// is stored as one JSONB document: it is written once, read whole, and
// replayed whole, so relational decomposition buys nothing.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Create inserts a snapshot inside the given transaction. One snapshot per
// evaluation date; a rerun for the same date replaces the earlier result.
func (r *SnapshotRepository) Create(ctx context.Context, tx usecase.Transaction, snapshot *domain.Snapshot) error {
	pgxTx := tx.(*Tx).PgxTx()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO snapshots (id, as_of_date, payload, stale, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (as_of_date) DO UPDATE
		SET id = EXCLUDED.id,
		    payload = EXCLUDED.payload,
		    stale = EXCLUDED.stale,
		    created_at = EXCLUDED.created_at
	`

	_, err = pgxTx.Exec(ctx, query,
		snapshot.ID,
		snapshot.AsOfDate,
		payload,
		snapshot.Stale(),
		snapshot.CreatedAt,
	)

	return err
}

// GetByDate retrieves the snapshot for an evaluation date.
func (r *SnapshotRepository) GetByDate(ctx context.Context, asOf time.Time) (*domain.Snapshot, error) {
	query := `SELECT payload FROM snapshots WHERE as_of_date = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, domain.DateOnly(asOf)))
}

// GetLatest retrieves the most recently published snapshot.
func (r *SnapshotRepository) GetLatest(ctx context.Context) (*domain.Snapshot, error) {
	query := `SELECT payload FROM snapshots ORDER BY as_of_date DESC LIMIT 1`

	return r.scanOne(r.pool.QueryRow(ctx, query))
}

// ListDates returns evaluation dates with published snapshots, newest first.
func (r *SnapshotRepository) ListDates(ctx context.Context, limit, offset int) ([]time.Time, error) {
	query := `SELECT as_of_date FROM snapshots ORDER BY as_of_date DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, domain.DateOnly(d))
	}

	return dates, rows.Err()
}

func (r *SnapshotRepository) scanOne(row pgx.Row) (*domain.Snapshot, error) {
	var payload []byte
	err := row.Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}
