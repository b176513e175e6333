package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helios/fss/internal/domain"
)

// CommitmentRepository implements usecase.CommitmentRepository.
type CommitmentRepository struct {
	pool *pgxpool.Pool
}

// NewCommitmentRepository creates a new CommitmentRepository.
func NewCommitmentRepository(pool *pgxpool.Pool) *CommitmentRepository {
	return &CommitmentRepository{pool: pool}
}

// Create inserts a new commitment.
func (r *CommitmentRepository) Create(ctx context.Context, commitment *domain.Commitment) error {
	query := `
		INSERT INTO commitments (
			id, name, amount, cadence_kind, cadence_day_of_month, cadence_weekday,
			cadence_interval_days, cadence_anchor, one_off, due_date, priority,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		commitment.ID,
		commitment.Name,
		commitment.Amount,
		string(commitment.Cadence.Kind),
		commitment.Cadence.DayOfMonth,
		int(commitment.Cadence.Weekday),
		commitment.Cadence.IntervalDays,
		nullableDate(commitment.Cadence.Anchor),
		commitment.OneOff,
		nullableDate(commitment.DueDate),
		commitment.Priority,
		commitment.CreatedAt,
		commitment.UpdatedAt,
	)

	return err
}

// Delete removes a commitment.
func (r *CommitmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM commitments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommitmentNotFound
	}

	return nil
}

// GetByID retrieves a commitment by ID.
func (r *CommitmentRepository) GetByID(ctx context.Context, id string) (*domain.Commitment, error) {
	query := commitmentSelect + ` WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)

	c, err := scanCommitment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCommitmentNotFound
	}
	if err != nil {
		return nil, err
	}

	return c, nil
}

// List retrieves all commitments, oldest first.
func (r *CommitmentRepository) List(ctx context.Context) ([]*domain.Commitment, error) {
	query := commitmentSelect + ` ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commitments []*domain.Commitment
	for rows.Next() {
		c, err := scanCommitment(rows)
		if err != nil {
			return nil, err
		}
		commitments = append(commitments, c)
	}

	return commitments, rows.Err()
}

const commitmentSelect = `
	SELECT id, name, amount, cadence_kind, cadence_day_of_month, cadence_weekday,
	       cadence_interval_days, cadence_anchor, one_off, due_date, priority,
	       created_at, updated_at
	FROM commitments`

func scanCommitment(row pgx.Row) (*domain.Commitment, error) {
	var (
		c       domain.Commitment
		kind    string
		weekday int
		anchor  *time.Time
		dueDate *time.Time
	)

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Amount,
		&kind,
		&c.Cadence.DayOfMonth,
		&weekday,
		&c.Cadence.IntervalDays,
		&anchor,
		&c.OneOff,
		&dueDate,
		&c.Priority,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Cadence.Kind = domain.CadenceKind(kind)
	c.Cadence.Weekday = time.Weekday(weekday)
	if anchor != nil {
		c.Cadence.Anchor = domain.DateOnly(*anchor)
	}
	if dueDate != nil {
		c.DueDate = domain.DateOnly(*dueDate)
	}

	return &c, nil
}

// nullableDate maps the zero time onto NULL.
func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	d := domain.DateOnly(t)
	return &d
}
