package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helios/fss/internal/domain"
	"github.com/helios/fss/internal/usecase"
)

// GoalRepository implements usecase.GoalRepository.
type GoalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(pool *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{pool: pool}
}

// Create inserts a new savings goal.
func (r *GoalRepository) Create(ctx context.Context, goal *domain.SavingsGoal) error {
	query := `
		INSERT INTO savings_goals (
			id, name, target_amount, saved_so_far, deadline, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		goal.ID,
		goal.Name,
		goal.TargetAmount,
		goal.SavedSoFar,
		goal.Deadline,
		goal.CreatedAt,
		goal.UpdatedAt,
	)

	return err
}

// Update rewrites a goal's target, progress and deadline.
func (r *GoalRepository) Update(ctx context.Context, goal *domain.SavingsGoal) error {
	query := `
		UPDATE savings_goals
		SET name = $2, target_amount = $3, saved_so_far = $4, deadline = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		goal.ID,
		goal.Name,
		goal.TargetAmount,
		goal.SavedSoFar,
		goal.Deadline,
		goal.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}

	return nil
}

// GetByID retrieves a goal by ID.
func (r *GoalRepository) GetByID(ctx context.Context, id string) (*domain.SavingsGoal, error) {
	query := `
		SELECT id, name, target_amount, saved_so_far, deadline, created_at, updated_at
		FROM savings_goals
		WHERE id = $1
	`

	var g domain.SavingsGoal
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&g.ID,
		&g.Name,
		&g.TargetAmount,
		&g.SavedSoFar,
		&g.Deadline,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// List retrieves all goals, oldest first.
func (r *GoalRepository) List(ctx context.Context) ([]*domain.SavingsGoal, error) {
	query := `
		SELECT id, name, target_amount, saved_so_far, deadline, created_at, updated_at
		FROM savings_goals
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*domain.SavingsGoal
	for rows.Next() {
		var g domain.SavingsGoal

		err := rows.Scan(
			&g.ID,
			&g.Name,
			&g.TargetAmount,
			&g.SavedSoFar,
			&g.Deadline,
			&g.CreatedAt,
			&g.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		goals = append(goals, &g)
	}

	return goals, rows.Err()
}

// SaveSuggestions replaces the stored suggestions for an evaluation date,
// inside the same transaction that publishes the snapshot.
func (r *GoalRepository) SaveSuggestions(ctx context.Context, tx usecase.Transaction, asOf time.Time, suggestions []domain.GoalSuggestion) error {
	pgxTx := tx.(*Tx).PgxTx()

	if _, err := pgxTx.Exec(ctx, `DELETE FROM goal_suggestions WHERE as_of_date = $1`, asOf); err != nil {
		return err
	}

	query := `
		INSERT INTO goal_suggestions (
			as_of_date, goal_id, goal_name, suggested_weekly_contribution, status
		) VALUES ($1, $2, $3, $4, $5)
	`

	for _, s := range suggestions {
		_, err := pgxTx.Exec(ctx, query,
			asOf,
			s.GoalID,
			s.GoalName,
			s.SuggestedWeeklyContribution,
			string(s.Status),
		)
		if err != nil {
			return err
		}
	}

	return nil
}
