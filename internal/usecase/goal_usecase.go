package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
)

// GoalUseCase handles savings goal management. The engine consumes goals
// read-only; this usecase is the write path the presentation layer uses.
type GoalUseCase struct {
	goalRepo GoalRepository
	idGen    IDGenerator
}

// NewGoalUseCase creates a new GoalUseCase.
func NewGoalUseCase(goalRepo GoalRepository, idGen IDGenerator) *GoalUseCase {
	return &GoalUseCase{goalRepo: goalRepo, idGen: idGen}
}

// CreateGoalInput represents input for creating a savings goal.
type CreateGoalInput struct {
	Name         string
	TargetAmount decimal.Decimal
	SavedSoFar   decimal.Decimal
	Deadline     time.Time
}

// CreateGoal creates a new savings goal.
func (uc *GoalUseCase) CreateGoal(ctx context.Context, input CreateGoalInput) (*domain.SavingsGoal, error) {
	now := time.Now().UTC()

	goal := &domain.SavingsGoal{
		ID:           uc.idGen.Generate(),
		Name:         input.Name,
		TargetAmount: input.TargetAmount,
		SavedSoFar:   input.SavedSoFar,
		Deadline:     domain.DateOnly(input.Deadline),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(goal.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmountBound(goal.TargetAmount); err != nil {
		return nil, err
	}

	if err := uc.goalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}

	return goal, nil
}

// UpdateGoalInput represents input for updating a savings goal.
type UpdateGoalInput struct {
	ID           string
	Name         string
	TargetAmount decimal.Decimal
	SavedSoFar   decimal.Decimal
	Deadline     time.Time
}

// UpdateGoal updates target, progress and deadline of an existing goal.
func (uc *GoalUseCase) UpdateGoal(ctx context.Context, input UpdateGoalInput) (*domain.SavingsGoal, error) {
	goal, err := uc.goalRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	goal.Name = input.Name
	goal.TargetAmount = input.TargetAmount
	goal.SavedSoFar = input.SavedSoFar
	goal.Deadline = domain.DateOnly(input.Deadline)
	goal.UpdatedAt = time.Now().UTC()

	if err := goal.Validate(); err != nil {
		return nil, err
	}

	if err := uc.goalRepo.Update(ctx, goal); err != nil {
		return nil, err
	}

	return goal, nil
}

// GetGoal retrieves a goal by ID.
func (uc *GoalUseCase) GetGoal(ctx context.Context, id string) (*domain.SavingsGoal, error) {
	return uc.goalRepo.GetByID(ctx, id)
}

// ListGoals lists all goals.
func (uc *GoalUseCase) ListGoals(ctx context.Context) ([]*domain.SavingsGoal, error) {
	return uc.goalRepo.List(ctx)
}
