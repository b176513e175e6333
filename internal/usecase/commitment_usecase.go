package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
)

// CommitmentUseCase manages declared fixed commitments.
type CommitmentUseCase struct {
	commitmentRepo CommitmentRepository
	idGen          IDGenerator
}

// NewCommitmentUseCase creates a new CommitmentUseCase.
func NewCommitmentUseCase(commitmentRepo CommitmentRepository, idGen IDGenerator) *CommitmentUseCase {
	return &CommitmentUseCase{commitmentRepo: commitmentRepo, idGen: idGen}
}

// CreateCommitmentInput represents input for declaring a commitment.
type CreateCommitmentInput struct {
	Name     string
	Amount   decimal.Decimal
	Cadence  domain.Cadence
	OneOff   bool
	DueDate  time.Time
	Priority bool
}

// CreateCommitment declares a new fixed commitment.
func (uc *CommitmentUseCase) CreateCommitment(ctx context.Context, input CreateCommitmentInput) (*domain.Commitment, error) {
	now := time.Now().UTC()

	amount := input.Amount
	// Commitments are payments; an unsigned amount means an outflow.
	if amount.IsPositive() {
		amount = amount.Neg()
	}

	commitment := &domain.Commitment{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Amount:    amount,
		Cadence:   input.Cadence,
		OneOff:    input.OneOff,
		DueDate:   domain.DateOnly(input.DueDate),
		Priority:  input.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := commitment.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(commitment.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmountBound(commitment.Amount); err != nil {
		return nil, err
	}

	if err := uc.commitmentRepo.Create(ctx, commitment); err != nil {
		return nil, err
	}

	return commitment, nil
}

// DeleteCommitment removes a commitment.
func (uc *CommitmentUseCase) DeleteCommitment(ctx context.Context, id string) error {
	if _, err := uc.commitmentRepo.GetByID(ctx, id); err != nil {
		return err
	}

	return uc.commitmentRepo.Delete(ctx, id)
}

// ListCommitments lists all declared commitments.
func (uc *CommitmentUseCase) ListCommitments(ctx context.Context) ([]*domain.Commitment, error) {
	return uc.commitmentRepo.List(ctx)
}
