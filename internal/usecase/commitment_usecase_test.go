package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
	"github.com/helios/fss/internal/usecase"
	"github.com/helios/fss/internal/usecase/mocks"
)

func TestCommitmentUseCase_CreateCommitment(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.CreateCommitmentInput
		expectError bool
		errorType   error
	}{
		{
			name: "recurring commitment",
			input: usecase.CreateCommitmentInput{
				Name:    "Rent",
				Amount:  decimal.NewFromInt(650),
				Cadence: domain.Cadence{Kind: domain.CadenceMonthly, DayOfMonth: 1},
			},
			expectError: false,
		},
		{
			name: "one-off with due date",
			input: usecase.CreateCommitmentInput{
				Name:    "Car repair",
				Amount:  decimal.NewFromInt(240),
				OneOff:  true,
				DueDate: date(2025, time.June, 20),
			},
			expectError: false,
		},
		{
			name: "one-off without due date",
			input: usecase.CreateCommitmentInput{
				Name:   "Car repair",
				Amount: decimal.NewFromInt(240),
				OneOff: true,
			},
			expectError: true,
			errorType:   domain.ErrMissingDueDate,
		},
		{
			name: "missing name",
			input: usecase.CreateCommitmentInput{
				Amount:  decimal.NewFromInt(650),
				Cadence: domain.Cadence{Kind: domain.CadenceMonthly, DayOfMonth: 1},
			},
			expectError: true,
			errorType:   domain.ErrInvalidCommitmentName,
		},
		{
			name: "zero amount",
			input: usecase.CreateCommitmentInput{
				Name:    "Rent",
				Cadence: domain.Cadence{Kind: domain.CadenceMonthly, DayOfMonth: 1},
			},
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name: "implausibly large amount",
			input: usecase.CreateCommitmentInput{
				Name:    "Rent",
				Amount:  decimal.RequireFromString("2000000000"),
				Cadence: domain.Cadence{Kind: domain.CadenceMonthly, DayOfMonth: 1},
			},
			expectError: true,
			errorType:   domain.ErrAmountTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := usecase.NewCommitmentUseCase(mocks.NewMockCommitmentRepository(), &mocks.MockIDGenerator{})

			commitment, err := uc.CreateCommitment(context.Background(), tt.input)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorType != nil && !errors.Is(err, tt.errorType) {
					t.Fatalf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if commitment.ID == "" {
				t.Fatal("expected generated ID")
			}
			if !commitment.Amount.IsNegative() {
				t.Fatalf("expected stored amount to be an outflow, got %s", commitment.Amount)
			}
		})
	}
}

func TestCommitmentUseCase_CreateCommitmentKeepsNegativeAmount(t *testing.T) {
	uc := usecase.NewCommitmentUseCase(mocks.NewMockCommitmentRepository(), &mocks.MockIDGenerator{})

	commitment, err := uc.CreateCommitment(context.Background(), usecase.CreateCommitmentInput{
		Name:    "Rent",
		Amount:  decimal.NewFromInt(-650),
		Cadence: domain.Cadence{Kind: domain.CadenceMonthly, DayOfMonth: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !commitment.Amount.Equal(decimal.NewFromInt(-650)) {
		t.Fatalf("expected amount -650, got %s", commitment.Amount)
	}
}

func TestCommitmentUseCase_DeleteCommitment(t *testing.T) {
	repo := mocks.NewMockCommitmentRepository()
	uc := usecase.NewCommitmentUseCase(repo, &mocks.MockIDGenerator{})

	created, err := uc.CreateCommitment(context.Background(), usecase.CreateCommitmentInput{
		Name:    "Gym",
		Amount:  decimal.NewFromInt(35),
		Cadence: domain.Cadence{Kind: domain.CadenceMonthly, DayOfMonth: 5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := uc.DeleteCommitment(context.Background(), created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := uc.DeleteCommitment(context.Background(), created.ID); !errors.Is(err, domain.ErrCommitmentNotFound) {
		t.Fatalf("expected ErrCommitmentNotFound, got %v", err)
	}
}

func TestCommitmentUseCase_ListCommitments(t *testing.T) {
	repo := mocks.NewMockCommitmentRepository()
	uc := usecase.NewCommitmentUseCase(repo, &mocks.MockIDGenerator{})

	for _, name := range []string{"Rent", "Council tax"} {
		if _, err := uc.CreateCommitment(context.Background(), usecase.CreateCommitmentInput{
			Name:    name,
			Amount:  decimal.NewFromInt(100),
			Cadence: domain.Cadence{Kind: domain.CadenceMonthly, DayOfMonth: 1},
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	commitments, err := uc.ListCommitments(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(commitments) != 2 {
		t.Fatalf("expected 2 commitments, got %d", len(commitments))
	}
}
