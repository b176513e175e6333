package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
	"github.com/helios/fss/internal/usecase"
)

// CreateGoalRequest represents a request to declare a savings goal.
type CreateGoalRequest struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SavedSoFar   decimal.Decimal `json:"saved_so_far"`
	Deadline     time.Time       `json:"deadline"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateGoalRequest) ToUseCaseInput() usecase.CreateGoalInput {
	return usecase.CreateGoalInput{
		Name:         r.Name,
		TargetAmount: r.TargetAmount,
		SavedSoFar:   r.SavedSoFar,
		Deadline:     r.Deadline,
	}
}

// UpdateGoalRequest represents a request to update a savings goal.
type UpdateGoalRequest struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SavedSoFar   decimal.Decimal `json:"saved_so_far"`
	Deadline     time.Time       `json:"deadline"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateGoalRequest) ToUseCaseInput(id string) usecase.UpdateGoalInput {
	return usecase.UpdateGoalInput{
		ID:           id,
		Name:         r.Name,
		TargetAmount: r.TargetAmount,
		SavedSoFar:   r.SavedSoFar,
		Deadline:     r.Deadline,
	}
}

// CadenceRequest represents a recurrence rule in API requests.
type CadenceRequest struct {
	Kind         string     `json:"kind"`
	DayOfMonth   int        `json:"day_of_month,omitempty"`
	Weekday      int        `json:"weekday,omitempty"`
	IntervalDays int        `json:"interval_days,omitempty"`
	Anchor       *time.Time `json:"anchor,omitempty"`
}

// ToDomain converts to a domain cadence.
func (r *CadenceRequest) ToDomain() domain.Cadence {
	c := domain.Cadence{
		Kind:         domain.CadenceKind(r.Kind),
		DayOfMonth:   r.DayOfMonth,
		Weekday:      time.Weekday(r.Weekday),
		IntervalDays: r.IntervalDays,
	}
	if r.Anchor != nil {
		c.Anchor = domain.DateOnly(*r.Anchor)
	}
	return c
}

// CreateCommitmentRequest represents a request to declare a commitment.
type CreateCommitmentRequest struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Cadence  CadenceRequest  `json:"cadence"`
	OneOff   bool            `json:"one_off"`
	DueDate  *time.Time      `json:"due_date,omitempty"`
	Priority bool            `json:"priority"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCommitmentRequest) ToUseCaseInput() usecase.CreateCommitmentInput {
	input := usecase.CreateCommitmentInput{
		Name:     r.Name,
		Amount:   r.Amount,
		Cadence:  r.Cadence.ToDomain(),
		OneOff:   r.OneOff,
		Priority: r.Priority,
	}
	if r.DueDate != nil {
		input.DueDate = *r.DueDate
	}
	return input
}

// WhatIfRequest represents a request to replay a snapshot against a
// hypothetical reserve threshold.
type WhatIfRequest struct {
	AsOfDate         time.Time       `json:"as_of_date"`
	ReserveThreshold decimal.Decimal `json:"reserve_threshold"`
}
