package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DrawdownRecommendation is the single output of an evaluation run: how much
// can be withdrawn today without breaching the reserve on any future day.
// Rationale lists the binding constraints in the order they were applied, so
// the recommendation is auditable.
type DrawdownRecommendation struct {
	AsOfDate          time.Time
	RecommendedAmount decimal.Decimal // always >= 0
	SafetyLevel       SafetyLevel
	Rationale         []string
	EarliestSafeDate  *time.Time // set when zero today but positive later
}

// SavingsGoal is a user-declared target. The engine reads targets and writes
// only the derived suggestion and status; it never mutates TargetAmount or
// SavedSoFar.
type SavingsGoal struct {
	ID           string
	Name         string
	TargetAmount decimal.Decimal
	SavedSoFar   decimal.Decimal
	Deadline     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Remaining returns the amount still needed, never negative.
func (g *SavingsGoal) Remaining() decimal.Decimal {
	r := g.TargetAmount.Sub(g.SavedSoFar)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// WeeksUntilDeadline counts whole weeks from asOf to the deadline, minimum 1
// so urgency stays finite for overdue goals.
func (g *SavingsGoal) WeeksUntilDeadline(asOf time.Time) int64 {
	days := int64(DateOnly(g.Deadline).Sub(DateOnly(asOf)).Hours() / 24)
	weeks := days / 7
	if weeks < 1 {
		return 1
	}
	return weeks
}

// WeeklyNeed returns the contribution per week required to reach the target
// by the deadline. This doubles as the urgency score for allocation order.
func (g *SavingsGoal) WeeklyNeed(asOf time.Time) decimal.Decimal {
	return g.Remaining().Div(decimal.NewFromInt(g.WeeksUntilDeadline(asOf)))
}

// Validate checks goal fields.
func (g *SavingsGoal) Validate() error {
	if g.Name == "" {
		return ErrInvalidGoalName
	}
	if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if g.SavedSoFar.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// GoalStatus classifies progress against the weekly need.
type GoalStatus string

const (
	GoalOnTrack GoalStatus = "on_track"
	GoalBehind  GoalStatus = "behind"
	GoalAhead   GoalStatus = "ahead"
)

// GoalSuggestion is the engine's derived weekly contribution for one goal.
type GoalSuggestion struct {
	GoalID                      string
	GoalName                    string
	SuggestedWeeklyContribution decimal.Decimal
	Status                      GoalStatus
}
