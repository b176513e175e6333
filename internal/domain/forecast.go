package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ForecastDay is one day within the projection horizon. The forecast is a
// finite ordered sequence recomputed from scratch each run.
type ForecastDay struct {
	Date             time.Time
	OpeningBalance   decimal.Decimal
	ScheduledInflows decimal.Decimal
	ScheduledOutflow decimal.Decimal // stored positive
	ClosingBalance   decimal.Decimal
}

// NetFlow returns inflows minus outflows for the day.
func (d ForecastDay) NetFlow() decimal.Decimal {
	return d.ScheduledInflows.Sub(d.ScheduledOutflow)
}

// SafetyLevel is the discrete classification of a forecasted day.
type SafetyLevel string

const (
	SafetySafe    SafetyLevel = "safe"
	SafetyCaution SafetyLevel = "caution"
	SafetyUnsafe  SafetyLevel = "unsafe"
)

// Rank orders safety levels from least to most safe. Used to assert the
// monotonicity invariant: lower surplus never classifies safer.
func (s SafetyLevel) Rank() int {
	switch s {
	case SafetyUnsafe:
		return 0
	case SafetyCaution:
		return 1
	case SafetySafe:
		return 2
	}
	return -1
}

// BufferState is the safety evaluation of one forecast day.
type BufferState struct {
	Date                     time.Time
	ReserveThreshold         decimal.Decimal
	SurplusOrDeficit         decimal.Decimal
	TaperAdjustedEntitlement decimal.Decimal
	SafetyLevel              SafetyLevel
}

// ClassifySafety applies the tie-break order from the buffer policy:
// Unsafe below zero surplus, Caution inside the margin band, Safe otherwise.
// Total over all numeric inputs; no day is left unclassified.
func ClassifySafety(surplus, reserveThreshold, cautionMargin decimal.Decimal) SafetyLevel {
	if surplus.IsNegative() {
		return SafetyUnsafe
	}
	if surplus.LessThan(reserveThreshold.Mul(cautionMargin)) {
		return SafetyCaution
	}
	return SafetySafe
}

// TaperModel is the means-tested-benefit earnings taper: income above the
// work allowance reduces the entitlement by the taper rate per unit earned.
type TaperModel struct {
	MaxEntitlement decimal.Decimal
	WorkAllowance  decimal.Decimal
	TaperRate      decimal.Decimal // e.g. 0.55
}

// AdjustedEntitlement returns the entitlement left after tapering the given
// earned income. Never negative.
func (m TaperModel) AdjustedEntitlement(earnedIncome decimal.Decimal) decimal.Decimal {
	excess := earnedIncome.Sub(m.WorkAllowance)
	if excess.IsNegative() {
		return m.MaxEntitlement
	}

	remaining := m.MaxEntitlement.Sub(excess.Mul(m.TaperRate))
	if remaining.IsNegative() {
		return decimal.Zero
	}

	return remaining
}

// MarginalRetention returns how much of one extra unit of earned income the
// household keeps once the taper applies. A drawdown is counterproductive
// when retention is zero or negative.
func (m TaperModel) MarginalRetention() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(m.TaperRate)
}
