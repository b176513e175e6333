package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commitment is an externally declared fixed payment: a known one-off or a
// recurring rule that is not derived from ledger history. Priority
// commitments are non-negotiable; an unscheduled priority commitment for the
// current period forces the drawdown recommendation to zero.
type Commitment struct {
	ID        string
	Name      string
	Amount    decimal.Decimal // signed, outflows negative
	Cadence   Cadence
	OneOff    bool
	DueDate   time.Time // one-off commitments only
	Priority  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DueOn reports whether the commitment falls due on the given date.
func (c *Commitment) DueOn(date time.Time) bool {
	if c.OneOff {
		return DateOnly(c.DueDate).Equal(DateOnly(date))
	}
	return c.Cadence.OccursOn(date)
}

// Validate checks commitment fields.
func (c *Commitment) Validate() error {
	if c.Name == "" {
		return ErrInvalidCommitmentName
	}
	if c.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if c.OneOff && c.DueDate.IsZero() {
		return ErrMissingDueDate
	}
	return nil
}
