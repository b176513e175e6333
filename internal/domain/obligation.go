package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringObligation is a detected repeating payment, derived entirely from
// ledger history and regenerated on every pipeline run.
type RecurringObligation struct {
	ID               string
	PayeeKey         string
	ExpectedAmount   decimal.Decimal // signed, outflows negative
	Cadence          Cadence
	Confidence       float64 // 0..1
	LowConfidence    bool
	Occurrences      int
	LastObservedDate time.Time
	NextExpectedDate time.Time
}

// AdvanceNextExpected moves NextExpectedDate forward until it is strictly
// after the run date. Handles gaps in ingestion where the expected date has
// already passed.
func (o *RecurringObligation) AdvanceNextExpected(runDate time.Time) {
	runDate = DateOnly(runDate)

	next := DateOnly(o.NextExpectedDate)
	if next.IsZero() {
		next = o.Cadence.NextAfter(o.LastObservedDate)
	}

	for !next.After(runDate) {
		next = o.Cadence.NextAfter(next)
	}

	o.NextExpectedDate = next
}
