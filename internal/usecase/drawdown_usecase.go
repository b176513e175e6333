package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
)

// DrawdownUseCase turns a classified forecast into a single recommended
// withdrawal amount plus goal allocations. It only ever recommends; it never
// moves money.
type DrawdownUseCase struct{}

// NewDrawdownUseCase creates a new DrawdownUseCase.
func NewDrawdownUseCase() *DrawdownUseCase {
	return &DrawdownUseCase{}
}

// RecommendInput carries everything the evaluation needs. Entries are the
// ledger history for the current period, used to decide whether a priority
// commitment has already been paid.
type RecommendInput struct {
	AsOf           time.Time
	CurrentBalance decimal.Decimal
	Buffers        []domain.BufferState
	Items          []ScheduledItem
	Commitments    []*domain.Commitment
	Entries        []*domain.LedgerEntry
	PeriodInflows  decimal.Decimal // earned income already assessed this period
	Safety         SafetyConfig
}

// Recommend computes the largest amount that can be withdrawn today such
// that every future day stays at least Caution-safe after the withdrawal.
// Precedence order, each constraint recorded in the rationale:
//
//  1. an unpaid priority commitment for the current period forces zero;
//  2. the taper guard caps the amount when the marginal retention after
//     tapering is nothing;
//  3. otherwise the minimum projected surplus across the horizon binds.
func (uc *DrawdownUseCase) Recommend(input RecommendInput) domain.DrawdownRecommendation {
	rec := domain.DrawdownRecommendation{
		AsOfDate:          domain.DateOnly(input.AsOf),
		RecommendedAmount: decimal.Zero,
	}

	// Absolute precondition: priority commitments come before any surplus
	// arithmetic.
	if pending := uc.pendingPriority(input); pending != nil {
		rec.SafetyLevel = domain.SafetyUnsafe
		rec.Rationale = append(rec.Rationale,
			fmt.Sprintf("priority payment %q (%s) not yet made this period; drawdown withheld",
				pending.Name, pending.Amount.Abs()))
		return rec
	}

	todaySurplus := input.CurrentBalance.Sub(input.Safety.ReserveThreshold)

	bindingSurplus := todaySurplus
	bindingDate := rec.AsOfDate
	for _, b := range input.Buffers {
		if b.SurplusOrDeficit.LessThan(bindingSurplus) {
			bindingSurplus = b.SurplusOrDeficit
			bindingDate = b.Date
		}
	}

	amount := bindingSurplus
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	if bindingDate.Equal(rec.AsOfDate) {
		rec.Rationale = append(rec.Rationale,
			fmt.Sprintf("binding constraint: today's balance %s against reserve threshold %s",
				input.CurrentBalance, input.Safety.ReserveThreshold))
	} else {
		rec.Rationale = append(rec.Rationale,
			fmt.Sprintf("binding constraint: projected surplus %s on %s%s",
				bindingSurplus, bindingDate.Format("2006-01-02"), dueNames(input.Items, bindingDate)))
	}

	// Taper guard: when each extra pound of assessed income loses a pound
	// or more of entitlement, cap the drawdown at the work-allowance
	// headroom so the withdrawal cannot cost more than it is worth.
	if !input.Safety.Taper.MarginalRetention().IsPositive() {
		headroom := input.Safety.Taper.WorkAllowance.Sub(input.PeriodInflows)
		if headroom.IsNegative() {
			headroom = decimal.Zero
		}
		if headroom.LessThan(amount) {
			amount = headroom
			rec.Rationale = append(rec.Rationale,
				fmt.Sprintf("taper guard: capped at work-allowance headroom %s (taper rate %s erases entitlement)",
					headroom, input.Safety.Taper.TaperRate))
		}
	}

	rec.RecommendedAmount = amount
	rec.SafetyLevel = domain.ClassifySafety(bindingSurplus, input.Safety.ReserveThreshold, input.Safety.CautionMargin)

	if amount.IsZero() {
		rec.EarliestSafeDate = earliestSafeDate(input.Buffers)
		if rec.EarliestSafeDate != nil {
			rec.Rationale = append(rec.Rationale,
				fmt.Sprintf("earliest safe drawdown date: %s", rec.EarliestSafeDate.Format("2006-01-02")))
		}
	}

	return rec
}

// pendingPriority returns the first priority commitment due this period with
// no matching ledger entry, or nil when all priority payments are covered.
func (uc *DrawdownUseCase) pendingPriority(input RecommendInput) *domain.Commitment {
	asOf := domain.DateOnly(input.AsOf)

	for _, c := range input.Commitments {
		if !c.Priority {
			continue
		}

		start, due := currentPeriod(c, asOf)
		if start.IsZero() {
			continue
		}

		if !paidWithin(input.Entries, c, start, due) {
			return c
		}
	}

	return nil
}

// currentPeriod returns the window in which the commitment's current
// occurrence must be paid: from the most recent due date on or before asOf
// (or the period leading up to a near-future due date) to that due date.
func currentPeriod(c *domain.Commitment, asOf time.Time) (start, due time.Time) {
	if c.OneOff {
		due = domain.DateOnly(c.DueDate)
		if due.Before(asOf) {
			return time.Time{}, time.Time{}
		}
		return due.AddDate(0, 0, -periodLength(c)), due
	}

	next := c.Cadence.NextAfter(asOf)
	prev := next.AddDate(0, 0, -periodLength(c))

	if c.Cadence.OccursOn(asOf) {
		next = asOf
		prev = asOf.AddDate(0, 0, -periodLength(c))
	}

	return prev, next
}

func periodLength(c *domain.Commitment) int {
	switch c.Cadence.Kind {
	case domain.CadenceWeekly:
		return 7
	case domain.CadenceFortnightly:
		return 14
	case domain.CadenceCustom:
		if c.Cadence.IntervalDays > 0 {
			return c.Cadence.IntervalDays
		}
		return 30
	default:
		return 30
	}
}

// paidWithin reports whether the ledger shows an outflow matching the
// commitment's payee and amount (within 10%) inside the window.
func paidWithin(entries []*domain.LedgerEntry, c *domain.Commitment, start, due time.Time) bool {
	payee := domain.NormalizePayee(c.Name)
	want := c.Amount.Abs()
	band := want.Mul(decimal.NewFromFloat(0.10))

	for _, e := range entries {
		if e.OccurredAt.Before(start) || e.OccurredAt.After(due) {
			continue
		}
		if !e.IsOutflow() || e.Payee != payee {
			continue
		}
		if e.Amount.Abs().Sub(want).Abs().LessThanOrEqual(band) {
			return true
		}
	}

	return false
}

// earliestSafeDate finds the first date from which every remaining forecast
// day holds a positive surplus. Nil when no such date exists in the horizon.
func earliestSafeDate(buffers []domain.BufferState) *time.Time {
	suffixMin := make([]decimal.Decimal, len(buffers))
	for i := len(buffers) - 1; i >= 0; i-- {
		suffixMin[i] = buffers[i].SurplusOrDeficit
		if i+1 < len(buffers) && suffixMin[i+1].LessThan(suffixMin[i]) {
			suffixMin[i] = suffixMin[i+1]
		}
	}

	for i := range buffers {
		if suffixMin[i].IsPositive() {
			d := buffers[i].Date
			return &d
		}
	}

	return nil
}

func dueNames(items []ScheduledItem, date time.Time) string {
	var names []string
	for _, it := range items {
		if it.Date.Equal(date) && it.Amount.IsNegative() {
			names = append(names, it.Name)
		}
	}

	if len(names) == 0 {
		return ""
	}

	sort.Strings(names)

	return fmt.Sprintf(" (%s due)", joinNames(names))
}

func joinNames(names []string) string {
	out := names[0]
	for _, n := range names[1:] {
		out += ", " + n
	}
	return out
}

// Allocate distributes leftover surplus across open goals, most urgent
// first, each capped at its own weekly need. Statuses compare the allocation
// to the weekly need; already-funded goals report ahead.
func (uc *DrawdownUseCase) Allocate(asOf time.Time, surplus decimal.Decimal, goals []*domain.SavingsGoal) []domain.GoalSuggestion {
	ordered := make([]*domain.SavingsGoal, len(goals))
	copy(ordered, goals)

	sort.SliceStable(ordered, func(i, j int) bool {
		ni, nj := ordered[i].WeeklyNeed(asOf), ordered[j].WeeklyNeed(asOf)
		if !ni.Equal(nj) {
			return ni.GreaterThan(nj)
		}
		if !ordered[i].Deadline.Equal(ordered[j].Deadline) {
			return ordered[i].Deadline.Before(ordered[j].Deadline)
		}
		return ordered[i].Name < ordered[j].Name
	})

	remaining := surplus
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	suggestions := make([]domain.GoalSuggestion, 0, len(ordered))
	for _, g := range ordered {
		need := g.WeeklyNeed(asOf)

		alloc := need
		if remaining.LessThan(alloc) {
			alloc = remaining
		}
		remaining = remaining.Sub(alloc)

		status := domain.GoalOnTrack
		switch {
		case g.SavedSoFar.GreaterThanOrEqual(g.TargetAmount):
			status = domain.GoalAhead
		case alloc.LessThan(need):
			status = domain.GoalBehind
		}

		suggestions = append(suggestions, domain.GoalSuggestion{
			GoalID:                      g.ID,
			GoalName:                    g.Name,
			SuggestedWeeklyContribution: alloc,
			Status:                      status,
		})
	}

	return suggestions
}
