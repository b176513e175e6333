package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
)

// ScheduledItem is one named flow landing on a forecast day. The
// recommendation engine uses these to name the binding constraint instead of
// only quoting a number.
type ScheduledItem struct {
	Date   time.Time
	Name   string
	Amount decimal.Decimal // signed
}

// ForecastUseCase projects the account position forward and classifies each
// day's safety. Both operations are pure folds over their inputs; two runs
// over identical inputs produce identical output.
type ForecastUseCase struct{}

// NewForecastUseCase creates a new ForecastUseCase.
func NewForecastUseCase() *ForecastUseCase {
	return &ForecastUseCase{}
}

// Generate produces the forecast-day sequence for the horizon starting the
// day after asOf, along with every scheduled item that contributed to it.
// Obligations and commitments landing on the same date are all applied;
// summation is commutative so no ordering dependency exists.
func (uc *ForecastUseCase) Generate(
	asOf time.Time,
	openingBalance decimal.Decimal,
	obligations []*domain.RecurringObligation,
	commitments []*domain.Commitment,
	cfg ForecastConfig,
) ([]domain.ForecastDay, []ScheduledItem) {
	days := make([]domain.ForecastDay, 0, cfg.HorizonDays)
	var items []ScheduledItem

	balance := openingBalance
	date := domain.DateOnly(asOf)

	for i := 0; i < cfg.HorizonDays; i++ {
		date = date.AddDate(0, 0, 1)

		inflows := decimal.Zero
		outflows := decimal.Zero

		apply := func(name string, amount decimal.Decimal) {
			if amount.IsNegative() {
				outflows = outflows.Add(amount.Abs())
			} else {
				inflows = inflows.Add(amount)
			}
			items = append(items, ScheduledItem{Date: date, Name: name, Amount: amount})
		}

		for _, ob := range obligations {
			if cfg.ExcludeLowConfidence && ob.LowConfidence {
				continue
			}
			if ob.Cadence.OccursOn(date) && !date.Before(ob.NextExpectedDate) {
				apply(ob.PayeeKey, ob.ExpectedAmount)
			}
		}

		for _, c := range commitments {
			if c.DueOn(date) {
				apply(c.Name, c.Amount)
			}
		}

		day := domain.ForecastDay{
			Date:             date,
			OpeningBalance:   balance,
			ScheduledInflows: inflows,
			ScheduledOutflow: outflows,
		}
		day.ClosingBalance = day.OpeningBalance.Add(day.NetFlow())

		days = append(days, day)
		balance = day.ClosingBalance
	}

	return days, items
}

// Classify evaluates every forecast day against the reserve threshold and
// the benefit taper. The per-day entitlement is tapered against the rolling
// 30-day inflow total ending on that day, the engine's proxy for assessed
// earnings in the period.
func (uc *ForecastUseCase) Classify(days []domain.ForecastDay, cfg SafetyConfig) []domain.BufferState {
	const earningsWindowDays = 30

	states := make([]domain.BufferState, 0, len(days))

	for i, day := range days {
		windowInflows := decimal.Zero
		for j := i; j >= 0 && j > i-earningsWindowDays; j-- {
			windowInflows = windowInflows.Add(days[j].ScheduledInflows)
		}

		surplus := day.ClosingBalance.Sub(cfg.ReserveThreshold)

		states = append(states, domain.BufferState{
			Date:                     day.Date,
			ReserveThreshold:         cfg.ReserveThreshold,
			SurplusOrDeficit:         surplus,
			TaperAdjustedEntitlement: cfg.Taper.AdjustedEntitlement(windowInflows),
			SafetyLevel:              domain.ClassifySafety(surplus, cfg.ReserveThreshold, cfg.CautionMargin),
		})
	}

	return states
}
