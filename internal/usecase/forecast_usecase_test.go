package usecase_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
	"github.com/helios/fss/internal/usecase"
)

func testSafetyConfig() usecase.SafetyConfig {
	return usecase.SafetyConfig{
		ReserveThreshold: decimal.NewFromInt(2000),
		CautionMargin:    decimal.NewFromFloat(0.25),
		Taper: domain.TaperModel{
			MaxEntitlement: decimal.NewFromInt(600),
			WorkAllowance:  decimal.NewFromInt(400),
			TaperRate:      decimal.NewFromFloat(0.55),
		},
	}
}

func monthlyObligation(payee string, amount int64, dayOfMonth int, nextExpected time.Time) *domain.RecurringObligation {
	return &domain.RecurringObligation{
		ID:             "ob-" + payee,
		PayeeKey:       payee,
		ExpectedAmount: decimal.NewFromInt(amount),
		Cadence: domain.Cadence{
			Kind:       domain.CadenceMonthly,
			DayOfMonth: dayOfMonth,
		},
		Confidence:       0.9,
		Occurrences:      4,
		NextExpectedDate: nextExpected,
	}
}

func TestForecastUseCase_GenerateConservation(t *testing.T) {
	uc := usecase.NewForecastUseCase()

	asOf := date(2025, time.June, 10)
	obligations := []*domain.RecurringObligation{
		monthlyObligation("RENT", -650, 15, date(2025, time.June, 15)),
		monthlyObligation("SALARY", 1200, 28, date(2025, time.June, 28)),
	}
	commitments := []*domain.Commitment{
		{
			ID:      "c-1",
			Name:    "Car repair",
			Amount:  decimal.NewFromInt(-180),
			OneOff:  true,
			DueDate: date(2025, time.July, 2),
		},
	}

	days, items := uc.Generate(asOf, decimal.NewFromInt(3000), obligations, commitments, usecase.ForecastConfig{HorizonDays: 90})

	if len(days) != 90 {
		t.Fatalf("expected 90 forecast days, got %d", len(days))
	}
	if !days[0].Date.Equal(date(2025, time.June, 11)) {
		t.Errorf("horizon must start the day after asOf, got %s", days[0].Date.Format("2006-01-02"))
	}

	// Every day's closing balance is opening plus net flow, and each day
	// opens where the previous one closed.
	prev := decimal.NewFromInt(3000)
	for i, day := range days {
		if !day.OpeningBalance.Equal(prev) {
			t.Fatalf("day %d opens at %s, previous closed at %s", i, day.OpeningBalance, prev)
		}
		want := day.OpeningBalance.Add(day.ScheduledInflows).Sub(day.ScheduledOutflow)
		if !day.ClosingBalance.Equal(want) {
			t.Fatalf("day %d closing %s, want %s", i, day.ClosingBalance, want)
		}
		prev = day.ClosingBalance
	}

	// The end state is fully explained by the scheduled items.
	net := decimal.Zero
	for _, it := range items {
		net = net.Add(it.Amount)
	}
	final := days[len(days)-1].ClosingBalance
	if !final.Equal(decimal.NewFromInt(3000).Add(net)) {
		t.Errorf("final balance %s does not equal opening plus scheduled net %s", final, net)
	}
}

func TestForecastUseCase_ObligationWaitsForNextExpected(t *testing.T) {
	uc := usecase.NewForecastUseCase()

	asOf := date(2025, time.June, 10)
	// The 15th recurs inside the horizon, but the next expected payment is
	// not until July; June 15 must not be charged.
	ob := monthlyObligation("RENT", -650, 15, date(2025, time.July, 15))

	days, _ := uc.Generate(asOf, decimal.NewFromInt(1000), []*domain.RecurringObligation{ob}, nil, usecase.ForecastConfig{HorizonDays: 40})

	for _, day := range days {
		if day.Date.Equal(date(2025, time.June, 15)) && !day.ScheduledOutflow.IsZero() {
			t.Error("expected no outflow before the obligation's next expected date")
		}
		if day.Date.Equal(date(2025, time.July, 15)) && !day.ScheduledOutflow.Equal(decimal.NewFromInt(650)) {
			t.Errorf("expected 650 outflow on 2025-07-15, got %s", day.ScheduledOutflow)
		}
	}
}

func TestForecastUseCase_ExcludeLowConfidence(t *testing.T) {
	uc := usecase.NewForecastUseCase()

	ob := monthlyObligation("MAYBE GYM", -30, 15, date(2025, time.June, 15))
	ob.LowConfidence = true

	days, _ := uc.Generate(date(2025, time.June, 10), decimal.NewFromInt(1000),
		[]*domain.RecurringObligation{ob}, nil,
		usecase.ForecastConfig{HorizonDays: 30, ExcludeLowConfidence: true})

	for _, day := range days {
		if !day.ScheduledOutflow.IsZero() {
			t.Fatal("low-confidence obligation must be excluded from the projection")
		}
	}
}

func TestForecastUseCase_SameDayOrderIndependence(t *testing.T) {
	uc := usecase.NewForecastUseCase()

	asOf := date(2025, time.June, 10)
	a := monthlyObligation("RENT", -650, 15, date(2025, time.June, 15))
	b := monthlyObligation("COUNCIL TAX", -120, 15, date(2025, time.June, 15))

	first, _ := uc.Generate(asOf, decimal.NewFromInt(3000), []*domain.RecurringObligation{a, b}, nil, usecase.ForecastConfig{HorizonDays: 30})
	second, _ := uc.Generate(asOf, decimal.NewFromInt(3000), []*domain.RecurringObligation{b, a}, nil, usecase.ForecastConfig{HorizonDays: 30})

	for i := range first {
		if !first[i].ClosingBalance.Equal(second[i].ClosingBalance) {
			t.Fatalf("day %d differs across application order: %s vs %s", i, first[i].ClosingBalance, second[i].ClosingBalance)
		}
	}
}

func TestForecastUseCase_Classify(t *testing.T) {
	uc := usecase.NewForecastUseCase()
	cfg := testSafetyConfig()

	days := []domain.ForecastDay{
		{Date: date(2025, time.June, 11), ClosingBalance: decimal.NewFromInt(3000)}, // surplus 1000
		{Date: date(2025, time.June, 12), ClosingBalance: decimal.NewFromInt(2350)}, // surplus 350
		{Date: date(2025, time.June, 13), ClosingBalance: decimal.NewFromInt(1900)}, // deficit
	}

	states := uc.Classify(days, cfg)

	if states[0].SafetyLevel != domain.SafetySafe {
		t.Errorf("day 0: expected safe, got %s", states[0].SafetyLevel)
	}
	if states[1].SafetyLevel != domain.SafetyCaution {
		t.Errorf("day 1: expected caution, got %s", states[1].SafetyLevel)
	}
	if states[2].SafetyLevel != domain.SafetyUnsafe {
		t.Errorf("day 2: expected unsafe, got %s", states[2].SafetyLevel)
	}
	if !states[2].SurplusOrDeficit.Equal(decimal.NewFromInt(-100)) {
		t.Errorf("day 2: expected deficit -100, got %s", states[2].SurplusOrDeficit)
	}
}

func TestForecastUseCase_ClassifyTapersRollingInflows(t *testing.T) {
	uc := usecase.NewForecastUseCase()
	cfg := testSafetyConfig()

	// 600 of inflows on the first day: 200 over the work allowance, so the
	// entitlement drops by 0.55 * 200 = 110 on every day the window covers.
	days := []domain.ForecastDay{
		{Date: date(2025, time.June, 11), ScheduledInflows: decimal.NewFromInt(600), ClosingBalance: decimal.NewFromInt(3000)},
		{Date: date(2025, time.June, 12), ClosingBalance: decimal.NewFromInt(3000)},
	}

	states := uc.Classify(days, cfg)

	want := decimal.NewFromInt(490)
	for i, s := range states {
		if !s.TaperAdjustedEntitlement.Equal(want) {
			t.Errorf("day %d: expected entitlement %s, got %s", i, want, s.TaperAdjustedEntitlement)
		}
	}
}
