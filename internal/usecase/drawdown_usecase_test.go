package usecase_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
	"github.com/helios/fss/internal/usecase"
)

func TestDrawdownUseCase_RecommendBoundByFutureSurplus(t *testing.T) {
	forecast := usecase.NewForecastUseCase()
	drawdown := usecase.NewDrawdownUseCase()
	cfg := testSafetyConfig()

	// Balance 3000 against a 2000 reserve, with a 650 payment due inside the
	// horizon: only 350 can leave today without breaching the reserve later.
	asOf := date(2025, time.June, 10)
	commitments := []*domain.Commitment{
		{
			ID:      "c-1",
			Name:    "Boiler repair",
			Amount:  decimal.NewFromInt(-650),
			OneOff:  true,
			DueDate: date(2025, time.June, 20),
		},
	}

	days, items := forecast.Generate(asOf, decimal.NewFromInt(3000), nil, commitments, usecase.ForecastConfig{HorizonDays: 90})
	buffers := forecast.Classify(days, cfg)

	rec := drawdown.Recommend(usecase.RecommendInput{
		AsOf:           asOf,
		CurrentBalance: decimal.NewFromInt(3000),
		Buffers:        buffers,
		Items:          items,
		Commitments:    commitments,
		Safety:         cfg,
	})

	if !rec.RecommendedAmount.Equal(decimal.NewFromInt(350)) {
		t.Errorf("expected recommendation 350, got %s", rec.RecommendedAmount)
	}
	if rec.SafetyLevel != domain.SafetyCaution {
		t.Errorf("expected caution, got %s", rec.SafetyLevel)
	}

	rationale := strings.Join(rec.Rationale, "; ")
	if !strings.Contains(rationale, "2025-06-20") {
		t.Errorf("rationale should name the binding day, got %q", rationale)
	}
	if !strings.Contains(rationale, "Boiler repair") {
		t.Errorf("rationale should name the due payment, got %q", rationale)
	}
}

func TestDrawdownUseCase_RecommendNeverNegative(t *testing.T) {
	drawdown := usecase.NewDrawdownUseCase()
	cfg := testSafetyConfig()

	buffers := []domain.BufferState{
		{Date: date(2025, time.June, 11), SurplusOrDeficit: decimal.NewFromInt(-500)},
		{Date: date(2025, time.June, 12), SurplusOrDeficit: decimal.NewFromInt(-200)},
	}

	rec := drawdown.Recommend(usecase.RecommendInput{
		AsOf:           date(2025, time.June, 10),
		CurrentBalance: decimal.NewFromInt(1500), // already below reserve
		Buffers:        buffers,
		Safety:         cfg,
	})

	if !rec.RecommendedAmount.IsZero() {
		t.Errorf("expected zero recommendation, got %s", rec.RecommendedAmount)
	}
	if rec.SafetyLevel != domain.SafetyUnsafe {
		t.Errorf("expected unsafe, got %s", rec.SafetyLevel)
	}
}

func TestDrawdownUseCase_EarliestSafeDate(t *testing.T) {
	drawdown := usecase.NewDrawdownUseCase()
	cfg := testSafetyConfig()

	// Deficit until the 14th, then positive for the rest of the horizon.
	buffers := []domain.BufferState{
		{Date: date(2025, time.June, 11), SurplusOrDeficit: decimal.NewFromInt(-300)},
		{Date: date(2025, time.June, 12), SurplusOrDeficit: decimal.NewFromInt(-100)},
		{Date: date(2025, time.June, 13), SurplusOrDeficit: decimal.NewFromInt(250)},
		{Date: date(2025, time.June, 14), SurplusOrDeficit: decimal.NewFromInt(400)},
	}

	rec := drawdown.Recommend(usecase.RecommendInput{
		AsOf:           date(2025, time.June, 10),
		CurrentBalance: decimal.NewFromInt(1900),
		Buffers:        buffers,
		Safety:         cfg,
	})

	if !rec.RecommendedAmount.IsZero() {
		t.Fatalf("expected zero recommendation, got %s", rec.RecommendedAmount)
	}
	if rec.EarliestSafeDate == nil {
		t.Fatal("expected an earliest safe date")
	}
	if !rec.EarliestSafeDate.Equal(date(2025, time.June, 13)) {
		t.Errorf("expected earliest safe date 2025-06-13, got %s", rec.EarliestSafeDate.Format("2006-01-02"))
	}
}

func TestDrawdownUseCase_UnpaidPriorityForcesZero(t *testing.T) {
	drawdown := usecase.NewDrawdownUseCase()
	cfg := testSafetyConfig()

	rent := &domain.Commitment{
		ID:       "c-rent",
		Name:     "Tee Rent",
		Amount:   decimal.NewFromInt(-300),
		Cadence:  domain.Cadence{Kind: domain.CadenceMonthly, DayOfMonth: 1},
		Priority: true,
	}

	// Healthy surplus everywhere, but the rent has not gone out this period.
	buffers := []domain.BufferState{
		{Date: date(2025, time.June, 11), SurplusOrDeficit: decimal.NewFromInt(900)},
	}

	rec := drawdown.Recommend(usecase.RecommendInput{
		AsOf:           date(2025, time.June, 10),
		CurrentBalance: decimal.NewFromInt(3000),
		Buffers:        buffers,
		Commitments:    []*domain.Commitment{rent},
		Entries:        nil,
		Safety:         cfg,
	})

	if !rec.RecommendedAmount.IsZero() {
		t.Errorf("expected zero recommendation, got %s", rec.RecommendedAmount)
	}
	if rec.SafetyLevel != domain.SafetyUnsafe {
		t.Errorf("expected unsafe, got %s", rec.SafetyLevel)
	}
	if len(rec.Rationale) == 0 || !strings.Contains(rec.Rationale[0], "Tee Rent") {
		t.Errorf("rationale should name the unpaid priority payment, got %v", rec.Rationale)
	}
}

func TestDrawdownUseCase_PaidPriorityDoesNotBlock(t *testing.T) {
	drawdown := usecase.NewDrawdownUseCase()
	cfg := testSafetyConfig()

	rent := &domain.Commitment{
		ID:       "c-rent",
		Name:     "Tee Rent",
		Amount:   decimal.NewFromInt(-300),
		Cadence:  domain.Cadence{Kind: domain.CadenceMonthly, DayOfMonth: 1},
		Priority: true,
	}

	paid := outflow("Tee Rent", 300.00, date(2025, time.June, 12))

	buffers := []domain.BufferState{
		{Date: date(2025, time.June, 16), SurplusOrDeficit: decimal.NewFromInt(900)},
	}

	rec := drawdown.Recommend(usecase.RecommendInput{
		AsOf:           date(2025, time.June, 15),
		CurrentBalance: decimal.NewFromInt(3000),
		Buffers:        buffers,
		Commitments:    []*domain.Commitment{rent},
		Entries:        []*domain.LedgerEntry{paid},
		Safety:         cfg,
	})

	if !rec.RecommendedAmount.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected recommendation 900, got %s", rec.RecommendedAmount)
	}
	if rec.SafetyLevel != domain.SafetySafe {
		t.Errorf("expected safe, got %s", rec.SafetyLevel)
	}
}

func TestDrawdownUseCase_TaperGuardCapsAtHeadroom(t *testing.T) {
	drawdown := usecase.NewDrawdownUseCase()

	cfg := testSafetyConfig()
	cfg.Taper.TaperRate = decimal.NewFromInt(1) // every assessed pound erases a pound

	buffers := []domain.BufferState{
		{Date: date(2025, time.June, 11), SurplusOrDeficit: decimal.NewFromInt(800)},
	}

	rec := drawdown.Recommend(usecase.RecommendInput{
		AsOf:           date(2025, time.June, 10),
		CurrentBalance: decimal.NewFromInt(2800),
		Buffers:        buffers,
		PeriodInflows:  decimal.NewFromInt(350), // 50 of work allowance left
		Safety:         cfg,
	})

	if !rec.RecommendedAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected recommendation capped at 50, got %s", rec.RecommendedAmount)
	}

	rationale := strings.Join(rec.Rationale, "; ")
	if !strings.Contains(rationale, "taper guard") {
		t.Errorf("rationale should record the taper guard, got %q", rationale)
	}
}

func TestDrawdownUseCase_Allocate(t *testing.T) {
	drawdown := usecase.NewDrawdownUseCase()
	asOf := date(2025, time.June, 10)

	urgent := &domain.SavingsGoal{
		ID:           "g-1",
		Name:         "School uniform",
		TargetAmount: decimal.NewFromInt(400),
		SavedSoFar:   decimal.NewFromInt(200),
		Deadline:     asOf.AddDate(0, 0, 28), // needs 50 a week
	}
	slow := &domain.SavingsGoal{
		ID:           "g-2",
		Name:         "Holiday",
		TargetAmount: decimal.NewFromInt(520),
		Deadline:     asOf.AddDate(1, 0, 0), // needs 10 a week
	}

	t.Run("urgent goal funded first", func(t *testing.T) {
		suggestions := drawdown.Allocate(asOf, decimal.NewFromInt(60), []*domain.SavingsGoal{slow, urgent})

		if len(suggestions) != 2 {
			t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
		}
		if suggestions[0].GoalID != "g-1" || !suggestions[0].SuggestedWeeklyContribution.Equal(decimal.NewFromInt(50)) {
			t.Errorf("expected 50 to the urgent goal first, got %s to %s",
				suggestions[0].SuggestedWeeklyContribution, suggestions[0].GoalID)
		}
		if suggestions[1].GoalID != "g-2" || !suggestions[1].SuggestedWeeklyContribution.Equal(decimal.NewFromInt(10)) {
			t.Errorf("expected 10 to the slow goal, got %s to %s",
				suggestions[1].SuggestedWeeklyContribution, suggestions[1].GoalID)
		}
		for _, s := range suggestions {
			if s.Status != domain.GoalOnTrack {
				t.Errorf("goal %s: expected on_track, got %s", s.GoalID, s.Status)
			}
		}
	})

	t.Run("shortfall marks goal behind", func(t *testing.T) {
		suggestions := drawdown.Allocate(asOf, decimal.NewFromInt(55), []*domain.SavingsGoal{slow, urgent})

		if !suggestions[1].SuggestedWeeklyContribution.Equal(decimal.NewFromInt(5)) {
			t.Errorf("expected 5 left for the slow goal, got %s", suggestions[1].SuggestedWeeklyContribution)
		}
		if suggestions[1].Status != domain.GoalBehind {
			t.Errorf("expected behind, got %s", suggestions[1].Status)
		}
	})

	t.Run("funded goal reports ahead", func(t *testing.T) {
		done := &domain.SavingsGoal{
			ID:           "g-3",
			Name:         "Emergency fund",
			TargetAmount: decimal.NewFromInt(100),
			SavedSoFar:   decimal.NewFromInt(120),
			Deadline:     asOf.AddDate(0, 1, 0),
		}

		suggestions := drawdown.Allocate(asOf, decimal.NewFromInt(100), []*domain.SavingsGoal{done})

		if suggestions[0].Status != domain.GoalAhead {
			t.Errorf("expected ahead, got %s", suggestions[0].Status)
		}
		if !suggestions[0].SuggestedWeeklyContribution.IsZero() {
			t.Errorf("expected no contribution to a funded goal, got %s", suggestions[0].SuggestedWeeklyContribution)
		}
	})

	t.Run("negative surplus allocates nothing", func(t *testing.T) {
		suggestions := drawdown.Allocate(asOf, decimal.NewFromInt(-40), []*domain.SavingsGoal{urgent})

		if !suggestions[0].SuggestedWeeklyContribution.IsZero() {
			t.Errorf("expected zero allocation, got %s", suggestions[0].SuggestedWeeklyContribution)
		}
		if suggestions[0].Status != domain.GoalBehind {
			t.Errorf("expected behind, got %s", suggestions[0].Status)
		}
	})
}
