package dto_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios/fss/internal/adapter/http/dto"
	"github.com/helios/fss/internal/domain"
)

func TestSnapshotFromDomain(t *testing.T) {
	asOf := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	safeDate := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)

	snapshot := &domain.Snapshot{
		ID:       "snap-1",
		AsOfDate: asOf,
		Recommendation: domain.DrawdownRecommendation{
			AsOfDate:          asOf,
			RecommendedAmount: decimal.Zero,
			SafetyLevel:       domain.SafetyUnsafe,
			Rationale:         []string{"projected deficit of -100.00 on 2025-06-12"},
			EarliestSafeDate:  &safeDate,
		},
		Forecast: []domain.ForecastDay{
			{
				Date:             asOf.AddDate(0, 0, 1),
				OpeningBalance:   decimal.NewFromInt(1900),
				ScheduledOutflow: decimal.NewFromInt(650),
				ClosingBalance:   decimal.NewFromInt(1250),
			},
		},
		Buffers: []domain.BufferState{
			{
				Date:             asOf.AddDate(0, 0, 1),
				SurplusOrDeficit: decimal.NewFromInt(-750),
				SafetyLevel:      domain.SafetyUnsafe,
			},
		},
		Obligations: []*domain.RecurringObligation{
			{
				ID:               "ob-1",
				PayeeKey:         "acme lettings",
				ExpectedAmount:   decimal.NewFromInt(-650),
				Cadence:          domain.Cadence{Kind: domain.CadenceMonthly, DayOfMonth: 15},
				Confidence:       0.95,
				Occurrences:      4,
				NextExpectedDate: time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
			},
		},
		GoalSuggestions: []domain.GoalSuggestion{
			{
				GoalID:                      "goal-1",
				GoalName:                    "Greece",
				SuggestedWeeklyContribution: decimal.NewFromInt(50),
				Status:                      domain.GoalOnTrack,
			},
		},
		MalformedCount: 2,
	}

	resp := dto.SnapshotFromDomain(snapshot)

	require.NotNil(t, resp)
	assert.Equal(t, "snap-1", resp.ID)
	assert.Equal(t, "2025-06-10", resp.AsOfDate)
	assert.Equal(t, "unsafe", resp.Recommendation.SafetyLevel)
	require.NotNil(t, resp.Recommendation.EarliestSafeDate)
	assert.Equal(t, "2025-06-13", *resp.Recommendation.EarliestSafeDate)

	require.Len(t, resp.Forecast, 1)
	assert.Equal(t, "2025-06-11", resp.Forecast[0].Date)
	assert.Equal(t, "unsafe", resp.Forecast[0].SafetyLevel)
	assert.True(t, resp.Forecast[0].SurplusOrDeficit.Equal(decimal.NewFromInt(-750)))

	require.Len(t, resp.Obligations, 1)
	assert.Equal(t, "acme lettings", resp.Obligations[0].PayeeKey)
	assert.Equal(t, "monthly", resp.Obligations[0].CadenceKind)
	assert.Equal(t, "2025-07-15", resp.Obligations[0].NextExpectedDate)

	require.Len(t, resp.GoalSuggestions, 1)
	assert.Equal(t, "on_track", resp.GoalSuggestions[0].Status)

	assert.False(t, resp.Stale)
	assert.Equal(t, 2, resp.MalformedCount)
}

func TestCommitmentFromDomainNullableDates(t *testing.T) {
	recurring := &domain.Commitment{
		ID:     "cmt-1",
		Name:   "Rent",
		Amount: decimal.NewFromInt(-300),
		Cadence: domain.Cadence{
			Kind:       domain.CadenceMonthly,
			DayOfMonth: 1,
		},
		Priority: true,
	}

	resp := dto.CommitmentFromDomain(recurring)
	assert.Nil(t, resp.DueDate)
	assert.Nil(t, resp.Cadence.Anchor)
	assert.True(t, resp.Priority)

	oneOff := &domain.Commitment{
		ID:      "cmt-2",
		Name:    "Boiler repair",
		Amount:  decimal.NewFromInt(-650),
		OneOff:  true,
		DueDate: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
	}

	resp = dto.CommitmentFromDomain(oneOff)
	require.NotNil(t, resp.DueDate)
	assert.Equal(t, "2025-06-20", resp.DueDate.Format("2006-01-02"))
}
