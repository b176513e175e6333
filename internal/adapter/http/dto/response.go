package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
)

// GoalResponse represents a savings goal in API responses.
type GoalResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SavedSoFar   decimal.Decimal `json:"saved_so_far"`
	Deadline     time.Time       `json:"deadline"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// GoalFromDomain converts a domain goal to a response.
func GoalFromDomain(g *domain.SavingsGoal) *GoalResponse {
	return &GoalResponse{
		ID:           g.ID,
		Name:         g.Name,
		TargetAmount: g.TargetAmount,
		SavedSoFar:   g.SavedSoFar,
		Deadline:     g.Deadline,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

// GoalsFromDomain converts domain goals to responses.
func GoalsFromDomain(goals []*domain.SavingsGoal) []*GoalResponse {
	result := make([]*GoalResponse, len(goals))
	for i, g := range goals {
		result[i] = GoalFromDomain(g)
	}
	return result
}

// ListGoalsResponse represents a list of savings goals.
type ListGoalsResponse struct {
	Goals []*GoalResponse `json:"goals"`
	Total int64           `json:"total"`
}

// CommitmentResponse represents a commitment in API responses.
type CommitmentResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Cadence   CadenceRequest  `json:"cadence"`
	OneOff    bool            `json:"one_off"`
	DueDate   *time.Time      `json:"due_date,omitempty"`
	Priority  bool            `json:"priority"`
	CreatedAt time.Time       `json:"created_at"`
}

// CommitmentFromDomain converts a domain commitment to a response.
func CommitmentFromDomain(c *domain.Commitment) *CommitmentResponse {
	resp := &CommitmentResponse{
		ID:     c.ID,
		Name:   c.Name,
		Amount: c.Amount,
		Cadence: CadenceRequest{
			Kind:         string(c.Cadence.Kind),
			DayOfMonth:   c.Cadence.DayOfMonth,
			Weekday:      int(c.Cadence.Weekday),
			IntervalDays: c.Cadence.IntervalDays,
		},
		OneOff:    c.OneOff,
		Priority:  c.Priority,
		CreatedAt: c.CreatedAt,
	}
	if !c.Cadence.Anchor.IsZero() {
		anchor := c.Cadence.Anchor
		resp.Cadence.Anchor = &anchor
	}
	if !c.DueDate.IsZero() {
		due := c.DueDate
		resp.DueDate = &due
	}
	return resp
}

// CommitmentsFromDomain converts domain commitments to responses.
func CommitmentsFromDomain(commitments []*domain.Commitment) []*CommitmentResponse {
	result := make([]*CommitmentResponse, len(commitments))
	for i, c := range commitments {
		result[i] = CommitmentFromDomain(c)
	}
	return result
}

// ListCommitmentsResponse represents a list of commitments.
type ListCommitmentsResponse struct {
	Commitments []*CommitmentResponse `json:"commitments"`
	Total       int64                 `json:"total"`
}

// RecommendationResponse represents the drawdown recommendation.
type RecommendationResponse struct {
	AsOfDate          string          `json:"as_of_date"`
	RecommendedAmount decimal.Decimal `json:"recommended_amount"`
	SafetyLevel       string          `json:"safety_level"`
	Rationale         []string        `json:"rationale"`
	EarliestSafeDate  *string         `json:"earliest_safe_date,omitempty"`
}

// ForecastDayResponse represents one projected day.
type ForecastDayResponse struct {
	Date             string          `json:"date"`
	OpeningBalance   decimal.Decimal `json:"opening_balance"`
	ScheduledInflows decimal.Decimal `json:"scheduled_inflows"`
	ScheduledOutflow decimal.Decimal `json:"scheduled_outflow"`
	ClosingBalance   decimal.Decimal `json:"closing_balance"`
	SafetyLevel      string          `json:"safety_level"`
	SurplusOrDeficit decimal.Decimal `json:"surplus_or_deficit"`
}

// ObligationResponse represents a detected recurring obligation.
type ObligationResponse struct {
	ID               string          `json:"id"`
	PayeeKey         string          `json:"payee_key"`
	ExpectedAmount   decimal.Decimal `json:"expected_amount"`
	CadenceKind      string          `json:"cadence_kind"`
	Confidence       float64         `json:"confidence"`
	LowConfidence    bool            `json:"low_confidence"`
	Occurrences      int             `json:"occurrences"`
	NextExpectedDate string          `json:"next_expected_date"`
}

// GoalSuggestionResponse represents a derived goal contribution.
type GoalSuggestionResponse struct {
	GoalID                      string          `json:"goal_id"`
	GoalName                    string          `json:"goal_name"`
	SuggestedWeeklyContribution decimal.Decimal `json:"suggested_weekly_contribution"`
	Status                      string          `json:"status"`
}

// SummaryResponse represents the trailing-window aggregates.
type SummaryResponse struct {
	WindowDays        int             `json:"window_days"`
	TotalTransactions int             `json:"total_transactions"`
	TotalIncoming     decimal.Decimal `json:"total_incoming"`
	TotalOutgoing     decimal.Decimal `json:"total_outgoing"`
	NetFlow           decimal.Decimal `json:"net_flow"`
	Entitlement       decimal.Decimal `json:"entitlement"`
	EntitlementLost   decimal.Decimal `json:"entitlement_lost"`
	SuggestedSavings  decimal.Decimal `json:"suggested_savings"`
}

// SnapshotResponse represents a full evaluation snapshot.
type SnapshotResponse struct {
	ID              string                   `json:"id"`
	AsOfDate        string                   `json:"as_of_date"`
	Recommendation  RecommendationResponse   `json:"recommendation"`
	Forecast        []ForecastDayResponse    `json:"forecast"`
	Obligations     []ObligationResponse     `json:"obligations"`
	GoalSuggestions []GoalSuggestionResponse `json:"goal_suggestions"`
	Summary         SummaryResponse          `json:"summary"`
	Stale           bool                     `json:"stale"`
	StaleSources    []string                 `json:"stale_sources,omitempty"`
	MalformedCount  int                      `json:"malformed_count"`
	CreatedAt       time.Time                `json:"created_at"`
}

const dateLayout = "2006-01-02"

// SnapshotFromDomain converts a domain snapshot to a response, joining each
// forecast day with its safety classification.
func SnapshotFromDomain(s *domain.Snapshot) *SnapshotResponse {
	rec := RecommendationResponse{
		AsOfDate:          s.Recommendation.AsOfDate.Format(dateLayout),
		RecommendedAmount: s.Recommendation.RecommendedAmount,
		SafetyLevel:       string(s.Recommendation.SafetyLevel),
		Rationale:         s.Recommendation.Rationale,
	}
	if s.Recommendation.EarliestSafeDate != nil {
		d := s.Recommendation.EarliestSafeDate.Format(dateLayout)
		rec.EarliestSafeDate = &d
	}

	forecast := make([]ForecastDayResponse, len(s.Forecast))
	for i, day := range s.Forecast {
		forecast[i] = ForecastDayResponse{
			Date:             day.Date.Format(dateLayout),
			OpeningBalance:   day.OpeningBalance,
			ScheduledInflows: day.ScheduledInflows,
			ScheduledOutflow: day.ScheduledOutflow,
			ClosingBalance:   day.ClosingBalance,
		}
		if i < len(s.Buffers) {
			forecast[i].SafetyLevel = string(s.Buffers[i].SafetyLevel)
			forecast[i].SurplusOrDeficit = s.Buffers[i].SurplusOrDeficit
		}
	}

	obligations := make([]ObligationResponse, len(s.Obligations))
	for i, ob := range s.Obligations {
		obligations[i] = ObligationResponse{
			ID:               ob.ID,
			PayeeKey:         ob.PayeeKey,
			ExpectedAmount:   ob.ExpectedAmount,
			CadenceKind:      string(ob.Cadence.Kind),
			Confidence:       ob.Confidence,
			LowConfidence:    ob.LowConfidence,
			Occurrences:      ob.Occurrences,
			NextExpectedDate: ob.NextExpectedDate.Format(dateLayout),
		}
	}

	suggestions := make([]GoalSuggestionResponse, len(s.GoalSuggestions))
	for i, sg := range s.GoalSuggestions {
		suggestions[i] = GoalSuggestionResponse{
			GoalID:                      sg.GoalID,
			GoalName:                    sg.GoalName,
			SuggestedWeeklyContribution: sg.SuggestedWeeklyContribution,
			Status:                      string(sg.Status),
		}
	}

	return &SnapshotResponse{
		ID:             s.ID,
		AsOfDate:       s.AsOfDate.Format(dateLayout),
		Recommendation: rec,
		Forecast:       forecast,
		Obligations:    obligations,
		GoalSuggestions: suggestions,
		Summary: SummaryResponse{
			WindowDays:        s.Summary.WindowDays,
			TotalTransactions: s.Summary.TotalTransactions,
			TotalIncoming:     s.Summary.TotalIncoming,
			TotalOutgoing:     s.Summary.TotalOutgoing,
			NetFlow:           s.Summary.NetFlow,
			Entitlement:       s.Summary.Entitlement,
			EntitlementLost:   s.Summary.EntitlementLost,
			SuggestedSavings:  s.Summary.SuggestedSavings,
		},
		Stale:          s.Stale(),
		StaleSources:   s.StaleSources,
		MalformedCount: s.MalformedCount,
		CreatedAt:      s.CreatedAt,
	}
}

// SnapshotDatesResponse lists evaluation dates with published snapshots.
type SnapshotDatesResponse struct {
	Dates []string `json:"dates"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
