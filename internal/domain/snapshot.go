package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunSummary carries the trailing-window aggregates the advice surface
// consumes: flows, taper outcome and the savings total suggested this run.
type RunSummary struct {
	WindowDays        int
	TotalTransactions int
	TotalIncoming     decimal.Decimal
	TotalOutgoing     decimal.Decimal // positive
	NetFlow           decimal.Decimal
	Entitlement       decimal.Decimal
	EntitlementLost   decimal.Decimal
	SuggestedSavings  decimal.Decimal
}

// Snapshot is the complete output of one pipeline run: the recommendation,
// the full forecast with safety classification, goal suggestions and the run
// summary. It is the sole contract the presentation layer depends on; the
// same inputs always serialize to the same bytes.
type Snapshot struct {
	ID              string
	AsOfDate        time.Time
	Recommendation  DrawdownRecommendation
	Forecast        []ForecastDay
	Buffers         []BufferState
	Obligations     []*RecurringObligation
	GoalSuggestions []GoalSuggestion
	Summary         RunSummary
	StaleSources    []string // sources whose fetch failed this run
	MalformedCount  int
	CreatedAt       time.Time
}

// Stale reports whether any source failed to refresh this run.
func (s *Snapshot) Stale() bool {
	return len(s.StaleSources) > 0
}
