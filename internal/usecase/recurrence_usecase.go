package usecase

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
)

// minOccurrences is the promotion threshold for a payee group.
const minOccurrences = 3

// confidenceSaturation is the interval count at which the count component of
// the confidence score reaches 1 (four observed occurrences).
const confidenceSaturation = 3

// RecurrenceUseCase mines ledger history for repeating payees with stable
// intervals and stable amounts. Obligations are regenerated from scratch on
// every run; nothing from a previous detection persists.
type RecurrenceUseCase struct {
	idGen IDGenerator
}

// NewRecurrenceUseCase creates a new RecurrenceUseCase.
func NewRecurrenceUseCase(idGen IDGenerator) *RecurrenceUseCase {
	return &RecurrenceUseCase{idGen: idGen}
}

// Detect returns the recurring obligations found in the given ledger
// history, ordered by payee key for deterministic output. Returns
// ErrInsufficientHistory when the ledger spans fewer days than the
// configured minimum.
func (uc *RecurrenceUseCase) Detect(entries []*domain.LedgerEntry, runDate time.Time, cfg DetectionConfig) ([]*domain.RecurringObligation, error) {
	if spanDays(entries) < cfg.MinHistoryDays {
		return nil, domain.ErrInsufficientHistory
	}

	groups := groupByPayee(entries)

	var obligations []*domain.RecurringObligation
	for _, group := range groups {
		ob := uc.detectGroup(group, runDate, cfg)
		if ob != nil {
			obligations = append(obligations, ob)
		}
	}

	sort.Slice(obligations, func(i, j int) bool {
		if obligations[i].PayeeKey != obligations[j].PayeeKey {
			return obligations[i].PayeeKey < obligations[j].PayeeKey
		}
		return obligations[i].ExpectedAmount.LessThan(obligations[j].ExpectedAmount)
	})

	return obligations, nil
}

// occurrence is one observed payment within a payee group, collapsed to one
// per calendar day.
type occurrence struct {
	date   time.Time
	amount decimal.Decimal
}

type payeeGroup struct {
	payee       string
	outflow     bool
	occurrences []occurrence
}

func spanDays(entries []*domain.LedgerEntry) int {
	if len(entries) == 0 {
		return 0
	}

	oldest, newest := entries[0].OccurredAt, entries[0].OccurredAt
	for _, e := range entries[1:] {
		if e.OccurredAt.Before(oldest) {
			oldest = e.OccurredAt
		}
		if e.OccurredAt.After(newest) {
			newest = e.OccurredAt
		}
	}

	return int(domain.DateOnly(newest).Sub(domain.DateOnly(oldest)).Hours() / 24)
}

// groupByPayee splits entries by (payee, direction). A payee that both pays
// and is paid forms two independent candidate groups.
func groupByPayee(entries []*domain.LedgerEntry) []*payeeGroup {
	type key struct {
		payee   string
		outflow bool
	}

	byKey := make(map[key]*payeeGroup)
	for _, e := range entries {
		if e.Payee == "" {
			continue
		}

		k := key{payee: e.Payee, outflow: e.IsOutflow()}
		g, ok := byKey[k]
		if !ok {
			g = &payeeGroup{payee: k.payee, outflow: k.outflow}
			byKey[k] = g
		}

		g.occurrences = append(g.occurrences, occurrence{date: domain.DateOnly(e.OccurredAt), amount: e.Amount})
	}

	groups := make([]*payeeGroup, 0, len(byKey))
	for _, g := range byKey {
		sort.Slice(g.occurrences, func(i, j int) bool {
			return g.occurrences[i].date.Before(g.occurrences[j].date)
		})
		g.occurrences = foldSameDay(g.occurrences)
		groups = append(groups, g)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].payee != groups[j].payee {
			return groups[i].payee < groups[j].payee
		}
		return groups[i].outflow
	})

	return groups
}

// foldSameDay sums same-day repeats to one occurrence per calendar day.
// Input must be date-sorted.
func foldSameDay(occurrences []occurrence) []occurrence {
	folded := occurrences[:0]
	for _, o := range occurrences {
		if n := len(folded); n > 0 && folded[n-1].date.Equal(o.date) {
			folded[n-1].amount = folded[n-1].amount.Add(o.amount)
			continue
		}
		folded = append(folded, o)
	}

	return folded
}

func (uc *RecurrenceUseCase) detectGroup(group *payeeGroup, runDate time.Time, cfg DetectionConfig) *domain.RecurringObligation {
	if len(group.occurrences) < minOccurrences {
		return nil
	}

	// Amount stability: keep occurrences within tolerance of the median,
	// then require the promotion threshold still holds.
	median := medianAmount(group.occurrences)
	if median.IsZero() {
		return nil
	}

	stable := withinTolerance(group.occurrences, median, cfg.AmountTolerance)
	if len(stable) < minOccurrences {
		return nil
	}

	intervals := dayIntervals(stable)
	meanInterval := mean(intervals)
	if meanInterval < 1 {
		return nil
	}

	cadence, ok := classifyCadence(stable, meanInterval)
	if !ok {
		return nil
	}

	last := stable[len(stable)-1]

	ob := &domain.RecurringObligation{
		ID:               uc.idGen.Generate(),
		PayeeKey:         group.payee,
		ExpectedAmount:   medianAmount(stable),
		Cadence:          cadence,
		Confidence:       confidence(stable, intervals),
		Occurrences:      len(stable),
		LastObservedDate: last.date,
	}
	ob.LowConfidence = ob.Confidence < cfg.ConfidenceFloor
	ob.AdvanceNextExpected(runDate)

	return ob
}

// classifyCadence maps a mean interval onto a cadence, using the same
// windows the original spend-log analysis settled on.
func classifyCadence(occurrences []occurrence, meanInterval float64) (domain.Cadence, bool) {
	last := occurrences[len(occurrences)-1]

	switch {
	case meanInterval >= 6.5 && meanInterval <= 7.5:
		return domain.Cadence{
			Kind:    domain.CadenceWeekly,
			Weekday: modeWeekday(occurrences),
			Anchor:  last.date,
		}, true
	case meanInterval >= 13 && meanInterval <= 15:
		return domain.Cadence{
			Kind:    domain.CadenceFortnightly,
			Weekday: modeWeekday(occurrences),
			Anchor:  last.date,
		}, true
	case meanInterval >= 28 && meanInterval <= 32:
		return domain.Cadence{
			Kind:       domain.CadenceMonthly,
			DayOfMonth: modeDayOfMonth(occurrences),
			Anchor:     last.date,
		}, true
	case meanInterval >= 2 && meanInterval <= 120:
		return domain.Cadence{
			Kind:         domain.CadenceCustom,
			IntervalDays: int(math.Round(meanInterval)),
			Anchor:       last.date,
		}, true
	}

	return domain.Cadence{}, false
}

// confidence scores a group in [0,1]: higher occurrence count raises it,
// amount and interval variance lower it. Monotonic in count, anti-monotonic
// in both variances.
func confidence(occurrences []occurrence, intervals []float64) float64 {
	countScore := float64(len(occurrences)-1) / confidenceSaturation
	if countScore > 1 {
		countScore = 1
	}

	amounts := make([]float64, len(occurrences))
	for i, o := range occurrences {
		amounts[i], _ = o.amount.Abs().Float64()
	}

	score := countScore * (1 - clamp01(variationCoefficient(amounts))) * (1 - clamp01(variationCoefficient(intervals)))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}

	return score
}

func withinTolerance(occurrences []occurrence, median decimal.Decimal, tolerance decimal.Decimal) []occurrence {
	band := median.Abs().Mul(tolerance)

	var kept []occurrence
	for _, o := range occurrences {
		if o.amount.Sub(median).Abs().LessThanOrEqual(band) {
			kept = append(kept, o)
		}
	}

	return kept
}

func medianAmount(occurrences []occurrence) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(occurrences))
	for i, o := range occurrences {
		amounts[i] = o.amount
	}

	sort.Slice(amounts, func(i, j int) bool { return amounts[i].LessThan(amounts[j]) })

	n := len(amounts)
	if n%2 == 1 {
		return amounts[n/2]
	}

	return amounts[n/2-1].Add(amounts[n/2]).Div(decimal.NewFromInt(2))
}

func dayIntervals(occurrences []occurrence) []float64 {
	intervals := make([]float64, 0, len(occurrences)-1)
	for i := 1; i < len(occurrences); i++ {
		intervals = append(intervals, occurrences[i].date.Sub(occurrences[i-1].date).Hours()/24)
	}

	return intervals
}

func modeDayOfMonth(occurrences []occurrence) int {
	counts := make(map[int]int)
	for _, o := range occurrences {
		counts[o.date.Day()]++
	}

	best, bestCount := occurrences[len(occurrences)-1].date.Day(), 0
	for day, count := range counts {
		if count > bestCount || (count == bestCount && day < best) {
			best, bestCount = day, count
		}
	}

	return best
}

func modeWeekday(occurrences []occurrence) time.Weekday {
	counts := make(map[time.Weekday]int)
	for _, o := range occurrences {
		counts[o.date.Weekday()]++
	}

	best, bestCount := occurrences[len(occurrences)-1].date.Weekday(), 0
	for wd, count := range counts {
		if count > bestCount || (count == bestCount && wd < best) {
			best, bestCount = wd, count
		}
	}

	return best
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// variationCoefficient is stddev/mean; 0 for perfectly stable series.
func variationCoefficient(values []float64) float64 {
	m := mean(values)
	if m == 0 || len(values) < 2 {
		return 0
	}

	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}

	return math.Sqrt(sumSq/float64(len(values))) / math.Abs(m)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
