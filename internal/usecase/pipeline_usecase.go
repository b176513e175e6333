package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
)

// PipelineUseCase runs the full daily evaluation: ingest, detect, forecast,
// classify, recommend, allocate, publish. One run produces exactly one
// snapshot or nothing; the output set commits atomically.
type PipelineUseCase struct {
	ingest     *IngestUseCase
	recurrence *RecurrenceUseCase
	forecast   *ForecastUseCase
	drawdown   *DrawdownUseCase

	ledgerRepo     LedgerRepository
	snapshotRepo   SnapshotRepository
	goalRepo       GoalRepository
	commitmentRepo CommitmentRepository
	txManager      TransactionManager
	idGen          IDGenerator
	cache          Cache

	cfg PipelineConfig
}

// NewPipelineUseCase creates a new PipelineUseCase.
func NewPipelineUseCase(
	ingest *IngestUseCase,
	recurrence *RecurrenceUseCase,
	forecast *ForecastUseCase,
	drawdown *DrawdownUseCase,
	ledgerRepo LedgerRepository,
	snapshotRepo SnapshotRepository,
	goalRepo GoalRepository,
	commitmentRepo CommitmentRepository,
	txManager TransactionManager,
	idGen IDGenerator,
	cache Cache,
	cfg PipelineConfig,
) *PipelineUseCase {
	return &PipelineUseCase{
		ingest:         ingest,
		recurrence:     recurrence,
		forecast:       forecast,
		drawdown:       drawdown,
		ledgerRepo:     ledgerRepo,
		snapshotRepo:   snapshotRepo,
		goalRepo:       goalRepo,
		commitmentRepo: commitmentRepo,
		txManager:      txManager,
		idGen:          idGen,
		cache:          cache,
		cfg:            cfg,
	}
}

const latestSnapshotCacheKey = "snapshot:latest"

// Run executes one pipeline pass for the given evaluation date.
// ConfigurationError aborts before any work; ingestion failures degrade to a
// stale-labeled snapshot; insufficient history degrades to a conservative
// zero-drawdown recommendation.
func (uc *PipelineUseCase) Run(ctx context.Context, asOf time.Time) (*domain.Snapshot, error) {
	if err := uc.cfg.Safety.Validate(); err != nil {
		return nil, err
	}

	asOf = domain.DateOnly(asOf)

	ingestResult, err := uc.ingest.Run(ctx, asOf)
	if err != nil {
		return nil, err
	}

	entries, err := uc.ledgerRepo.ListSince(ctx, asOf.AddDate(0, 0, -uc.cfg.LookbackDays))
	if err != nil {
		return nil, err
	}

	balance, err := uc.ledgerRepo.TotalBalance(ctx)
	if err != nil {
		return nil, err
	}

	commitments, err := uc.commitmentRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	goals, err := uc.goalRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.Snapshot{
		ID:             uc.idGen.Generate(),
		AsOfDate:       asOf,
		StaleSources:   ingestResult.StaleSources,
		MalformedCount: ingestResult.Malformed,
		CreatedAt:      time.Now().UTC(),
	}

	obligations, err := uc.recurrence.Detect(entries, asOf, uc.cfg.Detection)
	insufficientHistory := errors.Is(err, domain.ErrInsufficientHistory)
	if err != nil && !insufficientHistory {
		return nil, err
	}

	days, items := uc.forecast.Generate(asOf, balance, obligations, commitments, uc.cfg.Forecast)
	buffers := uc.forecast.Classify(days, uc.cfg.Safety)

	periodInflows := uc.windowInflows(entries, asOf)

	var rec domain.DrawdownRecommendation
	if insufficientHistory {
		// Fail conservative: no obligations could be derived, so no
		// drawdown is offered.
		rec = domain.DrawdownRecommendation{
			AsOfDate:          asOf,
			RecommendedAmount: decimal.Zero,
			SafetyLevel:       domain.SafetyCaution,
			Rationale: []string{fmt.Sprintf(
				"insufficient history: ledger spans fewer than %d days; zero drawdown recommended",
				uc.cfg.Detection.MinHistoryDays)},
		}
	} else {
		rec = uc.drawdown.Recommend(RecommendInput{
			AsOf:           asOf,
			CurrentBalance: balance,
			Buffers:        buffers,
			Items:          items,
			Commitments:    commitments,
			Entries:        entries,
			PeriodInflows:  periodInflows,
			Safety:         uc.cfg.Safety,
		})
	}

	allocatable := balance.Sub(uc.cfg.Safety.ReserveThreshold).Sub(rec.RecommendedAmount)
	suggestions := uc.drawdown.Allocate(asOf, allocatable, goals)

	snapshot.Recommendation = rec
	snapshot.Forecast = days
	snapshot.Buffers = buffers
	snapshot.Obligations = obligations
	snapshot.GoalSuggestions = suggestions
	snapshot.Summary = uc.summarize(entries, asOf, suggestions)

	if err := uc.publish(ctx, snapshot, suggestions); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// publish commits the run's entire output set in one transaction.
func (uc *PipelineUseCase) publish(ctx context.Context, snapshot *domain.Snapshot, suggestions []domain.GoalSuggestion) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.snapshotRepo.Create(ctx, tx, snapshot); err != nil {
		return err
	}

	if err := uc.goalRepo.SaveSuggestions(ctx, tx, snapshot.AsOfDate, suggestions); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	// Best effort; a stale cache entry expires on its own TTL.
	_ = uc.cache.Delete(ctx, latestSnapshotCacheKey)

	return nil
}

func (uc *PipelineUseCase) windowInflows(entries []*domain.LedgerEntry, asOf time.Time) decimal.Decimal {
	start := asOf.AddDate(0, 0, -uc.cfg.SummaryWindowDays)

	total := decimal.Zero
	for _, e := range entries {
		if e.OccurredAt.Before(start) || e.OccurredAt.After(asOf) {
			continue
		}
		if !e.IsOutflow() {
			total = total.Add(e.Amount)
		}
	}

	return total
}

func (uc *PipelineUseCase) summarize(entries []*domain.LedgerEntry, asOf time.Time, suggestions []domain.GoalSuggestion) domain.RunSummary {
	start := asOf.AddDate(0, 0, -uc.cfg.SummaryWindowDays)

	summary := domain.RunSummary{
		WindowDays:    uc.cfg.SummaryWindowDays,
		TotalIncoming: decimal.Zero,
		TotalOutgoing: decimal.Zero,
	}

	for _, e := range entries {
		if e.OccurredAt.Before(start) || e.OccurredAt.After(asOf) {
			continue
		}

		summary.TotalTransactions++
		if e.IsOutflow() {
			summary.TotalOutgoing = summary.TotalOutgoing.Add(e.Amount.Abs())
		} else {
			summary.TotalIncoming = summary.TotalIncoming.Add(e.Amount)
		}
	}

	summary.NetFlow = summary.TotalIncoming.Sub(summary.TotalOutgoing)
	summary.Entitlement = uc.cfg.Safety.Taper.AdjustedEntitlement(summary.TotalIncoming)
	summary.EntitlementLost = uc.cfg.Safety.Taper.MaxEntitlement.Sub(summary.Entitlement)

	summary.SuggestedSavings = decimal.Zero
	for _, s := range suggestions {
		summary.SuggestedSavings = summary.SuggestedSavings.Add(s.SuggestedWeeklyContribution)
	}

	return summary
}

// WhatIf replays a stored snapshot's forecast against a hypothetical reserve
// threshold without touching the ledger. The replay is pure, so results are
// cached.
func (uc *PipelineUseCase) WhatIf(ctx context.Context, asOf time.Time, reserveThreshold decimal.Decimal) (*domain.Snapshot, error) {
	if reserveThreshold.LessThanOrEqual(decimal.Zero) {
		return nil, &domain.ConfigurationError{Field: "reserve_threshold"}
	}

	asOf = domain.DateOnly(asOf)

	stored, err := uc.snapshotRepo.GetByDate(ctx, asOf)
	if err != nil {
		return nil, err
	}

	safety := uc.cfg.Safety
	safety.ReserveThreshold = reserveThreshold

	buffers := uc.forecast.Classify(stored.Forecast, safety)

	currentBalance := decimal.Zero
	if len(stored.Forecast) > 0 {
		currentBalance = stored.Forecast[0].OpeningBalance
	}

	rec := uc.drawdown.Recommend(RecommendInput{
		AsOf:           asOf,
		CurrentBalance: currentBalance,
		Buffers:        buffers,
		Commitments:    nil, // priority state was settled by the stored run
		PeriodInflows:  stored.Summary.TotalIncoming,
		Safety:         safety,
	})

	replay := *stored
	replay.Buffers = buffers
	replay.Recommendation = rec

	return &replay, nil
}
