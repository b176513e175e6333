package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/adapter/http/dto"
	"github.com/helios/fss/internal/domain"
)

// SnapshotService defines the read-side behavior needed by SnapshotHandler.
type SnapshotService interface {
	GetLatest(ctx context.Context) (*domain.Snapshot, error)
	GetByDate(ctx context.Context, asOf time.Time) (*domain.Snapshot, error)
	ListDates(ctx context.Context, limit, offset int) ([]time.Time, error)
}

// PipelineService defines the evaluation behavior needed by SnapshotHandler.
type PipelineService interface {
	Run(ctx context.Context, asOf time.Time) (*domain.Snapshot, error)
	WhatIf(ctx context.Context, asOf time.Time, reserveThreshold decimal.Decimal) (*domain.Snapshot, error)
}

// SnapshotHandler handles snapshot and evaluation HTTP requests.
type SnapshotHandler struct {
	snapshotUC SnapshotService
	pipelineUC PipelineService
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(snapshotUC SnapshotService, pipelineUC PipelineService) *SnapshotHandler {
	return &SnapshotHandler{snapshotUC: snapshotUC, pipelineUC: pipelineUC}
}

const dateLayout = "2006-01-02"

// GetLatest returns the most recent snapshot.
func (h *SnapshotHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.snapshotUC.GetLatest(r.Context())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get latest snapshot", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotFromDomain(snapshot))
}

// GetByDate returns the snapshot for a specific evaluation date.
func (h *SnapshotHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "date")

	asOf, err := time.Parse(dateLayout, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", "expected YYYY-MM-DD")
		return
	}

	snapshot, err := h.snapshotUC.GetByDate(r.Context(), asOf)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get snapshot", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotFromDomain(snapshot))
}

// ListDates lists evaluation dates with published snapshots, newest first.
func (h *SnapshotHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 30)
	offset := parseIntQuery(r, "offset", 0)

	dates, err := h.snapshotUC.ListDates(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list snapshot dates", err.Error())
		return
	}

	resp := dto.SnapshotDatesResponse{Dates: make([]string, len(dates))}
	for i, d := range dates {
		resp.Dates[i] = d.Format(dateLayout)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Run triggers a full evaluation for today and returns the published
// snapshot.
func (h *SnapshotHandler) Run(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.pipelineUC.Run(r.Context(), time.Now().UTC())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "evaluation run failed", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.SnapshotFromDomain(snapshot))
}

// WhatIf replays a stored snapshot against a hypothetical reserve threshold.
// The result is returned but never persisted.
func (h *SnapshotHandler) WhatIf(w http.ResponseWriter, r *http.Request) {
	var req dto.WhatIfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	snapshot, err := h.pipelineUC.WhatIf(r.Context(), req.AsOfDate, req.ReserveThreshold)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "what-if evaluation failed", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotFromDomain(snapshot))
}
