package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helios/fss/internal/adapter/http/dto"
	"github.com/helios/fss/internal/domain"
	"github.com/helios/fss/internal/usecase"
)

// CommitmentService defines the behavior needed by CommitmentHandler.
type CommitmentService interface {
	CreateCommitment(ctx context.Context, input usecase.CreateCommitmentInput) (*domain.Commitment, error)
	DeleteCommitment(ctx context.Context, id string) error
	ListCommitments(ctx context.Context) ([]*domain.Commitment, error)
}

// CommitmentHandler handles commitment HTTP requests.
type CommitmentHandler struct {
	commitmentUC CommitmentService
}

// NewCommitmentHandler creates a new CommitmentHandler.
func NewCommitmentHandler(commitmentUC CommitmentService) *CommitmentHandler {
	return &CommitmentHandler{commitmentUC: commitmentUC}
}

// Create declares a new commitment.
func (h *CommitmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCommitmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	commitment, err := h.commitmentUC.CreateCommitment(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create commitment", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.CommitmentFromDomain(commitment))
}

// Delete removes a commitment.
func (h *CommitmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing commitment ID", "")
		return
	}

	if err := h.commitmentUC.DeleteCommitment(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to delete commitment", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists all commitments.
func (h *CommitmentHandler) List(w http.ResponseWriter, r *http.Request) {
	commitments, err := h.commitmentUC.ListCommitments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list commitments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListCommitmentsResponse{
		Commitments: dto.CommitmentsFromDomain(commitments),
		Total:       int64(len(commitments)),
	})
}
