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

// GoalService defines the behavior needed by GoalHandler.
type GoalService interface {
	CreateGoal(ctx context.Context, input usecase.CreateGoalInput) (*domain.SavingsGoal, error)
	UpdateGoal(ctx context.Context, input usecase.UpdateGoalInput) (*domain.SavingsGoal, error)
	GetGoal(ctx context.Context, id string) (*domain.SavingsGoal, error)
	ListGoals(ctx context.Context) ([]*domain.SavingsGoal, error)
}

// GoalHandler handles savings goal HTTP requests.
type GoalHandler struct {
	goalUC GoalService
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalUC GoalService) *GoalHandler {
	return &GoalHandler{goalUC: goalUC}
}

// Create declares a new savings goal.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	goal, err := h.goalUC.CreateGoal(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create goal", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.GoalFromDomain(goal))
}

// Update changes a goal's target, progress or deadline.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing goal ID", "")
		return
	}

	var req dto.UpdateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	goal, err := h.goalUC.UpdateGoal(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to update goal", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.GoalFromDomain(goal))
}

// Get retrieves a goal by ID.
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing goal ID", "")
		return
	}

	goal, err := h.goalUC.GetGoal(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get goal", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.GoalFromDomain(goal))
}

// List lists all savings goals.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goalUC.ListGoals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list goals", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListGoalsResponse{
		Goals: dto.GoalsFromDomain(goals),
		Total: int64(len(goals)),
	})
}
