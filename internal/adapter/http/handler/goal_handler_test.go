package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/adapter/http/dto"
	"github.com/helios/fss/internal/domain"
	"github.com/helios/fss/internal/usecase"
)

type goalServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateGoalInput) (*domain.SavingsGoal, error)
	updateFn func(ctx context.Context, input usecase.UpdateGoalInput) (*domain.SavingsGoal, error)
	getFn    func(ctx context.Context, id string) (*domain.SavingsGoal, error)
	listFn   func(ctx context.Context) ([]*domain.SavingsGoal, error)
}

func (s *goalServiceStub) CreateGoal(ctx context.Context, input usecase.CreateGoalInput) (*domain.SavingsGoal, error) {
	return s.createFn(ctx, input)
}

func (s *goalServiceStub) UpdateGoal(ctx context.Context, input usecase.UpdateGoalInput) (*domain.SavingsGoal, error) {
	return s.updateFn(ctx, input)
}

func (s *goalServiceStub) GetGoal(ctx context.Context, id string) (*domain.SavingsGoal, error) {
	return s.getFn(ctx, id)
}

func (s *goalServiceStub) ListGoals(ctx context.Context) ([]*domain.SavingsGoal, error) {
	return s.listFn(ctx)
}

func TestGoalHandler_Create_Success(t *testing.T) {
	goal := &domain.SavingsGoal{
		ID:           "goal-1",
		Name:         "Greece",
		TargetAmount: decimal.NewFromInt(1200),
		Deadline:     time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	var captured usecase.CreateGoalInput
	h := NewGoalHandler(&goalServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateGoalInput) (*domain.SavingsGoal, error) {
			captured = input
			return goal, nil
		},
	})

	body, _ := json.Marshal(dto.CreateGoalRequest{
		Name:         "Greece",
		TargetAmount: decimal.NewFromInt(1200),
		Deadline:     time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	})

	req := httptest.NewRequest(http.MethodPost, "/goals", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Name != "Greece" || !captured.TargetAmount.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.GoalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "goal-1" {
		t.Fatalf("expected goal ID goal-1, got %s", resp.ID)
	}
}

func TestGoalHandler_Create_InvalidJSON(t *testing.T) {
	h := NewGoalHandler(&goalServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateGoalInput) (*domain.SavingsGoal, error) {
			t.Fatal("CreateGoal should not be called for invalid payload")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/goals", bytes.NewBufferString("{invalid json"))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGoalHandler_Create_ValidationError(t *testing.T) {
	h := NewGoalHandler(&goalServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateGoalInput) (*domain.SavingsGoal, error) {
			return nil, domain.ErrInvalidGoalName
		},
	})

	body, _ := json.Marshal(dto.CreateGoalRequest{TargetAmount: decimal.NewFromInt(100)})
	req := httptest.NewRequest(http.MethodPost, "/goals", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGoalHandler_Get_NotFound(t *testing.T) {
	h := NewGoalHandler(&goalServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.SavingsGoal, error) {
			return nil, domain.ErrGoalNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/goals/goal-1", nil)
	req = setChiURLParam(req, "id", "goal-1")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGoalHandler_Update(t *testing.T) {
	h := NewGoalHandler(&goalServiceStub{
		updateFn: func(ctx context.Context, input usecase.UpdateGoalInput) (*domain.SavingsGoal, error) {
			if input.ID != "goal-1" {
				t.Fatalf("expected id goal-1, got %s", input.ID)
			}
			return &domain.SavingsGoal{ID: input.ID, Name: input.Name, TargetAmount: input.TargetAmount}, nil
		},
	})

	body, _ := json.Marshal(dto.UpdateGoalRequest{
		Name:         "Greece",
		TargetAmount: decimal.NewFromInt(1500),
		SavedSoFar:   decimal.NewFromInt(400),
	})

	req := httptest.NewRequest(http.MethodPut, "/goals/goal-1", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "goal-1")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGoalHandler_List(t *testing.T) {
	h := NewGoalHandler(&goalServiceStub{
		listFn: func(ctx context.Context) ([]*domain.SavingsGoal, error) {
			return []*domain.SavingsGoal{{ID: "goal-1"}, {ID: "goal-2"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/goals", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListGoalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Goals) != 2 || resp.Total != 2 {
		t.Fatalf("expected 2 goals, got %+v", resp)
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}
