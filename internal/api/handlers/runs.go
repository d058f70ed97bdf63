package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reconview/ynab-reconciler/internal/api/dto"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

// RunsHandler handles reconciliation run history HTTP requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/runs - returns past reconciliation runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	runs, err := h.repo.ListRuns(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}

	for _, run := range runs {
		response.Runs = append(response.Runs, toRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns a single run by ID.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid run ID"))
		return
	}

	run, err := h.repo.GetRun(id)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	if run == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("reconciliation run"))
		return
	}

	h.WriteJSON(w, http.StatusOK, toRunResponse(*run))
}

// toRunResponse converts a storage run to an API response.
func toRunResponse(run storage.ReconciliationRun) dto.RunResponse {
	response := dto.RunResponse{
		ID:              run.ID,
		RunUID:          run.RunUID,
		BudgetID:        run.BudgetID,
		AccountID:       run.AccountID,
		StartDate:       run.StartDate.Format(storage.DateFormat),
		EndDate:         run.EndDate.Format(storage.DateFormat),
		MatchedCount:    run.MatchedCount,
		MissingCount:    run.MissingCount,
		UnexpectedCount: run.UnexpectedCount,
		Persisted:       run.Persisted,
		ConfigJSON:      run.ConfigJSON,
	}
	if !run.CreatedAt.IsZero() {
		response.CreatedAt = run.CreatedAt.UTC().Format(time.RFC3339)
	}
	return response
}
