package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconview/ynab-reconciler/internal/api/dto"
	"github.com/reconview/ynab-reconciler/internal/api/handlers"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

func addRun(repo *storage.MockRepository, budgetID string, matched int) int64 {
	id, _ := repo.AppendRunLog(&storage.ReconciliationRun{
		BudgetID:     budgetID,
		AccountID:    "a1",
		StartDate:    mustDate("2026-02-01"),
		EndDate:      mustDate("2026-02-28"),
		MatchedCount: matched,
		Persisted:    true,
	})
	return id
}

func TestRunsHandler_List(t *testing.T) {
	t.Run("returns empty list when no runs", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewRunsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.RunListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Empty(t, response.Runs)
		assert.Equal(t, 0, response.Count)
	})

	t.Run("returns runs from repository", func(t *testing.T) {
		repo := storage.NewMockRepository()
		addRun(repo, "b1", 3)
		addRun(repo, "b1", 5)

		handler := handlers.NewRunsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.RunListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 2, response.Count)
		assert.Len(t, response.Runs, 2)
	})

	t.Run("respects limit parameter", func(t *testing.T) {
		repo := storage.NewMockRepository()
		for i := 0; i < 5; i++ {
			addRun(repo, "b1", i)
		}

		handler := handlers.NewRunsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/runs?limit=3", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.RunListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Len(t, response.Runs, 3)
	})
}

func TestRunsHandler_Get(t *testing.T) {
	t.Run("returns run by ID", func(t *testing.T) {
		repo := storage.NewMockRepository()
		id := addRun(repo, "b1", 4)

		handler := handlers.NewRunsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/runs/1", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "1"))
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.RunResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, id, response.ID)
		assert.Equal(t, "b1", response.BudgetID)
		assert.Equal(t, "2026-02-01", response.StartDate)
		assert.Equal(t, 4, response.MatchedCount)
		assert.True(t, response.Persisted)
		assert.NotEmpty(t, response.RunUID)
	})

	t.Run("returns 404 for non-existent run", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewRunsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/runs/999", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "999"))
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)

		var response dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, dto.ErrCodeNotFound, response.Code)
	})

	t.Run("returns 400 for invalid ID", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewRunsHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/runs/invalid", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "invalid"))
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
