package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconview/ynab-reconciler/internal/adapters/ynab"
	"github.com/reconview/ynab-reconciler/internal/api/dto"
	"github.com/reconview/ynab-reconciler/internal/api/handlers"
	"github.com/reconview/ynab-reconciler/internal/domain/matcher"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

func TestReconcileHandler_Run(t *testing.T) {
	t.Run("reconciles and returns the report", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.AddTransaction(storage.StatementTransaction{Date: mustDate("2026-02-12"), Amount: 30.00, Reference: "r1"})

		ledger := &fakeLedger{txns: []ynab.Transaction{
			{ID: "t1", Date: "2026-02-12", Amount: -30000, AccountID: "a1"},
		}}
		handler := handlers.NewReconcileHandler(newTestService(repo, ledger), matcher.DefaultConfig(), "orange")

		body := `{"budget_id":"b1","account_id":"a1","start_date":"2026-02-01","end_date":"2026-02-28"}`
		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Run(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.ReconcileResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 1, response.MatchedCount)
		assert.Empty(t, response.Error)
		require.Len(t, response.Matched, 1)
		assert.Equal(t, "t1", response.Matched[0].Ledger.ID)
		assert.True(t, response.Actions.CanPersist)
		assert.Equal(t, 0, response.PersistedCount, "dry run persists nothing")
	})

	t.Run("persists when requested", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.AddTransaction(storage.StatementTransaction{Date: mustDate("2026-02-12"), Amount: 30.00, Reference: "r1"})

		ledger := &fakeLedger{txns: []ynab.Transaction{
			{ID: "t1", Date: "2026-02-12", Amount: -30000, AccountID: "a1"},
		}}
		handler := handlers.NewReconcileHandler(newTestService(repo, ledger), matcher.DefaultConfig(), "orange")

		body := `{"budget_id":"b1","account_id":"a1","start_date":"2026-02-01","end_date":"2026-02-28","persist":true}`
		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Run(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.ReconcileResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 1, response.PersistedCount)
		assert.NotZero(t, response.RunLogID)
		assert.True(t, repo.AppendRunLogCalled)
	})

	t.Run("request tolerances override defaults", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.AddTransaction(storage.StatementTransaction{Date: mustDate("2026-02-12"), Amount: 30.00, Reference: "r1"})

		// Ledger date five days off: matches under the default tolerance of
		// seven but not under an override of one.
		ledger := &fakeLedger{txns: []ynab.Transaction{
			{ID: "t1", Date: "2026-02-17", Amount: -30000, AccountID: "a1"},
		}}
		handler := handlers.NewReconcileHandler(newTestService(repo, ledger), matcher.DefaultConfig(), "orange")

		body := `{"budget_id":"b1","account_id":"a1","start_date":"2026-02-01","end_date":"2026-02-28","date_tolerance_days":1}`
		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Run(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.ReconcileResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 0, response.MatchedCount)
		assert.Equal(t, 1, response.MissingCount)
	})

	t.Run("validation failure returns 422 with error as data", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewReconcileHandler(newTestService(repo, &fakeLedger{}), matcher.DefaultConfig(), "orange")

		body := `{"account_id":"a1","start_date":"2026-02-01","end_date":"2026-02-28"}`
		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Run(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var response dto.ReconcileResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Contains(t, response.Error, "budget_id")
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewReconcileHandler(newTestService(repo, &fakeLedger{}), matcher.DefaultConfig(), "orange")

		body := `{"budget_id":"b1","account_id":"a1","start_date":"02/01/2026","end_date":"2026-02-28"}`
		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Run(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects invalid body", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewReconcileHandler(newTestService(repo, &fakeLedger{}), matcher.DefaultConfig(), "orange")

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()

		handler.Run(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReconcileHandler_Flag(t *testing.T) {
	t.Run("flags transactions with default color", func(t *testing.T) {
		repo := storage.NewMockRepository()
		ledger := &fakeLedger{}
		handler := handlers.NewReconcileHandler(newTestService(repo, ledger), matcher.DefaultConfig(), "orange")

		body := `{"budget_id":"b1","transaction_ids":["t1","t2"]}`
		req := httptest.NewRequest(http.MethodPost, "/api/reconcile/flag", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Flag(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.FlagResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 2, response.Updated)
		assert.Equal(t, []string{"t1", "t2"}, ledger.flagged)
	})

	t.Run("requires transaction ids", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewReconcileHandler(newTestService(repo, &fakeLedger{}), matcher.DefaultConfig(), "orange")

		body := `{"budget_id":"b1"}`
		req := httptest.NewRequest(http.MethodPost, "/api/reconcile/flag", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Flag(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReconcileHandler_Create(t *testing.T) {
	t.Run("creates ledger transactions", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.AddTransaction(storage.StatementTransaction{
			Date:      mustDate("2026-02-01"),
			Amount:    414.00,
			Reference: "AT260320003000010160795",
		})

		ledger := &fakeLedger{}
		handler := handlers.NewReconcileHandler(newTestService(repo, ledger), matcher.DefaultConfig(), "orange")

		body := `{"budget_id":"b1","account_id":"a1","statement_ids":[1]}`
		req := httptest.NewRequest(http.MethodPost, "/api/reconcile/create", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Create(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.CreateMissingResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 1, response.Created)
		require.Len(t, ledger.created, 1)
		assert.Equal(t, int64(-414000), ledger.created[0].Amount)
	})

	t.Run("requires budget and account", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewReconcileHandler(newTestService(repo, &fakeLedger{}), matcher.DefaultConfig(), "orange")

		body := `{"statement_ids":[1]}`
		req := httptest.NewRequest(http.MethodPost, "/api/reconcile/create", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
