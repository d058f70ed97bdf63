package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconview/ynab-reconciler/internal/api/dto"
	"github.com/reconview/ynab-reconciler/internal/api/handlers"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

func TestTransactionsHandler_Import(t *testing.T) {
	t.Run("imports CSV rows", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewTransactionsHandler(repo, newTestService(repo, &fakeLedger{}))

		body := `date,amount,reference,description
2026-02-01,414.00,ref-1,POS PURCHASE
2026-02-02,30.00,ref-2,COFFEE
`
		req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Import(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.ImportResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 2, response.Inserted)
		assert.Equal(t, 0, response.Skipped)
	})

	t.Run("re-import skips duplicate references", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewTransactionsHandler(repo, newTestService(repo, &fakeLedger{}))

		body := "date,amount,reference\n2026-02-01,414.00,ref-1\n"
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", strings.NewReader(body))
			rec := httptest.NewRecorder()
			handler.Import(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)

			var response dto.ImportResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
			if i == 0 {
				assert.Equal(t, 1, response.Inserted)
			} else {
				assert.Equal(t, 0, response.Inserted)
				assert.Equal(t, 1, response.Skipped)
			}
		}
	})

	t.Run("rejects malformed CSV", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewTransactionsHandler(repo, newTestService(repo, &fakeLedger{}))

		body := "date,amount,reference\n2026-02-01,not-a-number,ref-1\n"
		req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Import(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTransactionsHandler_List(t *testing.T) {
	t.Run("returns transactions in range", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.AddTransaction(storage.StatementTransaction{Date: mustDate("2026-02-05"), Amount: 30.00, Reference: "in"})
		repo.AddTransaction(storage.StatementTransaction{Date: mustDate("2026-03-05"), Amount: 99.00, Reference: "out"})

		handler := handlers.NewTransactionsHandler(repo, newTestService(repo, &fakeLedger{}))

		req := httptest.NewRequest(http.MethodGet, "/api/transactions?start_date=2026-02-01&end_date=2026-02-28", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.TransactionListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.Equal(t, 1, response.Count)
		assert.Equal(t, "in", response.Transactions[0].Reference)
		assert.False(t, response.Transactions[0].Reconciled)
	})

	t.Run("requires date range", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewTransactionsHandler(repo, newTestService(repo, &fakeLedger{}))

		req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTransactionsHandler_Unmatch(t *testing.T) {
	t.Run("clears marker and reports idempotence", func(t *testing.T) {
		repo := storage.NewMockRepository()
		reconciledAt := time.Now()
		txn := repo.AddTransaction(storage.StatementTransaction{
			Date:         mustDate("2026-02-05"),
			Amount:       30.00,
			Reference:    "r1",
			LedgerTxnID:  "t1",
			ReconciledAt: &reconciledAt,
		})

		handler := handlers.NewTransactionsHandler(repo, newTestService(repo, &fakeLedger{}))

		req := httptest.NewRequest(http.MethodDelete, "/api/transactions/1/match", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "1"))
		rec := httptest.NewRecorder()

		handler.Unmatch(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.UnmatchResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.True(t, response.Cleared)

		stored, err := repo.GetTransaction(txn.ID)
		require.NoError(t, err)
		assert.False(t, stored.Reconciled())

		// Second call is a no-op, still 200.
		rec = httptest.NewRecorder()
		handler.Unmatch(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.False(t, response.Cleared)
	})

	t.Run("rejects invalid ID", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewTransactionsHandler(repo, newTestService(repo, &fakeLedger{}))

		req := httptest.NewRequest(http.MethodDelete, "/api/transactions/abc/match", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "abc"))
		rec := httptest.NewRecorder()

		handler.Unmatch(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
