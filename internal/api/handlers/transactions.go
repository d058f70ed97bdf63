package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reconview/ynab-reconciler/internal/adapters/statements"
	"github.com/reconview/ynab-reconciler/internal/api/dto"
	"github.com/reconview/ynab-reconciler/internal/application/service"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

// TransactionsHandler handles statement transaction HTTP requests.
type TransactionsHandler struct {
	*Base
	reconcileService *service.ReconcileService
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(repo storage.Repository, reconcileService *service.ReconcileService) *TransactionsHandler {
	return &TransactionsHandler{
		Base:             NewBase(repo),
		reconcileService: reconcileService,
	}
}

// Import handles POST /api/transactions/import - imports a CSV statement
// export from the request body. Re-importing the same file is a no-op: rows
// whose reference already exists are skipped.
func (h *TransactionsHandler) Import(w http.ResponseWriter, r *http.Request) {
	txns, err := statements.ReadCSV(r.Body)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	inserted, skipped, err := h.repo.InsertTransactions(txns)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.ImportResponse{
		Inserted: inserted,
		Skipped:  skipped,
	})
}

// List handles GET /api/transactions - returns statement transactions in a
// date range.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	start, ok := ParseDateParam(r, "start_date")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("start_date is required (YYYY-MM-DD)"))
		return
	}
	end, ok := ParseDateParam(r, "end_date")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("end_date is required (YYYY-MM-DD)"))
		return
	}

	txns, err := h.repo.ListByDateRange(start, end)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.TransactionListResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(txns)),
		Count:        len(txns),
	}
	for _, txn := range txns {
		response.Transactions = append(response.Transactions, toTransactionResponse(txn))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Unmatch handles DELETE /api/transactions/{id}/match - clears the
// reconciliation marker on one statement transaction.
func (h *TransactionsHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid transaction ID"))
		return
	}

	cleared, err := h.reconcileService.Unmatch(r.Context(), id)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.UnmatchResponse{Cleared: cleared})
}

// toTransactionResponse converts a storage transaction to an API response.
func toTransactionResponse(txn storage.StatementTransaction) dto.TransactionResponse {
	response := dto.TransactionResponse{
		ID:          txn.ID,
		Date:        txn.Date.Format(storage.DateFormat),
		Amount:      txn.Amount,
		Reference:   txn.Reference,
		Description: txn.Description,
		LedgerTxnID: txn.LedgerTxnID,
		Reconciled:  txn.Reconciled(),
	}
	if txn.ReconciledAt != nil {
		response.ReconciledAt = txn.ReconciledAt.UTC().Format(time.RFC3339)
	}
	return response
}
