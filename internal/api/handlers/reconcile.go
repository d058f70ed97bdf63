package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/reconview/ynab-reconciler/internal/adapters/ynab"
	"github.com/reconview/ynab-reconciler/internal/api/dto"
	"github.com/reconview/ynab-reconciler/internal/application/reconcile"
	"github.com/reconview/ynab-reconciler/internal/application/service"
	"github.com/reconview/ynab-reconciler/internal/domain/matcher"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

// ReconcileHandler handles reconciliation HTTP requests.
type ReconcileHandler struct {
	*Base
	reconcileService *service.ReconcileService
	defaults         matcher.Config
	flagColor        string
}

// NewReconcileHandler creates a new reconcile handler. defaults fill in
// tolerances the request omits.
func NewReconcileHandler(reconcileService *service.ReconcileService, defaults matcher.Config, flagColor string) *ReconcileHandler {
	if flagColor == "" {
		flagColor = "orange"
	}
	return &ReconcileHandler{
		Base:             &Base{},
		reconcileService: reconcileService,
		defaults:         defaults,
		flagColor:        flagColor,
	}
}

// Run handles POST /api/reconcile - executes one reconciliation run.
func (h *ReconcileHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	start, err := time.Parse(storage.DateFormat, req.StartDate)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("start_date must be YYYY-MM-DD"))
		return
	}
	end, err := time.Parse(storage.DateFormat, req.EndDate)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("end_date must be YYYY-MM-DD"))
		return
	}

	cfg := h.defaults
	if req.DateToleranceDays != nil {
		cfg.DateToleranceDays = *req.DateToleranceDays
	}
	if req.AmountTolerance != nil {
		cfg.AmountTolerance = *req.AmountTolerance
	}

	params := reconcile.Params{
		BudgetID:  req.BudgetID,
		AccountID: req.AccountID,
		StartDate: start,
		EndDate:   end,
		Config:    cfg,
		Persist:   req.Persist,
	}

	result, err := h.reconcileService.Run(r.Context(), params)
	if errors.Is(err, service.ErrRunInProgress) {
		h.WriteError(w, http.StatusConflict, dto.ConflictError(err.Error()))
		return
	}
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	if !result.OK() && result.Report == nil {
		// Whole-run failure: validation or an upstream outage.
		h.WriteJSON(w, http.StatusUnprocessableEntity, toReconcileResponse(result))
		return
	}

	h.WriteJSON(w, http.StatusOK, toReconcileResponse(result))
}

// Flag handles POST /api/reconcile/flag - flags unexpected ledger
// transactions.
func (h *ReconcileHandler) Flag(w http.ResponseWriter, r *http.Request) {
	var req dto.FlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}
	if req.BudgetID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("budget_id is required"))
		return
	}
	if len(req.TransactionIDs) == 0 {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("transaction_ids is required"))
		return
	}

	color := req.Color
	if color == "" {
		color = h.flagColor
	}

	result := h.reconcileService.FlagUnexpected(r.Context(), req.BudgetID, req.TransactionIDs, color)
	h.WriteJSON(w, http.StatusOK, dto.FlagResponse{
		Updated: result.Updated,
		Errors:  result.Errors,
	})
}

// Create handles POST /api/reconcile/create - pushes statement transactions
// missing from the ledger into it.
func (h *ReconcileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMissingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}
	if req.BudgetID == "" || req.AccountID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("budget_id and account_id are required"))
		return
	}
	if len(req.StatementIDs) == 0 {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("statement_ids is required"))
		return
	}

	result := h.reconcileService.CreateMissing(r.Context(), req.BudgetID, req.AccountID, req.StatementIDs)
	h.WriteJSON(w, http.StatusOK, dto.CreateMissingResponse{
		Created: result.Created,
		Skipped: result.Skipped,
		Errors:  result.Errors,
	})
}

// toReconcileResponse converts an application result to an API response.
func toReconcileResponse(result *reconcile.Result) dto.ReconcileResponse {
	response := dto.ReconcileResponse{
		MatchedCount:    result.MatchedCount,
		MissingCount:    result.MissingCount,
		UnexpectedCount: result.UnexpectedCount,
		Actions: dto.ActionsResponse{
			CanPersist: result.Actions.CanPersist,
			CanFlag:    result.Actions.CanFlag,
			CanCreate:  result.Actions.CanCreate,
		},
		PersistedCount: result.PersistedCount,
		PersistErrors:  result.PersistErrors,
		RunLogID:       result.RunLogID,
		Error:          result.Error,
	}

	if result.Report == nil {
		return response
	}

	response.Matched = make([]dto.MatchResponse, 0, len(result.Report.Matched))
	for _, m := range result.Report.Matched {
		response.Matched = append(response.Matched, dto.MatchResponse{
			Statement:    toTransactionResponse(m.Statement),
			Ledger:       toLedgerResponse(m.Ledger),
			DateDiffDays: m.DateDiffDays,
		})
	}

	response.MissingInLedger = make([]dto.TransactionResponse, 0, len(result.Report.MissingInLedger))
	for _, txn := range result.Report.MissingInLedger {
		response.MissingInLedger = append(response.MissingInLedger, toTransactionResponse(txn))
	}

	response.UnexpectedInLedger = make([]dto.LedgerTransactionResponse, 0, len(result.Report.UnexpectedInLedger))
	for _, txn := range result.Report.UnexpectedInLedger {
		response.UnexpectedInLedger = append(response.UnexpectedInLedger, toLedgerResponse(txn))
	}

	return response
}

// toLedgerResponse converts a ledger transaction to an API response.
func toLedgerResponse(txn ynab.Transaction) dto.LedgerTransactionResponse {
	return dto.LedgerTransactionResponse{
		ID:        txn.ID,
		Date:      txn.Date,
		Amount:    txn.Amount,
		PayeeName: txn.PayeeName,
		Memo:      txn.Memo,
		FlagColor: txn.FlagColor,
	}
}
