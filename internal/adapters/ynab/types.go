package ynab

import "time"

// DateFormat is the calendar-date layout YNAB uses on the wire.
const DateFormat = "2006-01-02"

// Transaction is a ledger transaction as returned by the YNAB API.
// Amounts are milliunits (1000 = 1 currency unit) with outflows negative,
// the opposite sign convention from statement transactions.
type Transaction struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Amount       int64  `json:"amount"`
	AccountID    string `json:"account_id"`
	PayeeName    string `json:"payee_name,omitempty"`
	Memo         string `json:"memo,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	Cleared      string `json:"cleared,omitempty"`
	FlagColor    string `json:"flag_color,omitempty"`
	ImportID     string `json:"import_id,omitempty"`
	Deleted      bool   `json:"deleted"`
}

// ParseDate returns the transaction date as a time.Time.
func (t *Transaction) ParseDate() (time.Time, error) {
	return time.Parse(DateFormat, t.Date)
}

// NewTransaction is the payload for creating a ledger transaction.
type NewTransaction struct {
	AccountID string `json:"account_id"`
	Date      string `json:"date"`
	Amount    int64  `json:"amount"`
	PayeeName string `json:"payee_name,omitempty"`
	Memo      string `json:"memo,omitempty"`
	Cleared   string `json:"cleared,omitempty"`
	ImportID  string `json:"import_id,omitempty"`
}

// Wire envelopes. The API wraps every response in a data object.

type transactionsResponse struct {
	Data struct {
		Transactions []Transaction `json:"transactions"`
	} `json:"data"`
}

type transactionResponse struct {
	Data struct {
		Transaction Transaction `json:"transaction"`
	} `json:"data"`
}

type saveTransactionRequest struct {
	Transaction NewTransaction `json:"transaction"`
}

type flagUpdateRequest struct {
	Transaction struct {
		FlagColor string `json:"flag_color"`
	} `json:"transaction"`
}

type errorResponse struct {
	Error struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}
