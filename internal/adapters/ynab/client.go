// Package ynab is the HTTP client for the external budgeting ledger. It
// translates between domain types and the wire format and owns all network
// failure handling; nothing else in the codebase talks to the remote API.
package ynab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.ynab.com/v1"

// Config holds client configuration.
type Config struct {
	Token   string
	BaseURL string // defaults to DefaultBaseURL
}

// Client talks to the YNAB API.
type Client struct {
	token   string
	baseURL string
	http    *retryablehttp.Client
}

// NewClient creates a new API client. Transient transport failures and 5xx
// responses are retried with backoff. 429 is deliberately not retried here;
// it surfaces as ErrRateLimited so the caller decides when to come back.
func NewClient(cfg Config) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		return resp != nil && resp.StatusCode >= 500, nil
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		token:   cfg.Token,
		baseURL: baseURL,
		http:    rc,
	}
}

// ListTransactions fetches all transactions on or after since for the given
// account. The list endpoint cannot reliably scope by account server-side, so
// the response is filtered here before returning. Transactions from other
// accounts must never leak into reconciliation.
func (c *Client) ListTransactions(ctx context.Context, budgetID, accountID string, since time.Time) ([]Transaction, error) {
	path := fmt.Sprintf("/budgets/%s/transactions?since_date=%s", budgetID, since.Format(DateFormat))

	var resp transactionsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	filtered := make([]Transaction, 0, len(resp.Data.Transactions))
	for _, txn := range resp.Data.Transactions {
		if txn.AccountID != accountID {
			continue
		}
		filtered = append(filtered, txn)
	}

	return filtered, nil
}

// CreateTransaction submits one new transaction. The import id carried on the
// payload makes creation idempotent: a conflict on it comes back as
// ErrDuplicateImport, which callers treat as "already exists, skip".
func (c *Client) CreateTransaction(ctx context.Context, budgetID string, txn NewTransaction) (*Transaction, error) {
	path := fmt.Sprintf("/budgets/%s/transactions", budgetID)

	var resp transactionResponse
	if err := c.do(ctx, http.MethodPost, path, saveTransactionRequest{Transaction: txn}, &resp); err != nil {
		return nil, err
	}

	return &resp.Data.Transaction, nil
}

// SetFlag updates a transaction's flag color and nothing else.
func (c *Client) SetFlag(ctx context.Context, budgetID, transactionID, color string) (*Transaction, error) {
	path := fmt.Sprintf("/budgets/%s/transactions/%s", budgetID, transactionID)

	var body flagUpdateRequest
	body.Transaction.FlagColor = color

	var resp transactionResponse
	if err := c.do(ctx, http.MethodPut, path, body, &resp); err != nil {
		return nil, err
	}

	return &resp.Data.Transaction, nil
}

// do executes one API call, mapping HTTP failures onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ynab: marshal request: %w", err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("ynab: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ynab: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("ynab: decode response: %w", err)
		}
	}

	return nil
}

// mapError converts a failed response into the error taxonomy.
func (c *Client) mapError(resp *http.Response) error {
	detail := ""
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr errorResponse
	if json.Unmarshal(raw, &apiErr) == nil {
		detail = apiErr.Error.Detail
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, detail)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrDuplicateImport, detail)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, detail)
	default:
		return fmt.Errorf("ynab: unexpected status %d: %s", resp.StatusCode, detail)
	}
}
