package ynab

import "errors"

// Failure taxonomy for the ledger API. Callers branch with errors.Is.
var (
	// ErrUnauthorized means the access token is missing or invalid.
	ErrUnauthorized = errors.New("ynab: unauthorized")

	// ErrNotFound means the budget, account or transaction does not exist.
	ErrNotFound = errors.New("ynab: not found")

	// ErrRateLimited means the API asked us to slow down. The client does not
	// retry this itself; callers should back off and retry later.
	ErrRateLimited = errors.New("ynab: rate limited")

	// ErrDuplicateImport is a recoverable signal, not a failure: the import id
	// already exists on the ledger, so the transaction was created by an
	// earlier submission.
	ErrDuplicateImport = errors.New("ynab: duplicate import id")
)
