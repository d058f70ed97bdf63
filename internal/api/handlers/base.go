package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/reconview/ynab-reconciler/internal/api/dto"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

// Base provides shared functionality for all handlers.
type Base struct {
	repo storage.Repository
}

// NewBase creates a new base handler with the given repository.
func NewBase(repo storage.Repository) *Base {
	return &Base{repo: repo}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseDateParam parses a calendar-date query parameter. A missing or
// malformed value returns the zero time and false.
func ParseDateParam(r *http.Request, name string) (time.Time, bool) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(storage.DateFormat, val)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
