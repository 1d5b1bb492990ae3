// Package respond writes JSON bodies and maps domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/consignd/internal/checkout"
	"github.com/MrJamesThe3rd/consignd/internal/hold"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	"github.com/MrJamesThe3rd/consignd/internal/order"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type problem struct {
	status  int
	code    string
	message string
}

func classify(err error) problem {
	switch {
	case errors.Is(err, hold.ErrConflict), errors.Is(err, listing.ErrDuplicateItemID):
		return problem{http.StatusConflict, "conflict", "item no longer available"}
	case errors.Is(err, hold.ErrNotFound), errors.Is(err, listing.ErrNotFound), errors.Is(err, order.ErrNotFound):
		return problem{http.StatusNotFound, "not_found", "not found"}
	case errors.Is(err, hold.ErrLimitReached):
		return problem{http.StatusConflict, "limit_reached", "maximum checkout time reached"}
	case errors.Is(err, hold.ErrExpired):
		return problem{http.StatusGone, "expired", "session expired, please restart"}
	case errors.Is(err, hold.ErrNotPending):
		return problem{http.StatusConflict, "not_pending", "order is no longer pending"}
	case errors.Is(err, hold.ErrReconciliationMismatch):
		return problem{http.StatusConflict, "reconciliation_mismatch", "payment could not be applied"}
	case errors.Is(err, hold.ErrTransient), errors.Is(err, checkout.ErrProviderUnavailable):
		return problem{http.StatusServiceUnavailable, "unavailable", "try again"}
	case errors.Is(err, hold.ErrInvalidInput), errors.Is(err, listing.ErrInvalidListing):
		return problem{http.StatusBadRequest, "invalid_input", "invalid request"}
	}

	return problem{http.StatusInternalServerError, "internal", "internal error"}
}

// Error writes the short buyer-facing message for err.
func Error(w http.ResponseWriter, err error) {
	p := classify(err)
	if p.status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}

	var mismatch *hold.MismatchError
	if errors.As(err, &mismatch) {
		JSON(w, p.status, mismatchBody(p, mismatch))
		return
	}

	http.Error(w, p.message, p.status)
}

type adminError struct {
	Error    string   `json:"error"`
	Code     string   `json:"code"`
	OrderID  string   `json:"order_id,omitempty"`
	Listings []string `json:"listings,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

func mismatchBody(p problem, m *hold.MismatchError) adminError {
	return adminError{
		Error:    p.message,
		Code:     p.code,
		OrderID:  m.OrderID.String(),
		Listings: m.Listings,
		Reason:   m.Reason,
	}
}

// AdminError writes err as structured JSON with the full error text.
func AdminError(w http.ResponseWriter, err error) {
	p := classify(err)
	if p.status == http.StatusInternalServerError {
		slog.Error("admin request failed", "error", err)
	}

	var mismatch *hold.MismatchError
	if errors.As(err, &mismatch) {
		JSON(w, p.status, mismatchBody(p, mismatch))
		return
	}

	JSON(w, p.status, adminError{Error: err.Error(), Code: p.code})
}
