package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/consignd/internal/payment"
)

const maxBody = 1 << 20

type Processor interface {
	Process(ctx context.Context, ev payment.Event) error
}

type Handler struct {
	verifier *payment.Verifier
	proc     Processor
}

func NewHandler(verifier *payment.Verifier, proc Processor) *Handler {
	return &Handler{verifier: verifier, proc: proc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/payment", h.payment)
}

// payment answers 2xx once the event is applied or safely ignorable, and
// 5xx when the provider should redeliver.
func (h *Handler) payment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}

	if err := h.verifier.Verify(r.Header.Get(payment.SignatureHeader), body); err != nil {
		slog.Warn("rejected webhook", "error", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	ev, err := payment.ParseEvent(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.proc.Process(r.Context(), ev); err != nil {
		slog.Error("failed to process webhook", "event_id", ev.ID, "type", ev.Type, "error", err)

		status := http.StatusInternalServerError
		if errors.Is(err, payment.ErrUnavailable) {
			status = http.StatusServiceUnavailable
		}

		http.Error(w, "processing failed", status)

		return
	}

	w.WriteHeader(http.StatusOK)
}
