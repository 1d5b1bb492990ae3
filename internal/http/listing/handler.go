package listing

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/consignd/internal/http/respond"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
)

type Handler struct {
	svc *listing.Service
}

func NewHandler(svc *listing.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{itemID}", h.get)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := listing.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := listing.Status(s)
		if !status.Valid() {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}

		filter.Status = &status
	}

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		filter.Limit = n
	}

	ls, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(ls))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.GetByItemID(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(l))
}
