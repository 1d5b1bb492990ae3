package checkout

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/auth"
	"github.com/MrJamesThe3rd/consignd/internal/checkout"
	"github.com/MrJamesThe3rd/consignd/internal/http/respond"
	"github.com/MrJamesThe3rd/consignd/internal/order"
)

type Handler struct {
	svc    *checkout.Service
	orders *order.Service
}

func NewHandler(svc *checkout.Service, orders *order.Service) *Handler {
	return &Handler{svc: svc, orders: orders}
}

// Routes expects auth.Middleware to run first.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/checkout", h.start)

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.timer)
		r.Post("/{id}/extend", h.extend)
		r.Post("/{id}/cancel", h.cancel)
	})
}

type startRequest struct {
	ItemIDs       []string `json:"item_ids"`
	WindowMinutes int      `json:"window_minutes"`
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	buyer, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.ItemIDs) == 0 {
		http.Error(w, "item_ids required", http.StatusBadRequest)
		return
	}

	if req.WindowMinutes < 0 {
		http.Error(w, "window_minutes must not be negative", http.StatusBadRequest)
		return
	}

	o, err := h.svc.Start(r.Context(), checkout.StartInput{
		BuyerID: buyer.UserID,
		ItemIDs: req.ItemIDs,
		Window:  time.Duration(req.WindowMinutes) * time.Minute,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	buyer, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	orders, err := h.orders.ListByBuyer(r.Context(), buyer.UserID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) timer(w http.ResponseWriter, r *http.Request) {
	buyer, orderID, ok := params(w, r)
	if !ok {
		return
	}

	t, err := h.svc.Timer(r.Context(), orderID, buyer)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toTimerResponse(t))
}

type extendRequest struct {
	Minutes int `json:"minutes"`
}

func (h *Handler) extend(w http.ResponseWriter, r *http.Request) {
	buyer, orderID, ok := params(w, r)
	if !ok {
		return
	}

	var req extendRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if req.Minutes < 0 {
		http.Error(w, "minutes must not be negative", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Extend(r.Context(), orderID, buyer, time.Duration(req.Minutes)*time.Minute)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, extendResponse{
		CheckoutExpiresAt: res.ExpiresAt.UTC(),
		GrantedSeconds:    int64(res.Granted / time.Second),
		Capped:            res.Capped,
		Message:           res.Message(),
	})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	buyer, orderID, ok := params(w, r)
	if !ok {
		return
	}

	if err := h.svc.Cancel(r.Context(), orderID, buyer); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func params(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}

	return p.UserID, id, true
}
