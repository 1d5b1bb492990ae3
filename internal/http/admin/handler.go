package admin

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/auth"
	"github.com/MrJamesThe3rd/consignd/internal/history"
	"github.com/MrJamesThe3rd/consignd/internal/hold"
	"github.com/MrJamesThe3rd/consignd/internal/http/respond"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	"github.com/MrJamesThe3rd/consignd/internal/sweep"
)

type Handler struct {
	listings *listing.Service
	holds    *hold.Manager
	sweeper  *sweep.Sweeper
	history  *history.Service
}

func NewHandler(listings *listing.Service, holds *hold.Manager, sweeper *sweep.Sweeper, hist *history.Service) *Handler {
	return &Handler{listings: listings, holds: holds, sweeper: sweeper, history: hist}
}

// Routes expects auth.Middleware and auth.RequireAdmin to run first.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/listings", h.createListing)
	r.Post("/listings/{id}/release", h.releaseListing)
	r.Get("/listings/{id}/history", h.listingHistory)
	r.Post("/orders/{id}/release", h.releaseOrder)
	r.Post("/orders/{id}/mark-sold", h.markSold)
	r.Post("/sweep", h.sweep)
	r.Post("/reconcile", h.reconcile)
}

type createListingRequest struct {
	ItemID     string    `json:"item_id"`
	SellerID   uuid.UUID `json:"seller_id"`
	Title      string    `json:"title"`
	PriceCents int64     `json:"price_cents"`
}

func (h *Handler) createListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.AdminError(w, badRequest(err))
		return
	}

	l, err := h.listings.Create(r.Context(), listing.CreateParams{
		ItemID:     req.ItemID,
		SellerID:   req.SellerID,
		Title:      req.Title,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		respond.AdminError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toListingResponse(l))
}

type releaseRequest struct {
	Reason hold.Reason `json:"reason"`
}

func (h *Handler) decodeRelease(w http.ResponseWriter, r *http.Request) (hold.Reason, bool) {
	req := releaseRequest{Reason: hold.ReasonAdminCleanup}

	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.AdminError(w, badRequest(err))
			return "", false
		}
	}

	if req.Reason == "" {
		req.Reason = hold.ReasonAdminCleanup
	}

	return req.Reason, true
}

func (h *Handler) releaseListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	reason, ok := h.decodeRelease(w, r)
	if !ok {
		return
	}

	res, err := h.holds.Release(r.Context(), hold.ReleaseInput{
		ListingID: id,
		Reason:    reason,
		Actor:     actor(r),
	})
	if err != nil {
		respond.AdminError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, releaseResponse{ListingsReleased: res.ListingsReleased, OrderCancelled: res.OrderCancelled})
}

func (h *Handler) releaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	reason, ok := h.decodeRelease(w, r)
	if !ok {
		return
	}

	res, err := h.holds.Release(r.Context(), hold.ReleaseInput{
		OrderID: id,
		Reason:  reason,
		Actor:   actor(r),
	})
	if err != nil {
		respond.AdminError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, releaseResponse{ListingsReleased: res.ListingsReleased, OrderCancelled: res.OrderCancelled})
}

type markSoldRequest struct {
	PaymentReference string `json:"payment_reference"`
}

func (h *Handler) markSold(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req markSoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.AdminError(w, badRequest(err))
		return
	}

	res, err := h.holds.ConvertToSale(r.Context(), hold.SaleInput{
		OrderID:          id,
		PaymentReference: req.PaymentReference,
		Actor:            actor(r),
	})
	if err != nil {
		respond.AdminError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, saleResponse{AlreadyPaid: res.AlreadyPaid, Revived: res.Revived})
}

func (h *Handler) listingHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	events, err := h.history.ListForListing(r.Context(), id)
	if err != nil {
		respond.AdminError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toEventResponses(events))
}

func (h *Handler) sweep(w http.ResponseWriter, r *http.Request) {
	res, err := h.sweeper.Sweep(r.Context())
	if err != nil {
		respond.AdminError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSweepResponse(res))
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	res, err := h.holds.Reconcile(r.Context(), actor(r))
	if err != nil {
		respond.AdminError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toReconcileResponse(res))
}

func actor(r *http.Request) string {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		return hold.ActorSystem
	}

	return p.Actor()
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.AdminError(w, badRequest(err))
		return uuid.Nil, false
	}

	return id, true
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", hold.ErrInvalidInput, err)
}
