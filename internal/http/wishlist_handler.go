package http

import (
	"net/http"

	"github.com/fjod/artverse/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type WishlistHandler struct {
	wishlists WishlistService
	maxBody   int64
	log       *zap.Logger
}

func NewWishlistHandler(wishlists WishlistService, maxBody int64, log *zap.Logger) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists, maxBody: maxBody, log: log}
}

func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	list, err := h.wishlists.Get(r.Context(), principalFrom(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, list)
}

func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req service.WishlistItemInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.wishlists.AddItem(r.Context(), principalFrom(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusCreated, list)
}

func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	list, err := h.wishlists.RemoveItem(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "itemId"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, list)
}

// MoveToCart adds the item to the cart and then drops it from the wishlist.
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.wishlists.MoveToCart(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "itemId"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, cart)
}
