package http

import (
	"net/http"

	"github.com/fjod/artverse/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CartHandler struct {
	carts   CartService
	maxBody int64
	log     *zap.Logger
}

func NewCartHandler(carts CartService, maxBody int64, log *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, maxBody: maxBody, log: log}
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the cart priced against the current catalogue.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.View(r.Context(), principalFrom(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req service.AddCartItemInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	cart, err := h.carts.AddItem(r.Context(), principalFrom(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusCreated, cart)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	cart, err := h.carts.UpdateQuantity(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "itemId"), req.Quantity)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.RemoveItem(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "itemId"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if err := h.carts.Clear(r.Context(), p.UserID); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondMessage(w, h.log, http.StatusOK, "cart cleared")
}
