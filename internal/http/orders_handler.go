package http

import (
	"net/http"

	"github.com/fjod/artverse/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders  OrderService
	maxBody int64
	log     *zap.Logger
}

func NewOrderHandler(orders OrderService, maxBody int64, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, maxBody: maxBody, log: log}
}

// PlaceOrder checks out the caller's cart.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req service.PlaceOrderInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), principalFrom(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusCreated, order)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	orders, total, err := h.orders.ListMine(r.Context(), principalFrom(r.Context()), page)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondList(w, h.log, orders, page, total)
}

func (h *OrderHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	orders, total, err := h.orders.ListSales(r.Context(), principalFrom(r.Context()), r.URL.Query().Get("status"), page)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondList(w, h.log, orders, page, total)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	orders, total, err := h.orders.ListAll(r.Context(), principalFrom(r.Context()), r.URL.Query().Get("status"), page)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondList(w, h.log, orders, page, total)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req service.OrderStatusInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, order)
}
