package http

import (
	"net/http"

	"github.com/fjod/artverse/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CommissionHandler struct {
	commissions CommissionService
	maxBody     int64
	log         *zap.Logger
}

func NewCommissionHandler(commissions CommissionService, maxBody int64, log *zap.Logger) *CommissionHandler {
	return &CommissionHandler{commissions: commissions, maxBody: maxBody, log: log}
}

func (h *CommissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CommissionInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.commissions.Create(r.Context(), principalFrom(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusCreated, c)
}

// List accepts ?as=buyer|artist and ?status=.
func (h *CommissionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.commissions.List(r.Context(), principalFrom(r.Context()), q.Get("as"), q.Get("status"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, list)
}

func (h *CommissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.commissions.Get(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, c)
}

func (h *CommissionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req service.CommissionStatusInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.commissions.UpdateStatus(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, c)
}
