package http

import (
	"net/http"

	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboard DashboardService
	log       *zap.Logger
}

func NewDashboardHandler(dashboard DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, log: log}
}

func (h *DashboardHandler) Artist(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.ArtistStats(r.Context(), principalFrom(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, stats)
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.AdminStats(r.Context(), principalFrom(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, stats)
}
