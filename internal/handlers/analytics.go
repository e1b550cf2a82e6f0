package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jobseeker-app/apiserver/internal/services"
)

// AnalyticsHandler serves read-only ledger aggregates.
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func AnalyticsRouter(r chi.Router, handler *AnalyticsHandler) {
	r.Get("/dashboard", handler.Dashboard)
	r.Get("/applications", handler.Applications)
}

func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	dashboard, err := h.analyticsService.Dashboard(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, dashboard, "", nil)
}

func (h *AnalyticsHandler) Applications(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	detail, err := h.analyticsService.Applications(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, detail, "", nil)
}
