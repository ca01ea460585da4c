package handlers

import (
	"net/http"

	"github.com/MarcBaumholz/habit-toolbox/internal/services"
	"github.com/MarcBaumholz/habit-toolbox/pkg/middleware"
)

// SummaryHandler serves the weekly activity summary.
type SummaryHandler struct {
	Service *services.SummaryService
}

// NewSummaryHandler creates a new instance of SummaryHandler.
func NewSummaryHandler(service *services.SummaryService) *SummaryHandler {
	return &SummaryHandler{Service: service}
}

// GetSummaryHandler aggregates the caller's last 7 days.
func (h *SummaryHandler) GetSummaryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	today, err := requestDay(r)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	summary, err := h.Service.GetWeeklySummary(r.Context(), claims.UserID, today)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
