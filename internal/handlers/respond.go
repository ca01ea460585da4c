package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/internal/services"
	"github.com/gorilla/mux"
)

// respondJSON writes v as a JSON response body.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleServiceError maps known service error conditions onto HTTP statuses.
func handleServiceError(w http.ResponseWriter, err error) {
	var quota *services.QuotaExceededError
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, services.ErrNotMember):
		http.Error(w, "Forbidden: group members only", http.StatusForbidden)
	case errors.As(err, &quota):
		respondJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error": "weekly proof limit reached",
			"count": quota.Count,
			"limit": quota.Limit,
		})
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

// pathID parses the named mux path variable as an integer ID.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

// requestDay resolves "today" for an operation. Callers may pin it with the
// optional ?today=YYYY-MM-DD query parameter; otherwise the server clock is
// used. Keeping the date caller-suppliable keeps the streak and window logic
// deterministic.
func requestDay(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("today")
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse(models.DayFormat, raw)
}
