package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/internal/services"
	"github.com/MarcBaumholz/habit-toolbox/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// HabitHandler handles HTTP requests related to habits and their completion
// ledger.
type HabitHandler struct {
	Service *services.HabitService
}

// NewHabitHandler creates a new instance of HabitHandler.
func NewHabitHandler(service *services.HabitService) *HabitHandler {
	return &HabitHandler{Service: service}
}

type habitResponse struct {
	models.Habit
	CurrentStreak int `json:"current_streak"`
}

// CreateHabitHandler handles creation of a new habit.
func (h *HabitHandler) CreateHabitHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var habit models.Habit
	if err := json.NewDecoder(r.Body).Decode(&habit); err != nil {
		log.WithError(err).Warn("Failed to decode habit creation request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	habit.UserID = claims.UserID
	created, err := h.Service.CreateHabit(r.Context(), &habit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, habitResponse{Habit: *created, CurrentStreak: 0})
}

// GetHabitsHandler lists the caller's habits with their current streaks.
func (h *HabitHandler) GetHabitsHandler(w http.ResponseWriter, r *http.Request) {
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

	habits, err := h.Service.ListHabits(r.Context(), claims.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result := make([]habitResponse, 0, len(habits))
	for _, habit := range habits {
		streak, err := h.Service.CurrentStreak(r.Context(), habit.ID, today)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		result = append(result, habitResponse{Habit: habit, CurrentStreak: streak})
	}
	respondJSON(w, http.StatusOK, result)
}

// GetPublicHabitsHandler lists all public habits.
func (h *HabitHandler) GetPublicHabitsHandler(w http.ResponseWriter, r *http.Request) {
	habits, err := h.Service.ListPublicHabits(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	respondJSON(w, http.StatusOK, habits)
}

// GetHabitHandler returns a single habit with its current streak.
func (h *HabitHandler) GetHabitHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	habitID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid habit ID", http.StatusBadRequest)
		return
	}
	today, err := requestDay(r)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	habit, err := h.Service.GetHabit(r.Context(), habitID, claims.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	streak, err := h.Service.CurrentStreak(r.Context(), habit.ID, today)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, habitResponse{Habit: *habit, CurrentStreak: streak})
}

// UpdateHabitHandler overwrites a habit's content fields.
func (h *HabitHandler) UpdateHabitHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	habitID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid habit ID", http.StatusBadRequest)
		return
	}

	var habit models.Habit
	if err := json.NewDecoder(r.Body).Decode(&habit); err != nil {
		log.WithError(err).Warn("Failed to decode habit update request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateHabit(r.Context(), habitID, claims.UserID, &habit)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// GetWeekHandler returns the Monday..Sunday completion grid of today's week.
func (h *HabitHandler) GetWeekHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	habitID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid habit ID", http.StatusBadRequest)
		return
	}
	today, err := requestDay(r)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	weekStart, days, err := h.Service.WeekGrid(r.Context(), habitID, claims.UserID, today)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"week_start": weekStart.Format(models.DayFormat),
		"days":       days,
	})
}

// ToggleDayHandler flips a habit's completion entry for the day in the path.
func (h *HabitHandler) ToggleDayHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	habitID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid habit ID", http.StatusBadRequest)
		return
	}
	day, err := time.Parse(models.DayFormat, mux.Vars(r)["day"])
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	completed, err := h.Service.ToggleDay(r.Context(), habitID, claims.UserID, day)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"habit_id":  habitID,
		"day":       day.Format(models.DayFormat),
		"completed": completed,
	})
}

// CloneHabitHandler creates an independent copy of a habit for the caller.
func (h *HabitHandler) CloneHabitHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	habitID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid habit ID", http.StatusBadRequest)
		return
	}

	clone, err := h.Service.CloneHabit(r.Context(), habitID, claims.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, clone)
}

// SubscribeHandler lets the caller follow a public habit read-only.
func (h *HabitHandler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	habitID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid habit ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.Subscribe(r.Context(), habitID, claims.UserID); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"subscribed": true})
}

// GetSubscriptionsHandler lists the habits the caller follows.
func (h *HabitHandler) GetSubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	habits, err := h.Service.ListSubscriptions(r.Context(), claims.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	respondJSON(w, http.StatusOK, habits)
}
