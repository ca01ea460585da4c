package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/internal/services"
	"github.com/MarcBaumholz/habit-toolbox/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// ToolHandler handles HTTP requests related to the shared toolbox.
type ToolHandler struct {
	Service *services.ToolService
}

// NewToolHandler creates a new instance of ToolHandler.
func NewToolHandler(service *services.ToolService) *ToolHandler {
	return &ToolHandler{Service: service}
}

// GetToolsHandler lists every tool in the toolbox.
func (h *ToolHandler) GetToolsHandler(w http.ResponseWriter, r *http.Request) {
	tools, err := h.Service.ListTools(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if tools == nil {
		tools = []models.Tool{}
	}
	respondJSON(w, http.StatusOK, tools)
}

// CreateToolHandler stores a new tool authored by the caller.
func (h *ToolHandler) CreateToolHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var tool models.Tool
	if err := json.NewDecoder(r.Body).Decode(&tool); err != nil {
		log.WithError(err).Warn("Failed to decode tool creation request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	tool.CreatedByUserID = claims.UserID
	created, err := h.Service.CreateTool(r.Context(), &tool)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// SuggestToolsHandler scores the toolbox against a free-text query.
func (h *ToolHandler) SuggestToolsHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Query == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	tools, err := h.Service.SuggestTools(r.Context(), payload.Query)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tools)
}
