package handlers

import (
	"net/http"

	"github.com/MarcBaumholz/habit-toolbox/internal/services"
	"github.com/MarcBaumholz/habit-toolbox/pkg/middleware"
)

// SocialHandler handles HTTP requests related to the trust relation.
type SocialHandler struct {
	Service *services.TrustService
}

// NewSocialHandler creates a new instance of SocialHandler.
func NewSocialHandler(service *services.TrustService) *SocialHandler {
	return &SocialHandler{Service: service}
}

// TrustUserHandler records that the caller trusts another user.
func (h *SocialHandler) TrustUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	trusteeID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.TrustUser(r.Context(), claims.UserID, trusteeID); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"trusted": true})
}

// UntrustUserHandler removes the trust relation.
func (h *SocialHandler) UntrustUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	trusteeID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.UntrustUser(r.Context(), claims.UserID, trusteeID); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"trusted": false})
}

// GetTrustedHandler lists the IDs of users the caller trusts.
func (h *SocialHandler) GetTrustedHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ids, err := h.Service.ListTrusted(r.Context(), claims.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	respondJSON(w, http.StatusOK, ids)
}
