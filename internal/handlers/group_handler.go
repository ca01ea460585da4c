package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/internal/services"
	"github.com/MarcBaumholz/habit-toolbox/pkg/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GroupHandler handles HTTP requests related to groups, proofs and the group
// feed.
type GroupHandler struct {
	Service   *services.GroupService
	Hub       *MessageHub
	UploadDir string
}

// NewGroupHandler creates a new instance of GroupHandler.
func NewGroupHandler(service *services.GroupService, hub *MessageHub, uploadDir string) *GroupHandler {
	return &GroupHandler{
		Service:   service,
		Hub:       hub,
		UploadDir: uploadDir,
	}
}

// CreateGroupHandler handles creation of a new group.
func (h *GroupHandler) CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Name        string `json:"name"`
		IsPublic    *bool  `json:"is_public"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	group := &models.Group{
		Name:        payload.Name,
		IsPublic:    payload.IsPublic == nil || *payload.IsPublic,
		OwnerID:     claims.UserID,
		Description: payload.Description,
	}

	created, err := h.Service.CreateGroup(r.Context(), group)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, services.GroupSummary{Group: *created, Members: 1})
}

// GetGroupsHandler lists all groups, optionally filtered by ?is_public.
func (h *GroupHandler) GetGroupsHandler(w http.ResponseWriter, r *http.Request) {
	var isPublic *bool
	if raw := r.URL.Query().Get("is_public"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "Invalid is_public filter", http.StatusBadRequest)
			return
		}
		isPublic = &parsed
	}

	groups, err := h.Service.ListGroups(r.Context(), isPublic)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

// GetMyGroupsHandler lists the groups the caller belongs to.
func (h *GroupHandler) GetMyGroupsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groups, err := h.Service.ListMyGroups(r.Context(), claims.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

// GetGroupHandler returns a group with its member list.
func (h *GroupHandler) GetGroupHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	detail, err := h.Service.GetGroupDetail(r.Context(), groupID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// JoinGroupHandler enrolls the caller in a group.
func (h *GroupHandler) JoinGroupHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	var payload struct {
		HabitTitle       string `json:"habit_title"`
		FrequencyPerWeek int    `json:"frequency_per_week"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&payload) // body is optional
		defer r.Body.Close()
	}

	if err := h.Service.JoinGroup(r.Context(), groupID, claims.UserID, payload.HabitTitle, payload.FrequencyPerWeek); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"joined": true})
}

// CreateProofHandler records a proof referencing an already hosted image.
func (h *GroupHandler) CreateProofHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}
	today, err := requestDay(r)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	var payload struct {
		ImageURL string `json:"image_url"`
		Caption  string `json:"caption"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ImageURL == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	proof, err := h.Service.RecordProof(r.Context(), groupID, claims.UserID, today, payload.ImageURL, payload.Caption)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, proof)
}

// UploadProofHandler accepts a multipart image upload and records the proof.
func (h *GroupHandler) UploadProofHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}
	today, err := requestDay(r)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	// Parse multipart form (max size: 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "File too big or invalid format", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file in request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		http.Error(w, "Only JPEG and PNG images are allowed", http.StatusBadRequest)
		return
	}

	ext := filepath.Ext(header.Filename)
	fileName := uuid.NewString() + ext
	savePath := filepath.Join(h.UploadDir, fileName)

	if err := os.MkdirAll(h.UploadDir, os.ModePerm); err != nil {
		http.Error(w, "Failed to create upload folder", http.StatusInternalServerError)
		return
	}

	out, err := os.Create(savePath)
	if err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		http.Error(w, "Failed to write file", http.StatusInternalServerError)
		return
	}

	fileURL := "/uploads/" + fileName
	caption := r.FormValue("caption")

	proof, err := h.Service.RecordProof(r.Context(), groupID, claims.UserID, today, fileURL, caption)
	if err != nil {
		// The quota check runs after the write; drop the orphaned file.
		os.Remove(savePath)
		handleServiceError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"group_id": groupID,
		"user_id":  claims.UserID,
		"file":     fileName,
	}).Info("Proof image uploaded")
	respondJSON(w, http.StatusCreated, proof)
}

// GetWeekProofsHandler lists the group's proofs inside today's week.
func (h *GroupHandler) GetWeekProofsHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}
	today, err := requestDay(r)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	proofs, err := h.Service.WeekProofs(r.Context(), groupID, today)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if proofs == nil {
		proofs = []models.Proof{}
	}
	respondJSON(w, http.StatusOK, proofs)
}

// PostMessageHandler stores a feed message and broadcasts it to connected
// group members.
func (h *GroupHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}
	today, err := requestDay(r)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	var payload struct {
		Content  string `json:"content"`
		Type     string `json:"type"`
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Content == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	msg, err := h.Service.PostMessage(r.Context(), groupID, claims.UserID, today, payload.Content, payload.Type, payload.ImageURL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Broadcast(groupID, msg)
	}
	respondJSON(w, http.StatusCreated, msg)
}

// GetLearningsHandler lists learning messages across all groups.
func (h *GroupHandler) GetLearningsHandler(w http.ResponseWriter, r *http.Request) {
	learnings, err := h.Service.ListLearnings(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if learnings == nil {
		learnings = []models.Message{}
	}
	respondJSON(w, http.StatusOK, learnings)
}

// GetMessagesHandler lists a page of the group feed.
func (h *GroupHandler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	msgs, err := h.Service.ListMessages(r.Context(), groupID, query.Get("type"), limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	respondJSON(w, http.StatusOK, msgs)
}
