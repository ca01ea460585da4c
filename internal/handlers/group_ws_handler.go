package handlers

import (
	"net/http"
	"sync"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/internal/services"
	jwtutil "github.com/MarcBaumholz/habit-toolbox/pkg/jwt"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// MessageHub fans newly posted group messages out to connected websocket
// clients, keyed by group.
type MessageHub struct {
	mu    sync.Mutex
	conns map[int64]map[*websocket.Conn]bool
}

// NewMessageHub creates an empty hub.
func NewMessageHub() *MessageHub {
	return &MessageHub{conns: make(map[int64]map[*websocket.Conn]bool)}
}

func (hub *MessageHub) register(groupID int64, conn *websocket.Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.conns[groupID] == nil {
		hub.conns[groupID] = make(map[*websocket.Conn]bool)
	}
	hub.conns[groupID][conn] = true
}

func (hub *MessageHub) unregister(groupID int64, conn *websocket.Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	delete(hub.conns[groupID], conn)
}

// Broadcast pushes a message to every client watching the group.
func (hub *MessageHub) Broadcast(groupID int64, msg *models.Message) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for conn := range hub.conns[groupID] {
		if err := conn.WriteJSON(msg); err != nil {
			logrus.WithError(err).Warn("Failed to push message to websocket client")
			conn.Close()
			delete(hub.conns[groupID], conn)
		}
	}
}

// GroupFeedHandler upgrades a member's connection to a websocket that
// receives the group's new messages live.
type GroupFeedHandler struct {
	Service   *services.GroupService
	Hub       *MessageHub
	JWTSecret string
}

// NewGroupFeedHandler creates a new instance of GroupFeedHandler.
func NewGroupFeedHandler(service *services.GroupService, hub *MessageHub, jwtSecret string) *GroupFeedHandler {
	return &GroupFeedHandler{
		Service:   service,
		Hub:       hub,
		JWTSecret: jwtSecret,
	}
}

// ServeFeed authenticates via the token query parameter, verifies membership
// and keeps the connection open until the client goes away.
func (h *GroupFeedHandler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		logrus.WithError(err).Warn("Websocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

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
	isMember := false
	for _, member := range detail.Members {
		if member.UserID == claims.UserID {
			isMember = true
			break
		}
	}
	if !isMember {
		http.Error(w, "Forbidden: group members only", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("Websocket upgrade failed")
		return
	}

	h.Hub.register(groupID, conn)
	logrus.WithFields(logrus.Fields{
		"group_id": groupID,
		"user_id":  claims.UserID,
	}).Info("Websocket client joined group feed")

	defer func() {
		h.Hub.unregister(groupID, conn)
		conn.Close()
	}()

	// Drain until the client disconnects; the feed is push-only.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
