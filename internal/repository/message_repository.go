package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
)

// MessageRepository handles posts in group feeds.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new instance of MessageRepository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = `id, group_id, user_id, content, type, image_url, likes_count, created_at`

// CreateMessage inserts a new message row.
func (r *MessageRepository) CreateMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	msg.CreatedAt = time.Now()
	if msg.Type == "" {
		msg.Type = models.MessageTypeChat
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO messages (group_id, user_id, content, type, image_url, likes_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		msg.GroupID, msg.UserID, msg.Content, msg.Type, nullable(msg.ImageURL), msg.LikesCount, msg.CreatedAt,
	).Scan(&msg.ID)
	if err != nil {
		logger.Log.WithError(err).WithField("group_id", msg.GroupID).Error("Failed to insert message")
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"message_id": msg.ID,
		"group_id":   msg.GroupID,
	}).Info("Message created successfully")
	return msg, nil
}

// GetMessages fetches a page of a group's messages, newest page first but
// each page returned oldest-first for display.
func (r *MessageRepository) GetMessages(ctx context.Context, groupID int64, msgType string, limit, offset int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE group_id = ?`
	args := []interface{}{groupID}
	if msgType != "" {
		query += ` AND type = ?`
		args = append(args, msgType)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Log.WithError(err).WithField("group_id", groupID).Error("Failed to fetch messages")
		return nil, err
	}
	defer rows.Close()

	msgs, err := collectMessages(rows)
	if err != nil {
		return nil, err
	}

	// Reverse so the page reads oldest to newest.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// GetLearnings fetches all learning-type messages, newest first. When userIDs
// is non-empty, only messages authored by those users are returned, ordered
// by likes instead.
func (r *MessageRepository) GetLearnings(ctx context.Context, userIDs []int64) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE type = ?`
	args := []interface{}{models.MessageTypeLearning}

	if len(userIDs) > 0 {
		placeholders := make([]string, len(userIDs))
		for i, id := range userIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		query += fmt.Sprintf(` AND user_id IN (%s) ORDER BY likes_count DESC`, strings.Join(placeholders, ", "))
	} else {
		query += ` ORDER BY created_at DESC, id DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch learnings")
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func collectMessages(rows *sql.Rows) ([]models.Message, error) {
	var msgs []models.Message
	for rows.Next() {
		var (
			msg      models.Message
			imageURL sql.NullString
		)
		if err := rows.Scan(&msg.ID, &msg.GroupID, &msg.UserID, &msg.Content, &msg.Type, &imageURL, &msg.LikesCount, &msg.CreatedAt); err != nil {
			logger.Log.WithError(err).Error("Failed to scan message row")
			return nil, err
		}
		msg.ImageURL = imageURL.String
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
