package repository

import (
	"context"
	"database/sql"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
)

// ToolRepository handles the shared toolbox of habit techniques.
type ToolRepository struct {
	db *sql.DB
}

// NewToolRepository creates a new instance of ToolRepository.
func NewToolRepository(db *sql.DB) *ToolRepository {
	return &ToolRepository{db: db}
}

// CreateTool inserts a new tool row.
func (r *ToolRepository) CreateTool(ctx context.Context, tool *models.Tool) (*models.Tool, error) {
	keywords, err := marshalJSONColumn(tool.Keywords)
	if err != nil {
		return nil, err
	}
	steps, err := marshalJSONColumn(tool.Steps)
	if err != nil {
		return nil, err
	}

	var createdBy sql.NullInt64
	if tool.CreatedByUserID != 0 {
		createdBy = sql.NullInt64{Int64: tool.CreatedByUserID, Valid: true}
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO tools (title, keywords, steps, description, created_by_user_id)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		tool.Title, keywords, steps, tool.Description, createdBy,
	).Scan(&tool.ID)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert tool")
		return nil, err
	}

	logger.Log.WithField("tool_id", tool.ID).Info("Tool created successfully")
	return tool, nil
}

// GetAllTools fetches every tool in the toolbox.
func (r *ToolRepository) GetAllTools(ctx context.Context) ([]models.Tool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, keywords, steps, description, created_by_user_id FROM tools`)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch tools")
		return nil, err
	}
	defer rows.Close()

	var tools []models.Tool
	for rows.Next() {
		var (
			tool      models.Tool
			keywords  sql.NullString
			steps     sql.NullString
			createdBy sql.NullInt64
		)
		if err := rows.Scan(&tool.ID, &tool.Title, &keywords, &steps, &tool.Description, &createdBy); err != nil {
			logger.Log.WithError(err).Error("Failed to scan tool row")
			return nil, err
		}
		if err := unmarshalJSONColumn(keywords, &tool.Keywords); err != nil {
			return nil, err
		}
		if err := unmarshalJSONColumn(steps, &tool.Steps); err != nil {
			return nil, err
		}
		tool.CreatedByUserID = createdBy.Int64
		tools = append(tools, tool)
	}
	return tools, rows.Err()
}
