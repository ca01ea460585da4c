package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
)

// GroupRepository handles database operations related to groups and their
// memberships.
type GroupRepository struct {
	db *sql.DB
}

// NewGroupRepository creates a new instance of GroupRepository.
func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// CreateGroup inserts a new group row.
func (r *GroupRepository) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	group.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO groups (name, is_public, owner_id, description, created_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		group.Name, group.IsPublic, group.OwnerID, nullable(group.Description), group.CreatedAt,
	).Scan(&group.ID)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert group")
		return nil, err
	}

	logger.Log.WithField("group_id", group.ID).Info("Group created successfully")
	return group, nil
}

// GetGroupByID fetches a group by its ID.
func (r *GroupRepository) GetGroupByID(ctx context.Context, id int64) (*models.Group, error) {
	var (
		group       models.Group
		description sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, is_public, owner_id, description, created_at FROM groups WHERE id = ?`, id,
	).Scan(&group.ID, &group.Name, &group.IsPublic, &group.OwnerID, &description, &group.CreatedAt)
	if err != nil {
		return nil, err
	}
	group.Description = description.String
	return &group, nil
}

// GetGroups fetches all groups, optionally filtered by visibility, newest
// first.
func (r *GroupRepository) GetGroups(ctx context.Context, isPublic *bool) ([]models.Group, error) {
	query := `SELECT id, name, is_public, owner_id, description, created_at FROM groups`
	args := []interface{}{}
	if isPublic != nil {
		query += ` WHERE is_public = ?`
		args = append(args, *isPublic)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch groups")
		return nil, err
	}
	defer rows.Close()
	return collectGroups(rows)
}

// GetGroupsByMember fetches all groups a user belongs to.
func (r *GroupRepository) GetGroupsByMember(ctx context.Context, userID int64) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.is_public, g.owner_id, g.description, g.created_at
		 FROM group_members m
		 JOIN groups g ON g.id = m.group_id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to fetch member groups")
		return nil, err
	}
	defer rows.Close()
	return collectGroups(rows)
}

// CountMembers returns the number of members in a group.
func (r *GroupRepository) CountMembers(ctx context.Context, groupID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = ?`, groupID,
	).Scan(&count)
	return count, err
}

// AddMember inserts a membership row.
func (r *GroupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	member.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role, habit_title, frequency_per_week, created_at)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		member.GroupID, member.UserID, member.Role, nullable(member.HabitTitle), member.FrequencyPerWeek, member.CreatedAt,
	).Scan(&member.ID)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"group_id": member.GroupID,
			"user_id":  member.UserID,
		}).Error("Failed to insert group member")
		return err
	}

	logger.Log.WithFields(map[string]interface{}{
		"group_id": member.GroupID,
		"user_id":  member.UserID,
	}).Info("Group member added")
	return nil
}

// GetMember fetches the membership of a user in a group.
func (r *GroupRepository) GetMember(ctx context.Context, groupID, userID int64) (*models.GroupMember, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, group_id, user_id, role, habit_title, frequency_per_week, created_at
		 FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	)
	return scanMember(row)
}

// GetMembers fetches all memberships of a group.
func (r *GroupRepository) GetMembers(ctx context.Context, groupID int64) ([]models.GroupMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_id, user_id, role, habit_title, frequency_per_week, created_at
		 FROM group_members WHERE group_id = ? ORDER BY created_at ASC`,
		groupID,
	)
	if err != nil {
		logger.Log.WithError(err).WithField("group_id", groupID).Error("Failed to fetch group members")
		return nil, err
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}
	return members, rows.Err()
}

func scanMember(row rowScanner) (*models.GroupMember, error) {
	var (
		member     models.GroupMember
		habitTitle sql.NullString
	)
	err := row.Scan(&member.ID, &member.GroupID, &member.UserID, &member.Role,
		&habitTitle, &member.FrequencyPerWeek, &member.CreatedAt)
	if err != nil {
		return nil, err
	}
	member.HabitTitle = habitTitle.String
	return &member, nil
}

func collectGroups(rows *sql.Rows) ([]models.Group, error) {
	var groups []models.Group
	for rows.Next() {
		var (
			group       models.Group
			description sql.NullString
		)
		if err := rows.Scan(&group.ID, &group.Name, &group.IsPublic, &group.OwnerID, &description, &group.CreatedAt); err != nil {
			logger.Log.WithError(err).Error("Failed to scan group row")
			return nil, err
		}
		group.Description = description.String
		groups = append(groups, group)
	}
	return groups, rows.Err()
}
