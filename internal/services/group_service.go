package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/internal/repository"
	"github.com/sirupsen/logrus"
)

// DefaultProofFrequency is the weekly proof quota used when a membership has
// none configured.
const DefaultProofFrequency = 7

// GroupSummary is a group together with its member count.
type GroupSummary struct {
	models.Group
	Members int `json:"members"`
}

// GroupDetail is a group together with its full member list.
type GroupDetail struct {
	models.Group
	Members []models.GroupMember `json:"members"`
}

// GroupService encapsulates the business logic for groups, proofs and the
// group feed.
type GroupService struct {
	repo     *repository.GroupRepository
	proofs   *repository.ProofRepository
	messages *repository.MessageRepository
}

// NewGroupService creates a new instance of GroupService.
func NewGroupService(repo *repository.GroupRepository, proofs *repository.ProofRepository, messages *repository.MessageRepository) *GroupService {
	return &GroupService{
		repo:     repo,
		proofs:   proofs,
		messages: messages,
	}
}

// CreateGroup stores a new group and enrolls the creator as its owner
// member.
func (s *GroupService) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	if group.Name == "" {
		return nil, fmt.Errorf("group name is required")
	}

	created, err := s.repo.CreateGroup(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %v", err)
	}

	member := &models.GroupMember{
		GroupID:          created.ID,
		UserID:           created.OwnerID,
		Role:             "owner",
		FrequencyPerWeek: DefaultProofFrequency,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to enroll group owner: %v", err)
	}

	return created, nil
}

// ListGroups retrieves all groups with member counts, optionally filtered by
// visibility.
func (s *GroupService) ListGroups(ctx context.Context, isPublic *bool) ([]GroupSummary, error) {
	groups, err := s.repo.GetGroups(ctx, isPublic)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch groups: %v", err)
	}
	return s.summarize(ctx, groups)
}

// ListMyGroups retrieves the groups the user belongs to, with member counts.
func (s *GroupService) ListMyGroups(ctx context.Context, userID int64) ([]GroupSummary, error) {
	groups, err := s.repo.GetGroupsByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch groups: %v", err)
	}
	return s.summarize(ctx, groups)
}

func (s *GroupService) summarize(ctx context.Context, groups []models.Group) ([]GroupSummary, error) {
	summaries := make([]GroupSummary, 0, len(groups))
	for _, group := range groups {
		count, err := s.repo.CountMembers(ctx, group.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count members: %v", err)
		}
		summaries = append(summaries, GroupSummary{Group: group, Members: count})
	}
	return summaries, nil
}

// GetGroupDetail retrieves a group with its member list.
func (s *GroupService) GetGroupDetail(ctx context.Context, groupID int64) (*GroupDetail, error) {
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %v", err)
	}

	members, err := s.repo.GetMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %v", err)
	}
	return &GroupDetail{Group: *group, Members: members}, nil
}

// JoinGroup enrolls a user as a member. Joining a group twice is a no-op.
// A zero or negative frequency falls back to the default weekly quota.
func (s *GroupService) JoinGroup(ctx context.Context, groupID, userID int64, habitTitle string, frequencyPerWeek int) error {
	if _, err := s.repo.GetGroupByID(ctx, groupID); errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("failed to get group: %v", err)
	}

	if _, err := s.repo.GetMember(ctx, groupID, userID); err == nil {
		return nil // already a member
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check membership: %v", err)
	}

	if frequencyPerWeek <= 0 {
		frequencyPerWeek = DefaultProofFrequency
	}

	member := &models.GroupMember{
		GroupID:          groupID,
		UserID:           userID,
		Role:             "member",
		HabitTitle:       habitTitle,
		FrequencyPerWeek: frequencyPerWeek,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return fmt.Errorf("failed to join group: %v", err)
	}
	return nil
}

// RecordProof inserts a proof for (group, member, today) after checking the
// member's weekly quota. Proofs from Monday through today count against the
// quota; the window advancing is what lets old proofs stop counting. The cap
// is soft: concurrent submissions near the boundary may both pass.
func (s *GroupService) RecordProof(ctx context.Context, groupID, userID int64, today time.Time, imageURL, caption string) (*models.Proof, error) {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %v", err)
	}

	limit := member.FrequencyPerWeek
	if limit <= 0 {
		limit = DefaultProofFrequency
	}

	count, err := s.proofs.CountInRange(ctx, groupID, userID, WeekStart(today), today)
	if err != nil {
		return nil, fmt.Errorf("failed to count proofs: %v", err)
	}
	if count >= limit {
		logrus.WithFields(logrus.Fields{
			"group_id": groupID,
			"user_id":  userID,
			"count":    count,
			"limit":    limit,
		}).Warn("Weekly proof limit reached")
		return nil, &QuotaExceededError{Count: count, Limit: limit}
	}

	proof := &models.Proof{
		GroupID:  groupID,
		UserID:   userID,
		Day:      today.Format(models.DayFormat),
		ImageURL: imageURL,
		Caption:  caption,
	}
	return s.proofs.CreateProof(ctx, proof)
}

// WeekProofs retrieves all proofs of a group inside today's Monday-Sunday
// window.
func (s *GroupService) WeekProofs(ctx context.Context, groupID int64, today time.Time) ([]models.Proof, error) {
	if _, err := s.repo.GetGroupByID(ctx, groupID); errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get group: %v", err)
	}

	proofs, err := s.proofs.GetInRange(ctx, groupID, WeekStart(today), WeekEnd(today))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch proofs: %v", err)
	}
	return proofs, nil
}

// PostMessage stores a feed message from a member. A proof-type message with
// an image also records a proof entry for today; that side entry bypasses
// the quota, matching the feed shortcut's behavior.
func (s *GroupService) PostMessage(ctx context.Context, groupID, userID int64, today time.Time, content, msgType, imageURL string) (*models.Message, error) {
	if _, err := s.repo.GetMember(ctx, groupID, userID); errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotMember
	} else if err != nil {
		return nil, fmt.Errorf("failed to check membership: %v", err)
	}

	msg := &models.Message{
		GroupID:  groupID,
		UserID:   userID,
		Content:  content,
		Type:     msgType,
		ImageURL: imageURL,
	}

	if msgType == models.MessageTypeProof && imageURL != "" {
		proof := &models.Proof{
			GroupID:  groupID,
			UserID:   userID,
			Day:      today.Format(models.DayFormat),
			ImageURL: imageURL,
			Caption:  content,
		}
		if _, err := s.proofs.CreateProof(ctx, proof); err != nil {
			return nil, fmt.Errorf("failed to record proof from message: %v", err)
		}
	}

	return s.messages.CreateMessage(ctx, msg)
}

// ListLearnings retrieves every learning-type message across all groups,
// newest first.
func (s *GroupService) ListLearnings(ctx context.Context) ([]models.Message, error) {
	learnings, err := s.messages.GetLearnings(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch learnings: %v", err)
	}
	return learnings, nil
}

// ListMessages retrieves a page of a group's feed, oldest first within the
// page. The limit is clamped to 1..200 with a default of 50.
func (s *GroupService) ListMessages(ctx context.Context, groupID int64, msgType string, limit, offset int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	msgs, err := s.messages.GetMessages(ctx, groupID, msgType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %v", err)
	}
	return msgs, nil
}
