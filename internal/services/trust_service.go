package services

import (
	"context"
	"fmt"

	"github.com/MarcBaumholz/habit-toolbox/internal/repository"
	"github.com/sirupsen/logrus"
)

// TrustService encapsulates the business logic for the trust relation.
type TrustService struct {
	repo     *repository.TrustRepository
	userRepo *repository.UserRepository
}

// NewTrustService creates a new instance of TrustService.
func NewTrustService(repo *repository.TrustRepository, userRepo *repository.UserRepository) *TrustService {
	return &TrustService{repo: repo, userRepo: userRepo}
}

// TrustUser records that the caller trusts another user's insights.
func (s *TrustService) TrustUser(ctx context.Context, callerID, trusteeID int64) error {
	if callerID == trusteeID {
		return fmt.Errorf("cannot trust yourself")
	}

	if _, err := s.userRepo.GetUserByID(ctx, trusteeID); err != nil {
		return ErrNotFound
	}

	if err := s.repo.CreateTrust(ctx, callerID, trusteeID); err != nil {
		return fmt.Errorf("failed to trust user: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"truster_id": callerID,
		"trustee_id": trusteeID,
	}).Info("Trust recorded")
	return nil
}

// UntrustUser removes the relation; removing a missing relation is a no-op.
func (s *TrustService) UntrustUser(ctx context.Context, callerID, trusteeID int64) error {
	if err := s.repo.DeleteTrust(ctx, callerID, trusteeID); err != nil {
		return fmt.Errorf("failed to untrust user: %v", err)
	}
	return nil
}

// ListTrusted returns the IDs of all users the caller trusts.
func (s *TrustService) ListTrusted(ctx context.Context, callerID int64) ([]int64, error) {
	ids, err := s.repo.GetTrustedIDs(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trusted users: %v", err)
	}
	return ids, nil
}
