package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
)

// TrustRepository handles the one-directional trust relation between users.
type TrustRepository struct {
	db *sql.DB
}

// NewTrustRepository creates a new instance of TrustRepository.
func NewTrustRepository(db *sql.DB) *TrustRepository {
	return &TrustRepository{db: db}
}

// CreateTrust records that truster trusts trustee. Duplicate calls are a
// no-op.
func (r *TrustRepository) CreateTrust(ctx context.Context, trusterID, trusteeID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trusts (truster_id, trustee_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(truster_id, trustee_id) DO NOTHING`,
		trusterID, trusteeID, time.Now(),
	)
	if err != nil {
		logger.Log.WithError(err).WithField("truster_id", trusterID).Error("Failed to insert trust")
		return err
	}
	return nil
}

// DeleteTrust removes the relation if present.
func (r *TrustRepository) DeleteTrust(ctx context.Context, trusterID, trusteeID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM trusts WHERE truster_id = ? AND trustee_id = ?`,
		trusterID, trusteeID,
	)
	if err != nil {
		logger.Log.WithError(err).WithField("truster_id", trusterID).Error("Failed to delete trust")
		return err
	}
	return nil
}

// GetTrustedIDs returns the IDs of all users the truster trusts.
func (r *TrustRepository) GetTrustedIDs(ctx context.Context, trusterID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT trustee_id FROM trusts WHERE truster_id = ?`, trusterID)
	if err != nil {
		logger.Log.WithError(err).WithField("truster_id", trusterID).Error("Failed to fetch trusted users")
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
