package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
)

// ProofRepository handles proof submissions scoped to a group.
type ProofRepository struct {
	db *sql.DB
}

// NewProofRepository creates a new instance of ProofRepository.
func NewProofRepository(db *sql.DB) *ProofRepository {
	return &ProofRepository{db: db}
}

// CreateProof inserts a new proof row.
func (r *ProofRepository) CreateProof(ctx context.Context, proof *models.Proof) (*models.Proof, error) {
	proof.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO proofs (group_id, user_id, day, image_url, caption, created_at)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		proof.GroupID, proof.UserID, proof.Day, proof.ImageURL, nullable(proof.Caption), proof.CreatedAt,
	).Scan(&proof.ID)
	if err != nil {
		logger.Log.WithError(err).WithField("group_id", proof.GroupID).Error("Failed to insert proof")
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"proof_id": proof.ID,
		"group_id": proof.GroupID,
		"user_id":  proof.UserID,
	}).Info("Proof created successfully")
	return proof, nil
}

// CountInRange counts a member's proofs with day inside [from, to].
func (r *ProofRepository) CountInRange(ctx context.Context, groupID, userID int64, from, to time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM proofs WHERE group_id = ? AND user_id = ? AND day >= ? AND day <= ?`,
		groupID, userID, from.Format(models.DayFormat), to.Format(models.DayFormat),
	).Scan(&count)
	if err != nil {
		logger.Log.WithError(err).WithField("group_id", groupID).Error("Failed to count proofs")
		return 0, err
	}
	return count, nil
}

// GetInRange fetches all proofs of a group with day inside [from, to].
func (r *ProofRepository) GetInRange(ctx context.Context, groupID int64, from, to time.Time) ([]models.Proof, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_id, user_id, day, image_url, caption, created_at
		 FROM proofs WHERE group_id = ? AND day >= ? AND day <= ?
		 ORDER BY day ASC, created_at ASC`,
		groupID, from.Format(models.DayFormat), to.Format(models.DayFormat),
	)
	if err != nil {
		logger.Log.WithError(err).WithField("group_id", groupID).Error("Failed to fetch proofs")
		return nil, err
	}
	defer rows.Close()

	var proofs []models.Proof
	for rows.Next() {
		var (
			proof   models.Proof
			caption sql.NullString
		)
		if err := rows.Scan(&proof.ID, &proof.GroupID, &proof.UserID, &proof.Day, &proof.ImageURL, &caption, &proof.CreatedAt); err != nil {
			logger.Log.WithError(err).Error("Failed to scan proof row")
			return nil, err
		}
		proof.Caption = caption.String
		proofs = append(proofs, proof)
	}
	return proofs, rows.Err()
}
