package db

import (
	"context"

	"github.com/google/uuid"

	"newsreview/internal/models"
)

// RecordPromotionAttempt stores one promotion attempt. A missing ID is generated.
func (d *DB) RecordPromotionAttempt(ctx context.Context, a *models.PromotionAttempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	return d.Pool.QueryRow(ctx, `
		INSERT INTO promotion_attempts (id, submission_id, published_id, linked, status, failed_step, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`,
		a.ID,
		a.SubmissionID,
		a.PublishedID,
		nonNilIDs(a.Linked),
		a.Status,
		a.FailedStep,
		a.Error,
	).Scan(&a.CreatedAt)
}

// ListPromotionAttempts returns the most recent promotion attempts, newest first.
func (d *DB) ListPromotionAttempts(ctx context.Context, limit int) ([]models.PromotionAttempt, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.Pool.Query(ctx, `
		SELECT id, submission_id, published_id, linked, status, failed_step, error, created_at
		FROM promotion_attempts
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []models.PromotionAttempt{}
	for rows.Next() {
		var a models.PromotionAttempt
		if err := rows.Scan(
			&a.ID, &a.SubmissionID, &a.PublishedID, &a.Linked, &a.Status, &a.FailedStep, &a.Error, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
