package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"newsreview/internal/models"
	"newsreview/internal/review"
)

// Promote runs a whole promotion inside a single transaction: insert the newsletter,
// back-link every related newsletter and mark the submission uploaded. Any failure
// rolls back every step, so the returned *review.PromotionError never carries a
// published id.
func (d *DB) Promote(ctx context.Context, p models.Promotion) (*models.PromotionResult, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock the source submission so a concurrent reject cannot interleave
	var rejected, uploaded bool
	err = tx.QueryRow(ctx, `
		SELECT rejected, uploaded FROM newsletter_submissions
		WHERE id = $1
		FOR UPDATE
	`, p.SubmissionID).Scan(&rejected, &uploaded)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &review.PromotionError{Step: models.StepCheck, Err: ErrSubmissionNotFound}
	}
	if err != nil {
		return nil, &review.PromotionError{Step: models.StepCheck, Err: err}
	}
	if rejected || uploaded {
		return nil, &review.PromotionError{Step: models.StepCheck, Err: ErrSubmissionNotActive}
	}

	item := p.Item
	item.Related = p.RelatedIDs
	if err := insertPublishedItem(ctx, tx, &item); err != nil {
		return nil, &review.PromotionError{Step: models.StepInsert, Err: err}
	}

	for _, relatedID := range p.RelatedIDs {
		if err := appendRelatedItem(ctx, tx, relatedID, item.ID); err != nil {
			return nil, &review.PromotionError{Step: models.StepBacklink, RelatedID: relatedID, Err: err}
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE newsletter_submissions SET uploaded = TRUE WHERE id = $1
	`, p.SubmissionID); err != nil {
		return nil, &review.PromotionError{Step: models.StepUploaded, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.PromotionResult{
		SubmissionID: p.SubmissionID,
		PublishedID:  item.ID,
		Linked:       append([]int64{}, p.RelatedIDs...),
	}, nil
}
