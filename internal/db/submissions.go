package db

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"newsreview/internal/models"
)

const submissionsTable = "newsletter_submissions"

// submissionColumns is the standard column list for submission queries.
const submissionColumns = `id, title, description, pricing, frequency, categories, url, og_image,
	submitter_name, submitter_email, created_at, rejected, uploaded`

// activeSubmission is the equality filter that defines the review queue.
var activeSubmission = sq.Eq{"rejected": false, "uploaded": false}

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var s models.Submission
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Description,
		&s.Pricing,
		&s.Frequency,
		&s.Categories,
		&s.URL,
		&s.OGImage,
		&s.SubmitterName,
		&s.SubmitterEmail,
		&s.CreatedAt,
		&s.Rejected,
		&s.Uploaded,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// selectSubmissions runs a filtered select with equality predicates only.
func (d *DB) selectSubmissions(ctx context.Context, where sq.Eq) ([]models.Submission, error) {
	query, args, err := psql.Select(submissionColumns).
		From(submissionsTable).
		Where(where).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := []models.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *s)
	}
	return submissions, rows.Err()
}

// updateSubmission applies a partial update to an active submission. A submission
// that exists but was already rejected or uploaded yields ErrSubmissionNotActive.
func (d *DB) updateSubmission(ctx context.Context, id int64, fields map[string]any) error {
	query, args, err := psql.Update(submissionsTable).
		SetMap(fields).
		Where(sq.And{sq.Eq{"id": id}, activeSubmission}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := d.Pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		if _, err := d.GetSubmission(ctx, id); err != nil {
			return err
		}
		return ErrSubmissionNotActive
	}
	return nil
}

// ListActiveSubmissions returns every submission that is neither rejected nor uploaded,
// oldest first.
func (d *DB) ListActiveSubmissions(ctx context.Context) ([]models.Submission, error) {
	return d.selectSubmissions(ctx, activeSubmission)
}

// GetSubmission retrieves a submission by ID regardless of its flags.
func (d *DB) GetSubmission(ctx context.Context, id int64) (*models.Submission, error) {
	query, args, err := psql.Select(submissionColumns).
		From(submissionsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanSubmission(d.Pool.QueryRow(ctx, query, args...))
}

// CountActiveSubmissions returns the size of the review queue.
func (d *DB) CountActiveSubmissions(ctx context.Context) (int, error) {
	query, args, err := psql.Select("COUNT(*)").
		From(submissionsTable).
		Where(activeSubmission).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = d.Pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

// CreateSubmission inserts a new pending submission.
func (d *DB) CreateSubmission(ctx context.Context, s *models.Submission) error {
	query := `
		INSERT INTO newsletter_submissions
			(title, description, pricing, frequency, categories, url, og_image, submitter_name, submitter_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, rejected, uploaded
	`
	return d.Pool.QueryRow(ctx, query,
		s.Title,
		s.Description,
		s.Pricing,
		s.Frequency,
		nonNilStrings(s.Categories),
		s.URL,
		s.OGImage,
		s.SubmitterName,
		s.SubmitterEmail,
	).Scan(&s.ID, &s.CreatedAt, &s.Rejected, &s.Uploaded)
}

// MarkSubmissionRejected sets rejected = true on a submission.
func (d *DB) MarkSubmissionRejected(ctx context.Context, id int64) error {
	return d.updateSubmission(ctx, id, map[string]any{"rejected": true})
}

// MarkSubmissionUploaded sets uploaded = true on a submission.
func (d *DB) MarkSubmissionUploaded(ctx context.Context, id int64) error {
	return d.updateSubmission(ctx, id, map[string]any{"uploaded": true})
}
