package review

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"newsreview/internal/models"
	"newsreview/internal/validation"
)

// SubmissionStore is the subset of the submission table the review workflow uses.
type SubmissionStore interface {
	ListActiveSubmissions(ctx context.Context) ([]models.Submission, error)
	GetSubmission(ctx context.Context, id int64) (*models.Submission, error)
	MarkSubmissionRejected(ctx context.Context, id int64) error
	MarkSubmissionUploaded(ctx context.Context, id int64) error
}

// PublishedStore is the subset of the published newsletter table the review workflow uses.
type PublishedStore interface {
	ListPublishedItems(ctx context.Context) ([]models.PublishedItem, error)
	GetPublishedItem(ctx context.Context, id int64) (*models.PublishedItem, error)
	InsertPublishedItem(ctx context.Context, item *models.PublishedItem) error
	SetRelatedItems(ctx context.Context, id int64, related []int64, version int64) error
}

// AttemptLog persists a record of every promotion attempt.
type AttemptLog interface {
	RecordPromotionAttempt(ctx context.Context, a *models.PromotionAttempt) error
}

// Promoter turns a normalized promotion into a published newsletter.
type Promoter interface {
	Promote(ctx context.Context, p models.Promotion) (*models.PromotionResult, error)
}

// BuildPromotion normalizes a draft into the payload written on approval:
// description split into lines, categories lowercased, slug derived from the title
// and related ids taken from the selected candidates.
func BuildPromotion(s models.Submission, d *Draft) models.Promotion {
	related := d.SelectedIDs()
	if related == nil {
		related = []int64{}
	}

	return models.Promotion{
		SubmissionID: s.ID,
		Item: models.PublishedItem{
			Title:            s.Title,
			Description:      validation.SplitLines(d.Description),
			ShortDescription: d.ShortDescription,
			Pricing:          d.Pricing,
			Frequency:        d.Frequency,
			Categories:       validation.NormalizeCategories(d.Categories),
			URL:              s.URL,
			Image:            s.OGImage,
			Slug:             validation.Slugify(s.Title),
		},
		RelatedIDs: related,
	}
}

// Workflow promotes a submission one remote step at a time. Nothing is rolled back
// when a later step fails; the returned *PromotionError says what was written.
type Workflow struct {
	submissions SubmissionStore
	published   PublishedStore
	logger      *zap.Logger
}

// NewWorkflow creates a stepwise promotion workflow.
func NewWorkflow(submissions SubmissionStore, published PublishedStore, logger *zap.Logger) *Workflow {
	return &Workflow{submissions: submissions, published: published, logger: logger}
}

// Promote checks the submission is still active, inserts the newsletter, back-links
// each related newsletter in order and marks the submission uploaded.
func (w *Workflow) Promote(ctx context.Context, p models.Promotion) (*models.PromotionResult, error) {
	source, err := w.submissions.GetSubmission(ctx, p.SubmissionID)
	if err != nil {
		return nil, &PromotionError{Step: models.StepCheck, Err: err}
	}
	if !source.IsActive() {
		return nil, &PromotionError{Step: models.StepCheck, Err: models.ErrSubmissionNotActive}
	}

	item := p.Item
	item.Related = slices.Clone(p.RelatedIDs)
	if err := w.published.InsertPublishedItem(ctx, &item); err != nil {
		return nil, &PromotionError{Step: models.StepInsert, Err: err}
	}

	// Sequential on purpose: each backlink is a read-modify-write of a shared list.
	linked := []int64{}
	for _, relatedID := range p.RelatedIDs {
		if err := w.backlink(ctx, relatedID, item.ID); err != nil {
			return nil, &PromotionError{
				Step:        models.StepBacklink,
				PublishedID: item.ID,
				Linked:      linked,
				RelatedID:   relatedID,
				Err:         err,
			}
		}
		linked = append(linked, relatedID)
	}

	if err := w.submissions.MarkSubmissionUploaded(ctx, p.SubmissionID); err != nil {
		return nil, &PromotionError{
			Step:        models.StepUploaded,
			PublishedID: item.ID,
			Linked:      linked,
			Err:         err,
		}
	}

	w.logger.Info("submission promoted",
		zap.Int64("submission_id", p.SubmissionID),
		zap.Int64("published_id", item.ID),
		zap.Int64s("linked", linked),
	)

	return &models.PromotionResult{
		SubmissionID: p.SubmissionID,
		PublishedID:  item.ID,
		Linked:       linked,
	}, nil
}

// backlink re-reads a related newsletter and writes its list back with newID
// appended. The write only lands if nobody changed the list in between.
func (w *Workflow) backlink(ctx context.Context, id, newID int64) error {
	current, err := w.published.GetPublishedItem(ctx, id)
	if err != nil {
		return err
	}
	if current.IsRelatedTo(newID) {
		return nil
	}
	related := append(slices.Clone(current.Related), newID)
	return w.published.SetRelatedItems(ctx, id, related, current.Version)
}

// recordingPromoter writes an attempt log entry around another promoter.
type recordingPromoter struct {
	next   Promoter
	log    AttemptLog
	logger *zap.Logger
}

// WithAttemptLog wraps a promoter so that every attempt, successful or not, is
// recorded. Failing to record never changes the promotion outcome.
func WithAttemptLog(next Promoter, log AttemptLog, logger *zap.Logger) Promoter {
	if log == nil {
		return next
	}
	return &recordingPromoter{next: next, log: log, logger: logger}
}

func (r *recordingPromoter) Promote(ctx context.Context, p models.Promotion) (*models.PromotionResult, error) {
	result, err := r.next.Promote(ctx, p)

	attempt := &models.PromotionAttempt{SubmissionID: p.SubmissionID}
	if err == nil {
		publishedID := result.PublishedID
		attempt.Status = models.AttemptSucceeded
		attempt.PublishedID = &publishedID
		attempt.Linked = result.Linked
	} else {
		attempt.Status = models.AttemptFailed
		attempt.Error = err.Error()
		var perr *PromotionError
		if errors.As(err, &perr) {
			attempt.FailedStep = perr.Step
			attempt.Linked = perr.Linked
			if perr.PublishedID != 0 {
				publishedID := perr.PublishedID
				attempt.PublishedID = &publishedID
			}
		}
	}

	if recErr := r.log.RecordPromotionAttempt(ctx, attempt); recErr != nil {
		r.logger.Error("failed to record promotion attempt",
			zap.Int64("submission_id", p.SubmissionID),
			zap.Error(recErr),
		)
	}

	return result, err
}
