package email

import (
	"context"

	"go.uber.org/zap"

	"newsreview/internal/config"
	"newsreview/internal/models"
)

// PublishedGetter looks up a published newsletter.
type PublishedGetter interface {
	GetPublishedItem(ctx context.Context, id int64) (*models.PublishedItem, error)
}

// Notifier emails submitters when their submission leaves the review queue.
type Notifier struct {
	service   *Service
	templates *Templates
	cfg       *config.Config
	db        PublishedGetter
	logger    *zap.Logger
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config, db PublishedGetter, logger *zap.Logger) *Notifier {
	return &Notifier{
		service:   NewService(cfg, logger),
		templates: NewTemplates(cfg),
		cfg:       cfg,
		db:        db,
		logger:    logger,
	}
}

func (n *Notifier) shouldNotify(sub models.Submission) bool {
	return n.service.IsEnabled() && n.cfg.EmailNotifySubmitter && sub.SubmitterEmail != ""
}

// SubmissionRejected tells the submitter their newsletter was not listed.
func (n *Notifier) SubmissionRejected(_ context.Context, sub models.Submission) {
	if !n.shouldNotify(sub) {
		return
	}

	subject, htmlBody, textBody := n.templates.SubmissionRejected(sub)
	n.service.SendAsync([]string{sub.SubmitterEmail}, subject, htmlBody, textBody)
}

// SubmissionPromoted tells the submitter their newsletter is now published.
func (n *Notifier) SubmissionPromoted(ctx context.Context, sub models.Submission, result *models.PromotionResult) {
	if !n.shouldNotify(sub) || result == nil {
		return
	}

	item, err := n.db.GetPublishedItem(ctx, result.PublishedID)
	if err != nil {
		n.logger.Warn("failed to load published newsletter for notification",
			zap.Int64("published_id", result.PublishedID),
			zap.Error(err),
		)
		return
	}

	subject, htmlBody, textBody := n.templates.SubmissionPublished(sub, *item)
	n.service.SendAsync([]string{sub.SubmitterEmail}, subject, htmlBody, textBody)
}
