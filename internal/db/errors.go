package db

import "newsreview/internal/models"

// Domain-level database error sentinels. They are the models errors so callers
// that cannot import db can still match them.
var (
	ErrSubmissionNotFound  = models.ErrSubmissionNotFound
	ErrSubmissionNotActive = models.ErrSubmissionNotActive
	ErrPublishedNotFound   = models.ErrPublishedNotFound
	ErrVersionConflict     = models.ErrVersionConflict
)
