package models

import "errors"

// Store errors shared by the database layer and the review workflow.
var (
	// Submission errors
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrSubmissionNotActive means another review session already rejected or
	// uploaded the submission.
	ErrSubmissionNotActive = errors.New("submission already rejected or uploaded")

	// Published newsletter errors
	ErrPublishedNotFound = errors.New("published newsletter not found")
	ErrVersionConflict   = errors.New("published newsletter was modified concurrently")
)
