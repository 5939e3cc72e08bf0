package models

import (
	"time"

	"github.com/google/uuid"
)

// Promotion steps, used to report where a promotion stopped.
const (
	StepCheck    = "check_source"
	StepInsert   = "insert"
	StepBacklink = "backlink"
	StepUploaded = "mark_uploaded"
)

// Promotion attempt statuses
const (
	AttemptSucceeded = "succeeded"
	AttemptFailed    = "failed"
)

// Promotion is the normalized payload for turning a submission into a published item.
type Promotion struct {
	SubmissionID int64         `json:"submission_id"`
	Item         PublishedItem `json:"item"`
	RelatedIDs   []int64       `json:"related_ids"`
}

// PromotionResult describes what a completed promotion wrote.
type PromotionResult struct {
	SubmissionID int64   `json:"submission_id"`
	PublishedID  int64   `json:"published_id"`
	Linked       []int64 `json:"linked"`
}

// PromotionAttempt records one promotion run and how far it got.
type PromotionAttempt struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID int64     `json:"submission_id"`
	PublishedID  *int64    `json:"published_id"`
	Linked       []int64   `json:"linked"`
	Status       string    `json:"status"` // succeeded, failed
	FailedStep   string    `json:"failed_step,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsPartial reports whether a failed attempt left writes behind.
func (a *PromotionAttempt) IsPartial() bool {
	return a.Status == AttemptFailed && a.PublishedID != nil
}
