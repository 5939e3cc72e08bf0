package review

import (
	"errors"
	"fmt"
)

var (
	// Session errors
	ErrEmptyQueue        = errors.New("no submissions awaiting review")
	ErrBusy              = errors.New("another review action is still in progress")
	ErrNoPendingApproval = errors.New("approval has not been requested for this submission")
	ErrStaleApproval     = errors.New("the submission changed since approval was requested")

	// Draft errors
	ErrEmptyCategory     = errors.New("category text is empty")
	ErrCategoryLimit     = errors.New("a submission can have at most 3 categories")
	ErrCategoryTooLong   = errors.New("category text is too long")
	ErrDuplicateCategory = errors.New("category is already on this submission")
	ErrCategoryNotFound  = errors.New("category is not on this submission")
	ErrInvalidPricing    = errors.New("pricing must be FREE, FREEMIUM or PAID")
	ErrInvalidFrequency  = errors.New("frequency must be daily, weekly or monthly")
	ErrUnknownCandidate  = errors.New("newsletter is not a similarity candidate for this submission")
)

// PromotionError reports a promotion that stopped part way. Steps completed before
// Step are not rolled back.
type PromotionError struct {
	Step        string  // step that failed, see models.Step*
	PublishedID int64   // zero if the insert never happened
	Linked      []int64 // related items whose backlink was written
	RelatedID   int64   // related item being written when Step is backlink
	Err         error
}

func (e *PromotionError) Error() string {
	if e.RelatedID != 0 {
		return fmt.Sprintf("promotion failed at %s (newsletter %d): %v", e.Step, e.RelatedID, e.Err)
	}
	return fmt.Sprintf("promotion failed at %s: %v", e.Step, e.Err)
}

func (e *PromotionError) Unwrap() error {
	return e.Err
}

// Partial reports whether the failure left writes behind.
func (e *PromotionError) Partial() bool {
	return e.PublishedID != 0
}
