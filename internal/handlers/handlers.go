// Package handlers serves the HTML review UI.
package handlers

import (
	"errors"
	"html"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"go.uber.org/zap"

	"newsreview/internal/models"
	"newsreview/internal/review"
)

// defaultSessionKey is used when no session middleware is installed.
const defaultSessionKey = "default"

// SessionKey identifies the operator's review session from the HTTP session.
func SessionKey(c fiber.Ctx) string {
	if sess := session.FromContext(c); sess != nil {
		if id := sess.ID(); id != "" {
			return id
		}
	}
	return defaultSessionKey
}

// htmxError returns an error message as HTML that HTMX will display.
// Uses 200 status so HTMX processes the swap (HTMX ignores non-2xx by default).
func htmxError(c fiber.Ctx, message string) error {
	c.Set("HX-Retarget", "#review-errors")
	c.Set("HX-Reswap", "innerHTML")
	return c.SendString(
		`<div class="p-3 rounded-lg bg-red-50 dark:bg-red-900/30 text-red-700 dark:text-red-300 text-sm">` + html.EscapeString(message) + `</div>`,
	)
}

// isOperatorError reports whether err is a review rule the operator can act on.
func isOperatorError(err error) bool {
	var perr *review.PromotionError
	switch {
	case errors.As(err, &perr):
		return true
	case errors.Is(err, review.ErrEmptyQueue),
		errors.Is(err, review.ErrBusy),
		errors.Is(err, review.ErrNoPendingApproval),
		errors.Is(err, review.ErrStaleApproval),
		errors.Is(err, review.ErrEmptyCategory),
		errors.Is(err, review.ErrCategoryLimit),
		errors.Is(err, review.ErrCategoryTooLong),
		errors.Is(err, review.ErrDuplicateCategory),
		errors.Is(err, review.ErrCategoryNotFound),
		errors.Is(err, review.ErrInvalidPricing),
		errors.Is(err, review.ErrInvalidFrequency),
		errors.Is(err, review.ErrUnknownCandidate),
		errors.Is(err, models.ErrSubmissionNotActive):
		return true
	}
	return false
}

// reviewError reports a failed review action to the operator.
func reviewError(c fiber.Ctx, logger *zap.Logger, err error) error {
	if isOperatorError(err) {
		return htmxError(c, err.Error())
	}
	logger.Error("review action failed", zap.String("path", c.Path()), zap.Error(err))
	return htmxError(c, "The store could not be reached: "+err.Error())
}
