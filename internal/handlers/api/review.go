package api

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/utils/v2"
	"go.uber.org/zap"

	"newsreview/internal/db"
	"newsreview/internal/handlers"
	"newsreview/internal/metrics"
	"newsreview/internal/models"
	"newsreview/internal/review"
)

// AttemptLister lists recent promotion attempts.
type AttemptLister interface {
	ListPromotionAttempts(ctx context.Context, limit int) ([]models.PromotionAttempt, error)
}

// ReviewHandler exposes the review session as JSON.
type ReviewHandler struct {
	sessions *review.Registry
	attempts AttemptLister
	logger   *zap.Logger
}

// NewReviewHandler creates a new API review handler.
func NewReviewHandler(sessions *review.Registry, attempts AttemptLister, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{sessions: sessions, attempts: attempts, logger: logger}
}

func (h *ReviewHandler) open(c fiber.Ctx) *review.Session {
	s, err := h.sessions.Open(c.Context(), handlers.SessionKey(c))
	if err != nil {
		h.logger.Warn("initial queue load failed", zap.Error(err))
	}
	return s
}

// statusFor maps a review error to an HTTP status code.
func statusFor(err error) int {
	var perr *review.PromotionError
	switch {
	case errors.Is(err, review.ErrBusy),
		errors.Is(err, review.ErrEmptyQueue),
		errors.Is(err, review.ErrNoPendingApproval),
		errors.Is(err, review.ErrStaleApproval),
		errors.Is(err, db.ErrSubmissionNotActive),
		errors.Is(err, db.ErrSubmissionNotFound):
		return fiber.StatusConflict
	case errors.As(err, &perr):
		return fiber.StatusBadGateway
	case errors.Is(err, review.ErrCategoryNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, review.ErrEmptyCategory),
		errors.Is(err, review.ErrCategoryLimit),
		errors.Is(err, review.ErrCategoryTooLong),
		errors.Is(err, review.ErrDuplicateCategory),
		errors.Is(err, review.ErrInvalidPricing),
		errors.Is(err, review.ErrInvalidFrequency),
		errors.Is(err, review.ErrUnknownCandidate):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusBadGateway
	}
}

func (h *ReviewHandler) fail(c fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusBadGateway {
		h.logger.Error("review action failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return jsonError(c, status, err.Error())
}

// snapshot refreshes stale candidates and returns the session view.
func (h *ReviewHandler) snapshot(c fiber.Ctx, s *review.Session) review.Snapshot {
	if err := s.EnsureCandidates(c.Context()); err != nil && !errors.Is(err, review.ErrEmptyQueue) {
		h.logger.Warn("failed to refresh similarity candidates", zap.Error(err))
	}
	return s.Snapshot()
}

// Get returns the current review snapshot.
func (h *ReviewHandler) Get(c fiber.Ctx) error {
	s := h.open(c)
	return jsonSuccess(c, h.snapshot(c, s))
}

// Reset discards the caller's review session and starts over from a fresh
// queue load. Drafts and selections are lost.
func (h *ReviewHandler) Reset(c fiber.Ctx) error {
	h.sessions.Drop(handlers.SessionKey(c))
	s := h.open(c)
	return jsonSuccess(c, h.snapshot(c, s))
}

// Action runs previous, next, skip, reload or reject.
func (h *ReviewHandler) Action(c fiber.Ctx) error {
	s := h.open(c)

	action := utils.CopyString(c.Params("action"))
	var err error
	switch action {
	case metrics.ActionPrevious:
		err = s.Previous()
	case metrics.ActionNext:
		err = s.Next()
	case metrics.ActionSkip:
		err = s.Skip()
	case metrics.ActionReload:
		err = s.Load(c.Context())
	case metrics.ActionReject:
		err = s.Reject(c.Context())
	default:
		return jsonError(c, fiber.StatusNotFound, "unknown review action")
	}
	if err != nil {
		return h.fail(c, err)
	}

	metrics.RecordAction(action)
	return jsonSuccess(c, h.snapshot(c, s))
}

// UpdateDraft applies a partial draft update.
func (h *ReviewHandler) UpdateDraft(c fiber.Ctx) error {
	var body draftRequest
	if err := bindJSON(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	s := h.open(c)
	update := review.DraftUpdate{
		Description:      body.Description,
		ShortDescription: body.ShortDescription,
		Pricing:          body.Pricing,
		Frequency:        body.Frequency,
	}
	if err := s.UpdateDraft(update); err != nil {
		return h.fail(c, err)
	}

	return jsonSuccess(c, s.Snapshot())
}

// AddCategory adds a category and re-ranks candidates.
func (h *ReviewHandler) AddCategory(c fiber.Ctx) error {
	var body categoryRequest
	if err := bindJSON(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	s := h.open(c)
	if err := s.AddCategory(body.Category); err != nil {
		return h.fail(c, err)
	}
	if err := s.RefreshCandidates(c.Context()); err != nil {
		return h.fail(c, err)
	}
	return jsonSuccess(c, s.Snapshot())
}

// RemoveCategory removes a category and re-ranks candidates.
func (h *ReviewHandler) RemoveCategory(c fiber.Ctx) error {
	category, err := url.PathUnescape(c.Params("category"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid category")
	}

	s := h.open(c)
	if err := s.RemoveCategory(category); err != nil {
		return h.fail(c, err)
	}
	if err := s.RefreshCandidates(c.Context()); err != nil {
		return h.fail(c, err)
	}
	return jsonSuccess(c, s.Snapshot())
}

// ToggleRelated selects or deselects a similarity candidate.
func (h *ReviewHandler) ToggleRelated(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid newsletter id")
	}

	s := h.open(c)
	selected, err := s.ToggleRelated(id)
	if err != nil {
		return h.fail(c, err)
	}
	return jsonSuccess(c, fiber.Map{
		"id":       id,
		"selected": selected,
		"review":   s.Snapshot(),
	})
}

// RequestApproval returns the promotion preview and arms confirmation.
func (h *ReviewHandler) RequestApproval(c fiber.Ctx) error {
	s := h.open(c)
	preview, err := s.RequestApproval()
	if err != nil {
		return h.fail(c, err)
	}
	return jsonSuccess(c, preview)
}

// CancelApproval withdraws a pending confirmation.
func (h *ReviewHandler) CancelApproval(c fiber.Ctx) error {
	s := h.open(c)
	s.CancelApproval()
	return jsonSuccess(c, s.Snapshot())
}

// ConfirmApproval runs the promotion.
func (h *ReviewHandler) ConfirmApproval(c fiber.Ctx) error {
	s := h.open(c)
	result, err := s.ConfirmApproval(c.Context())
	if err != nil {
		var perr *review.PromotionError
		if errors.As(err, &perr) {
			metrics.RecordPromotionFailure(perr.Step)
			h.logger.Error("promotion failed", zap.String("step", perr.Step), zap.Error(err))
			return jsonErrorWithData(c, statusFor(err), err.Error(), fiber.Map{
				"step":         perr.Step,
				"published_id": perr.PublishedID,
				"linked":       perr.Linked,
				"partial":      perr.Partial(),
			})
		}
		return h.fail(c, err)
	}

	metrics.RecordAction(metrics.ActionApprove)
	return jsonSuccess(c, fiber.Map{
		"result": result,
		"review": h.snapshot(c, s),
	})
}

// ListPromotions returns recent promotion attempts, newest first.
func (h *ReviewHandler) ListPromotions(c fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		return jsonError(c, fiber.StatusBadRequest, "limit must be between 1 and 500")
	}

	attempts, err := h.attempts.ListPromotionAttempts(c.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list promotion attempts", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch promotion attempts")
	}
	if attempts == nil {
		attempts = []models.PromotionAttempt{}
	}
	return jsonSuccess(c, attempts)
}
