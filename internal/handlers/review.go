package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/utils/v2"
	"go.uber.org/zap"

	"newsreview/internal/config"
	"newsreview/internal/metrics"
	"newsreview/internal/models"
	"newsreview/internal/review"
)

// ReviewHandler serves the review page and its HTMX actions.
type ReviewHandler struct {
	sessions    *review.Registry
	cfg         *config.Config
	suggestions []string
	logger      *zap.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(sessions *review.Registry, cfg *config.Config, yamlCfg *config.YAMLConfig, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		sessions:    sessions,
		cfg:         cfg,
		suggestions: yamlCfg.Suggestions(),
		logger:      logger,
	}
}

// open returns the operator's session. A failed first load is rendered from
// the session's own load error.
func (h *ReviewHandler) open(c fiber.Ctx) *review.Session {
	s, err := h.sessions.Open(c.Context(), SessionKey(c))
	if err != nil {
		h.logger.Warn("initial queue load failed", zap.Error(err))
	}
	return s
}

// pageData builds the template data for the review card.
func (h *ReviewHandler) pageData(c fiber.Ctx, s *review.Session, flash string) fiber.Map {
	if err := s.EnsureCandidates(c.Context()); err != nil && !errors.Is(err, review.ErrEmptyQueue) {
		h.logger.Warn("failed to refresh similarity candidates", zap.Error(err))
	}

	snap := s.Snapshot()
	data := fiber.Map{
		"Title":       "Review",
		"Snap":        snap,
		"Selected":    selectedSet(snap.Selected),
		"Pricing":     models.PricingTiers,
		"Frequencies": models.Frequencies,
		"Suggestions": h.suggestions,
		"Flash":       flash,
	}
	if snap.Draft != nil {
		data["CanAddCategory"] = snap.Draft.HasRoomForCategory()
	}
	return MergeBranding(data, h.cfg)
}

func selectedSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// renderCard re-renders the review card partial, or redirects plain form posts
// back to the page.
func (h *ReviewHandler) renderCard(c fiber.Ctx, s *review.Session, flash string) error {
	if c.Get("HX-Request") != "true" {
		return c.Redirect().To("/")
	}
	return c.Render("partials/review_card", h.pageData(c, s, flash), "")
}

// Index renders the review page.
func (h *ReviewHandler) Index(c fiber.Ctx) error {
	s := h.open(c)
	return c.Render("review", h.pageData(c, s, ""))
}

// Action runs a navigation, reload or reject action named by the :action param.
func (h *ReviewHandler) Action(c fiber.Ctx) error {
	s := h.open(c)

	action := utils.CopyString(c.Params("action"))
	flash := ""
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
		flash = "Submission rejected."
	default:
		return fiber.NewError(fiber.StatusNotFound, "unknown review action")
	}
	if err != nil {
		return reviewError(c, h.logger, err)
	}

	metrics.RecordAction(action)
	return h.renderCard(c, s, flash)
}

// UpdateDraft applies the posted draft fields. Fields absent from the form are
// left alone; an invalid field rejects the whole form.
func (h *ReviewHandler) UpdateDraft(c fiber.Ctx) error {
	s := h.open(c)

	args := c.Request().PostArgs()
	field := func(name string) *string {
		if !args.Has(name) {
			return nil
		}
		v := c.FormValue(name)
		return &v
	}

	update := review.DraftUpdate{
		Description:      field("description"),
		ShortDescription: field("short_description"),
		Pricing:          field("pricing"),
		Frequency:        field("frequency"),
	}
	if err := s.UpdateDraft(update); err != nil {
		return reviewError(c, h.logger, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AddCategory adds the posted category and re-ranks candidates.
func (h *ReviewHandler) AddCategory(c fiber.Ctx) error {
	s := h.open(c)

	if err := s.AddCategory(c.FormValue("category")); err != nil {
		return reviewError(c, h.logger, err)
	}
	return h.refreshAndRender(c, s)
}

// RemoveCategory removes the posted category and re-ranks candidates.
func (h *ReviewHandler) RemoveCategory(c fiber.Ctx) error {
	s := h.open(c)

	if err := s.RemoveCategory(c.FormValue("category")); err != nil {
		return reviewError(c, h.logger, err)
	}
	return h.refreshAndRender(c, s)
}

func (h *ReviewHandler) refreshAndRender(c fiber.Ctx, s *review.Session) error {
	if err := s.RefreshCandidates(c.Context()); err != nil {
		return reviewError(c, h.logger, err)
	}
	return h.renderCard(c, s, "")
}

// ToggleRelated selects or deselects a similarity candidate.
func (h *ReviewHandler) ToggleRelated(c fiber.Ctx) error {
	s := h.open(c)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return htmxError(c, "invalid newsletter id")
	}

	if _, err := s.ToggleRelated(id); err != nil {
		return reviewError(c, h.logger, err)
	}
	return h.renderCard(c, s, "")
}

// RequestApproval renders the confirmation panel for the current submission.
func (h *ReviewHandler) RequestApproval(c fiber.Ctx) error {
	s := h.open(c)

	preview, err := s.RequestApproval()
	if err != nil {
		return reviewError(c, h.logger, err)
	}

	return c.Render("partials/approve_confirm", MergeBranding(fiber.Map{
		"Preview": preview,
	}, h.cfg), "")
}

// CancelApproval closes the confirmation panel.
func (h *ReviewHandler) CancelApproval(c fiber.Ctx) error {
	s := h.open(c)

	s.CancelApproval()
	return h.renderCard(c, s, "")
}

// ConfirmApproval promotes the current submission.
func (h *ReviewHandler) ConfirmApproval(c fiber.Ctx) error {
	s := h.open(c)

	result, err := s.ConfirmApproval(c.Context())
	if err != nil {
		var perr *review.PromotionError
		if errors.As(err, &perr) {
			metrics.RecordPromotionFailure(perr.Step)
			if perr.Partial() {
				return htmxError(c, fmt.Sprintf(
					"%s. Newsletter #%d was created and backlinks were written to %v; the submission is still in the queue.",
					err.Error(), perr.PublishedID, perr.Linked,
				))
			}
		}
		return reviewError(c, h.logger, err)
	}

	metrics.RecordAction(metrics.ActionApprove)
	return h.renderCard(c, s, fmt.Sprintf("Published as newsletter #%d.", result.PublishedID))
}
