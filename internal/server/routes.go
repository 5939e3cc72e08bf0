package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsreview/internal/config"
	"newsreview/internal/handlers"
	"newsreview/internal/handlers/api"
	"newsreview/internal/review"
)

// Store is the database surface the routes need directly.
type Store interface {
	handlers.Pinger
	api.AttemptLister
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(sessions *review.Registry, store Store, yamlCfg *config.YAMLConfig) {
	reviewHandler := handlers.NewReviewHandler(sessions, s.Cfg, yamlCfg, s.Logger)
	healthHandler := handlers.NewHealthHandler(store, s.Logger)
	apiReview := api.NewReviewHandler(sessions, store, s.Logger)

	// Operational
	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Review UI; specific routes before the :action catch-all
	s.App.Get("/", reviewHandler.Index)
	s.App.Post("/review/draft", reviewHandler.UpdateDraft)
	s.App.Post("/review/categories", reviewHandler.AddCategory)
	s.App.Post("/review/categories/remove", reviewHandler.RemoveCategory)
	s.App.Post("/review/related/:id", reviewHandler.ToggleRelated)
	s.App.Get("/review/approve", reviewHandler.RequestApproval)
	s.App.Post("/review/approve/cancel", reviewHandler.CancelApproval)
	s.App.Post("/review/approve/confirm", reviewHandler.ConfirmApproval)
	s.App.Post("/review/:action", reviewHandler.Action)

	// JSON API
	v1 := s.App.Group("/api/v1")
	v1.Get("/review", apiReview.Get)
	v1.Delete("/review", apiReview.Reset)
	v1.Patch("/review/draft", apiReview.UpdateDraft)
	v1.Post("/review/categories", apiReview.AddCategory)
	v1.Delete("/review/categories/:category", apiReview.RemoveCategory)
	v1.Post("/review/related/:id", apiReview.ToggleRelated)
	v1.Post("/review/approve", apiReview.RequestApproval)
	v1.Post("/review/approve/confirm", apiReview.ConfirmApproval)
	v1.Delete("/review/approve", apiReview.CancelApproval)
	v1.Post("/review/:action", apiReview.Action)
	v1.Get("/promotions", apiReview.ListPromotions)
}
