// internal/profiles/routes.go

package profiles

import (
	"github.com/go-chi/chi/v5"

	"github.com/sparkevents/spark-backend/internal/auth"
)

// RegisterRoutes registers all profile snapshot routes
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware *auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/api/v1/profile", handler.GetMyProfile)
		r.Put("/api/v1/profile", handler.UpdateMyProfile)
		r.Post("/api/v1/profile/assessment", handler.SubmitAssessment)
		r.Put("/api/v1/profile/dealbreakers", handler.UpdateDealbreakers)
	})
}
