package roster

import (
	"github.com/gorilla/mux"

	"github.com/sparkevents/spark-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	// Sync and lifecycle endpoints are admin-only; the booking subsystem
	// calls them with the shared admin key.
	admin := router.PathPrefix("/api/v1/admin/events").Subrouter()
	admin.Use(authMiddleware.RequireAdmin)

	admin.HandleFunc("", handler.SyncEvent).Methods("POST")
	admin.HandleFunc("/{id}/close-submissions", handler.CloseSubmissions).Methods("POST")
	admin.HandleFunc("/{id}/release-results", handler.ReleaseResults).Methods("POST")

	api := router.PathPrefix("/api/v1/events").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.HandleFunc("/{id}", handler.GetEvent).Methods("GET")
}
