package compat

import (
	"github.com/gorilla/mux"

	"github.com/sparkevents/spark-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	member := router.PathPrefix("/api/v1").Subrouter()
	member.Use(authMiddleware.Authenticate)
	member.HandleFunc("/recommendations", handler.GetRecommendations).Methods("GET")

	admin := router.PathPrefix("/api/v1/admin/compat").Subrouter()
	admin.Use(authMiddleware.RequireAdmin)
	admin.HandleFunc("/pairs/{a}/{b}/recompute", handler.RecomputePair).Methods("POST")
	admin.HandleFunc("/events/{id}/recompute", handler.RecomputeEvent).Methods("POST")
	admin.HandleFunc("/jobs/{jobId}", handler.GetJob).Methods("GET")
	admin.HandleFunc("/members/{id}/taste/rebuild", handler.RebuildTaste).Methods("POST")
}
