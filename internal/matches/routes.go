package matches

import (
	"github.com/gorilla/mux"

	"github.com/sparkevents/spark-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	member := router.PathPrefix("/api/v1/events").Subrouter()
	member.Use(authMiddleware.Authenticate)
	member.HandleFunc("/{id}/matches", handler.GetMyMatches).Methods("GET")

	admin := router.PathPrefix("/api/v1/admin/events").Subrouter()
	admin.Use(authMiddleware.RequireAdmin)
	admin.HandleFunc("/{id}/matches/compute", handler.ComputeMatches).Methods("POST")
	admin.HandleFunc("/{id}/matches", handler.GetEventResults).Methods("GET")
}
