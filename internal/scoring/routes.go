package scoring

import (
	"github.com/gorilla/mux"

	"github.com/sparkevents/spark-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/events").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/{id}/scores/draft", handler.SaveDraft).Methods("POST")
	api.HandleFunc("/{id}/scores/submit", handler.Finalize).Methods("POST")
	api.HandleFunc("/{id}/scores/status", handler.GetStatus).Methods("GET")
	api.HandleFunc("/{id}/questions", handler.GetQuestions).Methods("GET")
}
