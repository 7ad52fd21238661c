package compat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sparkevents/spark-backend/internal/auth"
	"github.com/sparkevents/spark-backend/internal/common/utils"
	"github.com/sparkevents/spark-backend/internal/roster"
)

const defaultRecommendationLimit = 20

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RecomputePair recomputes one pair's score. Admin only.
func (h *Handler) RecomputePair(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	memberA, errA := strconv.ParseInt(vars["a"], 10, 64)
	memberB, errB := strconv.ParseInt(vars["b"], 10, 64)
	if errA != nil || errB != nil || memberA == memberB {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid member pair")
		return
	}

	score, err := h.service.ScorePair(r.Context(), memberA, memberB, "admin")
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to compute score")
		return
	}

	utils.RespondWithData(w, http.StatusOK, score)
}

// RecomputeEvent starts a bulk recompute over the event roster. Admin only.
func (h *Handler) RecomputeEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	job, err := h.service.RecomputeEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, roster.ErrEventNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to start recompute")
		return
	}

	utils.RespondWithData(w, http.StatusAccepted, job)
}

// GetJob reports a bulk recompute's progress. Admin only.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	job, err := h.service.JobProgress(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	utils.RespondWithData(w, http.StatusOK, job)
}

// RebuildTaste rebuilds one member's taste vector. Admin only.
func (h *Handler) RebuildTaste(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid member ID")
		return
	}

	vector, err := h.service.RebuildTaste(r.Context(), memberID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to rebuild taste vector")
		return
	}
	if vector == nil {
		utils.MessageResponse(w, "not enough positive ratings for a taste vector", http.StatusOK)
		return
	}

	utils.RespondWithData(w, http.StatusOK, vector)
}

// GetRecommendations returns the calling member's gated, ranked candidates.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	memberID, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := defaultRecommendationLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	recs, err := h.service.Recommendations(r.Context(), memberID, limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get recommendations")
		return
	}

	utils.RespondWithData(w, http.StatusOK, recs)
}
