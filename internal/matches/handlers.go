package matches

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sparkevents/spark-backend/internal/auth"
	"github.com/sparkevents/spark-backend/internal/common/utils"
	"github.com/sparkevents/spark-backend/internal/roster"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ComputeMatches triggers a full recompute of the event's results. Admin only.
func (h *Handler) ComputeMatches(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	count, err := h.service.ComputeMatches(r.Context(), eventID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSubmissionsStillOpen):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, roster.ErrEventNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to compute matches")
		}
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"event_id":       eventID,
		"pairs_resolved": count,
	})
}

// GetEventResults returns the raw result set for an event. Admin only.
func (h *Handler) GetEventResults(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	results, err := h.service.EventResults(r.Context(), eventID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get results")
		return
	}

	utils.RespondWithData(w, http.StatusOK, results)
}

// GetMyMatches returns the calling member's view of the released results.
func (h *Handler) GetMyMatches(w http.ResponseWriter, r *http.Request) {
	memberID, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	eventID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	views, err := h.service.MemberMatches(r.Context(), eventID, memberID)
	if err != nil {
		switch {
		case errors.Is(err, ErrResultsNotReleased):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, roster.ErrEventNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get matches")
		}
		return
	}

	utils.RespondWithData(w, http.StatusOK, views)
}
