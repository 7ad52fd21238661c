package scoring

import (
	"encoding/json"
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

func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	scorerID, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	eventID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var dto SaveDraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, err := h.service.SaveDraft(r.Context(), eventID, scorerID, &dto)
	if err != nil {
		h.respondSubmissionError(w, err, "Failed to save draft")
		return
	}

	utils.RespondWithData(w, http.StatusOK, draft)
}

func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	scorerID, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	eventID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	if err := h.service.Finalize(r.Context(), eventID, scorerID); err != nil {
		var incomplete *IncompleteError
		if errors.As(err, &incomplete) {
			utils.RespondWithErrorDetails(w, http.StatusUnprocessableEntity,
				"please complete your choices",
				map[string]interface{}{"incomplete_member_ids": incomplete.MemberIDs})
			return
		}
		h.respondSubmissionError(w, err, "Failed to finalize scores")
		return
	}

	utils.MessageResponse(w, "scores submitted", http.StatusOK)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	scorerID, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	eventID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	status, err := h.service.GetStatus(r.Context(), eventID, scorerID)
	if err != nil {
		h.respondSubmissionError(w, err, "Failed to get submission status")
		return
	}

	utils.RespondWithData(w, http.StatusOK, status)
}

func (h *Handler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	questions, err := h.service.GetQuestions(r.Context(), eventID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get questions")
		return
	}

	utils.RespondWithData(w, http.StatusOK, questions)
}

func (h *Handler) respondSubmissionError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrSubmissionClosed):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrAlreadyFinalized):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotPaired):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNothingToSubmit):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, roster.ErrEventNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
