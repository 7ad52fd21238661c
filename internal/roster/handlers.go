package roster

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sparkevents/spark-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SyncEvent upserts an event and its attendee list from the booking subsystem.
func (h *Handler) SyncEvent(w http.ResponseWriter, r *http.Request) {
	var dto SyncEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	event := &Event{
		ID:              dto.EventID,
		Name:            dto.Name,
		StartsAt:        dto.StartsAt,
		Deadline:        dto.Deadline,
		SubmissionOpen:  dto.SubmissionOpen,
		ResultsReleased: dto.ResultsReleased,
	}
	if dto.City != "" {
		event.City = &dto.City
	}

	participants := make([]*Participant, 0, len(dto.Participants))
	for _, p := range dto.Participants {
		participants = append(participants, &Participant{
			EventID:  dto.EventID,
			MemberID: p.MemberID,
			Gender:   p.Gender,
			Status:   p.Status,
			Attended: p.Attended,
		})
	}

	if err := h.service.SyncEvent(r.Context(), event, participants); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to sync event")
		return
	}

	utils.RespondWithData(w, http.StatusOK, event)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	event, err := h.service.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}

	utils.RespondWithData(w, http.StatusOK, event)
}

func (h *Handler) CloseSubmissions(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	if err := h.service.CloseSubmissions(r.Context(), eventID); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to close submissions")
		return
	}

	utils.MessageResponse(w, "submission window closed", http.StatusOK)
}

func (h *Handler) ReleaseResults(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	if err := h.service.ReleaseResults(r.Context(), eventID); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to release results")
		return
	}

	utils.MessageResponse(w, "results released", http.StatusOK)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
