// internal/profiles/handlers.go

package profiles

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sparkevents/spark-backend/internal/auth"
	"github.com/sparkevents/spark-backend/internal/common/utils"
	"github.com/sparkevents/spark-backend/internal/config"
)

type Handler struct {
	repo Repository
	cfg  *config.Config
}

func NewHandler(repo Repository, cfg *config.Config) *Handler {
	return &Handler{repo: repo, cfg: cfg}
}

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	memberID, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profile, err := h.repo.GetProfile(r.Context(), memberID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	utils.RespondWithData(w, http.StatusOK, profile)
}

func (h *Handler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	memberID, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile := &Profile{
		MemberID:           memberID,
		BirthDate:          req.BirthDate,
		Gender:             req.Gender,
		Faith:              req.Faith,
		EducationLevel:     req.EducationLevel,
		WantsChildren:      req.WantsChildren,
		ReligionImportance: req.ReligionImportance,
		Email:              req.Email,
		Phone:              req.Phone,
	}

	if err := h.repo.UpsertProfile(r.Context(), profile); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	utils.RespondWithData(w, http.StatusOK, profile)
}

func (h *Handler) SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	memberID, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	assessment := &CompatibilityProfile{
		MemberID:                memberID,
		EmotionalExpressiveness: req.EmotionalExpressiveness,
		EmotionalStability:      req.EmotionalStability,
		StressResilience:        req.StressResilience,
		Empathy:                 req.Empathy,
		LifestylePace:           req.LifestylePace,
		SocialEnergy:            req.SocialEnergy,
		Tidiness:                req.Tidiness,
		Spontaneity:             req.Spontaneity,
		CareerAmbition:          req.CareerAmbition,
		FinancialDrive:          req.FinancialDrive,
		GrowthMindset:           req.GrowthMindset,
		RiskAppetite:            req.RiskAppetite,
		FamilyOrientation:       req.FamilyOrientation,
		ChildrenDesire:          req.ChildrenDesire,
		FamilyCloseness:         req.FamilyCloseness,
		TraditionValue:          req.TraditionValue,
		ConversationDepth:       req.ConversationDepth,
		ConflictApproach:        req.ConflictApproach,
		HumorStyle:              req.HumorStyle,
		AffectionStyle:          req.AffectionStyle,
	}

	if err := h.repo.UpsertAssessment(r.Context(), assessment); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save assessment")
		return
	}

	utils.RespondWithData(w, http.StatusOK, assessment)
}

func (h *Handler) UpdateDealbreakers(w http.ResponseWriter, r *http.Request) {
	memberID, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateDealbreakersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	prefs := &DealbreakerPrefs{
		MemberID:          memberID,
		AgeMin:            req.AgeMin,
		AgeMax:            req.AgeMax,
		ReligionMustMatch: req.ReligionMustMatch,
		ReligionsAllowed:  req.ReligionsAllowed,
		MustWantChildren:  req.MustWantChildren,
		MinEducationLevel: req.MinEducationLevel,
	}
	prefs.Normalize(h.cfg.MinAge, h.cfg.MaxAge)

	if err := h.repo.UpsertDealbreakers(r.Context(), prefs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save dealbreakers")
		return
	}

	utils.RespondWithData(w, http.StatusOK, prefs)
}
