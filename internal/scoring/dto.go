// internal/scoring/dto.go
package scoring

// DTOs for API requests/responses

type SaveDraftDTO struct {
	ScoredID int64  `json:"scored_id" validate:"required"`
	Choice   string `json:"choice" validate:"omitempty,oneof=date friend no"`

	ShareEmail     bool `json:"share_email"`
	SharePhone     bool `json:"share_phone"`
	ShareWhatsapp  bool `json:"share_whatsapp"`
	ShareInstagram bool `json:"share_instagram"`
	ShareFacebook  bool `json:"share_facebook"`

	Answers map[int64]string `json:"answers,omitempty"`

	RatingConversation *int `json:"rating_conversation,omitempty" validate:"omitempty,gte=1,lte=5"`
	RatingLongTerm     *int `json:"rating_long_term,omitempty" validate:"omitempty,gte=1,lte=5"`
	RatingChemistry    *int `json:"rating_chemistry,omitempty" validate:"omitempty,gte=1,lte=5"`
	RatingComfort      *int `json:"rating_comfort,omitempty" validate:"omitempty,gte=1,lte=5"`
	RatingValues       *int `json:"rating_values,omitempty" validate:"omitempty,gte=1,lte=5"`
	RatingEnergy       *int `json:"rating_energy,omitempty" validate:"omitempty,gte=1,lte=5"`
}

// SubmissionStatusDTO is the read model for the scorer's progress screen.
type SubmissionStatusDTO struct {
	EventID   int64         `json:"event_id"`
	State     string        `json:"state"`
	Paired    []int64       `json:"paired"`
	Drafts    []*DraftScore `json:"drafts"`
	Deadline  string        `json:"deadline"`
	CanSubmit bool          `json:"can_submit"`
}
