// internal/profiles/dto.go
package profiles

import "time"

type UpdateProfileRequest struct {
	BirthDate          *time.Time `json:"birth_date,omitempty"`
	Gender             string     `json:"gender" validate:"required,oneof=male female other"`
	Faith              *string    `json:"faith,omitempty"`
	EducationLevel     *int       `json:"education_level,omitempty" validate:"omitempty,gte=1,lte=5"`
	WantsChildren      *string    `json:"wants_children,omitempty" validate:"omitempty,oneof=yes no maybe"`
	ReligionImportance *int       `json:"religion_importance,omitempty" validate:"omitempty,gte=1,lte=5"`
	Email              *string    `json:"email,omitempty"`
	Phone              *string    `json:"phone,omitempty"`
}

// UpdateAssessmentRequest carries the 20-trait questionnaire result.
type UpdateAssessmentRequest struct {
	EmotionalExpressiveness int `json:"emotional_expressiveness" validate:"required,gte=1,lte=5"`
	EmotionalStability      int `json:"emotional_stability" validate:"required,gte=1,lte=5"`
	StressResilience        int `json:"stress_resilience" validate:"required,gte=1,lte=5"`
	Empathy                 int `json:"empathy" validate:"required,gte=1,lte=5"`
	LifestylePace           int `json:"lifestyle_pace" validate:"required,gte=1,lte=5"`
	SocialEnergy            int `json:"social_energy" validate:"required,gte=1,lte=5"`
	Tidiness                int `json:"tidiness" validate:"required,gte=1,lte=5"`
	Spontaneity             int `json:"spontaneity" validate:"required,gte=1,lte=5"`
	CareerAmbition          int `json:"career_ambition" validate:"required,gte=1,lte=5"`
	FinancialDrive          int `json:"financial_drive" validate:"required,gte=1,lte=5"`
	GrowthMindset           int `json:"growth_mindset" validate:"required,gte=1,lte=5"`
	RiskAppetite            int `json:"risk_appetite" validate:"required,gte=1,lte=5"`
	FamilyOrientation       int `json:"family_orientation" validate:"required,gte=1,lte=5"`
	ChildrenDesire          int `json:"children_desire" validate:"required,gte=1,lte=5"`
	FamilyCloseness         int `json:"family_closeness" validate:"required,gte=1,lte=5"`
	TraditionValue          int `json:"tradition_value" validate:"required,gte=1,lte=5"`
	ConversationDepth       int `json:"conversation_depth" validate:"required,gte=1,lte=5"`
	ConflictApproach        int `json:"conflict_approach" validate:"required,gte=1,lte=5"`
	HumorStyle              int `json:"humor_style" validate:"required,gte=1,lte=5"`
	AffectionStyle          int `json:"affection_style" validate:"required,gte=1,lte=5"`
}

type UpdateDealbreakersRequest struct {
	AgeMin            int      `json:"age_min" validate:"required,gte=18"`
	AgeMax            int      `json:"age_max" validate:"required,lte=99"`
	ReligionMustMatch bool     `json:"religion_must_match"`
	ReligionsAllowed  []string `json:"religions_allowed,omitempty"`
	MustWantChildren  bool     `json:"must_want_children"`
	MinEducationLevel *int     `json:"min_education_level,omitempty" validate:"omitempty,gte=1,lte=5"`
}
