// internal/profiles/models.go

package profiles

import "time"

// Profile is the read-only member snapshot consumed by the scoring engine.
// The canonical record lives in the accounts service; we hold the attributes
// the matching core needs.
type Profile struct {
	MemberID           int64      `json:"member_id" db:"member_id"`
	BirthDate          *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	Gender             string     `json:"gender" db:"gender"`
	Faith              *string    `json:"faith,omitempty" db:"faith"`
	EducationLevel     *int       `json:"education_level,omitempty" db:"education_level"` // ordinal 1-5
	WantsChildren      *string    `json:"wants_children,omitempty" db:"wants_children"`   // yes/no/maybe
	ReligionImportance *int       `json:"religion_importance,omitempty" db:"religion_importance"`
	Email              *string    `json:"email,omitempty" db:"email"`
	Phone              *string    `json:"phone,omitempty" db:"phone"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// AgeAt returns the member's age at the given time, or -1 when the birth date
// is unknown.
func (p *Profile) AgeAt(t time.Time) int {
	if p.BirthDate == nil {
		return -1
	}
	age := t.Year() - p.BirthDate.Year()
	if t.YearDay() < p.BirthDate.YearDay() {
		age--
	}
	return age
}

// CompatibilityProfile holds the 20 self-reported traits, each on a 1-5
// scale, grouped into five categories of four traits.
type CompatibilityProfile struct {
	MemberID int64 `json:"member_id" db:"member_id"`

	// Emotional
	EmotionalExpressiveness int `json:"emotional_expressiveness" db:"emotional_expressiveness"`
	EmotionalStability      int `json:"emotional_stability" db:"emotional_stability"`
	StressResilience        int `json:"stress_resilience" db:"stress_resilience"`
	Empathy                 int `json:"empathy" db:"empathy"`

	// Lifestyle
	LifestylePace int `json:"lifestyle_pace" db:"lifestyle_pace"`
	SocialEnergy  int `json:"social_energy" db:"social_energy"`
	Tidiness      int `json:"tidiness" db:"tidiness"`
	Spontaneity   int `json:"spontaneity" db:"spontaneity"`

	// Ambition
	CareerAmbition int `json:"career_ambition" db:"career_ambition"`
	FinancialDrive int `json:"financial_drive" db:"financial_drive"`
	GrowthMindset  int `json:"growth_mindset" db:"growth_mindset"`
	RiskAppetite   int `json:"risk_appetite" db:"risk_appetite"`

	// Family
	FamilyOrientation int `json:"family_orientation" db:"family_orientation"`
	ChildrenDesire    int `json:"children_desire" db:"children_desire"`
	FamilyCloseness   int `json:"family_closeness" db:"family_closeness"`
	TraditionValue    int `json:"tradition_value" db:"tradition_value"`

	// Communication
	ConversationDepth int `json:"conversation_depth" db:"conversation_depth"`
	ConflictApproach  int `json:"conflict_approach" db:"conflict_approach"`
	HumorStyle        int `json:"humor_style" db:"humor_style"`
	AffectionStyle    int `json:"affection_style" db:"affection_style"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DealbreakerPrefs are per-member hard filters, applied as a gate before any
// recommendation, never blended into the numeric score.
type DealbreakerPrefs struct {
	MemberID          int64    `json:"member_id" db:"member_id"`
	AgeMin            int      `json:"age_min" db:"age_min"`
	AgeMax            int      `json:"age_max" db:"age_max"`
	ReligionMustMatch bool     `json:"religion_must_match" db:"religion_must_match"`
	ReligionsAllowed  []string `json:"religions_allowed,omitempty"`
	MustWantChildren  bool     `json:"must_want_children" db:"must_want_children"`
	MinEducationLevel *int     `json:"min_education_level,omitempty" db:"min_education_level"`
}

// Normalize clamps the age band to the platform bounds and ensures min <= max.
func (d *DealbreakerPrefs) Normalize(platformMin, platformMax int) {
	if d.AgeMin < platformMin {
		d.AgeMin = platformMin
	}
	if d.AgeMax > platformMax {
		d.AgeMax = platformMax
	}
	if d.AgeMax < platformMin {
		d.AgeMax = platformMin
	}
	if d.AgeMin > d.AgeMax {
		d.AgeMin, d.AgeMax = d.AgeMax, d.AgeMin
	}
}
