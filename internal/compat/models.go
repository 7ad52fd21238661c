package compat

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// TasteVector summarizes a member's learned preference: per-dimension running
// averages over the people they rated positively. Every dimension is nullable
// because it only averages targets where the attribute was known. Absent
// entirely until the member has at least two qualifying positive ratings.
type TasteVector struct {
	MemberID int64 `json:"member_id" db:"member_id"`

	EducationLevel     *float64 `json:"education_level,omitempty" db:"education_level"`
	ReligionImportance *float64 `json:"religion_importance,omitempty" db:"religion_importance"`
	CareerAmbition     *float64 `json:"career_ambition,omitempty" db:"career_ambition"`
	SocialEnergy       *float64 `json:"social_energy,omitempty" db:"social_energy"`
	LifestylePace      *float64 `json:"lifestyle_pace,omitempty" db:"lifestyle_pace"`
	ConversationDepth  *float64 `json:"conversation_depth,omitempty" db:"conversation_depth"`
	AffectionStyle     *float64 `json:"affection_style,omitempty" db:"affection_style"`

	// Signed target minus rater, so a consistent preference for older or
	// younger partners survives averaging.
	AgeDifference *float64 `json:"age_difference,omitempty" db:"age_difference"`

	SampleCount int       `json:"sample_count" db:"sample_count"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Tier is a qualitative band for a numeric sub-score.
type Tier string

const (
	TierVeryStrong Tier = "very_strong"
	TierStrong     Tier = "strong"
	TierModerate   Tier = "moderate"
	TierWeak       Tier = "weak"
	TierMismatch   Tier = "mismatch"
)

// Breakdown is the structured explanation stored alongside a score. Stored
// as JSONB.
type Breakdown struct {
	LifeAlignment       float64 `json:"life_alignment"`
	Psychological       float64 `json:"psychological"`
	Chemistry           float64 `json:"chemistry"`
	TasteFit            float64 `json:"taste_fit"`
	ProfileCompleteness float64 `json:"profile_completeness"`

	FamilyFaith      Tier `json:"family_faith"`
	EmotionalBalance Tier `json:"emotional_balance"`
	Lifestyle        Tier `json:"lifestyle"`
	Ambition         Tier `json:"ambition"`
	Communication    Tier `json:"communication"`

	ChemistrySignal string `json:"chemistry_signal"` // "positive" or "neutral"
	Summary         string `json:"summary"`
}

// Value implements driver.Valuer for Breakdown
func (b Breakdown) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements sql.Scanner for Breakdown
func (b *Breakdown) Scan(value interface{}) error {
	if value == nil {
		*b = Breakdown{}
		return nil
	}
	data, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(data, b)
}

// CompatibilityScore is the stored result for one canonically ordered pair
// (MemberA < MemberB). The ordering is a storage convention, not a semantic
// asymmetry; the directional sub-scores carry the asymmetry.
type CompatibilityScore struct {
	MemberA int64 `json:"member_a" db:"member_a"`
	MemberB int64 `json:"member_b" db:"member_b"`

	ScoreAToB  float64 `json:"score_a_to_b" db:"score_a_to_b"`
	ScoreBToA  float64 `json:"score_b_to_a" db:"score_b_to_a"`
	FinalScore float64 `json:"final_score" db:"final_score"`

	Breakdown Breakdown `json:"breakdown" db:"breakdown"`

	ComputedAt time.Time `json:"computed_at" db:"computed_at"`
}

// CanonicalPair returns the two ids in storage order.
func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// RecomputeJob tracks a bulk recompute's progress; persisted in Redis.
type RecomputeJob struct {
	ID        string    `json:"id"`
	EventID   int64     `json:"event_id"`
	Total     int       `json:"total"`
	Done      int       `json:"done"`
	Failed    int       `json:"failed"`
	State     string    `json:"state"` // running, completed
	StartedAt time.Time `json:"started_at"`
}
