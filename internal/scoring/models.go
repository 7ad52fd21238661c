package scoring

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Choice is a scorer's verdict on one person they met.
type Choice string

const (
	ChoiceDate   Choice = "date"
	ChoiceFriend Choice = "friend"
	ChoiceNo     Choice = "no"
	ChoiceUnset  Choice = ""
)

// Positive reports whether this choice can contribute to a mutual match.
func (c Choice) Positive() bool {
	return c == ChoiceDate || c == ChoiceFriend
}

// SubmissionState tracks a scorer's progress for one event.
type SubmissionState string

const (
	StateNotStarted SubmissionState = "not_started"
	StateDrafting   SubmissionState = "drafting"
	StateFinalized  SubmissionState = "finalized"
)

// Question is an event feedback question; required questions gate finalization.
type Question struct {
	ID       int64  `json:"id" db:"id"`
	EventID  int64  `json:"event_id" db:"event_id"`
	Prompt   string `json:"prompt" db:"prompt"`
	Required bool   `json:"required" db:"required"`
	Position int    `json:"position" db:"position"`
}

// ContactShares are the per-field reveal opt-ins. Only meaningful for a
// positive choice; the resolver ignores them on a "no".
type ContactShares struct {
	Email     bool `json:"email" db:"share_email"`
	Phone     bool `json:"phone" db:"share_phone"`
	Whatsapp  bool `json:"whatsapp" db:"share_whatsapp"`
	Instagram bool `json:"instagram" db:"share_instagram"`
	Facebook  bool `json:"facebook" db:"share_facebook"`
}

// Ratings are the six 1-5 date quality sub-ratings.
type Ratings struct {
	Conversation      *int `json:"conversation,omitempty" db:"rating_conversation"`
	LongTermPotential *int `json:"long_term_potential,omitempty" db:"rating_long_term"`
	Chemistry         *int `json:"chemistry,omitempty" db:"rating_chemistry"`
	Comfort           *int `json:"comfort,omitempty" db:"rating_comfort"`
	ValuesAlignment   *int `json:"values_alignment,omitempty" db:"rating_values"`
	Energy            *int `json:"energy,omitempty" db:"rating_energy"`
}

// AnswerMap maps question id to the scorer's free-form answer. Stored as JSONB.
type AnswerMap map[int64]string

// Value implements driver.Valuer for AnswerMap
func (a AnswerMap) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for AnswerMap
func (a *AnswerMap) Scan(value interface{}) error {
	if value == nil {
		*a = AnswerMap{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, a)
}

// DraftScore is a scorer's editable verdict for one scored participant.
// One row per (event, scorer, scored); saves overwrite in place.
type DraftScore struct {
	EventID   int64         `json:"event_id" db:"event_id"`
	ScorerID  int64         `json:"scorer_id" db:"scorer_id"`
	ScoredID  int64         `json:"scored_id" db:"scored_id"`
	Choice    Choice        `json:"choice" db:"choice"`
	Shares    ContactShares `json:"shares"`
	Answers   AnswerMap     `json:"answers" db:"answers"`
	Ratings   Ratings       `json:"ratings"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// FinalScore is the immutable snapshot of a draft taken at finalization.
type FinalScore struct {
	EventID     int64         `json:"event_id" db:"event_id"`
	ScorerID    int64         `json:"scorer_id" db:"scorer_id"`
	ScoredID    int64         `json:"scored_id" db:"scored_id"`
	Choice      Choice        `json:"choice" db:"choice"`
	Shares      ContactShares `json:"shares"`
	Answers     AnswerMap     `json:"answers" db:"answers"`
	Ratings     Ratings       `json:"ratings"`
	SubmittedAt time.Time     `json:"submitted_at" db:"submitted_at"`
}

// Submission is the per-(event, scorer) state machine row.
type Submission struct {
	EventID     int64           `json:"event_id" db:"event_id"`
	ScorerID    int64           `json:"scorer_id" db:"scorer_id"`
	State       SubmissionState `json:"state" db:"state"`
	FinalizedAt *time.Time      `json:"finalized_at,omitempty" db:"finalized_at"`
}
