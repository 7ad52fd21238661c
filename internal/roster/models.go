package roster

import "time"

// Registration status values synced from the booking subsystem.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type Event struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	City            *string   `json:"city,omitempty" db:"city"`
	StartsAt        time.Time `json:"starts_at" db:"starts_at"`
	Deadline        time.Time `json:"deadline" db:"deadline"`
	SubmissionOpen  bool      `json:"submission_open" db:"submission_open"`
	ResultsReleased bool      `json:"results_released" db:"results_released"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type Participant struct {
	EventID  int64  `json:"event_id" db:"event_id"`
	MemberID int64  `json:"member_id" db:"member_id"`
	Gender   string `json:"gender" db:"gender"`
	Status   string `json:"status" db:"status"`
	Attended *bool  `json:"attended,omitempty" db:"attended"`
}

// Eligible reports whether the participant can submit scores or be scored.
func (p *Participant) Eligible() bool {
	return p.Status == StatusConfirmed && p.Attended != nil && *p.Attended
}
