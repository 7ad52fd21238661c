// internal/roster/dto.go
package roster

import "time"

// DTOs for the booking-subsystem sync surface

type SyncEventDTO struct {
	EventID         int64                `json:"event_id" validate:"required"`
	Name            string               `json:"name" validate:"required,max=200"`
	City            string               `json:"city,omitempty"`
	StartsAt        time.Time            `json:"starts_at" validate:"required"`
	Deadline        time.Time            `json:"deadline" validate:"required"`
	SubmissionOpen  bool                 `json:"submission_open"`
	ResultsReleased bool                 `json:"results_released"`
	Participants    []SyncParticipantDTO `json:"participants" validate:"dive"`
}

type SyncParticipantDTO struct {
	MemberID int64  `json:"member_id" validate:"required"`
	Gender   string `json:"gender" validate:"required,oneof=male female other"`
	Status   string `json:"status" validate:"required,oneof=confirmed cancelled"`
	Attended *bool  `json:"attended,omitempty"`
}
