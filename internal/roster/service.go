package roster

import (
	"context"
)

type Service interface {
	SyncEvent(ctx context.Context, event *Event, participants []*Participant) error
	GetEvent(ctx context.Context, eventID int64) (*Event, error)
	EligibleParticipants(ctx context.Context, eventID int64) ([]*Participant, error)

	// Pairings returns the members a scorer rated at the event. The booking
	// subsystem sends no rotation table, so every other eligible attendee
	// counts as a pairing.
	Pairings(ctx context.Context, eventID, scorerID int64) ([]int64, error)

	CloseSubmissions(ctx context.Context, eventID int64) error
	ReleaseResults(ctx context.Context, eventID int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SyncEvent(ctx context.Context, event *Event, participants []*Participant) error {
	if err := s.repo.UpsertEvent(ctx, event); err != nil {
		return err
	}
	if len(participants) == 0 {
		return nil
	}
	return s.repo.UpsertParticipants(ctx, event.ID, participants)
}

func (s *service) GetEvent(ctx context.Context, eventID int64) (*Event, error) {
	return s.repo.GetEvent(ctx, eventID)
}

func (s *service) EligibleParticipants(ctx context.Context, eventID int64) ([]*Participant, error) {
	all, err := s.repo.GetParticipants(ctx, eventID)
	if err != nil {
		return nil, err
	}

	eligible := make([]*Participant, 0, len(all))
	for _, p := range all {
		if p.Eligible() {
			eligible = append(eligible, p)
		}
	}
	return eligible, nil
}

func (s *service) Pairings(ctx context.Context, eventID, scorerID int64) ([]int64, error) {
	eligible, err := s.EligibleParticipants(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var paired []int64
	scorerEligible := false
	for _, p := range eligible {
		if p.MemberID == scorerID {
			scorerEligible = true
			continue
		}
		paired = append(paired, p.MemberID)
	}

	if !scorerEligible {
		return nil, nil
	}
	return paired, nil
}

func (s *service) CloseSubmissions(ctx context.Context, eventID int64) error {
	return s.repo.SetSubmissionOpen(ctx, eventID, false)
}

func (s *service) ReleaseResults(ctx context.Context, eventID int64) error {
	return s.repo.SetResultsReleased(ctx, eventID, true)
}
