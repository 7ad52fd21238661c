// internal/scoring/service.go

package scoring

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sparkevents/spark-backend/internal/logging"
	"github.com/sparkevents/spark-backend/internal/roster"
)

var (
	ErrSubmissionClosed = errors.New("submission window has closed")
	ErrAlreadyFinalized = errors.New("scores already finalized for this event")
	ErrNotPaired        = errors.New("member was not paired with this participant")
	ErrNothingToSubmit  = errors.New("no pairings to submit for this event")
)

// IncompleteError names every paired participant whose draft is missing a
// choice or a required answer. The scorer stays in drafting.
type IncompleteError struct {
	MemberIDs []int64
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("submission incomplete for %d participant(s)", len(e.MemberIDs))
}

type Service interface {
	SaveDraft(ctx context.Context, eventID, scorerID int64, dto *SaveDraftDTO) (*DraftScore, error)
	Finalize(ctx context.Context, eventID, scorerID int64) error
	GetStatus(ctx context.Context, eventID, scorerID int64) (*SubmissionStatusDTO, error)
	GetQuestions(ctx context.Context, eventID int64) ([]*Question, error)
}

type service struct {
	repo   Repository
	roster roster.Service
	now    func() time.Time
}

func NewService(repo Repository, rosterService roster.Service) Service {
	return &service{
		repo:   repo,
		roster: rosterService,
		now:    time.Now,
	}
}

func (s *service) SaveDraft(ctx context.Context, eventID, scorerID int64, dto *SaveDraftDTO) (*DraftScore, error) {
	event, err := s.roster.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !s.windowOpen(event) {
		return nil, ErrSubmissionClosed
	}

	submission, err := s.repo.GetSubmission(ctx, eventID, scorerID)
	if err != nil {
		return nil, err
	}
	if submission.State == StateFinalized {
		// Stale client retries must be rejected, not silently absorbed.
		return nil, ErrAlreadyFinalized
	}

	paired, err := s.roster.Pairings(ctx, eventID, scorerID)
	if err != nil {
		return nil, err
	}
	if !containsID(paired, dto.ScoredID) {
		return nil, ErrNotPaired
	}

	draft := &DraftScore{
		EventID:  eventID,
		ScorerID: scorerID,
		ScoredID: dto.ScoredID,
		Choice:   Choice(dto.Choice),
		Shares: ContactShares{
			Email:     dto.ShareEmail,
			Phone:     dto.SharePhone,
			Whatsapp:  dto.ShareWhatsapp,
			Instagram: dto.ShareInstagram,
			Facebook:  dto.ShareFacebook,
		},
		Answers: dto.Answers,
		Ratings: Ratings{
			Conversation:      dto.RatingConversation,
			LongTermPotential: dto.RatingLongTerm,
			Chemistry:         dto.RatingChemistry,
			Comfort:           dto.RatingComfort,
			ValuesAlignment:   dto.RatingValues,
			Energy:            dto.RatingEnergy,
		},
	}

	// Contact shares only mean something on a positive choice.
	if !draft.Choice.Positive() {
		draft.Shares = ContactShares{}
	}

	if err := s.repo.MarkDrafting(ctx, eventID, scorerID); err != nil {
		return nil, err
	}
	if err := s.repo.SaveDraft(ctx, draft); err != nil {
		return nil, err
	}

	RecordDraftSaved()
	return draft, nil
}

func (s *service) Finalize(ctx context.Context, eventID, scorerID int64) error {
	event, err := s.roster.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if !s.windowOpen(event) {
		RecordFinalization("closed")
		return ErrSubmissionClosed
	}

	submission, err := s.repo.GetSubmission(ctx, eventID, scorerID)
	if err != nil {
		return err
	}
	if submission.State == StateFinalized {
		RecordFinalization("duplicate")
		return ErrAlreadyFinalized
	}

	paired, err := s.roster.Pairings(ctx, eventID, scorerID)
	if err != nil {
		return err
	}
	if len(paired) == 0 {
		return ErrNothingToSubmit
	}

	drafts, err := s.repo.GetDrafts(ctx, eventID, scorerID)
	if err != nil {
		return err
	}
	questions, err := s.repo.GetQuestions(ctx, eventID)
	if err != nil {
		return err
	}

	incomplete := incompleteParticipants(paired, drafts, questions)
	if len(incomplete) > 0 {
		RecordFinalization("incomplete")
		return &IncompleteError{MemberIDs: incomplete}
	}

	if err := s.repo.Finalize(ctx, eventID, scorerID, drafts); err != nil {
		RecordFinalization("error")
		return err
	}

	logging.Log.WithField("event_id", eventID).
		WithField("scorer_id", scorerID).
		WithField("pairings", len(drafts)).
		Info("submission finalized")

	RecordFinalization("ok")
	return nil
}

func (s *service) GetStatus(ctx context.Context, eventID, scorerID int64) (*SubmissionStatusDTO, error) {
	event, err := s.roster.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	submission, err := s.repo.GetSubmission(ctx, eventID, scorerID)
	if err != nil {
		return nil, err
	}

	paired, err := s.roster.Pairings(ctx, eventID, scorerID)
	if err != nil {
		return nil, err
	}

	drafts, err := s.repo.GetDrafts(ctx, eventID, scorerID)
	if err != nil {
		return nil, err
	}

	return &SubmissionStatusDTO{
		EventID:   eventID,
		State:     string(submission.State),
		Paired:    paired,
		Drafts:    drafts,
		Deadline:  event.Deadline.Format(time.RFC3339),
		CanSubmit: s.windowOpen(event) && submission.State != StateFinalized,
	}, nil
}

func (s *service) GetQuestions(ctx context.Context, eventID int64) ([]*Question, error) {
	return s.repo.GetQuestions(ctx, eventID)
}

func (s *service) windowOpen(event *roster.Event) bool {
	return event.SubmissionOpen && s.now().Before(event.Deadline)
}

// incompleteParticipants returns, in ascending order, every paired member
// whose draft is missing, has no choice, or skips a required question.
func incompleteParticipants(paired []int64, drafts []*DraftScore, questions []*Question) []int64 {
	byScored := make(map[int64]*DraftScore, len(drafts))
	for _, d := range drafts {
		byScored[d.ScoredID] = d
	}

	var required []int64
	for _, q := range questions {
		if q.Required {
			required = append(required, q.ID)
		}
	}

	var incomplete []int64
	for _, memberID := range paired {
		draft, ok := byScored[memberID]
		if !ok || draft.Choice == ChoiceUnset {
			incomplete = append(incomplete, memberID)
			continue
		}
		for _, qid := range required {
			if draft.Answers[qid] == "" {
				incomplete = append(incomplete, memberID)
				break
			}
		}
	}

	sort.Slice(incomplete, func(i, j int) bool { return incomplete[i] < incomplete[j] })
	return incomplete
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
