package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkevents/spark-backend/internal/logging"
	"github.com/sparkevents/spark-backend/internal/roster"
)

func init() {
	logging.BootstrapLogger()
}

// fakeRepository is an in-memory Repository for state machine tests.
type fakeRepository struct {
	questions   []*Question
	drafts      map[[3]int64]*DraftScore
	submissions map[[2]int64]*Submission
	finals      []*FinalScore
	finalizeErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		drafts:      make(map[[3]int64]*DraftScore),
		submissions: make(map[[2]int64]*Submission),
	}
}

func (r *fakeRepository) GetQuestions(ctx context.Context, eventID int64) ([]*Question, error) {
	return r.questions, nil
}

func (r *fakeRepository) UpsertQuestion(ctx context.Context, q *Question) error {
	r.questions = append(r.questions, q)
	return nil
}

func (r *fakeRepository) SaveDraft(ctx context.Context, draft *DraftScore) error {
	r.drafts[[3]int64{draft.EventID, draft.ScorerID, draft.ScoredID}] = draft
	return nil
}

func (r *fakeRepository) GetDraft(ctx context.Context, eventID, scorerID, scoredID int64) (*DraftScore, error) {
	return r.drafts[[3]int64{eventID, scorerID, scoredID}], nil
}

func (r *fakeRepository) GetDrafts(ctx context.Context, eventID, scorerID int64) ([]*DraftScore, error) {
	var out []*DraftScore
	for key, d := range r.drafts {
		if key[0] == eventID && key[1] == scorerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeRepository) GetSubmission(ctx context.Context, eventID, scorerID int64) (*Submission, error) {
	if s, ok := r.submissions[[2]int64{eventID, scorerID}]; ok {
		return s, nil
	}
	return &Submission{EventID: eventID, ScorerID: scorerID, State: StateNotStarted}, nil
}

func (r *fakeRepository) MarkDrafting(ctx context.Context, eventID, scorerID int64) error {
	key := [2]int64{eventID, scorerID}
	if _, ok := r.submissions[key]; !ok {
		r.submissions[key] = &Submission{EventID: eventID, ScorerID: scorerID, State: StateDrafting}
	}
	return nil
}

func (r *fakeRepository) Finalize(ctx context.Context, eventID, scorerID int64, drafts []*DraftScore) error {
	if r.finalizeErr != nil {
		return r.finalizeErr
	}
	now := time.Now()
	for _, d := range drafts {
		r.finals = append(r.finals, &FinalScore{
			EventID:     d.EventID,
			ScorerID:    d.ScorerID,
			ScoredID:    d.ScoredID,
			Choice:      d.Choice,
			Shares:      d.Shares,
			Answers:     d.Answers,
			Ratings:     d.Ratings,
			SubmittedAt: now,
		})
	}
	r.submissions[[2]int64{eventID, scorerID}] = &Submission{
		EventID:     eventID,
		ScorerID:    scorerID,
		State:       StateFinalized,
		FinalizedAt: &now,
	}
	return nil
}

func (r *fakeRepository) GetFinalScores(ctx context.Context, eventID, scorerID int64) ([]*FinalScore, error) {
	var out []*FinalScore
	for _, f := range r.finals {
		if f.EventID == eventID && f.ScorerID == scorerID {
			out = append(out, f)
		}
	}
	return out, nil
}

// fakeRoster serves one event with a fixed pairing set.
type fakeRoster struct {
	event    *roster.Event
	pairings map[int64][]int64
}

func (r *fakeRoster) SyncEvent(ctx context.Context, event *roster.Event, participants []*roster.Participant) error {
	return nil
}

func (r *fakeRoster) GetEvent(ctx context.Context, eventID int64) (*roster.Event, error) {
	if r.event == nil || r.event.ID != eventID {
		return nil, roster.ErrEventNotFound
	}
	return r.event, nil
}

func (r *fakeRoster) EligibleParticipants(ctx context.Context, eventID int64) ([]*roster.Participant, error) {
	return nil, nil
}

func (r *fakeRoster) Pairings(ctx context.Context, eventID, scorerID int64) ([]int64, error) {
	return r.pairings[scorerID], nil
}

func (r *fakeRoster) CloseSubmissions(ctx context.Context, eventID int64) error { return nil }
func (r *fakeRoster) ReleaseResults(ctx context.Context, eventID int64) error   { return nil }

func openEvent(id int64) *roster.Event {
	return &roster.Event{
		ID:             id,
		Name:           "Friday Social",
		StartsAt:       time.Now().Add(-4 * time.Hour),
		Deadline:       time.Now().Add(24 * time.Hour),
		SubmissionOpen: true,
	}
}

func newTestService(repo *fakeRepository, rosterSvc *fakeRoster) *service {
	return &service{repo: repo, roster: rosterSvc, now: time.Now}
}

func draftDTO(scoredID int64, choice string) *SaveDraftDTO {
	return &SaveDraftDTO{ScoredID: scoredID, Choice: choice}
}

func TestSaveDraftRejectedAfterDeadline(t *testing.T) {
	repo := newFakeRepository()
	rosterSvc := &fakeRoster{event: openEvent(1), pairings: map[int64][]int64{10: {20}}}
	rosterSvc.event.Deadline = time.Now().Add(-time.Hour)

	svc := newTestService(repo, rosterSvc)
	_, err := svc.SaveDraft(context.Background(), 1, 10, draftDTO(20, "date"))
	assert.ErrorIs(t, err, ErrSubmissionClosed)
}

func TestSaveDraftRejectedWhenSubmissionsClosed(t *testing.T) {
	repo := newFakeRepository()
	rosterSvc := &fakeRoster{event: openEvent(1), pairings: map[int64][]int64{10: {20}}}
	rosterSvc.event.SubmissionOpen = false

	svc := newTestService(repo, rosterSvc)
	_, err := svc.SaveDraft(context.Background(), 1, 10, draftDTO(20, "date"))
	assert.ErrorIs(t, err, ErrSubmissionClosed)
}

func TestSaveDraftRejectedForUnpairedTarget(t *testing.T) {
	repo := newFakeRepository()
	rosterSvc := &fakeRoster{event: openEvent(1), pairings: map[int64][]int64{10: {20}}}

	svc := newTestService(repo, rosterSvc)
	_, err := svc.SaveDraft(context.Background(), 1, 10, draftDTO(99, "date"))
	assert.ErrorIs(t, err, ErrNotPaired)
}

func TestSaveDraftClearsSharesOnNegativeChoice(t *testing.T) {
	repo := newFakeRepository()
	rosterSvc := &fakeRoster{event: openEvent(1), pairings: map[int64][]int64{10: {20}}}

	svc := newTestService(repo, rosterSvc)
	dto := draftDTO(20, "no")
	dto.ShareEmail = true
	dto.SharePhone = true

	draft, err := svc.SaveDraft(context.Background(), 1, 10, dto)
	require.NoError(t, err)
	assert.Equal(t, ContactShares{}, draft.Shares)
}

func TestSaveDraftOverwritesInPlace(t *testing.T) {
	repo := newFakeRepository()
	rosterSvc := &fakeRoster{event: openEvent(1), pairings: map[int64][]int64{10: {20}}}

	svc := newTestService(repo, rosterSvc)
	_, err := svc.SaveDraft(context.Background(), 1, 10, draftDTO(20, "friend"))
	require.NoError(t, err)
	_, err = svc.SaveDraft(context.Background(), 1, 10, draftDTO(20, "date"))
	require.NoError(t, err)

	drafts, _ := repo.GetDrafts(context.Background(), 1, 10)
	require.Len(t, drafts, 1)
	assert.Equal(t, ChoiceDate, drafts[0].Choice)
}

func TestFinalizeIncompleteNamesMissingParticipants(t *testing.T) {
	repo := newFakeRepository()
	rosterSvc := &fakeRoster{event: openEvent(1), pairings: map[int64][]int64{10: {20, 30, 40}}}

	svc := newTestService(repo, rosterSvc)
	_, err := svc.SaveDraft(context.Background(), 1, 10, draftDTO(20, "date"))
	require.NoError(t, err)
	// 30 has a draft but no choice; 40 has nothing at all.
	_, err = svc.SaveDraft(context.Background(), 1, 10, draftDTO(30, ""))
	require.NoError(t, err)

	err = svc.Finalize(context.Background(), 1, 10)
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []int64{30, 40}, incomplete.MemberIDs)

	// No finals written, state still drafting.
	assert.Empty(t, repo.finals)
	sub, _ := repo.GetSubmission(context.Background(), 1, 10)
	assert.Equal(t, StateDrafting, sub.State)
}

func TestFinalizeRejectsMissingRequiredAnswer(t *testing.T) {
	repo := newFakeRepository()
	repo.questions = []*Question{
		{ID: 7, EventID: 1, Prompt: "Best moment of the night?", Required: true},
	}
	rosterSvc := &fakeRoster{event: openEvent(1), pairings: map[int64][]int64{10: {20, 30, 40}}}

	svc := newTestService(repo, rosterSvc)
	for _, scored := range []int64{20, 30, 40} {
		dto := draftDTO(scored, "friend")
		if scored != 30 {
			dto.Answers = AnswerMap{7: "the quiz round"}
		}
		_, err := svc.SaveDraft(context.Background(), 1, 10, dto)
		require.NoError(t, err)
	}

	err := svc.Finalize(context.Background(), 1, 10)
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []int64{30}, incomplete.MemberIDs)

	// All-or-nothing: no finals for any of the three.
	assert.Empty(t, repo.finals)
	sub, _ := repo.GetSubmission(context.Background(), 1, 10)
	assert.Equal(t, StateDrafting, sub.State)
}

func TestFinalizeCopiesEveryPairing(t *testing.T) {
	repo := newFakeRepository()
	rosterSvc := &fakeRoster{event: openEvent(1), pairings: map[int64][]int64{10: {20, 30, 40}}}

	svc := newTestService(repo, rosterSvc)
	for scored, choice := range map[int64]string{20: "date", 30: "friend", 40: "no"} {
		_, err := svc.SaveDraft(context.Background(), 1, 10, draftDTO(scored, choice))
		require.NoError(t, err)
	}

	require.NoError(t, svc.Finalize(context.Background(), 1, 10))

	finals, _ := repo.GetFinalScores(context.Background(), 1, 10)
	assert.Len(t, finals, 3)

	sub, _ := repo.GetSubmission(context.Background(), 1, 10)
	assert.Equal(t, StateFinalized, sub.State)
}

func TestFinalizeFailureLeavesStateDrafting(t *testing.T) {
	repo := newFakeRepository()
	repo.finalizeErr = errors.New("storage unavailable")
	rosterSvc := &fakeRoster{event: openEvent(1), pairings: map[int64][]int64{10: {20}}}

	svc := newTestService(repo, rosterSvc)
	_, err := svc.SaveDraft(context.Background(), 1, 10, draftDTO(20, "date"))
	require.NoError(t, err)

	err = svc.Finalize(context.Background(), 1, 10)
	require.Error(t, err)

	sub, _ := repo.GetSubmission(context.Background(), 1, 10)
	assert.Equal(t, StateDrafting, sub.State)
	assert.Empty(t, repo.finals)
}

func TestEditAfterFinalizeRejected(t *testing.T) {
	repo := newFakeRepository()
	rosterSvc := &fakeRoster{event: openEvent(1), pairings: map[int64][]int64{10: {20}}}

	svc := newTestService(repo, rosterSvc)
	_, err := svc.SaveDraft(context.Background(), 1, 10, draftDTO(20, "date"))
	require.NoError(t, err)
	require.NoError(t, svc.Finalize(context.Background(), 1, 10))

	_, err = svc.SaveDraft(context.Background(), 1, 10, draftDTO(20, "no"))
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	err = svc.Finalize(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestFinalizedEntriesSurviveDeadline(t *testing.T) {
	repo := newFakeRepository()
	rosterSvc := &fakeRoster{event: openEvent(1), pairings: map[int64][]int64{10: {20}}}

	svc := newTestService(repo, rosterSvc)
	_, err := svc.SaveDraft(context.Background(), 1, 10, draftDTO(20, "date"))
	require.NoError(t, err)
	require.NoError(t, svc.Finalize(context.Background(), 1, 10))

	rosterSvc.event.Deadline = time.Now().Add(-time.Hour)

	finals, _ := repo.GetFinalScores(context.Background(), 1, 10)
	assert.Len(t, finals, 1)
}
