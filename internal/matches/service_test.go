package matches

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkevents/spark-backend/internal/logging"
	"github.com/sparkevents/spark-backend/internal/notify"
	"github.com/sparkevents/spark-backend/internal/profiles"
	"github.com/sparkevents/spark-backend/internal/roster"
	"github.com/sparkevents/spark-backend/internal/scoring"
)

func init() {
	logging.BootstrapLogger()
}

type fakeMatchRepo struct {
	finals       []*scoring.FinalScore
	stored       []*MatchResult
	replaceCalls int
}

func (r *fakeMatchRepo) GetEventFinalScores(ctx context.Context, eventID int64) ([]*scoring.FinalScore, error) {
	return r.finals, nil
}

func (r *fakeMatchRepo) ReplaceEventResults(ctx context.Context, eventID int64, results []*MatchResult) error {
	r.replaceCalls++
	r.stored = results
	return nil
}

func (r *fakeMatchRepo) GetEventResults(ctx context.Context, eventID int64) ([]*MatchResult, error) {
	return r.stored, nil
}

func (r *fakeMatchRepo) GetMemberResults(ctx context.Context, eventID, memberID int64) ([]*MatchResult, error) {
	var out []*MatchResult
	for _, m := range r.stored {
		if m.MemberA == memberID || m.MemberB == memberID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeEventSource struct {
	event *roster.Event
}

func (r *fakeEventSource) SyncEvent(ctx context.Context, event *roster.Event, participants []*roster.Participant) error {
	return nil
}

func (r *fakeEventSource) GetEvent(ctx context.Context, eventID int64) (*roster.Event, error) {
	if r.event == nil || r.event.ID != eventID {
		return nil, roster.ErrEventNotFound
	}
	return r.event, nil
}

func (r *fakeEventSource) EligibleParticipants(ctx context.Context, eventID int64) ([]*roster.Participant, error) {
	return nil, nil
}

func (r *fakeEventSource) Pairings(ctx context.Context, eventID, scorerID int64) ([]int64, error) {
	return nil, nil
}

func (r *fakeEventSource) CloseSubmissions(ctx context.Context, eventID int64) error { return nil }
func (r *fakeEventSource) ReleaseResults(ctx context.Context, eventID int64) error   { return nil }

type fakeProfileStore struct {
	profiles map[int64]*profiles.Profile
}

func (r *fakeProfileStore) GetProfile(ctx context.Context, memberID int64) (*profiles.Profile, error) {
	p, ok := r.profiles[memberID]
	if !ok {
		return nil, profiles.ErrProfileNotFound
	}
	return p, nil
}

func (r *fakeProfileStore) UpsertProfile(ctx context.Context, p *profiles.Profile) error { return nil }

func (r *fakeProfileStore) GetAssessment(ctx context.Context, memberID int64) (*profiles.CompatibilityProfile, error) {
	return nil, nil
}

func (r *fakeProfileStore) GetAssessments(ctx context.Context, memberIDs []int64) (map[int64]*profiles.CompatibilityProfile, error) {
	return nil, nil
}

func (r *fakeProfileStore) UpsertAssessment(ctx context.Context, a *profiles.CompatibilityProfile) error {
	return nil
}

func (r *fakeProfileStore) GetDealbreakers(ctx context.Context, memberID int64) (*profiles.DealbreakerPrefs, error) {
	return nil, nil
}

func (r *fakeProfileStore) UpsertDealbreakers(ctx context.Context, d *profiles.DealbreakerPrefs) error {
	return nil
}

type fakeNotifier struct {
	calls chan []notify.Recipient
}

func (n *fakeNotifier) NotifyMatchesReady(ctx context.Context, eventName string, recipients []notify.Recipient) {
	n.calls <- recipients
}

func closedEvent(id int64, released bool) *roster.Event {
	return &roster.Event{
		ID:              id,
		Name:            "Thursday Mixer",
		Deadline:        time.Now().Add(-time.Hour),
		SubmissionOpen:  false,
		ResultsReleased: released,
	}
}

func newMatchService(repo *fakeMatchRepo, events *fakeEventSource) *service {
	return &service{
		repo:   repo,
		roster: events,
		cache:  newResultsCache(nil, 0),
		now:    time.Now,
	}
}

func TestComputeMatchesRejectedWhileOpen(t *testing.T) {
	repo := &fakeMatchRepo{}
	events := &fakeEventSource{event: closedEvent(5, false)}
	events.event.SubmissionOpen = true

	svc := newMatchService(repo, events)
	_, err := svc.ComputeMatches(context.Background(), 5)
	assert.ErrorIs(t, err, ErrSubmissionsStillOpen)
	assert.Zero(t, repo.replaceCalls)
}

func TestComputeMatchesReplacesResultSet(t *testing.T) {
	repo := &fakeMatchRepo{finals: []*scoring.FinalScore{
		{EventID: 5, ScorerID: 1, ScoredID: 2, Choice: scoring.ChoiceDate, Shares: scoring.ContactShares{Email: true}},
		{EventID: 5, ScorerID: 2, ScoredID: 1, Choice: scoring.ChoiceDate, Shares: scoring.ContactShares{Phone: true}},
	}}
	events := &fakeEventSource{event: closedEvent(5, false)}

	svc := newMatchService(repo, events)
	n, err := svc.ComputeMatches(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, repo.stored, 1)
	assert.Equal(t, ResultMutualDate, repo.stored[0].ResultType)
	assert.Equal(t, int64(5), repo.stored[0].EventID)

	// Recompute with the same inputs lands the same set again.
	n, err = svc.ComputeMatches(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, repo.replaceCalls)
}

func TestMemberMatchesGatedOnRelease(t *testing.T) {
	repo := &fakeMatchRepo{stored: []*MatchResult{
		{EventID: 5, MemberA: 1, MemberB: 2, ResultType: ResultMutualFriend,
			ASharedFields: []string{"email"}, BSharedFields: []string{"instagram"}},
	}}
	events := &fakeEventSource{event: closedEvent(5, false)}

	svc := newMatchService(repo, events)
	_, err := svc.MemberMatches(context.Background(), 5, 1)
	assert.ErrorIs(t, err, ErrResultsNotReleased)

	events.event.ResultsReleased = true
	views, err := svc.MemberMatches(context.Background(), 5, 1)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, int64(2), views[0].OtherMemberID)
	assert.Equal(t, []string{"instagram"}, views[0].TheirShares)
	assert.Equal(t, []string{"email"}, views[0].YourShares)
}

func TestMemberMatchesViewIsSideSpecific(t *testing.T) {
	repo := &fakeMatchRepo{stored: []*MatchResult{
		{EventID: 5, MemberA: 1, MemberB: 2, ResultType: ResultMutualDate,
			ASharedFields: []string{"email"}, BSharedFields: []string{"phone"}},
		{EventID: 5, MemberA: 2, MemberB: 3, ResultType: ResultNoMatch},
	}}
	events := &fakeEventSource{event: closedEvent(5, true)}

	svc := newMatchService(repo, events)
	views, err := svc.MemberMatches(context.Background(), 5, 2)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Member 2 sees member 1's shares as theirs, and their own as yours.
	assert.Equal(t, int64(1), views[0].OtherMemberID)
	assert.Equal(t, []string{"email"}, views[0].TheirShares)
	assert.Equal(t, []string{"phone"}, views[0].YourShares)

	// The no-match row is still visible, with nothing revealed.
	assert.Equal(t, int64(3), views[1].OtherMemberID)
	assert.Empty(t, views[1].TheirShares)

	// A member in no pair at all sees an empty list, not an error.
	none, err := svc.MemberMatches(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestComputeMatchesNotifiesMutualMembers(t *testing.T) {
	repo := &fakeMatchRepo{finals: []*scoring.FinalScore{
		{EventID: 5, ScorerID: 1, ScoredID: 2, Choice: scoring.ChoiceDate},
		{EventID: 5, ScorerID: 2, ScoredID: 1, Choice: scoring.ChoiceFriend},
		{EventID: 5, ScorerID: 1, ScoredID: 3, Choice: scoring.ChoiceDate},
		{EventID: 5, ScorerID: 3, ScoredID: 1, Choice: scoring.ChoiceNo},
	}}
	events := &fakeEventSource{event: closedEvent(5, true)}
	notifier := &fakeNotifier{calls: make(chan []notify.Recipient, 1)}

	email := "ada@example.com"
	phone := "+15551230002"
	svc := newMatchService(repo, events)
	svc.notifier = notifier
	svc.profiles = &fakeProfileStore{profiles: map[int64]*profiles.Profile{
		// Member 1 shared only an email, member 2 only a phone number.
		1: {MemberID: 1, Email: &email},
		2: {MemberID: 2, Phone: &phone},
	}}

	_, err := svc.ComputeMatches(context.Background(), 5)
	require.NoError(t, err)

	select {
	case recipients := <-notifier.calls:
		require.Len(t, recipients, 2)
		byMember := make(map[int64]notify.Recipient, len(recipients))
		for _, r := range recipients {
			byMember[r.MemberID] = r
		}
		assert.Equal(t, email, byMember[1].Email)
		assert.Empty(t, byMember[1].Phone)
		assert.Equal(t, phone, byMember[2].Phone)
		assert.Empty(t, byMember[2].Email)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification sent")
	}
}

func TestComputeMatchesUnknownEvent(t *testing.T) {
	svc := newMatchService(&fakeMatchRepo{}, &fakeEventSource{})
	_, err := svc.ComputeMatches(context.Background(), 404)
	assert.ErrorIs(t, err, roster.ErrEventNotFound)
}
