package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/sparkevents/spark-backend/internal/logging"
	"github.com/sparkevents/spark-backend/internal/notify"
	"github.com/sparkevents/spark-backend/internal/profiles"
	"github.com/sparkevents/spark-backend/internal/roster"
)

var (
	ErrSubmissionsStillOpen = errors.New("submissions are still open for this event")
	ErrResultsNotReleased   = errors.New("results have not been released for this event")
)

type Service interface {
	// ComputeMatches recomputes the event's full result set from finalized
	// scores. Idempotent: unchanged inputs produce an identical result set.
	ComputeMatches(ctx context.Context, eventID int64) (int, error)

	// MemberMatches returns the member's view of the released results.
	MemberMatches(ctx context.Context, eventID, memberID int64) ([]*MemberMatchView, error)

	// EventResults returns the raw result set, released or not. Admin only.
	EventResults(ctx context.Context, eventID int64) ([]*MatchResult, error)
}

type service struct {
	repo     Repository
	roster   roster.Service
	profiles profiles.Repository
	cache    *resultsCache
	redis    *redis.Client
	notifier notify.Service
	now      func() time.Time
}

type ServiceConfig struct {
	CacheTTL time.Duration
}

func NewService(
	repo Repository,
	rosterSvc roster.Service,
	profilesRepo profiles.Repository,
	redisClient *redis.Client,
	notifier notify.Service,
	cfg *ServiceConfig,
) Service {
	return &service{
		repo:     repo,
		roster:   rosterSvc,
		profiles: profilesRepo,
		cache:    newResultsCache(redisClient, cfg.CacheTTL),
		redis:    redisClient,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *service) ComputeMatches(ctx context.Context, eventID int64) (int, error) {
	event, err := s.roster.GetEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if event.SubmissionOpen {
		return 0, ErrSubmissionsStillOpen
	}

	finals, err := s.repo.GetEventFinalScores(ctx, eventID)
	if err != nil {
		return 0, err
	}

	start := s.now()
	results := ResolveEvent(finals, start)
	for _, r := range results {
		r.EventID = eventID
	}

	if err := s.repo.ReplaceEventResults(ctx, eventID, results); err != nil {
		return 0, err
	}
	s.cache.Invalidate(ctx, eventID)

	for _, r := range results {
		RecordResult(r.ResultType)
	}
	ObserveResolveDuration(time.Since(start).Seconds())

	logging.Log.WithFields(map[string]interface{}{
		"event_id": eventID,
		"pairs":    len(results),
	}).Info("match results recomputed")

	if event.ResultsReleased && s.firstReleaseNotice(ctx, eventID) {
		s.notifyMutualMembers(ctx, event, results)
	}

	return len(results), nil
}

func (s *service) MemberMatches(ctx context.Context, eventID, memberID int64) ([]*MemberMatchView, error) {
	event, err := s.roster.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.ResultsReleased {
		return nil, ErrResultsNotReleased
	}

	results, hit := s.cache.Get(ctx, eventID)
	if !hit {
		results, err = s.repo.GetEventResults(ctx, eventID)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, eventID, results)
	}

	views := make([]*MemberMatchView, 0)
	for _, r := range results {
		switch memberID {
		case r.MemberA:
			views = append(views, &MemberMatchView{
				EventID:       r.EventID,
				OtherMemberID: r.MemberB,
				ResultType:    r.ResultType,
				TheirShares:   r.BSharedFields,
				YourShares:    r.ASharedFields,
			})
		case r.MemberB:
			views = append(views, &MemberMatchView{
				EventID:       r.EventID,
				OtherMemberID: r.MemberA,
				ResultType:    r.ResultType,
				TheirShares:   r.ASharedFields,
				YourShares:    r.BSharedFields,
			})
		}
	}
	return views, nil
}

func (s *service) EventResults(ctx context.Context, eventID int64) ([]*MatchResult, error) {
	return s.repo.GetEventResults(ctx, eventID)
}

// firstReleaseNotice reports whether this is the first resolution since the
// event's results were released, so members are pinged exactly once even when
// an admin recomputes. Without Redis the notice always fires.
func (s *service) firstReleaseNotice(ctx context.Context, eventID int64) bool {
	if s.redis == nil {
		return true
	}
	ok, err := s.redis.SetNX(ctx, notifiedKey(eventID), 1, 0).Result()
	if err != nil {
		return true
	}
	return ok
}

func notifiedKey(eventID int64) string {
	return fmt.Sprintf("match_results_notified:%d", eventID)
}

func (s *service) notifyMutualMembers(ctx context.Context, event *roster.Event, results []*MatchResult) {
	if s.notifier == nil {
		return
	}

	mutual := make(map[int64]bool)
	for _, r := range results {
		if r.ResultType == ResultNoMatch {
			continue
		}
		mutual[r.MemberA] = true
		mutual[r.MemberB] = true
	}

	recipients := make([]notify.Recipient, 0, len(mutual))
	for memberID := range mutual {
		p, err := s.profiles.GetProfile(ctx, memberID)
		if err != nil {
			continue
		}
		recipient := notify.Recipient{MemberID: memberID}
		if p.Email != nil {
			recipient.Email = *p.Email
		}
		if p.Phone != nil {
			recipient.Phone = *p.Phone
		}
		recipients = append(recipients, recipient)
	}

	go s.notifier.NotifyMatchesReady(context.Background(), event.Name, recipients)
}
