package compat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/sparkevents/spark-backend/internal/logging"
	"github.com/sparkevents/spark-backend/internal/profiles"
	"github.com/sparkevents/spark-backend/internal/roster"
)

var (
	ErrJobNotFound = errors.New("recompute job not found")
)

const jobTTL = 24 * time.Hour

// Recommendation is one candidate surfaced to a member, already past the
// dealbreaker gate.
type Recommendation struct {
	MemberID   int64     `json:"member_id"`
	FinalScore float64   `json:"final_score"`
	Breakdown  Breakdown `json:"breakdown"`
}

type Service interface {
	// ScorePair recomputes and stores the pair's compatibility score. Pure
	// recompute from current inputs; last writer wins.
	ScorePair(ctx context.Context, memberA, memberB int64, trigger string) (*CompatibilityScore, error)

	// RecomputeEvent scores every unordered pair of the event's eligible
	// roster in paced batches. Returns immediately with a trackable job.
	RecomputeEvent(ctx context.Context, eventID int64) (*RecomputeJob, error)
	JobProgress(ctx context.Context, jobID string) (*RecomputeJob, error)

	// RebuildTaste recomputes the member's learned-preference vector from
	// their positive rating history, deleting it when too few samples remain.
	RebuildTaste(ctx context.Context, memberID int64) (*TasteVector, error)

	// Recommendations lists the member's scored candidates that pass their
	// dealbreaker filters, best first.
	Recommendations(ctx context.Context, memberID int64, limit int) ([]*Recommendation, error)

	// RefreshStale rescores pairs whose score predates the cutoff.
	RefreshStale(ctx context.Context, olderThan time.Time) (int, error)
}

type ServiceConfig struct {
	BatchSize  int
	BatchDelay time.Duration
}

type service struct {
	repo     Repository
	profiles profiles.Repository
	roster   roster.Service
	engine   *Engine
	redis    *redis.Client
	cfg      ServiceConfig
	now      func() time.Time
}

func NewService(
	repo Repository,
	profilesRepo profiles.Repository,
	rosterSvc roster.Service,
	engine *Engine,
	redisClient *redis.Client,
	cfg ServiceConfig,
) Service {
	return &service{
		repo:     repo,
		profiles: profilesRepo,
		roster:   rosterSvc,
		engine:   engine,
		redis:    redisClient,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *service) ScorePair(ctx context.Context, memberA, memberB int64, trigger string) (*CompatibilityScore, error) {
	a, b := CanonicalPair(memberA, memberB)

	inputs, err := s.loadInputs(ctx, a, b)
	if err != nil {
		return nil, err
	}

	score := s.engine.Score(inputs)
	score.MemberA = a
	score.MemberB = b
	score.ComputedAt = s.now()

	if err := s.repo.UpsertScore(ctx, score); err != nil {
		return nil, err
	}

	RecordFinalScore(score.FinalScore)
	RecordRecompute(trigger)
	return score, nil
}

// loadInputs gathers both members' read-only snapshots. A missing profile,
// assessment, taste vector or history is not an error; the engine substitutes
// its documented neutral value and completeness reflects the gap.
func (s *service) loadInputs(ctx context.Context, a, b int64) (PairInputs, error) {
	var in PairInputs

	side := func(memberID int64) (MemberInputs, error) {
		var m MemberInputs

		p, err := s.profiles.GetProfile(ctx, memberID)
		if err != nil && !errors.Is(err, profiles.ErrProfileNotFound) {
			return m, err
		}
		m.Profile = p

		assessment, err := s.profiles.GetAssessment(ctx, memberID)
		if err != nil {
			return m, err
		}
		m.Assessment = assessment

		taste, err := s.repo.GetTasteVector(ctx, memberID)
		if err != nil {
			return m, err
		}
		m.Taste = taste

		return m, nil
	}

	var err error
	if in.A, err = side(a); err != nil {
		return in, err
	}
	if in.B, err = side(b); err != nil {
		return in, err
	}

	in.A.RatingOfOther, in.B.RatingOfOther, err = s.repo.GetPairRatingAverages(ctx, a, b)
	return in, err
}

func (s *service) RecomputeEvent(ctx context.Context, eventID int64) (*RecomputeJob, error) {
	if _, err := s.roster.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	eligible, err := s.roster.EligibleParticipants(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var pairs [][2]int64
	for i := 0; i < len(eligible); i++ {
		for j := i + 1; j < len(eligible); j++ {
			a, b := CanonicalPair(eligible[i].MemberID, eligible[j].MemberID)
			pairs = append(pairs, [2]int64{a, b})
		}
	}

	job := &RecomputeJob{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Total:     len(pairs),
		State:     "running",
		StartedAt: s.now(),
	}
	s.saveJob(ctx, job)

	// The worker goroutine owns job from here; callers get a snapshot so
	// progress updates never race a response being marshaled.
	snapshot := *job
	go s.runRecompute(job, pairs)

	return &snapshot, nil
}

// runRecompute works through the pairs in paced batches so a large roster
// cannot saturate the profile store. Pairs are independent; failures are
// counted and skipped, never fatal to the job.
func (s *service) runRecompute(job *RecomputeJob, pairs [][2]int64) {
	ctx := context.Background()

	for start := 0; start < len(pairs); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(pairs) {
			end = len(pairs)
		}

		for _, pair := range pairs[start:end] {
			if _, err := s.ScorePair(ctx, pair[0], pair[1], "bulk"); err != nil {
				logging.Log.WithError(err).WithFields(map[string]interface{}{
					"member_a": pair[0],
					"member_b": pair[1],
				}).Warn("bulk recompute pair failed")
				job.Failed++
			}
			job.Done++
		}
		s.saveJob(ctx, job)

		if end < len(pairs) && s.cfg.BatchDelay > 0 {
			time.Sleep(s.cfg.BatchDelay)
		}
	}

	job.State = "completed"
	s.saveJob(ctx, job)

	logging.Log.WithFields(map[string]interface{}{
		"job_id":   job.ID,
		"event_id": job.EventID,
		"pairs":    job.Total,
		"failed":   job.Failed,
	}).Info("bulk recompute finished")
}

func (s *service) JobProgress(ctx context.Context, jobID string) (*RecomputeJob, error) {
	if s.redis == nil {
		return nil, ErrJobNotFound
	}
	data, err := s.redis.Get(ctx, jobKey(jobID)).Result()
	if err != nil {
		return nil, ErrJobNotFound
	}
	var job RecomputeJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *service) saveJob(ctx context.Context, job *RecomputeJob) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	s.redis.Set(ctx, jobKey(job.ID), data, jobTTL)
}

func jobKey(jobID string) string {
	return fmt.Sprintf("compat_job:%s", jobID)
}

func (s *service) RebuildTaste(ctx context.Context, memberID int64) (*TasteVector, error) {
	finals, err := s.repo.GetGivenFinalScores(ctx, memberID)
	if err != nil {
		return nil, err
	}

	// A target positively rated at several events still counts once.
	targetIDs := make(map[int64]bool)
	for _, f := range finals {
		if PositiveRating(f) {
			targetIDs[f.ScoredID] = true
		}
	}

	rater, err := s.profiles.GetProfile(ctx, memberID)
	if err != nil && !errors.Is(err, profiles.ErrProfileNotFound) {
		return nil, err
	}

	targets := make([]TasteTarget, 0, len(targetIDs))
	for targetID := range targetIDs {
		var t TasteTarget
		p, err := s.profiles.GetProfile(ctx, targetID)
		if err != nil && !errors.Is(err, profiles.ErrProfileNotFound) {
			return nil, err
		}
		t.Profile = p
		if t.Assessment, err = s.profiles.GetAssessment(ctx, targetID); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}

	v := BuildTasteVector(rater, targets, s.now())
	if v == nil {
		if err := s.repo.DeleteTasteVector(ctx, memberID); err != nil {
			return nil, err
		}
		RecordTasteRebuild("absent")
		return nil, nil
	}

	v.MemberID = memberID
	if err := s.repo.UpsertTasteVector(ctx, v); err != nil {
		return nil, err
	}
	RecordTasteRebuild("rebuilt")
	return v, nil
}

func (s *service) Recommendations(ctx context.Context, memberID int64, limit int) ([]*Recommendation, error) {
	scores, err := s.repo.GetScoresForMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	member, err := s.profiles.GetProfile(ctx, memberID)
	if err != nil && !errors.Is(err, profiles.ErrProfileNotFound) {
		return nil, err
	}
	prefs, err := s.profiles.GetDealbreakers(ctx, memberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	recs := make([]*Recommendation, 0, limit)
	for _, score := range scores {
		otherID := score.MemberA
		if otherID == memberID {
			otherID = score.MemberB
		}

		candidate, err := s.profiles.GetProfile(ctx, otherID)
		if err != nil {
			if errors.Is(err, profiles.ErrProfileNotFound) {
				continue
			}
			return nil, err
		}

		if len(Check(prefs, member, candidate, now)) > 0 {
			continue
		}

		recs = append(recs, &Recommendation{
			MemberID:   otherID,
			FinalScore: score.FinalScore,
			Breakdown:  score.Breakdown,
		})
		if limit > 0 && len(recs) >= limit {
			break
		}
	}
	return recs, nil
}

func (s *service) RefreshStale(ctx context.Context, olderThan time.Time) (int, error) {
	pairs, err := s.repo.StalePairs(ctx, olderThan, s.cfg.BatchSize*20)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for start := 0; start < len(pairs); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(pairs) {
			end = len(pairs)
		}

		for _, pair := range pairs[start:end] {
			if _, err := s.ScorePair(ctx, pair[0], pair[1], "refresh"); err != nil {
				logging.Log.WithError(err).Warn("stale pair refresh failed")
				continue
			}
			refreshed++
		}

		if end < len(pairs) && s.cfg.BatchDelay > 0 {
			time.Sleep(s.cfg.BatchDelay)
		}
	}
	return refreshed, nil
}
