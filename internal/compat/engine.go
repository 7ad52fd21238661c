package compat

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sparkevents/spark-backend/internal/profiles"
)

// EngineParams are the scoring weights and tuning knobs. Weights must sum
// to 1.0 (validated at config load).
type EngineParams struct {
	WeightLifeAlignment float64
	WeightPsychological float64
	WeightChemistry     float64
	WeightTasteFit      float64
	WeightCompleteness  float64

	// Fallback chemistry for pairs with no shared event history.
	ChemistryNeutral float64

	// Per-direction jitter amplitude for the psychological and chemistry
	// inputs. Zero disables jitter entirely.
	JitterAmplitude float64
}

// MemberInputs is one side's read-only snapshot. Any field may be nil;
// missing inputs fall back to documented neutral values rather than failing.
type MemberInputs struct {
	Profile    *profiles.Profile
	Assessment *profiles.CompatibilityProfile
	Taste      *TasteVector

	// Average of the member's six date-quality ratings of the other member
	// across shared events, on the raw 1-5 scale. Nil when they never met.
	RatingOfOther *float64
}

// PairInputs holds both snapshots for one scoring run.
type PairInputs struct {
	A MemberInputs
	B MemberInputs
}

const (
	lifeBase           = 0.20
	lifeFaithMatch     = 0.40
	lifeFaithBaseline  = 0.15
	lifeChildrenMatch  = 0.25
	lifeChildrenOther  = 0.10
	psychologicalFloor = 0.10
	neutralSubScore    = 0.50
	tasteTraitRange    = 4.0
	tasteAgeRange      = 20.0
)

// Engine computes pairwise compatibility scores. Pure aside from jitter;
// with JitterAmplitude zero, Score is fully deterministic.
type Engine struct {
	params EngineParams

	// rand.Rand is not goroutine-safe, and Score runs concurrently from the
	// bulk recompute worker, the refresh scheduler and request handlers.
	mu  sync.Mutex
	rng *rand.Rand
}

func NewEngine(params EngineParams) *Engine {
	return &Engine{
		params: params,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewEngineWithSeed pins the jitter source, used by tests.
func NewEngineWithSeed(params EngineParams, seed int64) *Engine {
	return &Engine{
		params: params,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Score computes the two directional scores and their geometric mean. The
// directions differ only by taste fit and jitter: how A experiences B is not
// how B experiences A, even from largely shared inputs. The geometric mean
// punishes asymmetry harder than an arithmetic mean would.
func (e *Engine) Score(in PairInputs) *CompatibilityScore {
	life := e.calculateLifeAlignment(in.A.Profile, in.B.Profile)
	psych := e.calculatePsychological(in.A.Assessment, in.B.Assessment)
	chemistry := e.calculateChemistry(in.A.RatingOfOther, in.B.RatingOfOther)
	completeness := e.calculateCompleteness(in)

	psychAB := e.jittered(psych, psychologicalFloor, in.A.Assessment != nil && in.B.Assessment != nil)
	psychBA := e.jittered(psych, psychologicalFloor, in.A.Assessment != nil && in.B.Assessment != nil)
	chemAB := e.jittered(chemistry, 0, in.A.RatingOfOther != nil || in.B.RatingOfOther != nil)
	chemBA := e.jittered(chemistry, 0, in.A.RatingOfOther != nil || in.B.RatingOfOther != nil)

	tasteAB := e.calculateTasteFit(in.A.Taste, in.B.Profile, in.B.Assessment, in.A.Profile)
	tasteBA := e.calculateTasteFit(in.B.Taste, in.A.Profile, in.A.Assessment, in.B.Profile)

	aToB := e.blend(life, psychAB, chemAB, tasteAB, completeness)
	bToA := e.blend(life, psychBA, chemBA, tasteBA, completeness)

	score := &CompatibilityScore{
		ScoreAToB:  aToB,
		ScoreBToA:  bToA,
		FinalScore: math.Sqrt(aToB * bToA),
	}
	score.Breakdown = e.explain(in, life, psych, chemistry, (tasteAB+tasteBA)/2, completeness, score.FinalScore)
	return score
}

func (e *Engine) blend(life, psych, chemistry, taste, completeness float64) float64 {
	total := life*e.params.WeightLifeAlignment +
		psych*e.params.WeightPsychological +
		chemistry*e.params.WeightChemistry +
		taste*e.params.WeightTasteFit +
		completeness*e.params.WeightCompleteness
	return clamp01(total)
}

// calculateLifeAlignment blends discrete-field agreement on faith and
// children preference. Missing fields earn the baseline weight rather than
// zero, so an incomplete profile is not punished as a mismatch.
func (e *Engine) calculateLifeAlignment(a, b *profiles.Profile) float64 {
	score := lifeBase

	if a != nil && b != nil && a.Faith != nil && b.Faith != nil && *a.Faith == *b.Faith {
		score += lifeFaithMatch
	} else {
		score += lifeFaithBaseline
	}

	if a != nil && b != nil && a.WantsChildren != nil && b.WantsChildren != nil && *a.WantsChildren == *b.WantsChildren {
		score += lifeChildrenMatch
	} else {
		score += lifeChildrenOther
	}

	return clamp01(score)
}

// psychTraits is the representative subset compared across the two 20-trait
// assessments, spanning all five categories.
func psychTraits(p *profiles.CompatibilityProfile) [6]int {
	return [6]int{
		p.EmotionalExpressiveness,
		p.ConflictApproach,
		p.LifestylePace,
		p.SocialEnergy,
		p.CareerAmbition,
		p.ConversationDepth,
	}
}

// calculatePsychological maps the average trait distance onto a similarity
// score. Identical profiles score 1.0; maximal divergence floors at 0.1,
// never 0, because personality distance alone should not zero out a pair.
func (e *Engine) calculatePsychological(a, b *profiles.CompatibilityProfile) float64 {
	if a == nil || b == nil {
		return neutralSubScore
	}

	ta, tb := psychTraits(a), psychTraits(b)
	var sum float64
	for i := range ta {
		sum += math.Abs(float64(ta[i] - tb[i]))
	}
	avgDiff := sum / float64(len(ta))

	return math.Max(psychologicalFloor, 1-avgDiff/4)
}

// calculateChemistry averages the two directional historical rating signals,
// normalized from the 1-5 scale to [0,1]. No shared history is not evidence
// of incompatibility, so it falls back to the configured neutral value.
func (e *Engine) calculateChemistry(aOfB, bOfA *float64) float64 {
	var sum float64
	var n int
	if aOfB != nil {
		sum += (*aOfB - 1) / 4
		n++
	}
	if bOfA != nil {
		sum += (*bOfA - 1) / 4
		n++
	}
	if n == 0 {
		return e.params.ChemistryNeutral
	}
	return clamp01(sum / float64(n))
}

// calculateTasteFit measures how well the target matches the rater's learned
// preference, dimension by dimension, averaged over the dimensions the taste
// vector actually has. No vector at all falls back to neutral.
func (e *Engine) calculateTasteFit(
	taste *TasteVector,
	target *profiles.Profile,
	targetAssessment *profiles.CompatibilityProfile,
	rater *profiles.Profile,
) float64 {
	if taste == nil {
		return neutralSubScore
	}

	var sum float64
	var n int

	add := func(pref *float64, observed float64, scale float64) {
		if pref == nil {
			return
		}
		sum += clamp01(1 - math.Abs(observed-*pref)/scale)
		n++
	}

	if target != nil && target.EducationLevel != nil {
		add(taste.EducationLevel, float64(*target.EducationLevel), tasteTraitRange)
	}
	if targetAssessment != nil {
		add(taste.SocialEnergy, float64(targetAssessment.SocialEnergy), tasteTraitRange)
		add(taste.LifestylePace, float64(targetAssessment.LifestylePace), tasteTraitRange)
		add(taste.ConversationDepth, float64(targetAssessment.ConversationDepth), tasteTraitRange)
		add(taste.AffectionStyle, float64(targetAssessment.AffectionStyle), tasteTraitRange)
		add(taste.CareerAmbition, float64(targetAssessment.CareerAmbition), tasteTraitRange)
	}
	if taste.AgeDifference != nil && target != nil && rater != nil &&
		target.BirthDate != nil && rater.BirthDate != nil {
		now := time.Now()
		observed := float64(target.AgeAt(now) - rater.AgeAt(now))
		add(taste.AgeDifference, observed, tasteAgeRange)
	}

	if n == 0 {
		return neutralSubScore
	}
	return sum / float64(n)
}

// calculateCompleteness reports what fraction of the four scoring inputs was
// actually present, averaged over both members. Informational: it carries
// only its own small weight and never penalizes the other sub-scores.
func (e *Engine) calculateCompleteness(in PairInputs) float64 {
	side := func(m MemberInputs) float64 {
		var present int
		if m.Profile != nil {
			present++
		}
		if m.Assessment != nil {
			present++
		}
		if m.Taste != nil {
			present++
		}
		if m.RatingOfOther != nil {
			present++
		}
		return float64(present) / 4
	}
	return (side(in.A) + side(in.B)) / 2
}

// jittered perturbs an input sub-score by up to ±JitterAmplitude when the
// underlying data was real. Neutral defaults stay exact.
func (e *Engine) jittered(score, floor float64, hasData bool) float64 {
	if !hasData || e.params.JitterAmplitude == 0 {
		return score
	}
	e.mu.Lock()
	j := (e.rng.Float64()*2 - 1) * e.params.JitterAmplitude
	e.mu.Unlock()
	v := score + j
	if v < floor {
		return floor
	}
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
