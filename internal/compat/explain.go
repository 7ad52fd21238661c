package compat

import (
	"math"

	"github.com/sparkevents/spark-backend/internal/profiles"
)

// TierFor maps a [0,1] sub-score onto its qualitative band.
func TierFor(score float64) Tier {
	switch {
	case score >= 0.85:
		return TierVeryStrong
	case score >= 0.70:
		return TierStrong
	case score >= 0.50:
		return TierModerate
	case score >= 0.30:
		return TierWeak
	default:
		return TierMismatch
	}
}

// Summary templates keyed by final-score band. One line each, chosen by how
// high the pair lands overall.
var summaryTemplates = map[Tier]string{
	TierVeryStrong: "An exceptional match across values, personality and lifestyle.",
	TierStrong:     "A strong match with well-aligned values and complementary personalities.",
	TierModerate:   "A promising connection with some meaningful common ground.",
	TierWeak:       "Some shared ground, but significant differences in key areas.",
	TierMismatch:   "Core values and lifestyle point in different directions.",
}

// explain builds the stored breakdown from the unjittered sub-scores, so the
// explanation reflects the underlying data rather than the sampled direction.
func (e *Engine) explain(in PairInputs, life, psych, chemistry, taste, completeness, final float64) Breakdown {
	b := Breakdown{
		LifeAlignment:       life,
		Psychological:       psych,
		Chemistry:           chemistry,
		TasteFit:            taste,
		ProfileCompleteness: completeness,

		FamilyFaith:      TierFor(life),
		EmotionalBalance: TierFor(traitSimilarity(in.A.Assessment, in.B.Assessment, emotionalTraits)),
		Lifestyle:        TierFor(traitSimilarity(in.A.Assessment, in.B.Assessment, lifestyleTraits)),
		Ambition:         TierFor(traitSimilarity(in.A.Assessment, in.B.Assessment, ambitionTraits)),
		Communication:    TierFor(traitSimilarity(in.A.Assessment, in.B.Assessment, communicationTraits)),

		Summary: summaryTemplates[TierFor(final)],
	}

	if chemistry > 0.5 {
		b.ChemistrySignal = "positive"
	} else {
		b.ChemistrySignal = "neutral"
	}

	return b
}

func emotionalTraits(p *profiles.CompatibilityProfile) []int {
	return []int{p.EmotionalExpressiveness, p.EmotionalStability, p.StressResilience, p.Empathy}
}

func lifestyleTraits(p *profiles.CompatibilityProfile) []int {
	return []int{p.LifestylePace, p.SocialEnergy, p.Tidiness, p.Spontaneity}
}

func ambitionTraits(p *profiles.CompatibilityProfile) []int {
	return []int{p.CareerAmbition, p.FinancialDrive, p.GrowthMindset, p.RiskAppetite}
}

func communicationTraits(p *profiles.CompatibilityProfile) []int {
	return []int{p.ConversationDepth, p.ConflictApproach, p.HumorStyle, p.AffectionStyle}
}

// traitSimilarity scores one assessment category like the psychological
// sub-score does: average absolute distance mapped to [0,1]. Missing
// assessments read as neutral.
func traitSimilarity(a, b *profiles.CompatibilityProfile, traits func(*profiles.CompatibilityProfile) []int) float64 {
	if a == nil || b == nil {
		return neutralSubScore
	}

	ta, tb := traits(a), traits(b)
	var sum float64
	for i := range ta {
		sum += math.Abs(float64(ta[i] - tb[i]))
	}
	avgDiff := sum / float64(len(ta))

	return math.Max(0, 1-avgDiff/4)
}
