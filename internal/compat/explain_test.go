package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Tier
	}{
		{1.00, TierVeryStrong},
		{0.85, TierVeryStrong},
		{0.84999, TierStrong},
		{0.70, TierStrong},
		{0.69999, TierModerate},
		{0.50, TierModerate},
		{0.49999, TierWeak},
		{0.30, TierWeak},
		{0.29999, TierMismatch},
		{0.00, TierMismatch},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierFor(tc.score), "TierFor(%v)", tc.score)
	}
}

func TestExplainChemistrySignal(t *testing.T) {
	e := NewEngineWithSeed(testParams(), 1)

	// Strong shared history reads as a positive signal.
	warm := e.Score(PairInputs{
		A: MemberInputs{RatingOfOther: f64Ptr(5)},
		B: MemberInputs{RatingOfOther: f64Ptr(5)},
	})
	assert.Equal(t, "positive", warm.Breakdown.ChemistrySignal)

	// Exactly mid-scale is neutral, not positive.
	mid := e.Score(PairInputs{
		A: MemberInputs{RatingOfOther: f64Ptr(3)},
		B: MemberInputs{RatingOfOther: f64Ptr(3)},
	})
	assert.Equal(t, "neutral", mid.Breakdown.ChemistrySignal)

	// So is no history at all.
	cold := e.Score(PairInputs{})
	assert.Equal(t, "neutral", cold.Breakdown.ChemistrySignal)
}

func TestExplainCategoryTiers(t *testing.T) {
	e := NewEngineWithSeed(testParams(), 1)

	in := PairInputs{
		A: MemberInputs{Profile: fullProfile(1, "christian", "yes"), Assessment: uniformAssessment(1, 3)},
		B: MemberInputs{Profile: fullProfile(2, "christian", "yes"), Assessment: uniformAssessment(2, 3)},
	}

	score := e.Score(in)
	b := score.Breakdown

	// Identical assessments max out every category.
	assert.Equal(t, TierVeryStrong, b.EmotionalBalance)
	assert.Equal(t, TierVeryStrong, b.Lifestyle)
	assert.Equal(t, TierVeryStrong, b.Ambition)
	assert.Equal(t, TierVeryStrong, b.Communication)
	assert.Equal(t, TierVeryStrong, b.FamilyFaith)

	require.NotEmpty(t, b.Summary)
	assert.Equal(t, summaryTemplates[TierFor(score.FinalScore)], b.Summary)
}

func TestExplainMissingAssessmentsReadNeutral(t *testing.T) {
	e := NewEngineWithSeed(testParams(), 1)

	score := e.Score(PairInputs{
		A: MemberInputs{Profile: fullProfile(1, "christian", "yes")},
		B: MemberInputs{Profile: fullProfile(2, "muslim", "no")},
	})

	// traitSimilarity falls back to 0.5, the moderate band.
	assert.Equal(t, TierModerate, score.Breakdown.EmotionalBalance)
	assert.Equal(t, TierModerate, score.Breakdown.Lifestyle)
	assert.Equal(t, TierModerate, score.Breakdown.Ambition)
	assert.Equal(t, TierModerate, score.Breakdown.Communication)
}

func TestSummaryTemplatesCoverEveryTier(t *testing.T) {
	for _, tier := range []Tier{TierVeryStrong, TierStrong, TierModerate, TierWeak, TierMismatch} {
		assert.NotEmpty(t, summaryTemplates[tier])
	}
}
