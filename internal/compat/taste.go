package compat

import (
	"time"

	"github.com/sparkevents/spark-backend/internal/profiles"
	"github.com/sparkevents/spark-backend/internal/scoring"
)

// PositiveRating reports whether a final score counts as a positive signal
// for taste learning: an explicit date choice, or any of conversation,
// long-term potential or chemistry rated 4+.
func PositiveRating(f *scoring.FinalScore) bool {
	if f.Choice == scoring.ChoiceDate {
		return true
	}
	for _, r := range []*int{f.Ratings.Conversation, f.Ratings.LongTermPotential, f.Ratings.Chemistry} {
		if r != nil && *r >= 4 {
			return true
		}
	}
	return false
}

// TasteTarget is one positively rated person's attribute snapshot.
type TasteTarget struct {
	Profile    *profiles.Profile
	Assessment *profiles.CompatibilityProfile
}

// minTasteSamples is the number of distinct positively rated targets needed
// before a vector exists at all; below it a single opinion would dominate.
const minTasteSamples = 2

// BuildTasteVector averages each preference dimension over the targets,
// skipping null inputs per dimension independently: a target missing its
// education level still contributes to every other dimension. Returns nil
// when there are too few targets.
func BuildTasteVector(rater *profiles.Profile, targets []TasteTarget, now time.Time) *TasteVector {
	if len(targets) < minTasteSamples {
		return nil
	}

	v := &TasteVector{SampleCount: len(targets)}
	if rater != nil {
		v.MemberID = rater.MemberID
	}

	var (
		education runningAvg
		religion  runningAvg
		ambition  runningAvg
		social    runningAvg
		pace      runningAvg
		depth     runningAvg
		affection runningAvg
		ageDiff   runningAvg
	)

	for _, t := range targets {
		if t.Profile != nil {
			if t.Profile.EducationLevel != nil {
				education.add(float64(*t.Profile.EducationLevel))
			}
			if t.Profile.ReligionImportance != nil {
				religion.add(float64(*t.Profile.ReligionImportance))
			}
			if rater != nil && rater.BirthDate != nil && t.Profile.BirthDate != nil {
				ageDiff.add(float64(t.Profile.AgeAt(now) - rater.AgeAt(now)))
			}
		}
		if t.Assessment != nil {
			ambition.add(float64(t.Assessment.CareerAmbition))
			social.add(float64(t.Assessment.SocialEnergy))
			pace.add(float64(t.Assessment.LifestylePace))
			depth.add(float64(t.Assessment.ConversationDepth))
			affection.add(float64(t.Assessment.AffectionStyle))
		}
	}

	v.EducationLevel = education.value()
	v.ReligionImportance = religion.value()
	v.CareerAmbition = ambition.value()
	v.SocialEnergy = social.value()
	v.LifestylePace = pace.value()
	v.ConversationDepth = depth.value()
	v.AffectionStyle = affection.value()
	v.AgeDifference = ageDiff.value()

	return v
}

type runningAvg struct {
	sum float64
	n   int
}

func (a *runningAvg) add(v float64) {
	a.sum += v
	a.n++
}

func (a *runningAvg) value() *float64 {
	if a.n == 0 {
		return nil
	}
	avg := a.sum / float64(a.n)
	return &avg
}
