package compat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sparkevents/spark-backend/internal/profiles"
)

func agedProfile(memberID int64, age int, now time.Time) *profiles.Profile {
	birth := now.AddDate(-age, 0, -1)
	return &profiles.Profile{MemberID: memberID, BirthDate: &birth}
}

func TestCheckNilPrefsPass(t *testing.T) {
	now := time.Now()
	assert.Empty(t, Check(nil, nil, agedProfile(2, 30, now), now))
}

func TestCheckAgeRange(t *testing.T) {
	now := time.Now()
	prefs := &profiles.DealbreakerPrefs{MemberID: 1, AgeMin: 25, AgeMax: 45}

	assert.Empty(t, Check(prefs, nil, agedProfile(2, 45, now), now))
	assert.Equal(t, []string{FailAgeOutOfRange}, Check(prefs, nil, agedProfile(2, 46, now), now))
	assert.Equal(t, []string{FailAgeOutOfRange}, Check(prefs, nil, agedProfile(2, 24, now), now))

	// Unknown age is not an age failure.
	assert.Empty(t, Check(prefs, nil, &profiles.Profile{MemberID: 2}, now))
}

func TestCheckReligion(t *testing.T) {
	now := time.Now()
	member := &profiles.Profile{MemberID: 1, Faith: strPtr("christian")}

	prefs := &profiles.DealbreakerPrefs{MemberID: 1, AgeMin: 18, AgeMax: 99, ReligionMustMatch: true}

	// Without an allow-list the candidate must share the member's faith.
	assert.Empty(t, Check(prefs, member, &profiles.Profile{MemberID: 2, Faith: strPtr("christian")}, now))
	assert.Equal(t, []string{FailReligionMismatch},
		Check(prefs, member, &profiles.Profile{MemberID: 2, Faith: strPtr("muslim")}, now))

	// An unknown faith cannot satisfy a hard religion filter.
	assert.Equal(t, []string{FailReligionMismatch},
		Check(prefs, member, &profiles.Profile{MemberID: 2}, now))

	// With an allow-list, membership in the list is what counts.
	prefs.ReligionsAllowed = []string{"christian", "jewish"}
	assert.Empty(t, Check(prefs, member, &profiles.Profile{MemberID: 2, Faith: strPtr("jewish")}, now))
	assert.Equal(t, []string{FailReligionMismatch},
		Check(prefs, member, &profiles.Profile{MemberID: 2, Faith: strPtr("muslim")}, now))
}

func TestCheckMustWantChildren(t *testing.T) {
	now := time.Now()
	prefs := &profiles.DealbreakerPrefs{MemberID: 1, AgeMin: 18, AgeMax: 99, MustWantChildren: true}

	assert.Empty(t, Check(prefs, nil, &profiles.Profile{MemberID: 2, WantsChildren: strPtr("yes")}, now))

	// "maybe" and unknown both fail a hard children filter.
	assert.Equal(t, []string{FailWantsChildren},
		Check(prefs, nil, &profiles.Profile{MemberID: 2, WantsChildren: strPtr("maybe")}, now))
	assert.Equal(t, []string{FailWantsChildren},
		Check(prefs, nil, &profiles.Profile{MemberID: 2}, now))
}

func TestCheckMinEducation(t *testing.T) {
	now := time.Now()
	prefs := &profiles.DealbreakerPrefs{MemberID: 1, AgeMin: 18, AgeMax: 99, MinEducationLevel: intPtr(3)}

	assert.Empty(t, Check(prefs, nil, &profiles.Profile{MemberID: 2, EducationLevel: intPtr(3)}, now))
	assert.Equal(t, []string{FailEducationLevel},
		Check(prefs, nil, &profiles.Profile{MemberID: 2, EducationLevel: intPtr(2)}, now))
	assert.Equal(t, []string{FailEducationLevel},
		Check(prefs, nil, &profiles.Profile{MemberID: 2}, now))
}

func TestCheckReportsEveryFailure(t *testing.T) {
	now := time.Now()
	prefs := &profiles.DealbreakerPrefs{
		MemberID:          1,
		AgeMin:            25,
		AgeMax:            35,
		ReligionMustMatch: true,
		ReligionsAllowed:  []string{"christian"},
		MustWantChildren:  true,
		MinEducationLevel: intPtr(4),
	}

	candidate := agedProfile(2, 50, now)
	candidate.Faith = strPtr("atheist")
	candidate.WantsChildren = strPtr("no")
	candidate.EducationLevel = intPtr(1)

	failed := Check(prefs, nil, candidate, now)
	assert.ElementsMatch(t, []string{
		FailAgeOutOfRange,
		FailReligionMismatch,
		FailWantsChildren,
		FailEducationLevel,
	}, failed)
}

func TestNormalizeAgeBand(t *testing.T) {
	prefs := &profiles.DealbreakerPrefs{AgeMin: 12, AgeMax: 150}
	prefs.Normalize(18, 99)
	assert.Equal(t, 18, prefs.AgeMin)
	assert.Equal(t, 99, prefs.AgeMax)

	inverted := &profiles.DealbreakerPrefs{AgeMin: 40, AgeMax: 30}
	inverted.Normalize(18, 99)
	assert.Equal(t, 30, inverted.AgeMin)
	assert.Equal(t, 40, inverted.AgeMax)
}
