package compat

import (
	"time"

	"github.com/sparkevents/spark-backend/internal/profiles"
)

// Failed dealbreaker condition names, returned by Check.
const (
	FailAgeOutOfRange    = "age_out_of_range"
	FailReligionMismatch = "religion_mismatch"
	FailWantsChildren    = "wants_children"
	FailEducationLevel   = "education_below_minimum"
)

// Check evaluates a candidate against a member's hard filters and returns
// every failed condition, empty meaning pass. It is a gate applied before
// presenting a recommendation; the numeric compatibility score never sees it,
// and any single failure excludes the pair no matter how high that score is.
func Check(prefs *profiles.DealbreakerPrefs, member, candidate *profiles.Profile, now time.Time) []string {
	if prefs == nil {
		return nil
	}

	var failed []string

	if candidate.BirthDate != nil {
		age := candidate.AgeAt(now)
		if age < prefs.AgeMin || age > prefs.AgeMax {
			failed = append(failed, FailAgeOutOfRange)
		}
	}

	if prefs.ReligionMustMatch {
		if candidate.Faith == nil {
			failed = append(failed, FailReligionMismatch)
		} else if len(prefs.ReligionsAllowed) > 0 {
			if !contains(prefs.ReligionsAllowed, *candidate.Faith) {
				failed = append(failed, FailReligionMismatch)
			}
		} else if member == nil || member.Faith == nil || *member.Faith != *candidate.Faith {
			failed = append(failed, FailReligionMismatch)
		}
	}

	if prefs.MustWantChildren {
		if candidate.WantsChildren == nil || *candidate.WantsChildren != "yes" {
			failed = append(failed, FailWantsChildren)
		}
	}

	if prefs.MinEducationLevel != nil {
		if candidate.EducationLevel == nil || *candidate.EducationLevel < *prefs.MinEducationLevel {
			failed = append(failed, FailEducationLevel)
		}
	}

	return failed
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
