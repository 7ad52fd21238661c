// internal/matches/resolver.go
// Pair resolution over finalized scores. Pure functions, no storage.

package matches

import (
	"sort"
	"time"

	"github.com/sparkevents/spark-backend/internal/scoring"
)

// Resolve maps two final choices onto the pair outcome. A friend vote is a
// strict subset acceptance of a date vote, so date+friend resolves to the
// friend tier rather than no match.
func Resolve(a, b scoring.Choice) ResultType {
	if a == scoring.ChoiceNo || b == scoring.ChoiceNo {
		return ResultNoMatch
	}
	if a == scoring.ChoiceDate && b == scoring.ChoiceDate {
		return ResultMutualDate
	}
	return ResultMutualFriend
}

// SharedFields lists the contact fields a side opted into, in a fixed order
// so recomputation yields identical rows.
func SharedFields(s scoring.ContactShares) []string {
	fields := make([]string, 0, 5)
	if s.Email {
		fields = append(fields, "email")
	}
	if s.Phone {
		fields = append(fields, "phone")
	}
	if s.Whatsapp {
		fields = append(fields, "whatsapp")
	}
	if s.Instagram {
		fields = append(fields, "instagram")
	}
	if s.Facebook {
		fields = append(fields, "facebook")
	}
	return fields
}

// ResolveEvent computes the full result set for an event from its final
// scores. Pairs with only one side finalized produce no row at all: absence
// of data is neither a match nor a rejection. Output is ordered by
// (member_a, member_b) so repeated runs are byte-identical.
func ResolveEvent(finals []*scoring.FinalScore, computedAt time.Time) []*MatchResult {
	type direction struct {
		choice scoring.Choice
		shares scoring.ContactShares
	}

	byPair := make(map[[2]int64]direction, len(finals))
	for _, f := range finals {
		byPair[[2]int64{f.ScorerID, f.ScoredID}] = direction{choice: f.Choice, shares: f.Shares}
	}

	var results []*MatchResult
	for key, fromA := range byPair {
		a, b := key[0], key[1]
		if a >= b {
			// Each unordered pair is visited once, from its low-id side.
			continue
		}
		fromB, ok := byPair[[2]int64{b, a}]
		if !ok {
			continue
		}

		result := &MatchResult{
			EventID:    0,
			MemberA:    a,
			MemberB:    b,
			ResultType: Resolve(fromA.choice, fromB.choice),
			ComputedAt: computedAt,
		}
		if result.ResultType != ResultNoMatch {
			result.ASharedFields = SharedFields(fromA.shares)
			result.BSharedFields = SharedFields(fromB.shares)
		}
		results = append(results, result)
	}

	if len(finals) > 0 {
		eventID := finals[0].EventID
		for _, r := range results {
			r.EventID = eventID
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].MemberA != results[j].MemberA {
			return results[i].MemberA < results[j].MemberA
		}
		return results[i].MemberB < results[j].MemberB
	})
	return results
}
