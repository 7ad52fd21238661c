package matches

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkevents/spark-backend/internal/scoring"
)

func TestResolveTruthTable(t *testing.T) {
	cases := []struct {
		a, b scoring.Choice
		want ResultType
	}{
		{scoring.ChoiceDate, scoring.ChoiceDate, ResultMutualDate},
		{scoring.ChoiceDate, scoring.ChoiceFriend, ResultMutualFriend},
		{scoring.ChoiceFriend, scoring.ChoiceDate, ResultMutualFriend},
		{scoring.ChoiceFriend, scoring.ChoiceFriend, ResultMutualFriend},
		{scoring.ChoiceDate, scoring.ChoiceNo, ResultNoMatch},
		{scoring.ChoiceNo, scoring.ChoiceDate, ResultNoMatch},
		{scoring.ChoiceFriend, scoring.ChoiceNo, ResultNoMatch},
		{scoring.ChoiceNo, scoring.ChoiceNo, ResultNoMatch},
	}
	for _, tc := range cases {
		got := Resolve(tc.a, tc.b)
		assert.Equal(t, tc.want, got, "Resolve(%q, %q)", tc.a, tc.b)
		// Outcome is symmetric in its inputs.
		assert.Equal(t, got, Resolve(tc.b, tc.a))
	}
}

func TestSharedFieldsFixedOrder(t *testing.T) {
	shares := scoring.ContactShares{Email: true, Instagram: true, Phone: true}
	assert.Equal(t, []string{"email", "phone", "instagram"}, SharedFields(shares))
	assert.Empty(t, SharedFields(scoring.ContactShares{}))
}

func final(eventID, scorer, scored int64, choice scoring.Choice, shares scoring.ContactShares) *scoring.FinalScore {
	return &scoring.FinalScore{
		EventID:  eventID,
		ScorerID: scorer,
		ScoredID: scored,
		Choice:   choice,
		Shares:   shares,
	}
}

func TestResolveEventOneSidedProducesNoRow(t *testing.T) {
	computedAt := time.Now()
	finals := []*scoring.FinalScore{
		final(5, 1, 2, scoring.ChoiceDate, scoring.ContactShares{Email: true}),
	}
	assert.Empty(t, ResolveEvent(finals, computedAt))
}

func TestResolveEventFullScenario(t *testing.T) {
	computedAt := time.Now()
	// Member 1 met 2, 3 and 4: date, friend, no. Only 2 reciprocated with
	// date; 3 said no back; 4 never finalized.
	finals := []*scoring.FinalScore{
		final(5, 1, 2, scoring.ChoiceDate, scoring.ContactShares{Email: true, Phone: true}),
		final(5, 1, 3, scoring.ChoiceFriend, scoring.ContactShares{Email: true}),
		final(5, 1, 4, scoring.ChoiceNo, scoring.ContactShares{}),
		final(5, 2, 1, scoring.ChoiceDate, scoring.ContactShares{Instagram: true}),
		final(5, 3, 1, scoring.ChoiceNo, scoring.ContactShares{}),
	}

	results := ResolveEvent(finals, computedAt)
	require.Len(t, results, 2)

	assert.Equal(t, int64(1), results[0].MemberA)
	assert.Equal(t, int64(2), results[0].MemberB)
	assert.Equal(t, ResultMutualDate, results[0].ResultType)
	assert.Equal(t, []string{"email", "phone"}, results[0].ASharedFields)
	assert.Equal(t, []string{"instagram"}, results[0].BSharedFields)
	assert.Equal(t, int64(5), results[0].EventID)

	assert.Equal(t, int64(3), results[1].MemberB)
	assert.Equal(t, ResultNoMatch, results[1].ResultType)
}

func TestResolveEventNoMatchStripsShares(t *testing.T) {
	computedAt := time.Now()
	finals := []*scoring.FinalScore{
		final(5, 1, 2, scoring.ChoiceDate, scoring.ContactShares{Email: true, Whatsapp: true}),
		final(5, 2, 1, scoring.ChoiceNo, scoring.ContactShares{Phone: true}),
	}

	results := ResolveEvent(finals, computedAt)
	require.Len(t, results, 1)
	assert.Equal(t, ResultNoMatch, results[0].ResultType)
	assert.Empty(t, results[0].ASharedFields)
	assert.Empty(t, results[0].BSharedFields)
}

func TestResolveEventDeterministic(t *testing.T) {
	computedAt := time.Now()
	var finals []*scoring.FinalScore
	for a := int64(1); a <= 6; a++ {
		for b := int64(1); b <= 6; b++ {
			if a == b {
				continue
			}
			choice := scoring.ChoiceFriend
			if (a+b)%3 == 0 {
				choice = scoring.ChoiceNo
			}
			finals = append(finals, final(9, a, b, choice, scoring.ContactShares{Email: a%2 == 0}))
		}
	}

	first := ResolveEvent(finals, computedAt)
	second := ResolveEvent(finals, computedAt)
	require.Equal(t, first, second)

	// Ordered by (member_a, member_b) with member_a < member_b.
	for i, r := range first {
		assert.Less(t, r.MemberA, r.MemberB)
		if i > 0 {
			prev := first[i-1]
			ordered := prev.MemberA < r.MemberA ||
				(prev.MemberA == r.MemberA && prev.MemberB < r.MemberB)
			assert.True(t, ordered)
		}
	}
	// 15 unordered pairs, both sides finalized for all of them.
	assert.Len(t, first, 15)
}
