package matches

import "time"

// ResultType is the resolved outcome of a pair's two final scores.
type ResultType string

const (
	ResultMutualDate   ResultType = "mutual_date"
	ResultMutualFriend ResultType = "mutual_friend"
	ResultNoMatch      ResultType = "no_match"
)

// MatchResult is the symmetric outcome for one unordered pair at one event.
// MemberA < MemberB by id; the ordering is a storage convention only.
type MatchResult struct {
	EventID    int64      `json:"event_id" db:"event_id"`
	MemberA    int64      `json:"member_a" db:"member_a"`
	MemberB    int64      `json:"member_b" db:"member_b"`
	ResultType ResultType `json:"result_type" db:"result_type"`

	// Contact fields each side opted to reveal to the other. Empty on a
	// no_match regardless of what was ticked.
	ASharedFields []string `json:"a_shared_fields"`
	BSharedFields []string `json:"b_shared_fields"`

	ComputedAt time.Time `json:"computed_at" db:"computed_at"`
}

// MemberMatchView is the result row as seen by one member of the pair.
type MemberMatchView struct {
	EventID        int64      `json:"event_id"`
	OtherMemberID  int64      `json:"other_member_id"`
	ResultType     ResultType `json:"result_type"`
	TheirShares    []string   `json:"their_shares"`
	YourShares     []string   `json:"your_shares"`
}
