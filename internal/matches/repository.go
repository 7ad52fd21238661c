package matches

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sparkevents/spark-backend/internal/scoring"
)

type Repository interface {
	// GetEventFinalScores reads every finalized score for the event.
	GetEventFinalScores(ctx context.Context, eventID int64) ([]*scoring.FinalScore, error)

	// ReplaceEventResults deletes the event's prior result set and writes the
	// recomputed one in a single transaction, so a reader never sees a
	// half-resolved event.
	ReplaceEventResults(ctx context.Context, eventID int64, results []*MatchResult) error

	GetEventResults(ctx context.Context, eventID int64) ([]*MatchResult, error)
	GetMemberResults(ctx context.Context, eventID, memberID int64) ([]*MatchResult, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetEventFinalScores(ctx context.Context, eventID int64) ([]*scoring.FinalScore, error) {
	rows, err := r.db.QueryxContext(ctx, `
        SELECT event_id, scorer_id, scored_id, choice,
               share_email, share_phone, share_whatsapp, share_instagram, share_facebook
        FROM final_scores
        WHERE event_id = $1
        ORDER BY scorer_id, scored_id
    `, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var finals []*scoring.FinalScore
	for rows.Next() {
		var f scoring.FinalScore
		var choice string
		err := rows.Scan(
			&f.EventID, &f.ScorerID, &f.ScoredID, &choice,
			&f.Shares.Email, &f.Shares.Phone, &f.Shares.Whatsapp,
			&f.Shares.Instagram, &f.Shares.Facebook,
		)
		if err != nil {
			return nil, err
		}
		f.Choice = scoring.Choice(choice)
		finals = append(finals, &f)
	}
	return finals, rows.Err()
}

func (r *postgresRepository) ReplaceEventResults(ctx context.Context, eventID int64, results []*MatchResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM match_results WHERE event_id = $1`, eventID); err != nil {
		return err
	}

	insert := `
        INSERT INTO match_results (
            event_id, member_a, member_b, result_type,
            a_shared_fields, b_shared_fields, computed_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `

	for _, m := range results {
		if _, err := tx.ExecContext(ctx, insert,
			m.EventID, m.MemberA, m.MemberB, string(m.ResultType),
			pq.Array(m.ASharedFields), pq.Array(m.BSharedFields), m.ComputedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) GetEventResults(ctx context.Context, eventID int64) ([]*MatchResult, error) {
	return r.queryResults(ctx, `
        SELECT event_id, member_a, member_b, result_type,
               a_shared_fields, b_shared_fields, computed_at
        FROM match_results
        WHERE event_id = $1
        ORDER BY member_a, member_b
    `, eventID)
}

func (r *postgresRepository) GetMemberResults(ctx context.Context, eventID, memberID int64) ([]*MatchResult, error) {
	return r.queryResults(ctx, `
        SELECT event_id, member_a, member_b, result_type,
               a_shared_fields, b_shared_fields, computed_at
        FROM match_results
        WHERE event_id = $1 AND (member_a = $2 OR member_b = $2)
        ORDER BY member_a, member_b
    `, eventID, memberID)
}

func (r *postgresRepository) queryResults(ctx context.Context, query string, args ...interface{}) ([]*MatchResult, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*MatchResult
	for rows.Next() {
		var m MatchResult
		var resultType string
		var aShared, bShared pq.StringArray
		err := rows.Scan(
			&m.EventID, &m.MemberA, &m.MemberB, &resultType,
			&aShared, &bShared, &m.ComputedAt,
		)
		if err != nil {
			return nil, err
		}
		m.ResultType = ResultType(resultType)
		m.ASharedFields = []string(aShared)
		m.BSharedFields = []string(bShared)
		results = append(results, &m)
	}
	return results, rows.Err()
}
