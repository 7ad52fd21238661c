package compat

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sparkevents/spark-backend/internal/scoring"
)

type Repository interface {
	// UpsertScore fully replaces the row for the pair; last writer wins.
	// The pair must already be in canonical order.
	UpsertScore(ctx context.Context, s *CompatibilityScore) error
	GetScore(ctx context.Context, memberA, memberB int64) (*CompatibilityScore, error)
	GetScoresForMember(ctx context.Context, memberID int64) ([]*CompatibilityScore, error)

	// StalePairs lists pairs whose score predates the cutoff, for the
	// nightly refresh.
	StalePairs(ctx context.Context, olderThan time.Time, limit int) ([][2]int64, error)

	GetTasteVector(ctx context.Context, memberID int64) (*TasteVector, error)
	UpsertTasteVector(ctx context.Context, v *TasteVector) error
	DeleteTasteVector(ctx context.Context, memberID int64) error

	// GetGivenFinalScores returns every final score the member submitted,
	// across all events.
	GetGivenFinalScores(ctx context.Context, scorerID int64) ([]*scoring.FinalScore, error)

	// GetPairRatingAverages returns each direction's mean of the six
	// date-quality sub-ratings over all shared events, on the raw 1-5
	// scale. Nil when that direction has no rated history.
	GetPairRatingAverages(ctx context.Context, memberA, memberB int64) (aOfB, bOfA *float64, err error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) UpsertScore(ctx context.Context, s *CompatibilityScore) error {
	query := `
        INSERT INTO compatibility_scores (
            member_a, member_b, score_a_to_b, score_b_to_a, final_score,
            breakdown, computed_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (member_a, member_b)
        DO UPDATE SET
            score_a_to_b = $3, score_b_to_a = $4, final_score = $5,
            breakdown = $6, computed_at = $7
    `

	_, err := r.db.ExecContext(
		ctx, query,
		s.MemberA, s.MemberB, s.ScoreAToB, s.ScoreBToA, s.FinalScore,
		s.Breakdown, s.ComputedAt,
	)
	return err
}

func (r *postgresRepository) GetScore(ctx context.Context, memberA, memberB int64) (*CompatibilityScore, error) {
	a, b := CanonicalPair(memberA, memberB)

	var s CompatibilityScore
	err := r.db.GetContext(ctx, &s, `
        SELECT member_a, member_b, score_a_to_b, score_b_to_a, final_score,
               breakdown, computed_at
        FROM compatibility_scores
        WHERE member_a = $1 AND member_b = $2
    `, a, b)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepository) GetScoresForMember(ctx context.Context, memberID int64) ([]*CompatibilityScore, error) {
	var scores []*CompatibilityScore
	err := r.db.SelectContext(ctx, &scores, `
        SELECT member_a, member_b, score_a_to_b, score_b_to_a, final_score,
               breakdown, computed_at
        FROM compatibility_scores
        WHERE member_a = $1 OR member_b = $1
        ORDER BY final_score DESC
    `, memberID)
	return scores, err
}

func (r *postgresRepository) StalePairs(ctx context.Context, olderThan time.Time, limit int) ([][2]int64, error) {
	rows, err := r.db.QueryxContext(ctx, `
        SELECT member_a, member_b
        FROM compatibility_scores
        WHERE computed_at < $1
        ORDER BY computed_at
        LIMIT $2
    `, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs [][2]int64
	for rows.Next() {
		var a, b int64
		if err := rows.Scan(&a, &b); err != nil {
			return nil, err
		}
		pairs = append(pairs, [2]int64{a, b})
	}
	return pairs, rows.Err()
}

func (r *postgresRepository) GetTasteVector(ctx context.Context, memberID int64) (*TasteVector, error) {
	var v TasteVector
	err := r.db.GetContext(ctx, &v, `SELECT * FROM taste_vectors WHERE member_id = $1`, memberID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *postgresRepository) UpsertTasteVector(ctx context.Context, v *TasteVector) error {
	query := `
        INSERT INTO taste_vectors (
            member_id, education_level, religion_importance, career_ambition,
            social_energy, lifestyle_pace, conversation_depth, affection_style,
            age_difference, sample_count
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (member_id)
        DO UPDATE SET
            education_level = $2, religion_importance = $3, career_ambition = $4,
            social_energy = $5, lifestyle_pace = $6, conversation_depth = $7,
            affection_style = $8, age_difference = $9, sample_count = $10,
            updated_at = CURRENT_TIMESTAMP
        RETURNING updated_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		v.MemberID, v.EducationLevel, v.ReligionImportance, v.CareerAmbition,
		v.SocialEnergy, v.LifestylePace, v.ConversationDepth, v.AffectionStyle,
		v.AgeDifference, v.SampleCount,
	).Scan(&v.UpdatedAt)
}

func (r *postgresRepository) DeleteTasteVector(ctx context.Context, memberID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM taste_vectors WHERE member_id = $1`, memberID)
	return err
}

func (r *postgresRepository) GetGivenFinalScores(ctx context.Context, scorerID int64) ([]*scoring.FinalScore, error) {
	rows, err := r.db.QueryxContext(ctx, `
        SELECT event_id, scorer_id, scored_id, choice,
               rating_conversation, rating_long_term, rating_chemistry,
               rating_comfort, rating_values, rating_energy
        FROM final_scores
        WHERE scorer_id = $1
        ORDER BY event_id, scored_id
    `, scorerID)
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
			&f.Ratings.Conversation, &f.Ratings.LongTermPotential, &f.Ratings.Chemistry,
			&f.Ratings.Comfort, &f.Ratings.ValuesAlignment, &f.Ratings.Energy,
		)
		if err != nil {
			return nil, err
		}
		f.Choice = scoring.Choice(choice)
		finals = append(finals, &f)
	}
	return finals, rows.Err()
}

func (r *postgresRepository) GetPairRatingAverages(ctx context.Context, memberA, memberB int64) (*float64, *float64, error) {
	avg := func(scorer, scored int64) (*float64, error) {
		rows, err := r.db.QueryxContext(ctx, `
            SELECT rating_conversation, rating_long_term, rating_chemistry,
                   rating_comfort, rating_values, rating_energy
            FROM final_scores
            WHERE scorer_id = $1 AND scored_id = $2
        `, scorer, scored)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var sum float64
		var n int
		for rows.Next() {
			ratings := make([]*int, 6)
			if err := rows.Scan(&ratings[0], &ratings[1], &ratings[2], &ratings[3], &ratings[4], &ratings[5]); err != nil {
				return nil, err
			}
			for _, v := range ratings {
				if v != nil {
					sum += float64(*v)
					n++
				}
			}
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil
		}
		mean := sum / float64(n)
		return &mean, nil
	}

	aOfB, err := avg(memberA, memberB)
	if err != nil {
		return nil, nil, err
	}
	bOfA, err := avg(memberB, memberA)
	if err != nil {
		return nil, nil, err
	}
	return aOfB, bOfA, nil
}
