package scoring

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Questions
	GetQuestions(ctx context.Context, eventID int64) ([]*Question, error)
	UpsertQuestion(ctx context.Context, q *Question) error

	// Drafts
	SaveDraft(ctx context.Context, draft *DraftScore) error
	GetDraft(ctx context.Context, eventID, scorerID, scoredID int64) (*DraftScore, error)
	GetDrafts(ctx context.Context, eventID, scorerID int64) ([]*DraftScore, error)

	// Submission state
	GetSubmission(ctx context.Context, eventID, scorerID int64) (*Submission, error)
	MarkDrafting(ctx context.Context, eventID, scorerID int64) error

	// Finalize copies every draft into final_scores and flips the state,
	// all inside one transaction.
	Finalize(ctx context.Context, eventID, scorerID int64, drafts []*DraftScore) error

	// Finals
	GetFinalScores(ctx context.Context, eventID, scorerID int64) ([]*FinalScore, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetQuestions(ctx context.Context, eventID int64) ([]*Question, error) {
	var questions []*Question
	err := r.db.SelectContext(ctx, &questions, `
        SELECT id, event_id, prompt, required, position
        FROM event_questions
        WHERE event_id = $1
        ORDER BY position
    `, eventID)
	return questions, err
}

func (r *postgresRepository) UpsertQuestion(ctx context.Context, q *Question) error {
	query := `
        INSERT INTO event_questions (event_id, prompt, required, position)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (event_id, position)
        DO UPDATE SET prompt = $2, required = $3
        RETURNING id
    `
	return r.db.QueryRowxContext(ctx, query, q.EventID, q.Prompt, q.Required, q.Position).Scan(&q.ID)
}

func (r *postgresRepository) SaveDraft(ctx context.Context, draft *DraftScore) error {
	query := `
        INSERT INTO draft_scores (
            event_id, scorer_id, scored_id, choice,
            share_email, share_phone, share_whatsapp, share_instagram, share_facebook,
            answers,
            rating_conversation, rating_long_term, rating_chemistry,
            rating_comfort, rating_values, rating_energy
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        ON CONFLICT (event_id, scorer_id, scored_id)
        DO UPDATE SET
            choice = $4,
            share_email = $5, share_phone = $6, share_whatsapp = $7,
            share_instagram = $8, share_facebook = $9,
            answers = $10,
            rating_conversation = $11, rating_long_term = $12, rating_chemistry = $13,
            rating_comfort = $14, rating_values = $15, rating_energy = $16,
            updated_at = CURRENT_TIMESTAMP
        RETURNING updated_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		draft.EventID, draft.ScorerID, draft.ScoredID, string(draft.Choice),
		draft.Shares.Email, draft.Shares.Phone, draft.Shares.Whatsapp,
		draft.Shares.Instagram, draft.Shares.Facebook,
		draft.Answers,
		draft.Ratings.Conversation, draft.Ratings.LongTermPotential, draft.Ratings.Chemistry,
		draft.Ratings.Comfort, draft.Ratings.ValuesAlignment, draft.Ratings.Energy,
	).Scan(&draft.UpdatedAt)
}

const draftColumns = `
    event_id, scorer_id, scored_id, choice,
    share_email, share_phone, share_whatsapp, share_instagram, share_facebook,
    answers,
    rating_conversation, rating_long_term, rating_chemistry,
    rating_comfort, rating_values, rating_energy,
    updated_at
`

func (r *postgresRepository) GetDraft(ctx context.Context, eventID, scorerID, scoredID int64) (*DraftScore, error) {
	row := r.db.QueryRowxContext(ctx, `
        SELECT `+draftColumns+`
        FROM draft_scores
        WHERE event_id = $1 AND scorer_id = $2 AND scored_id = $3
    `, eventID, scorerID, scoredID)

	draft, err := scanDraft(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return draft, err
}

func (r *postgresRepository) GetDrafts(ctx context.Context, eventID, scorerID int64) ([]*DraftScore, error) {
	rows, err := r.db.QueryxContext(ctx, `
        SELECT `+draftColumns+`
        FROM draft_scores
        WHERE event_id = $1 AND scorer_id = $2
        ORDER BY scored_id
    `, eventID, scorerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []*DraftScore
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDraft(row rowScanner) (*DraftScore, error) {
	var d DraftScore
	var choice string
	err := row.Scan(
		&d.EventID, &d.ScorerID, &d.ScoredID, &choice,
		&d.Shares.Email, &d.Shares.Phone, &d.Shares.Whatsapp,
		&d.Shares.Instagram, &d.Shares.Facebook,
		&d.Answers,
		&d.Ratings.Conversation, &d.Ratings.LongTermPotential, &d.Ratings.Chemistry,
		&d.Ratings.Comfort, &d.Ratings.ValuesAlignment, &d.Ratings.Energy,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Choice = Choice(choice)
	return &d, nil
}

func (r *postgresRepository) GetSubmission(ctx context.Context, eventID, scorerID int64) (*Submission, error) {
	var s Submission
	err := r.db.GetContext(ctx, &s, `
        SELECT event_id, scorer_id, state, finalized_at
        FROM submissions
        WHERE event_id = $1 AND scorer_id = $2
    `, eventID, scorerID)
	if err == sql.ErrNoRows {
		return &Submission{EventID: eventID, ScorerID: scorerID, State: StateNotStarted}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepository) MarkDrafting(ctx context.Context, eventID, scorerID int64) error {
	// No-op when already finalized; the service rejects those saves earlier.
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO submissions (event_id, scorer_id, state)
        VALUES ($1, $2, 'drafting')
        ON CONFLICT (event_id, scorer_id) DO NOTHING
    `, eventID, scorerID)
	return err
}

func (r *postgresRepository) Finalize(ctx context.Context, eventID, scorerID int64, drafts []*DraftScore) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	insert := `
        INSERT INTO final_scores (
            event_id, scorer_id, scored_id, choice,
            share_email, share_phone, share_whatsapp, share_instagram, share_facebook,
            answers,
            rating_conversation, rating_long_term, rating_chemistry,
            rating_comfort, rating_values, rating_energy,
            submitted_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        ON CONFLICT (event_id, scorer_id, scored_id)
        DO NOTHING
    `

	for _, d := range drafts {
		if _, err := tx.ExecContext(ctx, insert,
			d.EventID, d.ScorerID, d.ScoredID, string(d.Choice),
			d.Shares.Email, d.Shares.Phone, d.Shares.Whatsapp,
			d.Shares.Instagram, d.Shares.Facebook,
			d.Answers,
			d.Ratings.Conversation, d.Ratings.LongTermPotential, d.Ratings.Chemistry,
			d.Ratings.Comfort, d.Ratings.ValuesAlignment, d.Ratings.Energy,
			now,
		); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `
        UPDATE submissions
        SET state = 'finalized', finalized_at = $3
        WHERE event_id = $1 AND scorer_id = $2 AND state = 'drafting'
    `, eventID, scorerID, now)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Lost a race with a concurrent finalize; roll everything back.
		return ErrAlreadyFinalized
	}

	return tx.Commit()
}

func (r *postgresRepository) GetFinalScores(ctx context.Context, eventID, scorerID int64) ([]*FinalScore, error) {
	rows, err := r.db.QueryxContext(ctx, `
        SELECT event_id, scorer_id, scored_id, choice,
               share_email, share_phone, share_whatsapp, share_instagram, share_facebook,
               answers,
               rating_conversation, rating_long_term, rating_chemistry,
               rating_comfort, rating_values, rating_energy,
               submitted_at
        FROM final_scores
        WHERE event_id = $1 AND scorer_id = $2
        ORDER BY scored_id
    `, eventID, scorerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var finals []*FinalScore
	for rows.Next() {
		var f FinalScore
		var choice string
		err := rows.Scan(
			&f.EventID, &f.ScorerID, &f.ScoredID, &choice,
			&f.Shares.Email, &f.Shares.Phone, &f.Shares.Whatsapp,
			&f.Shares.Instagram, &f.Shares.Facebook,
			&f.Answers,
			&f.Ratings.Conversation, &f.Ratings.LongTermPotential, &f.Ratings.Chemistry,
			&f.Ratings.Comfort, &f.Ratings.ValuesAlignment, &f.Ratings.Energy,
			&f.SubmittedAt,
		)
		if err != nil {
			return nil, err
		}
		f.Choice = Choice(choice)
		finals = append(finals, &f)
	}
	return finals, rows.Err()
}
