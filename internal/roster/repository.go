package roster

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrEventNotFound = errors.New("event not found")

type Repository interface {
	UpsertEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id int64) (*Event, error)
	SetSubmissionOpen(ctx context.Context, eventID int64, open bool) error
	SetResultsReleased(ctx context.Context, eventID int64, released bool) error

	UpsertParticipants(ctx context.Context, eventID int64, participants []*Participant) error
	GetParticipants(ctx context.Context, eventID int64) ([]*Participant, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) UpsertEvent(ctx context.Context, event *Event) error {
	query := `
        INSERT INTO events (id, name, city, starts_at, deadline, submission_open, results_released)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id)
        DO UPDATE SET
            name = $2, city = $3, starts_at = $4, deadline = $5,
            submission_open = $6, results_released = $7,
            updated_at = CURRENT_TIMESTAMP
        RETURNING created_at, updated_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		event.ID, event.Name, event.City, event.StartsAt,
		event.Deadline, event.SubmissionOpen, event.ResultsReleased,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
}

func (r *postgresRepository) GetEvent(ctx context.Context, id int64) (*Event, error) {
	var event Event
	err := r.db.GetContext(ctx, &event, `SELECT * FROM events WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *postgresRepository) SetSubmissionOpen(ctx context.Context, eventID int64, open bool) error {
	return r.setFlag(ctx, eventID, "submission_open", open)
}

func (r *postgresRepository) SetResultsReleased(ctx context.Context, eventID int64, released bool) error {
	return r.setFlag(ctx, eventID, "results_released", released)
}

func (r *postgresRepository) setFlag(ctx context.Context, eventID int64, column string, value bool) error {
	// column is one of two internal constants, never user input
	query := `UPDATE events SET ` + column + ` = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, eventID, value)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *postgresRepository) UpsertParticipants(ctx context.Context, eventID int64, participants []*Participant) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO event_participants (event_id, member_id, gender, status, attended)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (event_id, member_id)
        DO UPDATE SET gender = $3, status = $4, attended = $5
    `

	for _, p := range participants {
		if _, err := tx.ExecContext(ctx, query, eventID, p.MemberID, p.Gender, p.Status, p.Attended); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) GetParticipants(ctx context.Context, eventID int64) ([]*Participant, error) {
	var participants []*Participant
	err := r.db.SelectContext(ctx, &participants, `
        SELECT event_id, member_id, gender, status, attended
        FROM event_participants
        WHERE event_id = $1
        ORDER BY member_id
    `, eventID)
	return participants, err
}
