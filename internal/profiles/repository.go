// internal/profiles/repository.go

package profiles

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

// Repository reads member snapshots. Absence of an assessment or dealbreaker
// row is represented as (nil, nil); the scoring engine treats it as missing
// input, not as a failure.
type Repository interface {
	GetProfile(ctx context.Context, memberID int64) (*Profile, error)
	UpsertProfile(ctx context.Context, p *Profile) error

	GetAssessment(ctx context.Context, memberID int64) (*CompatibilityProfile, error)
	GetAssessments(ctx context.Context, memberIDs []int64) (map[int64]*CompatibilityProfile, error)
	UpsertAssessment(ctx context.Context, a *CompatibilityProfile) error

	GetDealbreakers(ctx context.Context, memberID int64) (*DealbreakerPrefs, error)
	UpsertDealbreakers(ctx context.Context, d *DealbreakerPrefs) error
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetProfile(ctx context.Context, memberID int64) (*Profile, error) {
	var p Profile
	err := r.db.GetContext(ctx, &p, `SELECT * FROM member_profiles WHERE member_id = $1`, memberID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) UpsertProfile(ctx context.Context, p *Profile) error {
	query := `
        INSERT INTO member_profiles (
            member_id, birth_date, gender, faith, education_level,
            wants_children, religion_importance, email, phone
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (member_id)
        DO UPDATE SET
            birth_date = $2, gender = $3, faith = $4, education_level = $5,
            wants_children = $6, religion_importance = $7, email = $8, phone = $9,
            updated_at = CURRENT_TIMESTAMP
        RETURNING updated_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		p.MemberID, p.BirthDate, p.Gender, p.Faith, p.EducationLevel,
		p.WantsChildren, p.ReligionImportance, p.Email, p.Phone,
	).Scan(&p.UpdatedAt)
}

func (r *postgresRepository) GetAssessment(ctx context.Context, memberID int64) (*CompatibilityProfile, error) {
	var a CompatibilityProfile
	err := r.db.GetContext(ctx, &a, `SELECT * FROM compatibility_profiles WHERE member_id = $1`, memberID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepository) GetAssessments(ctx context.Context, memberIDs []int64) (map[int64]*CompatibilityProfile, error) {
	if len(memberIDs) == 0 {
		return map[int64]*CompatibilityProfile{}, nil
	}

	var rows []*CompatibilityProfile
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM compatibility_profiles WHERE member_id = ANY($1)`,
		pq.Array(memberIDs),
	)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]*CompatibilityProfile, len(rows))
	for _, a := range rows {
		out[a.MemberID] = a
	}
	return out, nil
}

func (r *postgresRepository) UpsertAssessment(ctx context.Context, a *CompatibilityProfile) error {
	query := `
        INSERT INTO compatibility_profiles (
            member_id,
            emotional_expressiveness, emotional_stability, stress_resilience, empathy,
            lifestyle_pace, social_energy, tidiness, spontaneity,
            career_ambition, financial_drive, growth_mindset, risk_appetite,
            family_orientation, children_desire, family_closeness, tradition_value,
            conversation_depth, conflict_approach, humor_style, affection_style
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
        ON CONFLICT (member_id)
        DO UPDATE SET
            emotional_expressiveness = $2, emotional_stability = $3,
            stress_resilience = $4, empathy = $5,
            lifestyle_pace = $6, social_energy = $7, tidiness = $8, spontaneity = $9,
            career_ambition = $10, financial_drive = $11, growth_mindset = $12, risk_appetite = $13,
            family_orientation = $14, children_desire = $15, family_closeness = $16, tradition_value = $17,
            conversation_depth = $18, conflict_approach = $19, humor_style = $20, affection_style = $21,
            updated_at = CURRENT_TIMESTAMP
        RETURNING updated_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		a.MemberID,
		a.EmotionalExpressiveness, a.EmotionalStability, a.StressResilience, a.Empathy,
		a.LifestylePace, a.SocialEnergy, a.Tidiness, a.Spontaneity,
		a.CareerAmbition, a.FinancialDrive, a.GrowthMindset, a.RiskAppetite,
		a.FamilyOrientation, a.ChildrenDesire, a.FamilyCloseness, a.TraditionValue,
		a.ConversationDepth, a.ConflictApproach, a.HumorStyle, a.AffectionStyle,
	).Scan(&a.UpdatedAt)
}

func (r *postgresRepository) GetDealbreakers(ctx context.Context, memberID int64) (*DealbreakerPrefs, error) {
	var d DealbreakerPrefs
	var allowed pq.StringArray

	err := r.db.QueryRowxContext(ctx, `
        SELECT member_id, age_min, age_max, religion_must_match,
               religions_allowed, must_want_children, min_education_level
        FROM dealbreaker_prefs WHERE member_id = $1
    `, memberID).Scan(
		&d.MemberID, &d.AgeMin, &d.AgeMax, &d.ReligionMustMatch,
		&allowed, &d.MustWantChildren, &d.MinEducationLevel,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	d.ReligionsAllowed = []string(allowed)
	return &d, nil
}

func (r *postgresRepository) UpsertDealbreakers(ctx context.Context, d *DealbreakerPrefs) error {
	query := `
        INSERT INTO dealbreaker_prefs (
            member_id, age_min, age_max, religion_must_match,
            religions_allowed, must_want_children, min_education_level
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (member_id)
        DO UPDATE SET
            age_min = $2, age_max = $3, religion_must_match = $4,
            religions_allowed = $5, must_want_children = $6, min_education_level = $7
    `

	_, err := r.db.ExecContext(
		ctx, query,
		d.MemberID, d.AgeMin, d.AgeMax, d.ReligionMustMatch,
		pq.Array(d.ReligionsAllowed), d.MustWantChildren, d.MinEducationLevel,
	)
	return err
}
