package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/sphere-team/sphere-backend/internal/domain"
	"github.com/sphere-team/sphere-backend/internal/repository"
)

const profileColumns = `
	id, display_name, bio, looking_for, can_help_with, interests, goals,
	city, current_event_id, global_opt_in, onboarding_completed, is_active,
	profile_embedding, interests_embedding, expertise_embedding,
	created_at, updated_at`

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	query := `
		INSERT INTO profiles (
			id, display_name, bio, looking_for, can_help_with, interests, goals,
			city, current_event_id, global_opt_in, onboarding_completed, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		profile.ID, profile.DisplayName, profile.Bio, profile.LookingFor,
		profile.CanHelpWith, profile.Interests, profile.Goals,
		profile.City, profile.CurrentEventID, profile.GlobalOptIn,
		profile.OnboardingCompleted, profile.IsActive,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return domain.ErrProfileAlreadyExists
	}
	return err
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	err := r.db.GetContext(ctx, &profile, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $1, bio = $2, looking_for = $3, can_help_with = $4,
		    interests = $5, goals = $6, city = $7, current_event_id = $8,
		    global_opt_in = $9, onboarding_completed = $10, is_active = $11,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $12
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		profile.DisplayName, profile.Bio, profile.LookingFor, profile.CanHelpWith,
		profile.Interests, profile.Goals, profile.City, profile.CurrentEventID,
		profile.GlobalOptIn, profile.OnboardingCompleted, profile.IsActive,
		profile.ID,
	).Scan(&profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProfileNotFound
	}
	return err
}

func (r *profileRepository) UpdateOnboardingStatus(ctx context.Context, id uuid.UUID, completed bool) error {
	query := `
		UPDATE profiles
		SET onboarding_completed = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, completed, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *profileRepository) UpdateEmbeddings(ctx context.Context, id uuid.UUID, profile, interests, expertise pgvector.Vector) error {
	query := `
		UPDATE profiles
		SET profile_embedding = $1, interests_embedding = $2, expertise_embedding = $3,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, profile, interests, expertise, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// cohortPredicate renders the WHERE fragment selecting the cohort
// population. The argument placeholder index is argPos; the returned
// args may be empty for the global cohort.
func cohortPredicate(cohort domain.Cohort, argPos int) (string, []interface{}) {
	switch cohort.Kind {
	case domain.CohortEvent:
		return fmt.Sprintf("current_event_id = $%d", argPos), []interface{}{cohort.EventID}
	case domain.CohortCity:
		return fmt.Sprintf("city = $%d", argPos), []interface{}{cohort.City}
	default:
		return "global_opt_in = true", nil
	}
}

func (r *profileRepository) GetCohortMembers(ctx context.Context, cohort domain.Cohort, excludeID uuid.UUID, limit int) ([]*domain.Profile, error) {
	predicate, args := cohortPredicate(cohort, 3)
	query := fmt.Sprintf(`
		SELECT %s FROM profiles
		WHERE is_active = true AND onboarding_completed = true
		  AND id != $1 AND %s
		ORDER BY created_at
		LIMIT $2
	`, profileColumns, predicate)

	queryArgs := append([]interface{}{excludeID, limit}, args...)

	var profiles []*domain.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, queryArgs...); err != nil {
		return nil, err
	}
	return profiles, nil
}

// candidateRow carries the profile plus the similarity computed by the
// vector query.
type candidateRow struct {
	domain.Profile
	Similarity float64 `db:"similarity"`
}

func (r *profileRepository) SimilarProfiles(ctx context.Context, query pgvector.Vector, cohort domain.Cohort, excludeID uuid.UUID, minSimilarity float64, limit int) ([]domain.Candidate, error) {
	predicate, args := cohortPredicate(cohort, 5)
	// Cosine distance: similarity = 1 - (embedding <=> query).
	sqlQuery := fmt.Sprintf(`
		SELECT %s, 1 - (profile_embedding <=> $1) AS similarity
		FROM profiles
		WHERE is_active = true AND onboarding_completed = true
		  AND profile_embedding IS NOT NULL
		  AND id != $2
		  AND 1 - (profile_embedding <=> $1) >= $3
		  AND %s
		ORDER BY profile_embedding <=> $1
		LIMIT $4
	`, profileColumns, predicate)

	queryArgs := append([]interface{}{query, excludeID, minSimilarity, limit}, args...)

	var rows []candidateRow
	if err := r.db.SelectContext(ctx, &rows, sqlQuery, queryArgs...); err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(rows))
	for i := range rows {
		profile := rows[i].Profile
		candidates = append(candidates, domain.Candidate{
			Profile:    &profile,
			Similarity: rows[i].Similarity,
		})
	}
	return candidates, nil
}
