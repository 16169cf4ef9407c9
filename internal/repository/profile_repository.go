package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/sphere-team/sphere-backend/internal/domain"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	UpdateOnboardingStatus(ctx context.Context, id uuid.UUID, completed bool) error

	// UpdateEmbeddings replaces all three vectors at once. Latest
	// write wins; concurrent regenerations are not coordinated.
	UpdateEmbeddings(ctx context.Context, id uuid.UUID, profile, interests, expertise pgvector.Vector) error

	// GetCohortMembers lists active, onboarded profiles in the cohort,
	// excluding excludeID. The order is stable (created_at).
	GetCohortMembers(ctx context.Context, cohort domain.Cohort, excludeID uuid.UUID, limit int) ([]*domain.Profile, error)

	// SimilarProfiles runs the approximate-nearest-neighbor query for
	// the cohort: profiles whose embedding is at least minSimilarity
	// close to query, best first, excluding excludeID.
	SimilarProfiles(ctx context.Context, query pgvector.Vector, cohort domain.Cohort, excludeID uuid.UUID, minSimilarity float64, limit int) ([]domain.Candidate, error)
}
