package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sphere-team/sphere-backend/internal/domain"
)

type MatchRepository interface {
	Create(ctx context.Context, match *domain.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error)

	// Exists reports whether a match between the two users already
	// exists within the cohort scope. Both orderings of the pair are
	// checked, so Exists(c, a, b) == Exists(c, b, a).
	Exists(ctx context.Context, cohort domain.Cohort, userAID, userBID uuid.UUID) (bool, error)

	GetUserMatches(ctx context.Context, userID uuid.UUID, status *domain.MatchStatus) ([]*domain.Match, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MatchStatus) (*domain.Match, error)

	// GetUnnotified lists matches where userID's side has not been
	// notified yet.
	GetUnnotified(ctx context.Context, userID uuid.UUID) ([]*domain.Match, error)
	MarkNotified(ctx context.Context, id uuid.UUID, side domain.NotifySide) error
}
