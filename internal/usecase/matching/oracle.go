package matching

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/sphere-team/sphere-backend/internal/domain"
)

// CompatibilityOracle analyzes two profiles and produces a score with
// an explanation and an icebreaker. The real implementation calls an
// external model and is neither deterministic nor guaranteed to be
// available; callers must treat errors and odd scores as normal and
// fall back to domain.FallbackMatchResult.
type CompatibilityOracle interface {
	AnalyzeMatch(ctx context.Context, a, b *domain.Profile, cohortContext string) (*domain.MatchResult, error)
}

// EmbeddingProvider turns texts into fixed-dimensionality vectors, one
// per input text, in input order.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([]pgvector.Vector, error)
}
