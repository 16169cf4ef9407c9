package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sphere-team/sphere-backend/internal/domain"
	"github.com/sphere-team/sphere-backend/internal/repository"
	"go.uber.org/zap"
)

// EmbeddingService regenerates a profile's three vectors whenever the
// fields they derive from change. Failures leave the embeddings absent
// and are absorbed by the retriever's heuristic fallback, so callers
// can fire this and move on.
type EmbeddingService struct {
	profiles repository.ProfileRepository
	provider EmbeddingProvider
	logger   *zap.Logger
}

func NewEmbeddingService(profiles repository.ProfileRepository, provider EmbeddingProvider, logger *zap.Logger) *EmbeddingService {
	return &EmbeddingService{profiles: profiles, provider: provider, logger: logger}
}

// Regenerate rebuilds and stores all three embeddings for the profile.
func (s *EmbeddingService) Regenerate(ctx context.Context, profileID uuid.UUID) error {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return fmt.Errorf("load profile for embedding: %w", err)
	}

	texts := []string{
		ProfileText(profile),
		InterestsText(profile),
		ExpertiseText(profile),
	}

	vectors, err := s.provider.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("generate embeddings: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("generate embeddings: got %d vectors for %d texts", len(vectors), len(texts))
	}

	if err := s.profiles.UpdateEmbeddings(ctx, profileID, vectors[0], vectors[1], vectors[2]); err != nil {
		return fmt.Errorf("store embeddings: %w", err)
	}
	return nil
}

// RegenerateAsync runs Regenerate detached from the caller's request,
// logging failures instead of surfacing them.
func (s *EmbeddingService) RegenerateAsync(ctx context.Context, profileID uuid.UUID) {
	go func() {
		if err := s.Regenerate(context.WithoutCancel(ctx), profileID); err != nil {
			s.logger.Warn("embedding regeneration failed",
				zap.String("profile_id", profileID.String()),
				zap.Error(err),
			)
		}
	}()
}

// ProfileText composes the general profile text the primary embedding
// is built from.
func ProfileText(p *domain.Profile) string {
	var parts []string
	if bio := deref(p.Bio); bio != "" {
		parts = append(parts, "About: "+bio)
	}
	if looking := deref(p.LookingFor); looking != "" {
		parts = append(parts, "Looking for: "+looking)
	}
	if offers := deref(p.CanHelpWith); offers != "" {
		parts = append(parts, "Can help with: "+offers)
	}
	if len(p.Interests) > 0 {
		parts = append(parts, "Interests: "+strings.Join(p.Interests, ", "))
	}
	if len(p.Goals) > 0 {
		parts = append(parts, "Goals: "+strings.Join(p.Goals, ", "))
	}
	if len(parts) == 0 {
		return "New user"
	}
	return strings.Join(parts, " | ")
}

// InterestsText composes the interests-focused text.
func InterestsText(p *domain.Profile) string {
	var parts []string
	if len(p.Interests) > 0 {
		parts = append(parts, "Interests: "+strings.Join(p.Interests, ", "))
	}
	if len(p.Goals) > 0 {
		parts = append(parts, "Goals: "+strings.Join(p.Goals, ", "))
	}
	if looking := deref(p.LookingFor); looking != "" {
		parts = append(parts, "Looking for: "+looking)
	}
	if len(parts) == 0 {
		return "General networking"
	}
	return strings.Join(parts, " | ")
}

// ExpertiseText composes the expertise-focused text.
func ExpertiseText(p *domain.Profile) string {
	var parts []string
	if offers := deref(p.CanHelpWith); offers != "" {
		parts = append(parts, "Can help with: "+offers)
	}
	if bio := deref(p.Bio); bio != "" {
		runes := []rune(bio)
		if len(runes) > 200 {
			bio = string(runes[:200])
		}
		parts = append(parts, "Background: "+bio)
	}
	if len(parts) == 0 {
		return "Open to connecting"
	}
	return strings.Join(parts, " | ")
}
