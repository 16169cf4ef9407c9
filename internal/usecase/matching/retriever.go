package matching

import (
	"context"
	"sort"
	"time"

	"github.com/sphere-team/sphere-backend/internal/domain"
	"github.com/sphere-team/sphere-backend/internal/repository"
	"go.uber.org/zap"
)

// Retriever produces the candidate list for one matching request.
// The primary path is a vector similarity query over the cohort; when
// the profile has no embeddings, or the query fails, it degrades to
// enumerating the cohort and scoring it with the heuristic. Retrieval
// never returns an error to the orchestrator.
type Retriever struct {
	profiles repository.ProfileRepository
	cfg      Config
	logger   *zap.Logger
}

func NewRetriever(profiles repository.ProfileRepository, cfg Config, logger *zap.Logger) *Retriever {
	return &Retriever{profiles: profiles, cfg: cfg, logger: logger}
}

// Retrieve returns up to limit candidates for the profile within the
// cohort, best first. The querying profile itself is never included.
func (r *Retriever) Retrieve(ctx context.Context, profile *domain.Profile, cohort domain.Cohort, limit int) []domain.Candidate {
	if limit <= 0 {
		limit = domain.VectorCandidateLimit
	}

	if profile.HasEmbeddings() {
		candidates, err := r.vectorCandidates(ctx, profile, cohort, limit)
		if err == nil {
			return candidates
		}
		r.logger.Warn("vector retrieval failed, falling back to heuristic scan",
			zap.String("profile_id", profile.ID.String()),
			zap.String("cohort", cohort.String()),
			zap.Error(err),
		)
	}

	return r.fallbackCandidates(ctx, profile, cohort, limit)
}

func (r *Retriever) vectorCandidates(ctx context.Context, profile *domain.Profile, cohort domain.Cohort, limit int) ([]domain.Candidate, error) {
	queryCtx, cancel := context.WithTimeout(ctx, r.retrievalTimeout())
	defer cancel()

	return r.profiles.SimilarProfiles(
		queryCtx,
		profile.ProfileEmbedding.Vector,
		cohort,
		profile.ID,
		r.cfg.VectorSimilarityThreshold,
		limit,
	)
}

func (r *Retriever) fallbackCandidates(ctx context.Context, profile *domain.Profile, cohort domain.Cohort, limit int) []domain.Candidate {
	queryCtx, cancel := context.WithTimeout(ctx, r.retrievalTimeout())
	defer cancel()

	members, err := r.profiles.GetCohortMembers(queryCtx, cohort, profile.ID, r.cfg.FallbackScanLimit)
	if err != nil {
		r.logger.Warn("cohort scan failed, returning no candidates",
			zap.String("profile_id", profile.ID.String()),
			zap.String("cohort", cohort.String()),
			zap.Error(err),
		)
		return nil
	}

	minScore := r.cfg.Threshold * 0.7
	candidates := make([]domain.Candidate, 0, len(members))
	for _, member := range members {
		if member.ID == profile.ID {
			continue
		}
		score := HeuristicScore(profile, member)
		if score >= minScore {
			candidates = append(candidates, domain.Candidate{Profile: member, Similarity: score})
		}
	}

	// Stable: equal scores keep the repository's enumeration order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func (r *Retriever) retrievalTimeout() time.Duration {
	if r.cfg.RetrievalTimeout > 0 {
		return r.cfg.RetrievalTimeout
	}
	return 15 * time.Second
}
