package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sphere-team/sphere-backend/internal/domain"
	"github.com/sphere-team/sphere-backend/internal/repository"
	"go.uber.org/zap"
)

// Config carries the matching engine's tuning knobs. Zero values fall
// back to the domain defaults.
type Config struct {
	// Threshold is the minimum compatibility score a candidate must
	// reach to be persisted. Clamped to domain.MaxMatchThreshold by
	// the config loader.
	Threshold float64
	// VectorSimilarityThreshold is the minimum cosine similarity for
	// the primary retrieval path.
	VectorSimilarityThreshold float64
	// CandidateLimit caps how many candidates one request retrieves.
	CandidateLimit int
	// FallbackScanLimit bounds the cohort page the heuristic fallback
	// enumerates.
	FallbackScanLimit int
	// RetrievalTimeout bounds the similarity query and cohort scan.
	RetrievalTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = domain.DefaultMatchThreshold
	}
	if c.Threshold > domain.MaxMatchThreshold {
		c.Threshold = domain.MaxMatchThreshold
	}
	if c.VectorSimilarityThreshold <= 0 {
		c.VectorSimilarityThreshold = domain.VectorSimilarityThreshold
	}
	if c.CandidateLimit <= 0 {
		c.CandidateLimit = domain.VectorCandidateLimit
	}
	if c.FallbackScanLimit <= 0 {
		c.FallbackScanLimit = domain.FallbackScanLimit
	}
	if c.RetrievalTimeout <= 0 {
		c.RetrievalTimeout = 15 * time.Second
	}
	return c
}

// MatchedProfile pairs a created match with the counterpart's profile.
type MatchedProfile struct {
	Profile *domain.Profile `json:"profile"`
	Match   *domain.Match   `json:"match"`
}

// Feed is the result of one matching request. CandidatesConsidered is
// the retrieval count before any filtering, so callers can distinguish
// "nothing good enough" from "cohort too small" when Matches is empty.
type Feed struct {
	Matches              []MatchedProfile `json:"matches"`
	CandidatesConsidered int              `json:"candidates_considered"`
	CohortTooSmall       bool             `json:"cohort_too_small"`
}

// Service is the pairing orchestrator: it runs the
// retrieve → filter → score → rank → persist pipeline per request and
// owns the match lifecycle operations around it.
type Service struct {
	profiles  repository.ProfileRepository
	matches   repository.MatchRepository
	oracle    CompatibilityOracle
	retriever *Retriever
	cfg       Config
	logger    *zap.Logger
}

func NewService(
	profiles repository.ProfileRepository,
	matches repository.MatchRepository,
	oracle CompatibilityOracle,
	cfg Config,
	logger *zap.Logger,
) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		profiles:  profiles,
		matches:   matches,
		oracle:    oracle,
		retriever: NewRetriever(profiles, cfg, logger),
		cfg:       cfg,
		logger:    logger,
	}
}

// scoredCandidate keeps a candidate together with its analysis result
// through the ranking and persistence steps.
type scoredCandidate struct {
	candidate domain.Candidate
	result    *domain.MatchResult
}

// FindMatches runs the full pipeline for one profile within one cohort
// and returns the top limit newly created matches, best first.
//
// Ranking is stable on retrieval order: candidates with equal scores
// keep the order retrieval produced them in. Running the pipeline
// twice with no intervening state change creates no duplicate rows;
// existence is checked once up front and again immediately before
// each insert.
func (s *Service) FindMatches(ctx context.Context, profileID uuid.UUID, cohort domain.Cohort, limit int) (*Feed, error) {
	if err := cohort.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = domain.DefaultMatchLimit
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("load requesting profile: %w", err)
	}

	// RETRIEVE
	candidates := s.retriever.Retrieve(ctx, profile, cohort, s.cfg.CandidateLimit)
	feed := &Feed{CandidatesConsidered: len(candidates)}
	if len(candidates) == 0 {
		feed.CohortTooSmall = s.cohortTooSmall(ctx, cohort, profileID)
		return feed, nil
	}

	// FILTER_EXISTING + heuristic gate before the expensive analysis.
	gate := s.cfg.Threshold * 0.5
	pending := make([]domain.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		exists, err := s.matches.Exists(ctx, cohort, profileID, candidate.Profile.ID)
		if err != nil {
			s.logger.Warn("existence check failed, skipping candidate",
				zap.String("candidate_id", candidate.Profile.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if exists {
			continue
		}
		if HeuristicScore(profile, candidate.Profile) < gate {
			continue
		}
		pending = append(pending, candidate)
	}
	if len(pending) == 0 {
		return feed, nil
	}

	// SCORE: concurrent fan-out, one slot per candidate. A failed call
	// degrades to the fallback result; it never drops the candidate or
	// blocks the others.
	scored := s.scoreCandidates(ctx, profile, cohort, pending)

	// AGGREGATE_AND_RANK
	ranked := make([]scoredCandidate, 0, len(scored))
	for _, sc := range scored {
		if sc.result.CompatibilityScore >= s.cfg.Threshold {
			ranked = append(ranked, sc)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].result.CompatibilityScore > ranked[j].result.CompatibilityScore
	})

	// PERSIST: sequential in ranked order, re-checking existence right
	// before each insert to stay race-minimal with concurrent requests.
	for _, sc := range ranked {
		if len(feed.Matches) >= limit {
			break
		}
		if ctx.Err() != nil {
			return feed, nil
		}
		match, err := s.persistMatch(ctx, cohort, profileID, sc)
		if err != nil {
			s.logger.Warn("match persistence skipped",
				zap.String("candidate_id", sc.candidate.Profile.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if match == nil {
			// Another request created the same pairing first.
			continue
		}
		feed.Matches = append(feed.Matches, MatchedProfile{
			Profile: sc.candidate.Profile,
			Match:   match,
		})
	}

	return feed, nil
}

func (s *Service) scoreCandidates(ctx context.Context, profile *domain.Profile, cohort domain.Cohort, pending []domain.Candidate) []scoredCandidate {
	results := make([]*domain.MatchResult, len(pending))

	var wg sync.WaitGroup
	for i, candidate := range pending {
		wg.Add(1)
		go func(i int, candidate domain.Candidate) {
			defer wg.Done()
			result, err := s.oracle.AnalyzeMatch(ctx, profile, candidate.Profile, cohort.Context())
			if err != nil || result == nil {
				if err != nil {
					s.logger.Warn("compatibility analysis failed, using fallback",
						zap.String("candidate_id", candidate.Profile.ID.String()),
						zap.Error(err),
					)
				}
				result = domain.FallbackMatchResult()
			}
			results[i] = result
		}(i, candidate)
	}
	wg.Wait()

	scored := make([]scoredCandidate, len(pending))
	for i := range pending {
		scored[i] = scoredCandidate{candidate: pending[i], result: results[i]}
	}
	return scored
}

// persistMatch inserts one match row. A nil, nil return means the
// pairing already exists (found by the re-check or by the storage
// layer's unique index) and the candidate should be skipped quietly.
func (s *Service) persistMatch(ctx context.Context, cohort domain.Cohort, profileID uuid.UUID, sc scoredCandidate) (*domain.Match, error) {
	exists, err := s.matches.Exists(ctx, cohort, profileID, sc.candidate.Profile.ID)
	if err != nil {
		return nil, fmt.Errorf("pre-insert existence check: %w", err)
	}
	if exists {
		return nil, nil
	}

	match := &domain.Match{
		UserAID:            profileID,
		UserBID:            sc.candidate.Profile.ID,
		CompatibilityScore: sc.result.CompatibilityScore,
		MatchType:          sc.result.MatchType,
		Explanation:        sc.result.Explanation,
		Icebreaker:         sc.result.Icebreaker,
		Status:             domain.MatchStatusPending,
	}
	applyScope(match, cohort)

	if err := s.matches.Create(ctx, match); err != nil {
		if isUniqueViolation(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("insert match: %w", err)
	}
	return match, nil
}

func applyScope(match *domain.Match, cohort domain.Cohort) {
	switch cohort.Kind {
	case domain.CohortEvent:
		eventID := cohort.EventID
		match.EventID = &eventID
	case domain.CohortCity:
		city := cohort.City
		match.City = &city
	case domain.CohortGlobal:
		match.IsGlobal = true
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// cohortTooSmall distinguishes an empty cohort from a cohort that
// produced no candidates.
func (s *Service) cohortTooSmall(ctx context.Context, cohort domain.Cohort, excludeID uuid.UUID) bool {
	members, err := s.profiles.GetCohortMembers(ctx, cohort, excludeID, 1)
	if err != nil {
		s.logger.Warn("cohort size probe failed", zap.String("cohort", cohort.String()), zap.Error(err))
		return false
	}
	return len(members) == 0
}

// GetUserMatches lists a user's matches, optionally filtered by status.
func (s *Service) GetUserMatches(ctx context.Context, userID uuid.UUID, status *domain.MatchStatus) ([]*domain.Match, error) {
	return s.matches.GetUserMatches(ctx, userID, status)
}

// Accept moves a pending match to accepted. Replaying an accept is a
// no-op; any other transition from a terminal state is rejected.
func (s *Service) Accept(ctx context.Context, matchID, userID uuid.UUID) (*domain.Match, error) {
	return s.transition(ctx, matchID, userID, domain.MatchStatusAccepted)
}

// Decline moves a pending match to declined, with the same replay
// semantics as Accept.
func (s *Service) Decline(ctx context.Context, matchID, userID uuid.UUID) (*domain.Match, error) {
	return s.transition(ctx, matchID, userID, domain.MatchStatusDeclined)
}

func (s *Service) transition(ctx context.Context, matchID, userID uuid.UUID, target domain.MatchStatus) (*domain.Match, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasUser(userID) {
		return nil, domain.ErrMatchNotFound
	}
	if match.Status == target {
		return match, nil
	}
	if match.Status != domain.MatchStatusPending {
		return nil, domain.ErrInvalidStatus
	}
	return s.matches.UpdateStatus(ctx, matchID, target)
}

// GetUnnotified lists matches the user has not been told about yet.
func (s *Service) GetUnnotified(ctx context.Context, userID uuid.UUID) ([]*domain.Match, error) {
	return s.matches.GetUnnotified(ctx, userID)
}

// MarkNotified records that the user saw the match. The flag never
// reverts.
func (s *Service) MarkNotified(ctx context.Context, matchID, userID uuid.UUID) error {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return err
	}
	side, ok := match.Side(userID)
	if !ok {
		return domain.ErrMatchNotFound
	}
	return s.matches.MarkNotified(ctx, matchID, side)
}
