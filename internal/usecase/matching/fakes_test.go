package matching

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/sphere-team/sphere-backend/internal/domain"
)

// fakeProfileRepo is an in-memory ProfileRepository for pipeline tests.
type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*domain.Profile

	cohortMembers []*domain.Profile
	cohortErr     error

	similar    []domain.Candidate
	similarErr error

	similarCalls int
	cohortCalls  int
}

func newFakeProfileRepo(profiles ...*domain.Profile) *fakeProfileRepo {
	repo := &fakeProfileRepo{profiles: make(map[uuid.UUID]*domain.Profile)}
	for _, p := range profiles {
		repo.profiles[p.ID] = p
	}
	return repo
}

func (r *fakeProfileRepo) Create(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, ok := r.profiles[p.ID]; ok {
		return domain.ErrProfileAlreadyExists
	}
	r.profiles[p.ID] = p
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) Update(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; !ok {
		return domain.ErrProfileNotFound
	}
	r.profiles[p.ID] = p
	return nil
}

func (r *fakeProfileRepo) UpdateOnboardingStatus(_ context.Context, id uuid.UUID, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.OnboardingCompleted = completed
	return nil
}

func (r *fakeProfileRepo) UpdateEmbeddings(_ context.Context, id uuid.UUID, profile, interests, expertise pgvector.Vector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.ProfileEmbedding = domain.NullVector{Vector: profile, Valid: true}
	p.InterestsEmbedding = domain.NullVector{Vector: interests, Valid: true}
	p.ExpertiseEmbedding = domain.NullVector{Vector: expertise, Valid: true}
	return nil
}

func (r *fakeProfileRepo) GetCohortMembers(_ context.Context, _ domain.Cohort, excludeID uuid.UUID, limit int) ([]*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cohortCalls++
	if r.cohortErr != nil {
		return nil, r.cohortErr
	}
	out := make([]*domain.Profile, 0, len(r.cohortMembers))
	for _, p := range r.cohortMembers {
		if p.ID == excludeID {
			continue
		}
		out = append(out, p)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) SimilarProfiles(_ context.Context, _ pgvector.Vector, _ domain.Cohort, excludeID uuid.UUID, minSimilarity float64, limit int) ([]domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.similarCalls++
	if r.similarErr != nil {
		return nil, r.similarErr
	}
	out := make([]domain.Candidate, 0, len(r.similar))
	for _, c := range r.similar {
		if c.Profile.ID == excludeID || c.Similarity < minSimilarity {
			continue
		}
		out = append(out, c)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// fakeMatchRepo is an in-memory MatchRepository. createErr, when set,
// fails the next Create once.
type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[uuid.UUID]*domain.Match

	createErr error
	existsErr error
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[uuid.UUID]*domain.Match)}
}

func sameScope(m *domain.Match, cohort domain.Cohort) bool {
	switch cohort.Kind {
	case domain.CohortEvent:
		return m.EventID != nil && *m.EventID == cohort.EventID
	case domain.CohortCity:
		return m.City != nil && *m.City == cohort.City
	default:
		return m.IsGlobal
	}
}

func (r *fakeMatchRepo) Create(_ context.Context, m *domain.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = domain.MatchStatusPending
	}
	stored := *m
	r.matches[m.ID] = &stored
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) Exists(_ context.Context, cohort domain.Cohort, userAID, userBID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	for _, m := range r.matches {
		if !sameScope(m, cohort) {
			continue
		}
		if (m.UserAID == userAID && m.UserBID == userBID) ||
			(m.UserAID == userBID && m.UserBID == userAID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMatchRepo) GetUserMatches(_ context.Context, userID uuid.UUID, status *domain.MatchStatus) ([]*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Match
	for _, m := range r.matches {
		if !m.HasUser(userID) {
			continue
		}
		if status != nil && m.Status != *status {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.MatchStatus) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	m.Status = status
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) GetUnnotified(_ context.Context, userID uuid.UUID) ([]*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Match
	for _, m := range r.matches {
		side, ok := m.Side(userID)
		if !ok {
			continue
		}
		if side == domain.NotifySideA && m.UserANotified {
			continue
		}
		if side == domain.NotifySideB && m.UserBNotified {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMatchRepo) MarkNotified(_ context.Context, id uuid.UUID, side domain.NotifySide) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return domain.ErrMatchNotFound
	}
	if side == domain.NotifySideA {
		m.UserANotified = true
	} else {
		m.UserBNotified = true
	}
	return nil
}

func (r *fakeMatchRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matches)
}

// stubOracle runs a per-pair function, defaulting to a fixed result.
type stubOracle struct {
	fn func(a, b *domain.Profile) (*domain.MatchResult, error)
}

func (o *stubOracle) AnalyzeMatch(_ context.Context, a, b *domain.Profile, _ string) (*domain.MatchResult, error) {
	if o.fn != nil {
		return o.fn(a, b)
	}
	return &domain.MatchResult{
		CompatibilityScore: 0.8,
		MatchType:          domain.MatchTypeProfessional,
		Explanation:        "Shared professional interests.",
		Icebreaker:         "What are you working on?",
	}, nil
}

// stubEmbedder returns one fixed-size vector per input text.
type stubEmbedder struct {
	err   error
	calls int
}

func (e *stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([]pgvector.Vector, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([]pgvector.Vector, len(texts))
	for i := range texts {
		out[i] = pgvector.NewVector([]float32{0.1, 0.2, 0.3})
	}
	return out, nil
}
