package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Profile is a person eligible for matching.
//
// LookingFor and CanHelpWith are the free-text statements the
// value-exchange heuristic and the AI analysis are built on.
// The three embeddings are regenerated whenever those fields change
// and may be absent (new profile, embedding call failed).
type Profile struct {
	ID                  uuid.UUID      `json:"id" db:"id"`
	DisplayName         string         `json:"display_name" db:"display_name"`
	Bio                 *string        `json:"bio" db:"bio"`
	LookingFor          *string        `json:"looking_for" db:"looking_for"`
	CanHelpWith         *string        `json:"can_help_with" db:"can_help_with"`
	Interests           pq.StringArray `json:"interests" db:"interests"`
	Goals               pq.StringArray `json:"goals" db:"goals"`
	City                *string        `json:"city" db:"city"`
	CurrentEventID      *uuid.UUID     `json:"current_event_id" db:"current_event_id"`
	GlobalOptIn         bool           `json:"global_opt_in" db:"global_opt_in"`
	OnboardingCompleted bool           `json:"onboarding_completed" db:"onboarding_completed"`
	IsActive            bool           `json:"is_active" db:"is_active"`

	ProfileEmbedding   NullVector `json:"-" db:"profile_embedding"`
	InterestsEmbedding NullVector `json:"-" db:"interests_embedding"`
	ExpertiseEmbedding NullVector `json:"-" db:"expertise_embedding"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasEmbeddings reports whether the profile can be used for vector
// retrieval. All three vectors are written together, so checking the
// primary one is enough.
func (p *Profile) HasEmbeddings() bool {
	return p.ProfileEmbedding.Valid
}

// Candidate is a profile plus the coarse similarity score retrieval
// assigned to it. It lives only for the duration of one matching
// request and is never persisted.
type Candidate struct {
	Profile    *Profile
	Similarity float64
}
