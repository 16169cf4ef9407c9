package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sphere-team/sphere-backend/internal/domain"
	"github.com/sphere-team/sphere-backend/internal/repository"
	"github.com/sphere-team/sphere-backend/internal/usecase/matching"
)

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	embeddings  *matching.EmbeddingService
}

func NewProfileUseCase(
	profileRepo repository.ProfileRepository,
	embeddings *matching.EmbeddingService,
) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		embeddings:  embeddings,
	}
}

// CreateProfileRequest carries the onboarding payload.
type CreateProfileRequest struct {
	DisplayName string     `json:"display_name" binding:"required,min=2,max=50"`
	Bio         *string    `json:"bio" binding:"omitempty,max=500"`
	LookingFor  *string    `json:"looking_for"`
	CanHelpWith *string    `json:"can_help_with"`
	Interests   []string   `json:"interests" binding:"omitempty,max=5"`
	Goals       []string   `json:"goals" binding:"omitempty,max=3"`
	City        *string    `json:"city"`
	EventID     *uuid.UUID `json:"event_id"`
	GlobalOptIn bool       `json:"global_opt_in"`
}

// UpdateProfileRequest carries a partial profile edit. Nil fields are
// left untouched.
type UpdateProfileRequest struct {
	DisplayName *string    `json:"display_name" binding:"omitempty,min=2,max=50"`
	Bio         *string    `json:"bio" binding:"omitempty,max=500"`
	LookingFor  *string    `json:"looking_for"`
	CanHelpWith *string    `json:"can_help_with"`
	Interests   *[]string  `json:"interests" binding:"omitempty,max=5"`
	Goals       *[]string  `json:"goals" binding:"omitempty,max=3"`
	City        *string    `json:"city"`
	EventID     *uuid.UUID `json:"event_id"`
	GlobalOptIn *bool      `json:"global_opt_in"`
}

// CompleteOnboarding creates the profile and kicks off the first
// embedding generation in the background.
func (uc *ProfileUseCase) CompleteOnboarding(ctx context.Context, userID uuid.UUID, req *CreateProfileRequest) (*domain.Profile, error) {
	profile := &domain.Profile{
		ID:                  userID,
		DisplayName:         strings.TrimSpace(req.DisplayName),
		Bio:                 req.Bio,
		LookingFor:          req.LookingFor,
		CanHelpWith:         req.CanHelpWith,
		Interests:           dedupeTags(req.Interests),
		Goals:               dedupeTags(req.Goals),
		City:                req.City,
		CurrentEventID:      req.EventID,
		GlobalOptIn:         req.GlobalOptIn,
		OnboardingCompleted: true,
		IsActive:            true,
	}

	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	uc.embeddings.RegenerateAsync(ctx, profile.ID)

	return profile, nil
}

// GetProfile returns a profile by id.
func (uc *ProfileUseCase) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return uc.profileRepo.GetByID(ctx, id)
}

// UpdateProfile applies a partial edit. When any field the embeddings
// derive from changes, regeneration is scheduled; the request never
// waits for it.
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*domain.Profile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	embeddingFieldsChanged := false

	if req.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
		embeddingFieldsChanged = true
	}
	if req.LookingFor != nil {
		profile.LookingFor = req.LookingFor
		embeddingFieldsChanged = true
	}
	if req.CanHelpWith != nil {
		profile.CanHelpWith = req.CanHelpWith
		embeddingFieldsChanged = true
	}
	if req.Interests != nil {
		profile.Interests = dedupeTags(*req.Interests)
		embeddingFieldsChanged = true
	}
	if req.Goals != nil {
		profile.Goals = dedupeTags(*req.Goals)
		embeddingFieldsChanged = true
	}
	if req.City != nil {
		profile.City = req.City
	}
	if req.EventID != nil {
		profile.CurrentEventID = req.EventID
	}
	if req.GlobalOptIn != nil {
		profile.GlobalOptIn = *req.GlobalOptIn
	}

	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if embeddingFieldsChanged {
		uc.embeddings.RegenerateAsync(ctx, profile.ID)
	}

	return profile, nil
}

// dedupeTags normalizes a tag set: trimmed, lowercased, no duplicates.
func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
