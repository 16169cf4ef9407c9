package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sphere-team/sphere-backend/internal/delivery/http/middleware"
	"github.com/sphere-team/sphere-backend/internal/domain"
	"github.com/sphere-team/sphere-backend/internal/usecase/profile"
)

type ProfileHandler struct {
	profileUseCase *profile.ProfileUseCase
}

func NewProfileHandler(profileUseCase *profile.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{profileUseCase: profileUseCase}
}

// GetMyProfile handles GET /profile/me
// @Summary Get my profile
// @Description Get current user's profile
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Profile
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/me [get]
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	p, err := h.profileUseCase.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdateMyProfile handles PUT /profile/me
// @Summary Update my profile
// @Description Update current user's profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.UpdateProfileRequest true "Profile update data"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/me [put]
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req profile.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	updated, err := h.profileUseCase.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// CompleteOnboarding handles POST /profile/complete-onboarding
// @Summary Complete onboarding
// @Description Create profile and complete onboarding
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.CreateProfileRequest true "Profile creation data"
// @Success 201 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/complete-onboarding [post]
func (h *ProfileHandler) CompleteOnboarding(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req profile.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	created, err := h.profileUseCase.CompleteOnboarding(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, domain.ErrProfileAlreadyExists) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "profile already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create profile"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetProfileByID handles GET /profile/:user_id
// @Summary Get user profile
// @Description Get another user's profile by user ID
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/{user_id} [get]
func (h *ProfileHandler) GetProfileByID(c *gin.Context) {
	if _, ok := middleware.UserID(c); !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
		return
	}

	p, err := h.profileUseCase.GetProfile(c.Request.Context(), targetID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, p)
}
