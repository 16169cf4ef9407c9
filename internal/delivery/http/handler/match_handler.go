package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sphere-team/sphere-backend/internal/delivery/http/middleware"
	"github.com/sphere-team/sphere-backend/internal/domain"
	"github.com/sphere-team/sphere-backend/internal/usecase/matching"
)

type MatchHandler struct {
	matchingService *matching.Service
}

func NewMatchHandler(matchingService *matching.Service) *MatchHandler {
	return &MatchHandler{matchingService: matchingService}
}

// FindMatchesRequest selects the cohort to match within.
type FindMatchesRequest struct {
	Cohort  string     `json:"cohort" binding:"required,oneof=event city global"`
	EventID *uuid.UUID `json:"event_id"`
	City    *string    `json:"city"`
	Limit   int        `json:"limit" binding:"omitempty,min=1,max=10"`
}

func (r *FindMatchesRequest) toCohort() (domain.Cohort, error) {
	var cohort domain.Cohort
	switch domain.CohortKind(r.Cohort) {
	case domain.CohortEvent:
		if r.EventID == nil {
			return cohort, domain.ErrInvalidCohort
		}
		cohort = domain.EventCohort(*r.EventID)
	case domain.CohortCity:
		if r.City == nil {
			return cohort, domain.ErrInvalidCohort
		}
		cohort = domain.CityCohort(*r.City)
	case domain.CohortGlobal:
		cohort = domain.GlobalCohort()
	default:
		return cohort, domain.ErrInvalidCohort
	}
	return cohort, cohort.Validate()
}

// FindMatches handles POST /matches/find
// @Summary Find matches
// @Description Run the matching pipeline for the current user in a cohort
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body FindMatchesRequest true "Cohort selector"
// @Success 200 {object} matching.Feed
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches/find [post]
func (h *MatchHandler) FindMatches(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req FindMatchesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	cohort, err := req.toCohort()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid cohort"})
		return
	}

	feed, err := h.matchingService.FindMatches(c.Request.Context(), userID, cohort, req.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
			return
		}
		if errors.Is(err, domain.ErrInvalidCohort) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid cohort"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "matching failed"})
		return
	}

	c.JSON(http.StatusOK, feed)
}

// GetMyMatches handles GET /matches
// @Summary List my matches
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, accepted, declined)
// @Success 200 {array} domain.Match
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches [get]
func (h *MatchHandler) GetMyMatches(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var status *domain.MatchStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.MatchStatus(raw)
		if !domain.ValidMatchStatus(s) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status"})
			return
		}
		status = &s
	}

	matches, err := h.matchingService.GetUserMatches(c.Request.Context(), userID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get matches"})
		return
	}

	c.JSON(http.StatusOK, matches)
}

// GetUnnotified handles GET /matches/unnotified
// @Summary List matches the user has not seen yet
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Match
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches/unnotified [get]
func (h *MatchHandler) GetUnnotified(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	matches, err := h.matchingService.GetUnnotified(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get matches"})
		return
	}

	c.JSON(http.StatusOK, matches)
}

// Accept handles POST /matches/:id/accept
// @Summary Accept a match
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Match
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /matches/{id}/accept [post]
func (h *MatchHandler) Accept(c *gin.Context) {
	h.transition(c, h.matchingService.Accept)
}

// Decline handles POST /matches/:id/decline
// @Summary Decline a match
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Match
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /matches/{id}/decline [post]
func (h *MatchHandler) Decline(c *gin.Context) {
	h.transition(c, h.matchingService.Decline)
}

func (h *MatchHandler) transition(c *gin.Context, op func(ctx context.Context, matchID, userID uuid.UUID) (*domain.Match, error)) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid match id"})
		return
	}

	match, err := op(c.Request.Context(), matchID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMatchNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "match not found"})
		case errors.Is(err, domain.ErrInvalidStatus):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "match already resolved"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update match"})
		}
		return
	}

	c.JSON(http.StatusOK, match)
}

// MarkNotified handles POST /matches/:id/notified
// @Summary Mark a match as seen by the current user
// @Tags matches
// @Security BearerAuth
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /matches/{id}/notified [post]
func (h *MatchHandler) MarkNotified(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid match id"})
		return
	}

	if err := h.matchingService.MarkNotified(c.Request.Context(), matchID, userID); err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "match not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update match"})
		return
	}

	c.Status(http.StatusNoContent)
}
