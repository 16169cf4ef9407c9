package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sphere-team/sphere-backend/internal/delivery/http/handler"
	"github.com/sphere-team/sphere-backend/internal/delivery/http/middleware"
)

type Router struct {
	profileHandler    *handler.ProfileHandler
	matchHandler      *handler.MatchHandler
	authMiddleware    *middleware.AuthMiddleware
	rateLimiter       *middleware.RateLimiter
	findRatePerMinute int
}

func NewRouter(
	profileHandler *handler.ProfileHandler,
	matchHandler *handler.MatchHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	findRatePerMinute int,
) *Router {
	return &Router{
		profileHandler:    profileHandler,
		matchHandler:      matchHandler,
		authMiddleware:    authMiddleware,
		rateLimiter:       rateLimiter,
		findRatePerMinute: findRatePerMinute,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.Default()

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			// Profile routes
			profile := protected.Group("/profile")
			{
				profile.GET("/me", r.profileHandler.GetMyProfile)
				profile.PUT("/me", r.profileHandler.UpdateMyProfile)
				profile.POST("/complete-onboarding", r.profileHandler.CompleteOnboarding)
				profile.GET("/:user_id", r.profileHandler.GetProfileByID)
			}

			// Match routes
			matches := protected.Group("/matches")
			{
				matches.POST("/find", r.rateLimiter.Limit("find_matches", r.findRatePerMinute), r.matchHandler.FindMatches)
				matches.GET("", r.matchHandler.GetMyMatches)
				matches.GET("/unnotified", r.matchHandler.GetUnnotified)
				matches.POST("/:id/accept", r.matchHandler.Accept)
				matches.POST("/:id/decline", r.matchHandler.Decline)
				matches.POST("/:id/notified", r.matchHandler.MarkNotified)
			}
		}
	}

	return router
}
