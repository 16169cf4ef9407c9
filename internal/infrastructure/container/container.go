package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sphere-team/sphere-backend/internal/config"
	"github.com/sphere-team/sphere-backend/internal/delivery/http"
	"github.com/sphere-team/sphere-backend/internal/delivery/http/handler"
	"github.com/sphere-team/sphere-backend/internal/delivery/http/middleware"
	"github.com/sphere-team/sphere-backend/internal/infrastructure/database"
	"github.com/sphere-team/sphere-backend/internal/infrastructure/gemini"
	"github.com/sphere-team/sphere-backend/internal/infrastructure/server"
	"github.com/sphere-team/sphere-backend/internal/repository/postgres"
	"github.com/sphere-team/sphere-backend/internal/usecase/matching"
	"github.com/sphere-team/sphere-backend/internal/usecase/profile"
	"go.uber.org/zap"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Gemini *gemini.Client
	Server *server.Server
}

// NewContainer wires the application together.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	geminiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:         cfg.Gemini.APIKey,
		Model:          cfg.Gemini.Model,
		EmbeddingModel: cfg.Gemini.EmbeddingModel,
		AnalyzeTimeout: cfg.Gemini.AnalyzeTimeout,
		EmbedTimeout:   cfg.Gemini.EmbedTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	// Repositories
	profileRepo := postgres.NewProfileRepository(db)
	matchRepo := postgres.NewMatchRepository(db)

	// Use cases
	matchingCfg := matching.Config{
		Threshold:                 cfg.Matching.Threshold,
		VectorSimilarityThreshold: cfg.Matching.VectorSimilarityThreshold,
		CandidateLimit:            cfg.Matching.CandidateLimit,
		FallbackScanLimit:         cfg.Matching.FallbackScanLimit,
		RetrievalTimeout:          cfg.Matching.RetrievalTimeout,
	}
	matchingService := matching.NewService(profileRepo, matchRepo, geminiClient, matchingCfg, logger)
	embeddingService := matching.NewEmbeddingService(profileRepo, geminiClient, logger)
	profileUseCase := profile.NewProfileUseCase(profileRepo, embeddingService)

	// Handlers
	profileHandler := handler.NewProfileHandler(profileUseCase)
	matchHandler := handler.NewMatchHandler(matchingService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	rateLimiter := middleware.NewRateLimiter(redisClient, logger)

	router := http.NewRouter(profileHandler, matchHandler, authMiddleware, rateLimiter, cfg.Matching.RateLimitPerMinute)
	srv := server.NewServer(&cfg.Server, router.Setup(), logger)

	return &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Redis:  redisClient,
		Gemini: geminiClient,
		Server: srv,
	}, nil
}

// Close closes all connections.
func (c *Container) Close() error {
	if c.Gemini != nil {
		if err := c.Gemini.Close(); err != nil {
			c.Logger.Warn("error closing gemini client", zap.Error(err))
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("error closing redis", zap.Error(err))
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
