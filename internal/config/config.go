package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/sphere-team/sphere-backend/internal/domain"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Gemini   GeminiConfig
	Matching MatchingConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type GeminiConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	AnalyzeTimeout time.Duration
	EmbedTimeout   time.Duration
}

type MatchingConfig struct {
	// Threshold is clamped to domain.MaxMatchThreshold at load time:
	// higher values are unvalidated and reject too many real matches.
	Threshold                 float64
	VectorSimilarityThreshold float64
	CandidateLimit            int
	FallbackScanLimit         int
	RetrievalTimeout          time.Duration
	RateLimitPerMinute        int
}

type LoggingConfig struct {
	JSON  bool
	Debug bool
}

// Load reads configuration from environment variables or a .env file.
// ThresholdClamped reports whether the configured matching threshold
// was lowered to the supported maximum.
func Load() (*Config, bool, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Missing .env is fine; env vars may carry everything.
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("GEMINI_EMBEDDING_MODEL", "text-embedding-004")
	viper.SetDefault("GEMINI_ANALYZE_TIMEOUT_SEC", 25)
	viper.SetDefault("GEMINI_EMBED_TIMEOUT_SEC", 15)
	viper.SetDefault("MATCH_THRESHOLD", domain.DefaultMatchThreshold)
	viper.SetDefault("MATCH_SIMILARITY_THRESHOLD", domain.VectorSimilarityThreshold)
	viper.SetDefault("MATCH_CANDIDATE_LIMIT", domain.VectorCandidateLimit)
	viper.SetDefault("MATCH_FALLBACK_SCAN_LIMIT", domain.FallbackScanLimit)
	viper.SetDefault("MATCH_RETRIEVAL_TIMEOUT_SEC", 15)
	viper.SetDefault("MATCH_RATE_LIMIT_PER_MINUTE", 5)

	config := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Gemini: GeminiConfig{
			APIKey:         viper.GetString("GEMINI_API_KEY"),
			Model:          viper.GetString("GEMINI_MODEL"),
			EmbeddingModel: viper.GetString("GEMINI_EMBEDDING_MODEL"),
			AnalyzeTimeout: time.Duration(viper.GetInt("GEMINI_ANALYZE_TIMEOUT_SEC")) * time.Second,
			EmbedTimeout:   time.Duration(viper.GetInt("GEMINI_EMBED_TIMEOUT_SEC")) * time.Second,
		},
		Matching: MatchingConfig{
			Threshold:                 viper.GetFloat64("MATCH_THRESHOLD"),
			VectorSimilarityThreshold: viper.GetFloat64("MATCH_SIMILARITY_THRESHOLD"),
			CandidateLimit:            viper.GetInt("MATCH_CANDIDATE_LIMIT"),
			FallbackScanLimit:         viper.GetInt("MATCH_FALLBACK_SCAN_LIMIT"),
			RetrievalTimeout:          time.Duration(viper.GetInt("MATCH_RETRIEVAL_TIMEOUT_SEC")) * time.Second,
			RateLimitPerMinute:        viper.GetInt("MATCH_RATE_LIMIT_PER_MINUTE"),
		},
		Logging: LoggingConfig{
			JSON:  viper.GetBool("LOG_JSON"),
			Debug: viper.GetBool("LOG_DEBUG"),
		},
	}

	clamped := false
	if config.Matching.Threshold > domain.MaxMatchThreshold {
		config.Matching.Threshold = domain.MaxMatchThreshold
		clamped = true
	}

	if err := config.Validate(); err != nil {
		return nil, false, err
	}

	return config, clamped, nil
}

// Validate checks the critical configuration values.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.Matching.Threshold <= 0 {
		return fmt.Errorf("matching threshold must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns the Redis address.
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
