package domain

// Matching tuning constants. MaxMatchThreshold is an empirical cap:
// thresholds above 0.4 reject too many matches that people accept, so
// configuration is clamped to it at load time.
const (
	DefaultMatchThreshold     = 0.4
	MaxMatchThreshold         = 0.4
	VectorSimilarityThreshold = 0.45
	VectorCandidateLimit      = 10
	DefaultMatchLimit         = 3

	// EmbeddingDimension matches the text-embedding-004 model.
	EmbeddingDimension = 768

	// FallbackScanLimit bounds the cohort page the heuristic fallback
	// enumerates when no embedding is available.
	FallbackScanLimit = 100

	MaxInterests = 5
	MaxGoals     = 3
	MaxBioLength = 500
)
