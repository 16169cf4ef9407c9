package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sphere-team/sphere-backend/internal/domain"
)

type matchResultPayload struct {
	CompatibilityScore float64 `json:"compatibility_score"`
	MatchType          string  `json:"match_type"`
	Explanation        string  `json:"explanation"`
	Icebreaker         string  `json:"icebreaker"`
}

// parseMatchResult parses the model's output against the expected
// contract. The score is clamped into [0, 1] and an unknown match_type
// degrades to friendship; structural problems are errors so the caller
// can substitute the full fallback result.
func parseMatchResult(raw string) (*domain.MatchResult, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty response")
	}

	var payload matchResultPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse analyze response: %w", err)
	}
	if payload.Explanation == "" || payload.Icebreaker == "" {
		return nil, fmt.Errorf("analyze response missing explanation or icebreaker")
	}

	score := payload.CompatibilityScore
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	matchType := domain.MatchType(strings.ToLower(strings.TrimSpace(payload.MatchType)))
	if !domain.ValidMatchType(matchType) {
		matchType = domain.MatchTypeFriendship
	}

	return &domain.MatchResult{
		CompatibilityScore: score,
		MatchType:          matchType,
		Explanation:        payload.Explanation,
		Icebreaker:         payload.Icebreaker,
	}, nil
}

// extractJSON strips markdown code fences the model sometimes wraps
// its JSON in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(strings.Trim(raw, "`"))
}
