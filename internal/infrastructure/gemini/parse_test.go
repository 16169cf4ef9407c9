package gemini

import (
	"testing"

	"github.com/sphere-team/sphere-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatchResultPlainJSON(t *testing.T) {
	raw := `{"compatibility_score": 0.72, "match_type": "professional", "explanation": "Both build backend systems.", "icebreaker": "What stack are you on?"}`

	result, err := parseMatchResult(raw)
	require.NoError(t, err)

	assert.Equal(t, 0.72, result.CompatibilityScore)
	assert.Equal(t, domain.MatchTypeProfessional, result.MatchType)
	assert.Equal(t, "Both build backend systems.", result.Explanation)
	assert.Equal(t, "What stack are you on?", result.Icebreaker)
}

func TestParseMatchResultMarkdownFenced(t *testing.T) {
	raw := "```json\n{\"compatibility_score\": 0.5, \"match_type\": \"creative\", \"explanation\": \"e\", \"icebreaker\": \"i\"}\n```"

	result, err := parseMatchResult(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchTypeCreative, result.MatchType)
}

func TestParseMatchResultBareFence(t *testing.T) {
	raw := "```\n{\"compatibility_score\": 0.5, \"match_type\": \"friendship\", \"explanation\": \"e\", \"icebreaker\": \"i\"}\n```"

	_, err := parseMatchResult(raw)
	assert.NoError(t, err)
}

func TestParseMatchResultClampsScore(t *testing.T) {
	high := `{"compatibility_score": 1.7, "match_type": "romantic", "explanation": "e", "icebreaker": "i"}`
	result, err := parseMatchResult(high)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.CompatibilityScore)

	low := `{"compatibility_score": -0.3, "match_type": "romantic", "explanation": "e", "icebreaker": "i"}`
	result, err = parseMatchResult(low)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.CompatibilityScore)
}

func TestParseMatchResultUnknownTypeDegrades(t *testing.T) {
	raw := `{"compatibility_score": 0.6, "match_type": "soulmates", "explanation": "e", "icebreaker": "i"}`

	result, err := parseMatchResult(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchTypeFriendship, result.MatchType)
}

func TestParseMatchResultNormalizesTypeCase(t *testing.T) {
	raw := `{"compatibility_score": 0.6, "match_type": " Professional ", "explanation": "e", "icebreaker": "i"}`

	result, err := parseMatchResult(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchTypeProfessional, result.MatchType)
}

func TestParseMatchResultMissingFields(t *testing.T) {
	raw := `{"compatibility_score": 0.6, "match_type": "friendship"}`

	_, err := parseMatchResult(raw)
	assert.Error(t, err)
}

func TestParseMatchResultMalformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json at all", "{\"compatibility_score\":"} {
		_, err := parseMatchResult(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, extractJSON(tc.in), "input %q", tc.in)
	}
}
