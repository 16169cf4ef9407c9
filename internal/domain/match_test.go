package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMatchSideHelpers(t *testing.T) {
	a, b, outsider := uuid.New(), uuid.New(), uuid.New()
	m := &Match{UserAID: a, UserBID: b}

	assert.True(t, m.HasUser(a))
	assert.True(t, m.HasUser(b))
	assert.False(t, m.HasUser(outsider))

	other, ok := m.OtherUserID(a)
	assert.True(t, ok)
	assert.Equal(t, b, other)

	other, ok = m.OtherUserID(b)
	assert.True(t, ok)
	assert.Equal(t, a, other)

	_, ok = m.OtherUserID(outsider)
	assert.False(t, ok)

	side, ok := m.Side(a)
	assert.True(t, ok)
	assert.Equal(t, NotifySideA, side)

	side, ok = m.Side(b)
	assert.True(t, ok)
	assert.Equal(t, NotifySideB, side)

	_, ok = m.Side(outsider)
	assert.False(t, ok)
}

func TestValidMatchType(t *testing.T) {
	for _, mt := range []MatchType{MatchTypeFriendship, MatchTypeProfessional, MatchTypeRomantic, MatchTypeCreative} {
		assert.True(t, ValidMatchType(mt))
	}
	assert.False(t, ValidMatchType("soulmates"))
	assert.False(t, ValidMatchType(""))
}

func TestValidMatchStatus(t *testing.T) {
	for _, s := range []MatchStatus{MatchStatusPending, MatchStatusAccepted, MatchStatusDeclined} {
		assert.True(t, ValidMatchStatus(s))
	}
	assert.False(t, ValidMatchStatus("expired"))
}

func TestFallbackMatchResult(t *testing.T) {
	r := FallbackMatchResult()
	assert.Equal(t, 0.5, r.CompatibilityScore)
	assert.Equal(t, MatchTypeFriendship, r.MatchType)
	assert.NotEmpty(t, r.Explanation)
	assert.NotEmpty(t, r.Icebreaker)
}
