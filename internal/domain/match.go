package domain

import (
	"time"

	"github.com/google/uuid"
)

// MatchType is the category label the compatibility analysis assigns
// to a pairing.
type MatchType string

const (
	MatchTypeFriendship   MatchType = "friendship"
	MatchTypeProfessional MatchType = "professional"
	MatchTypeRomantic     MatchType = "romantic"
	MatchTypeCreative     MatchType = "creative"
)

// ValidMatchType reports whether t is one of the closed set of labels.
func ValidMatchType(t MatchType) bool {
	switch t {
	case MatchTypeFriendship, MatchTypeProfessional, MatchTypeRomantic, MatchTypeCreative:
		return true
	}
	return false
}

// MatchStatus is the lifecycle state of a match. Accepted and declined
// are terminal; replaying a transition is a no-op.
type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusAccepted MatchStatus = "accepted"
	MatchStatusDeclined MatchStatus = "declined"
)

// ValidMatchStatus reports whether s is a known status.
func ValidMatchStatus(s MatchStatus) bool {
	switch s {
	case MatchStatusPending, MatchStatusAccepted, MatchStatusDeclined:
		return true
	}
	return false
}

// NotifySide selects which side of a match a notified flag refers to.
type NotifySide string

const (
	NotifySideA NotifySide = "a"
	NotifySideB NotifySide = "b"
)

// Match is the persisted record of two profiles matched within a
// cohort. The pair is unordered: UserAID/UserBID are normalized to
// (smaller, larger) on insert, and existence checks probe both
// orderings. At most one of EventID / City / IsGlobal is set and
// carries the cohort scope.
type Match struct {
	ID                 uuid.UUID   `json:"id" db:"id"`
	EventID            *uuid.UUID  `json:"event_id" db:"event_id"`
	City               *string     `json:"city" db:"city"`
	IsGlobal           bool        `json:"is_global" db:"is_global"`
	UserAID            uuid.UUID   `json:"user_a_id" db:"user_a_id"`
	UserBID            uuid.UUID   `json:"user_b_id" db:"user_b_id"`
	CompatibilityScore float64     `json:"compatibility_score" db:"compatibility_score"`
	MatchType          MatchType   `json:"match_type" db:"match_type"`
	Explanation        string      `json:"explanation" db:"explanation"`
	Icebreaker         string      `json:"icebreaker" db:"icebreaker"`
	Status             MatchStatus `json:"status" db:"status"`
	UserANotified      bool        `json:"user_a_notified" db:"user_a_notified"`
	UserBNotified      bool        `json:"user_b_notified" db:"user_b_notified"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
}

// HasUser reports whether userID is one of the two sides.
func (m *Match) HasUser(userID uuid.UUID) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// OtherUserID returns the counterpart of userID in the pair.
func (m *Match) OtherUserID(userID uuid.UUID) (uuid.UUID, bool) {
	if m.UserAID == userID {
		return m.UserBID, true
	}
	if m.UserBID == userID {
		return m.UserAID, true
	}
	return uuid.Nil, false
}

// Side returns which notified flag belongs to userID.
func (m *Match) Side(userID uuid.UUID) (NotifySide, bool) {
	if m.UserAID == userID {
		return NotifySideA, true
	}
	if m.UserBID == userID {
		return NotifySideB, true
	}
	return "", false
}

// MatchResult is the outcome of one compatibility analysis. It is what
// the oracle produces and what the orchestrator thresholds and ranks
// before persisting a Match.
type MatchResult struct {
	CompatibilityScore float64   `json:"compatibility_score"`
	MatchType          MatchType `json:"match_type"`
	Explanation        string    `json:"explanation"`
	Icebreaker         string    `json:"icebreaker"`
}

// FallbackMatchResult is the deterministic stand-in used when the
// analysis times out, fails, or returns something unparseable. The
// mid-range score keeps the candidate in play instead of silently
// dropping it.
func FallbackMatchResult() *MatchResult {
	return &MatchResult{
		CompatibilityScore: 0.5,
		MatchType:          MatchTypeFriendship,
		Explanation:        "You have overlapping interests that could be the start of a good conversation.",
		Icebreaker:         "What brought you here?",
	}
}
