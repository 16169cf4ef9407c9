package matching

import (
	"strings"
	"unicode"

	"github.com/sphere-team/sphere-backend/internal/domain"
)

// Heuristic scoring weights. The value-exchange signal dominates:
// one person seeking what the other offers is the strongest local
// predictor of a good match.
const (
	valueExchangeBonus = 0.4
	completenessBonus  = 0.1
	interestWeight     = 0.1
	interestCap        = 0.3
	goalWeight         = 0.1
	goalCap            = 0.2
	cityBonus          = 0.1

	minPrefixTokenLen = 4
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "for": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "with": {}, "my": {},
	"i": {}, "im": {}, "am": {}, "is": {}, "are": {}, "me": {},
	"looking": {}, "help": {}, "someone": {}, "people": {},
}

// HeuristicScore is the fast, deterministic pre-filter score over two
// profiles' explicit fields, in [0, 1]. It gates candidates before the
// expensive AI analysis and doubles as the retrieval fallback signal
// when a profile has no embeddings.
func HeuristicScore(a, b *domain.Profile) float64 {
	score := 0.0

	seekingA := tokenize(deref(a.LookingFor))
	offersA := tokenize(deref(a.CanHelpWith))
	seekingB := tokenize(deref(b.LookingFor))
	offersB := tokenize(deref(b.CanHelpWith))

	if tokensIntersect(seekingA, offersB) || tokensIntersect(seekingB, offersA) {
		score += valueExchangeBonus
	}

	// Both sides filled in their seeking/offering statements at all.
	if (len(seekingA) > 0 || len(offersA) > 0) && (len(seekingB) > 0 || len(offersB) > 0) {
		score += completenessBonus
	}

	score += min(float64(countShared(a.Interests, b.Interests))*interestWeight, interestCap)
	score += min(float64(countShared(a.Goals, b.Goals))*goalWeight, goalCap)

	if a.City != nil && b.City != nil && *a.City != "" && strings.EqualFold(*a.City, *b.City) {
		score += cityBonus
	}

	return min(score, 1.0)
}

// tokenize lowercases the text and splits it into word tokens, dropping
// stopwords.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if _, skip := stopwords[f]; !skip {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// tokensIntersect reports whether any token from one set matches a
// token from the other. Tokens match when equal, or when one is a
// prefix of the other and the shorter is at least four runes: this
// catches design/designer and mentor/mentorship without a stemmer.
func tokensIntersect(a, b []string) bool {
	for _, ta := range a {
		for _, tb := range b {
			if tokensMatch(ta, tb) {
				return true
			}
		}
	}
	return false
}

func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len([]rune(shorter)) < minPrefixTokenLen {
		return false
	}
	return strings.HasPrefix(longer, shorter)
}

func countShared(a, b []string) int {
	seen := make(map[string]struct{}, len(a))
	for _, tag := range a {
		seen[strings.ToLower(tag)] = struct{}{}
	}
	shared := 0
	counted := make(map[string]struct{}, len(b))
	for _, tag := range b {
		key := strings.ToLower(tag)
		if _, dup := counted[key]; dup {
			continue
		}
		counted[key] = struct{}{}
		if _, ok := seen[key]; ok {
			shared++
		}
	}
	return shared
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
