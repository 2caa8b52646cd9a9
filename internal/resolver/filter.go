package resolver

import (
	"strings"
	"unicode"

	"github.com/hmercer/tapread/internal/model"
)

// Tokens longer than this are treated as extraction noise, not words.
const maxTokenLength = 24

// IsLookupCandidate reports whether a token is worth sending to the
// dictionary provider. Pure and total: it never panics and always returns.
// Both the resolver's geometric fallback and the interaction coordinator's
// pre-lookup gate call it, because the fallback can surface a token the
// geometry walk would never have selected.
func IsLookupCandidate(token string, kind model.ElementKind) bool {
	if !kind.IsLookupTarget() {
		return false
	}

	cleaned := CleanToken(token)
	if len([]rune(cleaned)) <= 1 || len([]rune(cleaned)) > maxTokenLength {
		return false
	}

	hasLetter := false
	allDigits := true
	for _, r := range cleaned {
		if unicode.IsLetter(r) {
			hasLetter = true
			allDigits = false
			// Only ASCII Latin letters are lookup-worthy; anything in the
			// broader script ranges belongs to a different dictionary.
			if r > unicode.MaxASCII {
				return false
			}
		} else if unicode.IsDigit(r) {
			if r > unicode.MaxASCII {
				return false
			}
		} else {
			allDigits = false
		}
		// Broad non-Latin-script reject (Greek and beyond: Cyrillic,
		// Arabic, CJK, ...).
		if r >= 0x0370 {
			return false
		}
	}

	if !hasLetter || allDigits {
		return false
	}
	return true
}

// IsSentenceWorthTranslating gates long-press translation requests: the
// element must contain at least one lookup-worthy token.
func IsSentenceWorthTranslating(text string, kind model.ElementKind) bool {
	for _, tok := range strings.Fields(text) {
		if IsLookupCandidate(tok, kind) {
			return true
		}
	}
	return false
}
