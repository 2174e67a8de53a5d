// Package match reconciles identities across documents: normalized
// name comparison by token overlap, exact national-ID comparison, and
// calendar-aware birth-date comparison.
package match

import (
	"regexp"
	"strings"

	"github.com/ymansouri/claimsort/internal/validate"
)

var (
	nonNameChars = regexp.MustCompile(`[^a-z0-9\s]`)
	multiSpace   = regexp.MustCompile(`\s+`)
	nonAlnum     = regexp.MustCompile(`[^A-Z0-9]`)
)

// accentMap folds the accented characters common in French-language
// Moroccan documents.
var accentMap = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"à", "a", "â", "a", "ä", "a",
	"ù", "u", "û", "u", "ü", "u",
	"ô", "o", "ö", "o",
	"î", "i", "ï", "i",
	"ç", "c",
)

// NormalizeName lowercases, folds accents, converts hyphens and
// apostrophes to spaces, strips remaining punctuation and collapses
// whitespace. Particles like "el", "ait", "ben" are ordinary tokens and
// are never stripped: dropping them changes legal identity.
func NormalizeName(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(strings.TrimSpace(s))
	s = accentMap.Replace(s)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "'", " ")
	s = nonNameChars.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NameTokens returns the set of normalized name tokens.
func NameTokens(s string) map[string]struct{} {
	norm := NormalizeName(s)
	if norm == "" {
		return nil
	}
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(norm) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

// NameOverlap scores two names in [0,1] as the token-set overlap
// |a ∩ b| / max(|a|, |b|). Word-set overlap tolerates OCR token
// reordering and dropped middle names while still penalizing unrelated
// names; a particle present on one side only lowers the score, as it
// must. Returns 0 when either side has no tokens.
func NameOverlap(a, b string) float64 {
	ta, tb := NameTokens(a), NameTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	common := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			common++
		}
	}

	denom := len(ta)
	if len(tb) > denom {
		denom = len(tb)
	}
	return float64(common) / float64(denom)
}

// NamesMatch reports whether two names overlap at or above the given
// threshold, along with the score.
func NamesMatch(a, b string, threshold float64) (bool, float64) {
	score := NameOverlap(a, b)
	return score >= threshold, score
}

// NormalizeID uppercases and strips everything but letters and digits.
func NormalizeID(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToUpper(s), "")
}

// IDsMatch compares national-ID numbers exactly on the normalized
// value. An exact ID match is stronger evidence than any fuzzy name
// match and can stand alone as proof of identity. Returns false when
// either side is empty.
func IDsMatch(a, b string) bool {
	na, nb := NormalizeID(a), NormalizeID(b)
	return na != "" && nb != "" && na == nb
}

// DateComparison is the outcome of comparing two date fields.
type DateComparison struct {
	Equal      bool
	BothParsed bool // false when either side failed to parse
}

// DatesMatch compares two dates as calendar dates when both parse. When
// parsing fails on either side it falls back to literal string equality
// and reports BothParsed=false so the caller never mistakes an
// unparseable pair for a verified match.
func DatesMatch(a, b string) DateComparison {
	ta, errA := validate.ParseDate(a)
	tb, errB := validate.ParseDate(b)
	if errA != nil || errB != nil {
		return DateComparison{
			Equal:      strings.TrimSpace(a) != "" && strings.TrimSpace(a) == strings.TrimSpace(b),
			BothParsed: false,
		}
	}
	return DateComparison{Equal: ta.Equal(tb), BothParsed: true}
}
