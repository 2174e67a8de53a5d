package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	cinModern = regexp.MustCompile(`^[A-Z]{1,2}[0-9]{5,8}$`)
	cinLegacy = regexp.MustCompile(`^[0-9]{7,8}[A-Z]{0,2}$`)
	cinStrict = regexp.MustCompile(`^[A-Z]{2}[0-9]{6}$`)
)

// CIN checks a Moroccan national-ID number in loose mode: 1-2 letters
// followed by 5-8 digits, or the legacy 7-8 digits with an optional
// 1-2 letter suffix.
func CIN(raw string) (bool, string) {
	if strings.TrimSpace(raw) == "" {
		return false, "CIN is empty"
	}

	cin := strings.ToUpper(stripSpaces(raw))
	if cinModern.MatchString(cin) {
		return true, "CIN valid"
	}
	if cinLegacy.MatchString(cin) {
		return true, "CIN valid (legacy pattern)"
	}
	return false, fmt.Sprintf("invalid CIN format: %s", cin)
}

// CINStrict checks the strict form used for cross-document
// reconciliation: exactly 2 letters followed by 6 digits, no legacy
// fallback.
func CINStrict(raw string) (bool, string) {
	if strings.TrimSpace(raw) == "" {
		return false, "CIN is empty"
	}

	cin := strings.ToUpper(stripSpaces(raw))
	if cinStrict.MatchString(cin) {
		return true, "CIN valid"
	}
	return false, fmt.Sprintf("CIN does not match the strict 2-letter 6-digit form: %s", cin)
}
