// Package security masks personal identifiers and writes the audit
// trail. Nothing in logs, reports or audit entries may carry a CIN,
// RIB, IBAN or policy number in clear.
package security

import (
	"regexp"
	"strings"

	"github.com/ymansouri/claimsort/internal/model"
)

var (
	spaces    = regexp.MustCompile(`\s+`)
	nonDigits = regexp.MustCompile(`\D`)
)

// MaskValue hides all but the last keepLast characters. Values at or
// below keepLast characters are fully starred so short identifiers do
// not leak whole.
func MaskValue(value string, keepLast int) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if len(v) <= keepLast {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-keepLast) + v[len(v)-keepLast:]
}

// MaskIBAN shows the first four and last four characters, enough to
// recognize the country and account tail without exposing the account.
func MaskIBAN(iban string) string {
	v := strings.ToUpper(spaces.ReplaceAllString(iban, ""))
	if v == "" {
		return ""
	}
	if len(v) <= 10 {
		return MaskValue(v, 4)
	}
	return v[:4] + strings.Repeat("*", len(v)-8) + v[len(v)-4:]
}

// MaskRIB strips non-digits and keeps the last four.
func MaskRIB(rib string) string {
	digits := nonDigits.ReplaceAllString(rib, "")
	if digits == "" {
		return ""
	}
	return MaskValue(digits, 4)
}

// SanitizeFields returns a masked copy of an extracted field map. The
// original map is never modified.
func SanitizeFields(fields map[string]string) map[string]string {
	if fields == nil {
		return nil
	}

	out := make(map[string]string, len(fields))
	for key, value := range fields {
		switch key {
		case model.FieldIBAN:
			out[key] = MaskIBAN(value)
		case model.FieldRIB, model.FieldAccountNumber:
			out[key] = MaskRIB(value)
		case model.FieldIDNumber, model.FieldDeceasedID, model.FieldInsuredID, model.FieldBeneficiaryID:
			out[key] = MaskValue(value, 3)
		case model.FieldPolicyNumber:
			out[key] = MaskValue(value, 4)
		default:
			out[key] = value
		}
	}
	return out
}
