package validate

import (
	"fmt"
	"strings"
)

// ResolvedIBAN is the outcome of reconciling an OCR-read IBAN with the
// RIB-derived reconstruction.
type ResolvedIBAN struct {
	IBAN        string // canonical value, empty when nothing usable
	FromRIB     bool   // true when the canonical value was derived from RIB digits
	Discrepancy string // non-fatal note when the two sources disagree
}

// ResolveIBAN picks the canonical IBAN for a bank document. The
// OCR-read value is trusted only if it parses to exactly 24 significant
// digits after the MA prefix and passes the checksum; otherwise the
// IBAN is rebuilt from the RIB digits. When both are usable but differ,
// preferExtracted selects the winner and a discrepancy is recorded
// either way.
func ResolveIBAN(extracted, ribDigits string, preferExtracted bool) ResolvedIBAN {
	var trusted string
	if extracted != "" {
		if _, ok := RIBDigitsFromIBAN(extracted); ok {
			trusted = strings.ToUpper(stripSpaces(extracted))
		}
	}

	var derived string
	if ribDigits != "" {
		if ok, _ := RIB(ribDigits); ok {
			if iban, err := IBANFromRIBDigits(ribDigits); err == nil {
				derived = iban
			}
		}
	}

	switch {
	case trusted != "" && derived != "":
		if trusted == derived {
			return ResolvedIBAN{IBAN: derived, FromRIB: true}
		}
		res := ResolvedIBAN{
			Discrepancy: fmt.Sprintf("extracted IBAN %s disagrees with RIB-derived %s", trusted, derived),
		}
		if preferExtracted {
			res.IBAN = trusted
		} else {
			res.IBAN = derived
			res.FromRIB = true
		}
		return res
	case trusted != "":
		return ResolvedIBAN{IBAN: trusted}
	case derived != "":
		return ResolvedIBAN{IBAN: derived, FromRIB: true}
	default:
		return ResolvedIBAN{}
	}
}
