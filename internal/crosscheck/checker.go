// Package crosscheck reconciles identity across the four dossier
// categories once every slot is populated. It collects every mismatch
// rather than stopping at the first: the reviewer needs the full
// picture.
package crosscheck

import (
	"fmt"

	"github.com/ymansouri/claimsort/internal/match"
	"github.com/ymansouri/claimsort/internal/model"
	"github.com/ymansouri/claimsort/internal/validate"
)

// Checker runs the canonical pairwise comparison set.
type Checker struct {
	cfg model.MatchingConfig
}

// NewChecker creates a checker with the given matching thresholds.
func NewChecker(cfg model.MatchingConfig) *Checker {
	return &Checker{cfg: cfg}
}

// Check compares the four finalized document records. It is pure over
// its inputs: re-running it on the same records yields the same issues
// in the same order. When any required category is absent it
// short-circuits with a single "insufficient documents" issue and
// leaves the missing-document rule to the aggregator.
func (c *Checker) Check(docs map[model.Category]model.DocumentRecord) []model.CrossCheckIssue {
	for _, cat := range model.RequiredCategories {
		if _, ok := docs[cat]; !ok {
			return []model.CrossCheckIssue{
				model.CrossCheckIssue(fmt.Sprintf("insufficient documents: %s missing, cross-checks skipped", cat)),
			}
		}
	}

	id := docs[model.CategoryID]
	bank := docs[model.CategoryBank]
	death := docs[model.CategoryDeath]
	life := docs[model.CategoryLifeContract]

	var issues []model.CrossCheckIssue
	add := func(format string, args ...any) {
		issues = append(issues, model.CrossCheckIssue(fmt.Sprintf(format, args...)))
	}

	// ID <-> BANK: the account holder must be the identified person.
	// Holder names come through bank statements noisy, so 0.55.
	idName := id.Fields[model.FieldName]
	holder := bank.Fields[model.FieldAccountHolder]
	if matched, s := match.NamesMatch(holder, idName, c.cfg.HolderNameThreshold); !matched {
		add("account holder %q does not match ID name %q (overlap %.2f)", holder, idName, s)
	}

	// ID <-> LIFE_CONTRACT: the beneficiary must be the identified
	// person. An exact national-ID match stands alone as proof, but
	// only in the strict 2-letter 6-digit form; the name fallback uses
	// the stricter 0.70.
	beneficiary := life.Fields[model.FieldBeneficiary]
	if !strictIDProof(life.Fields[model.FieldBeneficiaryID], id.Fields[model.FieldIDNumber]) {
		if matched, s := match.NamesMatch(beneficiary, idName, c.cfg.BeneficiaryNameThreshold); !matched {
			add("contract beneficiary %q does not match ID name %q (overlap %.2f, no ID number match)", beneficiary, idName, s)
		}
	}

	// BANK <-> LIFE_CONTRACT: the payout account belongs to the
	// beneficiary. Same noisy-holder tolerance as ID<->BANK.
	if matched, s := match.NamesMatch(holder, beneficiary, c.cfg.HolderNameThreshold); !matched {
		add("account holder %q does not match contract beneficiary %q (overlap %.2f)", holder, beneficiary, s)
	}

	issues = append(issues, c.checkDeceasedIdentity(death, life)...)
	issues = append(issues, c.checkInversion(life)...)
	issues = append(issues, c.checkDeathWithinContract(death, life)...)

	return issues
}

// strictIDProof reports whether two national-ID numbers can stand
// alone as proof of identity: both must pass the strict reconciliation
// form and compare equal. A legacy-format number never silences a name
// mismatch on its own.
func strictIDProof(a, b string) bool {
	if ok, _ := validate.CINStrict(a); !ok {
		return false
	}
	if ok, _ := validate.CINStrict(b); !ok {
		return false
	}
	return match.IDsMatch(a, b)
}

// checkDeceasedIdentity compares the death certificate's deceased with
// the contract's insured: name at 0.70, exact ID equality when both
// sides carry one, calendar date equality when both birth dates parse.
func (c *Checker) checkDeceasedIdentity(death, life model.DocumentRecord) []model.CrossCheckIssue {
	var issues []model.CrossCheckIssue
	add := func(format string, args ...any) {
		issues = append(issues, model.CrossCheckIssue(fmt.Sprintf(format, args...)))
	}

	deceased := death.Fields[model.FieldDeceasedName]
	insured := life.Fields[model.FieldInsured]
	if insured == "" {
		// Older contracts name only the subscriber.
		insured = life.Fields[model.FieldSubscriber]
	}

	if matched, s := match.NamesMatch(deceased, insured, c.cfg.BeneficiaryNameThreshold); !matched {
		add("deceased %q does not match insured %q (overlap %.2f)", deceased, insured, s)
	}

	deceasedID := death.Fields[model.FieldDeceasedID]
	insuredID := life.Fields[model.FieldInsuredID]
	if deceasedID != "" && insuredID != "" && !match.IDsMatch(deceasedID, insuredID) {
		add("deceased ID number does not match insured ID number")
	}

	deathBirth := death.Fields[model.FieldBirthDate]
	insuredBirth := life.Fields[model.FieldBirthDate]
	if deathBirth != "" && insuredBirth != "" {
		cmp := match.DatesMatch(deathBirth, insuredBirth)
		switch {
		case cmp.BothParsed && !cmp.Equal:
			add("deceased birth date %s does not match insured birth date %s", deathBirth, insuredBirth)
		case !cmp.BothParsed && !cmp.Equal:
			add("birth dates %q and %q could not be compared as dates and differ literally", deathBirth, insuredBirth)
		}
	}

	return issues
}

// checkInversion flags a likely data-entry inversion: insured and
// beneficiary are distinct parties, so near-identity (> 0.85) between
// them is suspicious.
func (c *Checker) checkInversion(life model.DocumentRecord) []model.CrossCheckIssue {
	insured := life.Fields[model.FieldInsured]
	beneficiary := life.Fields[model.FieldBeneficiary]
	if insured == "" || beneficiary == "" {
		return nil
	}

	if s := match.NameOverlap(insured, beneficiary); s > c.cfg.InversionThreshold {
		return []model.CrossCheckIssue{
			model.CrossCheckIssue(fmt.Sprintf(
				"insured %q and beneficiary %q are nearly identical (overlap %.2f): possible inversion",
				insured, beneficiary, s)),
		}
	}
	return nil
}

// checkDeathWithinContract requires the death date to fall inside the
// contract period when all three dates parse.
func (c *Checker) checkDeathWithinContract(death, life model.DocumentRecord) []model.CrossCheckIssue {
	deathDate, err := validate.ParseDate(death.Fields[model.FieldDeathDate])
	if err != nil {
		return nil
	}
	start, err := validate.ParseDate(life.Fields[model.FieldEffectiveDate])
	if err != nil {
		return nil
	}
	end, err := validate.ParseDate(life.Fields[model.FieldEndDate])
	if err != nil {
		return nil
	}

	if deathDate.Before(start) || deathDate.After(end) {
		return []model.CrossCheckIssue{
			model.CrossCheckIssue(fmt.Sprintf(
				"death date %s falls outside the contract period %s to %s",
				deathDate.Format(validate.CanonicalDateLayout),
				start.Format(validate.CanonicalDateLayout),
				end.Format(validate.CanonicalDateLayout))),
		}
	}
	return nil
}
