// Package score turns one extracted document into a finalized
// DocumentRecord: required-field checks, format validators, temporal
// business rules, technical fraud signals, and the two-outcome
// decision.
package score

import (
	"fmt"
	"strings"
	"time"

	"github.com/ymansouri/claimsort/internal/model"
	"github.com/ymansouri/claimsort/internal/validate"
)

// Scorer applies the canonical scoring table to extracted documents:
// accept threshold 85, missing required field -10 (capped at -40 in
// aggregate), failed format validator -5, violated temporal rule -5.
type Scorer struct {
	scoring    model.ScoringConfig
	validation model.ValidationConfig

	// now is injectable so temporal rules are testable
	now func() time.Time
}

// NewScorer creates a scorer from configuration.
func NewScorer(cfg *model.Config) *Scorer {
	return &Scorer{
		scoring:    cfg.Scoring,
		validation: cfg.Validation,
		now:        time.Now,
	}
}

// WithNow fixes the scorer's clock. Tests use this to pin "today".
func (s *Scorer) WithNow(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// requiredFields lists the presence checks per category. BANK's
// RIB-or-IBAN alternative is handled separately in checkRequiredFields.
var requiredFields = map[model.Category][]string{
	model.CategoryID: {
		model.FieldName, model.FieldIDNumber, model.FieldBirthDate, model.FieldExpiryDate,
	},
	model.CategoryBank: {
		model.FieldAccountHolder,
	},
	model.CategoryDeath: {
		model.FieldDeceasedName, model.FieldDeathDate, model.FieldDeathPlace,
	},
	model.CategoryLifeContract: {
		model.FieldPolicyNumber, model.FieldSubscriber, model.FieldBeneficiary,
		model.FieldEffectiveDate, model.FieldCapital,
	},
}

// Score validates and scores one document. The returned record is
// final: callers must not mutate it further.
func (s *Scorer) Score(doc model.ExtractedDocument) model.DocumentRecord {
	rec := model.DocumentRecord{
		Category: doc.Category,
		FileName: doc.FileName,
		Fields:   copyFields(doc.Fields),
		Score:    100,
	}

	s.checkRequiredFields(doc, &rec)

	switch doc.Category {
	case model.CategoryID:
		s.scoreID(doc, &rec)
	case model.CategoryBank:
		s.scoreBank(doc, &rec)
	case model.CategoryDeath:
		s.scoreDeath(doc, &rec)
	case model.CategoryLifeContract:
		s.scoreLifeContract(doc, &rec)
	}

	s.foldTechnicalSignals(doc.Signals, &rec)

	if rec.Score < 0 {
		rec.Score = 0
	}
	if rec.Score > 100 {
		rec.Score = 100
	}

	rec.Decision = Decide(DecisionInput{
		Score:        rec.Score,
		Threshold:    s.scoring.AcceptThreshold,
		Issues:       len(rec.Issues),
		FraudSignals: len(rec.FraudSignals),
	})
	if rec.Decision == model.DecisionReview {
		rec.Reason = reviewReason(rec)
	}
	return rec
}

// FailureRecord materializes a REVIEW record when the upstream
// extraction collaborator failed. The pipeline never propagates that
// failure: every document always gets a decision.
func FailureRecord(category model.Category, fileName string, err error) model.DocumentRecord {
	return model.DocumentRecord{
		Category: category,
		FileName: fileName,
		Score:    0,
		Decision: model.DecisionReview,
		Reason:   fmt.Sprintf("extraction failed: %v", err),
	}
}

// checkRequiredFields deducts MissingFieldPenalty per absent required
// field, capped at MissingFieldCap in aggregate.
func (s *Scorer) checkRequiredFields(doc model.ExtractedDocument, rec *model.DocumentRecord) {
	deducted := 0
	deduct := func() {
		if deducted < s.scoring.MissingFieldCap {
			rec.Score -= s.scoring.MissingFieldPenalty
			deducted += s.scoring.MissingFieldPenalty
		}
	}

	for _, field := range requiredFields[doc.Category] {
		if doc.Field(field) != "" {
			continue
		}
		rec.Issues = append(rec.Issues, model.ValidationIssue{
			Field:   field,
			Message: "required field is missing",
		})
		deduct()
	}

	// BANK pays with either instrument; absence of both is one missing
	// required field, not two.
	if doc.Category == model.CategoryBank &&
		doc.Field(model.FieldRIB) == "" &&
		doc.Field(model.FieldIBAN) == "" &&
		doc.Field(model.FieldAccountNumber) == "" {
		rec.Issues = append(rec.Issues, model.ValidationIssue{
			Field:   model.FieldRIB,
			Message: "RIB or IBAN required for payment",
		})
		deduct()
	}
}

func (s *Scorer) scoreID(doc model.ExtractedDocument, rec *model.DocumentRecord) {
	if cin := doc.Field(model.FieldIDNumber); cin != "" {
		ok, msg := validate.CIN(cin)
		s.formatCheck(rec, model.FieldIDNumber, ok, msg)
	}
	if birth := doc.Field(model.FieldBirthDate); birth != "" {
		s.dateCheck(rec, model.FieldBirthDate, birth)
	}

	// Identity document must still be valid: expiry strictly after today.
	if expiry := doc.Field(model.FieldExpiryDate); expiry != "" {
		if !s.dateCheck(rec, model.FieldExpiryDate, expiry) {
			return
		}
		t, _ := validate.ParseDate(expiry)
		if !t.After(s.today()) {
			s.temporalIssue(rec, model.FieldExpiryDate,
				fmt.Sprintf("identity document expired on %s", t.Format(validate.CanonicalDateLayout)))
		}
	}
}

func (s *Scorer) scoreBank(doc model.ExtractedDocument, rec *model.DocumentRecord) {
	ribRaw := doc.Field(model.FieldRIB)
	ibanRaw := doc.Field(model.FieldIBAN)

	// RIB digits can also arrive as separate components.
	if ribRaw == "" && doc.Field(model.FieldAccountNumber) != "" {
		built, err := validate.BuildIBANFromRIB(
			doc.Field(model.FieldBankCode),
			doc.Field(model.FieldCityCode),
			doc.Field(model.FieldAccountNumber),
			doc.Field(model.FieldRIBKey),
		)
		if err != nil {
			rec.Issues = append(rec.Issues, model.ValidationIssue{
				Field:   model.FieldAccountNumber,
				Message: fmt.Sprintf("cannot assemble RIB from components: %v", err),
			})
			rec.Score -= s.scoring.FormatFailurePenalty
		} else if digits, ok := validate.RIBDigitsFromIBAN(built); ok {
			ribRaw = digits
		}
	}

	if ribRaw != "" {
		ok, msg := validate.RIB(ribRaw)
		s.formatCheck(rec, model.FieldRIB, ok, msg)
	}
	if ibanRaw != "" {
		ok, msg := validate.IBAN(ibanRaw)
		s.formatCheck(rec, model.FieldIBAN, ok, msg)
	}

	res := validate.ResolveIBAN(ibanRaw, ribRaw, s.validation.PreferExtractedIBAN)
	if res.Discrepancy != "" {
		rec.Issues = append(rec.Issues, model.ValidationIssue{
			Field:   model.FieldIBAN,
			Message: res.Discrepancy,
		})
		rec.Score -= s.scoring.FormatFailurePenalty
	}
	if res.IBAN != "" {
		// Canonical value for downstream consumers (cross-checks, audit).
		rec.Fields[model.FieldIBAN] = res.IBAN
	}
}

func (s *Scorer) scoreDeath(doc model.ExtractedDocument, rec *model.DocumentRecord) {
	if id := doc.Field(model.FieldDeceasedID); id != "" {
		ok, msg := validate.CIN(id)
		s.formatCheck(rec, model.FieldDeceasedID, ok, msg)
	}

	if death := doc.Field(model.FieldDeathDate); death != "" {
		if !s.dateCheck(rec, model.FieldDeathDate, death) {
			return
		}
		t, _ := validate.ParseDate(death)
		if t.After(s.today()) {
			s.temporalIssue(rec, model.FieldDeathDate,
				fmt.Sprintf("death date %s is in the future", t.Format(validate.CanonicalDateLayout)))
		}
	}
}

func (s *Scorer) scoreLifeContract(doc model.ExtractedDocument, rec *model.DocumentRecord) {
	if id := doc.Field(model.FieldBeneficiaryID); id != "" {
		ok, msg := validate.CIN(id)
		s.formatCheck(rec, model.FieldBeneficiaryID, ok, msg)
	}

	effective := doc.Field(model.FieldEffectiveDate)
	end := doc.Field(model.FieldEndDate)

	if effective != "" {
		s.dateCheck(rec, model.FieldEffectiveDate, effective)
	}
	if end != "" {
		s.dateCheck(rec, model.FieldEndDate, end)
	}
	if effective != "" && end != "" {
		if ok, msg := validate.DatesCoherent(effective, end); !ok {
			rec.Issues = append(rec.Issues, model.ValidationIssue{
				Field:   model.FieldEndDate,
				Message: msg,
			})
			rec.Score -= s.scoring.FormatFailurePenalty
		}
	}

	// A succession claim pays out on a matured contract: the end date
	// must lie strictly before today.
	if end != "" {
		if t, err := validate.ParseDate(end); err == nil && !t.Before(s.today()) {
			s.temporalIssue(rec, model.FieldEndDate,
				fmt.Sprintf("contract end date %s is not in the past", t.Format(validate.CanonicalDateLayout)))
		}
	}
}

// foldTechnicalSignals converts collaborator integrity signals into
// fraud signals. A tampering signal forces REVIEW via the decision
// policy regardless of score.
func (s *Scorer) foldTechnicalSignals(sig model.TechnicalSignals, rec *model.DocumentRecord) {
	if sig.PotentialTampering {
		msg := "potential tampering detected"
		if sig.EditorDetected != "" {
			msg = fmt.Sprintf("potential tampering detected (editor: %s)", sig.EditorDetected)
		}
		rec.FraudSignals = append(rec.FraudSignals, msg)
	}
	if sig.FontCount > s.scoring.HighFontCountCutoff {
		rec.FraudSignals = append(rec.FraudSignals,
			fmt.Sprintf("high font variety: %d fonts", sig.FontCount))
	}
}

// formatCheck records a validator failure with the standard penalty.
func (s *Scorer) formatCheck(rec *model.DocumentRecord, field string, ok bool, msg string) bool {
	if ok {
		return true
	}
	rec.Issues = append(rec.Issues, model.ValidationIssue{Field: field, Message: msg})
	rec.Score -= s.scoring.FormatFailurePenalty
	return false
}

func (s *Scorer) dateCheck(rec *model.DocumentRecord, field, raw string) bool {
	ok, msg := validate.Date(raw)
	if !ok {
		rec.Issues = append(rec.Issues, model.ValidationIssue{Field: field, Message: msg})
		rec.Score -= s.scoring.FormatFailurePenalty
	}
	return ok
}

func (s *Scorer) temporalIssue(rec *model.DocumentRecord, field, msg string) {
	rec.Issues = append(rec.Issues, model.ValidationIssue{Field: field, Message: msg})
	rec.Score -= s.scoring.TemporalRulePenalty
}

// today truncates the injectable clock to a calendar date.
func (s *Scorer) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func reviewReason(rec model.DocumentRecord) string {
	parts := append([]string{}, rec.FraudSignals...)
	for _, iss := range rec.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", iss.Field, iss.Message))
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("score %d below accept threshold", rec.Score))
	}
	return strings.Join(parts, "; ")
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = strings.TrimSpace(v)
	}
	return out
}
