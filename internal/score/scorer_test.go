package score

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ymansouri/claimsort/internal/model"
)

// fixedNow pins "today" to 15/01/2025 for temporal rules.
func fixedNow() time.Time {
	return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
}

func newTestScorer() *Scorer {
	return NewScorer(model.DefaultConfig()).WithNow(fixedNow)
}

func validIDDoc() model.ExtractedDocument {
	return model.ExtractedDocument{
		Category: model.CategoryID,
		Fields: map[string]string{
			model.FieldName:       "Sara El Idrissi",
			model.FieldIDNumber:   "AB123456",
			model.FieldBirthDate:  "01/03/1990",
			model.FieldExpiryDate: "01/01/2030",
		},
	}
}

func validBankDoc() model.ExtractedDocument {
	return model.ExtractedDocument{
		Category: model.CategoryBank,
		Fields: map[string]string{
			model.FieldAccountHolder: "Sara El Idrissi",
			model.FieldRIB:           "230270457496521100710060",
		},
	}
}

func validDeathDoc() model.ExtractedDocument {
	return model.ExtractedDocument{
		Category: model.CategoryDeath,
		Fields: map[string]string{
			model.FieldDeceasedName: "Mohamed El Idrissi",
			model.FieldDeathDate:    "10/06/2024",
			model.FieldDeathPlace:   "Casablanca",
		},
	}
}

func validLifeContractDoc() model.ExtractedDocument {
	return model.ExtractedDocument{
		Category: model.CategoryLifeContract,
		Fields: map[string]string{
			model.FieldPolicyNumber:  "POL-2008-4471",
			model.FieldSubscriber:    "Mohamed El Idrissi",
			model.FieldInsured:       "Mohamed El Idrissi",
			model.FieldBeneficiary:   "Sara El Idrissi",
			model.FieldEffectiveDate: "01/01/2008",
			model.FieldEndDate:       "01/01/2023",
			model.FieldCapital:       "450000 MAD",
		},
	}
}

func TestScore_AcceptsCleanDocuments(t *testing.T) {
	s := newTestScorer()

	docs := map[string]model.ExtractedDocument{
		"id":            validIDDoc(),
		"bank":          validBankDoc(),
		"death":         validDeathDoc(),
		"life contract": validLifeContractDoc(),
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			rec := s.Score(doc)
			if rec.Decision != model.DecisionAccept {
				t.Errorf("decision = %s (score %d, issues %v, fraud %v), want ACCEPT",
					rec.Decision, rec.Score, rec.Issues, rec.FraudSignals)
			}
			if rec.Score != 100 {
				t.Errorf("score = %d, want 100", rec.Score)
			}
		})
	}
}

func TestScore_MissingRequiredFields(t *testing.T) {
	s := newTestScorer()

	doc := validIDDoc()
	delete(doc.Fields, model.FieldIDNumber)
	delete(doc.Fields, model.FieldExpiryDate)

	rec := s.Score(doc)
	if rec.Decision != model.DecisionReview {
		t.Fatalf("decision = %s, want REVIEW", rec.Decision)
	}
	if len(rec.Issues) != 2 {
		t.Errorf("issues = %d, want 2", len(rec.Issues))
	}
	if rec.Score != 80 {
		t.Errorf("score = %d, want 80 (two missing fields at -10)", rec.Score)
	}
	if rec.Reason == "" {
		t.Error("REVIEW without a reason")
	}
}

func TestScore_MissingFieldCapLimitsDeduction(t *testing.T) {
	s := newTestScorer()

	// All five LIFE_CONTRACT required fields missing: five issues but
	// the aggregate deduction is capped at 40.
	rec := s.Score(model.ExtractedDocument{
		Category: model.CategoryLifeContract,
		Fields:   map[string]string{},
	})

	if len(rec.Issues) != 5 {
		t.Errorf("issues = %d, want 5", len(rec.Issues))
	}
	if rec.Score != 60 {
		t.Errorf("score = %d, want 60 (cap at -40)", rec.Score)
	}
	if rec.Decision != model.DecisionReview {
		t.Errorf("decision = %s, want REVIEW", rec.Decision)
	}
}

func TestScore_InvalidFormats(t *testing.T) {
	s := newTestScorer()

	doc := validBankDoc()
	doc.Fields[model.FieldRIB] = "230270457496521100710061" // wrong key

	rec := s.Score(doc)
	if rec.Decision != model.DecisionReview {
		t.Fatalf("decision = %s, want REVIEW", rec.Decision)
	}
	found := false
	for _, iss := range rec.Issues {
		if iss.Field == model.FieldRIB {
			found = true
		}
	}
	if !found {
		t.Errorf("no RIB issue recorded: %v", rec.Issues)
	}
}

func TestScore_BankCanonicalIBANFromRIB(t *testing.T) {
	s := newTestScorer()

	rec := s.Score(validBankDoc())
	if got := rec.Fields[model.FieldIBAN]; got != "MA64230270457496521100710060" {
		t.Errorf("canonical IBAN = %q, want MA64230270457496521100710060", got)
	}
}

func TestScore_BankRIBFromComponents(t *testing.T) {
	s := newTestScorer()

	rec := s.Score(model.ExtractedDocument{
		Category: model.CategoryBank,
		Fields: map[string]string{
			model.FieldAccountHolder: "Sara El Idrissi",
			model.FieldBankCode:      "230",
			model.FieldCityCode:      "270",
			model.FieldAccountNumber: "4574965211007100",
			model.FieldRIBKey:        "60",
		},
	})

	if rec.Decision != model.DecisionAccept {
		t.Fatalf("decision = %s (issues %v), want ACCEPT", rec.Decision, rec.Issues)
	}
	if got := rec.Fields[model.FieldIBAN]; got != "MA64230270457496521100710060" {
		t.Errorf("canonical IBAN = %q", got)
	}
}

func TestScore_BankIBANDiscrepancyIsFlagged(t *testing.T) {
	s := newTestScorer()

	doc := validBankDoc()
	// Checksum-valid but different account.
	doc.Fields[model.FieldIBAN] = "MA26190780001234567890123474"

	rec := s.Score(doc)
	if rec.Decision != model.DecisionReview {
		t.Fatalf("decision = %s, want REVIEW on discrepancy", rec.Decision)
	}
	// Default policy: RIB-derived reconstruction wins.
	if got := rec.Fields[model.FieldIBAN]; got != "MA64230270457496521100710060" {
		t.Errorf("canonical IBAN = %q, want RIB-derived", got)
	}
}

func TestScore_TemporalRules(t *testing.T) {
	s := newTestScorer()

	t.Run("expired identity document", func(t *testing.T) {
		doc := validIDDoc()
		doc.Fields[model.FieldExpiryDate] = "01/01/2020"
		rec := s.Score(doc)
		if rec.Decision != model.DecisionReview {
			t.Errorf("decision = %s, want REVIEW", rec.Decision)
		}
	})

	t.Run("expiry today is not strictly after today", func(t *testing.T) {
		doc := validIDDoc()
		doc.Fields[model.FieldExpiryDate] = "15/01/2025"
		rec := s.Score(doc)
		if rec.Decision != model.DecisionReview {
			t.Errorf("decision = %s, want REVIEW", rec.Decision)
		}
	})

	t.Run("future death date", func(t *testing.T) {
		doc := validDeathDoc()
		doc.Fields[model.FieldDeathDate] = "01/01/2030"
		rec := s.Score(doc)
		if rec.Decision != model.DecisionReview {
			t.Errorf("decision = %s, want REVIEW for future death date", rec.Decision)
		}
	})

	t.Run("contract not yet matured", func(t *testing.T) {
		doc := validLifeContractDoc()
		doc.Fields[model.FieldEndDate] = "01/01/2030"
		rec := s.Score(doc)
		if rec.Decision != model.DecisionReview {
			t.Errorf("decision = %s, want REVIEW", rec.Decision)
		}
	})
}

func TestScore_TamperingForcesReview(t *testing.T) {
	s := newTestScorer()

	doc := validIDDoc()
	doc.Signals = model.TechnicalSignals{
		PotentialTampering: true,
		EditorDetected:     "photoshop",
	}

	rec := s.Score(doc)
	if rec.Decision != model.DecisionReview {
		t.Fatalf("decision = %s, want REVIEW despite perfect fields", rec.Decision)
	}
	if rec.Score != 100 {
		t.Errorf("score = %d; tampering overrides the threshold, it does not deduct", rec.Score)
	}
	if !strings.Contains(rec.Reason, "photoshop") {
		t.Errorf("reason %q does not name the editor", rec.Reason)
	}
}

func TestScore_HighFontCountSignal(t *testing.T) {
	s := newTestScorer()

	doc := validIDDoc()
	doc.Signals = model.TechnicalSignals{FontCount: 12}

	rec := s.Score(doc)
	if rec.Decision != model.DecisionReview {
		t.Errorf("decision = %s, want REVIEW", rec.Decision)
	}
	if len(rec.FraudSignals) != 1 {
		t.Errorf("fraud signals = %v, want one font signal", rec.FraudSignals)
	}
}

// Adding an issue or a fraud signal can only move a document toward
// REVIEW, never back to ACCEPT.
func TestDecide_Monotone(t *testing.T) {
	base := DecisionInput{Score: 100, Threshold: 85}
	if Decide(base) != model.DecisionAccept {
		t.Fatal("clean input must ACCEPT")
	}

	worse := []DecisionInput{
		{Score: 100, Threshold: 85, Issues: 1},
		{Score: 100, Threshold: 85, FraudSignals: 1},
		{Score: 84, Threshold: 85},
		{Score: 100, Threshold: 85, MissingDocs: 1},
		{Score: 100, Threshold: 85, ReviewDocs: 1},
		{Score: 0, Threshold: 85, Issues: 3, FraudSignals: 2},
	}
	for i, in := range worse {
		if Decide(in) != model.DecisionReview {
			t.Errorf("case %d: adverse input %+v decided ACCEPT", i, in)
		}
	}
}

func TestFailureRecord(t *testing.T) {
	rec := FailureRecord(model.CategoryBank, "rib.pdf", errors.New("collaborator timeout"))

	if rec.Decision != model.DecisionReview {
		t.Errorf("decision = %s, want REVIEW", rec.Decision)
	}
	if rec.Score != 0 {
		t.Errorf("score = %d, want 0", rec.Score)
	}
	if !strings.Contains(rec.Reason, "collaborator timeout") {
		t.Errorf("reason %q does not name the failure", rec.Reason)
	}
}
