package crosscheck

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ymansouri/claimsort/internal/model"
)

func newTestChecker() *Checker {
	return NewChecker(model.DefaultConfig().Matching)
}

// consistentDossier returns four records that agree on every identity.
func consistentDossier() map[model.Category]model.DocumentRecord {
	return map[model.Category]model.DocumentRecord{
		model.CategoryID: {
			Category: model.CategoryID,
			Fields: map[string]string{
				model.FieldName:      "Sara El Idrissi",
				model.FieldIDNumber:  "AB123456",
				model.FieldBirthDate: "01/03/1990",
			},
			Decision: model.DecisionAccept,
		},
		model.CategoryBank: {
			Category: model.CategoryBank,
			Fields: map[string]string{
				model.FieldAccountHolder: "Sara El Idrissi",
				model.FieldIBAN:          "MA64230270457496521100710060",
			},
			Decision: model.DecisionAccept,
		},
		model.CategoryDeath: {
			Category: model.CategoryDeath,
			Fields: map[string]string{
				model.FieldDeceasedName: "Mohamed El Idrissi",
				model.FieldDeceasedID:   "CD654321",
				model.FieldBirthDate:    "05/05/1950",
				model.FieldDeathDate:    "10/06/2022",
				model.FieldDeathPlace:   "Casablanca",
			},
			Decision: model.DecisionAccept,
		},
		model.CategoryLifeContract: {
			Category: model.CategoryLifeContract,
			Fields: map[string]string{
				model.FieldPolicyNumber:  "POL-2008-4471",
				model.FieldSubscriber:    "Mohamed El Idrissi",
				model.FieldInsured:       "Mohamed El Idrissi",
				model.FieldInsuredID:     "CD654321",
				model.FieldBirthDate:     "05/05/1950",
				model.FieldBeneficiary:   "Sara El Idrissi",
				model.FieldBeneficiaryID: "AB123456",
				model.FieldEffectiveDate: "01/01/2008",
				model.FieldEndDate:       "01/01/2023",
			},
			Decision: model.DecisionAccept,
		},
	}
}

func TestCheck_ConsistentDossierHasNoIssues(t *testing.T) {
	issues := newTestChecker().Check(consistentDossier())
	if len(issues) != 0 {
		t.Errorf("issues = %v, want none", issues)
	}
}

func TestCheck_ShortCircuitsOnMissingCategory(t *testing.T) {
	docs := consistentDossier()
	delete(docs, model.CategoryBank)

	issues := newTestChecker().Check(docs)
	if len(issues) != 1 {
		t.Fatalf("issues = %v, want exactly one", issues)
	}
	if !strings.Contains(string(issues[0]), "insufficient documents") {
		t.Errorf("issue %q does not name the short-circuit", issues[0])
	}
}

func TestCheck_HolderNameMismatch(t *testing.T) {
	docs := consistentDossier()
	bank := docs[model.CategoryBank]
	bank.Fields[model.FieldAccountHolder] = "Karim Benjelloun"
	docs[model.CategoryBank] = bank

	issues := newTestChecker().Check(docs)
	// Holder disagrees with both the ID name and the beneficiary.
	if len(issues) != 2 {
		t.Fatalf("issues = %v, want two", issues)
	}
}

// The fused-particle OCR case: "SARA ELIDRISSI" overlaps "Sara El
// Idrissi" at only 1/3, below the 0.70 beneficiary threshold, so it
// must be flagged even though a human would read it as the same person.
func TestCheck_FusedParticleBeneficiaryIsFlagged(t *testing.T) {
	docs := consistentDossier()
	life := docs[model.CategoryLifeContract]
	life.Fields[model.FieldBeneficiary] = "SARA ELIDRISSI"
	life.Fields[model.FieldBeneficiaryID] = "" // no ID rescue
	docs[model.CategoryLifeContract] = life

	issues := newTestChecker().Check(docs)

	foundBeneficiary := false
	for _, iss := range issues {
		if strings.Contains(string(iss), "beneficiary") && strings.Contains(string(iss), "ID name") {
			foundBeneficiary = true
		}
	}
	if !foundBeneficiary {
		t.Errorf("fused-particle beneficiary not flagged: %v", issues)
	}
}

// An exact ID match stands alone as proof of identity even when the
// names barely overlap.
func TestCheck_ExactIDMatchRescuesBeneficiaryName(t *testing.T) {
	docs := consistentDossier()
	life := docs[model.CategoryLifeContract]
	life.Fields[model.FieldBeneficiary] = "SARA ELIDRISSI" // overlap 1/3
	docs[model.CategoryLifeContract] = life                // beneficiary_id still AB123456

	issues := newTestChecker().Check(docs)
	for _, iss := range issues {
		if strings.Contains(string(iss), "ID name") {
			t.Errorf("beneficiary flagged despite exact ID match: %v", iss)
		}
	}
}

// Only strict-form ID numbers stand alone as proof: a shared
// legacy-format number must not silence the beneficiary name check.
func TestCheck_LegacyIDDoesNotRescueBeneficiaryName(t *testing.T) {
	docs := consistentDossier()
	id := docs[model.CategoryID]
	id.Fields[model.FieldIDNumber] = "1234567" // legacy digits-only
	docs[model.CategoryID] = id
	life := docs[model.CategoryLifeContract]
	life.Fields[model.FieldBeneficiary] = "Fatima Zahra Alami"
	life.Fields[model.FieldBeneficiaryID] = "1234567"
	docs[model.CategoryLifeContract] = life

	issues := newTestChecker().Check(docs)
	found := false
	for _, iss := range issues {
		if strings.Contains(string(iss), "beneficiary") && strings.Contains(string(iss), "ID name") {
			found = true
		}
	}
	if !found {
		t.Errorf("legacy ID accepted as stand-alone proof, name mismatch suppressed: %v", issues)
	}
}

func TestCheck_DeceasedMismatches(t *testing.T) {
	t.Run("name", func(t *testing.T) {
		docs := consistentDossier()
		death := docs[model.CategoryDeath]
		death.Fields[model.FieldDeceasedName] = "Hassan Alaoui"
		death.Fields[model.FieldDeceasedID] = ""
		docs[model.CategoryDeath] = death

		issues := newTestChecker().Check(docs)
		if len(issues) == 0 {
			t.Fatal("deceased/insured name mismatch not flagged")
		}
	})

	t.Run("id number", func(t *testing.T) {
		docs := consistentDossier()
		death := docs[model.CategoryDeath]
		death.Fields[model.FieldDeceasedID] = "ZZ999999"
		docs[model.CategoryDeath] = death

		issues := newTestChecker().Check(docs)
		found := false
		for _, iss := range issues {
			if strings.Contains(string(iss), "ID number") {
				found = true
			}
		}
		if !found {
			t.Errorf("deceased ID mismatch not flagged: %v", issues)
		}
	})

	t.Run("birth date", func(t *testing.T) {
		docs := consistentDossier()
		death := docs[model.CategoryDeath]
		death.Fields[model.FieldBirthDate] = "06/05/1950"
		docs[model.CategoryDeath] = death

		issues := newTestChecker().Check(docs)
		found := false
		for _, iss := range issues {
			if strings.Contains(string(iss), "birth date") {
				found = true
			}
		}
		if !found {
			t.Errorf("birth date mismatch not flagged: %v", issues)
		}
	})

	t.Run("unparseable birth dates report explicitly", func(t *testing.T) {
		docs := consistentDossier()
		death := docs[model.CategoryDeath]
		life := docs[model.CategoryLifeContract]
		death.Fields[model.FieldBirthDate] = "May 1950"
		life.Fields[model.FieldBirthDate] = "June 1950"
		docs[model.CategoryDeath] = death
		docs[model.CategoryLifeContract] = life

		issues := newTestChecker().Check(docs)
		found := false
		for _, iss := range issues {
			if strings.Contains(string(iss), "could not be compared") {
				found = true
			}
		}
		if !found {
			t.Errorf("unparseable date pair not reported: %v", issues)
		}
	})
}

func TestCheck_InsuredBeneficiaryInversion(t *testing.T) {
	docs := consistentDossier()
	life := docs[model.CategoryLifeContract]
	life.Fields[model.FieldBeneficiary] = "Mohamed El Idrissi"
	life.Fields[model.FieldBeneficiaryID] = ""
	docs[model.CategoryLifeContract] = life

	issues := newTestChecker().Check(docs)
	found := false
	for _, iss := range issues {
		if strings.Contains(string(iss), "possible inversion") {
			found = true
		}
	}
	if !found {
		t.Errorf("insured==beneficiary not flagged as inversion: %v", issues)
	}
}

func TestCheck_DeathOutsideContractPeriod(t *testing.T) {
	docs := consistentDossier()
	death := docs[model.CategoryDeath]
	death.Fields[model.FieldDeathDate] = "10/06/2024" // after end 01/01/2023
	docs[model.CategoryDeath] = death

	issues := newTestChecker().Check(docs)
	found := false
	for _, iss := range issues {
		if strings.Contains(string(iss), "outside the contract period") {
			found = true
		}
	}
	if !found {
		t.Errorf("death outside contract period not flagged: %v", issues)
	}
}

// Re-running the checker on the same finalized records must yield
// identical issue lists.
func TestCheck_Idempotent(t *testing.T) {
	docs := consistentDossier()
	death := docs[model.CategoryDeath]
	death.Fields[model.FieldDeceasedName] = "Hassan Alaoui"
	docs[model.CategoryDeath] = death

	c := newTestChecker()
	first := c.Check(docs)
	second := c.Check(docs)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("checker not idempotent:\nfirst:  %v\nsecond: %v", first, second)
	}
}
