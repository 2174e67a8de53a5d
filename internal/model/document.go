package model

import "strings"

// Category identifies which of the dossier slots a document fills
type Category string

const (
	CategoryID           Category = "ID"            // National identity card or passport
	CategoryBank         Category = "BANK"          // RIB / IBAN statement
	CategoryDeath        Category = "DEATH"         // Death certificate
	CategoryLifeContract Category = "LIFE_CONTRACT" // Life-savings contract
	CategoryUnknown      Category = "UNKNOWN"       // Unclassified; treated as missing for aggregation
)

// RequiredCategories are the four slots a dossier must fill before
// cross-document checks can run.
var RequiredCategories = []Category{CategoryID, CategoryBank, CategoryDeath, CategoryLifeContract}

// Decision is the two-outcome triage result. There is deliberately no
// REJECT value: the engine only sorts between auto-approval and human
// review.
type Decision string

const (
	DecisionAccept Decision = "ACCEPT"
	DecisionReview Decision = "REVIEW"
)

// Canonical extracted-field names, shared between the extraction
// collaborator and the engine.
const (
	FieldName          = "name"
	FieldBirthDate     = "birth_date"
	FieldIDNumber      = "id_number"
	FieldExpiryDate    = "expiry_date"
	FieldAccountHolder = "account_holder"
	FieldRIB           = "rib"
	FieldIBAN          = "iban"
	FieldBankCode      = "bank_code"
	FieldCityCode      = "city_code"
	FieldAccountNumber = "account_number"
	FieldRIBKey        = "rib_key"
	FieldBIC           = "bic"
	FieldDeceasedName  = "deceased_name"
	FieldDeceasedID    = "deceased_id"
	FieldDeathDate     = "death_date"
	FieldDeathPlace    = "death_place"
	FieldActNumber     = "act_number"
	FieldPolicyNumber  = "policy_number"
	FieldSubscriber    = "subscriber_name"
	FieldInsured       = "insured_name"
	FieldInsuredID     = "insured_id"
	FieldBeneficiary   = "beneficiary_name"
	FieldBeneficiaryID = "beneficiary_id"
	FieldEffectiveDate = "effective_date"
	FieldEndDate       = "end_date"
	FieldCapital       = "capital"
)

// TechnicalSignals is the integrity report produced by the external
// file-analysis collaborator. Signals only, never a verdict.
type TechnicalSignals struct {
	PotentialTampering bool   `json:"potential_tampering"`
	EditorDetected     string `json:"editor_detected,omitempty"`
	FontCount          int    `json:"font_count,omitempty"`
}

// ExtractedDocument is the engine's input for one document: raw
// key/value fields from the extraction collaborator plus technical
// signals. Values may be empty, malformed, or attacker-influenced and
// are validated defensively downstream.
type ExtractedDocument struct {
	Category Category          `json:"category"`
	Fields   map[string]string `json:"fields"`
	Signals  TechnicalSignals  `json:"signals"`
	FileName string            `json:"file_name,omitempty"`
	Content  []byte            `json:"-"` // raw file bytes, for fingerprinting only
}

// Field returns the trimmed value for a field name, empty if absent.
func (d ExtractedDocument) Field(name string) string {
	if d.Fields == nil {
		return ""
	}
	return strings.TrimSpace(d.Fields[name])
}

// ValidationIssue is one human-readable defect found in one field.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DocumentRecord is the scored outcome for a single document. It is
// created once fields arrive, mutated only by the scorer, and treated
// as immutable once Decision is set.
type DocumentRecord struct {
	Category     Category          `json:"category"`
	FileName     string            `json:"file_name,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
	Issues       []ValidationIssue `json:"issues,omitempty"`
	FraudSignals []string          `json:"fraud_signals,omitempty"`
	Score        int               `json:"score"`
	Decision     Decision          `json:"decision"`
	Reason       string            `json:"reason,omitempty"`
}

// HasIssues reports whether any validation issue was recorded.
func (r DocumentRecord) HasIssues() bool { return len(r.Issues) > 0 }

// HasFraudSignals reports whether any technical fraud signal was folded in.
func (r DocumentRecord) HasFraudSignals() bool { return len(r.FraudSignals) > 0 }
