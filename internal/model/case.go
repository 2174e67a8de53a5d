package model

import (
	"time"

	"github.com/google/uuid"
)

// CrossCheckIssue describes one inter-document mismatch (name, ID
// number, date) found by the consistency checker.
type CrossCheckIssue string

// CaseRecord is the dossier-level outcome: one upload batch, up to four
// document records, cross-document issues, and the final two-outcome
// decision with an ordered, human-readable reason.
type CaseRecord struct {
	CaseID      string                      `json:"case_id"`
	CreatedAt   time.Time                   `json:"created_at"`
	Documents   map[Category]DocumentRecord `json:"documents"`
	CrossIssues []CrossCheckIssue           `json:"cross_issues,omitempty"`
	Duplicates  []DuplicateWarning          `json:"duplicates,omitempty"`
	Decision    Decision                    `json:"decision"`
	Reason      string                      `json:"reason"`
}

// DuplicateWarning notes that a submitted file's fingerprint was seen
// before. Advisory only: a resubmission is still fully re-validated.
type DuplicateWarning struct {
	FileName      string    `json:"file_name,omitempty"`
	ContentHash   string    `json:"content_hash"`
	PriorDecision Decision  `json:"prior_decision"`
	PriorScore    int       `json:"prior_score"`
	FirstSeen     time.Time `json:"first_seen"`
}

// NewCaseRecord creates an empty case with a fresh ID.
func NewCaseRecord() *CaseRecord {
	return &CaseRecord{
		CaseID:    uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Documents: make(map[Category]DocumentRecord),
	}
}

// MissingCategories returns the required categories with no usable
// document, in canonical order. UNKNOWN never fills a slot.
func (c *CaseRecord) MissingCategories() []Category {
	var missing []Category
	for _, cat := range RequiredCategories {
		if _, ok := c.Documents[cat]; !ok {
			missing = append(missing, cat)
		}
	}
	return missing
}
