// Package dossier combines per-document decisions and cross-document
// issues into one case decision.
package dossier

import (
	"fmt"
	"strings"

	"github.com/ymansouri/claimsort/internal/model"
	"github.com/ymansouri/claimsort/internal/score"
)

// maxReasonLen bounds the reason string handed to the audit
// collaborator.
const maxReasonLen = 220

// Aggregate finalizes a case from its document records and cross-check
// issues. The precedence order is a product contract, not an
// implementation detail: every REVIEW carries the first specific reason
// that applies, never a bare low score.
//
//  1. missing required category
//  2. per-document decision != ACCEPT
//  3. cross-check issue present
//  4. fraud signal on any document (defense in depth)
//  5. ACCEPT
func Aggregate(c *model.CaseRecord) {
	missing := c.MissingCategories()
	reviewDocs := documentsUnderReview(c)
	fraudDocs := documentsWithFraudSignals(c)

	c.Decision = score.Decide(score.DecisionInput{
		Score:        100,
		Threshold:    0,
		MissingDocs:  len(missing),
		ReviewDocs:   len(reviewDocs),
		Issues:       len(c.CrossIssues),
		FraudSignals: len(fraudDocs),
	})

	switch {
	case len(missing) > 0:
		c.Reason = truncate(fmt.Sprintf("missing documents: %s", joinCategories(missing)))
	case len(reviewDocs) > 0:
		c.Reason = truncate(fmt.Sprintf("documents under review: %s", joinCategories(reviewDocs)))
	case len(c.CrossIssues) > 0:
		c.Reason = truncate(fmt.Sprintf("cross-document issues: %s", joinIssues(c.CrossIssues)))
	case len(fraudDocs) > 0:
		c.Reason = truncate(fmt.Sprintf("fraud signals on: %s", joinCategories(fraudDocs)))
	default:
		c.Reason = "all documents accepted and consistent"
	}
}

func documentsUnderReview(c *model.CaseRecord) []model.Category {
	var cats []model.Category
	for _, cat := range model.RequiredCategories {
		if doc, ok := c.Documents[cat]; ok && doc.Decision != model.DecisionAccept {
			cats = append(cats, cat)
		}
	}
	return cats
}

func documentsWithFraudSignals(c *model.CaseRecord) []model.Category {
	var cats []model.Category
	for _, cat := range model.RequiredCategories {
		if doc, ok := c.Documents[cat]; ok && doc.HasFraudSignals() {
			cats = append(cats, cat)
		}
	}
	return cats
}

func joinCategories(cats []model.Category) string {
	names := make([]string, len(cats))
	for i, cat := range cats {
		names[i] = string(cat)
	}
	return strings.Join(names, ", ")
}

func joinIssues(issues []model.CrossCheckIssue) string {
	parts := make([]string, len(issues))
	for i, iss := range issues {
		parts[i] = string(iss)
	}
	return strings.Join(parts, "; ")
}

func truncate(s string) string {
	if len(s) <= maxReasonLen {
		return s
	}
	return s[:maxReasonLen-3] + "..."
}
