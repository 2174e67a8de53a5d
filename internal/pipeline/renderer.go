package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ymansouri/claimsort/internal/model"
	"github.com/ymansouri/claimsort/internal/security"
)

// Renderer writes triage reports. Every output path goes through
// masking first: reports circulate to back-office staff and must not
// carry identifiers in clear.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// maskCase returns a copy of the case with every document's fields
// masked.
func maskCase(c *model.CaseRecord) model.CaseRecord {
	masked := *c
	masked.Documents = make(map[model.Category]model.DocumentRecord, len(c.Documents))
	for cat, doc := range c.Documents {
		doc.Fields = security.SanitizeFields(doc.Fields)
		masked.Documents[cat] = doc
	}
	return masked
}

// RenderJSON writes the masked case as indented JSON.
func (r *Renderer) RenderJSON(c *model.CaseRecord, path string) error {
	masked := maskCase(c)
	data, err := json.MarshalIndent(masked, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal case: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// RenderMarkdown writes a human-readable triage report.
func (r *Renderer) RenderMarkdown(c *model.CaseRecord, path string) error {
	return os.WriteFile(path, []byte(r.markdown(c)), 0o644)
}

func (r *Renderer) markdown(c *model.CaseRecord) string {
	masked := maskCase(c)

	var b strings.Builder
	fmt.Fprintf(&b, "# Triage Report: %s\n\n", masked.CaseID)
	fmt.Fprintf(&b, "**Decision:** %s\n\n", masked.Decision)
	fmt.Fprintf(&b, "**Reason:** %s\n\n", masked.Reason)
	fmt.Fprintf(&b, "Created: %s\n\n", masked.CreatedAt.Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("## Documents\n\n")
	b.WriteString("| Category | File | Score | Decision | Issues |\n")
	b.WriteString("|----------|------|-------|----------|--------|\n")
	for _, cat := range sortedCategories(masked.Documents) {
		doc := masked.Documents[cat]
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %d |\n", cat, doc.FileName, doc.Score, doc.Decision, len(doc.Issues))
	}
	b.WriteString("\n")

	for _, cat := range sortedCategories(masked.Documents) {
		doc := masked.Documents[cat]
		if !doc.HasIssues() && !doc.HasFraudSignals() {
			continue
		}
		fmt.Fprintf(&b, "### %s findings\n\n", cat)
		for _, iss := range doc.Issues {
			fmt.Fprintf(&b, "- %s: %s\n", iss.Field, iss.Message)
		}
		for _, sig := range doc.FraudSignals {
			fmt.Fprintf(&b, "- fraud signal: %s\n", sig)
		}
		b.WriteString("\n")
	}

	if len(masked.CrossIssues) > 0 {
		b.WriteString("## Cross-document issues\n\n")
		for _, iss := range masked.CrossIssues {
			fmt.Fprintf(&b, "- %s\n", iss)
		}
		b.WriteString("\n")
	}

	if len(masked.Duplicates) > 0 {
		b.WriteString("## Duplicate submissions\n\n")
		for _, dup := range masked.Duplicates {
			fmt.Fprintf(&b, "- %s seen before (%s, score %d, first seen %s)\n",
				dup.FileName, dup.PriorDecision, dup.PriorScore, dup.FirstSeen.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\nGenerated by claimsort. Pre-sorting aid only: REVIEW is not a rejection.\n")
	}
	return b.String()
}

// RenderSummary prints a one-screen summary to stdout.
func (r *Renderer) RenderSummary(c *model.CaseRecord) {
	fmt.Printf("\nCase %s: %s\n", c.CaseID, c.Decision)
	fmt.Printf("  %s\n", c.Reason)
	for _, cat := range sortedCategories(c.Documents) {
		doc := c.Documents[cat]
		fmt.Printf("  %-13s %3d/100 %s\n", cat, doc.Score, doc.Decision)
	}
	if len(c.Duplicates) > 0 {
		fmt.Printf("  %d duplicate submission(s) noted\n", len(c.Duplicates))
	}
}
