// Package extract is the boundary to the field-extraction collaborator.
// The engine never judges OCR quality; it takes whatever fields the
// extractor produced and validates them downstream.
package extract

import (
	"context"
	"strings"

	"github.com/ymansouri/claimsort/internal/model"
)

// FileInput is one dossier file handed to an extractor. Text is the
// OCR output; Content is the raw bytes used for fingerprinting.
type FileInput struct {
	FileName string
	Text     string
	Content  []byte
	Signals  model.TechnicalSignals
}

// Extractor turns a dossier file into categorized fields. An error
// means the collaborator failed entirely; the pipeline then records a
// zero-score failure for the file instead of dropping the dossier.
type Extractor interface {
	Extract(ctx context.Context, in FileInput) (model.ExtractedDocument, error)
}

// categoryKeywords maps document categories to the markers that
// identify them in OCR text. "identité" alone is too loose: it also
// appears in "relevé d'identité bancaire".
var categoryKeywords = map[model.Category][]string{
	model.CategoryID:           {"cni", "passport", "passeport", "carte nationale"},
	model.CategoryDeath:        {"décès", "deces", "death", "acte de décès", "certificat"},
	model.CategoryLifeContract: {"contrat", "assurance", "police", "souscripteur", "bénéficiaire", "beneficiaire"},
	model.CategoryBank:         {"rib", "iban", "bic", "banque", "titulaire", "compte"},
}

// detectionOrder fixes keyword precedence: a contract mentioning the
// beneficiary's RIB must still classify as a contract.
var detectionOrder = []model.Category{
	model.CategoryDeath,
	model.CategoryLifeContract,
	model.CategoryID,
	model.CategoryBank,
}

// DetectCategory classifies OCR text by keyword. Returns
// CategoryUnknown when nothing matches; the scorer treats unknown
// documents as REVIEW material, never as rejects.
func DetectCategory(text string) model.Category {
	lower := strings.ToLower(text)
	for _, cat := range detectionOrder {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return model.CategoryUnknown
}
