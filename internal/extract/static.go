package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ymansouri/claimsort/internal/model"
)

// DossierDocument is one document in a pre-extracted dossier file.
// Fields may come from any upstream OCR tooling; Text lets the static
// extractor recover banking identifiers the tooling missed.
type DossierDocument struct {
	FileName string                 `json:"file_name"`
	Category model.Category         `json:"category,omitempty"`
	Text     string                 `json:"text,omitempty"`
	Fields   map[string]string      `json:"fields"`
	Signals  model.TechnicalSignals `json:"signals"`
}

// DossierFile is the on-disk input format for one claim dossier.
type DossierFile struct {
	CaseID    string            `json:"case_id,omitempty"`
	Documents []DossierDocument `json:"documents"`
}

// LoadDossier reads a dossier JSON file.
func LoadDossier(path string) (DossierFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DossierFile{}, fmt.Errorf("read dossier: %w", err)
	}

	var dossier DossierFile
	if err := json.Unmarshal(data, &dossier); err != nil {
		return DossierFile{}, fmt.Errorf("malformed dossier %s: %w", path, err)
	}
	if len(dossier.Documents) == 0 {
		return DossierFile{}, fmt.Errorf("dossier %s contains no documents", path)
	}
	return dossier, nil
}

// Inputs converts the dossier's documents into pipeline inputs. The
// fingerprint content is the document text when no raw bytes exist.
func (d DossierFile) Inputs() []FileInput {
	inputs := make([]FileInput, 0, len(d.Documents))
	for _, doc := range d.Documents {
		inputs = append(inputs, FileInput{
			FileName: doc.FileName,
			Text:     doc.Text,
			Content:  []byte(doc.Text),
			Signals:  doc.Signals,
		})
	}
	return inputs
}

// StaticExtractor serves fields from a pre-extracted dossier file, for
// offline runs and tests where no extraction API is configured.
type StaticExtractor struct {
	docs map[string]DossierDocument
}

// NewStaticExtractor indexes the dossier's documents by file name.
func NewStaticExtractor(dossier DossierFile) *StaticExtractor {
	docs := make(map[string]DossierDocument, len(dossier.Documents))
	for _, doc := range dossier.Documents {
		docs[doc.FileName] = doc
	}
	return &StaticExtractor{docs: docs}
}

// Extract returns the pre-extracted fields for the file, classifying
// by keyword when the dossier carries no category and filling missing
// identifiers from the raw text.
func (e *StaticExtractor) Extract(_ context.Context, in FileInput) (model.ExtractedDocument, error) {
	doc, ok := e.docs[in.FileName]
	if !ok {
		return model.ExtractedDocument{}, fmt.Errorf("no pre-extracted document for %s", in.FileName)
	}

	category := doc.Category
	if category == "" {
		category = DetectCategory(doc.Text)
	}

	fields := make(map[string]string, len(doc.Fields))
	for k, v := range doc.Fields {
		if v = strings.TrimSpace(v); v != "" {
			fields[k] = v
		}
	}
	supplementFields(category, fields, doc.Text)

	return model.ExtractedDocument{
		Category: category,
		Fields:   fields,
		Signals:  doc.Signals,
		FileName: doc.FileName,
		Content:  in.Content,
	}, nil
}

var (
	ibanCandidatePattern = regexp.MustCompile(`[A-Z]{2}[0-9]{2}[A-Z0-9]{10,30}`)
	ribCandidatePattern  = regexp.MustCompile(`\b[0-9]{20,34}\b`)
	cinCandidatePattern  = regexp.MustCompile(`\b[A-Z]{1,2}[0-9]{5,8}\b|\b[0-9]{7,8}[A-Z]{0,2}\b`)
	candidateSpaces      = regexp.MustCompile(`\s+`)
	candidateNonDigit    = regexp.MustCompile(`\D`)
)

// IBANCandidates pulls potential IBANs out of free text. Candidates
// are unvalidated; the checksum verdict belongs to the validator.
func IBANCandidates(text string) []string {
	cleaned := strings.ToUpper(candidateSpaces.ReplaceAllString(text, ""))
	return dedupe(ibanCandidatePattern.FindAllString(cleaned, -1))
}

// RIBCandidates pulls contiguous long digit blocks that could be an
// account identifier.
func RIBCandidates(text string) []string {
	spaced := candidateNonDigit.ReplaceAllString(text, " ")
	return dedupe(ribCandidatePattern.FindAllString(spaced, -1))
}

// CINCandidates pulls potential Moroccan identity numbers, current and
// legacy shapes.
func CINCandidates(text string) []string {
	return dedupe(cinCandidatePattern.FindAllString(strings.ToUpper(text), -1))
}

// supplementFields backfills identifiers from raw text when the
// extractor left them empty. Only unambiguous single candidates are
// used; anything else stays missing for a human to resolve. The
// id_number backfill applies to identity documents only: CIN-shaped
// strings show up too often on other paperwork to trust there.
func supplementFields(category model.Category, fields map[string]string, text string) {
	if text == "" {
		return
	}
	if fields[model.FieldIBAN] == "" {
		if candidates := IBANCandidates(text); len(candidates) == 1 {
			fields[model.FieldIBAN] = candidates[0]
		}
	}
	if fields[model.FieldRIB] == "" {
		if candidates := RIBCandidates(text); len(candidates) == 1 {
			fields[model.FieldRIB] = candidates[0]
		}
	}
	if category == model.CategoryID && fields[model.FieldIDNumber] == "" {
		if candidates := CINCandidates(text); len(candidates) == 1 {
			fields[model.FieldIDNumber] = candidates[0]
		}
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var unique []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	return unique
}
