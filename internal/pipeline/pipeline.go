// Package pipeline orchestrates the triage of one dossier: extract
// each document, score it, cross-check the set, aggregate, and record
// the outcome.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ymansouri/claimsort/internal/crosscheck"
	"github.com/ymansouri/claimsort/internal/dossier"
	"github.com/ymansouri/claimsort/internal/extract"
	"github.com/ymansouri/claimsort/internal/fingerprint"
	"github.com/ymansouri/claimsort/internal/model"
	"github.com/ymansouri/claimsort/internal/score"
	"github.com/ymansouri/claimsort/internal/security"
	"github.com/ymansouri/claimsort/internal/worker"
)

// Pipeline orchestrates the complete triage process.
type Pipeline struct {
	extractor extract.Extractor // nil: use the dossier file's own fields
	scorer    *score.Scorer
	checker   *crosscheck.Checker
	store     fingerprint.Store     // nil when disabled
	audit     *security.AuditLogger // nil when disabled
	renderer  *Renderer
	config    *model.Config
}

// NewPipeline creates a pipeline with the given configuration.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	var extractor extract.Extractor
	if cfg.Extraction.Provider != "" {
		limiter := worker.NewLimiter(cfg.Extraction.RequestsPerSecond, cfg.Extraction.Burst)
		e, err := extract.NewOpenAIExtractor(cfg.Extraction, limiter)
		if err != nil {
			return nil, fmt.Errorf("init extractor: %w", err)
		}
		extractor = e
	}

	var store fingerprint.Store
	if cfg.Fingerprint.Enabled {
		store = fingerprint.NewLayeredStore(cfg.Fingerprint.Path, cfg.Fingerprint.MemoryTTL)
	}

	var audit *security.AuditLogger
	if cfg.Audit.Enabled {
		a, err := security.NewAuditLogger(cfg.Audit.Path)
		if err != nil {
			return nil, fmt.Errorf("init audit trail: %w", err)
		}
		audit = a
	}

	return &Pipeline{
		extractor: extractor,
		scorer:    score.NewScorer(cfg),
		checker:   crosscheck.NewChecker(cfg.Matching),
		store:     store,
		audit:     audit,
		renderer:  NewRenderer(cfg.Output.IncludeFooter),
		config:    cfg,
	}, nil
}

// ProcessDossierFile loads a dossier file and triages it. When no
// extraction provider is configured, the file's pre-extracted fields
// are used directly.
func (p *Pipeline) ProcessDossierFile(ctx context.Context, path string) (*model.CaseRecord, error) {
	d, err := extract.LoadDossier(path)
	if err != nil {
		return nil, err
	}

	extractor := p.extractor
	if extractor == nil {
		extractor = extract.NewStaticExtractor(d)
	}

	return p.ProcessDossier(ctx, d.CaseID, extractor, d.Inputs())
}

// scoredFile pairs one input's finalized record with its fingerprint.
type scoredFile struct {
	record model.DocumentRecord
	hash   string
}

// ProcessDossier runs the full triage for one upload batch. Documents
// are extracted and scored concurrently; cross-document checks and
// aggregation run after the barrier. A collaborator failure on one
// file never blocks the siblings.
func (p *Pipeline) ProcessDossier(ctx context.Context, caseID string, extractor extract.Extractor, inputs []extract.FileInput) (*model.CaseRecord, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("dossier has no documents")
	}

	c := model.NewCaseRecord()
	if caseID != "" {
		c.CaseID = caseID
	}

	scored := make([]scoredFile, len(inputs))
	var wg sync.WaitGroup

	workers := p.config.Concurrency.DocumentWorkers
	if workers <= 0 {
		workers = 4
	}
	semaphore := make(chan struct{}, workers)

	for i, in := range inputs {
		wg.Add(1)
		go func(idx int, in extract.FileInput) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				scored[idx] = scoredFile{
					record: score.FailureRecord(extract.DetectCategory(in.Text), in.FileName, ctx.Err()),
					hash:   fingerprint.Hash(in.Content),
				}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			scored[idx] = p.processOne(ctx, extractor, in)
		}(i, in)
	}

	wg.Wait()

	for _, sf := range scored {
		p.noteDuplicate(c, sf)
		c.Documents[sf.record.Category] = pickRecord(c.Documents, sf.record)
	}

	c.CrossIssues = p.checker.Check(c.Documents)
	dossier.Aggregate(c)

	p.recordOutcome(c, scored)
	return c, nil
}

// processOne extracts and scores a single file. An extraction failure
// becomes a zero-score REVIEW record instead of an error.
func (p *Pipeline) processOne(ctx context.Context, extractor extract.Extractor, in extract.FileInput) scoredFile {
	hash := fingerprint.Hash(in.Content)

	doc, err := extractor.Extract(ctx, in)
	if err != nil {
		return scoredFile{
			record: score.FailureRecord(extract.DetectCategory(in.Text), in.FileName, err),
			hash:   hash,
		}
	}

	return scoredFile{record: p.scorer.Score(doc), hash: hash}
}

// pickRecord resolves two documents claiming the same category slot:
// the higher score stays, so a legible duplicate never displaces a
// clean original.
func pickRecord(docs map[model.Category]model.DocumentRecord, rec model.DocumentRecord) model.DocumentRecord {
	existing, ok := docs[rec.Category]
	if !ok || rec.Score > existing.Score {
		return rec
	}
	return existing
}

// noteDuplicate attaches an advisory warning when a file's fingerprint
// was seen before. The file is still fully re-validated.
func (p *Pipeline) noteDuplicate(c *model.CaseRecord, sf scoredFile) {
	if p.store == nil {
		return
	}

	entry, found, err := p.store.Lookup(sf.hash)
	if err != nil {
		fmt.Printf("Warning: fingerprint lookup failed: %v\n", err)
		return
	}
	if !found {
		return
	}

	c.Duplicates = append(c.Duplicates, model.DuplicateWarning{
		FileName:      sf.record.FileName,
		ContentHash:   sf.hash,
		PriorDecision: entry.Decision,
		PriorScore:    entry.Score,
		FirstSeen:     entry.Timestamp,
	})
}

// recordOutcome registers fingerprints and writes the audit trail once
// the case decision is final.
func (p *Pipeline) recordOutcome(c *model.CaseRecord, scored []scoredFile) {
	for _, sf := range scored {
		if p.store != nil {
			if err := p.store.Register(sf.hash, sf.record.Decision, sf.record.Score); err != nil {
				fmt.Printf("Warning: fingerprint registration failed: %v\n", err)
			}
		}
		if p.audit != nil {
			if err := p.audit.LogDecision(c.CaseID, sf.hash, sf.record); err != nil {
				fmt.Printf("Warning: audit trail write failed: %v\n", err)
			}
		}
	}
}

// RenderCase renders the case to the requested outputs and prints the
// console summary.
func (p *Pipeline) RenderCase(c *model.CaseRecord, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(c, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(c, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(c)
	return nil
}

// sortedCategories returns the case's categories in canonical order,
// unknown last.
func sortedCategories(docs map[model.Category]model.DocumentRecord) []model.Category {
	var cats []model.Category
	for cat := range docs {
		cats = append(cats, cat)
	}
	rank := make(map[model.Category]int, len(model.RequiredCategories))
	for i, cat := range model.RequiredCategories {
		rank[cat] = i
	}
	sort.Slice(cats, func(i, j int) bool {
		ri, iOK := rank[cats[i]]
		rj, jOK := rank[cats[j]]
		if iOK != jOK {
			return iOK
		}
		if !iOK {
			return cats[i] < cats[j]
		}
		return ri < rj
	})
	return cats
}
