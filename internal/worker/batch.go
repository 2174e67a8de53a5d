package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ymansouri/claimsort/internal/model"
)

// Triager processes one dossier file into a finalized case. The
// pipeline satisfies this; the indirection keeps the batch layer free
// of pipeline wiring.
type Triager interface {
	ProcessDossierFile(ctx context.Context, path string) (*model.CaseRecord, error)
}

// TriageJob sorts a single dossier file.
type TriageJob struct {
	Path    string
	Triager Triager
}

// Execute runs the triage job.
func (j *TriageJob) Execute(ctx context.Context) Result {
	record, err := j.Triager.ProcessDossierFile(ctx, j.Path)
	return &TriageResult{
		Path:  j.Path,
		Case:  record,
		Error: err,
	}
}

// TriageResult is the outcome of one dossier triage.
type TriageResult struct {
	Path  string
	Case  *model.CaseRecord
	Error error
}

// GetError returns the error from the triage result.
func (r *TriageResult) GetError() error {
	return r.Error
}

// BatchProcessor triages multiple dossiers concurrently.
type BatchProcessor struct {
	triager     Triager
	concurrency int
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(triager Triager, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		triager:     triager,
		concurrency: concurrency,
	}
}

// ProcessDossiers triages the given dossier files concurrently.
func (b *BatchProcessor) ProcessDossiers(ctx context.Context, paths []string) []*TriageResult {
	if len(paths) == 0 {
		return []*TriageResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&TriageJob{
			Path:    path,
			Triager: b.triager,
		})
	}

	results := pool.Wait()

	triageResults := make([]*TriageResult, len(results))
	for i, result := range results {
		triageResults[i] = result.(*TriageResult)
	}

	return triageResults
}

// ProcessManifest reads dossier paths from a manifest file and triages
// them concurrently.
func (b *BatchProcessor) ProcessManifest(ctx context.Context, manifestPath string) ([]*TriageResult, error) {
	paths, err := ReadPathsFromManifest(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return b.ProcessDossiers(ctx, paths), nil
}

// ReadPathsFromManifest reads dossier file paths from a manifest file
// (one per line, # comments allowed, duplicates dropped).
func ReadPathsFromManifest(manifestPath string) ([]string, error) {
	file, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}

	return paths, nil
}
