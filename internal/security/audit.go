package security

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ymansouri/claimsort/internal/model"
)

// AuditEntry is one line of the JSONL audit trail. Extracted fields
// are masked before they reach the entry.
type AuditEntry struct {
	Timestamp       time.Time         `json:"timestamp"`
	CaseID          string            `json:"case_id"`
	FileName        string            `json:"file_name"`
	FileHash        string            `json:"file_hash"`
	Score           int               `json:"score"`
	Decision        model.Decision    `json:"decision"`
	FraudSuspected  bool              `json:"fraud_suspected"`
	Category        model.Category    `json:"category"`
	Reason          string            `json:"reason"`
	ExtractedFields map[string]string `json:"extracted_fields"`
}

// AuditLogger appends decision entries to a JSONL file. Safe for
// concurrent use by the document workers.
type AuditLogger struct {
	mu   sync.Mutex
	path string
}

// NewAuditLogger creates the trail's parent directory if needed.
func NewAuditLogger(path string) (*AuditLogger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit dir: %w", err)
		}
	}
	return &AuditLogger{path: path}, nil
}

// LogDecision appends one masked entry for a finalized document.
func (l *AuditLogger) LogDecision(caseID, fileHash string, doc model.DocumentRecord) error {
	entry := AuditEntry{
		Timestamp:       time.Now().UTC(),
		CaseID:          caseID,
		FileName:        doc.FileName,
		FileHash:        fileHash,
		Score:           doc.Score,
		Decision:        doc.Decision,
		FraudSuspected:  doc.HasFraudSignals(),
		Category:        doc.Category,
		Reason:          doc.Reason,
		ExtractedFields: SanitizeFields(doc.Fields),
	}
	return l.append(entry)
}

func (l *AuditLogger) append(entry AuditEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit trail: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// RecentDecisions returns up to limit entries from the tail of the
// trail, skipping lines that fail to parse.
func (l *AuditLogger) RecentDecisions(limit int) ([]AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read audit trail: %w", err)
	}

	var entries []AuditEntry
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}
		var entry AuditEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
