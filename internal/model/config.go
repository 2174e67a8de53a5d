package model

import "time"

// Config holds the complete claimsort configuration
type Config struct {
	Extraction  ExtractionConfig  `yaml:"extraction"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Matching    MatchingConfig    `yaml:"matching"`
	Validation  ValidationConfig  `yaml:"validation"`
	Fingerprint FingerprintConfig `yaml:"fingerprint"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Audit       AuditConfig       `yaml:"audit"`
	Output      OutputConfig      `yaml:"output"`
}

// ExtractionConfig configures the external field-extraction collaborator
type ExtractionConfig struct {
	Provider string        `yaml:"provider"` // "openai" (any OpenAI-compatible endpoint) or "" for pre-extracted input
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key,omitempty"`
	BaseURL  string        `yaml:"base_url,omitempty"` // e.g. Groq's OpenAI-compatible endpoint
	Timeout  time.Duration `yaml:"timeout"`
	// RequestsPerSecond throttles calls to the extraction API
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	HTTPProxy         string  `yaml:"http_proxy,omitempty"`
	HTTPSProxy        string  `yaml:"https_proxy,omitempty"`
}

// ScoringConfig holds the per-document scoring table.
// One canonical table: the accept threshold and the three deduction
// magnitudes used by the scorer.
type ScoringConfig struct {
	AcceptThreshold      int `yaml:"accept_threshold"`
	MissingFieldPenalty  int `yaml:"missing_field_penalty"`
	MissingFieldCap      int `yaml:"missing_field_cap"`
	FormatFailurePenalty int `yaml:"format_failure_penalty"`
	TemporalRulePenalty  int `yaml:"temporal_rule_penalty"`
	HighFontCountCutoff  int `yaml:"high_font_count_cutoff"`
}

// MatchingConfig holds the identity-matching thresholds used by the
// cross-document checker. Each threshold is documented at its call site.
type MatchingConfig struct {
	HolderNameThreshold      float64 `yaml:"holder_name_threshold"`      // ID<->BANK, BANK<->LIFE_CONTRACT
	BeneficiaryNameThreshold float64 `yaml:"beneficiary_name_threshold"` // ID<->LIFE_CONTRACT, DEATH<->LIFE_CONTRACT
	InversionThreshold       float64 `yaml:"inversion_threshold"`        // insured vs beneficiary self-check
}

// ValidationConfig holds format-validation policy switches
type ValidationConfig struct {
	// PreferExtractedIBAN controls which IBAN wins when the OCR-read
	// IBAN and the RIB-derived reconstruction disagree. Default false:
	// the reconstruction is canonical and the OCR value is audit-only.
	PreferExtractedIBAN bool `yaml:"prefer_extracted_iban"`
}

// FingerprintConfig configures the content-hash store
type FingerprintConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Path      string        `yaml:"path"`       // persisted JSON store
	MemoryTTL time.Duration `yaml:"memory_ttl"` // in-memory layer TTL
}

// ConcurrencyConfig controls parallelism
type ConcurrencyConfig struct {
	DocumentWorkers int `yaml:"document_workers"` // per-dossier parallel document scoring
	DossierWorkers  int `yaml:"dossier_workers"`  // batch-level parallel dossiers
}

// AuditConfig configures the JSONL audit trail
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns the canonical defaults
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Model:             "llama-3.3-70b-versatile",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Scoring: ScoringConfig{
			AcceptThreshold:      85,
			MissingFieldPenalty:  10,
			MissingFieldCap:      40,
			FormatFailurePenalty: 5,
			TemporalRulePenalty:  5,
			HighFontCountCutoff:  8,
		},
		Matching: MatchingConfig{
			HolderNameThreshold:      0.55,
			BeneficiaryNameThreshold: 0.70,
			InversionThreshold:       0.85,
		},
		Fingerprint: FingerprintConfig{
			Enabled:   true,
			Path:      "fingerprints.json",
			MemoryTTL: 30 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			DocumentWorkers: 4,
			DossierWorkers:  4,
		},
		Audit: AuditConfig{
			Enabled: true,
			Path:    "logs/audit_trail.jsonl",
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
