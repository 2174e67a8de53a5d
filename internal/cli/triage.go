package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ymansouri/claimsort/internal/model"
	"github.com/ymansouri/claimsort/internal/pipeline"
)

var (
	outJSON       string
	outMD         string
	timeout       time.Duration
	noFingerprint bool
	noAudit       bool
	noFooter      bool
	provider      string
	extractModel  string
	baseURL       string
	preferOCRIBAN bool
)

// triageCmd represents the triage command
var triageCmd = &cobra.Command{
	Use:   "triage <dossier.json>",
	Short: "Pre-sort a single claim dossier into ACCEPT or REVIEW",
	Long: `Triage processes one succession claim dossier:
- Validate each document's extracted fields (CIN, RIB, IBAN, dates)
- Fold in technical integrity signals (editing tools, font count)
- Cross-check names, ID numbers and dates across documents
- Sort the case into ACCEPT or REVIEW with an explained reason

The dossier file lists the claim's documents with their pre-extracted
fields. With --provider, fields are extracted by an OpenAI-compatible
API from the documents' OCR text instead.

Example:
  claimsort triage dossier.json
  claimsort triage dossier.json --json case.json --md case.md
  claimsort triage dossier.json --provider openai --extract-model llama-3.3-70b-versatile`,
	Args: cobra.ExactArgs(1),
	RunE: runTriage,
}

func init() {
	rootCmd.AddCommand(triageCmd)

	// Output flags
	triageCmd.Flags().StringVar(&outJSON, "json", "case.json", "output JSON path")
	triageCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	triageCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Engine flags
	triageCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall triage timeout")
	triageCmd.Flags().BoolVar(&noFingerprint, "no-fingerprint", false, "disable duplicate-submission fingerprinting")
	triageCmd.Flags().BoolVar(&noAudit, "no-audit", false, "disable the JSONL audit trail")
	triageCmd.Flags().BoolVar(&preferOCRIBAN, "prefer-ocr-iban", false, "prefer the OCR-read IBAN over the RIB-derived one on disagreement")

	// Extraction flags
	triageCmd.Flags().StringVar(&provider, "provider", "", "field-extraction provider (openai; empty uses the dossier's own fields)")
	triageCmd.Flags().StringVar(&extractModel, "extract-model", "llama-3.3-70b-versatile", "extraction model name")
	triageCmd.Flags().StringVar(&baseURL, "base-url", "", "OpenAI-compatible endpoint base URL (e.g. Groq)")
}

// buildConfig assembles the engine config from flags and environment.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Fingerprint.Enabled = !noFingerprint
	cfg.Audit.Enabled = !noAudit
	cfg.Validation.PreferExtractedIBAN = preferOCRIBAN
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	if provider != "" {
		cfg.Extraction.Provider = provider
		cfg.Extraction.Model = extractModel
		cfg.Extraction.BaseURL = baseURL
		cfg.Extraction.APIKey = os.Getenv("CLAIMSORT_API_KEY")
		if cfg.Extraction.APIKey == "" {
			cfg.Extraction.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.Extraction.APIKey == "" {
			return nil, fmt.Errorf("CLAIMSORT_API_KEY or OPENAI_API_KEY environment variable not set")
		}
	}

	return cfg, nil
}

func runTriage(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Triaging: %s\n", path)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	c, err := p.ProcessDossierFile(ctx, path)
	if err != nil {
		return fmt.Errorf("triage failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Processed %d documents\n", len(c.Documents))
		fmt.Fprintf(os.Stderr, "✓ Cross-document issues: %d\n", len(c.CrossIssues))
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderCase(c, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
