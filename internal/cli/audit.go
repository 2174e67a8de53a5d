package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ymansouri/claimsort/internal/model"
	"github.com/ymansouri/claimsort/internal/security"
)

var (
	auditLimit int
	auditTrail string
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent triage decisions from the audit trail",
	Long: `Audit lists the most recent decisions recorded in the JSONL audit
trail. Entries are stored with sensitive fields already masked, so the
output is safe to share with a reviewer.

Example:
  claimsort audit
  claimsort audit --limit 50
  claimsort audit --trail logs/audit_trail.jsonl`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "maximum number of entries to show")
	auditCmd.Flags().StringVar(&auditTrail, "trail", model.DefaultConfig().Audit.Path, "audit trail path")
}

func runAudit(cmd *cobra.Command, args []string) error {
	logger, err := security.NewAuditLogger(auditTrail)
	if err != nil {
		return err
	}

	entries, err := logger.RecentDecisions(auditLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "No audit entries found in %s\n", auditTrail)
		return nil
	}

	for _, e := range entries {
		fraud := ""
		if e.FraudSuspected {
			fraud = "  [fraud suspected]"
		}
		fmt.Printf("%s  %-6s  %-13s  %3d  %s (%s)%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Decision, e.Category, e.Score, e.FileName, e.CaseID, fraud)
		if verbose && e.Reason != "" {
			fmt.Printf("    %s\n", e.Reason)
		}
	}

	return nil
}
