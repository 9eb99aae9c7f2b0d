package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sgrenew/internal/output"
)

var checkCmd = &cobra.Command{
	Use:   "check [domain...]",
	Short: "Show certificate expiry without renewing",
	Long: `Read the certificate of each configured domain and report its expiry
and whether it is due for renewal. No security group is changed and certbot
is not run.

Examples:
  sgrenew check
  sgrenew check example.com
  sgrenew check --json`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// ExpiryEntry is one row of the check report
type ExpiryEntry struct {
	Domain   string    `json:"domain"`
	CertPath string    `json:"cert_path"`
	NotAfter time.Time `json:"not_after"`
	DaysLeft int       `json:"days_left"`
	Due      bool      `json:"due"`
	Error    string    `json:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	cfg, err = cfg.Only(args)
	if err != nil {
		return err
	}

	now := deps.Clock()
	margin := cfg.RenewalMargin()

	entries := make([]ExpiryEntry, 0, len(cfg.Domains))
	failed := 0
	for _, d := range cfg.Domains {
		entry := ExpiryEntry{Domain: d.Name, CertPath: cfg.CertPath(d)}

		status, err := deps.Checker.ReadyForRenewal(entry.CertPath, now, margin)
		if err != nil {
			entry.Error = err.Error()
			failed++
		} else {
			entry.NotAfter = status.NotAfter.UTC()
			entry.DaysLeft = int(status.Remaining(now).Hours() / 24)
			entry.Due = status.Due
		}
		entries = append(entries, entry)
	}

	if jsonOutput {
		if err := output.JSON(entries); err != nil {
			return err
		}
	} else {
		displayExpiryTable(entries, now)
	}

	if failed > 0 {
		return fmt.Errorf("%d certificate(s) could not be read", failed)
	}
	return nil
}

func displayExpiryTable(entries []ExpiryEntry, now time.Time) {
	headers := []string{"DOMAIN", "EXPIRES", "REMAINING", "DUE"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		if e.Error != "" {
			rows = append(rows, []string{e.Domain, "-", "-", "error: " + e.Error})
			continue
		}
		due := "no"
		if e.Due {
			due = "yes"
		}
		rows = append(rows, []string{e.Domain, output.Date(e.NotAfter), output.Days(e.NotAfter.Sub(now)), due})
	}
	output.Table(headers, rows)
}
