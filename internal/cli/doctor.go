package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sgrenew/internal/config"
	"github.com/ksyq12/sgrenew/internal/output"
	"github.com/ksyq12/sgrenew/internal/renewal"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system status and diagnose issues",
	Long: `Run diagnostic checks on the host and the sgrenew configuration.

Checks:
  - Certbot installation
  - Configuration file validity
  - AWS credential resolution
  - Certificate readability and expiry per domain
  - Verification ports left open by an interrupted run

Examples:
  sgrenew doctor
  sgrenew doctor --json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"` // "success", "warning", "error"
	Message string `json:"message"`
}

// DomainStatus represents the checks of a single domain
type DomainStatus struct {
	Domain string        `json:"domain"`
	Checks []CheckResult `json:"checks"`
}

// DoctorReport contains all diagnostic results
type DoctorReport struct {
	SystemRequirements []CheckResult  `json:"system_requirements"`
	Configuration      []CheckResult  `json:"configuration"`
	AWS                []CheckResult  `json:"aws"`
	Domains            []DomainStatus `json:"domains"`
}

// Problems counts error results.
func (r *DoctorReport) Problems() int {
	n := 0
	count := func(checks []CheckResult) {
		for _, c := range checks {
			if c.Status == output.StatusError {
				n++
			}
		}
	}
	count(r.SystemRequirements)
	count(r.Configuration)
	count(r.AWS)
	for _, d := range r.Domains {
		count(d.Checks)
	}
	return n
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	report := &DoctorReport{}

	cfg, env, err := loadConfig()
	if err != nil {
		report.Configuration = append(report.Configuration, CheckResult{
			Status:  output.StatusError,
			Message: fmt.Sprintf("Config %s: %v", env.ConfigPath, err),
		})
		// Certbot is still checked at its default path
		cfg = config.New()
	} else {
		report.Configuration = append(report.Configuration, CheckResult{
			Status:  output.StatusSuccess,
			Message: fmt.Sprintf("Config %s valid (%d domains)", env.ConfigPath, len(cfg.Domains)),
		})
	}

	renewer := deps.RenewerFactory.Create(cfg.Settings.CertbotPath)
	report.SystemRequirements = checkSystemRequirements(ctx, renewer)

	if len(cfg.Domains) > 0 {
		report.AWS = checkAWS(ctx, cfg)
		report.Domains = checkDomains(ctx, cfg, renewer, report.AWS)
	}

	if jsonOutput {
		if err := output.JSON(report); err != nil {
			return err
		}
	} else {
		displayDoctorResults(report)
	}

	if n := report.Problems(); n > 0 {
		return fmt.Errorf("doctor found %d problem(s)", n)
	}
	return nil
}

func checkSystemRequirements(ctx context.Context, renewer Renewer) []CheckResult {
	if !renewer.IsInstalled() {
		return []CheckResult{{
			Status:  output.StatusError,
			Message: fmt.Sprintf("Certbot not installed (%s)", renewer.Path()),
		}}
	}

	version, err := renewer.Version(ctx)
	if err != nil {
		version = "unknown"
	}
	return []CheckResult{{
		Status:  output.StatusSuccess,
		Message: fmt.Sprintf("Certbot installed (%s)", version),
	}}
}

func checkAWS(ctx context.Context, cfg *config.Config) []CheckResult {
	source, err := deps.RuleManagerFactory.VerifyCredentials(ctx, awsOptions(cfg))
	if err != nil {
		return []CheckResult{{
			Status:  output.StatusError,
			Message: fmt.Sprintf("AWS credentials: %v", err),
		}}
	}
	return []CheckResult{{
		Status:  output.StatusSuccess,
		Message: fmt.Sprintf("AWS credentials resolved (%s)", source),
	}}
}

func checkDomains(ctx context.Context, cfg *config.Config, renewer Renewer, awsChecks []CheckResult) []DomainStatus {
	now := deps.Clock()

	var managed map[string]bool
	if renewer.IsInstalled() {
		if names, err := renewer.Certificates(ctx); err == nil {
			managed = make(map[string]bool, len(names))
			for _, n := range names {
				managed[n] = true
			}
		}
	}

	var rules RuleManager
	if len(awsChecks) > 0 && awsChecks[0].Status == output.StatusSuccess {
		// Dry-run manager: only DescribeSecurityGroups is called
		rules, _ = deps.RuleManagerFactory.Create(ctx, awsOptions(cfg), true)
	}

	statuses := make([]DomainStatus, 0, len(cfg.Domains))
	for _, d := range cfg.Domains {
		status := DomainStatus{Domain: d.Name}

		path := cfg.CertPath(d)
		if st, err := deps.Checker.ReadyForRenewal(path, now, cfg.RenewalMargin()); err != nil {
			status.Checks = append(status.Checks, CheckResult{
				Status:  output.StatusError,
				Message: fmt.Sprintf("certificate unreadable: %v", err),
			})
		} else {
			result := CheckResult{
				Status:  output.StatusSuccess,
				Message: fmt.Sprintf("certificate expires in %s", output.Days(st.Remaining(now))),
			}
			if st.Due {
				result.Status = output.StatusWarning
				result.Message += ", due for renewal"
			}
			status.Checks = append(status.Checks, result)
		}

		if managed != nil && !managed[d.Name] {
			status.Checks = append(status.Checks, CheckResult{
				Status:  output.StatusWarning,
				Message: "no certbot certificate with this name",
			})
		}

		if rules != nil {
			rule := renewal.RuleFor(cfg, d)
			open, err := rules.HasIngressRule(ctx, rule)
			switch {
			case err != nil:
				status.Checks = append(status.Checks, CheckResult{
					Status:  output.StatusWarning,
					Message: fmt.Sprintf("could not inspect %s: %v", d.SecurityGroupID, err),
				})
			case open:
				status.Checks = append(status.Checks, CheckResult{
					Status:  output.StatusWarning,
					Message: fmt.Sprintf("verification port open: %s", rule),
				})
			}
		}

		statuses = append(statuses, status)
	}

	return statuses
}

func displayDoctorResults(report *DoctorReport) {
	output.Print("Checking system requirements...")
	for _, check := range report.SystemRequirements {
		output.Status(check.Status, "%s", check.Message)
	}
	output.Print("")

	output.Print("Checking configuration...")
	for _, check := range report.Configuration {
		output.Status(check.Status, "%s", check.Message)
	}
	output.Print("")

	if len(report.AWS) > 0 {
		output.Print("Checking AWS...")
		for _, check := range report.AWS {
			output.Status(check.Status, "%s", check.Message)
		}
		output.Print("")
	}

	if len(report.Domains) == 0 {
		output.Print("No domains configured")
		return
	}

	output.Print("Checking domains...")
	for _, d := range report.Domains {
		for _, check := range d.Checks {
			output.Status(check.Status, "%s - %s", d.Domain, check.Message)
		}
	}
}
