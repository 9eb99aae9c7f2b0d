package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sgrenew/internal/logger"
	"github.com/ksyq12/sgrenew/internal/metrics"
	"github.com/ksyq12/sgrenew/internal/output"
	"github.com/ksyq12/sgrenew/internal/renewal"
)

var (
	dryRun      bool
	onlyDomains []string
	lockFile    string
	metricsFile string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Renew every certificate that is due",
	Long: `Check each configured domain and renew the certificates that expire
within the renewal margin (29 days by default).

For each due domain the verification port is opened on the domain's security
group, certbot renews the certificate, and the port is closed again, also when
certbot fails or the run is interrupted.

Examples:
  sgrenew run
  sgrenew run -c /etc/sgrenew/config.ini
  sgrenew run --domain example.com --dry-run
  sgrenew run --metrics-file /var/lib/node_exporter/textfile/sgrenew.prom`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Check expiry and AWS permissions without changing rules or running certbot")
	runCmd.Flags().StringArrayVarP(&onlyDomains, "domain", "d", nil, "Only process this domain (repeatable)")
	runCmd.Flags().StringVar(&lockFile, "lock-file", "", "Run lock file (default $SGRENEW_LOCK_FILE or /var/lock/sgrenew.lock)")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus textfile metrics here (default $SGRENEW_METRICS_FILE)")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, env, err := loadConfig()
	if err != nil {
		return err
	}
	cfg, err = cfg.Only(onlyDomains)
	if err != nil {
		return err
	}

	if lockFile != "" {
		env.LockFile = lockFile
	}
	if metricsFile != "" {
		env.MetricsFile = metricsFile
	}

	runLock, err := deps.Locker.Acquire(env.LockFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := runLock.Release(); err != nil {
			logger.LogError(err, "Failed to release run lock")
		}
	}()

	rules, err := deps.RuleManagerFactory.Create(ctx, awsOptions(cfg), dryRun)
	if err != nil {
		return err
	}

	wf := renewal.NewWorkflow(rules, deps.RenewerFactory.Create(cfg.Settings.CertbotPath))
	wf.Checker = deps.Checker
	wf.Sleeper = deps.Sleeper
	wf.Now = deps.Clock
	wf.DryRun = dryRun
	if env.MetricsFile != "" {
		wf.Metrics = metrics.NewRecorder()
	}

	report, runErr := wf.Run(ctx, cfg)

	if err := wf.Metrics.WriteTextfile(env.MetricsFile); err != nil {
		logger.LogError(err, "Failed to write metrics file")
	}

	if jsonOutput {
		if err := output.JSON(report); err != nil {
			return err
		}
	} else {
		displayRunReport(report)
	}

	if runErr != nil {
		return fmt.Errorf("%d of %d domain(s) failed: %w", report.Failed, len(cfg.Domains), runErr)
	}
	return nil
}

func displayRunReport(report renewal.Report) {
	for _, res := range report.Results {
		switch {
		case res.Err != nil:
			output.Error("%s: %s", res.Domain, res.Error)
		case res.Renewed:
			output.Success("%s renewed", res.Domain)
		case res.Due && report.DryRun:
			output.Info("%s due for renewal (dry run)", res.Domain)
		default:
			output.Print("  %s not due, expires %s", res.Domain, output.Date(res.NotAfter))
		}
	}
}
