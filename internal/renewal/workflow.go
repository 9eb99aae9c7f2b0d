package renewal

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"github.com/ksyq12/sgrenew/internal/cert"
	"github.com/ksyq12/sgrenew/internal/config"
	apperrors "github.com/ksyq12/sgrenew/internal/errors"
	"github.com/ksyq12/sgrenew/internal/firewall"
	"github.com/ksyq12/sgrenew/internal/logger"
	"github.com/ksyq12/sgrenew/internal/metrics"
	"github.com/ksyq12/sgrenew/internal/ssl"
)

// DefaultCleanupTimeout bounds the rule removal after an interrupted run.
const DefaultCleanupTimeout = 30 * time.Second

// Workflow renews the configured domains. The zero value is not usable;
// create one with NewWorkflow and override fields as needed.
type Workflow struct {
	Checker cert.Checker
	Rules   firewall.Manager
	Renewer ssl.Renewer
	Sleeper Sleeper
	Metrics *metrics.Recorder // optional
	Now     func() time.Time

	// DryRun checks expiry and sends the rule requests (which the manager
	// is expected to issue as permission checks only), but skips the settle
	// delay and certbot.
	DryRun bool

	CleanupTimeout time.Duration
}

// NewWorkflow creates a Workflow that reads certificates from disk and
// sleeps for real.
func NewWorkflow(rules firewall.Manager, renewer ssl.Renewer) *Workflow {
	return &Workflow{
		Checker:        cert.NewFileChecker(),
		Rules:          rules,
		Renewer:        renewer,
		Sleeper:        ContextSleeper,
		Now:            time.Now,
		CleanupTimeout: DefaultCleanupTimeout,
	}
}

// Result is the outcome of one domain.
type Result struct {
	Domain   string    `json:"domain"`
	CertPath string    `json:"cert_path"`
	NotAfter time.Time `json:"not_after,omitempty"`
	Due      bool      `json:"due"`
	Renewed  bool      `json:"renewed"`
	Error    string    `json:"error,omitempty"`
	Err      error     `json:"-"`
}

// Report summarises a run.
type Report struct {
	Results []Result `json:"results"`
	Renewed int      `json:"renewed"`
	Failed  int      `json:"failed"`
	DryRun  bool     `json:"dry_run,omitempty"`
}

// Run processes every domain of cfg in order. It returns the combined
// error of all failed domains; a cancelled ctx stops the run before the
// next domain.
func (w *Workflow) Run(ctx context.Context, cfg *config.Config) (Report, error) {
	report := Report{DryRun: w.DryRun}
	var errs error

	for _, d := range cfg.Domains {
		if err := ctx.Err(); err != nil {
			logger.Warn("Run interrupted, skipping remaining domains")
			errs = multierr.Append(errs, apperrors.Wrap(apperrors.ErrCodeInternal, "run interrupted", err))
			break
		}

		res := w.ProcessDomain(ctx, cfg, d)
		report.Results = append(report.Results, res)
		if res.Renewed {
			report.Renewed++
		}
		if res.Err != nil {
			report.Failed++
			errs = multierr.Append(errs, res.Err)
		}
	}

	w.Metrics.RunCompleted(w.now())
	logger.InfoFields("Run finished", map[string]interface{}{
		"domains": len(cfg.Domains),
		"renewed": report.Renewed,
		"failed":  report.Failed,
	})
	return report, errs
}

// ProcessDomain runs the workflow for a single domain. Failures are
// logged with the domain and returned in the Result.
func (w *Workflow) ProcessDomain(ctx context.Context, cfg *config.Config, d config.Domain) Result {
	logger.Info("Processing domain: %s", d.Name)

	res := Result{Domain: d.Name, CertPath: cfg.CertPath(d)}

	status, err := w.Checker.ReadyForRenewal(res.CertPath, w.now(), cfg.RenewalMargin())
	if err != nil {
		return w.fail(res, apperrors.WrapDomain(apperrors.CodeOf(err), d.Name, "certificate check failed", err))
	}
	res.NotAfter = status.NotAfter
	res.Due = status.Due
	w.Metrics.ObserveExpiry(d.Name, status.NotAfter)

	days := cfg.Settings.RenewalMarginDays
	if status.Due {
		logger.Info("Cert expiring in less than %d days: %s", days, status.NotAfter.UTC())
	} else {
		logger.Info("Cert not expiring in less than %d days: %s", days, status.NotAfter.UTC())
	}

	if !status.Due {
		w.Metrics.RenewalAttempt(d.Name, metrics.ResultSkipped)
		logger.Info("Finished processing domain: %s (no renewal needed)", d.Name)
		return res
	}

	renewed, err := w.renew(ctx, cfg, d)
	res.Renewed = renewed
	if err != nil {
		return w.fail(res, err)
	}

	logger.Info("Finished processing domain: %s", d.Name)
	return res
}

// renew opens the verification port, runs certbot and closes the port.
// The returned error combines the renewal and the release failures.
func (w *Workflow) renew(ctx context.Context, cfg *config.Config, d config.Domain) (renewed bool, err error) {
	rule := RuleFor(cfg, d)

	logger.Info("Executing renew script for %s on security group %s, port %d", d.Name, d.SecurityGroupID, d.VerificationPort)

	logger.Info("Adding ingress rule %s", rule)
	release, err := firewall.Open(ctx, w.Rules, rule)
	w.Metrics.RuleOperation(metrics.OperationAdd, err)
	if err != nil {
		return false, apperrors.WrapDomain(apperrors.CodeOf(err), d.Name, "failed to open verification port", err)
	}

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cleanupTimeout())
		defer cancel()

		logger.Info("Removing ingress rule %s", rule)
		releaseErr := release(cleanupCtx)
		w.Metrics.RuleOperation(metrics.OperationRemove, releaseErr)
		if releaseErr != nil {
			logger.ErrorFields("Verification port may still be open", map[string]interface{}{
				"domain": d.Name,
				"rule":   rule.String(),
			})
			err = multierr.Append(err, apperrors.WrapDomain(apperrors.CodeOf(releaseErr), d.Name, "failed to close verification port", releaseErr))
		}
	}()

	if w.DryRun {
		logger.Info("Dry run: skipping settle delay and certbot for %s", d.Name)
		w.Metrics.RenewalAttempt(d.Name, metrics.ResultSkipped)
		return false, nil
	}

	delay := cfg.Settings.SettleDelay
	logger.Info("Sleeping for %d seconds to allow security group to update...", int(delay/time.Second))
	if err := w.Sleeper.Sleep(ctx, delay); err != nil {
		return false, apperrors.WrapDomain(apperrors.ErrCodeInternal, d.Name, "interrupted while waiting for security group", err)
	}

	if _, err := w.Renewer.Renew(ctx, d.Name); err != nil {
		w.Metrics.RenewalAttempt(d.Name, metrics.ResultError)
		return false, err
	}
	w.Metrics.RenewalAttempt(d.Name, metrics.ResultSuccess)
	return true, nil
}

// RuleFor returns the ingress rule that opens d's verification port.
func RuleFor(cfg *config.Config, d config.Domain) firewall.Rule {
	return firewall.Rule{
		GroupID:  d.SecurityGroupID,
		CIDR:     cfg.Settings.SourceCIDR,
		Port:     int32(d.VerificationPort),
		Protocol: cfg.Settings.Protocol,
	}
}

func (w *Workflow) fail(res Result, err error) Result {
	res.Err = err
	res.Error = err.Error()

	for _, e := range multierr.Errors(err) {
		code := apperrors.CodeOf(e)
		w.Metrics.DomainFailed(res.Domain, string(code))
		logger.ErrorFields(e.Error(), map[string]interface{}{
			"domain": res.Domain,
			"code":   code,
		})
	}
	return res
}

func (w *Workflow) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

func (w *Workflow) cleanupTimeout() time.Duration {
	if w.CleanupTimeout <= 0 {
		return DefaultCleanupTimeout
	}
	return w.CleanupTimeout
}
