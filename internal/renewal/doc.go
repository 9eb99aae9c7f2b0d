// Package renewal drives the per-domain renewal workflow:
//
//	check expiry -> (not due) -> done
//	     | (due)
//	     v
//	open ingress rule -> settle delay -> certbot renew -> close ingress rule -> done
//
// Domains are processed one after another. A failing domain is recorded in
// its Result and the run continues with the next; Run returns every failure
// combined with go.uber.org/multierr.
//
// The ingress rule is released with a deferred call as soon as it has been
// opened, so it is closed whether certbot succeeds, fails, or the run is
// interrupted during the settle delay. The release uses a context detached
// from the run's cancellation and bounded by CleanupTimeout.
//
// # Usage
//
//	wf := renewal.NewWorkflow(firewall.NewEC2Manager(awsCfg, false), ssl.NewCertbot("certbot", nil))
//	report, err := wf.Run(ctx, cfg)
//	if err != nil {
//	    // one or more domains failed; report.Results has the details
//	}
package renewal
