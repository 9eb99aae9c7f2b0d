// Package ssl invokes Certbot to renew Let's Encrypt certificates.
//
// Renewal is always scoped to a single certificate and never prompts:
//
//	certbot -n --cert-name example.com renew
//
// Certbot itself decides whether the certificate needs renewing and manages
// its own state under /etc/letsencrypt; this package only runs it, logs its
// output verbatim and turns a non-zero exit into an error.
//
// # Prerequisites
//
// Certbot must be installed on the system:
//
//	# Ubuntu/Debian
//	sudo apt install certbot
//
//	# Amazon Linux / RHEL
//	sudo dnf install certbot
//
// # Usage
//
//	cb := ssl.NewCertbot("certbot", nil)
//	if !cb.IsInstalled() {
//	    log.Fatal("certbot is not installed")
//	}
//
//	out, err := cb.Renew(ctx, "example.com")
//	if err != nil {
//	    // errors.Is(err, errors.ErrRenewal) == true
//	    // executor.ExitCode(err) holds certbot's exit status
//	}
//
// # Testing
//
// Pass an executor.MockExecutor to NewCertbot to script certbot's output
// and exit status:
//
//	mock := &executor.MockExecutor{
//	    ExecuteFunc: func(name string, args ...string) ([]byte, error) {
//	        return []byte("Challenge failed"), &executor.ExitError{Code: 1}
//	    },
//	}
//	cb := ssl.NewCertbot("certbot", mock)
//
// # Error Handling
//
// Common failure scenarios:
//   - Certbot not installed: check with IsInstalled() first
//   - Challenge failed: the verification port was not reachable yet
//   - Rate limiting: Let's Encrypt has strict limits
package ssl
