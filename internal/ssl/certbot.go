package ssl

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/ksyq12/sgrenew/internal/errors"
	"github.com/ksyq12/sgrenew/internal/executor"
	"github.com/ksyq12/sgrenew/internal/logger"
)

// Renewer renews the certificate of a single domain.
type Renewer interface {
	Renew(ctx context.Context, domain string) ([]byte, error)
}

// Certbot runs the certbot binary through a CommandExecutor.
type Certbot struct {
	path string
	exec executor.CommandExecutor
}

// NewCertbot creates a Certbot that invokes path (a name looked up on PATH
// or an absolute path). A nil exec uses the system executor.
func NewCertbot(path string, exec executor.CommandExecutor) *Certbot {
	if exec == nil {
		exec = executor.NewSystemExecutor()
	}
	return &Certbot{path: path, exec: exec}
}

// Path returns the configured certbot binary.
func (c *Certbot) Path() string {
	return c.path
}

// IsInstalled checks if certbot is installed
func (c *Certbot) IsInstalled() bool {
	_, err := c.exec.LookPath(c.path)
	return err == nil
}

// RenewArgs returns the certbot arguments that renew exactly one certificate
// without prompting.
func RenewArgs(domain string) []string {
	return []string{"-n", "--cert-name", domain, "renew"}
}

// Renew renews the certificate named domain and returns certbot's output,
// which is also logged verbatim. A non-zero exit is a RENEWAL error that
// carries the exit status.
func (c *Certbot) Renew(ctx context.Context, domain string) ([]byte, error) {
	if !c.IsInstalled() {
		return nil, apperrors.WrapDomain(apperrors.ErrCodeRenewal, domain,
			fmt.Sprintf("%s is not installed. Install it with: apt install certbot", c.path), nil)
	}

	output, err := c.exec.Execute(ctx, c.path, RenewArgs(domain)...)
	if text := strings.TrimRight(string(output), "\n"); text != "" {
		logger.Info("%s", text)
	}
	if err != nil {
		return output, apperrors.WrapDomain(apperrors.ErrCodeRenewal, domain,
			fmt.Sprintf("certbot exited with status %d", executor.ExitCode(err)), err)
	}
	return output, nil
}

var versionPattern = regexp.MustCompile(`certbot (\d+\.\d+\.\d+)`)

// Version returns the installed certbot version, or "unknown" when the
// output of --version cannot be parsed.
func (c *Certbot) Version(ctx context.Context) (string, error) {
	output, err := c.exec.Execute(ctx, c.path, "--version")
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeRenewal, "certbot --version failed", err)
	}
	if m := versionPattern.FindStringSubmatch(string(output)); len(m) >= 2 {
		return m[1], nil
	}
	return "unknown", nil
}

// Certificates returns the certificate names certbot manages.
func (c *Certbot) Certificates(ctx context.Context) ([]string, error) {
	if !c.IsInstalled() {
		return nil, apperrors.Wrap(apperrors.ErrCodeRenewal, "certbot is not installed", nil)
	}

	output, err := c.exec.Execute(ctx, c.path, "certificates")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeRenewal, fmt.Sprintf("certbot certificates failed: %s", string(output)), err)
	}

	// Parse output to extract certificate names
	var names []string
	lines := strings.Split(string(output), "\n")
	for _, line := range lines {
		if strings.Contains(line, "Certificate Name:") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				names = append(names, strings.TrimSpace(parts[1]))
			}
		}
	}

	return names, nil
}
