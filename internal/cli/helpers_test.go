package cli

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/ksyq12/sgrenew/internal/cert/certtest"
	"github.com/ksyq12/sgrenew/internal/config"
	"github.com/ksyq12/sgrenew/internal/logger"
	"github.com/ksyq12/sgrenew/internal/output"
)

var testNow = time.Date(2026, 10, 17, 3, 0, 0, 0, time.UTC)

func init() {
	color.NoColor = true
}

// useDeps installs d, resets the command flags and captures output.
// The returned buffer holds everything written through the output package.
func useDeps(t *testing.T, d *Dependencies) *bytes.Buffer {
	t.Helper()

	oldDeps := deps
	deps = d

	jsonOutput, configPath = false, ""
	dryRun, onlyDomains, lockFile, metricsFile = false, nil, "", ""

	var buf bytes.Buffer
	output.SetOutput(&buf)
	logger.SetOutput(io.Discard)

	t.Cleanup(func() {
		deps = oldDeps
		jsonOutput, configPath = false, ""
		dryRun, onlyDomains, lockFile, metricsFile = false, nil, "", ""
		output.SetOutput(nil)
		logger.SetOutput(nil)
	})
	return &buf
}

// testConfig returns a validated config with one certificate per domain in
// a temp CertDir, each expiring at testNow plus its offset. Domains without
// an offset get no certificate.
func testConfig(t *testing.T, domains []string, expiries map[string]time.Duration) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.New()
	cfg.Settings.CertDir = dir
	cfg.Settings.Region = "eu-west-1"

	for i, name := range domains {
		if offset, ok := expiries[name]; ok {
			certtest.Write(t, dir, name, testNow.Add(offset))
		}
		cfg.Domains = append(cfg.Domains, config.Domain{
			Name:             name,
			SecurityGroupID:  []string{"sg-123", "sg-456", "sg-789"}[i%3],
			VerificationPort: 80,
		})
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return cfg
}

const day = 24 * time.Hour
