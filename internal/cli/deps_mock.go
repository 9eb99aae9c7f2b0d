package cli

import (
	"context"
	"errors"
	"time"

	"github.com/ksyq12/sgrenew/internal/cert"
	"github.com/ksyq12/sgrenew/internal/config"
	apperrors "github.com/ksyq12/sgrenew/internal/errors"
	"github.com/ksyq12/sgrenew/internal/firewall"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg         *config.Config
	EnvValue    config.Env
	EnvErr      error
	LoadErr     error
	LoadedPaths []string
}

func (m *MockConfigLoader) Env() (config.Env, error) {
	if m.EnvErr != nil {
		return config.Env{}, m.EnvErr
	}
	return m.EnvValue, nil
}

func (m *MockConfigLoader) Load(path string) (*config.Config, error) {
	m.LoadedPaths = append(m.LoadedPaths, path)
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

// MockRuleManagerFactory is a test double for RuleManagerFactory
type MockRuleManagerFactory struct {
	Manager   *firewall.MockManager
	Err       error
	VerifyErr error
	Source    string
	Opts      []firewall.AWSOptions
	DryRuns   []bool
}

func (m *MockRuleManagerFactory) Create(ctx context.Context, opts firewall.AWSOptions, dryRun bool) (RuleManager, error) {
	m.Opts = append(m.Opts, opts)
	m.DryRuns = append(m.DryRuns, dryRun)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Manager == nil {
		m.Manager = firewall.NewMockManager()
	}
	return m.Manager, nil
}

func (m *MockRuleManagerFactory) VerifyCredentials(ctx context.Context, opts firewall.AWSOptions) (string, error) {
	if m.VerifyErr != nil {
		return "", m.VerifyErr
	}
	if m.Source == "" {
		return "EnvConfigCredentials", nil
	}
	return m.Source, nil
}

// MockRenewer is a test double for Renewer
type MockRenewer struct {
	BinPath       string
	NotInstalled  bool
	VersionString string
	Certs         []string
	RenewErr      map[string]error
	Renewed       []string
}

func (m *MockRenewer) Renew(ctx context.Context, domain string) ([]byte, error) {
	m.Renewed = append(m.Renewed, domain)
	if err := m.RenewErr[domain]; err != nil {
		return nil, err
	}
	return []byte("Congratulations, all renewals succeeded"), nil
}

func (m *MockRenewer) Path() string {
	return m.BinPath
}

func (m *MockRenewer) IsInstalled() bool {
	return !m.NotInstalled
}

func (m *MockRenewer) Version(ctx context.Context) (string, error) {
	if m.VersionString == "" {
		return "2.9.0", nil
	}
	return m.VersionString, nil
}

func (m *MockRenewer) Certificates(ctx context.Context) ([]string, error) {
	if m.NotInstalled {
		return nil, errors.New("certbot is not installed")
	}
	return m.Certs, nil
}

// MockRenewerFactory always returns Renewer
type MockRenewerFactory struct {
	Renewer *MockRenewer
}

func (m *MockRenewerFactory) Create(certbotPath string) Renewer {
	if m.Renewer == nil {
		m.Renewer = &MockRenewer{}
	}
	m.Renewer.BinPath = certbotPath
	return m.Renewer
}

// MockLocker is a test double for Locker
type MockLocker struct {
	Held     bool
	Err      error
	Acquired []string
	Released int
}

func (m *MockLocker) Acquire(path string) (Releaser, error) {
	m.Acquired = append(m.Acquired, path)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Held {
		return nil, apperrors.Wrap(apperrors.ErrCodeLock, "another run is in progress", nil)
	}
	m.Held = true
	return &mockRelease{locker: m}, nil
}

type mockRelease struct {
	locker *MockLocker
}

func (r *mockRelease) Release() error {
	r.locker.Released++
	r.locker.Held = false
	return nil
}

// MockSleeper records the requested delays and returns immediately
type MockSleeper struct {
	Delays []time.Duration
	Err    error
}

func (m *MockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	m.Delays = append(m.Delays, d)
	return m.Err
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults.
// Certificates are read from disk; the clock is fixed.
func NewMockDeps(now time.Time) *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader: &MockConfigLoader{
				Cfg: config.New(),
				EnvValue: config.Env{
					ConfigPath: "config.ini",
					LockFile:   "/var/lock/sgrenew.lock",
				},
			},
			RuleManagerFactory: &MockRuleManagerFactory{},
			RenewerFactory:     &MockRenewerFactory{},
			Locker:             &MockLocker{},
			Checker:            cert.NewFileChecker(),
			Sleeper:            &MockSleeper{},
			Clock:              func() time.Time { return now },
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader.(*MockConfigLoader).Cfg = cfg
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithRuleManagerFactory sets a custom rule manager factory
func (b *MockDependenciesBuilder) WithRuleManagerFactory(f RuleManagerFactory) *MockDependenciesBuilder {
	b.deps.RuleManagerFactory = f
	return b
}

// WithRenewer sets the renewer returned by the factory
func (b *MockDependenciesBuilder) WithRenewer(r *MockRenewer) *MockDependenciesBuilder {
	b.deps.RenewerFactory = &MockRenewerFactory{Renewer: r}
	return b
}

// WithLocker sets a custom locker
func (b *MockDependenciesBuilder) WithLocker(l Locker) *MockDependenciesBuilder {
	b.deps.Locker = l
	return b
}

// WithSleeper sets a custom sleeper
func (b *MockDependenciesBuilder) WithSleeper(s *MockSleeper) *MockDependenciesBuilder {
	b.deps.Sleeper = s
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}
