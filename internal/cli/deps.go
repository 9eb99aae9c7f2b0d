package cli

import (
	"context"
	"time"

	"github.com/ksyq12/sgrenew/internal/cert"
	"github.com/ksyq12/sgrenew/internal/config"
	"github.com/ksyq12/sgrenew/internal/firewall"
	"github.com/ksyq12/sgrenew/internal/lock"
	"github.com/ksyq12/sgrenew/internal/renewal"
	"github.com/ksyq12/sgrenew/internal/ssl"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader       ConfigLoader
	RuleManagerFactory RuleManagerFactory
	RenewerFactory     RenewerFactory
	Locker             Locker
	Checker            cert.Checker
	Sleeper            renewal.Sleeper
	Clock              func() time.Time
}

// ConfigLoader reads the environment and the config file
type ConfigLoader interface {
	Env() (config.Env, error)
	Load(path string) (*config.Config, error)
}

// RuleManager is a firewall.Manager that can also look up a rule
type RuleManager interface {
	firewall.Manager
	HasIngressRule(ctx context.Context, rule firewall.Rule) (bool, error)
}

// RuleManagerFactory connects to the cloud provider
type RuleManagerFactory interface {
	Create(ctx context.Context, opts firewall.AWSOptions, dryRun bool) (RuleManager, error)
	VerifyCredentials(ctx context.Context, opts firewall.AWSOptions) (string, error)
}

// Renewer is the certbot surface used by the commands
type Renewer interface {
	ssl.Renewer
	Path() string
	IsInstalled() bool
	Version(ctx context.Context) (string, error)
	Certificates(ctx context.Context) ([]string, error)
}

// RenewerFactory creates a Renewer for the configured certbot binary
type RenewerFactory interface {
	Create(certbotPath string) Renewer
}

// Locker takes the run lock
type Locker interface {
	Acquire(path string) (Releaser, error)
}

// Releaser releases a held lock
type Releaser interface {
	Release() error
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:       &realConfigLoader{},
	RuleManagerFactory: &ec2ManagerFactory{},
	RenewerFactory:     &certbotFactory{},
	Locker:             &fileLocker{},
	Checker:            cert.NewFileChecker(),
	Sleeper:            renewal.ContextSleeper,
	Clock:              time.Now,
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Env() (config.Env, error) {
	return config.LoadEnv()
}

func (r *realConfigLoader) Load(path string) (*config.Config, error) {
	return config.Load(path)
}

type ec2ManagerFactory struct{}

func (f *ec2ManagerFactory) Create(ctx context.Context, opts firewall.AWSOptions, dryRun bool) (RuleManager, error) {
	cfg, err := firewall.LoadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return firewall.NewEC2Manager(cfg, dryRun), nil
}

func (f *ec2ManagerFactory) VerifyCredentials(ctx context.Context, opts firewall.AWSOptions) (string, error) {
	cfg, err := firewall.LoadAWSConfig(ctx, opts)
	if err != nil {
		return "", err
	}
	return firewall.VerifyCredentials(ctx, cfg)
}

type certbotFactory struct{}

func (f *certbotFactory) Create(certbotPath string) Renewer {
	return ssl.NewCertbot(certbotPath, nil)
}

type fileLocker struct{}

func (l *fileLocker) Acquire(path string) (Releaser, error) {
	rl, err := lock.Acquire(path)
	if err != nil {
		return nil, err
	}
	return rl, nil
}
