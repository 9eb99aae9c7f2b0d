package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	apperrors "github.com/ksyq12/sgrenew/internal/errors"
)

// Default values applied when a setting is absent.
const (
	DefaultRenewalMarginDays = 29
	DefaultSettleDelay       = 15 * time.Second
	DefaultCertbotPath       = "certbot"
	DefaultCertDir           = "/etc/letsencrypt/live"
	DefaultSourceCIDR        = "0.0.0.0/0"
	DefaultProtocol          = "tcp"
	certFile                 = "cert.pem"
)

// INI section names.
const (
	domainsSection  = "domains"
	settingsSection = "settings"
)

// Domain is one certificate to keep renewed and the security group
// that guards its verification port.
type Domain struct {
	Name             string `yaml:"name"`
	SecurityGroupID  string `yaml:"security_group_id"`
	VerificationPort int    `yaml:"verification_port"`
	CertPath         string `yaml:"cert_path,omitempty"`
}

// Settings holds run-wide tunables.
type Settings struct {
	RenewalMarginDays int           `yaml:"renewal_margin_days"`
	SettleDelay       time.Duration `yaml:"settle_delay"`
	CertbotPath       string        `yaml:"certbot_path"`
	CertDir           string        `yaml:"cert_dir"`
	SourceCIDR        string        `yaml:"source_cidr"`
	Protocol          string        `yaml:"protocol"`
	Region            string        `yaml:"region,omitempty"`
	Profile           string        `yaml:"profile,omitempty"`
	Endpoint          string        `yaml:"endpoint,omitempty"`
}

// Config is the immutable result of loading a configuration file.
type Config struct {
	Settings Settings `yaml:"settings"`
	Domains  []Domain `yaml:"domains"`
}

// New creates a Config with default settings and no domains.
func New() *Config {
	return &Config{
		Settings: Settings{
			RenewalMarginDays: DefaultRenewalMarginDays,
			SettleDelay:       DefaultSettleDelay,
			CertbotPath:       DefaultCertbotPath,
			CertDir:           DefaultCertDir,
			SourceCIDR:        DefaultSourceCIDR,
			Protocol:          DefaultProtocol,
		},
	}
}

// Load reads and validates the config file at path. Files ending in
// .yaml or .yml are decoded as YAML, everything else as INI.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfig, "failed to read config", err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	default:
		cfg, err = ParseINI(data)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseINI decodes the INI layout:
//
//	[Domains]
//	example.com
//
//	[example.com]
//	SecurityGroupId = sg-123
//	VerificationPort = 80
//
// Section and key names are case-insensitive; domain order follows the file.
// Sections never inherit keys: [example.com.au] does not read [example.com].
func ParseINI(data []byte) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:      true,
		AllowBooleanKeys: true,

		// Domain names are dotted; "/" is rejected by validateDomainName.
		ChildSectionDelimiter: "/",
	}, data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfig, "failed to parse config", err)
	}

	cfg := New()

	if sec, err := f.GetSection(settingsSection); err == nil {
		if err := parseSettings(sec, &cfg.Settings); err != nil {
			return nil, err
		}
	}

	domains, err := f.GetSection(domainsSection)
	if err != nil {
		return nil, apperrors.Configf("missing [Domains] section")
	}

	for _, key := range domains.Keys() {
		name := key.Name()
		sec, err := f.GetSection(name)
		if err != nil {
			return nil, apperrors.Configf("domain %s has no [%s] section", name, name)
		}

		d := Domain{
			Name:            name,
			SecurityGroupID: strings.TrimSpace(sec.Key("SecurityGroupId").String()),
			CertPath:        strings.TrimSpace(sec.Key("CertPath").String()),
		}

		if !sec.HasKey("VerificationPort") {
			return nil, apperrors.Configf("domain %s: missing VerificationPort", name)
		}
		port, err := sec.Key("VerificationPort").Int()
		if err != nil {
			return nil, apperrors.Configf("domain %s: VerificationPort must be a number", name)
		}
		d.VerificationPort = port

		cfg.Domains = append(cfg.Domains, d)
	}

	return cfg, nil
}

func parseSettings(sec *ini.Section, s *Settings) error {
	if sec.HasKey("RenewalMarginDays") {
		days, err := sec.Key("RenewalMarginDays").Int()
		if err != nil {
			return apperrors.Configf("RenewalMarginDays must be a number of days")
		}
		s.RenewalMarginDays = days
	}

	if sec.HasKey("SettleDelay") {
		d, err := parseDelay(sec.Key("SettleDelay").String())
		if err != nil {
			return apperrors.Configf("SettleDelay: %v", err)
		}
		s.SettleDelay = d
	}

	stringKeys := map[string]*string{
		"CertbotPath": &s.CertbotPath,
		"CertDir":     &s.CertDir,
		"SourceCidr":  &s.SourceCIDR,
		"Protocol":    &s.Protocol,
		"Region":      &s.Region,
		"Profile":     &s.Profile,
		"Endpoint":    &s.Endpoint,
	}
	for key, dst := range stringKeys {
		if v := strings.TrimSpace(sec.Key(key).String()); v != "" {
			*dst = v
		}
	}

	return nil
}

// parseDelay accepts a Go duration ("15s") or a bare number of seconds ("15").
func parseDelay(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return d, nil
}

// ParseYAML decodes the YAML layout into a Config with defaults applied.
func ParseYAML(data []byte) (*Config, error) {
	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfig, "failed to parse config", err)
	}
	for i := range cfg.Domains {
		cfg.Domains[i].Name = strings.ToLower(strings.TrimSpace(cfg.Domains[i].Name))
	}
	return cfg, nil
}

// Validate checks every domain entry and setting.
func (c *Config) Validate() error {
	if len(c.Domains) == 0 {
		return apperrors.Configf("no domains configured")
	}

	seen := make(map[string]bool, len(c.Domains))
	for _, d := range c.Domains {
		if err := validateDomainName(d.Name); err != nil {
			return apperrors.Configf("domain %q: %v", d.Name, err)
		}
		if seen[d.Name] {
			return apperrors.Configf("domain %s listed twice", d.Name)
		}
		seen[d.Name] = true

		if d.SecurityGroupID == "" {
			return apperrors.Configf("domain %s: SecurityGroupId is required", d.Name)
		}
		if d.VerificationPort < 1 || d.VerificationPort > 65535 {
			return apperrors.Configf("domain %s: VerificationPort %d out of range 1-65535", d.Name, d.VerificationPort)
		}
		if d.CertPath != "" && !filepath.IsAbs(d.CertPath) {
			return apperrors.Configf("domain %s: CertPath must be absolute: %s", d.Name, d.CertPath)
		}
	}

	s := c.Settings
	if s.RenewalMarginDays < 0 {
		return apperrors.Configf("RenewalMarginDays cannot be negative")
	}
	if s.SettleDelay < 0 {
		return apperrors.Configf("SettleDelay cannot be negative")
	}
	if s.Protocol != "tcp" && s.Protocol != "udp" {
		return apperrors.Configf("Protocol must be tcp or udp, got %q", s.Protocol)
	}
	if _, _, err := net.ParseCIDR(s.SourceCIDR); err != nil {
		return apperrors.Configf("SourceCidr %q is not a valid CIDR block", s.SourceCIDR)
	}
	if s.CertbotPath == "" {
		return apperrors.Configf("CertbotPath cannot be empty")
	}

	return nil
}

// validateDomainName checks if domain is valid
func validateDomainName(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain cannot be empty")
	}
	if strings.ContainsAny(domain, " \t/") {
		return fmt.Errorf("domain cannot contain spaces or slashes")
	}
	if strings.HasPrefix(domain, "-") || strings.HasSuffix(domain, "-") {
		return fmt.Errorf("domain cannot start or end with hyphen")
	}
	return nil
}

// RenewalMargin returns the renewal window as a duration.
func (c *Config) RenewalMargin() time.Duration {
	return time.Duration(c.Settings.RenewalMarginDays) * 24 * time.Hour
}

// CertPath returns the certificate file checked for d.
func (c *Config) CertPath(d Domain) string {
	if d.CertPath != "" {
		return d.CertPath
	}
	return filepath.Join(c.Settings.CertDir, d.Name, certFile)
}

// Domain returns the entry for name.
func (c *Config) Domain(name string) (Domain, bool) {
	name = strings.ToLower(name)
	for _, d := range c.Domains {
		if d.Name == name {
			return d, true
		}
	}
	return Domain{}, false
}

// Only returns a copy of c restricted to names, in configuration order.
// An empty names list returns c unchanged.
func (c *Config) Only(names []string) (*Config, error) {
	if len(names) == 0 {
		return c, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.ToLower(n)
		if _, ok := c.Domain(n); !ok {
			return nil, apperrors.Configf("domain %s is not configured", n)
		}
		want[n] = true
	}

	out := &Config{Settings: c.Settings}
	for _, d := range c.Domains {
		if want[d.Name] {
			out.Domains = append(out.Domains, d)
		}
	}
	return out, nil
}
