package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/ksyq12/sgrenew/internal/errors"
)

const sampleINI = `[Domains]
example.com
WWW.Example.org = yes

[example.com]
SecurityGroupId = sg-123
VerificationPort = 80

[www.example.org]
securitygroupid = sg-456
VerificationPort = 8080
CertPath = /srv/certs/www.pem
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadINI(t *testing.T) {
	path := writeFile(t, "config.ini", sampleINI)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Domains) != 2 {
		t.Fatalf("expected 2 domains, got %d", len(cfg.Domains))
	}

	first := cfg.Domains[0]
	if first.Name != "example.com" || first.SecurityGroupID != "sg-123" || first.VerificationPort != 80 {
		t.Errorf("unexpected first domain: %+v", first)
	}

	second := cfg.Domains[1]
	if second.Name != "www.example.org" {
		t.Errorf("expected lowercased name www.example.org, got %s", second.Name)
	}
	if second.SecurityGroupID != "sg-456" {
		t.Errorf("expected sg-456, got %s", second.SecurityGroupID)
	}
	if second.VerificationPort != 8080 {
		t.Errorf("expected 8080, got %d", second.VerificationPort)
	}

	t.Run("defaults applied", func(t *testing.T) {
		if cfg.Settings.RenewalMarginDays != DefaultRenewalMarginDays {
			t.Errorf("expected margin %d, got %d", DefaultRenewalMarginDays, cfg.Settings.RenewalMarginDays)
		}
		if cfg.Settings.SettleDelay != 15*time.Second {
			t.Errorf("expected 15s settle delay, got %v", cfg.Settings.SettleDelay)
		}
		if cfg.RenewalMargin() != 29*24*time.Hour {
			t.Errorf("unexpected margin duration: %v", cfg.RenewalMargin())
		}
		if cfg.Settings.SourceCIDR != "0.0.0.0/0" || cfg.Settings.Protocol != "tcp" {
			t.Errorf("unexpected rule defaults: %+v", cfg.Settings)
		}
	})

	t.Run("cert paths are per domain", func(t *testing.T) {
		if got := cfg.CertPath(first); got != "/etc/letsencrypt/live/example.com/cert.pem" {
			t.Errorf("unexpected cert path: %s", got)
		}
		if got := cfg.CertPath(second); got != "/srv/certs/www.pem" {
			t.Errorf("unexpected override cert path: %s", got)
		}
	})
}

func TestLoadINISettings(t *testing.T) {
	content := sampleINI + `
[Settings]
RenewalMarginDays = 10
SettleDelay = 30
CertbotPath = /opt/certbot/bin/certbot
CertDir = /srv/le
SourceCidr = 10.0.0.0/8
Region = eu-west-1
`
	cfg, err := Load(writeFile(t, "config.ini", content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s := cfg.Settings
	if s.RenewalMarginDays != 10 {
		t.Errorf("expected margin 10, got %d", s.RenewalMarginDays)
	}
	if s.SettleDelay != 30*time.Second {
		t.Errorf("expected 30s, got %v", s.SettleDelay)
	}
	if s.CertbotPath != "/opt/certbot/bin/certbot" {
		t.Errorf("unexpected certbot path %s", s.CertbotPath)
	}
	if s.SourceCIDR != "10.0.0.0/8" {
		t.Errorf("unexpected cidr %s", s.SourceCIDR)
	}
	if s.Region != "eu-west-1" {
		t.Errorf("unexpected region %s", s.Region)
	}
	if got := cfg.CertPath(cfg.Domains[0]); got != "/srv/le/example.com/cert.pem" {
		t.Errorf("unexpected cert path %s", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing domains section", "[example.com]\nSecurityGroupId = sg-1\nVerificationPort = 80\n"},
		{"missing domain section", "[Domains]\nexample.com\n"},
		{"missing group id", "[Domains]\nexample.com\n[example.com]\nVerificationPort = 80\n"},
		{"missing port", "[Domains]\nexample.com\n[example.com]\nSecurityGroupId = sg-1\n"},
		{"non-numeric port", "[Domains]\nexample.com\n[example.com]\nSecurityGroupId = sg-1\nVerificationPort = http\n"},
		{"port zero", "[Domains]\nexample.com\n[example.com]\nSecurityGroupId = sg-1\nVerificationPort = 0\n"},
		{"port too large", "[Domains]\nexample.com\n[example.com]\nSecurityGroupId = sg-1\nVerificationPort = 65536\n"},
		{"empty domain list", "[Domains]\n"},
		{"bad settle delay", sampleINI + "[Settings]\nSettleDelay = soon\n"},
		{"bad margin", sampleINI + "[Settings]\nRenewalMarginDays = month\n"},
		{"bad protocol", sampleINI + "[Settings]\nProtocol = icmp\n"},
		{"bad cidr", sampleINI + "[Settings]\nSourceCidr = everywhere\n"},
		{"group id from parent-like section", "[Domains]\nexample.com\nexample.com.au\n[example.com]\nSecurityGroupId = sg-111\nVerificationPort = 80\n[example.com.au]\nVerificationPort = 8080\n"},
		{"port from parent-like section", "[Domains]\nexample.com\nwww.example.com\n[example.com]\nSecurityGroupId = sg-111\nVerificationPort = 80\n[www.example.com]\nSecurityGroupId = sg-222\n"},
		{"relative cert path", "[Domains]\nexample.com\n[example.com]\nSecurityGroupId = sg-1\nVerificationPort = 80\nCertPath = cert.pem\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.ini", tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.Is(err, apperrors.ErrConfigInvalid) {
				t.Errorf("expected CONFIG error, got %v", err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
		if !apperrors.Is(err, apperrors.ErrConfigInvalid) {
			t.Errorf("expected CONFIG error, got %v", err)
		}
	})
}

func TestParseININestedNames(t *testing.T) {
	content := `[Domains]
example.com
example.com.au

[example.com]
SecurityGroupId = sg-111
VerificationPort = 80
CertPath = /srv/certs/example.pem

[example.com.au]
SecurityGroupId = sg-222
VerificationPort = 8080
`
	cfg, err := ParseINI([]byte(content))
	if err != nil {
		t.Fatalf("ParseINI failed: %v", err)
	}
	if len(cfg.Domains) != 2 {
		t.Fatalf("expected 2 domains, got %d", len(cfg.Domains))
	}

	au := cfg.Domains[1]
	if au.Name != "example.com.au" || au.SecurityGroupID != "sg-222" || au.VerificationPort != 8080 {
		t.Errorf("unexpected domain: %+v", au)
	}
	if au.CertPath != "" {
		t.Errorf("CertPath leaked from example.com: %s", au.CertPath)
	}
}

func TestLoadYAML(t *testing.T) {
	content := `settings:
  renewal_margin_days: 14
  settle_delay: 5s
domains:
  - name: Example.com
    security_group_id: sg-123
    verification_port: 80
`
	cfg, err := Load(writeFile(t, "config.yaml", content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Domains) != 1 || cfg.Domains[0].Name != "example.com" {
		t.Fatalf("unexpected domains: %+v", cfg.Domains)
	}
	if cfg.Settings.RenewalMarginDays != 14 {
		t.Errorf("expected margin 14, got %d", cfg.Settings.RenewalMarginDays)
	}
	if cfg.Settings.SettleDelay != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.Settings.SettleDelay)
	}
	if cfg.Settings.CertbotPath != DefaultCertbotPath {
		t.Errorf("default certbot path not applied: %s", cfg.Settings.CertbotPath)
	}
}

func TestValidateDuplicate(t *testing.T) {
	cfg := New()
	cfg.Domains = []Domain{
		{Name: "example.com", SecurityGroupID: "sg-1", VerificationPort: 80},
		{Name: "example.com", SecurityGroupID: "sg-2", VerificationPort: 80},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for duplicate domain")
	}
}

func TestValidateDomainName(t *testing.T) {
	tests := []struct {
		name    string
		domain  string
		wantErr bool
	}{
		{"valid simple domain", "example.com", false},
		{"valid subdomain", "www.example.com", false},
		{"valid with hyphen", "my-site.example.com", false},
		{"empty domain", "", true},
		{"domain with space", "example .com", true},
		{"domain with slash", "../etc", true},
		{"starts with hyphen", "-example.com", true},
		{"ends with hyphen", "example.com-", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDomainName(tt.domain)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateDomainName(%q) error = %v, wantErr %v", tt.domain, err, tt.wantErr)
			}
		})
	}
}

func TestOnly(t *testing.T) {
	cfg, err := ParseINI([]byte(sampleINI))
	if err != nil {
		t.Fatalf("ParseINI failed: %v", err)
	}

	t.Run("empty selection keeps all", func(t *testing.T) {
		out, err := cfg.Only(nil)
		if err != nil {
			t.Fatalf("Only failed: %v", err)
		}
		if len(out.Domains) != 2 {
			t.Errorf("expected 2 domains, got %d", len(out.Domains))
		}
	})

	t.Run("subset", func(t *testing.T) {
		out, err := cfg.Only([]string{"WWW.example.org"})
		if err != nil {
			t.Fatalf("Only failed: %v", err)
		}
		if len(out.Domains) != 1 || out.Domains[0].Name != "www.example.org" {
			t.Errorf("unexpected domains: %+v", out.Domains)
		}
		if len(cfg.Domains) != 2 {
			t.Error("Only must not modify the receiver")
		}
	})

	t.Run("unknown domain", func(t *testing.T) {
		if _, err := cfg.Only([]string{"other.com"}); err == nil {
			t.Error("expected error for unknown domain")
		}
	})
}

func TestParseDelay(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"15", 15 * time.Second, false},
		{"15s", 15 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"0", 0, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDelay(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDelay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseDelay(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("SGRENEW_CONFIG", "")
		os.Unsetenv("SGRENEW_CONFIG")
		e, err := LoadEnv()
		if err != nil {
			t.Fatalf("LoadEnv failed: %v", err)
		}
		if e.ConfigPath != "config.ini" {
			t.Errorf("expected config.ini, got %s", e.ConfigPath)
		}
		if e.LockFile != "/var/lock/sgrenew.lock" {
			t.Errorf("unexpected lock file %s", e.LockFile)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("SGRENEW_CONFIG", "/etc/sgrenew/config.yaml")
		t.Setenv("SGRENEW_METRICS_FILE", "/var/lib/node_exporter/sgrenew.prom")
		e, err := LoadEnv()
		if err != nil {
			t.Fatalf("LoadEnv failed: %v", err)
		}
		if e.ConfigPath != "/etc/sgrenew/config.yaml" {
			t.Errorf("unexpected config path %s", e.ConfigPath)
		}
		if e.MetricsFile != "/var/lib/node_exporter/sgrenew.prom" {
			t.Errorf("unexpected metrics file %s", e.MetricsFile)
		}
	})
}
