package firewall

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	apperrors "github.com/ksyq12/sgrenew/internal/errors"
)

func TestVerifyCredentials(t *testing.T) {
	static := aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{AccessKeyID: "AKID", SecretAccessKey: "secret", Source: "test"}, nil
	})
	failing := aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{}, errors.New("no EC2 IMDS role found")
	})

	tests := []struct {
		name       string
		cfg        aws.Config
		wantSource string
		wantErr    bool
	}{
		{"resolved", aws.Config{Region: "eu-west-1", Credentials: static}, "test", false},
		{"no provider", aws.Config{Region: "eu-west-1"}, "", true},
		{"provider fails", aws.Config{Region: "eu-west-1", Credentials: failing}, "", true},
		{"no region", aws.Config{Credentials: static}, "test", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := VerifyCredentials(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("VerifyCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.Is(err, apperrors.ErrFirewall) {
				t.Errorf("expected FIREWALL error, got %v", err)
			}
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
		})
	}
}

func TestLoadAWSConfig(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	cfg, err := LoadAWSConfig(context.Background(), AWSOptions{
		Region:   "eu-west-1",
		Endpoint: "http://localhost:4566",
	})
	if err != nil {
		t.Fatalf("LoadAWSConfig failed: %v", err)
	}
	if cfg.Region != "eu-west-1" {
		t.Errorf("region = %s, want eu-west-1", cfg.Region)
	}
	if aws.ToString(cfg.BaseEndpoint) != "http://localhost:4566" {
		t.Errorf("endpoint = %s", aws.ToString(cfg.BaseEndpoint))
	}
}
