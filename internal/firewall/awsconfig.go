package firewall

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"

	apperrors "github.com/ksyq12/sgrenew/internal/errors"
)

// AWSOptions selects the credentials and endpoint used for EC2 calls.
// Empty fields fall back to the SDK's default chain (environment, shared
// config, instance profile).
type AWSOptions struct {
	Region   string
	Profile  string
	Endpoint string
}

// LoadAWSConfig builds the SDK config for opts.
func LoadAWSConfig(ctx context.Context, opts AWSOptions) (aws.Config, error) {
	var configOptions []func(*config.LoadOptions) error

	if opts.Region != "" {
		configOptions = append(configOptions, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		configOptions = append(configOptions, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeFirewall, "failed to load AWS config", err)
	}

	// Custom endpoint (LocalStack or a VPC endpoint)
	if opts.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(opts.Endpoint)
	}

	return cfg, nil
}

// VerifyCredentials resolves the credentials of cfg and returns their source
// (for example "EnvConfigCredentials" or "EC2RoleProvider").
func VerifyCredentials(ctx context.Context, cfg aws.Config) (string, error) {
	if cfg.Credentials == nil {
		return "", apperrors.Wrap(apperrors.ErrCodeFirewall, "no AWS credentials configured", nil)
	}
	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeFirewall, "failed to resolve AWS credentials", err)
	}
	if cfg.Region == "" {
		return creds.Source, apperrors.Wrap(apperrors.ErrCodeFirewall, "no AWS region configured", nil)
	}
	return creds.Source, nil
}
