package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sgrenew/internal/config"
	"github.com/ksyq12/sgrenew/internal/firewall"
)

// loadEnv reads the environment and applies flag overrides
func loadEnv() (config.Env, error) {
	env, err := deps.ConfigLoader.Env()
	if err != nil {
		return env, err
	}
	if configPath != "" {
		env.ConfigPath = configPath
	}
	return env, nil
}

// loadConfig resolves the config path and loads the file
func loadConfig() (*config.Config, config.Env, error) {
	env, err := loadEnv()
	if err != nil {
		return nil, env, err
	}
	cfg, err := deps.ConfigLoader.Load(env.ConfigPath)
	if err != nil {
		return nil, env, err
	}
	return cfg, env, nil
}

// awsOptions extracts the AWS overrides from the settings
func awsOptions(cfg *config.Config) firewall.AWSOptions {
	return firewall.AWSOptions{
		Region:   cfg.Settings.Region,
		Profile:  cfg.Settings.Profile,
		Endpoint: cfg.Settings.Endpoint,
	}
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute (tests)
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
