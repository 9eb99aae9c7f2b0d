package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ksyq12/sgrenew/internal/logger"
)

var (
	jsonOutput bool
	verbose    bool
	configPath string
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sgrenew",
	Short: "Renew Let's Encrypt certificates behind a closed EC2 security group",
	Long: `sgrenew renews Let's Encrypt certificates on hosts whose HTTP port is
normally closed by an AWS EC2 security group.

For every configured domain it checks the certificate expiry and, when renewal
is due, opens the verification port on the domain's security group, runs
certbot for that certificate, and closes the port again.`,
	SilenceUsage: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the run; an open
// verification port is still closed before exit.
func Execute() {
	cobra.OnInitialize(func() {
		logger.Init(verbose)
		// Keep stdout machine-readable
		if jsonOutput {
			logger.SetOutput(os.Stderr)
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default $SGRENEW_CONFIG or config.ini)")
}
