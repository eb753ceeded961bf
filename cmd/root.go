package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"brokerconf/internal/cli"
	"brokerconf/internal/config"
	"brokerconf/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeChangesFailed indicates at least one config change ended in error.
	ExitCodeChangesFailed = 2
	// ExitCodeUnhealthy indicates the cluster failed its health check.
	ExitCodeUnhealthy = 3
)

// globalFlags holds the persistent flags of the root command.
type globalFlags struct {
	logLevel  string
	logFormat string
	envFile   string
}

// rootCmd represents the base command for the brokerconf application.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	var gf globalFlags

	root := &cobra.Command{
		Use:   "brokerconf",
		Short: "Manage dynamic Kafka broker configuration",
		Long: `brokerconf applies and removes dynamic per-broker configuration on a Kafka
cluster, and reconciles a broker's dynamic configuration against its
server.properties and emergency override records.

Every command runs once and exits. Schedule apply-desired-configs from cron
or a systemd timer to keep brokers converged.`,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(gf.logLevel)
			if err != nil {
				return err
			}
			format, err := logging.ParseFormat(gf.logFormat)
			if err != nil {
				return err
			}
			logging.Init(level, format, cmd.ErrOrStderr())
			return config.LoadEnvFile(gf.envFile)
		},
	}

	root.PersistentFlags().StringVar(&gf.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&gf.logFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&gf.envFile, "env-file", "", "Load environment variables from this dotenv file before reading cluster passwords")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newApplyConfigsCmd())
	root.AddCommand(newRemoveDynamicConfigsCmd())
	root.AddCommand(newDescribeBrokerConfigsCmd())
	root.AddCommand(newDescribeClusterCmd())
	root.AddCommand(newListTopicsCmd())
	root.AddCommand(newHealthcheckCmd())
	root.AddCommand(newApplyDesiredConfigsCmd())
	root.AddCommand(newListRecordedConfigsCmd())
	root.AddCommand(newRemoveRecordedConfigsCmd())
	return root
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. It is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "brokerconf version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var changesFailed *cli.ChangesFailedError
	if errors.As(err, &changesFailed) {
		return ExitCodeChangesFailed
	}

	var unhealthy *cli.UnhealthyError
	if errors.As(err, &unhealthy) {
		return ExitCodeUnhealthy
	}

	return ExitCodeError
}
