package cmd

import (
	"context"
	"fmt"

	"brokerconf/internal/admin"
	"brokerconf/internal/cli"
	"brokerconf/internal/config"
	"brokerconf/internal/mutator"
	"brokerconf/pkg/logging"

	"github.com/spf13/cobra"
)

// newAdminClient is a variable to allow mocking in tests
var newAdminClient = func(c config.Cluster) (admin.Client, error) {
	return admin.NewKafkaClient(c.KafkaOptions())
}

// session is an open connection to one configured cluster plus the printer
// for the invoking command.
type session struct {
	cluster config.Cluster
	client  admin.Client
	printer *cli.Printer
	quiet   bool
}

// openSession validates output flags, loads the cluster file and connects.
// The caller must Close the session.
func openSession(cmd *cobra.Command, flags *cli.CommandFlags) (*session, error) {
	printer, err := newPrinter(cmd, flags)
	if err != nil {
		return nil, err
	}

	clusters, err := config.LoadClusters(flags.ClusterConfig)
	if err != nil {
		return nil, err
	}
	cluster, err := clusters.GetCluster(flags.Cluster)
	if err != nil {
		return nil, err
	}

	client, err := newAdminClient(cluster)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for cluster %s: %w", cluster.Name, err)
	}
	logging.Debug("CLI", "Connected to cluster %s via %v", cluster.Name, cluster.Brokers)

	return &session{cluster: cluster, client: client, printer: printer, quiet: flags.Quiet}, nil
}

func (s *session) Close() {
	s.client.Close()
}

// call runs fn behind a progress spinner and classifies connectivity errors.
func (s *session) call(message string, fn func() error) error {
	p := cli.StartProgress(s.quiet, message)
	err := fn()
	p.Stop(err)
	if ce := cli.ClassifyConnectionError(err, s.cluster.Name); ce != nil {
		return ce
	}
	return err
}

func newPrinter(cmd *cobra.Command, flags *cli.CommandFlags) (*cli.Printer, error) {
	if err := cli.ValidateOutputFormat(flags.OutputFormat); err != nil {
		return nil, err
	}
	return cli.NewPrinter(cmd.OutOrStdout(), cli.OutputFormat(flags.OutputFormat)), nil
}

// describeCluster is shared by commands that need the member list.
func (s *session) describeCluster(ctx context.Context) (admin.Cluster, error) {
	var c admin.Cluster
	err := s.call("Describing cluster...", func() error {
		var err error
		c, err = s.client.DescribeCluster(ctx)
		return err
	})
	return c, err
}

// printChanges renders a change outcome and turns a non-empty error list into
// ChangesFailedError.
func printChanges(printer *cli.Printer, dryRun bool, success, errs []mutator.ChangeResult) error {
	if err := printer.PrintChanges(cli.ChangeReport{DryRun: dryRun, Success: success, Errors: errs}); err != nil {
		return err
	}
	if len(errs) > 0 {
		return &cli.ChangesFailedError{Failed: len(errs), Total: len(success) + len(errs)}
	}
	return nil
}
