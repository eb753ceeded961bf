package cmd

import (
	"time"

	"brokerconf/internal/cli"
	"brokerconf/internal/health"

	"github.com/spf13/cobra"
)

func newHealthcheckCmd() *cobra.Command {
	var flags cli.CommandFlags
	var timeout, interval time.Duration

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check partition replication health",
		Long: `Checks every partition of every topic. The cluster is healthy when each
partition's in-sync replica set equals its replica set and its preferred
replica is the leader.

With --timeout the check repeats every --check-interval until the cluster is
healthy or the timeout elapses. Exits with code 3 when unhealthy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, &flags)
			if err != nil {
				return err
			}
			defer s.Close()

			var res health.Response
			err = s.call("Checking partitions...", func() error {
				var err error
				if timeout > 0 {
					res, err = health.WaitHealthy(cmd.Context(), s.client, timeout, interval)
				} else {
					res, err = health.CheckCluster(cmd.Context(), s.client)
				}
				return err
			})
			if err != nil {
				return err
			}

			if err := s.printer.PrintHealth(res); err != nil {
				return err
			}
			if !res.Healthy {
				return &cli.UnhealthyError{Reasons: res.Reasons}
			}
			return nil
		},
	}
	cli.RegisterClusterFlags(cmd, &flags)
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Keep checking until healthy for up to this long (default: check once)")
	cmd.Flags().DurationVarP(&interval, "check-interval", "i", 2*time.Second, "Delay between checks when --timeout is set")
	return cmd
}
