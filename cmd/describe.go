package cmd

import (
	"fmt"
	"sort"
	"strings"

	"brokerconf/internal/admin"
	"brokerconf/internal/cli"
	"brokerconf/pkg/logging"

	"github.com/spf13/cobra"
)

func newDescribeClusterCmd() *cobra.Command {
	var flags cli.CommandFlags

	cmd := &cobra.Command{
		Use:   "describe-cluster",
		Short: "Show cluster members and the controller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, &flags)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.describeCluster(cmd.Context())
			if err != nil {
				return err
			}
			return s.printer.PrintCluster(c)
		},
	}
	cli.RegisterClusterFlags(cmd, &flags)
	return cmd
}

func newListTopicsCmd() *cobra.Command {
	var flags cli.CommandFlags

	cmd := &cobra.Command{
		Use:   "list-topics",
		Short: "List the cluster's topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, &flags)
			if err != nil {
				return err
			}
			defer s.Close()

			var topics []string
			err = s.call("Listing topics...", func() error {
				var err error
				topics, err = s.client.ListTopics(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			return s.printer.PrintTopics(topics)
		},
	}
	cli.RegisterClusterFlags(cmd, &flags)
	return cmd
}

func newDescribeBrokerConfigsCmd() *cobra.Command {
	var flags cli.CommandFlags
	var brokerIDs string

	cmd := &cobra.Command{
		Use:   "describe-broker-configs",
		Short: "Show every config of the cluster's brokers with its source",
		Long: `Describes the full config set of each broker, including the source of the
active value (DYNAMIC_BROKER_CONFIG, STATIC_BROKER_CONFIG, DEFAULT_CONFIG, ...).
Sensitive values are redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, &flags)
			if err != nil {
				return err
			}
			defer s.Close()

			ids := cli.ParseList(brokerIDs)
			if len(ids) == 0 {
				c, err := s.describeCluster(cmd.Context())
				if err != nil {
					return err
				}
				ids = c.NodeIDs()
			}

			var described []admin.NodeConfigs
			err = s.call("Describing broker configs...", func() error {
				var err error
				described, err = s.client.DescribeConfigs(cmd.Context(), ids)
				return err
			})
			if err != nil {
				return err
			}

			rows, failed := cli.BrokerConfigs(described)
			if err := s.printer.PrintBrokerConfigs(rows); err != nil {
				return err
			}
			if len(failed) > 0 {
				return describeFailures(failed)
			}
			return nil
		},
	}
	cli.RegisterClusterFlags(cmd, &flags)
	cmd.Flags().StringVar(&brokerIDs, "broker-ids", "", "Comma separated broker ids (default: all brokers)")
	return cmd
}

func describeFailures(failed map[string]error) error {
	ids := make([]string, 0, len(failed))
	for id, err := range failed {
		logging.Error("CLI", err, "Failed to describe broker %s", id)
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Errorf("failed to describe brokers %s", strings.Join(ids, ", "))
}
