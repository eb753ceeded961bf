package cmd

import (
	"fmt"
	"time"

	"brokerconf/internal/cli"
	"brokerconf/internal/mutator"
	"brokerconf/internal/records"

	"github.com/spf13/cobra"
)

type applyConfigsOptions struct {
	flags         cli.CommandFlags
	configChanges string
	brokerIDs     string
	recordDir     string
	dryRun        bool
	timeout       time.Duration
}

func newApplyConfigsCmd() *cobra.Command {
	var o applyConfigsOptions

	cmd := &cobra.Command{
		Use:   "apply-configs",
		Short: "Set dynamic per-broker configs",
		Long: `Sets dynamic per-broker configuration on the given brokers, or on every
broker in the cluster when --broker-ids is omitted.

Dynamic configs take precedence over server.properties. With --record-dir,
every successful change is also recorded as an emergency override so that
apply-desired-configs keeps it in place.

Examples:
  brokerconf apply-configs -c clusters.yaml -n prod \
    --config-changes 'message.max.bytes=1048588,max.connections=1000' \
    --broker-ids 0,1,2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApplyConfigs(cmd, &o)
		},
	}

	cli.RegisterClusterFlags(cmd, &o.flags)
	cmd.Flags().StringVar(&o.configChanges, "config-changes", "", "Comma separated name=value pairs to apply")
	cmd.Flags().StringVar(&o.brokerIDs, "broker-ids", "", "Comma separated broker ids (default: all brokers)")
	cmd.Flags().StringVarP(&o.recordDir, "record-dir", "r", "", "Record successful changes as emergency overrides in this directory")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Validate only, do not change the cluster")
	cmd.Flags().DurationVar(&o.timeout, "timeout", mutator.DefaultTimeout, "How long to wait for each broker to confirm")
	_ = cmd.MarkFlagRequired("config-changes")
	return cmd
}

func runApplyConfigs(cmd *cobra.Command, o *applyConfigsOptions) error {
	changes, err := cli.ParseKeyValues(o.configChanges)
	if err != nil {
		return err
	}

	s, err := openSession(cmd, &o.flags)
	if err != nil {
		return err
	}
	defer s.Close()

	mopts := []mutator.Option{mutator.WithTimeout(o.timeout)}
	if o.recordDir != "" {
		mopts = append(mopts, mutator.WithRecorder(records.NewStore(o.recordDir)))
	}
	m := mutator.New(s.client, mopts...)

	var out *mutator.Outcome
	err = s.call("Applying configs...", func() error {
		var err error
		out, err = m.ApplyConfigs(cmd.Context(), cli.ParseList(o.brokerIDs), changes, mutator.Options{DryRun: o.dryRun})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to apply configs: %w", err)
	}
	return printChanges(s.printer, o.dryRun, out.Success, out.Errors)
}

type removeDynamicConfigsOptions struct {
	flags     cli.CommandFlags
	configs   string
	brokerIDs string
	dryRun    bool
	timeout   time.Duration
}

func newRemoveDynamicConfigsCmd() *cobra.Command {
	var o removeDynamicConfigsOptions

	cmd := &cobra.Command{
		Use:   "remove-dynamic-configs",
		Short: "Delete dynamic per-broker configs",
		Long: `Deletes the dynamic per-broker value of the given configs so each broker
falls back to its static or default value. Configs without a dynamic
per-broker value are reported as errors.

Examples:
  brokerconf remove-dynamic-configs -c clusters.yaml -n prod \
    --configs message.max.bytes --broker-ids 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemoveDynamicConfigs(cmd, &o)
		},
	}

	cli.RegisterClusterFlags(cmd, &o.flags)
	cmd.Flags().StringVar(&o.configs, "configs", "", "Comma separated config names to remove")
	cmd.Flags().StringVar(&o.brokerIDs, "broker-ids", "", "Comma separated broker ids (default: all brokers)")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Validate only, do not change the cluster")
	cmd.Flags().DurationVar(&o.timeout, "timeout", mutator.DefaultTimeout, "How long to wait for each broker to confirm")
	_ = cmd.MarkFlagRequired("configs")
	return cmd
}

func runRemoveDynamicConfigs(cmd *cobra.Command, o *removeDynamicConfigsOptions) error {
	names := cli.ParseList(o.configs)
	if len(names) == 0 {
		return fmt.Errorf("no config names given")
	}

	s, err := openSession(cmd, &o.flags)
	if err != nil {
		return err
	}
	defer s.Close()

	m := mutator.New(s.client, mutator.WithTimeout(o.timeout))

	var out *mutator.Outcome
	err = s.call("Removing configs...", func() error {
		var err error
		out, err = m.RemoveDynamicConfigs(cmd.Context(), cli.ParseList(o.brokerIDs), names, mutator.Options{DryRun: o.dryRun})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to remove configs: %w", err)
	}
	return printChanges(s.printer, o.dryRun, out.Success, out.Errors)
}
