package cmd

import (
	"fmt"
	"time"

	"brokerconf/internal/cli"
	"brokerconf/internal/mutator"
	"brokerconf/internal/reconciler"
	"brokerconf/internal/snapshot"
	"brokerconf/pkg/logging"

	"github.com/spf13/cobra"
)

type applyDesiredConfigsOptions struct {
	flags           cli.CommandFlags
	recordDir       string
	propertiesFile  string
	brokerID        string
	record          bool
	dryRun          bool
	timeout         time.Duration
	kafkaConfigs    string
	bootstrapServer string
	commandConfig   string
	skipBadLines    bool
	metricsTextfile string
}

func newApplyDesiredConfigsCmd() *cobra.Command {
	var o applyDesiredConfigsOptions

	cmd := &cobra.Command{
		Use:   "apply-desired-configs",
		Short: "Reconcile one broker's dynamic configs with its declared state",
		Long: `Runs one reconciliation pass for the broker this host serves:

1. Emergency override records in --record-dir are applied as dynamic
   configs and always win.
2. Configs from --properties-file are applied as dynamic configs when the
   active value differs.
3. Dynamic configs that are redundant with the static value are removed.

The broker snapshot comes from the admin API, or from the kafka-configs tool
when --bootstrap-server is given. The broker id is read from broker.id or
node.id in the properties file unless --broker-id is set.

Examples:
  brokerconf apply-desired-configs -c clusters.yaml -n prod \
    --record-dir /etc/kafka/emergency \
    --properties-file /etc/kafka/server.properties`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApplyDesiredConfigs(cmd, &o)
		},
	}

	cli.RegisterClusterFlags(cmd, &o.flags)
	cmd.Flags().StringVarP(&o.recordDir, "record-dir", "r", "", "Directory holding emergency override records")
	cmd.Flags().StringVarP(&o.propertiesFile, "properties-file", "p", "", "The broker's server.properties file")
	cmd.Flags().StringVar(&o.brokerID, "broker-id", "", "Broker to reconcile (default: broker.id from the properties file)")
	cmd.Flags().BoolVar(&o.record, "record", false, "Record successful applies as emergency overrides")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Validate only, do not change the cluster")
	cmd.Flags().DurationVar(&o.timeout, "timeout", mutator.DefaultTimeout, "How long to wait for the broker to confirm")
	cmd.Flags().StringVar(&o.kafkaConfigs, "kafka-configs", snapshot.DefaultKafkaConfigsPath, "Path to the kafka-configs tool")
	cmd.Flags().StringVar(&o.bootstrapServer, "bootstrap-server", "", "Snapshot the broker with kafka-configs against this address")
	cmd.Flags().StringVar(&o.commandConfig, "command-config", "", "Client properties file passed to kafka-configs")
	cmd.Flags().BoolVar(&o.skipBadLines, "skip-unparsable", false, "Skip kafka-configs lines that fail to parse instead of aborting")
	cmd.Flags().StringVar(&o.metricsTextfile, "metrics-textfile", "", "Write pass metrics to this node-exporter textfile")
	_ = cmd.MarkFlagRequired("record-dir")
	_ = cmd.MarkFlagRequired("properties-file")
	return cmd
}

func (o *applyDesiredConfigsOptions) source() reconciler.SnapshotSource {
	if o.bootstrapServer == "" {
		return nil
	}
	policy := snapshot.PolicyStrict
	if o.skipBadLines {
		policy = snapshot.PolicySkip
	}
	return &snapshot.CommandSource{
		Path:            o.kafkaConfigs,
		BootstrapServer: o.bootstrapServer,
		CommandConfig:   o.commandConfig,
		Policy:          policy,
	}
}

func runApplyDesiredConfigs(cmd *cobra.Command, o *applyDesiredConfigsOptions) error {
	s, err := openSession(cmd, &o.flags)
	if err != nil {
		return err
	}
	defer s.Close()

	var metrics *reconciler.Metrics
	if o.metricsTextfile != "" {
		metrics = reconciler.NewMetrics()
	}

	r := reconciler.New(reconciler.Config{
		Client:  s.client,
		Source:  o.source(),
		Timeout: o.timeout,
		Metrics: metrics,
	})

	var res *reconciler.Result
	err = s.call("Reconciling broker configs...", func() error {
		var err error
		res, err = r.Reconcile(cmd.Context(), reconciler.Request{
			NodeID:         o.brokerID,
			RecordDir:      o.recordDir,
			PropertiesFile: o.propertiesFile,
			DryRun:         o.dryRun,
			Record:         o.record,
		})
		return err
	})

	if metrics != nil {
		if werr := metrics.WriteTextfile(o.metricsTextfile); werr != nil {
			logging.Error("CLI", werr, "Could not write metrics")
		}
	}
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}
	return printChanges(s.printer, res.DryRun, res.Success, res.Errors)
}
