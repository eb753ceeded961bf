package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// CommandFlags holds the flag values shared by commands that talk to a cluster.
type CommandFlags struct {
	// ClusterConfig is the cluster connection YAML file
	ClusterConfig string
	// Cluster selects the entry in ClusterConfig
	Cluster string
	// OutputFormat specifies the desired output format (table, json, yaml)
	OutputFormat string
	// Quiet suppresses progress indicators
	Quiet bool
}

// RegisterClusterFlags registers the connection and output flags.
//
// The registered flags are:
//   - --cluster-config/-c: Cluster connection file (required)
//   - --cluster/-n: Cluster name, optional when the file defines one cluster
//   - --output/-o: Output format (table, json, yaml), default: "table"
//   - --quiet/-q: Suppress progress indicators
func RegisterClusterFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.Flags().StringVarP(&flags.ClusterConfig, "cluster-config", "c", "", "Path to the cluster YAML configuration file")
	cmd.Flags().StringVarP(&flags.Cluster, "cluster", "n", "", "Name of the cluster")
	RegisterOutputFlags(cmd, flags)
	_ = cmd.MarkFlagRequired("cluster-config")
}

// RegisterOutputFlags registers only --output and --quiet, for commands that
// work on local files.
func RegisterOutputFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", string(OutputFormatTable), "Output format (table, json, yaml)")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress progress indicators")
}

// ParseKeyValues parses "k=v,k=v" into a map. Values may contain '=' but
// keys may not be empty and must not repeat.
func ParseKeyValues(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range splitList(s) {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid config change %q, expected name=value", pair)
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("config %q given more than once", key)
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no config changes given")
	}
	return out, nil
}

// ParseList splits a comma separated list, trimming blanks.
func ParseList(s string) []string {
	return splitList(s)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
