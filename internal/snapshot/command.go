package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"brokerconf/pkg/logging"
)

// DefaultKafkaConfigsPath is the tool name looked up on PATH when no explicit
// path is configured.
const DefaultKafkaConfigsPath = "kafka-configs"

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// CommandSource reads a broker's config set by running the distribution's
// kafka-configs tool on the broker host.
type CommandSource struct {
	// Path to the kafka-configs executable.
	Path string
	// BootstrapServer is passed as --bootstrap-server.
	BootstrapServer string
	// CommandConfig is an optional client properties file for SASL/TLS.
	CommandConfig string
	// Policy applied to lines that fail to parse.
	Policy Policy
}

func (c *CommandSource) args(nodeID string) []string {
	args := []string{
		"--bootstrap-server", c.BootstrapServer,
		"--entity-type", "brokers",
		"--entity-name", nodeID,
		"--describe", "--all",
	}
	if c.CommandConfig != "" {
		args = append(args, "--command-config", c.CommandConfig)
	}
	return args
}

// Snapshot runs the describe command for nodeID and parses its output.
func (c *CommandSource) Snapshot(ctx context.Context, nodeID string) (*Snapshot, error) {
	if c.BootstrapServer == "" {
		return nil, fmt.Errorf("bootstrap server is required to run kafka-configs")
	}
	path := c.Path
	if path == "" {
		path = DefaultKafkaConfigsPath
	}

	logging.Debug("Snapshot", "Running %s for broker %s", path, nodeID)

	var stdout, stderr bytes.Buffer
	cmd := execCommandContext(ctx, path, c.args(nodeID)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s failed for broker %s: %w: %s", path, nodeID, err, msg)
		}
		return nil, fmt.Errorf("%s failed for broker %s: %w", path, nodeID, err)
	}

	out, err := ParseOutput(strings.Split(stdout.String(), "\n"), c.Policy)
	if err != nil {
		return nil, err
	}
	logging.Debug("Snapshot", "Parsed %d configs for broker %s (%d skipped)", len(out.Entries), nodeID, len(out.Skipped))
	return New(nodeID, out.Entries), nil
}
