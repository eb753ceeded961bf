package reconciler

import (
	"context"
	"time"

	"brokerconf/internal/mutator"
	"brokerconf/internal/snapshot"
)

// Request describes one reconciliation pass for one broker.
type Request struct {
	// NodeID is the broker to reconcile. When empty it is read from
	// broker.id (or node.id) in the properties file.
	NodeID string

	// RecordDir holds the broker's emergency override records. Empty means
	// no overrides.
	RecordDir string

	// PropertiesFile is the broker's declared baseline config.
	PropertiesFile string

	// DryRun reports what would change without touching the cluster.
	DryRun bool

	// Record persists successful applies into RecordDir so later passes
	// treat them as emergency overrides.
	Record bool
}

// Result is the outcome of one pass.
type Result struct {
	// PassID correlates the log lines of one pass.
	PassID string `json:"pass_id" yaml:"pass_id"`

	NodeID string `json:"broker_id" yaml:"broker_id"`
	DryRun bool   `json:"dry_run" yaml:"dry_run"`

	Success []mutator.ChangeResult `json:"success" yaml:"success"`
	Errors  []mutator.ChangeResult `json:"errors" yaml:"errors"`

	// Duration is the wall time of the pass.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Failed reports whether any change in the pass ended in error.
func (r *Result) Failed() bool {
	return len(r.Errors) > 0
}

// Outcome returns the pass's results as a mutator outcome.
func (r *Result) Outcome() *mutator.Outcome {
	return &mutator.Outcome{Success: r.Success, Errors: r.Errors}
}

// SnapshotSource produces a broker snapshot from somewhere other than the
// admin describe response, such as the kafka-configs tool.
type SnapshotSource interface {
	Snapshot(ctx context.Context, nodeID string) (*snapshot.Snapshot, error)
}
