package mutator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"brokerconf/internal/admin"
	"brokerconf/pkg/logging"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds the wait on a single broker's alter handle.
const DefaultTimeout = 5 * time.Second

// DefaultAllowList names configs that may be applied even when a broker does
// not report them yet. Replication throttles only show up once set.
var DefaultAllowList = []string{
	"confluent.balancer.throttle.bytes.per.second",
	"follower.replication.throttled.rate",
	"follower.replication.throttled.replicas",
	"leader.replication.throttled.rate",
	"leader.replication.throttled.replicas",
}

// Recorder persists successfully applied values.
type Recorder interface {
	Record(name, value string) error
}

// Options controls one Execute call.
type Options struct {
	// DryRun validates and reports without touching the cluster.
	DryRun bool
}

// Mutator validates and executes planned changes against a cluster.
type Mutator struct {
	client    admin.Client
	allowList map[string]struct{}
	timeout   time.Duration
	recorder  Recorder
}

// Option configures a Mutator.
type Option func(*Mutator)

// WithAllowList replaces the default allow-list.
func WithAllowList(names ...string) Option {
	return func(m *Mutator) {
		m.allowList = make(map[string]struct{}, len(names))
		for _, n := range names {
			m.allowList[n] = struct{}{}
		}
	}
}

// WithTimeout sets the per-broker handle timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Mutator) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithRecorder persists successful applies through r.
func WithRecorder(r Recorder) Option {
	return func(m *Mutator) {
		m.recorder = r
	}
}

// New creates a Mutator over client.
func New(client admin.Client, opts ...Option) *Mutator {
	m := &Mutator{
		client:  client,
		timeout: DefaultTimeout,
	}
	WithAllowList(DefaultAllowList...)(m)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PlanApply plans setting every change on every node. Names are sorted so the
// plan is deterministic.
func PlanApply(nodeIDs []string, changes map[string]string) []PlannedChange {
	names := sortedKeys(changes)
	planned := make([]PlannedChange, 0, len(nodeIDs)*len(names))
	for _, id := range nodeIDs {
		for _, name := range names {
			planned = append(planned, PlannedChange{
				NodeID:     id,
				ConfigName: name,
				Op:         OpApply,
				ToValue:    strPtr(changes[name]),
			})
		}
	}
	return planned
}

// PlanRemove plans deleting the dynamic value of every name on every node.
func PlanRemove(nodeIDs []string, names []string) []PlannedChange {
	planned := make([]PlannedChange, 0, len(nodeIDs)*len(names))
	for _, id := range nodeIDs {
		for _, name := range names {
			planned = append(planned, PlannedChange{
				NodeID:     id,
				ConfigName: name,
				Op:         OpRemove,
			})
		}
	}
	return planned
}

// ApplyConfigs describes the cluster and sets changes on nodeIDs, or on every
// broker when nodeIDs is empty.
func (m *Mutator) ApplyConfigs(ctx context.Context, nodeIDs []string, changes map[string]string, opts Options) (*Outcome, error) {
	state, err := LoadState(ctx, m.client, nodeIDs)
	if err != nil {
		return nil, err
	}
	return m.Execute(ctx, state, PlanApply(state.NodeIDs, changes), opts), nil
}

// RemoveDynamicConfigs describes the cluster and deletes the dynamic value of
// names on nodeIDs, or on every broker when nodeIDs is empty.
func (m *Mutator) RemoveDynamicConfigs(ctx context.Context, nodeIDs []string, names []string, opts Options) (*Outcome, error) {
	state, err := LoadState(ctx, m.client, nodeIDs)
	if err != nil {
		return nil, err
	}
	return m.Execute(ctx, state, PlanRemove(state.NodeIDs, names), opts), nil
}

// Execute validates changes against state and submits the valid ones, one
// alter request per broker. It always returns a complete outcome; per-change
// failures never abort the pass. Returned values are redacted.
func (m *Mutator) Execute(ctx context.Context, state *State, changes []PlannedChange, opts Options) *Outcome {
	valid, invalid := m.Validate(state, changes)

	out := newOutcome()
	out.Errors = append(out.Errors, invalid...)

	if opts.DryRun {
		for _, c := range valid {
			out.Success = append(out.Success, success(c))
		}
		logging.Info("Mutator", "Dry run: %d changes would be made, %d rejected", len(valid), len(invalid))
		return redactOutcome(out)
	}

	if len(valid) > 0 {
		done := m.submit(ctx, valid)
		out.Success = append(out.Success, done.Success...)
		out.Errors = append(out.Errors, done.Errors...)
	}

	logging.Info("Mutator", "Made %d changes, %d failed", len(out.Success), len(out.Errors))
	return redactOutcome(out)
}

type batch struct {
	nodeID  string
	changes []PlannedChange
}

// groupByNode keeps the first-seen node order.
func groupByNode(changes []PlannedChange) []batch {
	index := make(map[string]int)
	var batches []batch
	for _, c := range changes {
		i, ok := index[c.NodeID]
		if !ok {
			i = len(batches)
			index[c.NodeID] = i
			batches = append(batches, batch{nodeID: c.NodeID})
		}
		batches[i].changes = append(batches[i].changes, c)
	}
	return batches
}

func (m *Mutator) submit(ctx context.Context, changes []PlannedChange) *Outcome {
	batches := groupByNode(changes)

	resources := make([]admin.AlterResource, len(batches))
	for i, b := range batches {
		res := admin.AlterResource{NodeID: b.nodeID}
		for _, c := range b.changes {
			entry := admin.AlterEntry{Name: c.ConfigName, Op: admin.AlterDelete}
			if c.Op == OpApply {
				entry.Op = admin.AlterSet
				entry.Value = *c.ToValue
			}
			res.Entries = append(res.Entries, entry)
		}
		resources[i] = res
		logging.Debug("Mutator", "Submitting %d changes to broker %s", len(res.Entries), b.nodeID)
	}

	futures := m.client.IncrementalAlterConfigs(ctx, resources)

	// One slot per batch, so no locking is needed while waiting.
	waitErrs := make([]error, len(batches))
	var g errgroup.Group
	for i := range batches {
		g.Go(func() error {
			if i >= len(futures) || futures[i] == nil {
				waitErrs[i] = fmt.Errorf("no alter handle returned for broker %s", batches[i].nodeID)
				return nil
			}
			waitCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()
			if err := futures[i].Wait(waitCtx); err != nil {
				waitErrs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	out := newOutcome()
	for i, b := range batches {
		if err := waitErrs[i]; err != nil {
			if KindOf(err) == KindExecutionTimeout {
				err = fmt.Errorf("%w %s after %s: %w", ErrExecutionTimeout, b.nodeID, m.timeout, err)
			}
			logging.Error("Mutator", err, "Broker %s rejected %d changes (retriable=%t)", b.nodeID, len(b.changes), admin.IsRetriable(err))
			for _, c := range b.changes {
				out.Errors = append(out.Errors, failure(c, err))
			}
			continue
		}
		for _, c := range b.changes {
			out.Success = append(out.Success, success(c))
			m.record(c)
		}
	}
	return out
}

func (m *Mutator) record(c PlannedChange) {
	if m.recorder == nil || c.Op != OpApply || c.ToValue == nil {
		return
	}
	if err := m.recorder.Record(c.ConfigName, *c.ToValue); err != nil {
		logging.Error("Mutator", err, "Failed to record %s for broker %s", c.ConfigName, c.NodeID)
	}
}

func redactOutcome(o *Outcome) *Outcome {
	o.Success = RedactAll(o.Success)
	o.Errors = RedactAll(o.Errors)
	return o
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
