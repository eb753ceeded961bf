package reconciler

import (
	"context"
	"fmt"
	"time"

	"brokerconf/internal/admin"
	"brokerconf/internal/desired"
	"brokerconf/internal/mutator"
	"brokerconf/internal/records"
	"brokerconf/internal/snapshot"
	"brokerconf/pkg/logging"

	"github.com/google/uuid"
)

// Config configures a Reconciler.
type Config struct {
	// Client is the admin capability used for describe and alter.
	Client admin.Client

	// Source optionally replaces the admin describe response as the origin
	// of the broker snapshot. Validation still uses the admin view.
	Source SnapshotSource

	// AllowList overrides mutator.DefaultAllowList when non-nil.
	AllowList []string

	// Timeout bounds the wait on the broker's alter handle.
	Timeout time.Duration

	// Metrics is optional.
	Metrics *Metrics
}

// Reconciler runs single reconciliation passes. It holds no state between
// passes.
type Reconciler struct {
	cfg Config
}

// New creates a Reconciler.
func New(cfg Config) *Reconciler {
	return &Reconciler{cfg: cfg}
}

// Reconcile runs one pass for one broker: read declared intent, snapshot the
// broker, resolve the diff and execute it. Input and describe failures abort
// the pass with an error; per-change failures only appear in Result.Errors.
func (r *Reconciler) Reconcile(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	passID := uuid.New().String()

	res, err := r.reconcile(ctx, passID, req)
	if err != nil {
		logging.Error("Reconciler", err, "[%s] Pass aborted", passID)
		if r.cfg.Metrics != nil {
			r.cfg.Metrics.ObserveAbort()
		}
		return nil, err
	}

	res.Duration = time.Since(start)
	if r.cfg.Metrics != nil {
		r.cfg.Metrics.ObservePass(res)
	}

	logging.Info("Reconciler", "[%s] Broker %s: %d succeeded, %d failed in %s (dry-run=%t)",
		passID, res.NodeID, len(res.Success), len(res.Errors), res.Duration.Round(time.Millisecond), res.DryRun)
	return res, nil
}

func (r *Reconciler) reconcile(ctx context.Context, passID string, req Request) (*Result, error) {
	if req.PropertiesFile == "" {
		return nil, fmt.Errorf("properties file is required")
	}
	props, err := desired.ReadProperties(req.PropertiesFile)
	if err != nil {
		return nil, err
	}

	nodeID := req.NodeID
	if nodeID == "" {
		id, ok := desired.NodeID(props)
		if !ok {
			return nil, fmt.Errorf("no broker id given and none found in %s", req.PropertiesFile)
		}
		nodeID = id
	}

	var store *records.Store
	overrides := map[string]string{}
	if req.RecordDir != "" {
		store = records.NewStore(req.RecordDir)
		overrides, err = store.Read()
		if err != nil {
			return nil, err
		}
	} else if req.Record {
		return nil, fmt.Errorf("recording requires a record directory")
	}

	logging.Info("Reconciler", "[%s] Reconciling broker %s (%d properties, %d emergency overrides)",
		passID, nodeID, len(props), len(overrides))

	state, err := mutator.LoadState(ctx, r.cfg.Client, []string{nodeID})
	if err != nil {
		return nil, err
	}
	ns, ok := state.Nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", mutator.ErrUnknownNode, nodeID)
	}
	if ns.Err != nil {
		return nil, fmt.Errorf("failed to describe broker %s: %w", nodeID, ns.Err)
	}

	snap, err := r.snapshot(ctx, nodeID, ns)
	if err != nil {
		return nil, err
	}

	diff := desired.Resolve(snap, overrides, props)
	for name := range diff.Undiscovered {
		logging.Debug("Resolver", "[%s] Broker %s does not report %s", passID, nodeID, name)
	}

	toApply := make(map[string]string, len(diff.Apply)+len(diff.Undiscovered))
	for name, value := range diff.Undiscovered {
		toApply[name] = value
	}
	for name, value := range diff.Apply {
		toApply[name] = value
	}
	changes := append(
		mutator.PlanApply([]string{nodeID}, toApply),
		mutator.PlanRemove([]string{nodeID}, diff.Remove)...,
	)

	res := &Result{
		PassID:  passID,
		NodeID:  nodeID,
		DryRun:  req.DryRun,
		Success: []mutator.ChangeResult{},
		Errors:  []mutator.ChangeResult{},
	}
	if len(changes) == 0 {
		logging.Info("Reconciler", "[%s] Broker %s already converged", passID, nodeID)
		return res, nil
	}

	out := r.mutator(store, req.Record).Execute(ctx, state, changes, mutator.Options{DryRun: req.DryRun})
	res.Success = out.Success
	res.Errors = out.Errors
	return res, nil
}

func (r *Reconciler) snapshot(ctx context.Context, nodeID string, ns mutator.NodeState) (*snapshot.Snapshot, error) {
	if r.cfg.Source != nil {
		return r.cfg.Source.Snapshot(ctx, nodeID)
	}
	return snapshot.FromDescribe(nodeID, ns.Described)
}

func (r *Reconciler) mutator(store *records.Store, record bool) *mutator.Mutator {
	var opts []mutator.Option
	if r.cfg.AllowList != nil {
		opts = append(opts, mutator.WithAllowList(r.cfg.AllowList...))
	}
	if r.cfg.Timeout > 0 {
		opts = append(opts, mutator.WithTimeout(r.cfg.Timeout))
	}
	if record && store != nil {
		opts = append(opts, mutator.WithRecorder(store))
	}
	return mutator.New(r.cfg.Client, opts...)
}
