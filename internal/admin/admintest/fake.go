// Package admintest provides an in-memory admin.Client for tests.
package admintest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"brokerconf/internal/admin"
)

// Fake is an in-memory cluster. Alter calls are applied to the stored
// configs so that a second pass sees the converged state.
type Fake struct {
	mu sync.Mutex

	Cluster admin.Cluster
	// Configs holds each broker's described config set, keyed by node id.
	Configs map[string][]admin.ConfigValue
	// Partitions holds partition placement per topic.
	Partitions map[string][]admin.PartitionInfo

	// AlterErrors makes the alter handle of a node fail with the given error.
	AlterErrors map[string]error
	// HangNodes makes a node's alter handle never resolve.
	HangNodes map[string]bool
	// DescribeErr fails DescribeConfigs as a whole.
	DescribeErr error

	alterCalls    [][]admin.AlterResource
	describeCalls int
	closed        bool
}

// NewFake returns a fake cluster with the given broker ids. The first id is
// the controller.
func NewFake(nodeIDs ...string) *Fake {
	f := &Fake{
		Configs:     make(map[string][]admin.ConfigValue),
		Partitions:  make(map[string][]admin.PartitionInfo),
		AlterErrors: make(map[string]error),
		HangNodes:   make(map[string]bool),
	}
	for i, id := range nodeIDs {
		f.Cluster.Nodes = append(f.Cluster.Nodes, admin.Node{
			ID:           id,
			Host:         "broker-" + id,
			Port:         9092,
			IsController: i == 0,
		})
		if i == 0 {
			f.Cluster.ControllerID = id
		}
	}
	return f
}

// SetConfig adds or replaces one described config on a node.
func (f *Fake) SetConfig(nodeID string, cv admin.ConfigValue) {
	f.mu.Lock()
	defer f.mu.Unlock()

	configs := f.Configs[nodeID]
	for i := range configs {
		if configs[i].Name == cv.Name {
			configs[i] = cv
			return
		}
	}
	f.Configs[nodeID] = append(configs, cv)
}

// AlterCalls returns every IncrementalAlterConfigs call made so far.
func (f *Fake) AlterCalls() [][]admin.AlterResource {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]admin.AlterResource, len(f.alterCalls))
	copy(out, f.alterCalls)
	return out
}

// DescribeCalls returns how many times DescribeConfigs was called.
func (f *Fake) DescribeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.describeCalls
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// DescribeConfigs implements admin.Client.
func (f *Fake) DescribeConfigs(ctx context.Context, nodeIDs []string) ([]admin.NodeConfigs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.describeCalls++

	if f.DescribeErr != nil {
		return nil, f.DescribeErr
	}
	if len(nodeIDs) == 0 {
		nodeIDs = f.Cluster.NodeIDs()
	}

	out := make([]admin.NodeConfigs, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if !f.Cluster.HasNode(id) {
			out = append(out, admin.NodeConfigs{NodeID: id, Err: fmt.Errorf("broker %s not available", id)})
			continue
		}
		configs := make([]admin.ConfigValue, len(f.Configs[id]))
		copy(configs, f.Configs[id])
		out = append(out, admin.NodeConfigs{NodeID: id, Configs: configs})
	}
	return out, nil
}

// IncrementalAlterConfigs implements admin.Client.
func (f *Fake) IncrementalAlterConfigs(ctx context.Context, resources []admin.AlterResource) []*admin.Future {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.alterCalls = append(f.alterCalls, resources)

	futures := make([]*admin.Future, len(resources))
	for i, res := range resources {
		if f.HangNodes[res.NodeID] {
			futures[i] = admin.NewFuture(res.NodeID)
			continue
		}
		if err := f.AlterErrors[res.NodeID]; err != nil {
			futures[i] = admin.ResolvedFuture(res.NodeID, err)
			continue
		}
		for _, e := range res.Entries {
			f.applyLocked(res.NodeID, e)
		}
		futures[i] = admin.ResolvedFuture(res.NodeID, nil)
	}
	return futures
}

// applyLocked mimics broker behaviour: SET installs a dynamic synonym at the
// head of the list, DELETE drops it and falls back to the next synonym.
func (f *Fake) applyLocked(nodeID string, e admin.AlterEntry) {
	configs := f.Configs[nodeID]
	idx := -1
	for i := range configs {
		if configs[i].Name == e.Name {
			idx = i
			break
		}
	}
	if idx < 0 {
		if e.Op == admin.AlterDelete {
			return
		}
		configs = append(configs, admin.ConfigValue{Name: e.Name})
		idx = len(configs) - 1
	}

	cv := configs[idx]
	synonyms := make([]admin.ConfigSynonym, 0, len(cv.Synonyms)+1)
	for _, s := range cv.Synonyms {
		if s.Source != admin.SourceDynamicBroker {
			synonyms = append(synonyms, s)
		}
	}
	if e.Op == admin.AlterSet {
		synonyms = append([]admin.ConfigSynonym{{Name: e.Name, Value: e.Value, Source: admin.SourceDynamicBroker}}, synonyms...)
	}
	cv.Synonyms = synonyms

	if len(synonyms) > 0 {
		cv.Value = synonyms[0].Value
		cv.Source = synonyms[0].Source
	} else {
		cv.Value = ""
		cv.Source = admin.SourceDefault
	}
	cv.IsDefault = cv.Source == admin.SourceDefault
	configs[idx] = cv
	f.Configs[nodeID] = configs
}

// DescribeCluster implements admin.Client.
func (f *Fake) DescribeCluster(ctx context.Context) (admin.Cluster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Cluster, nil
}

// ListTopics implements admin.Client.
func (f *Fake) ListTopics(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.Partitions))
	for name := range f.Partitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DescribeTopics implements admin.Client.
func (f *Fake) DescribeTopics(ctx context.Context, topics []string) ([]admin.PartitionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []admin.PartitionInfo
	for _, t := range topics {
		parts, ok := f.Partitions[t]
		if !ok {
			return nil, fmt.Errorf("unknown topic %s", t)
		}
		out = append(out, parts...)
	}
	return out, nil
}

// Close implements admin.Client.
func (f *Fake) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// Value builds a described config with its synonyms in precedence order.
// The active value and source are taken from the first synonym, or default
// to an empty DEFAULT_CONFIG value when there are none.
func Value(name string, synonyms ...admin.ConfigSynonym) admin.ConfigValue {
	cv := admin.ConfigValue{Name: name, Source: admin.SourceDefault, IsDefault: true}
	for i := range synonyms {
		if synonyms[i].Name == "" {
			synonyms[i].Name = name
		}
	}
	cv.Synonyms = synonyms
	if len(synonyms) > 0 {
		cv.Value = synonyms[0].Value
		cv.Source = synonyms[0].Source
		cv.IsDefault = cv.Source == admin.SourceDefault
	}
	return cv
}

// Dynamic, Static and Default build synonyms for Value.
func Dynamic(v string) admin.ConfigSynonym {
	return admin.ConfigSynonym{Value: v, Source: admin.SourceDynamicBroker}
}

func Static(v string) admin.ConfigSynonym {
	return admin.ConfigSynonym{Value: v, Source: admin.SourceStaticBroker}
}

func Default(v string) admin.ConfigSynonym {
	return admin.ConfigSynonym{Value: v, Source: admin.SourceDefault}
}
