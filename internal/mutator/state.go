package mutator

import (
	"context"
	"fmt"

	"brokerconf/internal/admin"
	"brokerconf/pkg/logging"
)

// NodeState is one broker's described config set.
type NodeState struct {
	Configs map[string]admin.ConfigValue
	// Described keeps the configs in the order the broker reported them.
	Described []admin.ConfigValue
	// Err is set when the broker could not be described.
	Err error
}

// State is the live view validation runs against.
type State struct {
	Cluster admin.Cluster
	// NodeIDs are the brokers the caller asked for, in request order. When
	// none were given this is every cluster member.
	NodeIDs []string
	Nodes   map[string]NodeState
}

// NewState assembles a State from already fetched metadata.
func NewState(cluster admin.Cluster, nodeIDs []string, described []admin.NodeConfigs) *State {
	s := &State{
		Cluster: cluster,
		NodeIDs: nodeIDs,
		Nodes:   make(map[string]NodeState, len(described)),
	}
	if len(s.NodeIDs) == 0 {
		s.NodeIDs = cluster.NodeIDs()
	}
	for _, nc := range described {
		ns := NodeState{
			Err:       nc.Err,
			Described: nc.Configs,
			Configs:   make(map[string]admin.ConfigValue, len(nc.Configs)),
		}
		for _, cv := range nc.Configs {
			ns.Configs[cv.Name] = cv
		}
		s.Nodes[nc.NodeID] = ns
	}
	return s
}

// LoadState describes the cluster and the config sets of nodeIDs. Unknown
// node ids are kept so validation can report them; they are never described.
func LoadState(ctx context.Context, client admin.Client, nodeIDs []string) (*State, error) {
	cluster, err := client.DescribeCluster(ctx)
	if err != nil {
		return nil, err
	}

	requested := nodeIDs
	if len(requested) == 0 {
		requested = cluster.NodeIDs()
	}

	known := make([]string, 0, len(requested))
	for _, id := range requested {
		if cluster.HasNode(id) {
			known = append(known, id)
		} else {
			logging.Warn("Mutator", "Broker %s is not a member of the cluster", id)
		}
	}

	var described []admin.NodeConfigs
	if len(known) > 0 {
		described, err = client.DescribeConfigs(ctx, known)
		if err != nil {
			return nil, fmt.Errorf("failed to describe broker configs: %w", err)
		}
	}

	return NewState(cluster, requested, described), nil
}

// Config returns the described config name on nodeID.
func (s *State) Config(nodeID, name string) (admin.ConfigValue, bool) {
	ns, ok := s.Nodes[nodeID]
	if !ok {
		return admin.ConfigValue{}, false
	}
	cv, ok := ns.Configs[name]
	return cv, ok
}
