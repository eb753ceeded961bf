package admin

import (
	"context"
	"sort"
	"strings"
)

// ConfigSource names the origin of a broker config value, using the wire
// names the broker tooling prints.
type ConfigSource string

const (
	SourceUnknown              ConfigSource = "UNKNOWN"
	SourceDynamicTopic         ConfigSource = "DYNAMIC_TOPIC_CONFIG"
	SourceDynamicBroker        ConfigSource = "DYNAMIC_BROKER_CONFIG"
	SourceDynamicDefaultBroker ConfigSource = "DYNAMIC_DEFAULT_BROKER_CONFIG"
	SourceStaticBroker         ConfigSource = "STATIC_BROKER_CONFIG"
	SourceDefault              ConfigSource = "DEFAULT_CONFIG"
	SourceDynamicBrokerLogger  ConfigSource = "DYNAMIC_BROKER_LOGGER_CONFIG"
)

// ConfigSynonym is one source's value for a config key, in precedence order.
type ConfigSynonym struct {
	Name   string
	Value  string
	Source ConfigSource
}

// ConfigValue is a single config as described by one broker.
type ConfigValue struct {
	Name      string
	Value     string
	IsDefault bool
	ReadOnly  bool
	Sensitive bool
	Source    ConfigSource
	Synonyms  []ConfigSynonym
}

// NodeConfigs is the describe result for one broker. Err is set when that
// broker's part of the request failed; other brokers are unaffected.
type NodeConfigs struct {
	NodeID  string
	Configs []ConfigValue
	Err     error
}

// Node is a broker as reported by cluster metadata.
type Node struct {
	ID           string `json:"id" yaml:"id"`
	Host         string `json:"host" yaml:"host"`
	Port         int32  `json:"port" yaml:"port"`
	Rack         string `json:"rack,omitempty" yaml:"rack,omitempty"`
	IsController bool   `json:"isController" yaml:"isController"`
}

// Cluster is the result of DescribeCluster.
type Cluster struct {
	ClusterID    string `json:"clusterId,omitempty" yaml:"clusterId,omitempty"`
	ControllerID string `json:"controllerId" yaml:"controllerId"`
	Nodes        []Node `json:"nodes" yaml:"nodes"`
}

// NodeIDs returns the broker ids in ascending numeric order.
func (c Cluster) NodeIDs() []string {
	ids := make([]string, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		ids = append(ids, n.ID)
	}
	SortNodeIDs(ids)
	return ids
}

// HasNode reports whether id is a member of the cluster.
func (c Cluster) HasNode(id string) bool {
	for _, n := range c.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// AlterOp is the incremental alter operation for one entry.
type AlterOp int

const (
	AlterSet AlterOp = iota
	AlterDelete
)

func (o AlterOp) String() string {
	if o == AlterDelete {
		return "DELETE"
	}
	return "SET"
}

// AlterEntry is one config operation inside a node's alter request.
type AlterEntry struct {
	Name  string
	Op    AlterOp
	Value string
}

// AlterResource carries every entry to change on one broker. The protocol
// reports a single outcome per resource, so all entries share that outcome.
type AlterResource struct {
	NodeID  string
	Entries []AlterEntry
}

// PartitionInfo describes one partition's replica placement.
type PartitionInfo struct {
	Topic     string
	Partition int32
	Leader    int32
	Replicas  []int32
	ISR       []int32
}

// Client is the administrative capability the reconciliation engine needs
// from a cluster.
type Client interface {
	// DescribeConfigs returns the full config set of each requested broker.
	// An empty nodeIDs slice describes every broker in the cluster.
	DescribeConfigs(ctx context.Context, nodeIDs []string) ([]NodeConfigs, error)

	// IncrementalAlterConfigs submits one request per resource and returns
	// one handle per resource, in input order. It never blocks on the
	// outcome.
	IncrementalAlterConfigs(ctx context.Context, resources []AlterResource) []*Future

	// DescribeCluster returns broker membership and the active controller.
	DescribeCluster(ctx context.Context) (Cluster, error)

	// ListTopics returns non-internal topic names, sorted.
	ListTopics(ctx context.Context) ([]string, error)

	// DescribeTopics returns partition placement for the given topics.
	DescribeTopics(ctx context.Context, topics []string) ([]PartitionInfo, error)

	Close()
}

// SortNodeIDs sorts numeric broker ids by value, followed by any
// non-numeric ids in lexical order.
func SortNodeIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		da, db := isDigits(a), isDigits(b)
		switch {
		case da && db:
			a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
			if len(a) != len(b) {
				return len(a) < len(b)
			}
			return a < b
		case da != db:
			return da
		default:
			return a < b
		}
	})
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
