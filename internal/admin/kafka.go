package admin

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"brokerconf/pkg/logging"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/pkg/sasl/scram"
)

// DefaultRequestTimeout bounds a single admin request.
const DefaultRequestTimeout = 10 * time.Second

// KafkaOptions describes how to reach a cluster.
type KafkaOptions struct {
	Brokers          []string
	SecurityProtocol string
	SASLMechanism    string
	SASLUsername     string
	SASLPassword     string
	RequestTimeout   time.Duration
}

// KafkaClient implements Client on top of franz-go. Broker config requests
// are routed by franz-go to the broker that owns each resource.
type KafkaClient struct {
	cl             *kgo.Client
	adm            *kadm.Client
	requestTimeout time.Duration
}

// NewKafkaClient builds a client for the given cluster. No connection is
// made until the first request.
func NewKafkaClient(opts KafkaOptions) (*KafkaClient, error) {
	if len(opts.Brokers) == 0 {
		return nil, fmt.Errorf("at least one bootstrap broker is required")
	}

	kopts := []kgo.Opt{kgo.SeedBrokers(opts.Brokers...)}

	protocol := strings.ToUpper(opts.SecurityProtocol)
	switch protocol {
	case "", "PLAINTEXT", "SASL_PLAINTEXT":
	case "SSL", "SASL_SSL":
		kopts = append(kopts, kgo.DialTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}))
	default:
		return nil, fmt.Errorf("unsupported security protocol %q", opts.SecurityProtocol)
	}

	if strings.HasPrefix(protocol, "SASL_") || opts.SASLMechanism != "" {
		mech, err := saslMechanism(opts.SASLMechanism, opts.SASLUsername, opts.SASLPassword)
		if err != nil {
			return nil, err
		}
		kopts = append(kopts, kgo.SASL(mech))
	}

	cl, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	logging.Debug("AdminClient", "Created client for %s (protocol=%s)", strings.Join(opts.Brokers, ","), protocolOrDefault(protocol))
	return &KafkaClient{
		cl:             cl,
		adm:            kadm.NewClient(cl),
		requestTimeout: timeout,
	}, nil
}

func protocolOrDefault(p string) string {
	if p == "" {
		return "PLAINTEXT"
	}
	return p
}

func saslMechanism(name, user, pass string) (sasl.Mechanism, error) {
	switch strings.ToUpper(name) {
	case "PLAIN":
		return plain.Auth{User: user, Pass: pass}.AsMechanism(), nil
	case "SCRAM-SHA-256":
		return scram.Auth{User: user, Pass: pass}.AsSha256Mechanism(), nil
	case "SCRAM-SHA-512":
		return scram.Auth{User: user, Pass: pass}.AsSha512Mechanism(), nil
	case "":
		return nil, fmt.Errorf("sasl security protocol requires a sasl mechanism")
	default:
		return nil, fmt.Errorf("unsupported sasl mechanism %q", name)
	}
}

// Close releases the underlying connections.
func (k *KafkaClient) Close() {
	k.cl.Close()
}

// DescribeCluster implements Client.
func (k *KafkaClient) DescribeCluster(ctx context.Context) (Cluster, error) {
	ctx, cancel := context.WithTimeout(ctx, k.requestTimeout)
	defer cancel()

	meta, err := k.adm.BrokerMetadata(ctx)
	if err != nil {
		return Cluster{}, fmt.Errorf("failed to describe cluster: %w", err)
	}

	cluster := Cluster{
		ClusterID:    meta.Cluster,
		ControllerID: strconv.Itoa(int(meta.Controller)),
	}
	brokers := meta.Brokers
	sort.Slice(brokers, func(i, j int) bool { return brokers[i].NodeID < brokers[j].NodeID })
	for _, b := range brokers {
		node := Node{
			ID:           strconv.Itoa(int(b.NodeID)),
			Host:         b.Host,
			Port:         b.Port,
			IsController: b.NodeID == meta.Controller,
		}
		if b.Rack != nil {
			node.Rack = *b.Rack
		}
		cluster.Nodes = append(cluster.Nodes, node)
	}
	return cluster, nil
}

// ListTopics implements Client.
func (k *KafkaClient) ListTopics(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, k.requestTimeout)
	defer cancel()

	details, err := k.adm.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}

	names := make([]string, 0, len(details))
	for name := range details {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DescribeTopics implements Client.
func (k *KafkaClient) DescribeTopics(ctx context.Context, topics []string) ([]PartitionInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, k.requestTimeout)
	defer cancel()

	details, err := k.adm.ListTopics(ctx, topics...)
	if err != nil {
		return nil, fmt.Errorf("failed to describe topics: %w", err)
	}

	var out []PartitionInfo
	for name, td := range details {
		if td.Err != nil {
			return nil, fmt.Errorf("failed to describe topic %s: %w", name, td.Err)
		}
		for _, pd := range td.Partitions {
			out = append(out, PartitionInfo{
				Topic:     name,
				Partition: pd.Partition,
				Leader:    pd.Leader,
				Replicas:  pd.Replicas,
				ISR:       pd.ISR,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Topic != out[j].Topic {
			return out[i].Topic < out[j].Topic
		}
		return out[i].Partition < out[j].Partition
	})
	return out, nil
}

// DescribeConfigs implements Client.
func (k *KafkaClient) DescribeConfigs(ctx context.Context, nodeIDs []string) ([]NodeConfigs, error) {
	if len(nodeIDs) == 0 {
		cluster, err := k.DescribeCluster(ctx)
		if err != nil {
			return nil, err
		}
		nodeIDs = cluster.NodeIDs()
	}

	ctx, cancel := context.WithTimeout(ctx, k.requestTimeout)
	defer cancel()

	req := kmsg.NewPtrDescribeConfigsRequest()
	req.IncludeSynonyms = true
	for _, id := range nodeIDs {
		res := kmsg.NewDescribeConfigsRequestResource()
		res.ResourceType = kmsg.ConfigResourceTypeBroker
		res.ResourceName = id
		req.Resources = append(req.Resources, res)
	}

	byNode := make(map[string]NodeConfigs, len(nodeIDs))
	for _, shard := range k.cl.RequestSharded(ctx, req) {
		if shard.Err != nil {
			for _, id := range shardResourceNames(shard.Req) {
				byNode[id] = NodeConfigs{NodeID: id, Err: shard.Err}
			}
			logging.Warn("AdminClient", "Describe configs failed on broker %d: %v", shard.Meta.NodeID, shard.Err)
			continue
		}
		resp, ok := shard.Resp.(*kmsg.DescribeConfigsResponse)
		if !ok {
			continue
		}
		for _, nc := range nodeConfigsFromResponse(resp) {
			byNode[nc.NodeID] = nc
		}
	}

	out := make([]NodeConfigs, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		nc, ok := byNode[id]
		if !ok {
			nc = NodeConfigs{NodeID: id, Err: fmt.Errorf("no describe response for broker %s", id)}
		}
		out = append(out, nc)
	}
	return out, nil
}

func shardResourceNames(req kmsg.Request) []string {
	dreq, ok := req.(*kmsg.DescribeConfigsRequest)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(dreq.Resources))
	for _, r := range dreq.Resources {
		names = append(names, r.ResourceName)
	}
	return names
}

func nodeConfigsFromResponse(resp *kmsg.DescribeConfigsResponse) []NodeConfigs {
	out := make([]NodeConfigs, 0, len(resp.Resources))
	for _, r := range resp.Resources {
		nc := NodeConfigs{NodeID: r.ResourceName}
		if err := resourceError(r.ErrorCode, r.ErrorMessage); err != nil {
			nc.Err = err
			out = append(out, nc)
			continue
		}
		for _, c := range r.Configs {
			source := sourceFromKmsg(c.Source)
			cv := ConfigValue{
				Name:      c.Name,
				Value:     derefString(c.Value),
				IsDefault: c.IsDefault || source == SourceDefault,
				ReadOnly:  c.ReadOnly,
				Sensitive: c.IsSensitive,
				Source:    source,
			}
			for _, s := range c.ConfigSynonyms {
				cv.Synonyms = append(cv.Synonyms, ConfigSynonym{
					Name:   s.Name,
					Value:  derefString(s.Value),
					Source: sourceFromKmsg(s.Source),
				})
			}
			nc.Configs = append(nc.Configs, cv)
		}
		out = append(out, nc)
	}
	return out
}

// IncrementalAlterConfigs implements Client. Each resource is sent as its
// own request so that one broker's failure never masks another's outcome.
func (k *KafkaClient) IncrementalAlterConfigs(ctx context.Context, resources []AlterResource) []*Future {
	futures := make([]*Future, len(resources))
	for i, res := range resources {
		f := NewFuture(res.NodeID)
		futures[i] = f

		req := alterRequest(res)
		go func() {
			reqCtx, cancel := context.WithTimeout(ctx, k.requestTimeout)
			defer cancel()

			resp, err := req.RequestWith(reqCtx, k.cl)
			if err != nil {
				f.Resolve(fmt.Errorf("alter request to broker %s failed: %w", res.NodeID, err))
				return
			}
			f.Resolve(alterResponseError(res.NodeID, resp))
		}()
	}
	return futures
}

func alterRequest(res AlterResource) *kmsg.IncrementalAlterConfigsRequest {
	req := kmsg.NewPtrIncrementalAlterConfigsRequest()
	r := kmsg.NewIncrementalAlterConfigsRequestResource()
	r.ResourceType = kmsg.ConfigResourceTypeBroker
	r.ResourceName = res.NodeID
	for _, e := range res.Entries {
		c := kmsg.NewIncrementalAlterConfigsRequestResourceConfig()
		c.Name = e.Name
		switch e.Op {
		case AlterDelete:
			c.Op = kmsg.IncrementalAlterConfigOpDelete
		default:
			c.Op = kmsg.IncrementalAlterConfigOpSet
			c.Value = kmsg.StringPtr(e.Value)
		}
		r.Configs = append(r.Configs, c)
	}
	req.Resources = append(req.Resources, r)
	return req
}

func alterResponseError(nodeID string, resp *kmsg.IncrementalAlterConfigsResponse) error {
	for _, r := range resp.Resources {
		if r.ResourceName != nodeID {
			continue
		}
		return resourceError(r.ErrorCode, r.ErrorMessage)
	}
	return fmt.Errorf("alter response did not include broker %s", nodeID)
}

func resourceError(code int16, msg *string) error {
	err := kerr.ErrorForCode(code)
	if err == nil {
		return nil
	}
	if msg != nil && *msg != "" {
		return fmt.Errorf("%w: %s", err, *msg)
	}
	return err
}

// IsRetriable reports whether err is a broker error that may succeed on a
// later pass.
func IsRetriable(err error) bool {
	var kerrErr *kerr.Error
	if errors.As(err, &kerrErr) {
		return kerrErr.Retriable
	}
	return false
}

func sourceFromKmsg(s kmsg.ConfigSource) ConfigSource {
	switch s {
	case kmsg.ConfigSourceDynamicTopicConfig:
		return SourceDynamicTopic
	case kmsg.ConfigSourceDynamicBrokerConfig:
		return SourceDynamicBroker
	case kmsg.ConfigSourceDynamicDefaultBrokerConfig:
		return SourceDynamicDefaultBroker
	case kmsg.ConfigSourceStaticBrokerConfig:
		return SourceStaticBroker
	case kmsg.ConfigSourceDefaultConfig:
		return SourceDefault
	case kmsg.ConfigSourceDynamicBrokerLoggerConfig:
		return SourceDynamicBrokerLogger
	default:
		return SourceUnknown
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
