package health

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"brokerconf/internal/admin"
	"brokerconf/pkg/logging"

	"golang.org/x/sync/errgroup"
)

// HealthyReason is the single reason reported for a healthy cluster.
const HealthyReason = "Cluster is healthy."

// Partition is one topic partition's replica placement.
type Partition struct {
	Topic    string  `json:"topic" yaml:"topic"`
	ID       int32   `json:"id" yaml:"id"`
	Leader   int32   `json:"leader" yaml:"leader"`
	Replicas []int32 `json:"replicas" yaml:"replicas"`
	ISR      []int32 `json:"isr" yaml:"isr"`
}

// FromPartitionInfo converts an admin partition description.
func FromPartitionInfo(p admin.PartitionInfo) Partition {
	return Partition{Topic: p.Topic, ID: p.Partition, Leader: p.Leader, Replicas: p.Replicas, ISR: p.ISR}
}

func (p Partition) key() string {
	return fmt.Sprintf("%s/%d", p.Topic, p.ID)
}

// Response is the verdict of a health check.
type Response struct {
	Healthy bool     `json:"healthy" yaml:"healthy"`
	Reasons []string `json:"reason" yaml:"reason"`
}

// Checker accumulates partition checks. It is safe for concurrent use.
type Checker struct {
	mu           sync.Mutex
	outsideISR   map[string]Partition
	notPreferred map[string]Partition
	checked      int
}

// NewChecker creates an empty Checker.
func NewChecker() *Checker {
	return &Checker{
		outsideISR:   make(map[string]Partition),
		notPreferred: make(map[string]Partition),
	}
}

// Check records p as unhealthy when its ISR differs from its replica set or
// its leader is not the preferred replica.
func (c *Checker) Check(p Partition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checked++
	if len(p.Replicas) == 0 || p.Leader != p.Replicas[0] {
		c.notPreferred[p.key()] = p
	}
	if !sameSet(p.Replicas, p.ISR) {
		c.outsideISR[p.key()] = p
	}
}

// Result returns the verdict for everything checked so far.
func (c *Checker) Result() Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	var reasons []string
	if len(c.outsideISR) > 0 {
		reasons = append(reasons, fmt.Sprintf("Partitions %s are missing ISR.", partitionList(c.outsideISR)))
	}
	if len(c.notPreferred) > 0 {
		reasons = append(reasons, fmt.Sprintf("Partitions %s do not have their preferred replica as leader.",
			partitionList(c.notPreferred)))
	}
	if len(reasons) == 0 {
		return Response{Healthy: true, Reasons: []string{HealthyReason}}
	}
	return Response{Healthy: false, Reasons: reasons}
}

func partitionList(parts map[string]Partition) string {
	sorted := make([]Partition, 0, len(parts))
	for _, p := range parts {
		sorted = append(sorted, p)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Topic != sorted[j].Topic {
			return sorted[i].Topic < sorted[j].Topic
		}
		return sorted[i].ID < sorted[j].ID
	})

	items := make([]string, len(sorted))
	for i, p := range sorted {
		items[i] = fmt.Sprintf("(%s, %d)", p.Topic, p.ID)
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func sameSet(a, b []int32) bool {
	set := make(map[int32]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	other := make(map[int32]bool, len(b))
	for _, v := range b {
		if !set[v] {
			return false
		}
		other[v] = true
	}
	return len(set) == len(other)
}

// describeConcurrency bounds parallel topic describes.
const describeConcurrency = 8

// CheckCluster lists every topic and checks all of its partitions.
func CheckCluster(ctx context.Context, client admin.Client) (Response, error) {
	topics, err := client.ListTopics(ctx)
	if err != nil {
		return Response{}, err
	}

	checker := NewChecker()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(describeConcurrency)
	for _, topic := range topics {
		g.Go(func() error {
			parts, err := client.DescribeTopics(gctx, []string{topic})
			if err != nil {
				return err
			}
			for _, p := range parts {
				checker.Check(FromPartitionInfo(p))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Response{}, err
	}

	res := checker.Result()
	logging.Debug("Health", "Checked %d partitions across %d topics: healthy=%t", checker.checked, len(topics), res.Healthy)
	return res, nil
}

// WaitHealthy repeats CheckCluster every interval until the cluster is
// healthy or timeout elapses. The last response is always returned.
func WaitHealthy(ctx context.Context, client admin.Client, timeout, interval time.Duration) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last Response
	for {
		res, err := CheckCluster(ctx, client)
		if err != nil {
			if ctx.Err() != nil && last.Reasons != nil {
				return last, nil
			}
			return res, err
		}
		last = res
		if res.Healthy {
			return res, nil
		}
		logging.Info("Health", "Cluster not healthy yet: %s", strings.Join(res.Reasons, " "))

		select {
		case <-ctx.Done():
			return last, nil
		case <-ticker.C:
		}
	}
}
