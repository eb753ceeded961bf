package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"brokerconf/internal/admin"
	"brokerconf/pkg/logging"

	"gopkg.in/yaml.v3"
)

// Cluster is one entry of the cluster connection file.
type Cluster struct {
	Name             string   `yaml:"name"`
	Brokers          []string `yaml:"brokers"`
	SecurityProtocol string   `yaml:"security_protocol,omitempty"`
	SASLMechanism    string   `yaml:"sasl_mechanism,omitempty"`
	SASLUsername     string   `yaml:"sasl_username,omitempty"`

	// SASLPassword may reference environment variables ($VAR or ${VAR})
	// unless PasswordIsPlaintext is set.
	SASLPassword        string        `yaml:"sasl_password,omitempty"`
	PasswordIsPlaintext bool          `yaml:"password_is_plaintext,omitempty"`
	RequestTimeout      time.Duration `yaml:"request_timeout,omitempty"`
}

// Password returns the SASL password with environment references expanded.
func (c Cluster) Password() string {
	if c.PasswordIsPlaintext {
		return c.SASLPassword
	}
	return os.ExpandEnv(c.SASLPassword)
}

// KafkaOptions converts the entry into admin client options.
func (c Cluster) KafkaOptions() admin.KafkaOptions {
	return admin.KafkaOptions{
		Brokers:          c.Brokers,
		SecurityProtocol: c.SecurityProtocol,
		SASLMechanism:    c.SASLMechanism,
		SASLUsername:     c.SASLUsername,
		SASLPassword:     c.Password(),
		RequestTimeout:   c.RequestTimeout,
	}
}

// Clusters is a loaded cluster connection file.
type Clusters struct {
	path    string
	byName  map[string]Cluster
	ordered []string
}

// LoadClusters reads a YAML list of cluster entries from path.
func LoadClusters(path string) (*Clusters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			ce := newConfigurationError(path, "", ErrorTypeIO, "cluster config file not found", err)
			ce.Suggestions = []string{"pass the file with --cluster-config"}
			return nil, ce
		}
		return nil, newConfigurationError(path, "", ErrorTypeIO, err.Error(), err)
	}

	var entries []Cluster
	if err := yaml.Unmarshal(data, &entries); err != nil {
		ce := newConfigurationError(path, "", ErrorTypeParse, "malformed cluster config", err)
		ce.Details = err.Error()
		ce.Suggestions = []string{"the file must be a YAML list of clusters with name and brokers"}
		return nil, ce
	}

	c := &Clusters{path: path, byName: make(map[string]Cluster, len(entries))}
	for i, entry := range entries {
		if err := validateCluster(entry); err != nil {
			name := entry.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, newConfigurationError(path, name, ErrorTypeValidation, err.Error(), err)
		}
		if _, dup := c.byName[entry.Name]; dup {
			return nil, newConfigurationError(path, entry.Name, ErrorTypeValidation, "duplicate cluster name", nil)
		}
		c.byName[entry.Name] = entry
		c.ordered = append(c.ordered, entry.Name)
	}

	logging.Info("ConfigLoader", "Loaded %d cluster(s) from %s", len(entries), path)
	return c, nil
}

func validateCluster(c Cluster) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(c.Brokers) == 0 {
		return fmt.Errorf("at least one broker is required")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}

// Names returns the cluster names in file order.
func (c *Clusters) Names() []string {
	return append([]string(nil), c.ordered...)
}

// GetCluster looks a cluster up by name. An empty name selects the only
// cluster when the file defines exactly one.
func (c *Clusters) GetCluster(name string) (Cluster, error) {
	if name == "" {
		if len(c.ordered) == 1 {
			return c.byName[c.ordered[0]], nil
		}
		ce := newConfigurationError(c.path, "", ErrorTypeLookup,
			fmt.Sprintf("cluster name required, %d clusters defined", len(c.ordered)), nil)
		ce.Suggestions = []string{"select one with --cluster"}
		return Cluster{}, ce
	}

	cluster, ok := c.byName[name]
	if !ok {
		known := c.Names()
		sort.Strings(known)
		ce := newConfigurationError(c.path, name, ErrorTypeLookup, "cluster not found", nil)
		ce.Details = "known clusters: " + strings.Join(known, ", ")
		return Cluster{}, ce
	}
	return cluster, nil
}
