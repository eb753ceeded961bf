package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoClusters = `
- name: cluster1
  brokers: ["broker1:9092", "broker2:9092"]
  security_protocol: PLAINTEXT
  sasl_mechanism: null
  topics:
    - name: topic1
      partitions: 3
- name: cluster2
  brokers: ["broker3:9092", "broker4:9092"]
  security_protocol: SASL_SSL
  sasl_mechanism: PLAIN
  sasl_username: user1
  sasl_password: ${BROKERCONF_TEST_PASSWORD}
  request_timeout: 15s
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clusters.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadClusters(t *testing.T) {
	t.Setenv("BROKERCONF_TEST_PASSWORD", "s3cret")

	clusters, err := LoadClusters(writeFile(t, twoClusters))
	require.NoError(t, err)
	assert.Equal(t, []string{"cluster1", "cluster2"}, clusters.Names())

	c1, err := clusters.GetCluster("cluster1")
	require.NoError(t, err)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, c1.Brokers)
	assert.Empty(t, c1.SASLMechanism)

	c2, err := clusters.GetCluster("cluster2")
	require.NoError(t, err)
	opts := c2.KafkaOptions()
	assert.Equal(t, "SASL_SSL", opts.SecurityProtocol)
	assert.Equal(t, "PLAIN", opts.SASLMechanism)
	assert.Equal(t, "user1", opts.SASLUsername)
	assert.Equal(t, "s3cret", opts.SASLPassword)
	assert.Equal(t, 15*time.Second, opts.RequestTimeout)
}

func TestGetCluster(t *testing.T) {
	t.Run("only cluster selected by default", func(t *testing.T) {
		clusters, err := LoadClusters(writeFile(t, "- name: solo\n  brokers: [\"b:9092\"]\n"))
		require.NoError(t, err)
		c, err := clusters.GetCluster("")
		require.NoError(t, err)
		assert.Equal(t, "solo", c.Name)
	})

	t.Run("name required with several clusters", func(t *testing.T) {
		clusters, err := LoadClusters(writeFile(t, twoClusters))
		require.NoError(t, err)
		_, err = clusters.GetCluster("")
		var ce *ConfigurationError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, ErrorTypeLookup, ce.ErrorType)
	})

	t.Run("unknown cluster", func(t *testing.T) {
		clusters, err := LoadClusters(writeFile(t, twoClusters))
		require.NoError(t, err)
		_, err = clusters.GetCluster("cluster9")
		var ce *ConfigurationError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "cluster9", ce.Cluster)
		assert.Contains(t, ce.DetailedError(), "known clusters: cluster1, cluster2")
	})
}

func TestLoadClusters_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errorType string
	}{
		{name: "malformed yaml", content: "- name: [unclosed\n", errorType: ErrorTypeParse},
		{name: "not a list", content: "name: cluster1\n", errorType: ErrorTypeParse},
		{name: "missing name", content: "- brokers: [\"b:9092\"]\n", errorType: ErrorTypeValidation},
		{name: "missing brokers", content: "- name: c\n", errorType: ErrorTypeValidation},
		{name: "duplicate", content: "- name: c\n  brokers: [a]\n- name: c\n  brokers: [b]\n", errorType: ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadClusters(writeFile(t, tt.content))
			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.errorType, ce.ErrorType)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadClusters(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestPassword(t *testing.T) {
	t.Setenv("BROKERCONF_TEST_PASSWORD", "expanded")

	c := Cluster{SASLPassword: "$BROKERCONF_TEST_PASSWORD"}
	assert.Equal(t, "expanded", c.Password())

	c.PasswordIsPlaintext = true
	assert.Equal(t, "$BROKERCONF_TEST_PASSWORD", c.Password())
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, LoadEnvFile(""))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BROKERCONF_ENV_FILE_TEST=from-file\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("BROKERCONF_ENV_FILE_TEST") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("BROKERCONF_ENV_FILE_TEST"))

	assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
