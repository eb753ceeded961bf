package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"brokerconf/internal/admin"
	"brokerconf/internal/cli"
	"brokerconf/internal/mutator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) value(t *testing.T, nodeID, name string) admin.ConfigValue {
	t.Helper()
	for _, cv := range h.fake.Configs[nodeID] {
		if cv.Name == name {
			return cv
		}
	}
	t.Fatalf("config %s not found on %s", name, nodeID)
	return admin.ConfigValue{}
}

type changeReport struct {
	DryRun  bool                   `json:"dry_run"`
	Success []mutator.ChangeResult `json:"success"`
	Errors  []mutator.ChangeResult `json:"errors"`
}

func decodeReport(t *testing.T, out string) changeReport {
	t.Helper()
	var r changeReport
	require.NoError(t, json.Unmarshal([]byte(out), &r), out)
	return r
}

func TestApplyConfigs(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "apply-configs", "-c", h.clusterConfig,
		"--config-changes", "num.io.threads=10", "--broker-ids", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Success:")
	assert.Contains(t, out, "All config operations completed successfully")

	assert.Equal(t, "10", h.value(t, "1", "num.io.threads").Value)
	assert.Equal(t, "8", h.value(t, "2", "num.io.threads").Value)
}

func TestApplyConfigs_AllBrokersAndRecord(t *testing.T) {
	h := newHarness(t)
	recordDir := filepath.Join(h.dir, "records")

	out, err := h.run(t, "apply-configs", "-c", h.clusterConfig, "-o", "json",
		"--config-changes", "num.io.threads=10", "--record-dir", recordDir)
	require.NoError(t, err)

	r := decodeReport(t, out)
	assert.Len(t, r.Success, 2)
	assert.Empty(t, r.Errors)

	data, err := os.ReadFile(filepath.Join(recordDir, "num.io.threads"))
	require.NoError(t, err)
	assert.Equal(t, "10", string(data))
}

func TestApplyConfigs_Failures(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "apply-configs", "-c", h.clusterConfig, "-o", "json",
		"--config-changes", "broker.id=7,num.io.threads=10", "--broker-ids", "1")
	var cfe *cli.ChangesFailedError
	require.True(t, errors.As(err, &cfe))
	assert.Equal(t, ExitCodeChangesFailed, getExitCode(err))

	r := decodeReport(t, out)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, mutator.KindReadOnlyConfig, r.Errors[0].ErrorKind)
	require.Len(t, r.Success, 1)
	assert.Equal(t, "num.io.threads", r.Success[0].ConfigName)
}

func TestApplyConfigs_DryRun(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "apply-configs", "-c", h.clusterConfig,
		"--config-changes", "num.io.threads=10", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run completed successfully")
	assert.Empty(t, h.fake.AlterCalls())
}

func TestApplyConfigs_BadInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "apply-configs", "-c", h.clusterConfig, "--config-changes", "novalue")
	assert.ErrorContains(t, err, "expected name=value")

	_, err = h.run(t, "apply-configs", "-c", h.clusterConfig)
	assert.ErrorContains(t, err, "config-changes")
}

func TestRemoveDynamicConfigs(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "remove-dynamic-configs", "-c", h.clusterConfig, "-o", "json",
		"--configs", "message.max.bytes,num.io.threads")
	require.Error(t, err)

	r := decodeReport(t, out)
	assert.Len(t, r.Success, 2)
	require.Len(t, r.Errors, 2)
	for _, e := range r.Errors {
		assert.Equal(t, "num.io.threads", e.ConfigName)
		assert.Equal(t, mutator.KindNotDynamic, e.ErrorKind)
	}

	cv := h.value(t, "1", "message.max.bytes")
	assert.Equal(t, "1048588", cv.Value)
	assert.Equal(t, admin.SourceStaticBroker, cv.Source)
}

func TestDescribeCommands(t *testing.T) {
	h := newHarness(t)
	h.fake.Partitions["events"] = []admin.PartitionInfo{
		{Topic: "events", Partition: 0, Leader: 1, Replicas: []int32{1, 2}, ISR: []int32{1, 2}},
	}

	t.Run("describe-cluster", func(t *testing.T) {
		out, err := h.run(t, "describe-cluster", "-c", h.clusterConfig, "-o", "json")
		require.NoError(t, err)
		var nodes []admin.Node
		require.NoError(t, json.Unmarshal([]byte(out), &nodes))
		require.Len(t, nodes, 2)
		assert.True(t, nodes[0].IsController)
	})

	t.Run("list-topics", func(t *testing.T) {
		out, err := h.run(t, "list-topics", "-c", h.clusterConfig)
		require.NoError(t, err)
		assert.Equal(t, "events\n", out)
	})

	t.Run("describe-broker-configs", func(t *testing.T) {
		out, err := h.run(t, "describe-broker-configs", "-c", h.clusterConfig, "-o", "json")
		require.NoError(t, err)
		var rows []cli.BrokerConfig
		require.NoError(t, json.Unmarshal([]byte(out), &rows))
		assert.Len(t, rows, 6)
		assert.Equal(t, "1", rows[0].Broker)
	})

	t.Run("describe-broker-configs with unknown broker", func(t *testing.T) {
		_, err := h.run(t, "describe-broker-configs", "-c", h.clusterConfig, "--broker-ids", "1,9")
		assert.ErrorContains(t, err, "failed to describe brokers 9")
	})
}

func TestHealthcheck(t *testing.T) {
	h := newHarness(t)
	h.fake.Partitions["events"] = []admin.PartitionInfo{
		{Topic: "events", Partition: 0, Leader: 1, Replicas: []int32{1, 2}, ISR: []int32{1, 2}},
	}

	out, err := h.run(t, "healthcheck", "-c", h.clusterConfig)
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")

	h.fake.Partitions["logs"] = []admin.PartitionInfo{
		{Topic: "logs", Partition: 0, Leader: 1, Replicas: []int32{1, 2}, ISR: []int32{1}},
	}
	out, err = h.run(t, "healthcheck", "-c", h.clusterConfig, "-o", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCodeUnhealthy, getExitCode(err))
	assert.Contains(t, out, `"healthy": false`)
	assert.Contains(t, out, "(logs, 0)")
}

func TestApplyDesiredConfigs(t *testing.T) {
	h := newHarness(t)
	recordDir := filepath.Join(h.dir, "records")
	require.NoError(t, os.Mkdir(recordDir, 0755))
	props := filepath.Join(h.dir, "server.properties")
	require.NoError(t, os.WriteFile(props, []byte("broker.id=1\nnum.io.threads=12\nmessage.max.bytes=1048588\n"), 0644))
	metricsFile := filepath.Join(h.dir, "brokerconf.prom")

	args := []string{"apply-desired-configs", "-c", h.clusterConfig, "-o", "json",
		"--record-dir", recordDir, "--properties-file", props, "--metrics-textfile", metricsFile}

	out, err := h.run(t, append(args, "--dry-run")...)
	require.NoError(t, err)
	r := decodeReport(t, out)
	assert.True(t, r.DryRun)
	assert.Len(t, r.Success, 2)
	assert.Empty(t, h.fake.AlterCalls())

	out, err = h.run(t, args...)
	require.NoError(t, err)
	r = decodeReport(t, out)
	require.Len(t, r.Success, 2)
	ops := map[string]mutator.Op{}
	for _, s := range r.Success {
		ops[s.ConfigName] = s.Op
	}
	assert.Equal(t, mutator.OpApply, ops["num.io.threads"])
	assert.Equal(t, mutator.OpRemove, ops["message.max.bytes"])
	assert.Equal(t, "12", h.value(t, "1", "num.io.threads").Value)

	out, err = h.run(t, args...)
	require.NoError(t, err)
	r = decodeReport(t, out)
	assert.Empty(t, r.Success)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "brokerconf_reconcile_passes_total")
}

func TestApplyDesiredConfigs_EmergencyRecordWins(t *testing.T) {
	h := newHarness(t)
	recordDir := filepath.Join(h.dir, "records")
	require.NoError(t, os.Mkdir(recordDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(recordDir, "num.io.threads"), []byte("32"), 0644))
	props := filepath.Join(h.dir, "server.properties")
	require.NoError(t, os.WriteFile(props, []byte("broker.id=2\nnum.io.threads=12\n"), 0644))

	out, err := h.run(t, "apply-desired-configs", "-c", h.clusterConfig, "-o", "json",
		"--record-dir", recordDir, "--properties-file", props)
	require.NoError(t, err)
	r := decodeReport(t, out)
	require.Len(t, r.Success, 1)
	assert.Equal(t, "2", r.Success[0].NodeID)
	assert.Equal(t, "32", *r.Success[0].ToValue)
}

func TestApplyDesiredConfigs_MissingInputs(t *testing.T) {
	h := newHarness(t)
	props := filepath.Join(h.dir, "server.properties")
	require.NoError(t, os.WriteFile(props, []byte("broker.id=1\n"), 0644))

	_, err := h.run(t, "apply-desired-configs", "-c", h.clusterConfig,
		"--record-dir", filepath.Join(h.dir, "nope"), "--properties-file", props)
	require.Error(t, err)
	assert.Equal(t, ExitCodeError, getExitCode(err))
}

func TestRecordedConfigs(t *testing.T) {
	h := newHarness(t)
	recordDir := filepath.Join(h.dir, "records")
	require.NoError(t, os.Mkdir(recordDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(recordDir, "num.io.threads"), []byte("32"), 0644))

	out, err := h.run(t, "list-recorded-configs", "-r", recordDir)
	require.NoError(t, err)
	assert.Equal(t, "num.io.threads=32\n", out)

	out, err = h.run(t, "remove-recorded-configs", "-r", recordDir, "--configs", "num.io.threads,missing", "-o", "json")
	require.NoError(t, err)
	var results []cli.CleanupResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Equal(t, []cli.CleanupResult{
		{Config: "num.io.threads", Removed: true},
		{Config: "missing", Removed: false},
	}, results)

	_, err = os.Stat(filepath.Join(recordDir, "num.io.threads"))
	assert.True(t, os.IsNotExist(err))

	_, err = h.run(t, "remove-recorded-configs", "-r", recordDir, "--configs", "../etc")
	assert.Error(t, err)
}
