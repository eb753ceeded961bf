package mutator

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"brokerconf/internal/admin"
	"brokerconf/internal/admin/admintest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRecorder struct {
	mu      sync.Mutex
	records map[string]string
	err     error
}

func (r *memRecorder) Record(name, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.records == nil {
		r.records = make(map[string]string)
	}
	r.records[name] = value
	return nil
}

func newCluster() *admintest.Fake {
	f := admintest.NewFake("1", "2")
	for _, id := range []string{"1", "2"} {
		f.SetConfig(id, admintest.Value("num.io.threads", admintest.Default("8")))
		f.SetConfig(id, admintest.Value("message.max.bytes",
			admintest.Dynamic("60000000"), admintest.Static("50000000"), admintest.Default("1048588")))
		f.SetConfig(id, admintest.Value("log.retention.hours", admintest.Static("72"), admintest.Default("168")))

		logDir := admintest.Value("log.dir", admintest.Static("/var/kafka"))
		logDir.ReadOnly = true
		f.SetConfig(id, logDir)

		secret := admintest.Value("ssl.key.password", admintest.Static("hunter2"))
		secret.Sensitive = true
		f.SetConfig(id, secret)
	}
	return f
}

func TestApplyConfigs_Success(t *testing.T) {
	f := newCluster()
	rec := &memRecorder{}
	m := New(f, WithRecorder(rec))

	out, err := m.ApplyConfigs(context.Background(), nil, map[string]string{
		"num.io.threads":    "16",
		"message.max.bytes": "70000000",
	}, Options{})
	require.NoError(t, err)

	assert.Empty(t, out.Errors)
	require.Len(t, out.Success, 4)
	assert.False(t, out.Failed())

	first := out.Success[0]
	assert.Equal(t, "1", first.NodeID)
	assert.Equal(t, "message.max.bytes", first.ConfigName)
	assert.Equal(t, OpApply, first.Op)
	assert.Equal(t, "60000000", *first.FromValue)
	assert.Equal(t, "70000000", *first.ToValue)

	calls := f.AlterCalls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 2, "one request per broker")
	assert.Equal(t, "1", calls[0][0].NodeID)
	assert.Len(t, calls[0][0].Entries, 2)

	assert.Equal(t, map[string]string{"num.io.threads": "16", "message.max.bytes": "70000000"}, rec.records)

	cv, _ := findConfig(f, "2", "num.io.threads")
	assert.Equal(t, "16", cv.Value)
	assert.Equal(t, admin.SourceDynamicBroker, cv.Source)
}

func findConfig(f *admintest.Fake, nodeID, name string) (admin.ConfigValue, bool) {
	for _, cv := range f.Configs[nodeID] {
		if cv.Name == name {
			return cv, true
		}
	}
	return admin.ConfigValue{}, false
}

func TestApplyConfigs_ReadOnly(t *testing.T) {
	f := newCluster()
	m := New(f)

	out, err := m.ApplyConfigs(context.Background(), []string{"1"}, map[string]string{"log.dir": "/tmp"}, Options{})
	require.NoError(t, err)

	assert.Empty(t, out.Success)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, KindReadOnlyConfig, out.Errors[0].ErrorKind)
	assert.ErrorIs(t, out.Errors[0].Cause, ErrReadOnlyConfig)
	assert.Empty(t, f.AlterCalls(), "no mutation may be issued")
}

func TestApplyConfigs_UnknownAndAllowListed(t *testing.T) {
	f := newCluster()
	m := New(f)

	out, err := m.ApplyConfigs(context.Background(), []string{"1"}, map[string]string{
		"not.a.config":                      "1",
		"leader.replication.throttled.rate": "1000",
	}, Options{})
	require.NoError(t, err)

	require.Len(t, out.Errors, 1)
	assert.Equal(t, "not.a.config", out.Errors[0].ConfigName)
	assert.Equal(t, KindUnknownConfig, out.Errors[0].ErrorKind)

	require.Len(t, out.Success, 1)
	ok := out.Success[0]
	assert.Equal(t, "leader.replication.throttled.rate", ok.ConfigName)
	assert.True(t, ok.Sensitive, "unknown allow-listed configs are treated as sensitive")
	assert.Nil(t, ok.FromValue)
	require.NotNil(t, ok.ToValue)
	assert.Equal(t, RedactedValue, *ok.ToValue)
}

func TestApplyConfigs_CustomAllowList(t *testing.T) {
	f := newCluster()
	m := New(f, WithAllowList("my.plugin.setting"))

	out, err := m.ApplyConfigs(context.Background(), []string{"1"}, map[string]string{
		"my.plugin.setting":                 "x",
		"leader.replication.throttled.rate": "1000",
	}, Options{DryRun: true})
	require.NoError(t, err)

	require.Len(t, out.Success, 1)
	assert.Equal(t, "my.plugin.setting", out.Success[0].ConfigName)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, KindUnknownConfig, out.Errors[0].ErrorKind)
}

func TestApplyConfigs_UnknownNode(t *testing.T) {
	f := newCluster()
	m := New(f)

	out, err := m.ApplyConfigs(context.Background(), []string{"1", "9"}, map[string]string{"num.io.threads": "4"}, Options{})
	require.NoError(t, err)

	require.Len(t, out.Success, 1)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "9", out.Errors[0].NodeID)
	assert.Equal(t, KindUnknownNode, out.Errors[0].ErrorKind)
}

func TestApplyConfigs_DryRun(t *testing.T) {
	f := newCluster()
	rec := &memRecorder{}
	m := New(f, WithRecorder(rec))

	out, err := m.ApplyConfigs(context.Background(), nil, map[string]string{
		"num.io.threads": "16",
		"log.dir":        "/tmp",
	}, Options{DryRun: true})
	require.NoError(t, err)

	assert.Len(t, out.Success, 2)
	assert.Len(t, out.Errors, 2)
	assert.Empty(t, f.AlterCalls())
	assert.Empty(t, rec.records)

	cv, _ := findConfig(f, "1", "num.io.threads")
	assert.Equal(t, "8", cv.Value)
}

func TestDryRun_MatchesRealValidation(t *testing.T) {
	changes := map[string]string{"num.io.threads": "16", "log.dir": "/tmp", "nope": "1"}

	dry, err := New(newCluster()).ApplyConfigs(context.Background(), nil, changes, Options{DryRun: true})
	require.NoError(t, err)
	applied, err := New(newCluster()).ApplyConfigs(context.Background(), nil, changes, Options{})
	require.NoError(t, err)

	assert.Equal(t, dry.Success, applied.Success)
	assert.Equal(t, len(dry.Errors), len(applied.Errors))
}

func TestRemoveDynamicConfigs(t *testing.T) {
	f := newCluster()
	m := New(f)

	out, err := m.RemoveDynamicConfigs(context.Background(), []string{"1"}, []string{
		"message.max.bytes",
		"log.retention.hours",
		"missing.config",
	}, Options{})
	require.NoError(t, err)

	require.Len(t, out.Success, 1)
	assert.Equal(t, "message.max.bytes", out.Success[0].ConfigName)
	assert.Equal(t, OpRemove, out.Success[0].Op)
	assert.Nil(t, out.Success[0].ToValue)

	require.Len(t, out.Errors, 2)
	kinds := map[string]ErrorKind{}
	for _, r := range out.Errors {
		kinds[r.ConfigName] = r.ErrorKind
	}
	assert.Equal(t, KindNotDynamic, kinds["log.retention.hours"])
	assert.Equal(t, KindUnknownConfig, kinds["missing.config"])

	calls := f.AlterCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, []admin.AlterEntry{{Name: "message.max.bytes", Op: admin.AlterDelete}}, calls[0][0].Entries)

	cv, _ := findConfig(f, "1", "message.max.bytes")
	assert.Equal(t, "50000000", cv.Value)
	assert.Equal(t, admin.SourceStaticBroker, cv.Source)
}

func TestExecute_NodeFailureIsolated(t *testing.T) {
	f := newCluster()
	f.AlterErrors["2"] = errors.New("policy violation")
	rec := &memRecorder{}
	m := New(f, WithRecorder(rec))

	out, err := m.ApplyConfigs(context.Background(), nil, map[string]string{
		"num.io.threads":    "16",
		"message.max.bytes": "70000000",
	}, Options{})
	require.NoError(t, err)

	require.Len(t, out.Success, 2)
	require.Len(t, out.Errors, 2)
	for _, r := range out.Success {
		assert.Equal(t, "1", r.NodeID)
	}
	for _, r := range out.Errors {
		assert.Equal(t, "2", r.NodeID)
		assert.Equal(t, KindProtocolError, r.ErrorKind)
		assert.Contains(t, r.Error, "policy violation")
	}
}

func TestExecute_Timeout(t *testing.T) {
	f := newCluster()
	f.HangNodes["1"] = true
	m := New(f, WithTimeout(20*time.Millisecond))

	start := time.Now()
	out, err := m.ApplyConfigs(context.Background(), nil, map[string]string{"num.io.threads": "16"}, Options{})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	require.Len(t, out.Errors, 1)
	assert.Equal(t, "1", out.Errors[0].NodeID)
	assert.Equal(t, KindExecutionTimeout, out.Errors[0].ErrorKind)
	assert.ErrorIs(t, out.Errors[0].Cause, ErrExecutionTimeout)
	assert.ErrorIs(t, out.Errors[0].Cause, context.DeadlineExceeded)

	require.Len(t, out.Success, 1)
	assert.Equal(t, "2", out.Success[0].NodeID)
}

func TestExecute_RecorderFailureKeepsSuccess(t *testing.T) {
	f := newCluster()
	rec := &memRecorder{err: errors.New("disk full")}
	m := New(f, WithRecorder(rec))

	out, err := m.ApplyConfigs(context.Background(), []string{"1"}, map[string]string{"num.io.threads": "16"}, Options{})
	require.NoError(t, err)
	assert.Len(t, out.Success, 1)
	assert.Empty(t, out.Errors)
}

func TestExecute_DescribeFailedNode(t *testing.T) {
	cluster := admin.Cluster{Nodes: []admin.Node{{ID: "1"}}}
	state := NewState(cluster, []string{"1"}, []admin.NodeConfigs{{NodeID: "1", Err: errors.New("broker down")}})

	out := New(admintest.NewFake("1")).Execute(context.Background(), state, PlanApply([]string{"1"}, map[string]string{"a": "1"}), Options{})
	require.Len(t, out.Errors, 1)
	assert.Equal(t, KindProtocolError, out.Errors[0].ErrorKind)
	assert.Contains(t, out.Errors[0].Error, "broker down")
}

func TestExecute_SensitiveRedactedInBothPaths(t *testing.T) {
	f := newCluster()
	f.AlterErrors["2"] = errors.New("boom")
	m := New(f)

	out, err := m.ApplyConfigs(context.Background(), nil, map[string]string{"ssl.key.password": "s3cret"}, Options{})
	require.NoError(t, err)

	require.Len(t, out.Success, 1)
	require.Len(t, out.Errors, 1)
	for _, r := range append(out.Success, out.Errors...) {
		assert.Equal(t, RedactedValue, *r.FromValue)
		assert.Equal(t, RedactedValue, *r.ToValue)
	}
}

func TestRedact_Pure(t *testing.T) {
	orig := ChangeResult{
		PlannedChange: PlannedChange{
			NodeID:     "1",
			ConfigName: "ssl.key.password",
			Sensitive:  true,
			Op:         OpApply,
			FromValue:  strPtr("old"),
			ToValue:    strPtr("new"),
		},
		Status: StatusSuccess,
	}

	red := Redact(orig)
	assert.Equal(t, RedactedValue, *red.FromValue)
	assert.Equal(t, RedactedValue, *red.ToValue)
	assert.Equal(t, "old", *orig.FromValue)
	assert.Equal(t, "new", *orig.ToValue)

	plain := orig
	plain.Sensitive = false
	assert.Equal(t, plain, Redact(plain))

	noValue := orig
	noValue.FromValue = nil
	assert.Nil(t, Redact(noValue).FromValue)
}

func TestChangeResult_JSON(t *testing.T) {
	r := failure(PlannedChange{
		NodeID:     "1",
		ConfigName: "log.dir",
		Op:         OpApply,
		FromValue:  strPtr("/var/kafka"),
		ToValue:    strPtr("/tmp"),
	}, ErrReadOnlyConfig)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "1", decoded["broker_id"])
	assert.Equal(t, "log.dir", decoded["config_name"])
	assert.Equal(t, "apply", decoded["op"])
	assert.Equal(t, "error", decoded["status"])
	assert.Equal(t, "/var/kafka", decoded["old_value"])
	assert.Equal(t, "/tmp", decoded["new_value"])
	assert.Equal(t, "ReadOnlyConfig", decoded["error_kind"])
	assert.Equal(t, "config is read-only", decoded["error"])
	assert.NotContains(t, decoded, "Cause")
}

func TestPlanApply_Deterministic(t *testing.T) {
	planned := PlanApply([]string{"2", "1"}, map[string]string{"b": "2", "a": "1"})
	require.Len(t, planned, 4)
	assert.Equal(t, "2", planned[0].NodeID)
	assert.Equal(t, "a", planned[0].ConfigName)
	assert.Equal(t, "b", planned[1].ConfigName)
	assert.Equal(t, "1", planned[2].NodeID)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknownNode, KindOf(ErrUnknownNode))
	assert.Equal(t, KindExecutionTimeout, KindOf(&admin.WaitError{NodeID: "1", Err: context.DeadlineExceeded}))
	assert.Equal(t, KindProtocolError, KindOf(errors.New("other")))
}
