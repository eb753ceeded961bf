package reconciler

import (
	"testing"
	"time"

	"brokerconf/internal/mutator"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObservePass(t *testing.T) {
	m := NewMetrics()

	m.ObservePass(&Result{
		Success: []mutator.ChangeResult{
			{PlannedChange: mutator.PlannedChange{Op: mutator.OpApply}},
			{PlannedChange: mutator.PlannedChange{Op: mutator.OpRemove}},
		},
		Duration: 120 * time.Millisecond,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.changes.WithLabelValues("apply", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.changes.WithLabelValues("remove", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.passes.WithLabelValues("success")))
	assert.Greater(t, testutil.ToFloat64(m.lastSuccess), 0.0)
}

func TestMetrics_DryRunKeepsSuccessTimestamp(t *testing.T) {
	m := NewMetrics()
	m.ObservePass(&Result{DryRun: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.passes.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.lastSuccess))
}

func TestMetrics_ObserveAbort(t *testing.T) {
	m := NewMetrics()
	m.ObserveAbort()
	m.ObserveAbort()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.passes.WithLabelValues("aborted")))
	count, err := testutil.GatherAndCount(m.Registry())
	assert.NoError(t, err)
	assert.Equal(t, 3, count, "aborted passes series, duration histogram and success gauge")
}
