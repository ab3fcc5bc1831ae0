package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.RequestBuilt("deposit_sol")
	m.RequestBuilt("deposit_sol")
	m.RequestInvalid("deposit_sol", "INVALID_AMOUNT")
	m.Submission("deposit_sol", OutcomeConfirmed, 2*time.Second)
	m.Submission("withdraw_sol", OutcomeRejected, time.Second)
	m.Submission("withdraw_sol", OutcomeDryRun, 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.built.WithLabelValues("deposit_sol")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.invalid.WithLabelValues("deposit_sol", "INVALID_AMOUNT")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.submissions.WithLabelValues("deposit_sol", OutcomeConfirmed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.submissions.WithLabelValues("withdraw_sol", OutcomeRejected)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.submissions.WithLabelValues("withdraw_sol", OutcomeDryRun)))

	// dry runs are not timed
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestMetrics_WriteText(t *testing.T) {
	m := New()
	m.RequestBuilt("initialize")

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))
	assert.Contains(t, buf.String(), `tqclient_requests_built_total{operation="initialize"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RequestBuilt("initialize")
		m.RequestInvalid("initialize", "INVALID_ADDRESS")
		m.Submission("initialize", OutcomeFailed, time.Second)
	})
	assert.Nil(t, m.Registry())

	var buf bytes.Buffer
	assert.NoError(t, m.WriteText(&buf))
	assert.Empty(t, buf.String())
}
