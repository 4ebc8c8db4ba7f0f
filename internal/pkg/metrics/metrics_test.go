package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPublishMetrics(reg)
	require.NoError(t, err)

	m.ObservePublish("create", OutcomeSuccess)
	m.ObservePublish("create", OutcomeSuccess)
	m.ObservePublish("update", "not_found")
	m.ObserveCompensation(CompensationFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.publishTotal.WithLabelValues("create", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishTotal.WithLabelValues("update", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.compensationTotal.WithLabelValues(CompensationFailed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.compensationTotal.WithLabelValues(CompensationDeleted)))
}

func TestPublishMetricsReRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPublishMetrics(reg)
	require.NoError(t, err)
	second, err := NewPublishMetrics(reg)
	require.NoError(t, err)

	first.ObservePublish("create", OutcomeSuccess)
	assert.Equal(t, 1.0, testutil.ToFloat64(second.publishTotal.WithLabelValues("create", OutcomeSuccess)))
}

func TestNilPublishMetrics(t *testing.T) {
	var m *PublishMetrics
	assert.NotPanics(t, func() {
		m.ObservePublish("create", OutcomeSuccess)
		m.ObserveCompensation(CompensationDeleted)
	})
}
