package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/orbs-network/pos-analytics/pkg/logger"
	"github.com/orbs-network/pos-analytics/pkg/metrics/metricsTypes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_UnexpectedLabelsParsing(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)

	pmc, err := NewPrometheusMetricsClient(&PrometheusMetricsConfig{
		Metrics:    metricsTypes.MetricTypes,
		Registerer: prometheus.NewRegistry(),
	}, l)
	assert.Nil(t, err)

	t.Run("Should return no error for all labels", func(t *testing.T) {
		err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Timing, metricsTypes.Metric_Timing_HttpDuration, []metricsTypes.MetricsLabel{
			{Name: "method", Value: "GET"},
			{Name: "path", Value: "/api/v1/overview"},
			{Name: "status_code", Value: "200"},
			{Name: "pattern", Value: "/api/v1/overview"},
		})
		assert.Nil(t, err)
	})
	t.Run("Should return no error for a subset labels", func(t *testing.T) {
		err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Timing, metricsTypes.Metric_Timing_HttpDuration, []metricsTypes.MetricsLabel{
			{Name: "method", Value: "GET"},
		})
		assert.Nil(t, err)
	})
	t.Run("Should return an error for unexpected labels", func(t *testing.T) {
		err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Timing, metricsTypes.Metric_Timing_HttpDuration, []metricsTypes.MetricsLabel{
			{Name: "method", Value: "GET"},
			{Name: "unexpectedLabel", Value: "unexpectedValue"},
		})
		assert.NotNil(t, err)
	})
	t.Run("Should return an error for unexpected labels when expecting 0 labels", func(t *testing.T) {
		err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Gauge, metricsTypes.Metric_Gauge_CurrentBlockHeight, []metricsTypes.MetricsLabel{
			{Name: "unexpectedLabel", Value: "unexpectedValue"},
		})
		assert.NotNil(t, err)
	})
}

func Test_PrometheusServer(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.Nil(t, err)

	reg := prometheus.NewRegistry()
	pmc, err := NewPrometheusMetricsClient(&PrometheusMetricsConfig{
		Metrics:    metricsTypes.MetricTypes,
		Registerer: reg,
	}, l)
	require.Nil(t, err)

	assert.Nil(t, pmc.Gauge(metricsTypes.Metric_Gauge_CurrentBlockHeight, 12345, nil))
	assert.Nil(t, pmc.Incr(metricsTypes.Metric_Incr_LogsFetched, []metricsTypes.MetricsLabel{
		{Name: "contract", Value: "stake"},
	}, 3))
	assert.Nil(t, pmc.Timing(metricsTypes.Metric_Timing_QueryDuration, 40*time.Millisecond, []metricsTypes.MetricsLabel{
		{Name: "query", Value: "getDelegator"},
	}))

	srv := NewPrometheusServer(&PrometheusServerConfig{Port: 0, Gatherer: reg}, l)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "current_block_height 12345"))
	assert.True(t, strings.Contains(body, `chain_logs_fetched{contract="stake"} 3`))
	assert.True(t, strings.Contains(body, `query_duration_count{query="getDelegator"} 1`))
}

func Test_DuplicateRegistration(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.Nil(t, err)

	reg := prometheus.NewRegistry()
	_, err = NewPrometheusMetricsClient(&PrometheusMetricsConfig{Metrics: metricsTypes.MetricTypes, Registerer: reg}, l)
	require.Nil(t, err)

	_, err = NewPrometheusMetricsClient(&PrometheusMetricsConfig{Metrics: metricsTypes.MetricTypes, Registerer: reg}, l)
	assert.NotNil(t, err)
}
