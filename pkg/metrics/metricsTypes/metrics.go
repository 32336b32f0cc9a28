package metricsTypes

import "time"

type IMetricsClient interface {
	Incr(name string, labels []MetricsLabel, value float64) error
	Gauge(name string, value float64, labels []MetricsLabel) error
	Timing(name string, value time.Duration, labels []MetricsLabel) error
	Flush()
}

type MetricsLabel struct {
	Name  string
	Value string
}

type MetricsType string

var (
	MetricsType_Incr   MetricsType = "incr"
	MetricsType_Gauge  MetricsType = "gauge"
	MetricsType_Timing MetricsType = "timing"
)

type MetricsTypeConfig struct {
	Name   string
	Labels []string
}

var (
	Metric_Incr_HttpRequest       = "rpc_http_request"
	Metric_Incr_LogsFetched       = "chain_logs_fetched"
	Metric_Incr_RpcRetry          = "chain_rpc_retry"
	Metric_Incr_WindowSplit       = "chain_logs_window_split"
	Metric_Incr_RegistryCacheHit  = "registry_cache_hit"
	Metric_Incr_RegistryCacheMiss = "registry_cache_miss"

	Metric_Gauge_CurrentBlockHeight = "current_block_height"

	Metric_Timing_HttpDuration  = "rpc_http_duration"
	Metric_Timing_QueryDuration = "query_duration"
)

var MetricTypes = map[MetricsType][]MetricsTypeConfig{
	MetricsType_Incr: {
		MetricsTypeConfig{
			Name: Metric_Incr_HttpRequest,
			Labels: []string{
				"method",
				"path",
				"status_code",
				"pattern",
			},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_LogsFetched,
			Labels: []string{"contract"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_RpcRetry,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_WindowSplit,
			Labels: []string{"pace"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_RegistryCacheHit,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_RegistryCacheMiss,
			Labels: []string{},
		},
	},
	MetricsType_Gauge: {
		MetricsTypeConfig{
			Name:   Metric_Gauge_CurrentBlockHeight,
			Labels: []string{},
		},
	},
	MetricsType_Timing: {
		MetricsTypeConfig{
			Name: Metric_Timing_HttpDuration,
			Labels: []string{
				"method",
				"path",
				"status_code",
				"pattern",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Timing_QueryDuration,
			Labels: []string{
				"query",
			},
		},
	},
}
