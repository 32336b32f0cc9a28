// Package metrics fans every measurement out to the configured backends.
package metrics

import (
	"time"

	"github.com/orbs-network/pos-analytics/internal/config"
	"github.com/orbs-network/pos-analytics/pkg/metrics/dogstatsd"
	"github.com/orbs-network/pos-analytics/pkg/metrics/metricsTypes"
	"github.com/orbs-network/pos-analytics/pkg/metrics/prometheus"
	"go.uber.org/zap"
)

type MetricsSinkConfig struct{}

type MetricsSink struct {
	config  *MetricsSinkConfig
	clients []metricsTypes.IMetricsClient
}

func NewMetricsSink(cfg *MetricsSinkConfig, clients []metricsTypes.IMetricsClient) (*MetricsSink, error) {
	return &MetricsSink{
		config:  cfg,
		clients: clients,
	}, nil
}

// NewNoopMetricsSink records nothing. Components accept a nil sink as well.
func NewNoopMetricsSink() *MetricsSink {
	return &MetricsSink{config: &MetricsSinkConfig{}}
}

// InitMetricsSinksFromConfig builds one client per enabled backend.
func InitMetricsSinksFromConfig(cfg *config.Config, l *zap.Logger) ([]metricsTypes.IMetricsClient, error) {
	clients := make([]metricsTypes.IMetricsClient, 0)

	if cfg.DataDogConfig.StatsdConfig.Enabled {
		dd, err := dogstatsd.NewDogStatsdMetricsClient(cfg.DataDogConfig.StatsdConfig.Url, l)
		if err != nil {
			l.Sugar().Errorw("Failed to create statsd client", zap.Error(err))
			return nil, err
		}
		clients = append(clients, dd)
		l.Sugar().Infow("Statsd metrics client enabled", zap.String("url", cfg.DataDogConfig.StatsdConfig.Url))
	}

	if cfg.PrometheusConfig.Enabled {
		pc, err := prometheus.NewPrometheusMetricsClient(&prometheus.PrometheusMetricsConfig{
			Metrics: metricsTypes.MetricTypes,
		}, l)
		if err != nil {
			l.Sugar().Errorw("Failed to create prometheus client", zap.Error(err))
			return nil, err
		}
		clients = append(clients, pc)
		l.Sugar().Infow("Prometheus metrics client enabled")
	}

	return clients, nil
}

func (ms *MetricsSink) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) error {
	if ms == nil {
		return nil
	}
	for _, client := range ms.clients {
		if err := client.Incr(name, labels, value); err != nil {
			return err
		}
	}
	return nil
}

func (ms *MetricsSink) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) error {
	if ms == nil {
		return nil
	}
	for _, client := range ms.clients {
		if err := client.Gauge(name, value, labels); err != nil {
			return err
		}
	}
	return nil
}

func (ms *MetricsSink) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	if ms == nil {
		return nil
	}
	for _, client := range ms.clients {
		if err := client.Timing(name, value, labels); err != nil {
			return err
		}
	}
	return nil
}

func (ms *MetricsSink) Flush() {
	if ms == nil {
		return
	}
	for _, client := range ms.clients {
		client.Flush()
	}
}
