package dogstatsd

import (
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/orbs-network/pos-analytics/pkg/metrics/metricsTypes"
	"go.uber.org/zap"
)

const namespace = "pos_analytics."

type DogStatsdMetricsClient struct {
	client statsd.ClientInterface
	logger *zap.Logger
}

// NewDogStatsdMetricsClient dials the agent at addr, e.g. "localhost:8125".
func NewDogStatsdMetricsClient(addr string, l *zap.Logger) (*DogStatsdMetricsClient, error) {
	s, err := statsd.New(addr, statsd.WithNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("failed to create statsd client: %w", err)
	}
	return NewDogStatsdMetricsClientWithClient(s, l), nil
}

func NewDogStatsdMetricsClientWithClient(client statsd.ClientInterface, l *zap.Logger) *DogStatsdMetricsClient {
	return &DogStatsdMetricsClient{
		client: client,
		logger: l,
	}
}

func formatTags(labels []metricsTypes.MetricsLabel) []string {
	tags := make([]string, 0, len(labels))
	for _, label := range labels {
		tags = append(tags, fmt.Sprintf("%s:%s", label.Name, label.Value))
	}
	return tags
}

func (d *DogStatsdMetricsClient) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) error {
	return d.client.Count(name, int64(value), formatTags(labels), 1)
}

func (d *DogStatsdMetricsClient) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) error {
	return d.client.Gauge(name, value, formatTags(labels), 1)
}

func (d *DogStatsdMetricsClient) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	return d.client.Timing(name, value, formatTags(labels), 1)
}

func (d *DogStatsdMetricsClient) Flush() {
	if err := d.client.Flush(); err != nil {
		d.logger.Sugar().Warnw("Failed to flush statsd client", zap.Error(err))
	}
}
