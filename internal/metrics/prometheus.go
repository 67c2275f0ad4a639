package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus exports round-trip metrics through a prometheus registry.
type Prometheus struct {
	requests *prometheus.CounterVec
	retries  *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	bytes    *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vial_device_requests_total",
			Help: "Completed device requests by command.",
		}, []string{"command"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vial_device_retries_total",
			Help: "Extra attempts spent on device requests by command.",
		}, []string{"command"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vial_device_failures_total",
			Help: "Device requests that exhausted their retry budget.",
		}, []string{"command"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vial_device_request_duration_seconds",
			Help:    "Device request latency including retries.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"command"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vial_macro_buffer_bytes_total",
			Help: "Macro buffer bytes transferred by direction.",
		}, []string{"direction"}),
	}
	for _, c := range []prometheus.Collector{p.requests, p.retries, p.failures, p.latency, p.bytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) RecordRoundTrip(command string, attempts int, d time.Duration) {
	p.requests.WithLabelValues(command).Inc()
	if attempts > 1 {
		p.retries.WithLabelValues(command).Add(float64(attempts - 1))
	}
	p.latency.WithLabelValues(command).Observe(d.Seconds())
}

func (p *Prometheus) RecordFailure(command string) {
	p.failures.WithLabelValues(command).Inc()
}

func (p *Prometheus) RecordBytes(direction string, n int) {
	p.bytes.WithLabelValues(direction).Add(float64(n))
}
