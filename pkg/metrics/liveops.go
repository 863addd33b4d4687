package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LiveOpsMetrics records snapshot tick outcomes and stream fan-out state.
type LiveOpsMetrics struct {
	tickDuration *prometheus.HistogramVec
	tickSuccess  *prometheus.CounterVec
	tickFailure  *prometheus.CounterVec
	streams      prometheus.Gauge
}

// NewLiveOpsMetrics registers the live ops metrics on the provided registerer.
func NewLiveOpsMetrics(reg prometheus.Registerer) *LiveOpsMetrics {
	if reg == nil {
		return &LiveOpsMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "liveops_tick_duration_seconds",
		Help:    "Duration of snapshot computations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "liveops_tick_success",
		Help: "Successful snapshot computations.",
	}, []string{"kind"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "liveops_tick_failure",
		Help: "Failed snapshot computations.",
	}, []string{"kind"})
	streams := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "liveops_active_streams",
		Help: "Open dashboard stream connections.",
	})
	reg.MustRegister(duration, success, failure, streams)
	return &LiveOpsMetrics{
		tickDuration: duration,
		tickSuccess:  success,
		tickFailure:  failure,
		streams:      streams,
	}
}

// ObserveTick records the duration for the named computation kind.
func (m *LiveOpsMetrics) ObserveTick(kind string, duration time.Duration) {
	if m == nil || m.tickDuration == nil {
		return
	}
	m.tickDuration.WithLabelValues(normalizeLabel(kind)).Observe(duration.Seconds())
}

// IncTickSuccess increments the success counter for the named kind.
func (m *LiveOpsMetrics) IncTickSuccess(kind string) {
	if m == nil || m.tickSuccess == nil {
		return
	}
	m.tickSuccess.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncTickFailure increments the failure counter for the named kind.
func (m *LiveOpsMetrics) IncTickFailure(kind string) {
	if m == nil || m.tickFailure == nil {
		return
	}
	m.tickFailure.WithLabelValues(normalizeLabel(kind)).Inc()
}

// StreamOpened bumps the active stream gauge.
func (m *LiveOpsMetrics) StreamOpened() {
	if m == nil || m.streams == nil {
		return
	}
	m.streams.Inc()
}

// StreamClosed decrements the active stream gauge.
func (m *LiveOpsMetrics) StreamClosed() {
	if m == nil || m.streams == nil {
		return
	}
	m.streams.Dec()
}

func normalizeLabel(kind string) string {
	if kind == "" {
		return "unknown"
	}
	return kind
}
