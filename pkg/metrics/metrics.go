package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Scheduler metrics (pkg/scheduler)
	PoolFree = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scpfw_event_pool_free",
			Help: "Number of event records currently on the scheduler's free list",
		},
	)

	TaskQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scpfw_task_queue_depth",
			Help: "Number of events currently queued in task context",
		},
	)

	ISRQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scpfw_isr_queue_depth",
			Help: "Number of events currently queued from interrupt context",
		},
	)

	ParkedResponses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scpfw_parked_responses",
			Help: "Number of delayed responses currently parked awaiting production",
		},
	)

	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scpfw_dispatch_total",
			Help: "Total events dispatched by kind (event, notification)",
		},
		[]string{"kind"},
	)

	DispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scpfw_dispatch_duration_seconds",
			Help:    "Time spent in one Drain() call of the dispatch loop",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Lifecycle metrics (pkg/module)
	BindFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scpfw_bind_failures_total",
			Help: "Total bind() calls that returned a non-success status during bring-up",
		},
	)

	ModuleStageTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scpfw_module_stage_transitions_total",
			Help: "Total module/element lifecycle state transitions, by target state",
		},
		[]string{"state"},
	)
)

func init() {
	prometheus.MustRegister(
		PoolFree,
		TaskQueueDepth,
		ISRQueueDepth,
		ParkedResponses,
		DispatchTotal,
		DispatchDuration,
		BindFailuresTotal,
		ModuleStageTransitions,
	)
}

// Handler returns the Prometheus HTTP handler, wired into cmd/scpfw's
// optional --metrics-addr server.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a small helper for timing an operation and observing its
// duration into a histogram once it completes.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a labeled histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the time elapsed since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
