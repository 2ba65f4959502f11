package coopsort

import "github.com/prometheus/client_golang/prometheus"

// Metrics wraps a private prometheus.Registry (never the global default
// registerer, so a Scheduler stays embeddable without clobbering a host
// process's own metrics), grounded on aistore's stats package pattern of
// per-subsystem counters and histograms.
type Metrics struct {
	registry *prometheus.Registry
	swaps    *prometheus.CounterVec
	cpuTime  *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.swaps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coopsort",
		Name:      "task_swaps_total",
		Help:      "Number of preemption events at which this task was running and a different task was chosen.",
	}, []string{"task"})
	m.cpuTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coopsort",
		Name:      "task_cpu_seconds",
		Help:      "Wall-clock time charged to a task between scheduler entries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"task"})
	m.registry.MustRegister(m.swaps, m.cpuTime)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveSwap(t *Task) {
	m.swaps.WithLabelValues(t.ShortID).Inc()
	m.cpuTime.WithLabelValues(t.ShortID).Observe(t.TotalCPU.Seconds())
}
