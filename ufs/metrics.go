package ufs

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts filesystem operations for one FS handle, grounded on
// coopsort's metrics.go / aistore's stats package pattern: a private
// registry per handle, never the global default registerer.
type Metrics struct {
	registry *prometheus.Registry
	ops      *prometheus.CounterVec
	bytes    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.ops = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ufs",
		Name:      "ops_total",
		Help:      "Number of filesystem operations by kind.",
	}, []string{"op"})
	m.bytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ufs",
		Name:      "bytes_total",
		Help:      "Bytes moved by read/write operations.",
	}, []string{"op"})
	m.registry.MustRegister(m.ops, m.bytes)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) observeOpen()   { m.ops.WithLabelValues("open").Inc() }
func (m *Metrics) observeClose()  { m.ops.WithLabelValues("close").Inc() }
func (m *Metrics) observeDelete() { m.ops.WithLabelValues("delete").Inc() }

func (m *Metrics) observeResize(newSize int64) {
	m.ops.WithLabelValues("resize").Inc()
}

func (m *Metrics) observeRead(n int) {
	m.ops.WithLabelValues("read").Inc()
	m.bytes.WithLabelValues("read").Add(float64(n))
}

func (m *Metrics) observeWrite(n int) {
	m.ops.WithLabelValues("write").Inc()
	m.bytes.WithLabelValues("write").Add(float64(n))
}
