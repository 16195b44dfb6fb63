package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the inventory engine collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	mutations   *prometheus.CounterVec
	persistence *prometheus.CounterVec
	outboxDepth prometheus.Gauge
	alerts      *prometheus.CounterVec
	merges      *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
}

// New registers the collectors on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchenstock_mutations_total",
			Help: "Inventory mutations applied, by log type.",
		}, []string{"type"}),
		persistence: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchenstock_persistence_results_total",
			Help: "Remote persistence outcomes, by operation and status.",
		}, []string{"op", "status"}),
		outboxDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kitchenstock_outbox_depth",
			Help: "Writes waiting in the retry outbox.",
		}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchenstock_low_stock_alerts_total",
			Help: "Low-stock alerts, by outcome.",
		}, []string{"outcome"}),
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchenstock_merges_total",
			Help: "Remote snapshot merges, by outcome.",
		}, []string{"outcome"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kitchenstock_job_duration_seconds",
			Help:    "Duration of scheduled jobs in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
	}
	reg.MustRegister(m.mutations, m.persistence, m.outboxDepth, m.alerts, m.merges, m.jobDuration)
	return m
}

func (m *Metrics) IncMutation(logType string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(logType)).Inc()
}

func (m *Metrics) ObservePersistence(op, status string) {
	if m == nil || m.persistence == nil {
		return
	}
	m.persistence.WithLabelValues(normalizeLabel(op), normalizeLabel(status)).Inc()
}

func (m *Metrics) SetOutboxDepth(n int64) {
	if m == nil || m.outboxDepth == nil {
		return
	}
	m.outboxDepth.Set(float64(n))
}

func (m *Metrics) IncAlert(outcome string) {
	if m == nil || m.alerts == nil {
		return
	}
	m.alerts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) IncMerge(outcome string) {
	if m == nil || m.merges == nil {
		return
	}
	m.merges.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) ObserveJob(job string, d time.Duration) {
	if m == nil || m.jobDuration == nil {
		return
	}
	m.jobDuration.WithLabelValues(normalizeLabel(job)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
