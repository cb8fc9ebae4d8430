package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const resultDuplicate = "duplicate"

// Metrics are the scheduler's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	ticks         prometheus.Counter
	tickDuration  prometheus.Histogram
	events        prometheus.Counter
	notifications *prometheus.CounterVec
}

// NewMetrics registers the scheduler collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "calendar_scheduler_ticks_total",
			Help: "Total number of evaluated scheduler ticks.",
		}),
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "calendar_scheduler_tick_duration_seconds",
			Help:    "Wall time spent in one scheduler tick.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		events: f.NewCounter(prometheus.CounterOpts{
			Name: "calendar_scheduler_events_evaluated_total",
			Help: "Total number of events evaluated for due reminders.",
		}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calendar_scheduler_notifications_total",
			Help: "Reminder dispatch outcomes.",
		}, []string{"result"}),
	}
}

func (m *Metrics) observeTick(d time.Duration) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
}

func (m *Metrics) eventEvaluated() {
	if m == nil {
		return
	}
	m.events.Inc()
}

func (m *Metrics) notification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}
