package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors of the synchroniser. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Polls          *prometheus.CounterVec
	PollFailures   *prometheus.CounterVec
	PollsSkipped   *prometheus.CounterVec
	StaleResults   *prometheus.CounterVec
	Merges         *prometheus.CounterVec
	Attempts       *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamesync",
			Name:      "polls_total",
			Help:      "Fetches issued by pollers.",
		}, []string{"poller"}),
		PollFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamesync",
			Name:      "poll_failures_total",
			Help:      "Fetches that returned an error.",
		}, []string{"poller"}),
		PollsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamesync",
			Name:      "polls_skipped_total",
			Help:      "Ticks skipped because a fetch was still in flight.",
		}, []string{"poller"}),
		StaleResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamesync",
			Name:      "stale_results_total",
			Help:      "Poll results dropped because a newer one was already applied.",
		}, []string{"poller"}),
		Merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamesync",
			Name:      "sequence_merges_total",
			Help:      "Sequence cache merges by outcome.",
		}, []string{"kind", "outcome"}),
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamesync",
			Name:      "attempts_total",
			Help:      "Player actions by game and result.",
		}, []string{"game", "result"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gamesync",
			Name:      "active_sessions",
			Help:      "Sessions currently synchronising.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Polls, m.PollFailures, m.PollsSkipped, m.StaleResults, m.Merges, m.Attempts, m.ActiveSessions)
	}
	return m
}

func (m *Metrics) Poll(name string) {
	if m != nil {
		m.Polls.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) PollFailed(name string) {
	if m != nil {
		m.PollFailures.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) PollSkipped(name string) {
	if m != nil {
		m.PollsSkipped.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) Stale(name string) {
	if m != nil {
		m.StaleResults.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) Merged(kind, outcome string) {
	if m != nil {
		m.Merges.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) Attempt(game, result string) {
	if m != nil {
		m.Attempts.WithLabelValues(game, result).Inc()
	}
}

func (m *Metrics) SessionStarted() {
	if m != nil {
		m.ActiveSessions.Inc()
	}
}

func (m *Metrics) SessionEnded() {
	if m != nil {
		m.ActiveSessions.Dec()
	}
}
