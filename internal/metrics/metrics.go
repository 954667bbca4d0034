package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tictactoe"

// Metrics groups the collectors of the game engine.
type Metrics struct {
	SessionsStarted   *prometheus.CounterVec
	SessionsFinished  *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge
	Moves             *prometheus.CounterVec
	RejectedMoves     *prometheus.CounterVec
	OpponentDecisions *prometheus.CounterVec
	DecisionDuration  prometheus.Histogram
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	that := &Metrics{
		SessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Game sessions started, by difficulty.",
		}, []string{"difficulty"}),
		SessionsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Game sessions that reached a terminal state, by result.",
		}, []string{"result"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions awaiting a player move.",
		}),
		Moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Accepted moves, by mark.",
		}, []string{"mark"}),
		RejectedMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_moves_total",
			Help:      "Rejected move requests, by reason.",
		}, []string{"reason"}),
		OpponentDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opponent_decisions_total",
			Help:      "Opponent moves, by whether the search result was played.",
		}, []string{"choice"}),
		DecisionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "opponent_decision_duration_seconds",
			Help:      "Time spent choosing an opponent move.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}

	reg.MustRegister(
		that.SessionsStarted,
		that.SessionsFinished,
		that.ActiveSessions,
		that.Moves,
		that.RejectedMoves,
		that.OpponentDecisions,
		that.DecisionDuration,
	)

	return that
}

func (that *Metrics) SessionStarted(difficulty int) {
	that.SessionsStarted.WithLabelValues(strconv.Itoa(difficulty)).Inc()
	that.ActiveSessions.Inc()
}

func (that *Metrics) SessionEnded(result string) {
	that.SessionsFinished.WithLabelValues(result).Inc()
	that.ActiveSessions.Dec()
}

func (that *Metrics) MoveApplied(mark string) {
	that.Moves.WithLabelValues(mark).Inc()
}

func (that *Metrics) MoveRejected(reason string) {
	that.RejectedMoves.WithLabelValues(reason).Inc()
}

func (that *Metrics) OpponentDecided(optimal bool, elapsed time.Duration) {
	choice := "random"
	if optimal {
		choice = "optimal"
	}

	that.OpponentDecisions.WithLabelValues(choice).Inc()
	that.DecisionDuration.Observe(elapsed.Seconds())
}
