package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	SessionsStarted  prometheus.Counter
	SessionsEnded    prometheus.Counter
	Transitions      *prometheus.CounterVec
	PlayersJoined    prometheus.Counter
	AnswersSubmitted *prometheus.CounterVec
	ChatMessages     prometheus.Counter
	PendingTimers    prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Sessions created from a quiz snapshot",
		}),
		SessionsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_sessions_ended_total",
			Help: "Sessions moved to END",
		}),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_session_transitions_total",
				Help: "Phase transitions by target state and trigger",
			},
			[]string{"to", "trigger"},
		),
		PlayersJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_players_joined_total",
			Help: "Guest players joined to a session",
		}),
		AnswersSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_answers_submitted_total",
				Help: "Accepted answer submissions",
			},
			[]string{"correct"},
		),
		ChatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_chat_messages_total",
			Help: "Chat messages appended to session logs",
		}),
		PendingTimers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quiz_pending_phase_timers",
			Help: "Phase-advance timers currently scheduled",
		}),
	}
	reg.MustRegister(
		m.SessionsStarted,
		m.SessionsEnded,
		m.Transitions,
		m.PlayersJoined,
		m.AnswersSubmitted,
		m.ChatMessages,
		m.PendingTimers,
	)
	return m
}

func (m *Metrics) SessionStarted() {
	if m != nil {
		m.SessionsStarted.Inc()
	}
}

func (m *Metrics) SessionEnded() {
	if m != nil {
		m.SessionsEnded.Inc()
	}
}

func (m *Metrics) Transition(to, trigger string) {
	if m != nil {
		m.Transitions.WithLabelValues(to, trigger).Inc()
	}
}

func (m *Metrics) PlayerJoined() {
	if m != nil {
		m.PlayersJoined.Inc()
	}
}

func (m *Metrics) AnswerSubmitted(correct bool) {
	if m == nil {
		return
	}
	label := "false"
	if correct {
		label = "true"
	}
	m.AnswersSubmitted.WithLabelValues(label).Inc()
}

func (m *Metrics) ChatMessage() {
	if m != nil {
		m.ChatMessages.Inc()
	}
}

func (m *Metrics) TimerScheduled() {
	if m != nil {
		m.PendingTimers.Inc()
	}
}

func (m *Metrics) TimerCleared() {
	if m != nil {
		m.PendingTimers.Dec()
	}
}
