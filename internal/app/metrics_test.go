package app_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/metrics"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func TestEngineRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newHarness(t, arithmeticQuiz(), app.WithMetrics(metrics.New(reg)))
	h.start(0)
	ann, bob := h.join("ann"), h.join("bob")
	h.act(domain.ActionNextQuestion)
	if got := gatherValue(t, reg, "quiz_pending_phase_timers", nil); got != 1 {
		t.Fatalf("expected one pending timer, got %v", got)
	}
	h.advance(3 * time.Second)
	h.submit(ann, 1, 1)
	h.submit(bob, 1, 3)
	if err := h.engine.SendChat(h.ctx, bob, "gg"); err != nil {
		t.Fatalf("send chat: %v", err)
	}
	h.act(domain.ActionEnd)

	checks := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"quiz_sessions_started_total", nil, 1},
		{"quiz_sessions_ended_total", nil, 1},
		{"quiz_players_joined_total", nil, 2},
		{"quiz_chat_messages_total", nil, 1},
		{"quiz_answers_submitted_total", map[string]string{"correct": "true"}, 1},
		{"quiz_answers_submitted_total", map[string]string{"correct": "false"}, 1},
		{"quiz_session_transitions_total", map[string]string{"to": "QUESTION_OPEN", "trigger": "timer"}, 1},
		{"quiz_session_transitions_total", map[string]string{"to": "END", "trigger": "action"}, 1},
		{"quiz_pending_phase_timers", nil, 0},
	}
	for _, c := range checks {
		if got := gatherValue(t, reg, c.name, c.labels); got != c.want {
			t.Fatalf("%s%v: expected %v, got %v", c.name, c.labels, c.want, got)
		}
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *metrics.Metrics
	m.SessionStarted()
	m.Transition("LOBBY", "action")
	m.AnswerSubmitted(true)
	m.TimerScheduled()
	m.TimerCleared()
}
