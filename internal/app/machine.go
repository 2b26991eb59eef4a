package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"quiz-session-engine/internal/domain"
)

type trigger string

const (
	triggerAction trigger = "action"
	triggerTimer  trigger = "timer"
	triggerAuto   trigger = "auto"
)

// transitions lists, per phase, the organizer actions it accepts and where they lead.
var transitions = map[domain.State]map[domain.Action]domain.State{
	domain.StateLobby: {
		domain.ActionNextQuestion: domain.StateQuestionCountdown,
		domain.ActionEnd:          domain.StateEnd,
	},
	domain.StateQuestionCountdown: {
		domain.ActionSkipCountdown: domain.StateQuestionOpen,
		domain.ActionEnd:           domain.StateEnd,
	},
	domain.StateQuestionOpen: {
		domain.ActionGoToAnswer: domain.StateAnswerShow,
		domain.ActionEnd:        domain.StateEnd,
	},
	domain.StateQuestionClose: {
		domain.ActionNextQuestion:     domain.StateQuestionCountdown,
		domain.ActionGoToAnswer:       domain.StateAnswerShow,
		domain.ActionGoToFinalResults: domain.StateFinalResults,
		domain.ActionEnd:              domain.StateEnd,
	},
	domain.StateAnswerShow: {
		domain.ActionNextQuestion:     domain.StateQuestionCountdown,
		domain.ActionGoToFinalResults: domain.StateFinalResults,
		domain.ActionEnd:              domain.StateEnd,
	},
	domain.StateFinalResults: {
		domain.ActionEnd: domain.StateEnd,
	},
}

// UpdateSessionState applies an organizer action to a session of the quiz.
func (e *Engine) UpdateSessionState(ctx context.Context, quizID string, sessionID int, action domain.Action) error {
	_, err := call(ctx, e.loop, func() (struct{}, error) {
		s, err := e.registry.session(quizID, sessionID)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, e.apply(s, action, triggerAction)
	})
	return err
}

// apply validates and performs one action. Nothing is written unless every check passes,
// and the pending timer is always cancelled before the new phase is written.
func (e *Engine) apply(s *Session, action domain.Action, trig trigger) error {
	next, ok := transitions[s.state][action]
	if !ok {
		if _, err := domain.ParseAction(string(action)); err != nil {
			return err
		}
		e.log.Debug("illegal transition",
			zap.Int("sessionId", s.id),
			zap.String("state", string(s.state)),
			zap.String("action", string(action)),
		)
		return domain.ErrIllegalTransition
	}
	if action == domain.ActionNextQuestion && s.atQuestion >= len(s.snapshot.Questions) {
		return domain.ErrLastQuestionAlready
	}

	from := s.state
	e.cancelTimer(s)

	switch action {
	case domain.ActionNextQuestion:
		s.atQuestion++
		s.state = next
		e.schedule(s, e.limits.Countdown, e.countdownElapsed)
	case domain.ActionSkipCountdown:
		e.openQuestion(s)
	case domain.ActionGoToAnswer:
		s.state = next
	case domain.ActionGoToFinalResults:
		s.state = next
		s.atQuestion = 0
	case domain.ActionEnd:
		s.state = next
		s.atQuestion = 0
		e.registry.end(s)
		e.metrics.SessionEnded()
	}
	e.transitioned(s, from, trig)
	return nil
}

// openQuestion enters QUESTION_OPEN for the current question and starts its clock.
func (e *Engine) openQuestion(s *Session) {
	q, rt := s.question(s.atQuestion)
	s.state = domain.StateQuestionOpen
	rt.openedAt = e.clock.Now()
	e.schedule(s, time.Duration(q.Duration)*time.Second, e.durationElapsed)
}

func (e *Engine) countdownElapsed(s *Session) {
	from := s.state
	e.openQuestion(s)
	e.transitioned(s, from, triggerTimer)
}

func (e *Engine) durationElapsed(s *Session) {
	from := s.state
	s.state = domain.StateQuestionClose
	e.transitioned(s, from, triggerTimer)
}

func (e *Engine) transitioned(s *Session, from domain.State, trig trigger) {
	if s.state != domain.StateEnd {
		e.registry.sessions.Update(s)
	}
	e.metrics.Transition(string(s.state), string(trig))
	e.log.Info("session transition",
		zap.String("quizId", s.QuizID()),
		zap.Int("sessionId", s.id),
		zap.String("from", string(from)),
		zap.String("to", string(s.state)),
		zap.Int("atQuestion", s.atQuestion),
		zap.String("trigger", string(trig)),
	)
	e.broadcast(s)
}

// schedule arms the session's only timer. The firing is posted back onto the loop and is
// ignored if the timer was cancelled or replaced in the meantime.
func (e *Engine) schedule(s *Session, d time.Duration, fire func(*Session)) {
	e.cancelTimer(s)
	s.timerSeq++
	seq := s.timerSeq
	e.metrics.TimerScheduled()
	s.timer = e.clock.AfterFunc(d, func() {
		e.loop.post(func() {
			if s.timer == nil || s.timerSeq != seq {
				return
			}
			s.timer = nil
			e.metrics.TimerCleared()
			fire(s)
		})
	})
}

func (e *Engine) cancelTimer(s *Session) {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	s.timer = nil
	s.timerSeq++
	e.metrics.TimerCleared()
}
