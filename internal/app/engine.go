package app

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/metrics"
)

// QuizRepository loads quiz content. Refresh must bypass any cache: a session snapshots
// the quiz as it is at start time.
type QuizRepository interface {
	Refresh(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Limits bound session creation and phase timing.
type Limits struct {
	Countdown         time.Duration
	MaxActiveSessions int
	MaxAutoStart      int
}

// DefaultLimits mirrors the product rules: a 3 second countdown, at most 10 sessions not in
// END per quiz, and an auto-start threshold of at most 50 players.
func DefaultLimits() Limits {
	return Limits{
		Countdown:         3 * time.Second,
		MaxActiveSessions: 10,
		MaxAutoStart:      50,
	}
}

const defaultExportBaseURL = "http://example.com"

// Engine runs live quiz sessions. Every state mutation happens on a single loop goroutine;
// public methods are safe for concurrent use.
type Engine struct {
	quizzes       QuizRepository
	registry      *Registry
	clock         Clock
	log           *zap.Logger
	metrics       *metrics.Metrics
	limits        Limits
	exportBaseURL string
	rnd           *rand.Rand
	loop          *loop
}

type Option func(*Engine)

func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(e *Engine) { e.metrics = m } }

func WithLimits(l Limits) Option { return func(e *Engine) { e.limits = l } }

// WithRand seeds generated player names; tests use it for reproducible names.
func WithRand(r *rand.Rand) Option { return func(e *Engine) { e.rnd = r } }

// WithExportBaseURL sets the origin used by ExportLink.
func WithExportBaseURL(u string) Option { return func(e *Engine) { e.exportBaseURL = u } }

func NewEngine(quizzes QuizRepository, registry *Registry, opts ...Option) *Engine {
	e := &Engine{
		quizzes:       quizzes,
		registry:      registry,
		clock:         systemClock{},
		log:           zap.NewNop(),
		limits:        DefaultLimits(),
		exportBaseURL: defaultExportBaseURL,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.loop = newLoop(256)
	return e
}

// Close stops the loop. Pending timers that fire afterwards are dropped.
func (e *Engine) Close() {
	e.loop.close()
}

// StartSession snapshots the quiz and opens a session in LOBBY. The quiz is read once here
// and never again for this session.
func (e *Engine) StartSession(ctx context.Context, quizID string, autoStartNum int) (int, error) {
	quiz, err := e.quizzes.Refresh(ctx, quizID)
	if err != nil {
		return 0, err
	}
	if quiz.Trashed {
		return 0, domain.ErrQuizInTrash
	}
	if autoStartNum < 0 || autoStartNum > e.limits.MaxAutoStart {
		return 0, domain.ErrAutoStartTooHigh
	}
	if len(quiz.Questions) == 0 {
		return 0, domain.ErrQuizHasNoQuestions
	}
	if quiz.ID == "" {
		quiz.ID = quizID
	}
	snapshot := BuildSnapshot(quiz, e.clock.Now())

	return call(ctx, e.loop, func() (int, error) {
		if e.registry.activeCount(quizID) >= e.limits.MaxActiveSessions {
			return 0, domain.ErrTooManySessions
		}
		s := newSession(e.registry.newSessionID(), snapshot, autoStartNum, e.clock.Now())
		e.registry.register(s)
		e.metrics.SessionStarted()
		e.log.Info("session started",
			zap.String("quizId", quizID),
			zap.Int("sessionId", s.id),
			zap.Int("questions", len(snapshot.Questions)),
			zap.Int("autoStartNum", autoStartNum),
		)
		return s.id, nil
	})
}

// ListSessions returns the quiz's session ids, each list sorted ascending.
func (e *Engine) ListSessions(ctx context.Context, quizID string) (domain.SessionList, error) {
	return call(ctx, e.loop, func() (domain.SessionList, error) {
		list := domain.SessionList{
			Active:   sessionIDs(e.registry.sessions.Active(quizID)),
			Inactive: sessionIDs(e.registry.sessions.Ended(quizID)),
		}
		return list, nil
	})
}

// SessionStatus is the organizer view of an active or ended session.
func (e *Engine) SessionStatus(ctx context.Context, quizID string, sessionID int) (domain.SessionStatus, error) {
	return call(ctx, e.loop, func() (domain.SessionStatus, error) {
		s, err := e.registry.session(quizID, sessionID)
		if err != nil {
			return domain.SessionStatus{}, err
		}
		players := s.PlayerNames()
		sort.Strings(players)
		return domain.SessionStatus{
			State:      s.state,
			AtQuestion: s.atQuestion,
			Players:    players,
			Metadata:   s.snapshot.Metadata(),
		}, nil
	})
}

// Subscribe streams the player's status on every phase change of their session, starting
// with the current one. The caller must invoke the returned cancel function to avoid leaks.
func (e *Engine) Subscribe(ctx context.Context, playerID int) (<-chan domain.PlayerStatus, func(), error) {
	ch := make(chan domain.PlayerStatus, 8)
	s, err := call(ctx, e.loop, func() (*Session, error) {
		p, err := e.registry.player(playerID)
		if err != nil {
			return nil, err
		}
		s := p.session
		s.subscribers[ch] = struct{}{}
		ch <- s.playerStatus()
		return s, nil
	})
	if err != nil {
		return nil, nil, err
	}

	cancel := func() {
		e.loop.post(func() {
			if _, ok := s.subscribers[ch]; ok {
				delete(s.subscribers, ch)
				close(ch)
			}
		})
	}
	return ch, cancel, nil
}

func (e *Engine) broadcast(s *Session) {
	status := s.playerStatus()
	for ch := range s.subscribers {
		select {
		case ch <- status:
		default:
			// Drop the stale update so a slow reader never blocks the loop.
			select {
			case <-ch:
			default:
			}
			ch <- status
		}
	}
}

func sessionIDs(sessions []*Session) []int {
	ids := make([]int, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.id)
	}
	sort.Ints(ids)
	return ids
}
