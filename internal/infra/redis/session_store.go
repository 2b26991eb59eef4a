package redis

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quiz-session-engine/internal/app"
)

const (
	mirrorTimeout = 500 * time.Millisecond
	mirrorBuffer  = 256
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions live in local maps; the engine loop stays the single writer of session state.
//   - Every change is mirrored to Redis so other processes (dashboards, a second API node)
//     can see which sessions are live and what phase they are in:
//     SET  quiz:{quizID}:sessions:active / :ended   (session ids)
//     HASH session:{sessionID}                      (quizId, state, atQuestion, players)
//   - Mirroring is best-effort and asynchronous: the loop only queues a snapshot, a
//     background writer talks to Redis. A full queue drops the update with a warning.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	log      *zap.Logger
	sessions map[int]*app.Session
	active   map[string][]*app.Session
	ended    map[string][]*app.Session

	mu      sync.RWMutex
	closed  bool
	updates chan sessionSnapshot
	done    chan struct{}
}

type mirrorOp int

const (
	mirrorAdd mirrorOp = iota
	mirrorUpdate
	mirrorEnd
)

func (op mirrorOp) String() string {
	switch op {
	case mirrorAdd:
		return "add"
	case mirrorEnd:
		return "end"
	default:
		return "update"
	}
}

// sessionSnapshot is what the writer needs, copied on the loop so the writer never reads
// live session fields.
type sessionSnapshot struct {
	op         mirrorOp
	sessionID  int
	quizID     string
	state      string
	atQuestion int
	players    []string
}

func NewSessionStore(client *redis.Client, ttl time.Duration, log *zap.Logger) *SessionStore {
	return newSessionStore(client, ttl, log, mirrorBuffer)
}

func newSessionStore(client *redis.Client, ttl time.Duration, log *zap.Logger, buffer int) *SessionStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &SessionStore{
		client:   client,
		ttl:      ttl,
		log:      log,
		sessions: make(map[int]*app.Session),
		active:   make(map[string][]*app.Session),
		ended:    make(map[string][]*app.Session),
		updates:  make(chan sessionSnapshot, buffer),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// Close stops accepting updates and waits for the queued ones to be written.
func (s *SessionStore) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.updates)
	}
	s.mu.Unlock()
	<-s.done
}

func (s *SessionStore) Add(session *app.Session) {
	s.sessions[session.ID()] = session
	s.active[session.QuizID()] = append(s.active[session.QuizID()], session)
	s.enqueue(mirrorAdd, session)
}

func (s *SessionStore) Get(sessionID int) (*app.Session, bool) {
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Update(session *app.Session) {
	s.enqueue(mirrorUpdate, session)
}

func (s *SessionStore) End(session *app.Session) {
	quizID := session.QuizID()
	active := s.active[quizID]
	for i, candidate := range active {
		if candidate.ID() == session.ID() {
			s.active[quizID] = append(active[:i:i], active[i+1:]...)
			s.ended[quizID] = append(s.ended[quizID], session)
			break
		}
	}
	s.enqueue(mirrorEnd, session)
}

func (s *SessionStore) Active(quizID string) []*app.Session {
	return append([]*app.Session(nil), s.active[quizID]...)
}

func (s *SessionStore) Ended(quizID string) []*app.Session {
	return append([]*app.Session(nil), s.ended[quizID]...)
}

func (s *SessionStore) enqueue(op mirrorOp, session *app.Session) {
	snap := sessionSnapshot{
		op:         op,
		sessionID:  session.ID(),
		quizID:     session.QuizID(),
		state:      string(session.State()),
		atQuestion: session.AtQuestion(),
		players:    session.PlayerNames(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.updates <- snap:
	default:
		s.log.Warn("session mirror queue full, dropping update",
			zap.Int("sessionId", snap.sessionID),
			zap.Stringer("op", op),
		)
	}
}

func (s *SessionStore) run() {
	defer close(s.done)
	for snap := range s.updates {
		s.write(snap)
	}
}

func (s *SessionStore) write(snap sessionSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
	defer cancel()

	pipe := s.client.TxPipeline()
	switch snap.op {
	case mirrorAdd:
		pipe.SAdd(ctx, activeKey(snap.quizID), snap.sessionID)
	case mirrorEnd:
		pipe.SMove(ctx, activeKey(snap.quizID), endedKey(snap.quizID), snap.sessionID)
	}
	key := stateKey(snap.sessionID)
	pipe.HSet(ctx, key,
		"quizId", snap.quizID,
		"state", snap.state,
		"atQuestion", snap.atQuestion,
		"players", strings.Join(snap.players, ","),
	)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("session mirror failed", zap.Int("sessionId", snap.sessionID), zap.Stringer("op", snap.op), zap.Error(err))
	}
}

func activeKey(quizID string) string { return "quiz:" + quizID + ":sessions:active" }

func endedKey(quizID string) string { return "quiz:" + quizID + ":sessions:ended" }

func stateKey(sessionID int) string { return "session:" + strconv.Itoa(sessionID) }
