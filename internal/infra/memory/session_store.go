package memory

import (
	"quiz-session-engine/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// The engine serialises every call, so no locking is needed here.
type SessionStore struct {
	sessions map[int]*app.Session
	active   map[string][]*app.Session
	ended    map[string][]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int]*app.Session),
		active:   make(map[string][]*app.Session),
		ended:    make(map[string][]*app.Session),
	}
}

func (s *SessionStore) Add(session *app.Session) {
	s.sessions[session.ID()] = session
	s.active[session.QuizID()] = append(s.active[session.QuizID()], session)
}

func (s *SessionStore) Get(sessionID int) (*app.Session, bool) {
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Update(*app.Session) {}

func (s *SessionStore) End(session *app.Session) {
	quizID := session.QuizID()
	active := s.active[quizID]
	for i, candidate := range active {
		if candidate.ID() == session.ID() {
			s.active[quizID] = append(active[:i:i], active[i+1:]...)
			s.ended[quizID] = append(s.ended[quizID], session)
			return
		}
	}
}

func (s *SessionStore) Active(quizID string) []*app.Session {
	return append([]*app.Session(nil), s.active[quizID]...)
}

func (s *SessionStore) Ended(quizID string) []*app.Session {
	return append([]*app.Session(nil), s.ended[quizID]...)
}
