package app

import (
	"quiz-session-engine/internal/domain"
)

// SessionRepository abstracts where sessions are kept (in-memory, Redis-mirrored, etc).
// The engine calls it only from its loop goroutine.
type SessionRepository interface {
	Add(s *Session)
	Get(sessionID int) (*Session, bool)
	// Update is called after a session's phase or player set changed.
	Update(s *Session)
	// End moves a session from the active set to the ended set of its quiz.
	End(s *Session)
	Active(quizID string) []*Session
	Ended(quizID string) []*Session
}

// NameScope selects where guest display names must be unique.
type NameScope string

const (
	// NameScopeGlobal rejects a name used in any session that has not ended.
	NameScopeGlobal NameScope = "global"
	// NameScopeSession only rejects names already used in the joining session.
	NameScopeSession NameScope = "session"
)

// Registry is the process-wide index of sessions and players. It hands out session and
// player ids from single counters and owns display-name uniqueness. It is not safe for
// concurrent use; the engine confines it to its loop.
type Registry struct {
	sessions      SessionRepository
	scope         NameScope
	nextSessionID int
	nextPlayerID  int
	players       map[int]*Player
	liveNames     map[string]int
}

func NewRegistry(sessions SessionRepository, scope NameScope) *Registry {
	if scope == "" {
		scope = NameScopeGlobal
	}
	return &Registry{
		sessions:  sessions,
		scope:     scope,
		players:   make(map[int]*Player),
		liveNames: make(map[string]int),
	}
}

func (r *Registry) newSessionID() int {
	r.nextSessionID++
	return r.nextSessionID
}

func (r *Registry) register(s *Session) {
	r.sessions.Add(s)
}

// session resolves a session id within a quiz, across active and ended sessions.
func (r *Registry) session(quizID string, sessionID int) (*Session, error) {
	s, ok := r.sessions.Get(sessionID)
	if !ok || s.QuizID() != quizID {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) sessionByID(sessionID int) (*Session, error) {
	s, ok := r.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) player(playerID int) (*Player, error) {
	p, ok := r.players[playerID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return p, nil
}

func (r *Registry) activeCount(quizID string) int {
	return len(r.sessions.Active(quizID))
}

func (r *Registry) nameTaken(s *Session, name string) bool {
	if r.scope == NameScopeSession {
		for _, p := range s.players {
			if p.Name == name {
				return true
			}
		}
		return false
	}
	return r.liveNames[name] > 0
}

func (r *Registry) addPlayer(s *Session, name string) *Player {
	r.nextPlayerID++
	p := &Player{ID: r.nextPlayerID, Name: name, session: s}
	s.players = append(s.players, p)
	r.players[p.ID] = p
	r.liveNames[name]++
	r.sessions.Update(s)
	return p
}

// end releases the session's names and moves it to the ended set.
func (r *Registry) end(s *Session) {
	for _, p := range s.players {
		if r.liveNames[p.Name] <= 1 {
			delete(r.liveNames, p.Name)
			continue
		}
		r.liveNames[p.Name]--
	}
	r.sessions.End(s)
}
