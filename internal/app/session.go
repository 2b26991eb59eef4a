package app

import (
	"time"

	"quiz-session-engine/internal/domain"
)

// Session is one run-through of a quiz snapshot. All fields are owned by the engine loop;
// the exported accessors are safe to call from SessionRepository implementations, which
// the engine only invokes from the loop.
type Session struct {
	id           int
	snapshot     Snapshot
	state        domain.State
	atQuestion   int
	autoStartNum int
	createdAt    time.Time

	players   []*Player
	chat      []domain.ChatMessage
	questions []*questionRuntime

	timer    Timer
	timerSeq uint64

	subscribers map[chan domain.PlayerStatus]struct{}
}

// Player is a guest joined to a session.
type Player struct {
	ID      int
	Name    string
	session *Session
}

type submission struct {
	playerID  int
	answerIDs []int
	correct   bool
	ranked    bool
	rank      int
	score     int
	timeTaken time.Duration
}

type questionRuntime struct {
	correctIDs  map[int]struct{}
	correctRank int
	openedAt    time.Time
	submissions []submission
}

func newSession(id int, snapshot Snapshot, autoStartNum int, now time.Time) *Session {
	questions := make([]*questionRuntime, len(snapshot.Questions))
	for i, q := range snapshot.Questions {
		correct := make(map[int]struct{})
		for _, a := range q.Answers {
			if a.Correct {
				correct[a.ID] = struct{}{}
			}
		}
		questions[i] = &questionRuntime{correctIDs: correct}
	}
	return &Session{
		id:           id,
		snapshot:     snapshot,
		state:        domain.StateLobby,
		autoStartNum: autoStartNum,
		createdAt:    now,
		questions:    questions,
		subscribers:  make(map[chan domain.PlayerStatus]struct{}),
	}
}

func (s *Session) ID() int { return s.id }
func (s *Session) QuizID() string { return s.snapshot.QuizID }
func (s *Session) State() domain.State { return s.state }
func (s *Session) AtQuestion() int { return s.atQuestion }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) NumQuestions() int { return len(s.snapshot.Questions) }
func (s *Session) NumPlayers() int { return len(s.players) }
func (s *Session) Ended() bool { return s.state == domain.StateEnd }

// PlayerNames lists names in join order.
func (s *Session) PlayerNames() []string {
	names := make([]string, len(s.players))
	for i, p := range s.players {
		names[i] = p.Name
	}
	return names
}

func (s *Session) question(position int) (domain.Question, *questionRuntime) {
	return s.snapshot.Questions[position-1], s.questions[position-1]
}

func (s *Session) validPosition(position int) bool {
	return position >= 1 && position <= len(s.snapshot.Questions)
}

// playerStatus applies the player-visible rule that no question is live in LOBBY,
// FINAL_RESULTS or END.
func (s *Session) playerStatus() domain.PlayerStatus {
	at := s.atQuestion
	switch s.state {
	case domain.StateLobby, domain.StateFinalResults, domain.StateEnd:
		at = 0
	}
	return domain.PlayerStatus{
		State:        s.state,
		NumQuestions: len(s.snapshot.Questions),
		AtQuestion:   at,
	}
}

func (q *questionRuntime) record(sub submission) {
	for i := range q.submissions {
		if q.submissions[i].playerID == sub.playerID {
			q.submissions[i] = sub
			return
		}
	}
	q.submissions = append(q.submissions, sub)
}

func (q *questionRuntime) submissionOf(playerID int) (submission, bool) {
	for _, sub := range q.submissions {
		if sub.playerID == playerID {
			return sub, true
		}
	}
	return submission{}, false
}

func (q *questionRuntime) scoreOf(playerID int) int {
	sub, _ := q.submissionOf(playerID)
	return sub.score
}
