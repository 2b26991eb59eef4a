package domain

import "time"

// Answer is one option of a multiple-choice question.
type Answer struct {
	ID      int    `json:"answerId"`
	Text    string `json:"answer"`
	Colour  string `json:"colour,omitempty"`
	Correct bool   `json:"correct"`
}

// Question models a timed MCQ question; more than one answer may be correct.
type Question struct {
	ID           int      `json:"questionId"`
	Text         string   `json:"question"`
	Duration     int      `json:"duration"` // seconds
	Points       int      `json:"points"`
	Answers      []Answer `json:"answers"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
}

// Quiz is the authoring-side quiz content handed to the engine at session start.
type Quiz struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	Trashed      bool       `json:"trashed,omitempty"`
	Questions    []Question `json:"questions"`
}

// State is a session phase.
type State string

const (
	StateLobby             State = "LOBBY"
	StateQuestionCountdown State = "QUESTION_COUNTDOWN"
	StateQuestionOpen      State = "QUESTION_OPEN"
	StateQuestionClose     State = "QUESTION_CLOSE"
	StateAnswerShow        State = "ANSWER_SHOW"
	StateFinalResults      State = "FINAL_RESULTS"
	StateEnd               State = "END"
)

// Action is an organizer command applied to a running session.
type Action string

const (
	ActionNextQuestion     Action = "NEXT_QUESTION"
	ActionSkipCountdown    Action = "SKIP_COUNTDOWN"
	ActionGoToAnswer       Action = "GO_TO_ANSWER"
	ActionGoToFinalResults Action = "GO_TO_FINAL_RESULTS"
	ActionEnd              Action = "END"
)

// ParseAction validates a raw action name.
func ParseAction(raw string) (Action, error) {
	switch a := Action(raw); a {
	case ActionNextQuestion, ActionSkipCountdown, ActionGoToAnswer, ActionGoToFinalResults, ActionEnd:
		return a, nil
	}
	return "", ErrUnknownAction
}

// ChatMessage is one entry of a session chat log.
type ChatMessage struct {
	Text       string    `json:"message"`
	PlayerID   int       `json:"playerId"`
	PlayerName string    `json:"playerName"`
	SentAt     time.Time `json:"timeSent"`
}

// PlayerStatus is the player-visible view of the enclosing session.
type PlayerStatus struct {
	State        State `json:"state"`
	NumQuestions int   `json:"numQuestions"`
	AtQuestion   int   `json:"atQuestion"`
}

// AnswerOption is an answer as disclosed to players, without its correctness flag.
type AnswerOption struct {
	ID     int    `json:"answerId"`
	Text   string `json:"answer"`
	Colour string `json:"colour,omitempty"`
}

// QuestionInfo is the live question as disclosed to players.
type QuestionInfo struct {
	ID           int            `json:"questionId"`
	Text         string         `json:"question"`
	Duration     int            `json:"duration"`
	Points       int            `json:"points"`
	ThumbnailURL string         `json:"thumbnailUrl,omitempty"`
	Answers      []AnswerOption `json:"answers"`
}

// QuestionResult aggregates the submissions of one question.
type QuestionResult struct {
	QuestionID         int      `json:"questionId"`
	CorrectPlayerNames []string `json:"playersCorrectList"`
	AverageAnswerTime  int      `json:"averageAnswerTime"`
	PercentCorrect     int      `json:"percentCorrect"`
}

// LeaderboardEntry is a player's total across the session.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// FinalResults is the end-of-session summary.
type FinalResults struct {
	Leaderboard     []LeaderboardEntry `json:"usersRankedByScore"`
	QuestionResults []QuestionResult   `json:"questionResults"`
}

// ResultsRow is one player's line of the export table.
type ResultsRow struct {
	PlayerName string `json:"playerName"`
	Scores     []int  `json:"scores"`
	Total      int    `json:"total"`
}

// ResultsTable is the per-player, per-question score grid behind the export link.
type ResultsTable struct {
	QuestionIDs []int        `json:"questionIds"`
	Rows        []ResultsRow `json:"rows"`
}

// QuizMetadata describes the snapshot a session plays from.
type QuizMetadata struct {
	QuizID       string     `json:"quizId"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	NumQuestions int        `json:"numQuestions"`
	Questions    []Question `json:"questions"`
	Duration     int        `json:"duration"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
}

// SessionStatus is the organizer view of a session.
type SessionStatus struct {
	State      State        `json:"state"`
	AtQuestion int          `json:"atQuestion"`
	Players    []string     `json:"players"`
	Metadata   QuizMetadata `json:"metadata"`
}

// SessionList splits a quiz's sessions by whether they reached END.
type SessionList struct {
	Active   []int `json:"activeSessions"`
	Inactive []int `json:"inactiveSessions"`
}
