package app

import (
	"time"

	"quiz-session-engine/internal/domain"
)

// Snapshot is the frozen quiz content a session plays from. It shares no memory with the
// quiz it was built from, so later edits to that quiz never reach a running session.
type Snapshot struct {
	QuizID       string
	Name         string
	Description  string
	ThumbnailURL string
	Questions    []domain.Question
	TakenAt      time.Time
}

// BuildSnapshot deep-copies quiz content.
func BuildSnapshot(quiz domain.Quiz, takenAt time.Time) Snapshot {
	questions := make([]domain.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		answers := make([]domain.Answer, len(q.Answers))
		copy(answers, q.Answers)
		q.Answers = answers
		questions[i] = q
	}
	return Snapshot{
		QuizID:       quiz.ID,
		Name:         quiz.Name,
		Description:  quiz.Description,
		ThumbnailURL: quiz.ThumbnailURL,
		Questions:    questions,
		TakenAt:      takenAt,
	}
}

// Metadata summarises the snapshot for organizer status queries.
func (s Snapshot) Metadata() domain.QuizMetadata {
	total := 0
	questions := make([]domain.Question, len(s.Questions))
	for i, q := range s.Questions {
		total += q.Duration
		answers := make([]domain.Answer, len(q.Answers))
		copy(answers, q.Answers)
		q.Answers = answers
		questions[i] = q
	}
	return domain.QuizMetadata{
		QuizID:       s.QuizID,
		Name:         s.Name,
		Description:  s.Description,
		NumQuestions: len(s.Questions),
		Questions:    questions,
		Duration:     total,
		ThumbnailURL: s.ThumbnailURL,
	}
}
