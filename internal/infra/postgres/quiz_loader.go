package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-session-engine/internal/domain"
)

// QuizLoader reads quiz content (JSONB) written by the authoring service.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var (
		raw     []byte
		trashed bool
	)
	err := l.pool.QueryRow(ctx, `SELECT data, trashed FROM quizzes WHERE id=$1`, quizID).Scan(&raw, &trashed)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	quiz.ID = quizID
	quiz.Trashed = trashed
	return quiz, nil
}

// SaveQuiz upserts quiz content; used by seeding and tests.
func (l *QuizLoader) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO quizzes (id, data, trashed) VALUES ($1, $2::jsonb, $3)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, trashed = EXCLUDED.trashed, updated_at = now()`,
		quiz.ID, string(data), quiz.Trashed)
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}
