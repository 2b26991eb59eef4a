package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-session-engine/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuizRepositoryExpiresAndInvalidates(t *testing.T) {
	static := NewStaticQuizLoader(nil)
	static.Put(sampleQuiz())
	loader := &countingLoader{QuizLoader: static}
	repo := NewQuizRepository(loader, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}

	edited := sampleQuiz()
	edited.Name = "Edited"
	static.Put(edited)
	repo.Invalidate("quiz-1")
	quiz, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz after invalidate: %v", err)
	}
	if quiz.Name != "Edited" {
		t.Fatalf("expected edited quiz, got %q", quiz.Name)
	}
}

func TestQuizRepositoryRefreshBypassesCache(t *testing.T) {
	static := NewStaticQuizLoader(nil)
	static.Put(sampleQuiz())
	loader := &countingLoader{QuizLoader: static}
	repo := NewQuizRepository(loader, time.Hour)

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	trashed := sampleQuiz()
	trashed.Trashed = true
	static.Put(trashed)

	quiz, err := repo.Refresh(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !quiz.Trashed {
		t.Fatalf("expected refresh to see the trashed quiz")
	}
	if loader.calls != 2 {
		t.Fatalf("expected refresh to hit the loader, calls %d", loader.calls)
	}
	// The refreshed copy replaces the cached one.
	cached, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz after refresh: %v", err)
	}
	if !cached.Trashed || loader.calls != 2 {
		t.Fatalf("expected cache updated by refresh, trashed=%v calls=%d", cached.Trashed, loader.calls)
	}
}

func TestQuizRepositoryRefreshDropsDeletedQuiz(t *testing.T) {
	static := NewStaticQuizLoader(nil)
	static.Put(sampleQuiz())
	repo := NewQuizRepository(static, time.Hour)
	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}

	static.mu.Lock()
	delete(static.quizzes, "quiz-1")
	static.mu.Unlock()

	if _, err := repo.Refresh(context.Background(), "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if _, ok := repo.cached("quiz-1"); ok {
		t.Fatalf("expected deleted quiz evicted from cache")
	}
}

func TestQuizRepositoryUnknownQuiz(t *testing.T) {
	repo := NewQuizRepository(NewStaticQuizLoader(nil), time.Minute)
	if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:   "quiz-1",
		Name: "Arithmetic",
		Questions: []domain.Question{
			{
				ID:       1,
				Text:     "What is 2 + 2?",
				Duration: 4,
				Points:   2,
				Answers: []domain.Answer{
					{ID: 11, Text: "3", Correct: false},
					{ID: 12, Text: "4", Correct: true},
				},
			},
		},
	}
}
