package memory

import (
	"context"
	"testing"
	"time"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	quizzes := NewQuizRepository(NewStaticQuizLoader(map[string]domain.Quiz{"quiz-1": sampleQuiz()}), time.Minute)
	engine := app.NewEngine(quizzes, app.NewRegistry(store, app.NameScopeGlobal))
	defer engine.Close()

	id, err := engine.StartSession(ctx, "quiz-1", 0)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if _, ok := store.Get(id); !ok {
		t.Fatalf("expected session present")
	}
	if got := len(store.Active("quiz-1")); got != 1 {
		t.Fatalf("expected 1 active session, got %d", got)
	}

	if err := engine.UpdateSessionState(ctx, "quiz-1", id, domain.ActionEnd); err != nil {
		t.Fatalf("end session: %v", err)
	}
	if got := len(store.Active("quiz-1")); got != 0 {
		t.Fatalf("expected no active sessions, got %d", got)
	}
	ended := store.Ended("quiz-1")
	if len(ended) != 1 || ended[0].ID() != id {
		t.Fatalf("expected session %d in ended set, got %d sessions", id, len(ended))
	}
	if _, ok := store.Get(id); !ok {
		t.Fatalf("ended sessions must stay retrievable")
	}
}
