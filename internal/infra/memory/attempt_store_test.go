package memory

import (
	"testing"

	"quizzy/internal/app"
)

func TestAttemptStoreLifecycle(t *testing.T) {
	store := NewAttemptStore(func() *app.QuizState { return app.NewQuizState(5) })

	state := store.GetOrCreate("alice")
	if state == nil {
		t.Fatalf("expected state")
	}
	if again := store.GetOrCreate("alice"); again != state {
		t.Fatalf("expected the same state for the same profile")
	}
	if _, ok := store.Get("bob"); ok {
		t.Fatalf("expected no state for bob")
	}

	store.Delete("alice")
	if _, ok := store.Get("alice"); ok {
		t.Fatalf("expected state removed")
	}
}
