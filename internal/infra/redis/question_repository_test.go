package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quizzy/internal/domain"
	"quizzy/internal/infra/memory"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(sampleBank())}
	repo := NewQuestionRepository(client, loader, time.Minute)

	bank, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if len(bank) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(bank))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quizzy:questions") {
		t.Fatalf("expected questions hash to be set")
	}
	if ttl := mr.TTL("quizzy:questions"); ttl < time.Minute || ttl > 66*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get cached bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached[0].ID != "q1" || cached[1].CorrectAnswer != 3 {
		t.Fatalf("cached bank lost content: %+v", cached)
	}

	if err := repo.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.GetBank(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadBank(ctx)
}

func sampleBank() []domain.Question {
	return []domain.Question{
		{
			ID:            "q2",
			Category:      "promises",
			Difficulty:    domain.DifficultyHard,
			Type:          domain.TypeMultipleChoice,
			Title:         "Ordering",
			Prompt:        "Which resolves first?",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: 3,
			Explanation:   "Microtasks run first.",
			Tags:          []string{"promises"},
			CreatedAt:     1700000000000,
		},
		{
			ID:            "q1",
			Category:      "closures",
			Difficulty:    domain.DifficultyEasy,
			Type:          domain.TypeCodeOutput,
			Title:         "Counter",
			Prompt:        "What is logged?",
			Code:          "console.log(counter())",
			Options:       []string{"0", "1", "2", "undefined"},
			CorrectAnswer: 1,
			Explanation:   "The closure keeps its own binding.",
			Tags:          []string{"closures"},
			CreatedAt:     1700000000000,
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
