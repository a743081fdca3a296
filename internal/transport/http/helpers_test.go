package http

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"quizzy/internal/app"
	"quizzy/internal/domain"
	"quizzy/internal/infra/memory"
	"quizzy/internal/share"
)

func newTestService(t *testing.T) *app.QuizService {
	t.Helper()
	return app.NewQuizService(
		memory.NewAttemptStore(nil),
		memory.NewQuestionRepository(memory.NewStaticQuestionLoader(sampleBank()), time.Minute),
		memory.NewStore(),
		share.NewSigner("", 0),
		app.Options{Logger: zerolog.Nop(), ShareBaseURL: "https://quizzy.test/share"},
	)
}

func sampleBank() []domain.Question {
	mk := func(id, category string, difficulty domain.Difficulty, correct int) domain.Question {
		return domain.Question{
			ID:            id,
			Category:      category,
			Difficulty:    difficulty,
			Type:          domain.TypeMultipleChoice,
			Title:         id,
			Prompt:        "Pick the right option",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: correct,
			Explanation:   "Option " + string(rune('a'+correct)) + " is right.",
			Tags:          []string{category},
			CreatedAt:     1700000000000,
		}
	}
	return []domain.Question{
		mk("c1", "closures", domain.DifficultyEasy, 1),
		mk("c2", "closures", domain.DifficultyMedium, 2),
		mk("p1", "promises", domain.DifficultyHard, 0),
	}
}
