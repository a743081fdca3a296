package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizzy/internal/app"
	"quizzy/internal/domain"
)

func TestStartLimitsCategoryQuizzes(t *testing.T) {
	bank := makeBank("closures", 12)

	q := app.NewQuizState(app.DefaultQuestionsPerQuiz)
	session, err := q.Start(bank, "closures")
	require.NoError(t, err)
	assert.Len(t, session.QuestionIDs, 10)
	assert.Equal(t, bank[0].ID, session.QuestionIDs[0])
	assert.Empty(t, session.Answers)
	assert.NotEmpty(t, session.ID)

	session, err = q.Start(bank, domain.ComprehensiveCategory)
	require.NoError(t, err)
	assert.Len(t, session.QuestionIDs, 12)

	session, err = q.Start(bank[:3], "closures")
	require.NoError(t, err)
	assert.Len(t, session.QuestionIDs, 3)

	_, err = q.Start(nil, "closures")
	assert.ErrorIs(t, err, domain.ErrNoQuestions)
}

func TestStartResetsPreviousAttempt(t *testing.T) {
	bank := makeBank("closures", 3)
	q := app.NewQuizState(0)

	first, err := q.Start(bank, "closures")
	require.NoError(t, err)
	require.NoError(t, q.SelectAnswer(bank[0].ID, 2))
	q.NextQuestion()

	second, err := q.Start(bank, "closures")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	snap := q.Snapshot()
	assert.Equal(t, app.StatusActive, snap.Status)
	assert.Zero(t, snap.Cursor)
	assert.Empty(t, snap.Selected)
}

func TestSelectAnswer(t *testing.T) {
	bank := makeBank("closures", 3)
	q := app.NewQuizState(0)

	assert.ErrorIs(t, q.SelectAnswer(bank[0].ID, 1), domain.ErrSessionNotActive)

	_, err := q.Start(bank, "closures")
	require.NoError(t, err)

	assert.ErrorIs(t, q.SelectAnswer("elsewhere", 1), domain.ErrQuestionNotInSession)
	assert.ErrorIs(t, q.SelectAnswer(bank[0].ID, -1), domain.ErrInvalidOption)

	require.NoError(t, q.SelectAnswer(bank[0].ID, 1))
	require.NoError(t, q.SelectAnswer(bank[0].ID, 3))
	assert.Equal(t, map[string]int{bank[0].ID: 3}, q.Snapshot().Selected)
}

func TestNavigationIsClamped(t *testing.T) {
	bank := makeBank("closures", 3)
	q := app.NewQuizState(0)

	assert.Zero(t, q.NextQuestion(), "no session")
	assert.False(t, q.GoToQuestion(0))

	_, err := q.Start(bank, "closures")
	require.NoError(t, err)

	assert.Zero(t, q.PreviousQuestion())
	assert.Equal(t, 1, q.NextQuestion())
	assert.Equal(t, 2, q.NextQuestion())
	assert.Equal(t, 2, q.NextQuestion())

	assert.True(t, q.GoToQuestion(0))
	assert.False(t, q.GoToQuestion(3))
	assert.False(t, q.GoToQuestion(-1))
	assert.Equal(t, bank[0].ID, q.Snapshot().CurrentQuestionID())
}

func TestTickIsMonotonicAndStopsAfterFinish(t *testing.T) {
	clock := newFakeClock()
	q := app.NewQuizStateWithClock(0, clock.now)

	clock.advance(5 * time.Second)
	assert.Zero(t, q.Tick(), "ticks before start are ignored")

	_, err := q.Start(makeBank("closures", 2), "closures")
	require.NoError(t, err)

	clock.advance(2700 * time.Millisecond)
	assert.Equal(t, 2, q.Tick())

	clock.advance(-2 * time.Second)
	assert.Equal(t, 2, q.Tick(), "a clock stepping back never rewinds")

	clock.advance(4 * time.Second)
	session, err := q.Finish()
	require.NoError(t, err)
	assert.Equal(t, 4, session.TotalTime)

	clock.advance(time.Minute)
	assert.Equal(t, 4, q.Tick(), "ticks after finish are ignored")
}

func TestFinish(t *testing.T) {
	clock := newFakeClock()
	bank := makeBank("closures", 3)
	q := app.NewQuizStateWithClock(0, clock.now)

	_, err := q.Finish()
	assert.ErrorIs(t, err, domain.ErrSessionNotActive)

	_, err = q.Start(bank, "closures")
	require.NoError(t, err)

	require.NoError(t, q.SelectAnswer(bank[0].ID, 1))
	clock.advance(3 * time.Second)
	q.NextQuestion()
	clock.advance(5 * time.Second)
	require.NoError(t, q.SelectAnswer(bank[2].ID, 0))
	q.NextQuestion()
	clock.advance(2 * time.Second)

	session, err := q.Finish()
	require.NoError(t, err)
	require.Len(t, session.Answers, 3)
	assert.Equal(t, app.StatusFinalized, q.Status())

	assert.Equal(t, domain.Answer{QuestionID: bank[0].ID, UserAnswer: 1, TimeSpent: 3}, session.Answers[0])
	assert.Equal(t, domain.Answer{QuestionID: bank[1].ID, UserAnswer: domain.UnansweredOption, TimeSpent: 5}, session.Answers[1])
	assert.Equal(t, domain.Answer{QuestionID: bank[2].ID, UserAnswer: 0, TimeSpent: 2}, session.Answers[2])
	assert.Zero(t, session.Score)
	assert.Equal(t, 10, session.TotalTime)

	for i, a := range session.Answers {
		assert.Equal(t, session.QuestionIDs[i], a.QuestionID)
	}

	again, err := q.Finish()
	assert.ErrorIs(t, err, domain.ErrSessionNotActive)
	assert.Equal(t, session, again)

	assert.ErrorIs(t, q.SelectAnswer(bank[0].ID, 2), domain.ErrSessionNotActive)
}

func TestFinishReturnsCopies(t *testing.T) {
	q := app.NewQuizState(0)
	_, err := q.Start(makeBank("closures", 2), "closures")
	require.NoError(t, err)

	session, err := q.Finish()
	require.NoError(t, err)
	session.Answers[0].UserAnswer = 3
	session.QuestionIDs[0] = "mutated"

	snap := q.Snapshot()
	assert.Equal(t, domain.UnansweredOption, snap.Session.Answers[0].UserAnswer)
	assert.NotEqual(t, "mutated", snap.Session.QuestionIDs[0])
}

func TestReset(t *testing.T) {
	q := app.NewQuizState(0)
	_, err := q.Start(makeBank("closures", 2), "closures")
	require.NoError(t, err)

	q.Reset()
	snap := q.Snapshot()
	assert.Equal(t, app.StatusUninitialized, snap.Status)
	assert.Nil(t, snap.Session)
	assert.Equal(t, "", snap.CurrentQuestionID())
	assert.Equal(t, "uninitialized", snap.Status.String())
}
