package app_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"quizzy/internal/app"
	"quizzy/internal/domain"
	"quizzy/internal/share"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type mapStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	failSave bool
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string][]byte)}
}

func (s *mapStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (s *mapStore) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errors.New("disk full")
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *mapStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

type fakeBank struct {
	mu            sync.Mutex
	bank          []domain.Question
	err           error
	invalidateErr error
	calls         int
	invalidations int
}

func (b *fakeBank) GetBank(context.Context) ([]domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return append([]domain.Question(nil), b.bank...), nil
}

func (b *fakeBank) Invalidate(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.invalidations++
	return b.invalidateErr
}

func (b *fakeBank) set(bank []domain.Question) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bank = bank
}

func (b *fakeBank) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

type mapAttempts struct {
	mu       sync.Mutex
	newState func() *app.QuizState
	states   map[string]*app.QuizState
}

func (a *mapAttempts) GetOrCreate(profile string) *app.QuizState {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.states[profile]; ok {
		return s
	}
	s := a.newState()
	a.states[profile] = s
	return s
}

func (a *mapAttempts) Get(profile string) (*app.QuizState, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.states[profile]
	return s, ok
}

func (a *mapAttempts) Delete(profile string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.states, profile)
}

type fixture struct {
	clock   *fakeClock
	store   *mapStore
	bank    *fakeBank
	signer  *share.Signer
	service *app.QuizService
}

func newFixture(bank []domain.Question) *fixture {
	f := &fixture{
		clock: newFakeClock(),
		store: newMapStore(),
		bank:  &fakeBank{bank: bank},
	}
	f.signer = share.NewSignerWithClock("", 0, f.clock.now)
	attempts := &mapAttempts{
		newState: func() *app.QuizState { return app.NewQuizStateWithClock(app.DefaultQuestionsPerQuiz, f.clock.now) },
		states:   make(map[string]*app.QuizState),
	}
	f.service = app.NewQuizService(attempts, f.bank, f.store, f.signer, app.Options{
		ShareBaseURL: "https://quizzy.test/share",
		Now:          f.clock.now,
		Rand:         rand.New(rand.NewSource(1)),
		Logger:       zerolog.Nop(),
	})
	return f
}

func makeQuestion(id, category string, difficulty domain.Difficulty, correct int) domain.Question {
	return domain.Question{
		ID:            id,
		Category:      category,
		Difficulty:    difficulty,
		Type:          domain.TypeMultipleChoice,
		Title:         id,
		Prompt:        "Which option?",
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: correct,
		Explanation:   "Explained " + id,
		Tags:          []string{category},
		CreatedAt:     1700000000000,
	}
}

// makeBank returns n questions of category cycling through difficulties.
func makeBank(category string, n int) []domain.Question {
	bank := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		d := domain.Difficulties[i%len(domain.Difficulties)]
		bank = append(bank, makeQuestion(fmt.Sprintf("%s-%02d", category, i), category, d, i%4))
	}
	return bank
}
