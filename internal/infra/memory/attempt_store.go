package memory

import (
	"sync"

	"quizzy/internal/app"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	newState func() *app.QuizState

	mu       sync.RWMutex
	attempts map[string]*app.QuizState
}

// NewAttemptStore uses newState to build the state machine of a new profile.
func NewAttemptStore(newState func() *app.QuizState) *AttemptStore {
	if newState == nil {
		newState = func() *app.QuizState { return app.NewQuizState(app.DefaultQuestionsPerQuiz) }
	}
	return &AttemptStore{
		newState: newState,
		attempts: make(map[string]*app.QuizState),
	}
}

func (s *AttemptStore) GetOrCreate(profile string) *app.QuizState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.attempts[profile]; ok {
		return state
	}
	state := s.newState()
	s.attempts[profile] = state
	return state
}

func (s *AttemptStore) Get(profile string) (*app.QuizState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.attempts[profile]
	return state, ok
}

func (s *AttemptStore) Delete(profile string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, profile)
}
