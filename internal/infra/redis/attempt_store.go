package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quizzy/internal/app"
)

// AttemptStore is a Redis-aware implementation of app.AttemptRepository.
// Notes:
//   - State machines stay in a local map; they hold a clock and a mutex and
//     are only meaningful inside this process.
//   - Redis marks which profiles have a live attempt so other instances and
//     operators can see them. The marker expires after ttl.
type AttemptStore struct {
	client   *redis.Client
	ttl      time.Duration
	newState func() *app.QuizState

	mu       sync.RWMutex
	attempts map[string]*app.QuizState
}

func NewAttemptStore(client *redis.Client, ttl time.Duration, newState func() *app.QuizState) *AttemptStore {
	if newState == nil {
		newState = func() *app.QuizState { return app.NewQuizState(app.DefaultQuestionsPerQuiz) }
	}
	return &AttemptStore{
		client:   client,
		ttl:      ttl,
		newState: newState,
		attempts: make(map[string]*app.QuizState),
	}
}

func (s *AttemptStore) GetOrCreate(profile string) *app.QuizState {
	s.mu.Lock()
	defer s.mu.Unlock()
	// refresh liveness on every use, best-effort
	_ = s.client.Set(context.Background(), s.key(profile), "1", s.ttl).Err()
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
	_ = s.client.Del(context.Background(), s.key(profile)).Err()
}

func (s *AttemptStore) key(profile string) string {
	return keyPrefix + "attempt:" + profile
}
