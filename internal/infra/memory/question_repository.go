package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizzy/internal/domain"
)

// QuestionLoader fetches the question bank from a backing store (file, Postgres).
type QuestionLoader interface {
	LoadBank(ctx context.Context) ([]domain.Question, error)
}

const bankKey = "bank"

// QuestionRepository caches the bank with a TTL so the loader is hit at most
// once per expiry, even under concurrent callers.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.RWMutex
	rnd       *rand.Rand
	bank      []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetBank(ctx context.Context) ([]domain.Question, error) {
	if bank, ok := r.cached(r.clock()); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(bankKey, func() (interface{}, error) {
		now := r.clock()
		if bank, ok := r.cached(now); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadBank(ctx)
		if err != nil {
			return nil, err
		}

		ttl := r.ttlWithJitter()
		r.mu.Lock()
		r.bank = bank
		r.expiresAt = now.Add(ttl)
		r.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return copyBank(result.([]domain.Question)), nil
}

// Invalidate drops the cached bank.
func (r *QuestionRepository) Invalidate(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bank = nil
	r.expiresAt = time.Time{}
	return nil
}

func (r *QuestionRepository) cached(now time.Time) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.bank == nil || !r.expiresAt.After(now) {
		return nil, false
	}
	return copyBank(r.bank), true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func copyBank(bank []domain.Question) []domain.Question {
	return append([]domain.Question(nil), bank...)
}

// StaticQuestionLoader is a loader backed by a fixed slice (useful for tests/demos).
type StaticQuestionLoader struct {
	bank []domain.Question
}

func NewStaticQuestionLoader(bank []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{bank: bank}
}

func (l *StaticQuestionLoader) LoadBank(_ context.Context) ([]domain.Question, error) {
	if len(l.bank) == 0 {
		return nil, domain.ErrBankUnavailable
	}
	return copyBank(l.bank), nil
}
