package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizzy/internal/domain"
)

// QuestionLoader fetches the question bank from a backing store (file, Postgres).
type QuestionLoader interface {
	LoadBank(ctx context.Context) ([]domain.Question, error)
}

// QuestionRepository caches the bank in Redis and falls back to a loader on a miss.
// Questions are stored as: HSET quizzy:questions {questionID} {question JSON}
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetBank(ctx context.Context) ([]domain.Question, error) {
	if bank, ok := r.cached(ctx); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(r.key(), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.cached(ctx); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadBank(ctx)
		if err != nil {
			return nil, err
		}

		key := r.key()
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, key)
		for _, q := range bank {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, err
			}
			pipe.HSet(ctx, key, q.ID, raw)
		}
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

// Invalidate removes the cached bank.
func (r *QuestionRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, r.key()).Err()
}

func (r *QuestionRepository) cached(ctx context.Context) ([]domain.Question, bool) {
	entries, err := r.client.HGetAll(ctx, r.key()).Result()
	if err != nil || len(entries) == 0 {
		return nil, false
	}
	bank := make([]domain.Question, 0, len(entries))
	for _, raw := range entries {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			// a corrupt entry invalidates the whole cached copy
			return nil, false
		}
		bank = append(bank, q)
	}
	sort.Slice(bank, func(i, j int) bool { return bank[i].ID < bank[j].ID })
	return bank, true
}

func (r *QuestionRepository) key() string {
	return keyPrefix + "questions"
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
