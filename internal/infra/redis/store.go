package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"quizzy/internal/domain"
)

const keyPrefix = "quizzy:"

// Store is a Redis implementation of app.Store. Values are plain strings under
// quizzy:{key}.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, keyPrefix+key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}
