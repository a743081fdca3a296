package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quizzy/internal/domain"
)

type kvEntry struct {
	bun.BaseModel `bun:"table:kv_store"`

	Key       string    `bun:"key,pk"`
	Value     []byte    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Store is a Postgres implementation of app.Store on the kv_store table.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	entry := new(kvEntry)
	err := s.db.NewSelect().Model(entry).Where("key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	entry := &kvEntry{Key: key, Value: value, UpdatedAt: s.now().UTC()}
	_, err := s.db.NewInsert().
		Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.NewDelete().Model((*kvEntry)(nil)).Where("key = ?", key).Exec(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
