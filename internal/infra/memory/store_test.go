package memory

import (
	"context"
	"errors"
	"testing"

	"quizzy/internal/domain"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if _, err := store.Load(ctx, domain.KeyStats); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	value := []byte(`{"totalQuizzes":1}`)
	if err := store.Save(ctx, domain.KeyStats, value); err != nil {
		t.Fatalf("save: %v", err)
	}
	value[0] = 'x'

	got, err := store.Load(ctx, domain.KeyStats)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"totalQuizzes":1}` {
		t.Fatalf("unexpected value %q", got)
	}

	if err := store.Delete(ctx, domain.KeyStats); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, domain.KeyStats); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
