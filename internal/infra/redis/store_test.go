package redis

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"quizzy/internal/domain"
)

func TestStoreUsesPrefixedKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewStore(newClient(mr))
	key := domain.StorageKey("alice", domain.KeyStats)

	if _, err := store.Load(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Save(ctx, key, []byte(`{"streak":2}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := mr.Get("quizzy:alice:js_quiz_stats")
	if err != nil {
		t.Fatalf("miniredis get: %v", err)
	}
	if got != `{"streak":2}` {
		t.Fatalf("unexpected raw value %q", got)
	}

	loaded, err := store.Load(ctx, key)
	if err != nil || string(loaded) != `{"streak":2}` {
		t.Fatalf("load: %q %v", loaded, err)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("quizzy:alice:js_quiz_stats") {
		t.Fatalf("expected key removed")
	}
}
