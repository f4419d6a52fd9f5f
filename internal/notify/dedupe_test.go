package notify

import (
	"context"
	"testing"
	"time"
)

func TestMemoryDedupeWindow(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	store := NewMemoryDedupe()
	store.nowFn = func() time.Time { return now }
	ctx := context.Background()

	seen, err := store.Seen(ctx, "cpu:raised")
	if err != nil || seen {
		t.Fatalf("Seen before mark = (%v, %v), want (false, nil)", seen, err)
	}

	if err := store.Mark(ctx, "cpu:raised", time.Minute); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	seen, _ = store.Seen(ctx, "cpu:raised")
	if !seen {
		t.Errorf("Seen immediately after mark = false, want true")
	}

	now = now.Add(59 * time.Second)
	if seen, _ = store.Seen(ctx, "cpu:raised"); !seen {
		t.Errorf("Seen inside window = false, want true")
	}

	now = now.Add(2 * time.Second)
	if seen, _ = store.Seen(ctx, "cpu:raised"); seen {
		t.Errorf("Seen after window elapsed = true, want false")
	}
}

func TestMemoryDedupeKeysAreIndependent(t *testing.T) {
	store := NewMemoryDedupe()
	ctx := context.Background()

	if err := store.Mark(ctx, "cpu:raised", time.Minute); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	if seen, _ := store.Seen(ctx, "memory:raised"); seen {
		t.Errorf("unrelated key reported seen")
	}
	if seen, _ := store.Seen(ctx, "cpu:cleared"); seen {
		t.Errorf("same kind different event reported seen")
	}
}
