package memory

import (
	"context"
	"testing"
)

func TestStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := New()
	buf := []byte("abc")
	if err := store.Set(ctx, "slot", buf); err != nil {
		t.Fatalf("Set: %v", err)
	}
	buf[0] = 'x'
	got, ok, err := store.Get(ctx, "slot")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != "abc" {
		t.Fatalf("expected stored copy, got %q", got)
	}
	if err := store.Delete(ctx, "slot"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "slot"); ok {
		t.Fatalf("expected slot removed")
	}
}
