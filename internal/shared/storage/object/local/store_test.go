package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"nutrisnap-backend/internal/shared/storage/object"
)

func TestPutOpenAndPublicURL(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir(), "http://localhost:8080/api/v1/media/")

	n, err := store.Put(ctx, "user-1/1700000000000-ab12.jpg", "image/jpeg", strings.NewReader("jpegbytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != int64(len("jpegbytes")) {
		t.Fatalf("expected %d bytes, got %d", len("jpegbytes"), n)
	}

	rc, err := store.Open(ctx, "user-1/1700000000000-ab12.jpg")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if !bytes.Equal(data, []byte("jpegbytes")) {
		t.Fatalf("unexpected content %q", data)
	}

	want := "http://localhost:8080/api/v1/media/user-1/1700000000000-ab12.jpg"
	if got := store.PublicURL("user-1/1700000000000-ab12.jpg"); got != want {
		t.Fatalf("PublicURL = %q, want %q", got, want)
	}
}

func TestPutIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir(), "")
	if _, err := store.Put(ctx, "u/a.png", "image/png", strings.NewReader("1")); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	_, err := store.Put(ctx, "u/a.png", "image/png", strings.NewReader("2"))
	if !errors.Is(err, object.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestPutRejectsTraversal(t *testing.T) {
	store := New(t.TempDir(), "")
	_, err := store.Put(context.Background(), "../outside.jpg", "image/jpeg", strings.NewReader("x"))
	if !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
