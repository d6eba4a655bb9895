package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveOpenDelete(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	key, size, mimeType, err := store.Save(ctx, "disclosures", "idf.txt", strings.NewReader("invention disclosure"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len("invention disclosure")) {
		t.Fatalf("size mismatch: %d", size)
	}
	if !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("unexpected mime type: %s", mimeType)
	}
	if !strings.HasPrefix(key, "disclosures/") {
		t.Fatalf("expected namespaced key, got %s", key)
	}

	body, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, []byte("invention disclosure")) {
		t.Fatalf("content mismatch: %q", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, key); err == nil {
		t.Fatalf("expected open to fail after delete")
	}
	// Deleting twice is not an error.
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../outside"); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
}

func TestSaveRejectsBadNames(t *testing.T) {
	store := New(t.TempDir())
	if _, _, _, err := store.Save(context.Background(), "disclosures", "../evil.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal file name to be rejected")
	}
	if _, _, _, err := store.Save(context.Background(), "..", "ok.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal namespace to be rejected")
	}
}
