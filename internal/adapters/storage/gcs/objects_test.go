package gcs

import (
	"context"
	"errors"
	"testing"
)

func TestDeletePrefix_RejectsEmptyPrefix(t *testing.T) {
	s := &ObjectStore{bucket: "b"}
	for _, p := range []string{"", "  ", "/"} {
		if _, err := s.DeletePrefix(context.Background(), p); !errors.Is(err, ErrEmptyPrefix) {
			t.Fatalf("prefix %q: expected ErrEmptyPrefix, got %v", p, err)
		}
	}
}

func TestNew_RequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}
