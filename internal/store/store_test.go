package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "posts.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func textPost(owner int64, body string, at Clock) Post {
	return Post{
		OwnerID:   owner,
		ChannelID: -100200300,
		Content:   Content{Kind: KindText, Body: body},
		At:        at,
	}
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, textPost(1, "Good morning!", Clock{8, 15}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("Create returned empty id")
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != id || got.OwnerID != 1 || got.Content.Body != "Good morning!" {
		t.Errorf("unexpected post: %+v", got)
	}
	if got.At != (Clock{8, 15}) {
		t.Errorf("unexpected time: %+v", got.At)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestCreateAssignsDistinctIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		id, err := s.Create(ctx, textPost(1, "x", Clock{1, 0}))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name string
		post Post
	}{
		{"empty body", textPost(1, "", Clock{8, 0})},
		{"hour out of range", textPost(1, "ok", Clock{24, 0})},
		{"minute out of range", textPost(1, "ok", Clock{8, 60})},
		{"image without media ref", Post{OwnerID: 1, Content: Content{Kind: KindImage}, At: Clock{8, 0}}},
	}
	for _, tc := range cases {
		if _, err := s.Create(ctx, tc.post); err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByOwner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Create(ctx, textPost(1, "mine", Clock{9, 0})); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := s.Create(ctx, textPost(2, "theirs", Clock{9, 0})); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mine, err := s.ListByOwner(ctx, 1)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("expected 3 posts, got %d", len(mine))
	}

	none, err := s.ListByOwner(ctx, 42)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected 0 posts for unknown owner, got %d", len(none))
	}
}

func TestListAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, textPost(1, "a", Clock{9, 0})); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, textPost(2, "b", Clock{10, 0})); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 posts, got %d", len(all))
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, textPost(1, "bye", Clock{7, 30}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Wrong owner: no removal, no error.
	removed, err := s.Delete(ctx, id, 2)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed {
		t.Fatal("delete by non-owner removed the post")
	}

	removed, err = s.Delete(ctx, id, 1)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed {
		t.Fatal("delete by owner did not remove the post")
	}

	if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is a successful no-op.
	removed, err = s.Delete(ctx, id, 1)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed {
		t.Fatal("second delete reported a removal")
	}
}

func TestUpdateContent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, textPost(1, "x", Clock{8, 0}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.UpdateContent(ctx, id, Content{Kind: KindText, Body: "y"}); err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Content.Body != "y" {
		t.Errorf("body = %q, want %q", got.Content.Body, "y")
	}

	if err := s.UpdateContent(ctx, "missing", Content{Kind: KindText, Body: "z"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing post, got %v", err)
	}
	if err := s.UpdateContent(ctx, id, Content{Kind: KindText}); err == nil {
		t.Error("expected validation error for empty body")
	}
}

func TestReopenKeepsPosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.db")
	ctx := context.Background()

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id, err := s1.Create(ctx, textPost(1, "durable", Clock{6, 45}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	got, err := s2.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Content.Body != "durable" || got.At != (Clock{6, 45}) {
		t.Errorf("unexpected post after reopen: %+v", got)
	}
}
