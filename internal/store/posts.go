package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get when no post has the requested id.
var ErrNotFound = errors.New("post not found")

// Create validates the post, assigns a fresh id, and inserts it.
// The input's ID field is ignored; the assigned id is returned.
func (s *Store) Create(ctx context.Context, p Post) (string, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}

	p.ID = uuid.NewString()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts
		(id, owner_id, channel_id, kind, body, media_ref, caption, hour, minute, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID,
		p.OwnerID,
		p.ChannelID,
		string(p.Content.Kind),
		p.Content.Body,
		p.Content.MediaRef,
		p.Content.Caption,
		p.At.Hour,
		p.At.Minute,
		p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	return p.ID, nil
}

// Get returns the post with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, channel_id, kind, body, media_ref, caption, hour, minute, created_at
		FROM posts WHERE id = ?
	`, id)

	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("get post %s: %w", id, err)
	}
	return p, nil
}

// ListByOwner returns every post created by ownerID. Order is unspecified.
func (s *Store) ListByOwner(ctx context.Context, ownerID int64) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, channel_id, kind, body, media_ref, caption, hour, minute, created_at
		FROM posts WHERE owner_id = ?
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListAll returns every post in the store, for startup recovery.
func (s *Store) ListAll(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, channel_id, kind, body, media_ref, caption, hour, minute, created_at
		FROM posts
	`)
	if err != nil {
		return nil, fmt.Errorf("list all posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("list all posts: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list all posts: %w", err)
	}
	return posts, nil
}

// Delete removes the post only if it exists and belongs to ownerID.
// Reports whether a row was removed; a missing or foreign post is not an error.
func (s *Store) Delete(ctx context.Context, id string, ownerID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM posts WHERE id = ? AND owner_id = ?
	`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete post %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post %s: %w", id, err)
	}
	return n > 0, nil
}

// UpdateContent replaces the content of an existing post in place. The
// scheduler picks the new content up on the next firing without any
// re-registration, since firing re-reads the record.
func (s *Store) UpdateContent(ctx context.Context, id string, c Content) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("update post %s: %w", id, err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET kind = ?, body = ?, media_ref = ?, caption = ? WHERE id = ?
	`, string(c.Kind), c.Body, c.MediaRef, c.Caption, id)
	if err != nil {
		return fmt.Errorf("update post %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var (
		p       Post
		kind    string
		created string
	)
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.ChannelID,
		&kind,
		&p.Content.Body,
		&p.Content.MediaRef,
		&p.Content.Caption,
		&p.At.Hour,
		&p.At.Minute,
		&created,
	)
	if err != nil {
		return Post{}, err
	}
	p.Content.Kind = ContentKind(kind)
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		p.CreatedAt = t
	}
	return p, nil
}
