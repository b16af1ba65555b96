// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"vivabem/internal/models"
)

const postColumns = `id, title, slug, excerpt, content, image, category, read_time,
	published, featured, created_at, updated_at`

func scanPost(r rowScanner) (*models.Post, error) {
	p := &models.Post{}
	err := r.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Image, &p.Category,
		&p.ReadTime, &p.Published, &p.Featured, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

func (s *PostStore) list(ctx context.Context, op, where string, args ...any) ([]models.Post, error) {
	items := []models.Post{}
	if s.db == nil {
		return items, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts `+where, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return items, nil
}

// ListPublished returns published posts, newest first. A limit of 0 means
// no limit.
func (s *PostStore) ListPublished(ctx context.Context, limit int) ([]models.Post, error) {
	return s.list(ctx, "list published posts", `
		WHERE published = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limitArg(limit))
}

// ListFeatured returns published posts flagged as featured, newest first.
func (s *PostStore) ListFeatured(ctx context.Context, limit int) ([]models.Post, error) {
	return s.list(ctx, "list featured posts", `
		WHERE published = TRUE AND featured = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limitArg(limit))
}

// ListAll returns every post regardless of status. Admin only.
func (s *PostStore) ListAll(ctx context.Context) ([]models.Post, error) {
	return s.list(ctx, "list posts", `ORDER BY created_at DESC, id DESC`)
}

// FindBySlug retrieves a published post by slug. Returns nil if not found
// or unpublished.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if s.db == nil {
		return nil, nil
	}
	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE slug = $1 AND published = TRUE`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find post by slug", err)
	}
	return p, nil
}

// FindByID retrieves a post by id regardless of status. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	if s.db == nil {
		return nil, nil
	}
	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find post by id", err)
	}
	return p, nil
}

// Create inserts a new post and returns it with the generated id and timestamps.
func (s *PostStore) Create(ctx context.Context, in models.PostInput) (*models.Post, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	p, err := scanPost(s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, excerpt, content, image, category, read_time, published, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+postColumns,
		in.Title, in.Slug, in.Excerpt, in.Content, in.Image, in.Category, in.ReadTime,
		models.BoolOr(in.Published, true), models.BoolOr(in.Featured, false),
	))
	if err != nil {
		return nil, classify("create post", err)
	}
	return p, nil
}

// Update applies the non-nil fields of patch and returns the refreshed row,
// or nil if no post has that id.
func (s *PostStore) Update(ctx context.Context, id int64, patch models.PostPatch) (*models.Post, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	if patch.IsEmpty() {
		return s.FindByID(ctx, id)
	}

	var set setList
	setIf(&set, "title", patch.Title)
	setIf(&set, "slug", patch.Slug)
	setIf(&set, "excerpt", patch.Excerpt)
	setNullable(&set, "content", patch.Content)
	setIf(&set, "image", patch.Image)
	setIf(&set, "category", patch.Category)
	setIf(&set, "read_time", patch.ReadTime)
	setIf(&set, "published", patch.Published)
	setIf(&set, "featured", patch.Featured)

	q, args := set.updateSQL("posts", id, postColumns)
	p, err := scanPost(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("update post", err)
	}
	return p, nil
}

// Delete removes a post by id. Deleting a missing id is not an error.
func (s *PostStore) Delete(ctx context.Context, id int64) error {
	if s.db == nil {
		return ErrUnavailable
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return classify("delete post", err)
	}
	n, _ := res.RowsAffected()
	zap.S().Debugw("post deleted", "id", id, "rows", n)
	return nil
}

// Count returns the total number of posts.
func (s *PostStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, "posts", "")
}
