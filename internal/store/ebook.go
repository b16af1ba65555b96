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

const ebookColumns = `id, title, description, image, download_url, pages,
	published, created_at, updated_at`

func scanEbook(r rowScanner) (*models.Ebook, error) {
	e := &models.Ebook{}
	err := r.Scan(
		&e.ID, &e.Title, &e.Description, &e.Image, &e.DownloadURL, &e.Pages,
		&e.Published, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// EbookStore handles all ebook-related database operations.
type EbookStore struct {
	db *sql.DB
}

// NewEbookStore creates a new EbookStore with the given database connection.
func NewEbookStore(db *sql.DB) *EbookStore {
	return &EbookStore{db: db}
}

func (s *EbookStore) list(ctx context.Context, op, where string) ([]models.Ebook, error) {
	items := []models.Ebook{}
	if s.db == nil {
		return items, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+ebookColumns+` FROM ebooks `+where)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEbook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ebook: %w", err)
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return items, nil
}

// ListPublished returns published ebooks, newest first.
func (s *EbookStore) ListPublished(ctx context.Context) ([]models.Ebook, error) {
	return s.list(ctx, "list published ebooks",
		`WHERE published = TRUE ORDER BY created_at DESC, id DESC`)
}

// ListAll returns every ebook regardless of status.
func (s *EbookStore) ListAll(ctx context.Context) ([]models.Ebook, error) {
	return s.list(ctx, "list ebooks", `ORDER BY created_at DESC, id DESC`)
}

// FindByID retrieves an ebook by id. Returns nil if not found.
func (s *EbookStore) FindByID(ctx context.Context, id int64) (*models.Ebook, error) {
	if s.db == nil {
		return nil, nil
	}
	e, err := scanEbook(s.db.QueryRowContext(ctx,
		`SELECT `+ebookColumns+` FROM ebooks WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find ebook by id", err)
	}
	return e, nil
}

// Create inserts a new ebook and returns the stored row.
func (s *EbookStore) Create(ctx context.Context, in models.EbookInput) (*models.Ebook, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	e, err := scanEbook(s.db.QueryRowContext(ctx, `
		INSERT INTO ebooks (title, description, image, download_url, pages, published)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+ebookColumns,
		in.Title, in.Description, in.Image, in.DownloadURL, in.Pages,
		models.BoolOr(in.Published, true),
	))
	if err != nil {
		return nil, classify("create ebook", err)
	}
	return e, nil
}

// Update applies the non-nil fields of patch and returns the refreshed row,
// or nil if no ebook has that id.
func (s *EbookStore) Update(ctx context.Context, id int64, patch models.EbookPatch) (*models.Ebook, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	if patch.IsEmpty() {
		return s.FindByID(ctx, id)
	}

	var set setList
	setIf(&set, "title", patch.Title)
	setIf(&set, "description", patch.Description)
	setIf(&set, "image", patch.Image)
	setNullable(&set, "download_url", patch.DownloadURL)
	setIf(&set, "pages", patch.Pages)
	setIf(&set, "published", patch.Published)

	q, args := set.updateSQL("ebooks", id, ebookColumns)
	e, err := scanEbook(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("update ebook", err)
	}
	return e, nil
}

// Delete removes an ebook by id. Deleting a missing id is not an error.
func (s *EbookStore) Delete(ctx context.Context, id int64) error {
	if s.db == nil {
		return ErrUnavailable
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM ebooks WHERE id = $1`, id)
	if err != nil {
		return classify("delete ebook", err)
	}
	n, _ := res.RowsAffected()
	zap.S().Debugw("ebook deleted", "id", id, "rows", n)
	return nil
}

// Count returns the total number of ebooks.
func (s *EbookStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, "ebooks", "")
}
