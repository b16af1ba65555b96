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

const videoColumns = `id, youtube_id, title, description, thumbnail, duration,
	published, featured, created_at, updated_at`

func scanVideo(r rowScanner) (*models.Video, error) {
	v := &models.Video{}
	err := r.Scan(
		&v.ID, &v.YoutubeID, &v.Title, &v.Description, &v.Thumbnail, &v.Duration,
		&v.Published, &v.Featured, &v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}

// VideoStore handles all video-related database operations.
type VideoStore struct {
	db *sql.DB
}

// NewVideoStore creates a new VideoStore with the given database connection.
func NewVideoStore(db *sql.DB) *VideoStore {
	return &VideoStore{db: db}
}

func (s *VideoStore) list(ctx context.Context, op, where string, args ...any) ([]models.Video, error) {
	items := []models.Video{}
	if s.db == nil {
		return items, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+videoColumns+` FROM videos `+where, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		items = append(items, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return items, nil
}

// ListPublished returns published videos, newest first. A limit of 0 means
// no limit.
func (s *VideoStore) ListPublished(ctx context.Context, limit int) ([]models.Video, error) {
	return s.list(ctx, "list published videos", `
		WHERE published = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limitArg(limit))
}

// ListAll returns every video regardless of status.
func (s *VideoStore) ListAll(ctx context.Context) ([]models.Video, error) {
	return s.list(ctx, "list videos", `ORDER BY created_at DESC, id DESC`)
}

// Latest returns the newest published video, or nil when there is none.
func (s *VideoStore) Latest(ctx context.Context) (*models.Video, error) {
	items, err := s.ListPublished(ctx, 1)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}

// FindByID retrieves a video by id. Returns nil if not found.
func (s *VideoStore) FindByID(ctx context.Context, id int64) (*models.Video, error) {
	if s.db == nil {
		return nil, nil
	}
	v, err := scanVideo(s.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find video by id", err)
	}
	return v, nil
}

// Create inserts a new video and returns the stored row.
func (s *VideoStore) Create(ctx context.Context, in models.VideoInput) (*models.Video, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	v, err := scanVideo(s.db.QueryRowContext(ctx, `
		INSERT INTO videos (youtube_id, title, description, thumbnail, duration, published, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+videoColumns,
		in.YoutubeID, in.Title, in.Description, in.Thumbnail, in.Duration,
		models.BoolOr(in.Published, true), models.BoolOr(in.Featured, false),
	))
	if err != nil {
		return nil, classify("create video", err)
	}
	return v, nil
}

// Update applies the non-nil fields of patch and returns the refreshed row,
// or nil if no video has that id.
func (s *VideoStore) Update(ctx context.Context, id int64, patch models.VideoPatch) (*models.Video, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	if patch.IsEmpty() {
		return s.FindByID(ctx, id)
	}

	var set setList
	setNullable(&set, "youtube_id", patch.YoutubeID)
	setIf(&set, "title", patch.Title)
	setNullable(&set, "description", patch.Description)
	setIf(&set, "thumbnail", patch.Thumbnail)
	setIf(&set, "duration", patch.Duration)
	setIf(&set, "published", patch.Published)
	setIf(&set, "featured", patch.Featured)

	q, args := set.updateSQL("videos", id, videoColumns)
	v, err := scanVideo(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("update video", err)
	}
	return v, nil
}

// Delete removes a video by id. Deleting a missing id is not an error.
func (s *VideoStore) Delete(ctx context.Context, id int64) error {
	if s.db == nil {
		return ErrUnavailable
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return classify("delete video", err)
	}
	n, _ := res.RowsAffected()
	zap.S().Debugw("video deleted", "id", id, "rows", n)
	return nil
}

// Count returns the total number of videos.
func (s *VideoStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, "videos", "")
}
