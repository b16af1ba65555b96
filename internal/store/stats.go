// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"

	"vivabem/internal/models"
)

// StatsStore computes the admin dashboard counters.
type StatsStore struct {
	db *sql.DB
}

// NewStatsStore creates a new StatsStore with the given database connection.
func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{db: db}
}

// Stats returns the post, video and ebook totals and the number of active
// subscribers. Unconfigured storage yields all zeros.
func (s *StatsStore) Stats(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	var err error
	if st.Posts, err = count(ctx, s.db, "posts", ""); err != nil {
		return models.Stats{}, err
	}
	if st.Videos, err = count(ctx, s.db, "videos", ""); err != nil {
		return models.Stats{}, err
	}
	if st.Ebooks, err = count(ctx, s.db, "ebooks", ""); err != nil {
		return models.Stats{}, err
	}
	if st.Subscribers, err = count(ctx, s.db, "newsletter_subscribers", "WHERE active = TRUE"); err != nil {
		return models.Stats{}, err
	}
	return st, nil
}

// count runs SELECT COUNT(*) on a fixed table name.
func count(ctx context.Context, db *sql.DB, table, where string) (int, error) {
	if db == nil {
		return 0, nil
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" "+where).Scan(&n); err != nil {
		return 0, classify("count "+table, err)
	}
	return n, nil
}
