// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"vivabem/internal/models"
)

const userColumns = `id, open_id, name, email, login_method, role,
	created_at, updated_at, last_signed_in`

func scanUser(r rowScanner) (*models.User, error) {
	u := &models.User{}
	err := r.Scan(
		&u.ID, &u.OpenID, &u.Name, &u.Email, &u.LoginMethod, &u.Role,
		&u.CreatedAt, &u.UpdatedAt, &u.LastSignedIn,
	)
	return u, err
}

// UserStore records identities that have signed in.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Upsert inserts u or, when its OpenID already exists, overwrites the
// fields that are set. LastSignedIn defaults to now and Role to "user" on
// insert; an empty Role leaves the stored role untouched on update.
func (s *UserStore) Upsert(ctx context.Context, u models.User) (*models.User, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	if u.OpenID == "" {
		return nil, errors.New("upsert user: open id is required")
	}
	if u.LastSignedIn.IsZero() {
		u.LastSignedIn = time.Now()
	}
	var role *models.Role
	if u.Role != "" {
		role = &u.Role
	}

	out, err := scanUser(s.db.QueryRowContext(ctx, `
		INSERT INTO users (open_id, name, email, login_method, role, last_signed_in)
		VALUES ($1, $2, $3, $4, COALESCE($5, 'user'), $6)
		ON CONFLICT (open_id) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, users.name),
			email = COALESCE(EXCLUDED.email, users.email),
			login_method = COALESCE(EXCLUDED.login_method, users.login_method),
			role = COALESCE($5, users.role),
			last_signed_in = EXCLUDED.last_signed_in,
			updated_at = NOW()
		RETURNING `+userColumns,
		u.OpenID, u.Name, u.Email, u.LoginMethod, role, u.LastSignedIn,
	))
	if err != nil {
		return nil, classify("upsert user", err)
	}
	return out, nil
}

// FindByOpenID retrieves a user by external identity. Returns nil if not found.
func (s *UserStore) FindByOpenID(ctx context.Context, openID string) (*models.User, error) {
	if s.db == nil {
		return nil, nil
	}
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE open_id = $1`, openID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find user by open id", err)
	}
	return u, nil
}
