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

// DuplicateSubscriberMessage is shown when an email is already subscribed.
const DuplicateSubscriberMessage = "Este e-mail já está inscrito."

const subscriberColumns = `id, email, name, active, created_at, updated_at`

// SubscriberStore handles newsletter subscriber persistence.
type SubscriberStore struct {
	db *sql.DB
}

// NewSubscriberStore creates a new SubscriberStore with the given database connection.
func NewSubscriberStore(db *sql.DB) *SubscriberStore {
	return &SubscriberStore{db: db}
}

// Subscribe records a newsletter signup. A duplicate email is reported in
// the result, not as an error.
func (s *SubscriberStore) Subscribe(ctx context.Context, email string, name *string) (models.SubscribeResult, error) {
	if s.db == nil {
		return models.SubscribeResult{}, ErrUnavailable
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO newsletter_subscribers (email, name) VALUES ($1, $2)`, email, name)
	if err = classify("subscribe", err); err != nil {
		if errors.Is(err, ErrConstraint) {
			return models.SubscribeResult{Success: false, Error: DuplicateSubscriberMessage}, nil
		}
		return models.SubscribeResult{}, err
	}
	return models.SubscribeResult{Success: true}, nil
}

// List returns subscribers newest first, optionally only the active ones.
func (s *SubscriberStore) List(ctx context.Context, activeOnly bool) ([]models.Subscriber, error) {
	items := []models.Subscriber{}
	if s.db == nil {
		return items, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM newsletter_subscribers
		WHERE ($1 = FALSE OR active = TRUE)
		ORDER BY created_at DESC, id DESC
	`, activeOnly)
	if err != nil {
		return nil, classify("list subscribers", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sub models.Subscriber
		if err := rows.Scan(
			&sub.ID, &sub.Email, &sub.Name, &sub.Active, &sub.CreatedAt, &sub.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		items = append(items, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list subscribers", err)
	}
	return items, nil
}

// Delete removes a subscriber by id. Deleting a missing id is not an error.
func (s *SubscriberStore) Delete(ctx context.Context, id int64) error {
	if s.db == nil {
		return ErrUnavailable
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM newsletter_subscribers WHERE id = $1`, id)
	if err != nil {
		return classify("delete subscriber", err)
	}
	n, _ := res.RowsAffected()
	zap.S().Debugw("subscriber deleted", "id", id, "rows", n)
	return nil
}

// CountActive returns the number of active subscribers.
func (s *SubscriberStore) CountActive(ctx context.Context) (int, error) {
	return count(ctx, s.db, "newsletter_subscribers", "WHERE active = TRUE")
}
