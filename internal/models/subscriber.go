// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Subscriber is a newsletter signup. Email is unique.
type Subscriber struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName returns the subscriber's name, or "-" when none was given.
func (s *Subscriber) DisplayName() string {
	if s.Name == nil || *s.Name == "" {
		return "-"
	}
	return *s.Name
}

// SubscribeResult is the outcome of a newsletter signup. A duplicate email
// is reported here rather than as an error.
type SubscribeResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Stats are the dashboard counters. Subscribers counts active ones only.
type Stats struct {
	Posts       int `json:"posts"`
	Videos      int `json:"videos"`
	Ebooks      int `json:"ebooks"`
	Subscribers int `json:"subscribers"`
}
