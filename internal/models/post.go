// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import "time"

// Post is a blog article. Unpublished posts are visible to admins only.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Content   *string   `json:"content"` // markdown, nullable
	Image     string    `json:"image"`
	Category  string    `json:"category"`
	ReadTime  string    `json:"readTime"` // display only, e.g. "5 min"
	Published bool      `json:"published"`
	Featured  bool      `json:"featured"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// ContentHTML is the rendered body, filled on the public detail read.
	ContentHTML string `json:"contentHtml,omitempty"`
}

// PostInput carries the fields of a new post. Published defaults to true and
// Featured to false when omitted.
type PostInput struct {
	Title     string  `json:"title"`
	Slug      string  `json:"slug"`
	Excerpt   string  `json:"excerpt"`
	Content   *string `json:"content,omitempty"`
	Image     string  `json:"image"`
	Category  string  `json:"category"`
	ReadTime  string  `json:"readTime"`
	Published *bool   `json:"published,omitempty"`
	Featured  *bool   `json:"featured,omitempty"`
}

// PostPatch is a partial update. Only non-nil fields are written; a blank
// Content clears the body to NULL.
type PostPatch struct {
	Title     *string `json:"title,omitempty"`
	Slug      *string `json:"slug,omitempty"`
	Excerpt   *string `json:"excerpt,omitempty"`
	Content   *string `json:"content,omitempty"`
	Image     *string `json:"image,omitempty"`
	Category  *string `json:"category,omitempty"`
	ReadTime  *string `json:"readTime,omitempty"`
	Published *bool   `json:"published,omitempty"`
	Featured  *bool   `json:"featured,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p PostPatch) IsEmpty() bool {
	return p == PostPatch{}
}

// BoolOr dereferences b, returning fallback when b is nil.
func BoolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}
