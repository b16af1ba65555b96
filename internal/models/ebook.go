// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Ebook is a downloadable rich-material entry.
type Ebook struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	DownloadURL *string   `json:"downloadUrl"`
	Pages       int       `json:"pages"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type EbookInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	DownloadURL *string `json:"downloadUrl,omitempty"`
	Pages       int     `json:"pages"`
	Published   *bool   `json:"published,omitempty"`
}

// EbookPatch is a partial update. A blank DownloadURL is written as NULL.
type EbookPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	DownloadURL *string `json:"downloadUrl,omitempty"`
	Pages       *int    `json:"pages,omitempty"`
	Published   *bool   `json:"published,omitempty"`
}

func (p EbookPatch) IsEmpty() bool {
	return p == EbookPatch{}
}
