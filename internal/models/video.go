// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Video is an entry of the YouTube channel listing.
type Video struct {
	ID          int64     `json:"id"`
	YoutubeID   *string   `json:"youtubeId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	Duration    string    `json:"duration"`
	Published   bool      `json:"published"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WatchURL returns the YouTube watch link, or "" when the video has no id.
func (v *Video) WatchURL() string {
	if v.YoutubeID == nil || *v.YoutubeID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + *v.YoutubeID
}

type VideoInput struct {
	YoutubeID   *string `json:"youtubeId,omitempty"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Thumbnail   string  `json:"thumbnail"`
	Duration    string  `json:"duration"`
	Published   *bool   `json:"published,omitempty"`
	Featured    *bool   `json:"featured,omitempty"`
}

// VideoPatch is a partial update. A blank YoutubeID or Description is
// written as NULL.
type VideoPatch struct {
	YoutubeID   *string `json:"youtubeId,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Thumbnail   *string `json:"thumbnail,omitempty"`
	Duration    *string `json:"duration,omitempty"`
	Published   *bool   `json:"published,omitempty"`
	Featured    *bool   `json:"featured,omitempty"`
}

func (p VideoPatch) IsEmpty() bool {
	return p == VideoPatch{}
}
