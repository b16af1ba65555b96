// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"vivabem/internal/markdown"
	"vivabem/internal/models"
)

// defaultFeaturedLimit is how many featured posts the home page shows.
const defaultFeaturedLimit = 3

type limitParams struct {
	Limit *int `json:"limit,omitempty"`
}

// value returns the limit, or fallback when none was given.
func (p limitParams) value(fallback int) int {
	if p.Limit == nil {
		return fallback
	}
	return *p.Limit
}

type slugParams struct {
	Slug string `json:"slug"`
}

type subscribeParams struct {
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
}

func decodeLimit(c *Call) (limitParams, error) {
	var p limitParams
	if err := decodeParams(c.Params, &p); err != nil {
		return p, err
	}
	var v validator
	v.limit(p.Limit)
	return p, v.err()
}

// registerPublic adds the anonymous procedures.
func (h *RPC) registerPublic(root *namespace) {
	posts := root.group("posts")
	posts.query("list", h.postsList, cached)
	posts.query("featured", h.postsFeatured, cached)
	posts.query("bySlug", h.postsBySlug, cached)

	videos := root.group("videos")
	videos.query("list", h.videosList, cached)
	videos.query("latest", h.videosLatest, cached)

	ebooks := root.group("ebooks")
	ebooks.query("list", h.ebooksList, cached)

	newsletter := root.group("newsletter")
	newsletter.mutation("subscribe", h.newsletterSubscribe, limited)
}

// postsList returns published posts, newest first. No limit means all.
func (h *RPC) postsList(ctx context.Context, c *Call) (any, error) {
	p, err := decodeLimit(c)
	if err != nil {
		return nil, err
	}
	return h.deps.Posts.ListPublished(ctx, p.value(0))
}

// postsFeatured returns published featured posts, three by default.
func (h *RPC) postsFeatured(ctx context.Context, c *Call) (any, error) {
	p, err := decodeLimit(c)
	if err != nil {
		return nil, err
	}
	return h.deps.Posts.ListFeatured(ctx, p.value(defaultFeaturedLimit))
}

// postsBySlug returns one published post with its body rendered to HTML,
// or null.
func (h *RPC) postsBySlug(ctx context.Context, c *Call) (any, error) {
	var p slugParams
	if err := decodeParams(c.Params, &p); err != nil {
		return nil, err
	}
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Slug == "" {
		return nil, invalidParams(Issue{Field: "slug", Message: msgSlugRequired})
	}

	post, err := h.deps.Posts.FindBySlug(ctx, p.Slug)
	if err != nil || post == nil {
		return post, err
	}

	renderContent(post)
	return post, nil
}

// renderContent fills ContentHTML from the markdown body. A render failure
// leaves it empty; the client falls back to the raw content.
func renderContent(post *models.Post) {
	if post.Content == nil {
		return
	}
	html, err := markdown.ToHTML(*post.Content)
	if err != nil {
		zap.S().Warnw("render post content failed", "slug", post.Slug, "error", err)
		return
	}
	post.ContentHTML = html
}

func (h *RPC) videosList(ctx context.Context, c *Call) (any, error) {
	p, err := decodeLimit(c)
	if err != nil {
		return nil, err
	}
	return h.deps.Videos.ListPublished(ctx, p.value(0))
}

// videosLatest returns the newest published video, or null.
func (h *RPC) videosLatest(ctx context.Context, c *Call) (any, error) {
	if err := decodeParams(c.Params, &struct{}{}); err != nil {
		return nil, err
	}
	return h.deps.Videos.Latest(ctx)
}

func (h *RPC) ebooksList(ctx context.Context, c *Call) (any, error) {
	if err := decodeParams(c.Params, &struct{}{}); err != nil {
		return nil, err
	}
	return h.deps.Ebooks.ListPublished(ctx)
}

// newsletterSubscribe signs an address up. A repeated address is a failed
// result, not an error.
func (h *RPC) newsletterSubscribe(ctx context.Context, c *Call) (any, error) {
	var p subscribeParams
	if err := decodeParams(c.Params, &p); err != nil {
		return nil, err
	}
	if err := validateSubscribe(&p); err != nil {
		return nil, err
	}
	return h.deps.Subscribers.Subscribe(ctx, p.Email, p.Name)
}
