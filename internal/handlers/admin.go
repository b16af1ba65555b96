// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"strings"

	"vivabem/internal/models"
	"vivabem/internal/slug"
)

type idParams struct {
	ID int64 `json:"id"`
}

type updateParams[P any] struct {
	ID   int64 `json:"id"`
	Data P     `json:"data"`
}

type slugifyParams struct {
	Title string `json:"title"`
}

type slugifyResult struct {
	Slug string `json:"slug"`
}

type subscribersParams struct {
	ActiveOnly bool `json:"activeOnly,omitempty"`
}

type presignParams struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// registerAdmin adds the admin procedures. Every one of them runs behind
// the namespace guard.
func (h *RPC) registerAdmin(admin *namespace) {
	admin.query("stats", h.adminStats)

	posts := admin.group("posts")
	posts.query("list", h.adminPostsList)
	posts.query("byId", h.adminPostByID)
	posts.mutation("create", h.adminPostCreate, invalidates)
	posts.mutation("update", h.adminPostUpdate, invalidates)
	posts.mutation("delete", h.adminPostDelete, invalidates)
	posts.query("slugify", h.adminPostSlugify)

	videos := admin.group("videos")
	videos.query("list", h.adminVideosList)
	videos.query("byId", h.adminVideoByID)
	videos.mutation("create", h.adminVideoCreate, invalidates)
	videos.mutation("update", h.adminVideoUpdate, invalidates)
	videos.mutation("delete", h.adminVideoDelete, invalidates)

	ebooks := admin.group("ebooks")
	ebooks.query("list", h.adminEbooksList)
	ebooks.query("byId", h.adminEbookByID)
	ebooks.mutation("create", h.adminEbookCreate, invalidates)
	ebooks.mutation("update", h.adminEbookUpdate, invalidates)
	ebooks.mutation("delete", h.adminEbookDelete, invalidates)

	subscribers := admin.group("subscribers")
	subscribers.query("list", h.adminSubscribersList)
	subscribers.mutation("delete", h.adminSubscriberDelete)

	admin.group("uploads").mutation("presign", h.adminUploadPresign)
	admin.group("security").query("totp", h.adminSecurityTOTP)
}

func decodeID(c *Call) (int64, error) {
	var p idParams
	if err := decodeParams(c.Params, &p); err != nil {
		return 0, err
	}
	var v validator
	v.id(p.ID)
	return p.ID, v.err()
}

// decodeUpdate decodes {id, data} and checks the id. An absent data object
// decodes to the empty patch.
func decodeUpdate[P any](c *Call) (updateParams[P], error) {
	var p updateParams[P]
	if err := decodeParams(c.Params, &p); err != nil {
		return p, err
	}
	var v validator
	v.id(p.ID)
	return p, v.err()
}

func noParams(c *Call) error {
	return decodeParams(c.Params, &struct{}{})
}

func (h *RPC) adminStats(ctx context.Context, c *Call) (any, error) {
	if err := noParams(c); err != nil {
		return nil, err
	}
	return h.deps.Stats.Stats(ctx)
}

// --- Posts ---

func (h *RPC) adminPostsList(ctx context.Context, c *Call) (any, error) {
	if err := noParams(c); err != nil {
		return nil, err
	}
	return h.deps.Posts.ListAll(ctx)
}

func (h *RPC) adminPostByID(ctx context.Context, c *Call) (any, error) {
	id, err := decodeID(c)
	if err != nil {
		return nil, err
	}
	return h.deps.Posts.FindByID(ctx, id)
}

func (h *RPC) adminPostCreate(ctx context.Context, c *Call) (any, error) {
	var in models.PostInput
	if err := decodeParams(c.Params, &in); err != nil {
		return nil, err
	}
	if err := validatePostInput(&in); err != nil {
		return nil, err
	}
	return h.deps.Posts.Create(ctx, in)
}

func (h *RPC) adminPostUpdate(ctx context.Context, c *Call) (any, error) {
	p, err := decodeUpdate[models.PostPatch](c)
	if err != nil {
		return nil, err
	}
	if err := validatePostPatch(&p.Data); err != nil {
		return nil, err
	}
	return h.deps.Posts.Update(ctx, p.ID, p.Data)
}

func (h *RPC) adminPostDelete(ctx context.Context, c *Call) (any, error) {
	id, err := decodeID(c)
	if err != nil {
		return nil, err
	}
	if err := h.deps.Posts.Delete(ctx, id); err != nil {
		return nil, err
	}
	return successResult{Success: true}, nil
}

// adminPostSlugify suggests a slug for a title.
func (h *RPC) adminPostSlugify(_ context.Context, c *Call) (any, error) {
	var p slugifyParams
	if err := decodeParams(c.Params, &p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, invalidParams(Issue{Field: "title", Message: msgTitleRequired})
	}
	return slugifyResult{Slug: slug.Generate(p.Title)}, nil
}

// --- Videos ---

func (h *RPC) adminVideosList(ctx context.Context, c *Call) (any, error) {
	if err := noParams(c); err != nil {
		return nil, err
	}
	return h.deps.Videos.ListAll(ctx)
}

func (h *RPC) adminVideoByID(ctx context.Context, c *Call) (any, error) {
	id, err := decodeID(c)
	if err != nil {
		return nil, err
	}
	return h.deps.Videos.FindByID(ctx, id)
}

func (h *RPC) adminVideoCreate(ctx context.Context, c *Call) (any, error) {
	var in models.VideoInput
	if err := decodeParams(c.Params, &in); err != nil {
		return nil, err
	}
	if err := validateVideoInput(&in); err != nil {
		return nil, err
	}
	return h.deps.Videos.Create(ctx, in)
}

func (h *RPC) adminVideoUpdate(ctx context.Context, c *Call) (any, error) {
	p, err := decodeUpdate[models.VideoPatch](c)
	if err != nil {
		return nil, err
	}
	if err := validateVideoPatch(&p.Data); err != nil {
		return nil, err
	}
	return h.deps.Videos.Update(ctx, p.ID, p.Data)
}

func (h *RPC) adminVideoDelete(ctx context.Context, c *Call) (any, error) {
	id, err := decodeID(c)
	if err != nil {
		return nil, err
	}
	if err := h.deps.Videos.Delete(ctx, id); err != nil {
		return nil, err
	}
	return successResult{Success: true}, nil
}

// --- Ebooks ---

func (h *RPC) adminEbooksList(ctx context.Context, c *Call) (any, error) {
	if err := noParams(c); err != nil {
		return nil, err
	}
	return h.deps.Ebooks.ListAll(ctx)
}

func (h *RPC) adminEbookByID(ctx context.Context, c *Call) (any, error) {
	id, err := decodeID(c)
	if err != nil {
		return nil, err
	}
	return h.deps.Ebooks.FindByID(ctx, id)
}

func (h *RPC) adminEbookCreate(ctx context.Context, c *Call) (any, error) {
	var in models.EbookInput
	if err := decodeParams(c.Params, &in); err != nil {
		return nil, err
	}
	if err := validateEbookInput(&in); err != nil {
		return nil, err
	}
	return h.deps.Ebooks.Create(ctx, in)
}

func (h *RPC) adminEbookUpdate(ctx context.Context, c *Call) (any, error) {
	p, err := decodeUpdate[models.EbookPatch](c)
	if err != nil {
		return nil, err
	}
	if err := validateEbookPatch(&p.Data); err != nil {
		return nil, err
	}
	return h.deps.Ebooks.Update(ctx, p.ID, p.Data)
}

func (h *RPC) adminEbookDelete(ctx context.Context, c *Call) (any, error) {
	id, err := decodeID(c)
	if err != nil {
		return nil, err
	}
	if err := h.deps.Ebooks.Delete(ctx, id); err != nil {
		return nil, err
	}
	return successResult{Success: true}, nil
}

// --- Newsletter subscribers ---

func (h *RPC) adminSubscribersList(ctx context.Context, c *Call) (any, error) {
	var p subscribersParams
	if err := decodeParams(c.Params, &p); err != nil {
		return nil, err
	}
	return h.deps.Subscribers.List(ctx, p.ActiveOnly)
}

func (h *RPC) adminSubscriberDelete(ctx context.Context, c *Call) (any, error) {
	id, err := decodeID(c)
	if err != nil {
		return nil, err
	}
	if err := h.deps.Subscribers.Delete(ctx, id); err != nil {
		return nil, err
	}
	return successResult{Success: true}, nil
}

// --- Uploads & security ---

// adminUploadPresign returns a presigned PUT for a cover or thumbnail image.
func (h *RPC) adminUploadPresign(ctx context.Context, c *Call) (any, error) {
	var p presignParams
	if err := decodeParams(c.Params, &p); err != nil {
		return nil, err
	}
	var v validator
	v.required("filename", p.Filename, msgFilenameRequired, maxTitleLen)
	v.required("contentType", p.ContentType, msgContentTypeRequired, 0)
	if err := v.err(); err != nil {
		return nil, err
	}
	if h.deps.Uploads == nil {
		return nil, errUnavailable
	}
	return h.deps.Uploads.PresignUpload(ctx, p.Filename, p.ContentType)
}

// adminSecurityTOTP reports whether the second factor is on and returns an
// enrollment QR code.
func (h *RPC) adminSecurityTOTP(_ context.Context, c *Call) (any, error) {
	if err := noParams(c); err != nil {
		return nil, err
	}
	if h.deps.Auth == nil {
		return nil, errUnavailable
	}
	return h.deps.Auth.TOTPStatus()
}
