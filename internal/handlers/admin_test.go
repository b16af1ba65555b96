// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vivabem/internal/auth"
	"vivabem/internal/models"
	"vivabem/internal/storage"
)

func validPost() map[string]any {
	return map[string]any{
		"title":    "Alimentação na Estrada",
		"slug":     "alimentacao-na-estrada",
		"excerpt":  "Como comer bem entre uma entrega e outra.",
		"content":  "Texto",
		"image":    "https://images.unsplash.com/photo-1.jpg",
		"category": "Alimentação",
		"readTime": "5 min",
	}
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := call(t, env.rpc, adminSession, "admin.stats", nil)
	var stats models.Stats
	decodeResult(t, resp, &stats)
	assert.Equal(t, models.Stats{Posts: 5, Videos: 10, Ebooks: 3, Subscribers: 25}, stats)
}

func TestAdminPostLifecycle(t *testing.T) {
	env := newTestEnv(t)

	// Create with defaults.
	resp, _ := call(t, env.rpc, adminSession, "admin.posts.create", validPost())
	var created models.Post
	decodeResult(t, resp, &created)
	assert.NotZero(t, created.ID)
	assert.True(t, created.Published, "published defaults to true")
	assert.False(t, created.Featured, "featured defaults to false")

	// Unpublish it through a partial update.
	resp, _ = call(t, env.rpc, adminSession, "admin.posts.update", map[string]any{
		"id":   created.ID,
		"data": map[string]any{"published": false},
	})
	var updated models.Post
	decodeResult(t, resp, &updated)
	assert.False(t, updated.Published)
	assert.Equal(t, created.Title, updated.Title, "absent fields are untouched")

	// Public reads no longer see it; admin reads do.
	resp, _ = call(t, env.rpc, nil, "posts.bySlug", map[string]any{"slug": created.Slug})
	assert.JSONEq(t, "null", string(resp.Result))

	resp, _ = call(t, env.rpc, adminSession, "admin.posts.list", nil)
	var all []models.Post
	decodeResult(t, resp, &all)
	require.Len(t, all, 1)

	resp, _ = call(t, env.rpc, adminSession, "admin.posts.byId", map[string]any{"id": created.ID})
	var byID models.Post
	decodeResult(t, resp, &byID)
	assert.Equal(t, created.Slug, byID.Slug)

	// Delete is idempotent.
	for i := 0; i < 2; i++ {
		resp, _ = call(t, env.rpc, adminSession, "admin.posts.delete", map[string]any{"id": created.ID})
		assert.JSONEq(t, `{"success":true}`, string(resp.Result))
	}

	resp, _ = call(t, env.rpc, adminSession, "admin.posts.byId", map[string]any{"id": created.ID})
	assert.JSONEq(t, "null", string(resp.Result))
}

func TestAdminPostCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		edit  func(p map[string]any)
		field string
		msg   string
	}{
		{name: "blank title", edit: func(p map[string]any) { p["title"] = "   " }, field: "title", msg: msgTitleRequired},
		{name: "missing slug", edit: func(p map[string]any) { delete(p, "slug") }, field: "slug", msg: msgSlugRequired},
		{name: "slug with spaces", edit: func(p map[string]any) { p["slug"] = "com espaço" }, field: "slug", msg: msgSlugInvalid},
		{name: "missing excerpt", edit: func(p map[string]any) { p["excerpt"] = "" }, field: "excerpt", msg: msgExcerptRequired},
		{name: "relative image", edit: func(p map[string]any) { p["image"] = "/img/capa.jpg" }, field: "image", msg: msgImageInvalid},
		{name: "non-http image", edit: func(p map[string]any) { p["image"] = "javascript:alert(1)" }, field: "image", msg: msgImageInvalid},
		{name: "missing category", edit: func(p map[string]any) { p["category"] = "" }, field: "category", msg: msgCategoryRequired},
		{name: "missing read time", edit: func(p map[string]any) { delete(p, "readTime") }, field: "readTime", msg: msgReadTimeRequired},
		{name: "read time too long", edit: func(p map[string]any) { p["readTime"] = "uns vinte e cinco minutos" }, field: "readTime", msg: "Máximo de 20 caracteres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPost()
			tt.edit(p)
			resp, _ := call(t, env.rpc, adminSession, "admin.posts.create", p)
			assert.Equal(t, tt.msg, issuesOf(t, resp)[tt.field])
		})
	}

	assert.Empty(t, env.posts.posts, "invalid input never reaches storage")
}

func TestAdminPostCreateRejectsUnknownFields(t *testing.T) {
	env := newTestEnv(t)

	p := validPost()
	p["id"] = 99
	resp, _ := call(t, env.rpc, adminSession, "admin.posts.create", p)
	assert.Equal(t, "Campo desconhecido", issuesOf(t, resp)["id"])
}

func TestAdminPostDuplicateSlug(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := call(t, env.rpc, adminSession, "admin.posts.create", validPost())
	require.Nil(t, resp.Error)

	resp, _ = call(t, env.rpc, adminSession, "admin.posts.create", validPost())
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeConflict, resp.Error.Code)
}

func TestAdminPostUpdateValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		params map[string]any
		field  string
		msg    string
	}{
		{name: "zero id", params: map[string]any{"id": 0, "data": map[string]any{}}, field: "id", msg: msgIDInvalid},
		{name: "blank title", params: map[string]any{"id": 1, "data": map[string]any{"title": ""}}, field: "title", msg: msgTitleRequired},
		{name: "bad image", params: map[string]any{"id": 1, "data": map[string]any{"image": "nope"}}, field: "image", msg: msgImageInvalid},
		{name: "unknown patch field", params: map[string]any{"id": 1, "data": map[string]any{"createdAt": "x"}}, field: "createdAt", msg: "Campo desconhecido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := call(t, env.rpc, adminSession, "admin.posts.update", tt.params)
			assert.Equal(t, tt.msg, issuesOf(t, resp)[tt.field])
		})
	}
}

func TestAdminPostUpdateMissing(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := call(t, env.rpc, adminSession, "admin.posts.update", map[string]any{
		"id":   404,
		"data": map[string]any{"title": "Novo"},
	})
	require.Nil(t, resp.Error)
	assert.JSONEq(t, "null", string(resp.Result))
}

func TestAdminSlugify(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := call(t, env.rpc, adminSession, "admin.posts.slugify", map[string]any{"title": "Saúde Mental: Como Lidar?"})
	var out slugifyResult
	decodeResult(t, resp, &out)
	assert.Equal(t, "saude-mental-como-lidar", out.Slug)
}

func TestAdminVideos(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := call(t, env.rpc, adminSession, "admin.videos.create", map[string]any{
		"youtubeId": "dQw4w9WgXcQ",
		"title":     "Alongamento",
		"thumbnail": "https://i.ytimg.com/vi/x/hq.jpg",
		"duration":  "8:30",
	})
	var v models.Video
	decodeResult(t, resp, &v)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", v.WatchURL())

	resp, _ = call(t, env.rpc, adminSession, "admin.videos.create", map[string]any{
		"title":     "Sem miniatura",
		"thumbnail": "thumb.jpg",
		"duration":  "",
	})
	issues := issuesOf(t, resp)
	assert.Equal(t, msgThumbnailInvalid, issues["thumbnail"])
	assert.Equal(t, msgDurationRequired, issues["duration"])

	resp, _ = call(t, env.rpc, adminSession, "admin.videos.update", map[string]any{"id": v.ID, "data": map[string]any{"title": "Alongamento 2"}})
	decodeResult(t, resp, &v)
	assert.Equal(t, "Alongamento 2", v.Title)

	resp, _ = call(t, env.rpc, adminSession, "admin.videos.delete", map[string]any{"id": v.ID})
	assert.JSONEq(t, `{"success":true}`, string(resp.Result))
}

func TestAdminEbooks(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := call(t, env.rpc, adminSession, "admin.ebooks.create", map[string]any{
		"title":       "Guia do Sono",
		"description": "Durma melhor na boleia.",
		"image":       "https://cdn/guia.jpg",
		"downloadUrl": "",
		"pages":       32,
	})
	var e models.Ebook
	decodeResult(t, resp, &e)
	assert.Nil(t, e.DownloadURL, "blank download url is stored as null")

	resp, _ = call(t, env.rpc, adminSession, "admin.ebooks.create", map[string]any{
		"title":       "Zero",
		"description": "",
		"image":       "https://cdn/z.jpg",
		"pages":       0,
	})
	issues := issuesOf(t, resp)
	assert.Equal(t, msgPagesRequired, issues["pages"])
	assert.Equal(t, msgDescriptionRequired, issues["description"])

	resp, _ = call(t, env.rpc, adminSession, "admin.ebooks.update", map[string]any{"id": e.ID, "data": map[string]any{"pages": 0}})
	assert.Equal(t, msgPagesRequired, issuesOf(t, resp)["pages"])

	resp, _ = call(t, env.rpc, adminSession, "admin.ebooks.update", map[string]any{"id": e.ID, "data": map[string]any{"pages": 48}})
	decodeResult(t, resp, &e)
	assert.Equal(t, 48, e.Pages)
}

func TestAdminSubscribers(t *testing.T) {
	env := newTestEnv(t)
	env.subscribers.subs = []models.Subscriber{
		{ID: 1, Email: "a@x.com", Active: true, CreatedAt: baseTime},
		{ID: 2, Email: "b@x.com", Active: false, CreatedAt: baseTime},
	}

	resp, _ := call(t, env.rpc, adminSession, "admin.subscribers.list", nil)
	var subs []models.Subscriber
	decodeResult(t, resp, &subs)
	assert.Len(t, subs, 2)

	resp, _ = call(t, env.rpc, adminSession, "admin.subscribers.list", map[string]any{"activeOnly": true})
	decodeResult(t, resp, &subs)
	require.Len(t, subs, 1)
	assert.Equal(t, "a@x.com", subs[0].Email)

	resp, _ = call(t, env.rpc, adminSession, "admin.subscribers.delete", map[string]any{"id": 2})
	assert.JSONEq(t, `{"success":true}`, string(resp.Result))
	assert.Len(t, env.subscribers.subs, 1)
}

func TestAdminUploadPresign(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := call(t, env.rpc, adminSession, "admin.uploads.presign", map[string]any{"filename": "capa.png", "contentType": "image/png"})
	var up storage.Upload
	decodeResult(t, resp, &up)
	assert.Equal(t, "http://s3.local/bucket/uploads/x.png", up.PublicURL)

	resp, _ = call(t, env.rpc, adminSession, "admin.uploads.presign", map[string]any{"filename": "capa.exe", "contentType": "application/x-msdownload"})
	assert.Equal(t, "Tipo de arquivo não suportado", issuesOf(t, resp)["contentType"])

	resp, _ = call(t, env.rpc, adminSession, "admin.uploads.presign", map[string]any{})
	issues := issuesOf(t, resp)
	assert.Equal(t, msgFilenameRequired, issues["filename"])
	assert.Equal(t, msgContentTypeRequired, issues["contentType"])
}

func TestAdminUploadPresignNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	var none *storage.Client
	env.rpc.deps.Uploads = none

	resp, _ := call(t, env.rpc, adminSession, "admin.uploads.presign", map[string]any{"filename": "capa.png", "contentType": "image/png"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeUnavailable, resp.Error.Code)
}

func TestAdminSecurityTOTP(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := call(t, env.rpc, adminSession, "admin.security.totp", nil)
	var status auth.TOTPStatus
	decodeResult(t, resp, &status)
	assert.False(t, status.Enabled)
	assert.NotEmpty(t, status.Secret)
}
