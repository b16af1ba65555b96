// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the RPC tests:
// in-memory stores, a fake authenticator and a helper that performs one
// JSON-RPC call through the full HTTP handler.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vivabem/internal/auth"
	"vivabem/internal/middleware"
	"vivabem/internal/models"
	"vivabem/internal/session"
	"vivabem/internal/storage"
	"vivabem/internal/store"
)

var baseTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

// --- in-memory stores ---

type memPosts struct {
	mu     sync.Mutex
	posts  []models.Post
	nextID int64
	err    error
}

func (m *memPosts) sorted(keep func(p *models.Post) bool, limit int) []models.Post {
	out := []models.Post{}
	for i := len(m.posts) - 1; i >= 0; i-- {
		if keep(&m.posts[i]) {
			out = append(out, m.posts[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *memPosts) ListPublished(_ context.Context, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(p *models.Post) bool { return p.Published }, limit), nil
}

func (m *memPosts) ListFeatured(_ context.Context, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(p *models.Post) bool { return p.Published && p.Featured }, limit), nil
}

func (m *memPosts) ListAll(_ context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(*models.Post) bool { return true }, 0), nil
}

func (m *memPosts) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.Slug == slug && p.Published {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memPosts) FindByID(_ context.Context, id int64) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memPosts) Create(_ context.Context, in models.PostInput) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.Slug == in.Slug {
			return nil, &store.ConstraintError{Op: "create post", Constraint: "posts_slug_key"}
		}
	}
	m.nextID++
	p := models.Post{
		ID: m.nextID, Title: in.Title, Slug: in.Slug, Excerpt: in.Excerpt, Content: in.Content,
		Image: in.Image, Category: in.Category, ReadTime: in.ReadTime,
		Published: models.BoolOr(in.Published, true), Featured: models.BoolOr(in.Featured, false),
		CreatedAt: baseTime.Add(time.Duration(m.nextID) * time.Minute),
	}
	m.posts = append(m.posts, p)
	return &p, nil
}

func (m *memPosts) Update(_ context.Context, id int64, patch models.PostPatch) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.posts {
		p := &m.posts[i]
		if p.ID != id {
			continue
		}
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Slug != nil {
			p.Slug = *patch.Slug
		}
		if patch.Published != nil {
			p.Published = *patch.Published
		}
		if patch.Featured != nil {
			p.Featured = *patch.Featured
		}
		out := *p
		return &out, nil
	}
	return nil, nil
}

func (m *memPosts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.posts {
		if m.posts[i].ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			break
		}
	}
	return nil
}

type memVideos struct {
	videos []models.Video
}

func (m *memVideos) ListPublished(_ context.Context, limit int) ([]models.Video, error) {
	out := []models.Video{}
	for i := len(m.videos) - 1; i >= 0; i-- {
		if m.videos[i].Published {
			out = append(out, m.videos[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memVideos) ListAll(_ context.Context) ([]models.Video, error) {
	return append([]models.Video{}, m.videos...), nil
}

func (m *memVideos) Latest(ctx context.Context) (*models.Video, error) {
	vs, _ := m.ListPublished(ctx, 1)
	if len(vs) == 0 {
		return nil, nil
	}
	return &vs[0], nil
}

func (m *memVideos) FindByID(_ context.Context, id int64) (*models.Video, error) {
	for _, v := range m.videos {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, nil
}

func (m *memVideos) Create(_ context.Context, in models.VideoInput) (*models.Video, error) {
	v := models.Video{
		ID: int64(len(m.videos) + 1), YoutubeID: in.YoutubeID, Title: in.Title, Description: in.Description,
		Thumbnail: in.Thumbnail, Duration: in.Duration,
		Published: models.BoolOr(in.Published, true), Featured: models.BoolOr(in.Featured, false),
	}
	m.videos = append(m.videos, v)
	return &v, nil
}

func (m *memVideos) Update(ctx context.Context, id int64, patch models.VideoPatch) (*models.Video, error) {
	for i := range m.videos {
		if m.videos[i].ID == id {
			if patch.Title != nil {
				m.videos[i].Title = *patch.Title
			}
			return &m.videos[i], nil
		}
	}
	return nil, nil
}

func (m *memVideos) Delete(_ context.Context, id int64) error { return nil }

type memEbooks struct {
	ebooks []models.Ebook
}

func (m *memEbooks) ListPublished(_ context.Context) ([]models.Ebook, error) {
	out := []models.Ebook{}
	for _, e := range m.ebooks {
		if e.Published {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEbooks) ListAll(_ context.Context) ([]models.Ebook, error) {
	return append([]models.Ebook{}, m.ebooks...), nil
}

func (m *memEbooks) FindByID(_ context.Context, id int64) (*models.Ebook, error) {
	for _, e := range m.ebooks {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *memEbooks) Create(_ context.Context, in models.EbookInput) (*models.Ebook, error) {
	e := models.Ebook{
		ID: int64(len(m.ebooks) + 1), Title: in.Title, Description: in.Description, Image: in.Image,
		DownloadURL: in.DownloadURL, Pages: in.Pages, Published: models.BoolOr(in.Published, true),
	}
	m.ebooks = append(m.ebooks, e)
	return &e, nil
}

func (m *memEbooks) Update(_ context.Context, id int64, patch models.EbookPatch) (*models.Ebook, error) {
	for i := range m.ebooks {
		if m.ebooks[i].ID == id {
			if patch.Pages != nil {
				m.ebooks[i].Pages = *patch.Pages
			}
			return &m.ebooks[i], nil
		}
	}
	return nil, nil
}

func (m *memEbooks) Delete(_ context.Context, id int64) error { return nil }

type memSubscribers struct {
	subs []models.Subscriber
}

func (m *memSubscribers) Subscribe(_ context.Context, email string, name *string) (models.SubscribeResult, error) {
	for _, s := range m.subs {
		if s.Email == email {
			return models.SubscribeResult{Success: false, Error: store.DuplicateSubscriberMessage}, nil
		}
	}
	m.subs = append(m.subs, models.Subscriber{
		ID: int64(len(m.subs) + 1), Email: email, Name: name, Active: true, CreatedAt: baseTime,
	})
	return models.SubscribeResult{Success: true}, nil
}

func (m *memSubscribers) List(_ context.Context, activeOnly bool) ([]models.Subscriber, error) {
	out := []models.Subscriber{}
	for _, s := range m.subs {
		if !activeOnly || s.Active {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memSubscribers) Delete(_ context.Context, id int64) error {
	for i := range m.subs {
		if m.subs[i].ID == id {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			break
		}
	}
	return nil
}

type fixedStats struct {
	stats models.Stats
	err   error
}

func (f fixedStats) Stats(context.Context) (models.Stats, error) { return f.stats, f.err }

// fakeAuth accepts the password "segredo".
type fakeAuth struct {
	logins  int
	logouts int
	err     error
}

func (f *fakeAuth) Login(_ context.Context, w http.ResponseWriter, password, _ string) (auth.LoginResult, error) {
	f.logins++
	if f.err != nil {
		return auth.LoginResult{}, f.err
	}
	if password != "segredo" {
		return auth.LoginResult{Success: false, Error: auth.MsgWrongPassword}, nil
	}
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "sid"})
	return auth.LoginResult{Success: true}, nil
}

func (f *fakeAuth) Logout(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	f.logouts++
	return nil
}

func (f *fakeAuth) TOTPStatus() (auth.TOTPStatus, error) {
	return auth.TOTPStatus{Enabled: false, Secret: "JBSWY3DPEHPK3PXP"}, nil
}

type fakeUploads struct{}

func (fakeUploads) PresignUpload(_ context.Context, filename, contentType string) (*storage.Upload, error) {
	if contentType != "image/png" {
		return nil, storage.ErrContentType
	}
	return &storage.Upload{
		UploadURL: "http://s3.local/bucket/uploads/x.png?X-Amz-Signature=abc",
		PublicURL: "http://s3.local/bucket/uploads/x.png",
		Key:       "uploads/x.png",
	}, nil
}

// --- harness ---

type testEnv struct {
	rpc         *RPC
	posts       *memPosts
	videos      *memVideos
	ebooks      *memEbooks
	subscribers *memSubscribers
	auth        *fakeAuth
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		posts:       &memPosts{},
		videos:      &memVideos{},
		ebooks:      &memEbooks{},
		subscribers: &memSubscribers{},
		auth:        &fakeAuth{},
	}
	env.rpc = NewRPC(Deps{
		Posts:       env.posts,
		Videos:      env.videos,
		Ebooks:      env.ebooks,
		Subscribers: env.subscribers,
		Stats:       fixedStats{stats: models.Stats{Posts: 5, Videos: 10, Ebooks: 3, Subscribers: 25}},
		Auth:        env.auth,
		Uploads:     fakeUploads{},
	})
	return env
}

var adminSession = &session.Data{OpenID: "owner", Role: "admin"}

// call performs one JSON-RPC request. sess may be nil for anonymous calls.
func call(t *testing.T, h http.Handler, sess *session.Data, method string, params any) (Response, *httptest.ResponseRecorder) {
	t.Helper()

	req := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		req["params"] = params
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	return rawCall(t, h, sess, body)
}

func rawCall(t *testing.T, h http.Handler, sess *session.Data, body []byte) (Response, *httptest.ResponseRecorder) {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(body))
	r.RemoteAddr = "192.0.2.10:4000"
	if sess != nil {
		r = r.WithContext(middleware.WithSession(r.Context(), sess))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	require.Equal(t, http.StatusOK, rr.Code, "JSON-RPC always answers 200")

	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "2.0", resp.JSONRPC)
	return resp, rr
}

// decodeResult unmarshals a successful response's result into dst.
func decodeResult(t *testing.T, resp Response, dst any) {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	require.NoError(t, json.Unmarshal(resp.Result, dst))
}

// issuesOf extracts the validation issues from an invalid-params error.
func issuesOf(t *testing.T, resp Response) map[string]string {
	t.Helper()
	require.NotNil(t, resp.Error)
	require.Equal(t, CodeInvalidParams, resp.Error.Code)

	b, err := json.Marshal(resp.Error.Data)
	require.NoError(t, err)
	var issues []Issue
	require.NoError(t, json.Unmarshal(b, &issues))

	out := make(map[string]string, len(issues))
	for _, is := range issues {
		out[is.Field] = is.Message
	}
	return out
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
