// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Viva Bem na Estrada
// backend. The RPC type serves every JSON-RPC procedure from one endpoint;
// procedures are grouped by namespace (posts, videos, ebooks, newsletter,
// auth, admin) and receive their dependencies through the Deps struct.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"vivabem/internal/auth"
	"vivabem/internal/cache"
	"vivabem/internal/metrics"
	"vivabem/internal/middleware"
	"vivabem/internal/models"
	"vivabem/internal/session"
	"vivabem/internal/storage"
)

// PostStore is the post persistence the procedures need.
type PostStore interface {
	ListPublished(ctx context.Context, limit int) ([]models.Post, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Post, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	FindByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, in models.PostInput) (*models.Post, error)
	Update(ctx context.Context, id int64, patch models.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, id int64) error
}

// VideoStore is the video persistence the procedures need.
type VideoStore interface {
	ListPublished(ctx context.Context, limit int) ([]models.Video, error)
	ListAll(ctx context.Context) ([]models.Video, error)
	Latest(ctx context.Context) (*models.Video, error)
	FindByID(ctx context.Context, id int64) (*models.Video, error)
	Create(ctx context.Context, in models.VideoInput) (*models.Video, error)
	Update(ctx context.Context, id int64, patch models.VideoPatch) (*models.Video, error)
	Delete(ctx context.Context, id int64) error
}

// EbookStore is the ebook persistence the procedures need.
type EbookStore interface {
	ListPublished(ctx context.Context) ([]models.Ebook, error)
	ListAll(ctx context.Context) ([]models.Ebook, error)
	FindByID(ctx context.Context, id int64) (*models.Ebook, error)
	Create(ctx context.Context, in models.EbookInput) (*models.Ebook, error)
	Update(ctx context.Context, id int64, patch models.EbookPatch) (*models.Ebook, error)
	Delete(ctx context.Context, id int64) error
}

// SubscriberStore is the newsletter persistence the procedures need.
type SubscriberStore interface {
	Subscribe(ctx context.Context, email string, name *string) (models.SubscribeResult, error)
	List(ctx context.Context, activeOnly bool) ([]models.Subscriber, error)
	Delete(ctx context.Context, id int64) error
}

// StatsStore computes the dashboard counters.
type StatsStore interface {
	Stats(ctx context.Context) (models.Stats, error)
}

// Authenticator verifies admin credentials and manages the admin session.
type Authenticator interface {
	Login(ctx context.Context, w http.ResponseWriter, password, code string) (auth.LoginResult, error)
	Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error
	TOTPStatus() (auth.TOTPStatus, error)
}

// Uploader presigns direct-to-storage image uploads.
type Uploader interface {
	PresignUpload(ctx context.Context, filename, contentType string) (*storage.Upload, error)
}

// Deps holds everything the procedures use. Cache, Limiter, Uploads and
// Metrics are optional.
type Deps struct {
	Posts       PostStore
	Videos      VideoStore
	Ebooks      EbookStore
	Subscribers SubscriberStore
	Stats       StatsStore
	Auth        Authenticator
	Uploads     Uploader
	Cache       *cache.QueryCache
	Limiter     *middleware.RateLimiter
	Metrics     *metrics.Metrics
}

// Call is one invocation of a procedure.
type Call struct {
	Method  string
	Params  json.RawMessage
	Session *session.Data
	W       http.ResponseWriter
	R       *http.Request
}

// Handler implements one procedure.
type Handler func(ctx context.Context, c *Call) (any, error)

// Guard authorizes a call before its handler runs.
type Guard func(c *Call) error

type kind int

const (
	kindQuery kind = iota
	kindMutation
)

type procedure struct {
	kind        kind
	handle      Handler
	guard       Guard
	cached      bool // result stored in the public query cache
	limited     bool // rate limited per client IP
	invalidates bool // success clears the public query cache
}

type option func(*procedure)

func cached(p *procedure)      { p.cached = true }
func limited(p *procedure)     { p.limited = true }
func invalidates(p *procedure) { p.invalidates = true }

// RPC is the JSON-RPC endpoint.
type RPC struct {
	deps  Deps
	procs map[string]*procedure
}

// NewRPC registers every procedure and returns the endpoint handler.
func NewRPC(deps Deps) *RPC {
	h := &RPC{deps: deps, procs: make(map[string]*procedure)}

	root := &namespace{rpc: h}
	h.registerPublic(root)
	h.registerAuth(root.group("auth"))

	admin := root.group("admin")
	admin.guard = requireAdmin
	h.registerAdmin(admin)

	return h
}

// namespace registers procedures under a dotted prefix. Sub-groups inherit
// the guard.
type namespace struct {
	rpc    *RPC
	prefix string
	guard  Guard
}

func (n *namespace) group(name string) *namespace {
	return &namespace{rpc: n.rpc, prefix: n.name(name), guard: n.guard}
}

func (n *namespace) name(s string) string {
	if n.prefix == "" {
		return s
	}
	return n.prefix + "." + s
}

func (n *namespace) query(name string, h Handler, opts ...option) {
	n.add(name, kindQuery, h, opts)
}

func (n *namespace) mutation(name string, h Handler, opts ...option) {
	n.add(name, kindMutation, h, opts)
}

func (n *namespace) add(name string, k kind, h Handler, opts []option) {
	p := &procedure{kind: k, handle: h, guard: n.guard}
	for _, opt := range opts {
		opt(p)
	}
	full := n.name(name)
	if p.cached && k != kindQuery {
		panic("handlers: only queries can be cached: " + full)
	}
	if _, dup := n.rpc.procs[full]; dup {
		panic("handlers: duplicate procedure " + full)
	}
	n.rpc.procs[full] = p
}

// requireAdmin is the single guard shared by the admin namespace.
func requireAdmin(c *Call) error {
	if !c.Session.IsAdmin() {
		return errUnauthorized
	}
	return nil
}

// Methods returns the registered procedure names, sorted.
func (h *RPC) Methods() []string {
	names := make([]string, 0, len(h.procs))
	for name := range h.procs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ServeHTTP decodes one JSON-RPC request, dispatches it and writes the
// response. Protocol and procedure errors are sent with HTTP 200.
func (h *RPC) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			h.writeError(w, nil, newError(CodeInvalidRequest, "Invalid Request", "request must be a single JSON-RPC object"))
			return
		}
		h.writeError(w, nil, newError(CodeParseError, "Parse error", nil))
		return
	}

	if req.JSONRPC != "2.0" || req.Method == "" {
		h.writeError(w, req.ID, newError(CodeInvalidRequest, "Invalid Request", "jsonrpc must be '2.0' and method is required"))
		return
	}

	proc, ok := h.procs[req.Method]
	if !ok {
		h.writeError(w, req.ID, newError(CodeMethodNotFound, "Method not found", req.Method))
		return
	}

	start := time.Now()
	result, rpcErr := h.dispatch(r.Context(), proc, &Call{
		Method:  req.Method,
		Params:  req.Params,
		Session: middleware.SessionFromCtx(r.Context()),
		W:       w,
		R:       r,
	})

	code := 0
	if rpcErr != nil {
		code = rpcErr.Code
	}
	h.deps.Metrics.RecordRPC(r.Context(), req.Method, code, time.Since(start))

	if rpcErr != nil {
		h.writeError(w, req.ID, rpcErr)
		return
	}
	h.write(w, Response{JSONRPC: "2.0", ID: req.ID, Result: result})
}

func (h *RPC) dispatch(ctx context.Context, proc *procedure, c *Call) (json.RawMessage, *Error) {
	if proc.guard != nil {
		if err := proc.guard(c); err != nil {
			rpcErr, _ := toRPCError(err)
			return nil, rpcErr
		}
	}

	if proc.limited && h.deps.Limiter != nil {
		if !h.deps.Limiter.Allow(h.deps.Limiter.ClientIP(c.R) + ":" + c.Method) {
			h.deps.Metrics.RecordRateLimited(ctx, c.Method)
			return nil, errRateLimited
		}
	}

	// The generation is read before the handler so a result that raced
	// with an invalidation lands under a key no later call uses.
	var key string
	var cacheable bool
	if proc.cached {
		key, cacheable = h.deps.Cache.Versioned(ctx, cache.Key(c.Method, c.Params))
		if cacheable {
			if b, ok := h.deps.Cache.Get(ctx, c.Method, key); ok {
				return b, nil
			}
		}
	}

	result, err := proc.handle(ctx, c)
	if err != nil {
		rpcErr, unexpected := toRPCError(err)
		if unexpected {
			zap.S().Errorw("rpc procedure failed",
				"method", c.Method,
				"error", err,
				"request_id", middleware.RequestIDFromCtx(ctx),
			)
		}
		return nil, rpcErr
	}

	b, err := json.Marshal(result)
	if err != nil {
		zap.S().Errorw("rpc result encoding failed", "method", c.Method, "error", err)
		return nil, errInternal
	}

	if cacheable {
		h.deps.Cache.Set(ctx, key, b)
	}
	if proc.invalidates {
		h.deps.Cache.InvalidateAll(ctx)
	}

	return b, nil
}

func (h *RPC) writeError(w http.ResponseWriter, id json.RawMessage, rpcErr *Error) {
	h.write(w, Response{JSONRPC: "2.0", ID: id, Error: rpcErr})
}

func (h *RPC) write(w http.ResponseWriter, resp Response) {
	if len(resp.ID) == 0 {
		resp.ID = json.RawMessage("null")
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zap.S().Warnw("rpc response write failed", "error", err)
	}
}
