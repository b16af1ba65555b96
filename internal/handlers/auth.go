// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
)

type loginParams struct {
	Password string `json:"password"`
	Code     string `json:"code,omitempty"`
}

type successResult struct {
	Success bool `json:"success"`
}

// registerAuth adds the login, logout and session procedures.
func (h *RPC) registerAuth(ns *namespace) {
	ns.mutation("login", h.authLogin, limited)
	ns.mutation("logout", h.authLogout)
	ns.query("me", h.authMe)
}

// authLogin verifies the admin password (and TOTP code when enabled) and
// starts a session. Wrong credentials come back as {success:false, error}.
func (h *RPC) authLogin(ctx context.Context, c *Call) (any, error) {
	var p loginParams
	if err := decodeParams(c.Params, &p); err != nil {
		return nil, err
	}
	if p.Password == "" {
		return nil, invalidParams(Issue{Field: "password", Message: "Senha é obrigatória"})
	}
	if h.deps.Auth == nil {
		return nil, errUnavailable
	}
	return h.deps.Auth.Login(ctx, c.W, p.Password, p.Code)
}

// authLogout ends the current session. It succeeds without one.
func (h *RPC) authLogout(ctx context.Context, c *Call) (any, error) {
	if h.deps.Auth == nil {
		return successResult{Success: true}, nil
	}
	if err := h.deps.Auth.Logout(ctx, c.W, c.R); err != nil {
		return nil, err
	}
	return successResult{Success: true}, nil
}

// authMe returns the current session, or null.
func (h *RPC) authMe(_ context.Context, c *Call) (any, error) {
	return c.Session, nil
}
