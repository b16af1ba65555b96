// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth implements the admin gate: a single owner password verified
// on the server against a bcrypt hash, an optional TOTP second factor, and
// Valkey-backed sessions.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"vivabem/internal/metrics"
	"vivabem/internal/models"
	"vivabem/internal/session"
	"vivabem/internal/store"
)

// User-facing login messages.
const (
	MsgWrongPassword = "Senha incorreta."
	MsgWrongCode     = "Código de verificação inválido."
	MsgNotConfigured = "Acesso administrativo não configurado."
)

// LoginPath is the admin page anonymous visitors are sent to.
const LoginPath = "/admin/login"

const totpIssuer = "Viva Bem na Estrada"

// Sessions is the subset of the session store the gate needs.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Users records owner sign-ins.
type Users interface {
	Upsert(ctx context.Context, u models.User) (*models.User, error)
}

// Options configure a Gate. PasswordHash wins over Password when both are set.
type Options struct {
	Password     string
	PasswordHash string
	TOTPSecret   string
	OwnerOpenID  string
	LoginDelay   time.Duration
	Metrics      *metrics.Metrics
}

// LoginResult is returned to the client for every login attempt.
type LoginResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// TOTPStatus describes the second factor. When it is disabled, Secret and
// QRCode carry a freshly generated secret the owner can configure.
type TOTPStatus struct {
	Enabled bool   `json:"enabled"`
	Secret  string `json:"secret,omitempty"`
	QRCode  string `json:"qrCode,omitempty"` // data:image/png;base64 URL
}

// Gate verifies the owner credential and manages admin sessions.
type Gate struct {
	hash        []byte
	totpSecret  string
	ownerOpenID string
	delay       time.Duration
	sessions    Sessions
	users       Users
	metrics     *metrics.Metrics
}

// New builds a Gate. A plaintext password is hashed here and not retained.
// With neither a password nor a hash configured every login fails.
func New(opts Options, sessions Sessions, users Users) (*Gate, error) {
	g := &Gate{
		totpSecret:  strings.ToUpper(strings.ReplaceAll(opts.TOTPSecret, " ", "")),
		ownerOpenID: opts.OwnerOpenID,
		delay:       opts.LoginDelay,
		sessions:    sessions,
		users:       users,
		metrics:     opts.Metrics,
	}
	if g.ownerOpenID == "" {
		g.ownerOpenID = "owner"
	}

	switch {
	case opts.PasswordHash != "":
		if _, err := bcrypt.Cost([]byte(opts.PasswordHash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		g.hash = []byte(opts.PasswordHash)
	case opts.Password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		g.hash = hash
	default:
		zap.S().Warn("no admin credential configured, admin login is disabled")
	}

	return g, nil
}

// TOTPEnabled reports whether a second factor is required.
func (g *Gate) TOTPEnabled() bool {
	return g.totpSecret != ""
}

// Login checks password (and code when TOTP is enabled). Every attempt waits
// the configured delay first. On success a session is created and its cookie
// set on w. A wrong credential is a failed result, not an error.
func (g *Gate) Login(ctx context.Context, w http.ResponseWriter, password, code string) (LoginResult, error) {
	if err := sleepCtx(ctx, g.delay); err != nil {
		return LoginResult{}, err
	}

	if g.hash == nil {
		g.metrics.RecordLogin(ctx, "not_configured")
		return LoginResult{Success: false, Error: MsgNotConfigured}, nil
	}

	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		g.metrics.RecordLogin(ctx, "bad_password")
		zap.S().Infow("admin login failed", "reason", "password")
		return LoginResult{Success: false, Error: MsgWrongPassword}, nil
	}

	if g.TOTPEnabled() && !totp.Validate(strings.TrimSpace(code), g.totpSecret) {
		g.metrics.RecordLogin(ctx, "bad_code")
		zap.S().Infow("admin login failed", "reason", "totp")
		return LoginResult{Success: false, Error: MsgWrongCode}, nil
	}

	if _, err := g.sessions.Create(ctx, w, &session.Data{
		OpenID: g.ownerOpenID,
		Role:   string(models.RoleAdmin),
	}); err != nil {
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}

	g.recordSignIn(ctx)
	g.metrics.RecordLogin(ctx, "success")
	zap.S().Infow("admin signed in", "open_id", g.ownerOpenID)

	return LoginResult{Success: true}, nil
}

// recordSignIn upserts the owner in users. Failures are logged only: the
// session is already valid.
func (g *Gate) recordSignIn(ctx context.Context) {
	if g.users == nil {
		return
	}
	method := "password"
	if g.TOTPEnabled() {
		method = "password+totp"
	}
	_, err := g.users.Upsert(ctx, models.User{
		OpenID:      g.ownerOpenID,
		LoginMethod: &method,
		Role:        models.RoleAdmin,
	})
	if err != nil && !errors.Is(err, store.ErrUnavailable) {
		zap.S().Warnw("record admin sign-in failed", "error", err)
	}
}

// Logout removes the server-side session and expires the cookie.
func (g *Gate) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := g.sessions.Destroy(ctx, w, r); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// TOTPStatus reports the second-factor state. When enabled, QRCode encodes
// the configured secret for re-enrolling a device; when disabled a new secret
// is proposed.
func (g *Gate) TOTPStatus() (TOTPStatus, error) {
	if g.TOTPEnabled() {
		qr, err := qrDataURL(otpauthURL(g.totpSecret, g.ownerOpenID))
		if err != nil {
			return TOTPStatus{}, err
		}
		return TOTPStatus{Enabled: true, QRCode: qr}, nil
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: g.ownerOpenID,
	})
	if err != nil {
		return TOTPStatus{}, fmt.Errorf("totp generate: %w", err)
	}
	qr, err := qrDataURL(key.URL())
	if err != nil {
		return TOTPStatus{}, err
	}
	return TOTPStatus{Enabled: false, Secret: key.Secret(), QRCode: qr}, nil
}

func otpauthURL(secret, account string) string {
	u := url.URL{
		Scheme: "otpauth",
		Host:   "totp",
		Path:   "/" + totpIssuer + ":" + account,
	}
	q := url.Values{}
	q.Set("secret", secret)
	q.Set("issuer", totpIssuer)
	u.RawQuery = q.Encode()
	return u.String()
}

func qrDataURL(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Redirect decides where an admin page request goes. Any path under /admin
// other than the login page itself is sent to the login page when the
// visitor has no session.
func Redirect(path string, authenticated bool) (string, bool) {
	if authenticated || !IsAdminPath(path) || path == LoginPath {
		return "", false
	}
	return LoginPath, true
}

// IsAdminPath reports whether path is /admin or below it.
func IsAdminPath(path string) bool {
	return path == "/admin" || strings.HasPrefix(path, "/admin/")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
