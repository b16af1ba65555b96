// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"vivabem/internal/session"
	"vivabem/internal/storage"
	"vivabem/internal/store"
)

// JSON-RPC 2.0 error codes. The -320xx range holds the application codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeUnauthorized   = -32001
	CodeConflict       = -32009
	CodeRateLimited    = -32029
	CodeUnavailable    = -32503
)

// maxBodyBytes caps the size of one RPC request body.
const maxBodyBytes = 1 << 20

// Request is a JSON-RPC 2.0 request. ID is kept raw so it can be echoed
// back exactly as the client sent it.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response carrying either Result or Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object. It also implements error so procedures
// can return it directly.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Issue is one field-level validation failure.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newError(code int, message string, data any) *Error {
	return &Error{Code: code, Message: message, Data: data}
}

func invalidParams(issues ...Issue) *Error {
	return newError(CodeInvalidParams, "Invalid params", issues)
}

var (
	errUnauthorized = newError(CodeUnauthorized, "Não autorizado", nil)
	errRateLimited  = newError(CodeRateLimited, "Muitas tentativas. Tente novamente em instantes.", nil)
	errUnavailable  = newError(CodeUnavailable, "Serviço indisponível", nil)
	errInternal     = newError(CodeInternalError, "Internal error", nil)
)

// conflictIssues maps unique constraints to the field they protect.
var conflictIssues = map[string]Issue{
	"posts_slug_key":                   {Field: "slug", Message: "Já existe um post com este slug"},
	"newsletter_subscribers_email_key": {Field: "email", Message: store.DuplicateSubscriberMessage},
	"users_open_id_key":                {Field: "openId", Message: "Usuário já cadastrado"},
}

// toRPCError maps a procedure error onto the wire taxonomy. The bool is true
// when the error was not classified and should be logged.
func toRPCError(err error) (*Error, bool) {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr, false
	}

	var ce *store.ConstraintError
	if errors.As(err, &ce) {
		data := []Issue{}
		if issue, ok := conflictIssues[ce.Constraint]; ok {
			data = append(data, issue)
		}
		return newError(CodeConflict, "Registro duplicado", data), false
	}

	switch {
	case errors.Is(err, store.ErrUnavailable),
		errors.Is(err, session.ErrNoBackend),
		errors.Is(err, storage.ErrNotConfigured):
		return errUnavailable, false
	case errors.Is(err, storage.ErrContentType):
		return invalidParams(Issue{Field: "contentType", Message: "Tipo de arquivo não suportado"}), false
	}

	return errInternal, true
}

// decodeParams strictly decodes raw params into dst. Absent or null params
// leave dst at its zero value; unknown fields are rejected.
func decodeParams(raw json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return paramsDecodeError(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return invalidParams(Issue{Field: "params", Message: "Parâmetros inválidos"})
	}
	return nil
}

func paramsDecodeError(err error) *Error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "params"
		}
		return invalidParams(Issue{Field: field, Message: "Tipo inválido"})
	}

	const unknownPrefix = "json: unknown field "
	if msg := err.Error(); strings.HasPrefix(msg, unknownPrefix) {
		field := strings.Trim(strings.TrimPrefix(msg, unknownPrefix), `"`)
		return invalidParams(Issue{Field: field, Message: "Campo desconhecido"})
	}

	return invalidParams(Issue{Field: "params", Message: "Parâmetros inválidos"})
}
