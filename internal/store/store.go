// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for the site's posts,
// videos, ebooks, newsletter subscribers and users. Each store struct wraps
// an injected *sql.DB and exposes typed, context-aware query methods.
//
// A store built with a nil *sql.DB represents storage that is not
// configured: reads return empty results and writes return ErrUnavailable.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUnavailable is returned by writes when no database is configured.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrConstraint matches any unique-constraint violation.
	ErrConstraint = errors.New("constraint violation")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// ConstraintError reports which constraint a write violated.
// errors.Is(err, ErrConstraint) holds for every ConstraintError.
type ConstraintError struct {
	Op         string
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: constraint %s violated", e.Op, e.Constraint)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraint }

// classify wraps a backend error with the operation name, turning unique
// violations into *ConstraintError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &ConstraintError{Op: op, Constraint: pgErr.ConstraintName, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// limitArg maps a non-positive limit to NULL, which Postgres treats as
// "no limit".
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

// setList accumulates the SET clause of a partial UPDATE.
type setList struct {
	cols []string
	args []any
}

func (s *setList) add(col string, v any) {
	s.args = append(s.args, v)
	s.cols = append(s.cols, fmt.Sprintf("%s = $%d", col, len(s.args)))
}

// setIf adds col when v is non-nil.
func setIf[T any](s *setList, col string, v *T) {
	if v != nil {
		s.add(col, *v)
	}
}

// setNullable adds col when v is non-nil, writing NULL for a blank string
// so that clearing an optional field stores the same value a create would.
func setNullable(s *setList, col string, v *string) {
	if v == nil {
		return
	}
	if strings.TrimSpace(*v) == "" {
		s.add(col, nil)
		return
	}
	s.add(col, *v)
}

// updateSQL renders "UPDATE table SET ..., updated_at = NOW() WHERE id = $n
// RETURNING returning" and the matching argument list.
func (s *setList) updateSQL(table string, id int64, returning string) (string, []any) {
	args := append(s.args, id)
	q := "UPDATE " + table + " SET "
	for _, c := range s.cols {
		q += c + ", "
	}
	q += fmt.Sprintf("updated_at = NOW() WHERE id = $%d RETURNING %s", len(args), returning)
	return q, args
}
