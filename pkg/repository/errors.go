package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes mapped by Errors.
const (
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeForeignKeyViolation = "23503"
)

// Errors holds the domain errors a package maps database failures onto.
// A nil field leaves the matching failure unchanged.
type Errors struct {
	NotFound  error
	Duplicate error
	Invalid   error
}

// Map translates err: sql.ErrNoRows becomes NotFound, a unique violation
// becomes Duplicate, and a check or foreign key violation becomes Invalid
// naming the constraint. Other errors are returned unchanged.
func (e Errors) Map(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && e.NotFound != nil {
		return e.NotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		if e.Duplicate != nil {
			return e.Duplicate
		}
	case codeCheckViolation, codeForeignKeyViolation:
		if e.Invalid != nil {
			return fmt.Errorf("%w: %s", e.Invalid, pgErr.ConstraintName)
		}
	}
	return err
}

// WithInvalid returns a copy of e that maps constraint violations to invalid.
func (e Errors) WithInvalid(invalid error) Errors {
	e.Invalid = invalid
	return e
}
