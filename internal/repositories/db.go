package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner is a DBTX that can open transactions.
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrReferenceNotFound = errors.New("referenced record not found")
)

// UniqueViolationError reports which unique field a write collided on.
type UniqueViolationError struct {
	Field      string
	Constraint string
	Err        error
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique violation on %s (%s)", e.Field, e.Constraint)
}

func (e *UniqueViolationError) Unwrap() error { return e.Err }

var constraintFields = map[string]string{
	"users_email_key":            "email",
	"users_username_key":         "username",
	"users_activation_token_key": "activationToken",
	"organizations_label_key":    "label",
	"organizations_domain_key":   "domain",
}

// mapError translates driver errors into repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			field, ok := constraintFields[pgErr.ConstraintName]
			if !ok {
				field = pgErr.ConstraintName
			}
			return &UniqueViolationError{Field: field, Constraint: pgErr.ConstraintName, Err: err}
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrReferenceNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

// IsUniqueViolation reports whether err is a unique violation and on which field.
func IsUniqueViolation(err error) (string, bool) {
	var uv *UniqueViolationError
	if errors.As(err, &uv) {
		return uv.Field, true
	}
	return "", false
}
