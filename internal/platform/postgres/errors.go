package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/viva-api/internal/store"
)

// PostgreSQL error codes.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// MapError translates driver errors into store sentinel errors. Errors without
// a mapping are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
	case foreignKeyViolationCode:
		return fmt.Errorf("%w: foreign key violation (%s)", store.ErrInvalidEntity, pgErr.ConstraintName)
	case checkViolationCode:
		return fmt.Errorf("%w: check constraint violation (%s)", store.ErrInvalidEntity, pgErr.ConstraintName)
	case notNullViolationCode:
		return fmt.Errorf("%w: not null violation (%s)", store.ErrInvalidEntity, pgErr.ColumnName)
	}
	return err
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// CheckRowsAffected returns notFound when an UPDATE or DELETE touched no rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}
	return nil
}

// wrap maps err and attaches the operation and entity for logging. The
// returned error keeps the sentinel chain intact.
func wrap(op, entity string, err error) error {
	return store.NewStoreError(entity, op, "database operation failed", MapError(err))
}
