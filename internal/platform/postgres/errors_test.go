package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/viva-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique", pgError(uniqueViolationCode, "users_email_key"), store.ErrDuplicate},
		{"foreign key", pgError(foreignKeyViolationCode, "drills_session_id_fkey"), store.ErrInvalidEntity},
		{"check", pgError(checkViolationCode, "sessions_status_check"), store.ErrInvalidEntity},
		{"not null", pgError(notNullViolationCode, ""), store.ErrInvalidEntity},
		{"wrapped pg error", fmt.Errorf("exec: %w", pgError(uniqueViolationCode, "x")), store.ErrDuplicate},
		{"other", plain, plain},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, MapError(tc.err), tc.want)
		})
	}

	assert.NoError(t, MapError(nil))
	assert.Equal(t, pgError("40001", ""), MapError(pgError("40001", "")), "unmapped codes pass through")
}

func TestMapErrorHidesDriverDetail(t *testing.T) {
	err := MapError(pgError(uniqueViolationCode, "users_email_key"))
	assert.NotContains(t, err.Error(), "violation", "driver message is not repeated")
	assert.Contains(t, err.Error(), "users_email_key")
}

func TestViolationPredicates(t *testing.T) {
	assert.True(t, IsUniqueViolation(pgError(uniqueViolationCode, "")))
	assert.False(t, IsUniqueViolation(errors.New("x")))
	assert.True(t, IsForeignKeyViolation(pgError(foreignKeyViolationCode, "")))
	assert.False(t, IsForeignKeyViolation(nil))
}

func TestCheckRowsAffected(t *testing.T) {
	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrDrillNotFound))
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrDrillNotFound), store.ErrDrillNotFound)
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), nil), store.ErrNotFound)
	assert.Error(t, CheckRowsAffected(nil, nil))
	assert.Error(t, CheckRowsAffected(sqlmock.NewErrorResult(errors.New("no count")), nil))
}
