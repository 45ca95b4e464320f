package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	assert.True(t, IsUniqueViolation(dup))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
	assert.False(t, IsUniqueViolation(nil))
}
