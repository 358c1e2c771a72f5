package database_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"gocabin/internal/pkg/database"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, database.IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, database.IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, database.IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, database.IsUniqueViolation(errors.New("boom")))
}

func TestIsUnavailable(t *testing.T) {
	assert.True(t, database.IsUnavailable(driver.ErrBadConn))
	assert.True(t, database.IsUnavailable(sql.ErrConnDone))
	assert.True(t, database.IsUnavailable(context.DeadlineExceeded))
	assert.True(t, database.IsUnavailable(&pq.Error{Code: "57P01"}))
	assert.True(t, database.IsUnavailable(&pq.Error{Code: "08001"}))
	assert.False(t, database.IsUnavailable(&pq.Error{Code: "23505"}))
	assert.False(t, database.IsUnavailable(sql.ErrNoRows))
	assert.False(t, database.IsUnavailable(nil))
}
