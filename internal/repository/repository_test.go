package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	deadlock := &mysql.MySQLError{Number: mysqlDeadlock, Message: "Deadlock found"}
	lockWait := &mysql.MySQLError{Number: mysqlLockWaitTimeout, Message: "Lock wait timeout exceeded"}
	other := &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}

	for _, err := range []error{deadlock, lockWait, fmt.Errorf("exec: %w", deadlock)} {
		got := Classify(err)
		assert.ErrorIs(t, got, ErrConflict)
		var me *mysql.MySQLError
		assert.True(t, errors.As(got, &me), "driver error stays reachable")
	}
	assert.Same(t, other, Classify(other))
	assert.NoError(t, Classify(nil))
	plain := errors.New("boom")
	assert.Equal(t, plain, Classify(plain))
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, isDuplicate(&mysql.MySQLError{Number: mysqlDuplicateEntry}))
	assert.False(t, isDuplicate(&mysql.MySQLError{Number: mysqlDeadlock}))
	assert.False(t, isDuplicate(errors.New("duplicate")))
}

func TestSearchClauses(t *testing.T) {
	cond, args, order := searchClauses(MovieSearchQuery{})
	assert.Equal(t, "1=1", cond)
	assert.Empty(t, args)
	assert.Equal(t, "title ASC, id ASC", order)

	cond, args, order = searchClauses(MovieSearchQuery{Title: "The_50%", GenreID: 3, Sort: "dailyRentalRate", Order: "DESC"})
	assert.Equal(t, "LOWER(title) LIKE ? AND genre_id = ?", cond)
	assert.Equal(t, []any{`the\_50\%%`, uint64(3)}, args)
	assert.Equal(t, "daily_rental_rate DESC, id ASC", order)

	_, _, order = searchClauses(MovieSearchQuery{Sort: "id; DROP TABLE movies"})
	assert.Equal(t, "title ASC, id ASC", order)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", normalizeEmail("  Alice@Example.COM "))
}

type fakeRow struct{ err error }

func (r fakeRow) Scan(...any) error { return r.err }

func TestScanRental_NoRows(t *testing.T) {
	_, err := scanRental(fakeRow{err: sql.ErrNoRows})
	require.ErrorIs(t, err, ErrRentalNotFound)

	boom := errors.New("boom")
	_, err = scanRental(fakeRow{err: boom})
	assert.ErrorIs(t, err, boom)
}
