package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, true},
		{"mysql lock wait timeout", &mysql.MySQLError{Number: 1205}, true},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, false},
		{"wrapped mysql deadlock", fmt.Errorf("reserving: %w", &mysql.MySQLError{Number: 1213}), true},
		{"pgx deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, true},
		{"pgx serialization", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, true},
		{"pgx unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, false},
		{"pq deadlock", &pq.Error{Code: "40P01"}, true},
		{"pq serialization", &pq.Error{Code: "40001"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&mysql.MySQLError{Number: 1062}))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&mysql.MySQLError{Number: 1213}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestDialectHelpers(t *testing.T) {
	assert.Equal(t, "mysql", Dialect(DriverMySQL))
	assert.Equal(t, "postgres", Dialect(DriverPGX))
	assert.Equal(t, "postgres", Dialect(DriverPostgres))
	assert.Equal(t, "sqlite", Dialect(DriverSQLite))

	assert.Equal(t, " FOR UPDATE", ForUpdate(DriverMySQL))
	assert.Equal(t, " FOR UPDATE", ForUpdate(DriverPGX))
	assert.Equal(t, "", ForUpdate(DriverSQLite))

	assert.Nil(t, TxOptions(DriverSQLite))
	assert.NotNil(t, TxOptions(DriverMySQL))
}
