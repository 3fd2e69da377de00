package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm", gorm.ErrDuplicatedKey, true},
		{"pgconn", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"pgconn other", &pgconn.PgError{Code: "23503"}, false},
		{"lib/pq", &pq.Error{Code: "23505"}, true},
		{"mysql", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"sqlite text", errors.New("constraint failed: UNIQUE constraint failed: fee_challans.challan_no (2067)"), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}
