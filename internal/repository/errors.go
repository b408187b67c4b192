// Package repository defines the MySQL data access layer.  The sentinel
// errors below let services tell a missing row apart from a failed query
// without inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrRoomNotFound is returned when no room row matches the given id.
	ErrRoomNotFound = errors.New("room not found")
	// ErrBookingNotFound is returned when no booking row matches the given id.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrEmailExists signals a unique key violation on users.email.
	ErrEmailExists = errors.New("email already exists")
)

// isDuplicateKey reports a MySQL 1062 (duplicate entry) error.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []uint64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
