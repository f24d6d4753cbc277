// Package repository holds the MySQL data access layer.  The sentinel errors
// below let higher layers tell a normal miss apart from a storage fault:
// every lookup returns one of the ErrXNotFound values when no row matches
// and wraps anything else with the failing operation.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrTokenNotFound   = errors.New("access token not found")
	ErrProductNotFound = errors.New("product not found")

	ErrEmailExists   = errors.New("email already exists")
	ErrProductExists = errors.New("product id already exists")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
