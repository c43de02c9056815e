package database

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ErrRecordNotFound is returned by lookups that match no row.
var ErrRecordNotFound = errors.New("record not found")

// mysqlRowIsReferenced is ER_ROW_IS_REFERENCED_2.
const mysqlRowIsReferenced = 1451

// ReferentialIntegrityError reports a delete blocked because other rows still
// reference the target row.
type ReferentialIntegrityError struct {
	Table string
	ID    uint
	Cause error
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %d is still referenced: %v", e.Table, e.ID, e.Cause)
}

func (e *ReferentialIntegrityError) Unwrap() error {
	return e.Cause
}

// isForeignKeyViolation inspects typed driver errors. gorm translates them when
// TranslateError is set; the raw driver errors are checked for sessions that
// did not opt in.
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlRowIsReferenced {
		return true
	}

	return false
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}
