package store

import (
	"errors"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrConflict signals a uniqueness violation. It is permanent for the given
// input: the caller must not retry unchanged.
var ErrConflict = errors.New("already exists")

// ErrNotFound signals a lookup miss where the caller required a row.
var ErrNotFound = errors.New("not found")

// isUniqueViolation reports whether err is the database's own uniqueness
// enforcement firing. Conflicts are detected here rather than pre-checked in
// application code, so concurrent writers are arbitrated by the store.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
