package repository

import (
	"errors"

	"github.com/lib/pq"
)

// SQLSTATE for unique constraint violations.
const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres duplicate-key
// error. Write paths use it to surface races that slip past the
// read-then-write pre-checks as the same conflict the pre-check raises.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
