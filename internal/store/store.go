package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a lookup names a row that does not exist.
var ErrNotFound = errors.New("store: not found")

// List paging bounds shared by the public list endpoints.
const (
	defaultListLimit = 50
	maxListLimit     = 100

	defaultNewsLimit = 20
)

// foreign key violation
const pgFKViolation = "23503"

func isFKViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgFKViolation
}
