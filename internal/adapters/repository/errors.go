package repository

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	queryTimeout = 3 * time.Second

	pgUniqueViolation = "23505"
)

// uniqueViolation reports the violated constraint when err is a Postgres
// unique_violation, from either the pgx or the lib/pq driver.
func uniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return pqErr.Constraint, true
	}

	return "", false
}
