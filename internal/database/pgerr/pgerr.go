// Package pgerr classifies Postgres driver errors.
package pgerr

import (
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeInvalidText          = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeAdminShutdown        = "57P01"
)

func code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

func IsUniqueViolation(err error) bool {
	return code(err) == codeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return code(err) == codeForeignKeyViolation
}

func IsInvalidText(err error) bool {
	return code(err) == codeInvalidText
}

// IsTransient reports whether retrying the whole transaction may succeed.
func IsTransient(err error) bool {
	switch code(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeAdminShutdown:
		return true
	}

	if errors.Is(err, driver.ErrBadConn) || pgconn.SafeToRetry(err) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}
