package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsUniqueViolation reports whether the provided error is a unique constraint
// violation. When constraintName is provided the constraint must match too.
func IsUniqueViolation(err error, constraintName string) bool {
	return matchesViolation(err, pgUniqueViolation, constraintName, "duplicate key value", "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err was raised by a foreign key constraint.
func IsForeignKeyViolation(err error) bool {
	return matchesViolation(err, pgForeignKeyViolation, "", "violates foreign key constraint", "FOREIGN KEY constraint failed")
}

// IsCheckViolation reports whether err was raised by a CHECK constraint.
func IsCheckViolation(err error) bool {
	return matchesViolation(err, pgCheckViolation, "", "violates check constraint", "CHECK constraint failed")
}

func matchesViolation(err error, pgCode, constraintName string, fallbacks ...string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgCode && (constraintName == "" || pgxErr.ConstraintName == constraintName)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgCode && (constraintName == "" || pqErr.Constraint == constraintName)
	}

	msg := err.Error()
	if constraintName != "" && !strings.Contains(msg, constraintName) {
		return false
	}
	for _, fb := range fallbacks {
		if strings.Contains(msg, fb) {
			return true
		}
	}
	return false
}
