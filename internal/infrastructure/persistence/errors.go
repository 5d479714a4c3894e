package persistence

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes the repositories interpret
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || pgCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) || pgCode(err) == pgForeignKeyViolation
}

// IsTransientConflict reports whether PostgreSQL aborted the transaction
// because of a serialization failure or deadlock
func IsTransientConflict(err error) bool {
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}

// storageError maps driver errors to the domain taxonomy. Unique violations
// become DUPLICATE_KEY with the given message; everything else is wrapped
// as a StorageError for op.
func storageError(op string, err error, duplicateMsg string) error {
	if err == nil {
		return nil
	}
	if isDuplicateKey(err) && duplicateMsg != "" {
		return shared.NewDomainError(shared.CodeDuplicateKey, duplicateMsg)
	}
	return shared.WrapStorage(op, err)
}
