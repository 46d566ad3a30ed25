package repository

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a lookup matches no document in the clinic.
	ErrNotFound = errors.New("document not found")
	// ErrWriteConflict is returned when a concurrent transaction won the same document
	// or a unique index rejected the write.
	ErrWriteConflict = errors.New("write conflict")
)

const writeConflictCode = 112

// MapError converts driver errors into the repository sentinels, keeping the cause.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if IsWriteConflict(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrWriteConflict, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// IsWriteConflict reports duplicate keys, write conflicts and transient transaction errors.
func IsWriteConflict(err error) bool {
	if errors.Is(err, ErrWriteConflict) || mongo.IsDuplicateKeyError(err) {
		return true
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorCode(writeConflictCode) || se.HasErrorLabel("TransientTransactionError")
	}
	return false
}
