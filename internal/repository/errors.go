package repository

import (
	"errors"
	"fmt"
	"strings"

	"hotelcore/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// translateError maps driver errors onto domain sentinels. Errors that are
// already domain errors pass through unchanged.
func translateError(err error) error {
	if err == nil || isDomainError(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %w", domain.ErrConcurrency, err)
		case "23505":
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		}
		return err
	}

	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}
	if isLockError(err) {
		return fmt.Errorf("%w: %w", domain.ErrConcurrency, err)
	}
	return err
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrInvalidState,
		domain.ErrConflict,
		domain.ErrConcurrency,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}

func isLockError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "deadlock")
}

func notFound(err error, entity string, key any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %v", domain.ErrNotFound, entity, key)
	}
	return translateError(err)
}
