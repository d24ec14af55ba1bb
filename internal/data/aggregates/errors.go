package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// MapError maps infrastructure failures raised inside a write transaction into coded
// errors. Coded errors pass through untouched.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.CodeOf(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.Wrap(apperrors.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Wrap(apperrors.CodeConflict, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.CodeTransaction, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return apperrors.Wrap(apperrors.CodeConflict, op, err) // unique_violation
		case "40001", "40P01", "55P03":
			return apperrors.Wrap(apperrors.CodeConflict, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"),
		strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"):
		return apperrors.Wrap(apperrors.CodeConflict, op, err)
	default:
		return apperrors.Transaction(op, err)
	}
}
