package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
)

// MapError classifies persistence failures into domain error codes so callers
// can tell not-found from conflict from plain infrastructure failure.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*packages.Error); ok {
		return err
	}
	var subErr *packages.SubmissionError
	if errors.As(err, &subErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return packages.Wrap(packages.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return packages.Wrap(packages.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return packages.Wrap(packages.CodeConflict, op, err) // unique_violation
		case "23503":
			return packages.Wrap(packages.CodePreconditionFailed, op, err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return packages.Wrap(packages.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "already exists"):
		return packages.Wrap(packages.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "timeout"):
		return packages.Wrap(packages.CodeRetryable, op, err)
	default:
		return packages.Wrap(packages.CodeInternal, op, err)
	}
}
