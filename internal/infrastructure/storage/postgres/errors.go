package postgres

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"docserial/internal/core/apperror"
)

// SQLSTATE codes the allocator cares about.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03" // lock_timeout, NOWAIT
	codeQueryCanceled        = "57014" // statement_timeout
	codeUndefinedTable       = "42P01"
	codeUndefinedColumn      = "42703"
	codeInvalidSchemaName    = "3F000"
)

// ClassifyError maps driver errors onto the apperror taxonomy:
// lock waits, deadlocks and serialization conflicts become TRANSIENT_STORAGE_ERROR,
// everything else coming from PostgreSQL or the network becomes STORAGE_UNAVAILABLE.
// AppErrors and context errors are returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
			return apperror.NewTransientStorage(err)
		case codeUndefinedTable, codeUndefinedColumn, codeInvalidSchemaName:
			return apperror.NewStorageUnavailable(err).
				WithDetail("sqlstate", pgErr.Code).
				WithDetail("object", pgErr.Message)
		default:
			return apperror.NewStorageUnavailable(err).WithDetail("sqlstate", pgErr.Code)
		}
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) {
		return apperror.NewStorageUnavailable(err)
	}

	return err
}
