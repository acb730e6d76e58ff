package postgres

import (
	"context"
	"credit-api/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = pgerrcode.UniqueViolation
	pgForeignKeyViolation = pgerrcode.ForeignKeyViolation
	pgCheckViolation      = pgerrcode.CheckViolation
	pgStringTooLong       = pgerrcode.StringDataRightTruncationDataException
	pgNumericOutOfRange   = pgerrcode.NumericValueOutOfRange

	constraintCustomerCPF   = "customers_cpf_key"
	constraintCustomerEmail = "customers_email_key"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var errMsgFormat = "%w: %w"

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			switch pgErr.ConstraintName {
			case constraintCustomerCPF:
				return apperrors.NewConflictError("User conflict", "cpf already registered")
			case constraintCustomerEmail:
				return apperrors.NewConflictError("User conflict", "email already registered")
			default:
				return apperrors.NewConflictError("Resource conflict", pgErr.ConstraintName)
			}
		case pgForeignKeyViolation:
			contextLogger.Warn("Database foreign key violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrNotFound, pgErr.ConstraintName)
		case pgCheckViolation, pgStringTooLong, pgNumericOutOfRange:
			contextLogger.Warn("Database rejected value", "code", pgErr.Code, "message", pgErr.Message, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, pgErr.Message)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}

func rollback(ctx context.Context, tx pgx.Tx, logger *slog.Logger) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.ErrorContext(ctx, "Failed to rollback transaction", slog.Any("error", err))
	}
}
