package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-api/internal/domain/credit"
	"credit-api/internal/infrastructure/monitoring"
	"credit-api/internal/pkg/apperrors"

	"github.com/google/uuid"
)

const creditColumns = `id, credit_code, credit_value, day_first_installment, number_of_installments, status, customer_id, created_at`

type CreditRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ credit.Repository = (*CreditRepository)(nil)

func NewCreditRepository(db DBPool, logger *slog.Logger) *CreditRepository {
	if db == nil {
		panic("DBPool cannot be nil for CreditRepository")
	}
	return &CreditRepository{db: db, logger: logger.With("component", "CreditRepository")}
}

// Save locks the owning customer row FOR SHARE before inserting, so a
// concurrent delete either waits for this insert or wins and makes it fail.
func (r *CreditRepository) Save(ctx context.Context, cr *credit.Credit) (err error) {
	if cr == nil {
		return fmt.Errorf("%w: credit cannot be nil", apperrors.ErrInvalidArgument)
	}
	defer func(start time.Time) { monitoring.ObserveDBQuery("insert_credit", start, err) }(time.Now())

	logCtx := r.logger.With(
		slog.Int64("customerID", cr.CustomerID),
		slog.String("creditCode", cr.CreditCode.String()),
	)
	logCtx.InfoContext(ctx, "Attempting to insert new credit")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rollback(ctx, tx, logCtx)

	var ownerID int64
	err = tx.QueryRow(ctx, `SELECT id FROM customers WHERE id = $1 FOR SHARE`, cr.CustomerID).Scan(&ownerID)
	if err != nil {
		translated := translateDBError(err, logCtx)
		if errors.Is(translated, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Owning customer not found while locking")
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock customer: %w", translated)
	}

	query := `
        INSERT INTO credits (credit_code, credit_value, day_first_installment, number_of_installments, status, customer_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, created_at`

	err = tx.QueryRow(ctx, query,
		cr.CreditCode,
		cr.CreditValue,
		cr.DayFirstInstallment,
		cr.NumberOfInstallments,
		string(cr.Status),
		cr.CustomerID,
	).Scan(&cr.ID, &cr.CreatedAt)
	if err != nil {
		translated := translateDBError(err, logCtx)
		if errors.Is(translated, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Credit insert rejected by foreign key, customer is gone")
			return apperrors.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to insert credit", slog.Any("error", err))
		return fmt.Errorf("failed to insert credit: %w", translated)
	}

	if err = tx.Commit(ctx); err != nil {
		logCtx.ErrorContext(ctx, "Failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	logCtx.InfoContext(ctx, "Credit inserted successfully", slog.Int64("creditID", cr.ID))
	return nil
}

func (r *CreditRepository) FindAllByCustomerID(ctx context.Context, customerID int64) (_ []*credit.Credit, err error) {
	defer func(start time.Time) { monitoring.ObserveDBQuery("find_credits_by_customer", start, err) }(time.Now())

	logCtx := r.logger.With(slog.Int64("customerID", customerID))
	logCtx.DebugContext(ctx, "Attempting to list credits for customer")

	query := `SELECT ` + creditColumns + ` FROM credits WHERE customer_id = $1 ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query credits", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query credits: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	credits := make([]*credit.Credit, 0)
	for rows.Next() {
		var cr credit.Credit
		var status string
		if err = rows.Scan(
			&cr.ID,
			&cr.CreditCode,
			&cr.CreditValue,
			&cr.DayFirstInstallment,
			&cr.NumberOfInstallments,
			&status,
			&cr.CustomerID,
			&cr.CreatedAt,
		); err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan credit row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan credit row: %w", apperrors.ErrDatabase, err)
		}
		cr.Status = credit.Status(status)
		credits = append(credits, &cr)
	}

	if err = rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating credit rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating credit rows: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Finished listing credits", slog.Int("count", len(credits)))
	return credits, nil
}

func (r *CreditRepository) FindByCreditCode(ctx context.Context, creditCode uuid.UUID) (_ *credit.Credit, err error) {
	defer func(start time.Time) {
		if errors.Is(err, apperrors.ErrNotFound) {
			monitoring.ObserveDBQuery("find_credit_by_code", start, nil)
			return
		}
		monitoring.ObserveDBQuery("find_credit_by_code", start, err)
	}(time.Now())

	logCtx := r.logger.With(slog.String("creditCode", creditCode.String()))

	query := `SELECT ` + creditColumns + ` FROM credits WHERE credit_code = $1`

	var cr credit.Credit
	var status string
	err = r.db.QueryRow(ctx, query, creditCode).Scan(
		&cr.ID,
		&cr.CreditCode,
		&cr.CreditValue,
		&cr.DayFirstInstallment,
		&cr.NumberOfInstallments,
		&status,
		&cr.CustomerID,
		&cr.CreatedAt,
	)
	if err != nil {
		if translated := translateDBError(err, logCtx); errors.Is(translated, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Credit not found")
			return nil, apperrors.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to query/scan credit", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get credit by code: %w", apperrors.ErrDatabase, err)
	}
	cr.Status = credit.Status(status)

	return &cr, nil
}
