package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-api/internal/domain/customer"
	"credit-api/internal/infrastructure/monitoring"
	"credit-api/internal/pkg/apperrors"
)

const customerColumns = `id, first_name, last_name, cpf, income, email, password_hash, zip_code, street, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	if cust.ID == 0 {
		return r.createCustomer(ctx, cust)
	}
	return r.updateCustomer(ctx, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) (err error) {
	defer func(start time.Time) { monitoring.ObserveDBQuery("insert_customer", start, err) }(time.Now())

	r.logger.InfoContext(ctx, "Attempting to insert new customer")

	query := `
        INSERT INTO customers (first_name, last_name, cpf, income, email, password_hash, zip_code, street, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		cust.FirstName,
		cust.LastName,
		cust.CPF,
		cust.Income,
		cust.Email,
		cust.PasswordHash,
		cust.Address.ZipCode,
		cust.Address.Street,
	).Scan(
		&cust.ID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrConflict) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation")
			return translatedErr
		}
		if errors.Is(translatedErr, apperrors.ErrInvalidArgument) {
			r.logger.WarnContext(ctx, "Customer values rejected by the database")
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, cust *customer.Customer) (err error) {
	defer func(start time.Time) { monitoring.ObserveDBQuery("update_customer", start, err) }(time.Now())

	logCtx := r.logger.With(slog.Int64("customerID", cust.ID))
	logCtx.InfoContext(ctx, "Attempting to update customer")

	query := `
        UPDATE customers
        SET first_name = $1,
            last_name = $2,
            income = $3,
            zip_code = $4,
            street = $5,
            updated_at = NOW()
        WHERE id = $6
        RETURNING updated_at`

	err = r.db.QueryRow(ctx, query,
		cust.FirstName,
		cust.LastName,
		cust.Income,
		cust.Address.ZipCode,
		cust.Address.Street,
		cust.ID,
	).Scan(&cust.UpdatedAt)
	if err != nil {
		translatedErr := translateDBError(err, logCtx)
		if errors.Is(translatedErr, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Update matched zero rows, customer likely not found")
			return apperrors.ErrNotFound
		}
		if errors.Is(translatedErr, apperrors.ErrInvalidArgument) {
			logCtx.WarnContext(ctx, "Customer update rejected by the database")
			return translatedErr
		}
		logCtx.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update customer: %w", apperrors.ErrDatabase, err)
	}

	logCtx.InfoContext(ctx, "Customer updated successfully")
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	return r.findOne(ctx, "find_customer_by_id", `SELECT `+customerColumns+` FROM customers WHERE id = $1`, customerID)
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.findOne(ctx, "find_customer_by_email", `SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)
}

func (r *CustomerRepository) findOne(ctx context.Context, queryName, query string, arg any) (_ *customer.Customer, err error) {
	defer func(start time.Time) {
		if errors.Is(err, apperrors.ErrNotFound) {
			monitoring.ObserveDBQuery(queryName, start, nil)
			return
		}
		monitoring.ObserveDBQuery(queryName, start, err)
	}(time.Now())

	logCtx := r.logger.With(slog.String("query", queryName))
	logCtx.DebugContext(ctx, "Attempting to find customer")

	var cust customer.Customer
	err = r.db.QueryRow(ctx, query, arg).Scan(
		&cust.ID,
		&cust.FirstName,
		&cust.LastName,
		&cust.CPF,
		&cust.Income,
		&cust.Email,
		&cust.PasswordHash,
		&cust.Address.ZipCode,
		&cust.Address.Street,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		if translated := translateDBError(err, logCtx); errors.Is(translated, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Customer not found")
			return nil, apperrors.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to query/scan customer", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Customer found successfully", slog.Int64("customerID", cust.ID))
	return &cust, nil
}

// Delete removes the customer's credits and then the customer in one
// transaction. The FK cascade covers any credit inserted by a racing writer.
func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) (removed int64, err error) {
	defer func(start time.Time) { monitoring.ObserveDBQuery("delete_customer", start, err) }(time.Now())

	logCtx := r.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to delete customer")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to begin transaction: %w", apperrors.ErrDatabase, err)
	}
	defer rollback(ctx, tx, logCtx)

	creditsTag, err := tx.Exec(ctx, `DELETE FROM credits WHERE customer_id = $1`, customerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to delete customer credits", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to delete customer credits: %w", apperrors.ErrDatabase, err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM customers WHERE id = $1`, customerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to delete customer: %w", apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "Delete affected zero rows, customer likely not found")
		return 0, apperrors.ErrNotFound
	}

	if err = tx.Commit(ctx); err != nil {
		logCtx.ErrorContext(ctx, "Failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to commit transaction: %w", apperrors.ErrDatabase, err)
	}

	logCtx.InfoContext(ctx, "Customer deleted successfully", slog.Int64("removedCredits", creditsTag.RowsAffected()))
	return creditsTag.RowsAffected(), nil
}
