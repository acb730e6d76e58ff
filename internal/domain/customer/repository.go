package customer

import (
	"context"
	"credit-api/internal/pkg/apperrors"
)

var ErrNotFound = &apperrors.AppError{
	Code:    apperrors.CodeUserNotFound,
	Message: "User not found.",
	Cause:   apperrors.ErrNotFound,
}

type CustomerRepository interface {
	// Save inserts when ID is zero and updates otherwise. Unique violations
	// on cpf or email surface as apperrors.ErrConflict.
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// Delete removes the customer together with its credits and returns how
	// many credits went with it.
	Delete(ctx context.Context, customerID int64) (int64, error)
}
