package credit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Save inserts the credit while holding a share lock on the owning
	// customer. A missing customer surfaces as apperrors.ErrNotFound.
	Save(ctx context.Context, credit *Credit) error

	FindAllByCustomerID(ctx context.Context, customerID int64) ([]*Credit, error)

	FindByCreditCode(ctx context.Context, creditCode uuid.UUID) (*Credit, error)
}
