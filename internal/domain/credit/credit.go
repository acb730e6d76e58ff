package credit

import (
	"credit-api/internal/domain/customer"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinInstallments = 1
	MaxInstallments = 48

	// MaxMonthsToFirstInstallment bounds how far ahead the first installment may be scheduled.
	MaxMonthsToFirstInstallment = 3
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusApproved   Status = "APPROVED"
	StatusReject     Status = "REJECT"
)

func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusApproved, StatusReject:
		return true
	}
	return false
}

type Credit struct {
	ID                   int64
	CreditCode           uuid.UUID
	CreditValue          decimal.Decimal
	DayFirstInstallment  time.Time
	NumberOfInstallments int
	Status               Status
	CustomerID           int64
	Customer             *customer.Customer
	CreatedAt            time.Time
}

func NewCredit(in CreateCreditInput, dayFirstInstallment time.Time) *Credit {
	return &Credit{
		CreditCode:           uuid.New(),
		CreditValue:          *in.CreditValue,
		DayFirstInstallment:  dayFirstInstallment,
		NumberOfInstallments: in.NumberOfInstallments,
		Status:               StatusInProgress,
		CustomerID:           in.CustomerID,
		CreatedAt:            time.Now(),
	}
}

func (c *Credit) OwnedBy(customerID int64) bool {
	return c.CustomerID == customerID
}
