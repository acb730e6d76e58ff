package credit

import (
	"context"
	"credit-api/internal/domain/customer"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestFirstInstallmentLimitUsesCalendarMonths(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2026, time.November, 30, 18, 0, 0, 0, time.UTC) }
	value := decimal.NewFromInt(100)

	for _, tc := range []struct {
		day string
		ok  bool
	}{
		{"2027-02-28", true},
		{"2027-03-01", false},
		{"2026-12-01", true},
	} {
		repo := new(MockRepository)
		customers := new(MockCustomerService)
		customers.On("GetCustomer", ctx, int64(1)).Return(&customer.Customer{ID: 1}, nil).Maybe()
		repo.On("Save", ctx, mock.Anything).Return(nil).Maybe()

		svc := newCreditService(repo, customers, nil, clock, slog.New(slog.NewTextHandler(io.Discard, nil)))
		_, err := svc.CreateCredit(ctx, CreateCreditInput{
			CreditValue:          &value,
			DayFirstInstallment:  tc.day,
			NumberOfInstallments: 1,
			CustomerID:           1,
		})

		if tc.ok {
			assert.NoError(t, err, tc.day)
		} else {
			assert.Equal(t, ErrInvalidDate, err, tc.day)
		}
	}
}
