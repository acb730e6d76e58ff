package handler_test

import (
	"context"
	"credit-api/internal/domain/credit"
	"credit-api/internal/domain/customer"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) CreateCustomer(ctx context.Context, in customer.CreateCustomerInput) (*customer.Customer, error) {
	ret := _m.Called(ctx, in)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) UpdateCustomer(ctx context.Context, customerID int64, in customer.UpdateCustomerInput) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID, in)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	ret := _m.Called(ctx, customerID)
	return ret.Error(0)
}

func (_m *MockCustomerService) Authenticate(ctx context.Context, email, password string) (*customer.Customer, error) {
	ret := _m.Called(ctx, email, password)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

type MockCreditService struct {
	mock.Mock
}

func (_m *MockCreditService) CreateCredit(ctx context.Context, in credit.CreateCreditInput) (*credit.Credit, error) {
	ret := _m.Called(ctx, in)

	var r0 *credit.Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*credit.Credit)
	}
	return r0, ret.Error(1)
}

func (_m *MockCreditService) ListCreditsByCustomer(ctx context.Context, customerID int64) ([]*credit.Credit, error) {
	ret := _m.Called(ctx, customerID)

	var r0 []*credit.Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*credit.Credit)
	}
	return r0, ret.Error(1)
}

func (_m *MockCreditService) FindByCreditCode(ctx context.Context, customerID int64, creditCode string) (*credit.Credit, error) {
	ret := _m.Called(ctx, customerID, creditCode)

	var r0 *credit.Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*credit.Credit)
	}
	return r0, ret.Error(1)
}
