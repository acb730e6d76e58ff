package credit

import (
	"context"
	"credit-api/internal/domain/customer"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) Save(ctx context.Context, credit *Credit) error {
	ret := _m.Called(ctx, credit)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *Credit) error); ok {
		r0 = rf(ctx, credit)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockRepository) FindAllByCustomerID(ctx context.Context, customerID int64) ([]*Credit, error) {
	ret := _m.Called(ctx, customerID)

	var r0 []*Credit
	if rf, ok := ret.Get(0).(func(context.Context, int64) []*Credit); ok {
		r0 = rf(ctx, customerID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*Credit)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int64) error); ok {
		r1 = rf(ctx, customerID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) FindByCreditCode(ctx context.Context, creditCode uuid.UUID) (*Credit, error) {
	ret := _m.Called(ctx, creditCode)

	var r0 *Credit
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *Credit); ok {
		r0 = rf(ctx, creditCode)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Credit)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, creditCode)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

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

var (
	_ Repository               = (*MockRepository)(nil)
	_ customer.CustomerService = (*MockCustomerService)(nil)
)
