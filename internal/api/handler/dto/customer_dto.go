package dto

import (
	"credit-api/internal/domain/customer"

	"github.com/shopspring/decimal"
)

type CreateCustomerRequest struct {
	FirstName string           `json:"firstName" example:"Ana"`
	LastName  string           `json:"lastName" example:"Silva"`
	CPF       string           `json:"cpf" example:"28475934625"`
	Income    *decimal.Decimal `json:"income" swaggertype:"string" example:"1500.00"`
	Email     string           `json:"email" example:"ana@example.com"`
	Password  string           `json:"password" example:"s3cret"`
	ZipCode   string           `json:"zipCode" example:"01001000"`
	Street    string           `json:"street" example:"Rua A"`
}

func (r CreateCustomerRequest) ToInput() customer.CreateCustomerInput {
	return customer.CreateCustomerInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		CPF:       r.CPF,
		Income:    r.Income,
		Email:     r.Email,
		Password:  r.Password,
		ZipCode:   r.ZipCode,
		Street:    r.Street,
	}
}

// UpdateCustomerRequest only carries the fields the caller sent.
type UpdateCustomerRequest struct {
	FirstName *string          `json:"firstName,omitempty"`
	LastName  *string          `json:"lastName,omitempty"`
	Income    *decimal.Decimal `json:"income,omitempty" swaggertype:"string"`
	ZipCode   *string          `json:"zipCode,omitempty"`
	Street    *string          `json:"street,omitempty"`
}

func (r UpdateCustomerRequest) ToInput() customer.UpdateCustomerInput {
	return customer.UpdateCustomerInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Income:    r.Income,
		ZipCode:   r.ZipCode,
		Street:    r.Street,
	}
}

type CustomerResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	CPF       string `json:"cpf"`
	Email     string `json:"email"`
	Income    string `json:"income"`
	ZipCode   string `json:"zipCode"`
	Street    string `json:"street"`
}

func NewCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		CPF:       c.CPF,
		Email:     c.Email,
		Income:    c.Income.StringFixed(2),
		ZipCode:   c.Address.ZipCode,
		Street:    c.Address.Street,
	}
}
