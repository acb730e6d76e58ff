package dto

import (
	"credit-api/internal/domain/credit"
	"strings"

	"github.com/shopspring/decimal"
)

type CreateCreditRequest struct {
	CreditValue          *decimal.Decimal `json:"creditValue" swaggertype:"string" example:"5000.00"`
	DayFirstInstallment  string           `json:"dayFirstInstallment" example:"2026-12-01"`
	NumberOfInstallments int              `json:"numberOfInstallments" example:"12"`
	CustomerID           int64            `json:"customerId" example:"1"`
}

func (r CreateCreditRequest) ToInput() credit.CreateCreditInput {
	return credit.CreateCreditInput{
		CreditValue:          r.CreditValue,
		DayFirstInstallment:  strings.TrimSpace(r.DayFirstInstallment),
		NumberOfInstallments: r.NumberOfInstallments,
		CustomerID:           r.CustomerID,
	}
}

type CreditResponse struct {
	CreditCode           string `json:"creditCode"`
	CreditValue          string `json:"creditValue"`
	NumberOfInstallments int    `json:"numberOfInstallments"`
}

func NewCreditResponse(c *credit.Credit) CreditResponse {
	return CreditResponse{
		CreditCode:           c.CreditCode.String(),
		CreditValue:          c.CreditValue.StringFixed(2),
		NumberOfInstallments: c.NumberOfInstallments,
	}
}

func NewCreditListResponse(credits []*credit.Credit) []CreditResponse {
	resp := make([]CreditResponse, 0, len(credits))
	for _, c := range credits {
		resp = append(resp, NewCreditResponse(c))
	}
	return resp
}
