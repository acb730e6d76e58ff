package customer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type Address struct {
	ZipCode string `json:"zipCode"`
	Street  string `json:"street"`
}

type Customer struct {
	ID           int64           `json:"id"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	CPF          string          `json:"cpf"`
	Income       decimal.Decimal `json:"income"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Address      Address         `json:"address"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func NewCustomer(in CreateCustomerInput, passwordHash string) *Customer {
	now := time.Now()
	return &Customer{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		CPF:          NormalizeCPF(in.CPF),
		Income:       *in.Income,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: passwordHash,
		Address: Address{
			ZipCode: strings.TrimSpace(in.ZipCode),
			Street:  strings.TrimSpace(in.Street),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyUpdate overwrites only the fields present in in. It reports whether
// anything changed.
func (c *Customer) ApplyUpdate(in UpdateCustomerInput) bool {
	changed := false
	setString := func(dst *string, src *string) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if *dst != v {
			*dst = v
			changed = true
		}
	}

	setString(&c.FirstName, in.FirstName)
	setString(&c.LastName, in.LastName)
	setString(&c.Address.ZipCode, in.ZipCode)
	setString(&c.Address.Street, in.Street)
	if in.Income != nil && !c.Income.Equal(*in.Income) {
		c.Income = *in.Income
		changed = true
	}

	if changed {
		c.UpdatedAt = time.Now()
	}
	return changed
}

func (c *Customer) PasswordMatches(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// NormalizeCPF keeps only the digits of a CPF.
func NormalizeCPF(cpf string) string {
	return strings.NewReplacer(".", "", "-", "", " ", "").Replace(cpf)
}
