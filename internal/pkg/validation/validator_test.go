package validation

import (
	"credit-api/internal/pkg/apperrors"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string           `json:"name" validate:"required"`
	Email  string           `json:"email" validate:"required,email"`
	CPF    string           `json:"cpf" validate:"required,cpf"`
	Income *decimal.Decimal `json:"income" validate:"required,gte=0"`
	Count  int              `json:"count" validate:"min=1,max=48"`
	Day    time.Time        `json:"day" validate:"required,future"`
	Nick   *string          `json:"nick" validate:"omitnil,min=1"`
}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)
}

func validSample() sample {
	income := decimal.NewFromInt(1000)
	return sample{
		Name:   "Ana",
		Email:  "ana@example.com",
		CPF:    "284.759.346-25",
		Income: &income,
		Count:  12,
		Day:    time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC),
	}
}

func violations(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *apperrors.ValidationErrors
	require.True(t, errors.As(err, &verr), "expected ValidationErrors, got %v", err)
	out := make(map[string]string, len(verr.Violations))
	for _, v := range verr.Violations {
		out[v.Field] = v.Message
	}
	return out
}

func TestStructAcceptsValidInput(t *testing.T) {
	v := NewWithClock(fixedClock)
	assert.NoError(t, v.Struct(validSample()))
}

func TestStructReportsEveryViolation(t *testing.T) {
	v := NewWithClock(fixedClock)
	negative := decimal.NewFromInt(-1)
	empty := ""

	s := sample{
		Email:  "not-an-email",
		CPF:    "11111111111",
		Income: &negative,
		Count:  49,
		Day:    time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		Nick:   &empty,
	}

	err := v.Struct(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	got := violations(t, err)
	assert.Equal(t, "name required", got["name"])
	assert.Equal(t, "invalid email", got["email"])
	assert.Equal(t, "invalid CPF", got["cpf"])
	assert.Equal(t, "income must be greater than or equal to 0", got["income"])
	assert.Equal(t, "count must be less than or equal to 48", got["count"])
	assert.Equal(t, "day must be a future date", got["day"])
	assert.Equal(t, "nick must not be empty", got["nick"])
	assert.Len(t, got, 7)
}

func TestStructMissingPointerIsRequired(t *testing.T) {
	v := NewWithClock(fixedClock)
	s := validSample()
	s.Income = nil
	got := violations(t, v.Struct(s))
	assert.Equal(t, "income required", got["income"])
}

func TestInstallmentBoundaries(t *testing.T) {
	v := NewWithClock(fixedClock)
	for _, tc := range []struct {
		count int
		ok    bool
	}{{0, false}, {1, true}, {48, true}, {49, false}} {
		s := validSample()
		s.Count = tc.count
		err := v.Struct(s)
		if tc.ok {
			assert.NoError(t, err, "count %d", tc.count)
		} else {
			assert.Error(t, err, "count %d", tc.count)
		}
	}
}

type ledgerEntry struct {
	Label  *string          `json:"label" validate:"omitnil,notblank,max=5"`
	Code   string           `json:"code" validate:"required,notblank,max=3"`
	Amount *decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Due    string           `json:"due" validate:"required,datetime=2006-01-02,future"`
}

func TestStructStringAndDateRules(t *testing.T) {
	v := NewWithClock(fixedClock)
	v.RegisterMoneyFields(ledgerEntry{}, "Amount")
	blank := " \t "
	amount := decimal.RequireFromString("12.50")

	assert.NoError(t, v.Struct(ledgerEntry{Code: "abc", Amount: &amount, Due: "2026-03-11"}))

	got := violations(t, v.Struct(ledgerEntry{Label: &blank, Code: "   ", Amount: &amount, Due: "11/03/2026"}))
	assert.Equal(t, map[string]string{
		"label": "label must not be empty",
		"code":  "code must not be empty",
		"due":   "due must be a date in YYYY-MM-DD format",
	}, got)

	long := "toolong"
	got = violations(t, v.Struct(ledgerEntry{Label: &long, Code: "abcd", Amount: &amount, Due: "2026-03-10"}))
	assert.Equal(t, map[string]string{
		"label": "label must be at most 5 characters",
		"code":  "code must be at most 3 characters",
		"due":   "due must be a future date",
	}, got)
}

func TestRegisterMoneyFields(t *testing.T) {
	v := NewWithClock(fixedClock)
	v.RegisterMoneyFields(ledgerEntry{}, "Amount")

	for _, tc := range []struct {
		amount string
		ok     bool
	}{
		{"0.01", true},
		{"9999999999999.99", true},
		{"12.50", true},
		{"0.001", false},
		{"12.345", false},
		{"10000000000000", false},
	} {
		amount := decimal.RequireFromString(tc.amount)
		err := v.Struct(ledgerEntry{Code: "abc", Amount: &amount, Due: "2026-03-11"})
		if tc.ok {
			assert.NoError(t, err, tc.amount)
			continue
		}
		got := violations(t, err)
		assert.Equal(t, map[string]string{
			"amount": "amount must have at most 2 decimal places and 13 integer digits",
		}, got, tc.amount)
	}
}

func TestFitsMoney(t *testing.T) {
	assert.True(t, FitsMoney(decimal.RequireFromString("-9999999999999.99")))
	assert.True(t, FitsMoney(decimal.RequireFromString("1.10")))
	assert.False(t, FitsMoney(decimal.RequireFromString("1.105")))
}

func TestIsValidCPF(t *testing.T) {
	assert.True(t, IsValidCPF("28475934625"))
	assert.True(t, IsValidCPF("123.456.789-09"))
	assert.False(t, IsValidCPF("28475934626"))
	assert.False(t, IsValidCPF("11111111111"))
	assert.False(t, IsValidCPF("1234567890"))
	assert.False(t, IsValidCPF("abcdefghijk"))
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	nov30 := time.Date(2026, time.November, 30, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2027, time.February, 28, 0, 0, 0, 0, time.UTC), AddMonths(nov30, 3))

	jan15 := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC), AddMonths(jan15, 3))
}
