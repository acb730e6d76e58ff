package validation

import (
	"credit-api/internal/pkg/apperrors"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

const (
	tagCPF      = "cpf"
	tagFuture   = "future"
	tagNotBlank = "notblank"
	tagMoney    = "money"

	// DateLayout is the calendar date format accepted on the wire.
	DateLayout = "2006-01-02"
)

// maxMoney is the largest amount a NUMERIC(15,2) column holds.
var maxMoney = decimal.RequireFromString("9999999999999.99")

// Validator runs struct-tag rules and reports every violation at once.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func New() *Validator {
	return NewWithClock(time.Now)
}

func NewWithClock(now func() time.Time) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}

	v.validate.RegisterTagNameFunc(jsonFieldName)

	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.validate.RegisterValidation(tagCPF, func(fl validator.FieldLevel) bool {
		return IsValidCPF(fl.Field().String())
	})
	_ = v.validate.RegisterValidation(tagNotBlank, validators.NotBlank)
	_ = v.validate.RegisterValidation(tagFuture, v.isFuture)

	return v
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// isFuture accepts a time.Time or a DateLayout string falling after today.
func (v *Validator) isFuture(fl validator.FieldLevel) bool {
	var t time.Time
	switch field := fl.Field().Interface().(type) {
	case time.Time:
		t = field
	case string:
		parsed, err := ParseDate(field)
		if err != nil {
			return false
		}
		t = parsed
	default:
		return false
	}
	return StartOfDay(t).After(StartOfDay(v.now()))
}

// RegisterMoneyFields checks the named *decimal.Decimal fields of sample's
// struct type against the scale and precision of a NUMERIC(15,2) column.
func (v *Validator) RegisterMoneyFields(sample interface{}, fields ...string) {
	v.validate.RegisterStructValidation(func(sl validator.StructLevel) {
		current := sl.Current()
		for _, name := range fields {
			sf, ok := current.Type().FieldByName(name)
			if !ok {
				continue
			}
			d, ok := current.FieldByIndex(sf.Index).Interface().(*decimal.Decimal)
			if !ok || d == nil || FitsMoney(*d) {
				continue
			}
			sl.ReportError(*d, jsonFieldName(sf), sf.Name, tagMoney, "")
		}
	}, sample)
}

// FitsMoney reports whether d has at most two decimal places and thirteen
// integer digits.
func FitsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2)) && d.Abs().LessThanOrEqual(maxMoney)
}

// Struct validates s and returns *apperrors.ValidationErrors when any rule fails.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}

	verr := &apperrors.ValidationErrors{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), message(fe))
	}
	return verr
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " required"
	case "email":
		return "invalid email"
	case tagCPF:
		return "invalid CPF"
	case tagFuture:
		return field + " must be a future date"
	case tagNotBlank:
		return field + " must not be empty"
	case tagMoney:
		return field + " must have at most 2 decimal places and 13 integer digits"
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return field + " must not be empty"
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", field, fe.Tag())
	}
}

// ParseDate reads a DateLayout date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// StartOfDay drops the clock part, keeping the calendar date of t.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddMonths moves t by n calendar months, clamping to the last day of the
// target month instead of overflowing into the next one.
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}
