// Package validator provides the transaction validation rules shared by the
// HTTP API (through Gin's binding engine) and the ledger engine.
package validator

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "spendtrack/internal/errors"
)

// DateLayout is the calendar date format used throughout the ledger.
const DateLayout = "2006-01-02"

// Amount limits. MaxIntegerDigits matches the decimal(12,2) value column.
const (
	MaxIntegerDigits = 10
	maxScale         = 18
)

var (
	errAmountFormat = errors.New("amount must be a plain decimal number")
	errAmountRange  = errors.New("amount is out of range")
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

// New returns a standalone validator using the `validate` struct tag.
func New() *validator.Validate {
	v := validator.New()
	configure(v)
	return v
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("calendar_date", validateCalendarDate)
	_ = v.RegisterValidation("amount", validateAmount)
	_ = v.RegisterValidation("not_blank", validateNotBlank)
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

// decimalValue lets tags such as `amount` see a decimal.Decimal as its text form.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		if !AmountInRange(d) {
			return "out of range"
		}
		return d.String()
	}
	return nil
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Revenue", "Expense":
		return true
	}
	return false
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func validateAmount(fl validator.FieldLevel) bool {
	_, err := ParseAmount(fl.Field().String())
	return err == nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ParseDecimal parses a plain decimal such as "-12.50". Exponent notation
// and values with more than MaxIntegerDigits integer digits are rejected.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, errAmountFormat
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !AmountInRange(d) {
		return decimal.Zero, errAmountRange
	}
	return d, nil
}

// ParseAmount parses a non-negative decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("amount must not be negative")
	}
	return d, nil
}

// AmountInRange reports whether d fits MaxIntegerDigits integer digits. It
// looks at coefficient and exponent only and never expands a value like
// 1e999999999.
func AmountInRange(d decimal.Decimal) bool {
	if d.Sign() == 0 {
		return true
	}
	exp := int(d.Exponent())
	if exp < -maxScale || exp > MaxIntegerDigits {
		return false
	}
	return d.NumDigits()+exp <= MaxIntegerDigits
}

// FieldErrors converts a validation failure into a per-field report.
// Errors that are not validator.ValidationErrors yield a single entry.
func FieldErrors(err error) []apperrors.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperrors.FieldError{{Field: "body", Message: err.Error()}}
	}

	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return fields
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "not_blank":
		return "is required"
	case "transaction_type":
		return "must be Revenue or Expense"
	case "calendar_date":
		return "must be a date in YYYY-MM-DD format"
	case "amount":
		return "must be a non-negative number with at most 10 integer digits"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
