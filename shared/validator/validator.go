package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"pms/shared/failure"
	"pms/shared/money"
	"pms/shared/timezone"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

// selfValidator is implemented by nested request values that carry their own rules.
type selfValidator interface {
	Validate() error
}

// registerDateValidation accepts YYYY-MM-DD calendar dates.
func registerDateValidation(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	if str == "" {
		return true
	}

	_, err := timezone.ParseDate(str)

	return err == nil
}

// registerMoneyValidation accepts non-negative amounts with at most two decimals.
func registerMoneyValidation(field val.FieldLevel) bool {
	var amount float64

	switch v := field.Field().Interface().(type) {
	case float64:
		amount = v
	case float32:
		amount = float64(v)
	default:
		return false
	}

	return amount >= 0 && !money.HasSubCentPrecision(amount)
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	err := validate.RegisterValidation("self", func(fl val.FieldLevel) bool {
		if v, ok := fl.Field().Interface().(selfValidator); ok {
			return v.Validate() == nil
		}

		return false
	})
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("empty", func(fl val.FieldLevel) bool {
		return fl.Field().IsZero()
	})
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("date", registerDateValidation)
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("money", registerMoneyValidation)
	if err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
