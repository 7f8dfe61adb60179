package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const strongPasswordTag = "strongpwd"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(
		func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		},
	)

	if err := v.RegisterValidation(strongPasswordTag, StrongPassword); err != nil {
		panic(err)
	}
	return v
}

// Struct validates s against its `validate` tags. Rule violations come back
// as Errors; anything else means s could not be validated at all.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	res := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		res = append(res, message(fe))
	}
	return res
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case strongPasswordTag:
		return fmt.Sprintf(
			"%s must contain an upper-case letter, a lower-case letter, a digit and a special character",
			fe.Field(),
		)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "e164":
		return fmt.Sprintf("%s must be in E.164 format", fe.Field())
	}

	if fe.Param() != "" {
		return fmt.Sprintf("%s failed on %s=%s rule", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed on %s rule", fe.Field(), fe.Tag())
}

func StrongPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit, special bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}
