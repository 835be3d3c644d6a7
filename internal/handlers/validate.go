package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"blogapi/internal/apperror"
)

// minPasswordLen is the shortest password the strongpassword rule accepts.
const minPasswordLen = 8

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("strongpassword", strongPassword); err != nil {
		panic(err)
	}
	return v
}

// strongPassword requires a lower and an upper case letter, a digit and a
// symbol, with at least minPasswordLen characters.
func strongPassword(fl validator.FieldLevel) bool {
	return isStrongPassword(fl.Field().String())
}

func isStrongPassword(s string) bool {
	if utf8.RuneCountInString(s) < minPasswordLen {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// validateInput checks in against its validate tags and returns a
// ValidationError listing every rejected field, or nil.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewBadRequestError("invalid request", err)
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return apperror.NewValidationError(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "strongpassword":
		return fmt.Sprintf("must be at least %d characters with upper and lower case letters, a digit and a symbol", minPasswordLen)
	default:
		return "is invalid"
	}
}

// validateCategoryIDs rejects non-positive category ids before any lookup.
func validateCategoryIDs(ids []int64) error {
	var fields []apperror.FieldError
	for i, id := range ids {
		if id <= 0 {
			fields = append(fields, apperror.FieldError{
				Field:   fmt.Sprintf("category_ids[%d]", i),
				Message: "must be a positive integer",
			})
		}
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}
