// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package forms

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the form field name, not the Go field name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := f.Tag.Get("form")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Errors maps form field names to a message for the user
type Errors map[string]string

func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

func (e Errors) Get(field string) string { return e[field] }
func (e Errors) Has(field string) bool   { return e[field] != "" }
func (e Errors) Any() bool               { return len(e) > 0 }

// Decode copies form values into the fields of dst (a struct pointer)
// tagged with `form:"name"`. Supports string, bool, int and float64.
// Strings are trimmed; a bool is true when its value is present and not
// "false" or "off".
func Decode(values url.Values, dst any) Errors {
	errs := Errors{}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		panic("forms: Decode needs a pointer to a struct")
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name := field.Tag.Get("form")
		if name == "" || name == "-" {
			continue
		}
		raw := strings.TrimSpace(values.Get(name))
		fv := rv.Field(i)

		switch fv.Kind() {
		case reflect.String:
			fv.SetString(raw)
		case reflect.Bool:
			_, present := values[name]
			fv.SetBool(present && raw != "false" && raw != "off")
		case reflect.Int:
			if raw == "" {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				errs.Add(name, "Enter a whole number.")
				continue
			}
			fv.SetInt(int64(n))
		case reflect.Float64:
			if raw == "" {
				continue
			}
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				errs.Add(name, "Enter a number.")
				continue
			}
			fv.SetFloat(f)
		default:
			panic(fmt.Sprintf("forms: unsupported field type %s for %q", fv.Kind(), name))
		}
	}

	return errs
}

// Validate runs the struct's `validate` tags and returns one message per
// failing field. errs may be nil; fields already in errs are kept.
func Validate(v any, errs Errors) Errors {
	if errs == nil {
		errs = Errors{}
	}

	err := validate.Struct(v)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add("_", err.Error())
		return errs
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "alphanum":
		return "Use letters and numbers only."
	case "min":
		if isString {
			return fmt.Sprintf("Must be at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Must be at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "eqfield":
		return "Does not match."
	case "ltefield":
		return "Cannot be more than the total weight."
	case "oneof":
		return fmt.Sprintf("Choose one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		switch fe.Param() {
		case "2006-01-02":
			return "Enter a date as YYYY-MM-DD."
		case "15:04":
			return "Enter a time as HH:MM."
		}
		return "Enter a valid date or time."
	}
	return "Invalid value."
}
