package api

import (
	"alcyxob/dieta-core/internal/identity"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	msgValidationFailed = "Validation failed."
	msgInvalidEmail     = "A valid email address is required."
	msgInvalidPhone     = "Please enter a valid phone number."
	msgNotAdult         = "Client must be at least 18 years old."
	msgInvalidID        = "Id must be greater than zero."
)

var phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules on gin's validator:
//
//	password  - the account password policy
//	phone     - digits with optional +, spaces, dashes and parentheses
//	adult     - a birth date at least 18 years ago
//	notpast   - a date no earlier than today (UTC)
//	notfuture - an instant no later than now
//
// Field errors report the JSON name of the field.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("unexpected validator engine")
			return
		}
		v.RegisterTagNameFunc(jsonName)
		rules := map[string]validator.Func{
			"password":  validPassword,
			"phone":     validPhone,
			"adult":     isAdult,
			"notpast":   notPast,
			"notfuture": notFuture,
		}
		for tag, fn := range rules {
			if err = v.RegisterValidation(tag, fn); err != nil {
				return
			}
		}
	})
	return err
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func validPassword(fl validator.FieldLevel) bool {
	return len(identity.PasswordViolations(fl.Field().String())) == 0
}

func validPhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func isAdult(fl validator.FieldLevel) bool {
	birth, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !birth.AddDate(18, 0, 0).After(time.Now().UTC())
}

func notPast(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return !t.UTC().Before(today)
}

func notFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.After(time.Now().UTC())
}

// validationMessage turns a binding error into the message returned to the
// caller: one sentence per failed field, joined with a space.
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return msgValidationFailed
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, " ")
}

func fieldMessage(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return msgInvalidEmail
	case "password":
		value, _ := fe.Value().(string)
		return strings.Join(identity.PasswordViolations(value), " ")
	case "phone":
		return msgInvalidPhone
	case "adult":
		return msgNotAdult
	case "notpast":
		return label + " must be today or in the future."
	case "notfuture":
		return label + " cannot be in the future."
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "gt":
		if fe.Param() == "0" {
			return label + " must be greater than zero."
		}
		return fmt.Sprintf("%s must be greater than %s.", label, fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return label + " cannot be negative."
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s cannot exceed %s.", label, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s.", label, strings.ToLower(humanize(lowerFirst(fe.Param()))))
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}

// humanize turns a JSON field name into a sentence label:
// "initialWeight" becomes "Initial weight", "dietitianId" becomes "Dietitian ID".
func humanize(field string) string {
	var words []string
	start := 0
	runes := []rune(field)
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && !unicode.IsUpper(runes[i-1]) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = append(words, string(runes[start:]))

	for i, w := range words {
		switch {
		case strings.EqualFold(w, "id"):
			words[i] = "ID"
		case i == 0:
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		default:
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, " ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
