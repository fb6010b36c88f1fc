package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	libvalidator "github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/danuartha/authgate/internal/pkg/strcase"
)

// bcrypt truncates beyond 72 bytes, so the upper bound is enforced here.
var rePassword = regexp.MustCompile(`^.{8,72}$`)

// reOTPCode matches the one-time code formats the service issues: 6-digit
// numeric codes and 8-character alphanumeric backup codes.
var reOTPCode = regexp.MustCompile(`^([0-9]{6}|[0-9A-Za-z]{8})$`)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// Validator validates annotated structs.
type Validator interface {
	// Validate returns nil when data passes all struct tag rules, or a
	// FieldErrors describing each failing field.
	Validate(data any) error
}

// FieldErrors is a field-to-message map returned when validation fails.
//
// Keys are field names in snake_case to match the JSON request bodies.
type FieldErrors map[string]string

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(fe)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (fe FieldErrors) Values() map[string]string {
	return fe
}

// V10 implements Validator using go-playground/validator v10.
type V10 struct {
	validate   *libvalidator.Validate
	translator ut.Translator
}

// NewV10 constructs a V10 validator with English translations and the
// service's custom rules registered.
func NewV10() (*V10, error) {
	validate := libvalidator.New(libvalidator.WithRequiredStructEnabled())

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerCustomRules(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10{validate: validate, translator: enTrans}, nil
}

// Validate validates a struct and returns FieldErrors on failure.
func (v *V10) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validateErrs libvalidator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	fieldErrs := make(FieldErrors, len(validateErrs))
	for _, fe := range validateErrs {
		fieldErrs[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
	}

	return fieldErrs
}

func registerCustomRules(validate *libvalidator.Validate, enTrans ut.Translator) error {
	err := validate.RegisterValidation("password", func(fl libvalidator.FieldLevel) bool {
		p, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return rePassword.MatchString(p)
	})
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("otpcode", func(fl libvalidator.FieldLevel) bool {
		c, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return reOTPCode.MatchString(c)
	})
	if err != nil {
		return err
	}

	err = validate.RegisterTranslation("password", enTrans,
		func(t ut.Translator) error {
			return t.Add("password", "{0} must be 8-72 characters", false)
		},
		translateTag,
	)
	if err != nil {
		return err
	}

	return validate.RegisterTranslation("otpcode", enTrans,
		func(t ut.Translator) error {
			return t.Add("otpcode", "{0} must be a 6-digit code or an 8-character backup code", false)
		},
		translateTag,
	)
}

func translateTag(t ut.Translator, fe libvalidator.FieldError) string {
	msg, err := t.T(fe.Tag(), fe.Field())
	if err != nil {
		return fe.Field() + " is invalid"
	}
	return msg
}
