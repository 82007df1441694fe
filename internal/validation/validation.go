// Package validation checks user input before it reaches the cache or a
// provider. Struct rules live in validate tags on the models input types.
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/utils"
)

// Validator validates input structs and the rules tags cannot express.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", notBlank)
	return &Validator{v: v}
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// Struct runs the tag rules on s and converts failures to *errors.ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}

	out := &errors.ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "hexcolor":
		return "must be a hex color"
	case "url":
		return "must be a valid URL"
	case "datetime":
		return "must be a YYYY-MM-DD date"
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

// Frequency checks the rules of each frequency variant.
func (v *Validator) Frequency(f models.Frequency) error {
	switch fv := f.(type) {
	case nil, models.Daily:
		return nil
	case models.SpecificDays:
		if len(fv.Days) == 0 {
			return errors.Invalid("frequency_value", "must list at least one weekday")
		}
		for _, d := range fv.Days {
			if d < 0 || d > 6 {
				return errors.Invalid("frequency_value", fmt.Sprintf("has invalid weekday %d", d))
			}
		}
		return nil
	case models.TimesPerWeek:
		if fv.Times < 1 || fv.Times > 7 {
			return errors.Invalid("frequency_value", "times per week must be between 1 and 7")
		}
		return nil
	default:
		return errors.Invalid("frequency_type", fmt.Sprintf("unknown frequency %T", f))
	}
}

// Date checks a YYYY-MM-DD value for field.
func (v *Validator) Date(field, s string) error {
	if !utils.ValidateDateFormat(s) {
		return errors.Invalid(field, "must be a YYYY-MM-DD date")
	}
	return nil
}

// ID rejects empty identifiers.
func (v *Validator) ID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.Invalid(field, "is required")
	}
	return nil
}

func (v *Validator) CreateHabit(in models.CreateHabitInput) error {
	if err := v.Struct(in); err != nil {
		return err
	}
	return v.Frequency(in.Frequency)
}

func (v *Validator) UpdateHabit(in models.UpdateHabitInput) error {
	if err := v.Struct(in); err != nil {
		return err
	}
	if in.Frequency != nil {
		return v.Frequency(in.Frequency)
	}
	return nil
}
