package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

var fieldMessages = map[string]string{
	"InputDir":         "Input folder is required",
	"OutputDir":        "Output folder is required",
	"WatermarkText":    "Watermark text is required",
	"FontSize":         "Font size must be a number between 1 and 200",
	"Opacity":          "Opacity must be a number between 0 and 100",
	"PaddingTopBottom": "Padding Top/Bottom must be a number between 0 and 1000",
	"PaddingLeftRight": "Padding Left/Right must be a number between 0 and 1000",
}

// ValidationError lists every problem found in a job config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidJobConfig, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidJobConfig }

// Validate checks the numeric ranges and required fields of a job config.
// Blank strings count as missing.
func (c WatermarkJobConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidJobConfig, err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := fieldMessages[fe.StructField()]
		if !ok {
			msg = fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
		}
		problems = append(problems, msg)
	}
	return &ValidationError{Problems: problems}
}
