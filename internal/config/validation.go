package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// ErrInvalid marks configuration that failed validation
var ErrInvalid = errors.New("invalid configuration")

var validate = newValidator()

// newValidator reports fields by their koanf key
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and the rules that span fields
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return errors.Mark(errors.Newf("%s", describe(fieldErrs)), ErrInvalid)
		}
		return errors.Wrap(err, "failed to validate config")
	}

	if cfg.PostGeneration.Enabled && strings.TrimSpace(cfg.PostGeneration.Command) == "" {
		return errors.WithHint(
			errors.Mark(errors.New("postGeneration.command is required when postGeneration.enabled is true"), ErrInvalid),
			"set postGeneration.command or disable postGeneration",
		)
	}
	if cfg.Template == "" && cfg.TemplatePath == "" {
		return errors.Mark(errors.New("one of template or templatePath must be set"), ErrInvalid)
	}
	return nil
}

func describe(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := fieldPath(fe.Namespace())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// fieldPath drops the root struct name: Config.output.typesDir is output.typesDir
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
