package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wesleyorama2/mapsmith/mapper"
)

var validate = newValidator()

// ValidationError represents a manifest validation error.
type ValidationError struct {
	// Path is the dotted location of the invalid field
	Path string

	// Message describes the validation error
	Message string
}

// Error returns the error message.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every ValidationError found in a manifest.
type ValidationErrors []ValidationError

// Error joins the individual messages.
func (ve ValidationErrors) Error() string {
	messages := make([]string, len(ve))
	for i, err := range ve {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// methodRules is the view of a normalized method that validator checks.
type methodRules struct {
	Host        string            `json:"host" validate:"omitempty,url"`
	Method      string            `json:"method" validate:"required,oneof=get post put patch delete head options"`
	Headers     map[string]string `json:"headers" validate:"dive,keys,required,endkeys"`
	BodyAttr    string            `json:"bodyAttr" validate:"required"`
	HeadersAttr string            `json:"headersAttr" validate:"required,nefield=BodyAttr"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateManifest checks every method of the manifest and returns the
// problems found. An empty result means the manifest is valid.
//
// A missing path is not reported here; Build rejects it with a
// mapper.MissingPathError.
//
// Example:
//
//	if errs := config.ValidateManifest(manifest); len(errs) > 0 {
//	    for _, err := range errs {
//	        log.Printf("Validation error: %s", err)
//	    }
//	}
func ValidateManifest(manifest *mapper.Manifest) ValidationErrors {
	var errs ValidationErrors
	if manifest == nil {
		return append(errs, ValidationError{Path: "manifest", Message: "manifest is required"})
	}

	if manifest.Host != "" {
		if err := validate.Var(manifest.Host, "url"); err != nil {
			errs = append(errs, ValidationError{Path: "host", Message: "must be a valid URL"})
		}
	}

	for _, resource := range manifest.Resources {
		for _, method := range resource.Methods {
			prefix := fmt.Sprintf("resources.%s.%s", resource.Name, method.Name)
			errs = append(errs, validateMethod(prefix, method.Config)...)
		}
	}

	return errs
}

func validateMethod(prefix string, cfg mapper.MethodConfig) ValidationErrors {
	descriptor := mapper.NewMethodDescriptor(cfg)
	rules := methodRules{
		Host:        descriptor.Host(),
		Method:      strings.ToLower(descriptor.Method()),
		Headers:     descriptor.Headers(),
		BodyAttr:    descriptor.BodyAttr(),
		HeadersAttr: descriptor.HeadersAttr(),
	}

	err := validate.Struct(rules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Path: prefix, Message: err.Error()}}
	}

	var errs ValidationErrors
	for _, fe := range fieldErrs {
		errs = append(errs, ValidationError{
			Path:    prefix + "." + fieldName(fe),
			Message: formatFieldError(fe),
		})
	}
	return errs
}

// fieldName strips the struct name validator prefixes to namespaces and
// renders map keys the way the manifest spells them.
func fieldName(fe validator.FieldError) string {
	namespace := fe.Namespace()
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return namespace
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("invalid method %q, must be one of: %s", fe.Value(), fe.Param())
	case "nefield":
		return fmt.Sprintf("must differ from %s", lowerFirst(fe.Param()))
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
