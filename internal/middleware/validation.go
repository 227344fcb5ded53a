package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/lms/internal/pkg/apperrors"
)

var registerTagNameOnce sync.Once

// useJSONFieldNames makes validation errors report the json name of a field
func useJSONFieldNames() {
	registerTagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
	})
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// BindJSON decodes and validates the request body into obj. Any failure is returned as
// an apperrors validation error carrying per-field messages.
func BindJSON(c *gin.Context, obj interface{}) error {
	useJSONFieldNames()

	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	fields := map[string]string{}

	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &validationErrs):
		for _, fe := range validationErrs {
			fields[fe.Field()] = formatValidationError(fe)
		}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		fields[field] = "must be of type " + typeErr.Type.String()
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		fields["body"] = "malformed JSON"
	case errors.Is(err, io.EOF):
		fields["body"] = "request body is required"
	default:
		fields["body"] = err.Error()
	}

	return apperrors.NewValidationError(fields)
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "must not be null"
	case "gt":
		return "must be greater than " + e.Param()
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "validation failed: " + e.Tag()
	}
}
