package dto

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation marks a request that parsed but broke a field rule.
	ErrValidation = errors.New("validation failed")

	// ErrBinding marks a body or query string that could not be parsed.
	ErrBinding = errors.New("binding failed")
)

// fieldRule is a custom validator tag and the message shown when it fails.
type fieldRule struct {
	tag     string
	fn      validator.Func
	message string
}

var customRules = []fieldRule{
	{tag: "notblank", fn: notBlank, message: "must not be blank"},
}

// messages maps built-in tags to client-facing text; {param} is substituted.
var messages = map[string]string{
	"required": "is required",
	"uuid":     "must be a valid UUID",
	"oneof":    "must be one of: {param}",
}

// Validator returns the shared validator. Field names in errors are the
// json (or form) names the client sent.
var Validator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}

		return fld.Name
	})

	for _, rule := range customRules {
		if err := v.RegisterValidation(rule.tag, rule.fn); err != nil {
			panic(fmt.Sprintf("dto: registering %q: %v", rule.tag, err))
		}
		messages[rule.tag] = rule.message
	}

	return v
})

// Validate checks v against its validate tags.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// BindQueryAndValidate decodes the query string into v and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindQuery(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// ValidationErrors flattens a validator error into field -> message.
// Nested fields keep their path, e.g. "source.id".
func ValidationErrors(err error) map[string]string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fieldPath(fe)] = validationMessage(fe)
	}

	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}

	return path
}

func validationMessage(fe validator.FieldError) string {
	switch tag := fe.Tag(); tag {
	case "min", "max":
		unit := ""
		if fe.Kind() == reflect.String {
			unit = " characters"
		}

		bound := "at least"
		if tag == "max" {
			bound = "at most"
		}

		return "must be " + bound + " " + fe.Param() + unit

	default:
		if msg, ok := messages[tag]; ok {
			return strings.ReplaceAll(msg, "{param}", fe.Param())
		}

		return "failed validation: " + tag
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// RespondWithBindError writes a 400 for a bind failure: field details for
// rule violations, BAD_REQUEST for unparsable input.
func RespondWithBindError(c *gin.Context, err error) {
	if details := ValidationErrors(err); len(details) > 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponseWithDetails(
			ErrorCodeValidation,
			"request validation failed",
			details,
		).WithTraceID(GetTraceID(c)))

		return
	}

	RespondWithCode(c, ErrorCodeBadRequest, "malformed request")
}
