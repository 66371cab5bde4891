package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("koanf")
	})
	v.RegisterStructValidation(databasePool, DatabaseConfig{})
	v.RegisterStructValidation(importBounds, ServiceEndpointConfig{})

	return v
}()

// Validate reports every invalid setting, one per line, named by its
// config key (e.g. server.port).
func (c *Config) Validate() error {
	err := validate.Struct(c)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	problems := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Errorf("%s %s", configKey(fe.Namespace()), describe(fe)))
	}

	return fmt.Errorf("invalid config:\n%w", errors.Join(problems...))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required when " + strings.ToLower(strings.ReplaceAll(fe.Param(), " ", " is "))
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be an absolute URL"
	case "timezone":
		return "must be an IANA time zone such as Europe/Berlin"
	case "cidr|ip":
		return "must be an IP address or CIDR"
	case "ltefield":
		return "must not exceed " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

// configKey strips the root struct name: "Config.server.port" -> "server.port".
func configKey(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return key
}

// databasePool keeps idle connections within the open-connection cap.
func databasePool(sl validator.StructLevel) {
	db := sl.Current().Interface().(DatabaseConfig) //nolint:forcetypeassert // registered for DatabaseConfig only
	if db.MaxOpenConns > 0 && db.MaxIdleConns > db.MaxOpenConns {
		sl.ReportError(db.MaxIdleConns, "max_idle_conns", "MaxIdleConns", "ltefield", "max_open_conns")
	}
}

// importBounds keeps import workers within the per-request import limit.
func importBounds(sl validator.StructLevel) {
	svc := sl.Current().Interface().(ServiceEndpointConfig) //nolint:forcetypeassert // registered for ServiceEndpointConfig only
	if svc.ImportConcurrency > svc.ImportLimit {
		sl.ReportError(svc.ImportConcurrency, "import_concurrency", "ImportConcurrency", "ltefield", "import_limit")
	}
}
