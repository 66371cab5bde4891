package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// sensitiveFields are attribute and struct field names whose values never
// reach the log. dsn covers database connection strings, which carry the
// Postgres password.
var sensitiveFields = []string{
	"password", "secret", "token", "dsn",
	"apiKey", "apikey", "api_key",
	"accessToken", "access_token", "refreshToken", "refresh_token",
	"authorization", "cookie", "credentials",
}

var sensitiveValues = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`), // JWT
	regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`),
	regexp.MustCompile(`(?i)^postgres(ql)?://[^:/@]+:[^@]+@`),
}

// RedactOptions returns the masq options applied by every logger New builds.
func RedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(sensitiveFields)+len(sensitiveValues)+1)
	for _, name := range sensitiveFields {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, re := range sensitiveValues {
		opts = append(opts, masq.WithRegex(re))
	}

	return append(opts, masq.WithFieldPrefix("secret"))
}

// NewReplaceAttr returns an slog ReplaceAttr hook that redacts sensitive
// values, extended with any extra masq options.
func NewReplaceAttr(extra ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(RedactOptions(), extra...)...)
}
