package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen/qod-service/internal/adapters/clients"
	"github.com/jsamuelsen/qod-service/internal/domain"
)

// maxBody bounds how much of an upstream response is read.
const maxBody = 1 << 20

// upstreamError covers the error bodies quote APIs send: quotable's
// {"statusCode","statusMessage"} and the common {"error":{"message"}} or
// {"message"} shapes.
type upstreamError struct {
	StatusMessage string `json:"statusMessage"`
	Message       string `json:"message"`
	Error         struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (e *upstreamError) text() string {
	for _, s := range []string{e.StatusMessage, e.Error.Message, e.Message} {
		if s != "" {
			return s
		}
	}

	return ""
}

// getJSON fetches path and decodes a 2xx JSON body into T.
func getJSON[T any](ctx context.Context, client *clients.Client, path, operation string) (*T, error) {
	resp, err := client.Get(ctx, path)
	if err != nil {
		return nil, transportFailure(client.Name(), operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body := io.LimitReader(resp.Body, maxBody)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, statusFailure(client.Name(), operation, resp.StatusCode, body)
	}

	var out T
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return nil, domain.NewUnavailableError(client.Name(), fmt.Sprintf("%s: decoding response: %v", operation, err))
	}

	return &out, nil
}

func transportFailure(service, operation string, err error) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(service, operation+": circuit breaker open")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Request deadlines belong to the caller, not the upstream.
		return fmt.Errorf("%s %s: %w", service, operation, err)
	default:
		return domain.NewUnavailableError(service, fmt.Sprintf("%s: %v", operation, err))
	}
}

// statusFailure describes a non-2xx response, using the upstream's own
// message when its body carries one.
func statusFailure(service, operation string, status int, body io.Reader) error {
	reason := http.StatusText(status)

	var e upstreamError
	if err := json.NewDecoder(body).Decode(&e); err == nil && e.text() != "" {
		reason = e.text()
	}

	return domain.NewUnavailableError(service,
		fmt.Sprintf("%s: upstream responded %d: %s", operation, status, strings.TrimSpace(reason)))
}
