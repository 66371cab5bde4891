// Package dto holds the JSON request and response bodies of the quote
// API, request validation and the error envelope every failure uses.
package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/qod-service/internal/domain"
	"github.com/jsamuelsen/qod-service/internal/platform/logging"
	"github.com/jsamuelsen/qod-service/internal/platform/telemetry"
)

// headerRequestID mirrors middleware.HeaderRequestID; dto sits below middleware.
const headerRequestID = "X-Request-ID"

// Machine-readable error codes.
const (
	ErrorCodeNotFound             = "NOT_FOUND"
	ErrorCodeValidation           = "VALIDATION_ERROR"
	ErrorCodeBadRequest           = "BAD_REQUEST"
	ErrorCodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	ErrorCodeUnavailable          = "SERVICE_UNAVAILABLE"
	ErrorCodeTimeout              = "TIMEOUT"
	ErrorCodeInternal             = "INTERNAL_ERROR"
)

var statusByCode = map[string]int{
	ErrorCodeNotFound:             http.StatusNotFound,
	ErrorCodeValidation:           http.StatusBadRequest,
	ErrorCodeBadRequest:           http.StatusBadRequest,
	ErrorCodeUnsupportedMediaType: http.StatusUnsupportedMediaType,
	ErrorCodeUnavailable:          http.StatusServiceUnavailable,
	ErrorCodeTimeout:              http.StatusServiceUnavailable,
}

// ErrorResponse is the envelope of every error body:
//
//	{"error":{"code":"NOT_FOUND","message":"...","details":{...}},"traceId":"..."}
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail is the error object inside the envelope. Details maps
// request fields to what is wrong with them.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func NewErrorResponse(code, message string) *ErrorResponse {
	return NewErrorResponseWithDetails(code, message, nil)
}

func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}}
}

// WithTraceID sets TraceID and returns e.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode returns the status for an error code; unknown codes
// are 500.
func HTTPStatusFromCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// MapDomainError picks the status and body for err. Messages of 5xx
// responses are generic; the cause is only logged.
func MapDomainError(err error) (int, *ErrorResponse) {
	var resp *ErrorResponse

	switch {
	case domain.IsNotFound(err):
		resp = NewErrorResponse(ErrorCodeNotFound, err.Error())
	case domain.IsValidation(err):
		resp = NewErrorResponse(ErrorCodeValidation, err.Error())

		var ve *domain.ValidationError
		if errors.As(err, &ve) && ve.Field != "" {
			resp.Error.Details = map[string]string{ve.Field: ve.Message}
		}
	case domain.IsUnavailable(err):
		resp = NewErrorResponse(ErrorCodeUnavailable, "a required service is temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		resp = NewErrorResponse(ErrorCodeTimeout, "request timeout exceeded")
	default:
		resp = NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}

	return HTTPStatusFromCode(resp.Error.Code), resp
}

// GetTraceID is the id error bodies echo: the OTel trace id when the
// telemetry middleware ran, otherwise the inbound X-Request-ID.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(telemetry.ContextKeyTraceID); ok {
		id, _ := v.(string)
		return id
	}

	if c.Request == nil {
		return ""
	}

	return c.Request.Header.Get(headerRequestID)
}

// HandleError writes the envelope for a service error, logging 5xx causes.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed",
			slog.Int("status", status),
			slog.String("error", err.Error()),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// RespondWithCode writes an error raised in the adapter itself, such as a
// malformed path id.
func RespondWithCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// AbortWithCode writes the envelope from middleware and stops the chain.
// A response already under way is left alone.
func AbortWithCode(c *gin.Context, status int, code, message string) {
	if c.Writer.Written() {
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(status, NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}
