package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/qod-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/qod-service/internal/platform/logging"
)

// PanicHook receives a recovered panic value and its stack.
type PanicHook func(recovered any, stack []byte)

// Recovery turns a panic into 500 INTERNAL_ERROR and logs the stack.
// logger is used when no request-scoped logger is on the context yet.
// Install it first so it covers every later handler.
func Recovery(logger *slog.Logger, hooks ...PanicHook) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			stack := debug.Stack()
			for _, hook := range hooks {
				hook(r, stack)
			}

			log := logger
			if ctx := c.Request.Context(); logging.HasLogger(ctx) || log == nil {
				log = logging.FromContext(ctx)
			}

			log.Error("panic recovered",
				slog.Any("panic", r),
				slog.String("stack", string(stack)),
				slog.String("method", c.Request.Method),
				slog.String("route", c.FullPath()),
				slog.String("trace_id", dto.GetTraceID(c)),
			)

			dto.AbortWithCode(c, http.StatusInternalServerError, dto.ErrorCodeInternal, "an internal error occurred")
		}()

		c.Next()
	}
}
