package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/qod-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/qod-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/qod-service/internal/domain"
)

// pathUUID parses a UUID path parameter. On failure it writes a 400
// VALIDATION_ERROR and returns false.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Param(name)

	id, err := uuid.Parse(raw)
	if err != nil {
		dto.HandleError(c, domain.NewValidationErrorWithValue(name, "must be a valid UUID", raw))
		return uuid.Nil, false
	}

	return id, true
}

// baseURL is the scheme and host the client addressed.
func baseURL(c *gin.Context) string {
	return middleware.BaseURL(c)
}
