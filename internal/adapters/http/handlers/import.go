package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/qod-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/qod-service/internal/app"
)

// defaultImportCount is used when ?count is omitted.
const defaultImportCount = 1

// ImportHandler exposes the upstream quote import.
type ImportHandler struct {
	service *app.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *app.ImportService) *ImportHandler {
	return &ImportHandler{service: service}
}

// Import handles POST /quotes/import?count=N.
//
// @Summary Import quotes from the upstream provider
// @Tags quotes
// @Produce json
// @Param count query int false "Number of quotes, default 1"
// @Success 201 {object} dto.ImportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "upstream unavailable"
// @Router /quotes/import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	var query dto.ImportQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	result, err := h.service.Import(c.Request.Context(), query.CountOr(defaultImportCount))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, &dto.ImportResponse{
		Imported: dto.NewQuoteResponses(baseURL(c), result.Imported),
		Failed:   result.Failed,
	})
}

// RegisterImportRoutes registers POST /quotes/import on the given router group.
func (h *ImportHandler) RegisterImportRoutes(rg *gin.RouterGroup) {
	rg.POST("/quotes/import", h.Import)
}
