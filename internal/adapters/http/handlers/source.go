package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/qod-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/qod-service/internal/app"
)

// SourceHandler handles source-related HTTP endpoints.
type SourceHandler struct {
	service *app.SourceService
}

// NewSourceHandler creates a new source handler.
func NewSourceHandler(service *app.SourceService) *SourceHandler {
	return &SourceHandler{service: service}
}

// Create handles POST /sources.
func (h *SourceHandler) Create(c *gin.Context) {
	var req dto.SourceRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	source, err := h.service.Create(c.Request.Context(), req.Name)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := dto.NewSourceResponse(baseURL(c), source)
	c.Header("Location", resp.Href)
	c.JSON(http.StatusCreated, resp)
}

// List handles GET /sources, ordered by name.
func (h *SourceHandler) List(c *gin.Context) {
	sources, err := h.service.List(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSourceResponses(baseURL(c), sources))
}

// Search handles GET /sources/search?q=FRAGMENT.
func (h *SourceHandler) Search(c *gin.Context) {
	sources, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSourceResponses(baseURL(c), sources))
}

// Get handles GET /sources/:id.
func (h *SourceHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	source, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSourceResponse(baseURL(c), source))
}

// Rename handles PUT /sources/:id.
func (h *SourceHandler) Rename(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.SourceRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	source, err := h.service.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSourceResponse(baseURL(c), source))
}

// Delete handles DELETE /sources/:id. Quotes that referenced the source
// become unattributed; a missing source still yields 204.
func (h *SourceHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Quotes handles GET /sources/:id/quotes.
func (h *SourceHandler) Quotes(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	quotes, err := h.service.Quotes(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponses(baseURL(c), quotes))
}

// RegisterSourceRoutes registers source routes on the given router group.
func (h *SourceHandler) RegisterSourceRoutes(rg *gin.RouterGroup) {
	sources := rg.Group("/sources")
	sources.POST("", h.Create)
	sources.GET("", h.List)
	sources.GET("/search", h.Search)
	sources.GET("/:id", h.Get)
	sources.PUT("/:id", h.Rename)
	sources.DELETE("/:id", h.Delete)
	sources.GET("/:id/quotes", h.Quotes)
}
