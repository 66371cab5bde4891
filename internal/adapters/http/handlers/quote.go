package handlers

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/qod-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/qod-service/internal/app"
	"github.com/jsamuelsen/qod-service/internal/domain"
)

const (
	// dateLayout is the ISO-8601 calendar date accepted by /quotes/qod.
	dateLayout = "2006-01-02"

	// maxTextBody bounds PUT /quotes/:id/text reads at the longest UTF-8
	// encoding of a maximal quote; the character cap is checked by the domain.
	maxTextBody = utf8.UTFMax * domain.MaxQuoteTextLength

	textPlain = "text/plain; charset=utf-8"
)

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// Create handles POST /quotes.
//
// @Summary Create a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote body dto.QuoteRequest true "Quote"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "referenced source does not exist"
// @Router /quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	var req dto.QuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	quote, err := h.service.Create(c.Request.Context(), toQuoteInput(&req))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := dto.NewQuoteResponse(baseURL(c), quote)
	c.Header("Location", resp.Href)
	c.JSON(http.StatusCreated, resp)
}

// List handles GET /quotes. Quotes are ordered by text.
func (h *QuoteHandler) List(c *gin.Context) {
	quotes, err := h.service.List(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponses(baseURL(c), quotes))
}

// Search handles GET /quotes/search?q=FRAGMENT.
//
// @Summary Search quotes by text fragment
// @Tags quotes
// @Produce json
// @Param q query string true "Fragment, at least 3 characters"
// @Success 200 {array} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /quotes/search [get]
func (h *QuoteHandler) Search(c *gin.Context) {
	quotes, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponses(baseURL(c), quotes))
}

// Random handles GET /quotes/random.
//
// @Summary Get a random quote
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse "no quotes stored"
// @Router /quotes/random [get]
func (h *QuoteHandler) Random(c *gin.Context) {
	quote, err := h.service.Random(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(baseURL(c), quote))
}

// QuoteOfDay handles GET /quotes/qod?date=YYYY-MM-DD.
// Without date, today in the configured zone is used.
//
// @Summary Get the quote of the day
// @Tags quotes
// @Produce json
// @Param date query string false "Calendar date, YYYY-MM-DD"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse "malformed date"
// @Failure 404 {object} dto.ErrorResponse "no quotes stored"
// @Router /quotes/qod [get]
func (h *QuoteHandler) QuoteOfDay(c *gin.Context) {
	date := h.service.Today()

	if raw, ok := c.GetQuery("date"); ok {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			dto.HandleError(c, domain.NewValidationErrorWithValue("date", "must be a calendar date formatted YYYY-MM-DD", raw))
			return
		}

		date = parsed
	}

	quote, err := h.service.QuoteOfDay(c.Request.Context(), date)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(baseURL(c), quote))
}

// Get handles GET /quotes/:id.
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	quote, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(baseURL(c), quote))
}

// Replace handles PUT /quotes/:id. The source is replaced too; omitting
// it leaves the quote unattributed.
func (h *QuoteHandler) Replace(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.QuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	quote, err := h.service.Replace(c.Request.Context(), id, toQuoteInput(&req))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(baseURL(c), quote))
}

// ReplaceText handles PUT /quotes/:id/text with a text/plain body and
// echoes the stored text back as text/plain.
//
// @Summary Replace the text of a quote
// @Tags quotes
// @Accept plain
// @Produce plain
// @Param id path string true "Quote ID"
// @Success 200 {string} string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 415 {object} dto.ErrorResponse
// @Router /quotes/{id}/text [put]
func (h *QuoteHandler) ReplaceText(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if ct := c.ContentType(); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err != nil || mediaType != "text/plain" {
			dto.RespondWithCode(c, dto.ErrorCodeUnsupportedMediaType, "body must be text/plain")
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxTextBody+1))
	if err != nil {
		dto.RespondWithCode(c, dto.ErrorCodeBadRequest, "unreadable request body")
		return
	}

	if len(body) > maxTextBody {
		dto.HandleError(c, domain.NewValidationError("text", "must be at most "+strconv.Itoa(domain.MaxQuoteTextLength)+" characters"))
		return
	}

	text, err := h.service.ReplaceText(c.Request.Context(), id, string(body))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Data(http.StatusOK, textPlain, []byte(text))
}

// Delete handles DELETE /quotes/:id. A missing quote still yields 204.
func (h *QuoteHandler) Delete(c *gin.Context) {
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

// AttachSource handles PUT /quotes/:id/source/:sourceId.
func (h *QuoteHandler) AttachSource(c *gin.Context) {
	quoteID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	sourceID, ok := pathUUID(c, "sourceId")
	if !ok {
		return
	}

	h.attach(c, quoteID, sourceID)
}

// AttachSourceByBody handles PUT /quotes/:id/source with {"id": ...}.
func (h *QuoteHandler) AttachSourceByBody(c *gin.Context) {
	quoteID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.SourceIDRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindError(c, err)
		return
	}

	h.attach(c, quoteID, uuid.MustParse(req.ID))
}

func (h *QuoteHandler) attach(c *gin.Context, quoteID, sourceID uuid.UUID) {
	quote, err := h.service.AttachSource(c.Request.Context(), quoteID, sourceID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(baseURL(c), quote))
}

// DetachSource handles DELETE /quotes/:id/source/:sourceId. The source is
// cleared only when it is the one named; otherwise the quote is returned
// unchanged.
func (h *QuoteHandler) DetachSource(c *gin.Context) {
	quoteID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	sourceID, ok := pathUUID(c, "sourceId")
	if !ok {
		return
	}

	quote, err := h.service.DetachSource(c.Request.Context(), quoteID, sourceID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(baseURL(c), quote))
}

// ClearSource handles DELETE /quotes/:id/source.
func (h *QuoteHandler) ClearSource(c *gin.Context) {
	quoteID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	quote, err := h.service.ClearSource(c.Request.Context(), quoteID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(baseURL(c), quote))
}

// RegisterQuoteRoutes registers quote routes on the given router group.
// Static segments are registered alongside :id; gin prefers them.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.POST("", h.Create)
	quotes.GET("", h.List)
	quotes.GET("/search", h.Search)
	quotes.GET("/random", h.Random)
	quotes.GET("/qod", h.QuoteOfDay)
	quotes.GET("/:id", h.Get)
	quotes.PUT("/:id", h.Replace)
	quotes.DELETE("/:id", h.Delete)
	quotes.PUT("/:id/text", h.ReplaceText)
	quotes.PUT("/:id/source", h.AttachSourceByBody)
	quotes.DELETE("/:id/source", h.ClearSource)
	quotes.PUT("/:id/source/:sourceId", h.AttachSource)
	quotes.DELETE("/:id/source/:sourceId", h.DetachSource)
}

func toQuoteInput(req *dto.QuoteRequest) app.QuoteInput {
	input := app.QuoteInput{Text: req.Text}
	if req.Source == nil {
		return input
	}

	ref := &app.SourceRef{Name: req.Source.Name}
	if req.Source.ID != "" {
		id := uuid.MustParse(req.Source.ID)
		ref.ID = &id
	}
	input.Source = ref

	return input
}
