package dto

import (
	"time"

	"github.com/jsamuelsen/qod-service/internal/domain"
)

// SourceRefRequest names the source a quote is attributed to.
// ID wins when both are set; a name alone creates a new source.
type SourceRefRequest struct {
	ID   string `json:"id"   validate:"omitempty,uuid"`
	Name string `json:"name" validate:"max=500"`
}

// QuoteRequest is the body of POST /quotes and PUT /quotes/:id.
// The max tags mirror domain.MaxQuoteTextLength and domain.MaxSourceNameLength.
type QuoteRequest struct {
	Text   string            `json:"text"   validate:"required,notblank,max=4000"`
	Source *SourceRefRequest `json:"source"`
}

// SourceRequest is the body of POST /sources and PUT /sources/:id.
type SourceRequest struct {
	Name string `json:"name" validate:"required,notblank,max=500"`
}

// SourceIDRequest is the body of PUT /quotes/:id/source.
type SourceIDRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// SourceResponse is the JSON representation of a source.
type SourceResponse struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
	Href    string    `json:"href"`
}

// QuoteResponse is the JSON representation of a quote.
// Source is null for unattributed quotes.
type QuoteResponse struct {
	ID      string          `json:"id"`
	Text    string          `json:"text"`
	Created time.Time       `json:"created"`
	Source  *SourceResponse `json:"source"`
	Href    string          `json:"href"`
}

// ImportResponse is the body of POST /quotes/import.
type ImportResponse struct {
	Imported []*QuoteResponse `json:"imported"`
	Failed   int              `json:"failed"`
}

// QuoteHref is the self link of a quote under baseURL.
func QuoteHref(baseURL string, q *domain.Quote) string {
	return baseURL + "/quotes/" + q.ID.String()
}

// SourceHref is the self link of a source under baseURL.
func SourceHref(baseURL string, s *domain.Source) string {
	return baseURL + "/sources/" + s.ID.String()
}

// NewSourceResponse converts a domain source. A nil source yields nil.
func NewSourceResponse(baseURL string, s *domain.Source) *SourceResponse {
	if s == nil {
		return nil
	}

	return &SourceResponse{
		ID:      s.ID.String(),
		Name:    s.Name,
		Created: s.Created.UTC(),
		Href:    SourceHref(baseURL, s),
	}
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(baseURL string, q *domain.Quote) *QuoteResponse {
	return &QuoteResponse{
		ID:      q.ID.String(),
		Text:    q.Text,
		Created: q.Created.UTC(),
		Source:  NewSourceResponse(baseURL, q.Source),
		Href:    QuoteHref(baseURL, q),
	}
}

// NewQuoteResponses converts a list, always returning a non-nil slice so
// empty results encode as [].
func NewQuoteResponses(baseURL string, quotes []*domain.Quote) []*QuoteResponse {
	out := make([]*QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, NewQuoteResponse(baseURL, q))
	}

	return out
}

// NewSourceResponses converts a list, always returning a non-nil slice.
func NewSourceResponses(baseURL string, sources []*domain.Source) []*SourceResponse {
	out := make([]*SourceResponse, 0, len(sources))
	for _, s := range sources {
		out = append(out, NewSourceResponse(baseURL, s))
	}

	return out
}

// ImportQuery is the query string of POST /quotes/import.
// Count is nil when the parameter is absent.
type ImportQuery struct {
	Count *int `form:"count" validate:"omitempty,min=1"`
}

// CountOr returns Count, or def when it was not supplied.
func (q *ImportQuery) CountOr(def int) int {
	if q.Count == nil {
		return def
	}

	return *q.Count
}
