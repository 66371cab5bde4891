// Package domain contains core business entities and rules.
package domain

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Length caps, in characters, shared by every path that writes text.
const (
	MaxQuoteTextLength  = 4000
	MaxSourceNameLength = 500
)

// Quote is a text optionally attributed to a Source.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// ID is the unique identifier for this quote.
	ID uuid.UUID

	// Text is the body of the quote. Never blank once persisted.
	Text string

	// Source is the attribution, nil when the quote is unattributed.
	Source *Source

	// Created is set on first save and never changes afterwards.
	Created time.Time
}

// NewQuote creates an unsaved quote with a fresh identifier.
func NewQuote(text string, source *Source) *Quote {
	return &Quote{
		ID:     uuid.New(),
		Text:   text,
		Source: source,
	}
}

// Validate checks the quote invariants that do not need the store.
func (q *Quote) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return NewValidationError("text", "must not be empty")
	}

	if utf8.RuneCountInString(q.Text) > MaxQuoteTextLength {
		return NewValidationError("text", tooLong(MaxQuoteTextLength))
	}

	return nil
}

// HasSource reports whether the quote is attributed to the source with the given id.
func (q *Quote) HasSource(id uuid.UUID) bool {
	return q.Source != nil && q.Source.ID == id
}

// SourceID returns the attributed source id, or nil when unattributed.
func (q *Quote) SourceID() *uuid.UUID {
	if q.Source == nil {
		return nil
	}

	id := q.Source.ID

	return &id
}

// Source is an attribution (typically an author) referenced by zero or more quotes.
type Source struct {
	// ID is the unique identifier for this source.
	ID uuid.UUID

	// Name is the display name of the source, e.g. the author.
	Name string

	// Created is set on first save and never changes afterwards.
	Created time.Time
}

// NewSource creates an unsaved source with a fresh identifier.
func NewSource(name string) *Source {
	return &Source{
		ID:   uuid.New(),
		Name: name,
	}
}

// Validate checks the source invariants that do not need the store.
func (s *Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}

	if utf8.RuneCountInString(s.Name) > MaxSourceNameLength {
		return NewValidationError("name", tooLong(MaxSourceNameLength))
	}

	return nil
}

// ImportedQuote is a quote as offered by an upstream quote provider,
// before it is attributed to a local Source.
type ImportedQuote struct {
	// ExternalID is the provider's identifier, kept for logging only.
	ExternalID string

	// Text is the body of the quote.
	Text string

	// Author is the provider's attribution, used to find or create a Source.
	Author string
}

func tooLong(limit int) string {
	return "must be at most " + strconv.Itoa(limit) + " characters"
}
