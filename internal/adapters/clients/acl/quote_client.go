package acl

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/qod-service/internal/adapters/clients"
	"github.com/jsamuelsen/qod-service/internal/domain"
	"github.com/jsamuelsen/qod-service/internal/platform/logging"
	"github.com/jsamuelsen/qod-service/internal/ports"
)

const randomQuotePath = "/random"

// QuoteClientConfig configures a QuoteClient.
type QuoteClientConfig struct {
	// Client points at a quotable-compatible API; its service name names
	// the upstream in errors and health checks.
	Client *clients.Client

	Logger *slog.Logger
}

// QuoteClient imports quotes from a quotable-compatible API.
type QuoteClient struct {
	client *clients.Client
	logger *slog.Logger
}

var (
	_ ports.QuoteProvider = (*QuoteClient)(nil)
	_ ports.HealthChecker = (*QuoteClient)(nil)
)

// NewQuoteClient panics without a Client.
func NewQuoteClient(cfg QuoteClientConfig) *QuoteClient {
	if cfg.Client == nil {
		panic("acl: QuoteClient requires a Client")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteClient{client: cfg.Client, logger: logger}
}

// quotableQuote is the upstream wire shape of GET /random.
type quotableQuote struct {
	ID      string `json:"_id"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// RandomQuote fetches one random quote. A quote without content is a
// validation error; the author is passed through for the importer to judge.
func (c *QuoteClient) RandomQuote(ctx context.Context) (*domain.ImportedQuote, error) {
	ext, err := getJSON[quotableQuote](ctx, c.client, randomQuotePath, "fetch random quote")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(ext.Content) == "" {
		return nil, domain.NewValidationErrorWithValue("content", "is required", ext.ID)
	}

	c.logger.Log(ctx, logging.LevelTrace, "upstream quote received",
		slog.String("external_id", ext.ID),
		slog.String("author", ext.Author),
	)

	return &domain.ImportedQuote{
		ExternalID: ext.ID,
		Text:       ext.Content,
		Author:     ext.Author,
	}, nil
}

// Name implements ports.HealthChecker.
func (c *QuoteClient) Name() string {
	return c.client.Name()
}

// Check implements ports.HealthChecker by fetching a quote. An open breaker
// fails the check without calling the upstream.
func (c *QuoteClient) Check(ctx context.Context) error {
	_, err := getJSON[quotableQuote](ctx, c.client, randomQuotePath, "health check")
	return err
}
