package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/qod-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/qod-service/internal/app"
	"github.com/jsamuelsen/qod-service/internal/domain"
	"github.com/jsamuelsen/qod-service/internal/mocks"
)

// setupImportHandler mounts an ImportHandler backed by the in-memory store
// of api and a mock provider.
func setupImportHandler(t *testing.T, api *testAPI, setupMock func(*mocks.MockQuoteProvider)) {
	t.Helper()

	provider := mocks.NewMockQuoteProvider(t)
	if setupMock != nil {
		setupMock(provider)
	}

	service := app.NewImportService(app.ImportServiceConfig{
		Provider:    provider,
		Quotes:      api.store.Quotes(),
		Sources:     api.store.Sources(),
		Logger:      discardLogger(),
		Limit:       5,
		Concurrency: 2,
	})

	NewImportHandler(service).RegisterImportRoutes(&api.router.RouterGroup)
}

func TestImportHandler_Import(t *testing.T) {
	tests := []struct {
		name             string
		query            string
		setupMock        func(*mocks.MockQuoteProvider)
		expectedStatus   int
		expectedCode     string
		expectedImported int
		expectedFailed   int
	}{
		{
			name:  "defaults to one quote",
			query: "",
			setupMock: func(m *mocks.MockQuoteProvider) {
				m.EXPECT().RandomQuote(mock.Anything).
					Return(&domain.ImportedQuote{ExternalID: "a1", Text: "Be yourself.", Author: "Oscar Wilde"}, nil).Once()
			},
			expectedStatus:   http.StatusCreated,
			expectedImported: 1,
		},
		{
			name:  "partial failure",
			query: "?count=3",
			setupMock: func(m *mocks.MockQuoteProvider) {
				m.EXPECT().RandomQuote(mock.Anything).
					Return(&domain.ImportedQuote{ExternalID: "b1", Text: "Less is more.", Author: "Mies"}, nil).Twice()
				m.EXPECT().RandomQuote(mock.Anything).
					Return(nil, domain.NewUnavailableError("quote-service", "timeout")).Once()
			},
			expectedStatus:   http.StatusCreated,
			expectedImported: 2,
			expectedFailed:   1,
		},
		{
			name:           "count zero",
			query:          "?count=0",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrorCodeValidation,
		},
		{
			name:           "count above limit",
			query:          "?count=6",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrorCodeValidation,
		},
		{
			name:           "count not a number",
			query:          "?count=many",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrorCodeBadRequest,
		},
		{
			name:  "upstream down",
			query: "?count=2",
			setupMock: func(m *mocks.MockQuoteProvider) {
				m.EXPECT().RandomQuote(mock.Anything).
					Return(nil, domain.NewUnavailableError("quote-service", "circuit open")).Times(2)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   dto.ErrorCodeUnavailable,
		},
		{
			name:  "unexpected provider error is internal",
			query: "",
			setupMock: func(m *mocks.MockQuoteProvider) {
				m.EXPECT().RandomQuote(mock.Anything).Return(nil, errors.New("decoder exploded")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrorCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			setupImportHandler(t, api, tt.setupMock)

			w := api.do(http.MethodPost, "/quotes/import"+tt.query, nil)

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decode[dto.ErrorResponse](t, w).Error.Code)
				return
			}

			resp := decode[dto.ImportResponse](t, w)
			assert.Len(t, resp.Imported, tt.expectedImported)
			assert.Equal(t, tt.expectedFailed, resp.Failed)
		})
	}
}

func TestImportHandler_ReusesSourceByAuthor(t *testing.T) {
	api := newTestAPI(t)
	existing := api.saveSource(t, "Mark Twain")

	setupImportHandler(t, api, func(m *mocks.MockQuoteProvider) {
		m.EXPECT().RandomQuote(mock.Anything).
			Return(&domain.ImportedQuote{ExternalID: "t1", Text: "Get going.", Author: "Mark Twain"}, nil).Once()
	})

	w := api.do(http.MethodPost, "/quotes/import", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[dto.ImportResponse](t, w)
	require.Len(t, resp.Imported, 1)
	require.NotNil(t, resp.Imported[0].Source)
	assert.Equal(t, existing.ID.String(), resp.Imported[0].Source.ID)

	quotes, err := api.store.Quotes().ListBySource(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Len(t, quotes, 1)
}
