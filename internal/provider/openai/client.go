// Package openai provides clients for the OpenAI moderation and image
// generation APIs, wrapped in the shared resilience layer.
package openai

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/doodlechef/doodlechef/internal/provider/resilience"
)

// DefaultBaseURL is the OpenAI API base URL.
const DefaultBaseURL = "https://api.openai.com/v1"

// ProviderName is the name the default resilient client registers under.
const ProviderName = "openai"

// HTTPDoer executes HTTP requests. Satisfied by *resilience.Client and
// *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds shared configuration for the OpenAI clients.
type ClientConfig struct {
	// APIKey is the OpenAI API key.
	APIKey string

	// BaseURL overrides the API base URL (default: DefaultBaseURL).
	// Used in tests to point at a local server.
	BaseURL string

	// HTTPClient is the underlying HTTP client. If nil, a resilient
	// client with default settings is created.
	HTTPClient HTTPDoer

	// Registry receives the default resilient client for provider health
	// reporting. Ignored when HTTPClient is set.
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is the shared transport for the OpenAI API surfaces.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new OpenAI API client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rcfg := resilience.DefaultClientConfig(ProviderName)
		rcfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(rcfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

func (c *Client) newRequest(ctx context.Context, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// APIError is a non-2xx response from the OpenAI API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openai: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("openai: status %d", e.StatusCode)
}
